package cli

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/fln/internal/scanner"
	"github.com/temirov/fln/internal/snapshot"
	"github.com/temirov/fln/internal/usage"
	"github.com/temirov/fln/internal/utils"
)

const (
	statisticsLabelWidth    = 6
	breakdownLimit          = 10
	breakdownTitle          = "Breakdown"
	processedFilesTitle     = "Processed files"
	dryRunMessage           = "Dry run mode — output was not written"
	largeOutputFormat       = "%s Output size is large (~%dK tokens) — consider using --exclude"
	failedFilesFormat       = "%s %s failed — run with --verbose for details"
	createdFormat           = "%s %s created"
	summaryFormat           = "%s %s (%s, %s tokens)"
	filesLabel              = "Files"
	tokensLabel             = "Tokens"
	timeLabel               = "Time"
	processedFilePathPrefix = "./"
)

// reporter prints the outcome of a run. Nothing is printed at the silent level.
type reporter struct {
	standardOutput io.Writer
	errorOutput    io.Writer
	logLevel       string
	palette        palette
}

func newReporter(standardOutput io.Writer, errorOutput io.Writer, logLevel string, useAnsi bool) *reporter {
	return &reporter{
		standardOutput: standardOutput,
		errorOutput:    errorOutput,
		logLevel:       logLevel,
		palette:        newPalette(standardOutput, useAnsi),
	}
}

func (report *reporter) DryRun() {
	if report.logLevel == utils.LogLevelSilent {
		return
	}
	report.println(dryRunMessage)
}

// Sponsor prints the support message surrounded by blank lines.
func (report *reporter) Sponsor() {
	if report.logLevel == utils.LogLevelSilent {
		return
	}
	report.println("")
	report.println(usage.SponsorMessage)
	report.println("")
}

func (report *reporter) Result(result snapshot.Result, elapsed time.Duration) {
	switch report.logLevel {
	case utils.LogLevelSilent:
		return
	case utils.LogLevelVerbose:
		report.verbose(result, elapsed)
	case utils.LogLevelDebug:
		report.verbose(result, elapsed)
		report.processedFiles(result)
	default:
		report.normal(result)
	}
}

func (report *reporter) normal(result snapshot.Result) {
	colors := report.palette
	report.println(fmt.Sprintf(summaryFormat,
		colors.success(successSymbol),
		filepath.Base(result.OutputPath),
		colors.success(formatFileCount(result.Files)),
		colors.success(utils.FormatTokenCount(result.OutputTokenCount)),
	))

	var parts []string
	if result.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d %s skipped", result.Skipped, pluralFiles(result.Skipped)))
	}
	if result.Binary > 0 {
		parts = append(parts, fmt.Sprintf("%d binary %s", result.Binary, pluralFiles(result.Binary)))
	}
	if len(parts) > 0 {
		report.println(colors.dim(infoSymbol) + " " + colors.dim(strings.Join(parts, ", ")))
	}

	if result.OutputTokenCount > utils.LargeOutputTokenThreshold {
		report.println(fmt.Sprintf(largeOutputFormat, colors.warning(warningSymbol), roundThousands(result.OutputTokenCount)))
	}
	if result.Errors > 0 {
		_, _ = fmt.Fprintf(report.errorOutput, failedFilesFormat+"\n", colors.failure(failureSymbol), formatFileCount(result.Errors))
	}
}

func (report *reporter) verbose(result snapshot.Result, elapsed time.Duration) {
	colors := report.palette
	report.println("")
	report.println(fmt.Sprintf(createdFormat, colors.success(successSymbol), filepath.Base(result.OutputPath)))
	report.println("")

	var filesLine strings.Builder
	filesLine.WriteString(colors.success(fmt.Sprint(result.Files)) + " processed")
	if result.Skipped > 0 {
		fmt.Fprintf(&filesLine, ", %d skipped", result.Skipped)
	}
	if result.Binary > 0 {
		fmt.Fprintf(&filesLine, ", %d binary", result.Binary)
	}
	if result.Errors > 0 {
		fmt.Fprintf(&filesLine, ", %s errors", colors.failure(fmt.Sprint(result.Errors)))
	}
	report.statistic(filesLabel, filesLine.String())
	report.statistic(tokensLabel, colors.success(fmt.Sprintf("~%dK", roundThousands(result.OutputTokenCount))))
	report.statistic(timeLabel, colors.success(utils.FormatElapsed(elapsed)))

	breakdown := scanner.CollectExtensionStats(result.Root)
	if len(breakdown) == 0 {
		return
	}
	if len(breakdown) > breakdownLimit {
		breakdown = breakdown[:breakdownLimit]
	}
	extensionWidth := 0
	for _, row := range breakdown {
		extensionWidth = max(extensionWidth, len(row.Extension))
	}
	report.println("")
	report.println(colors.bold(breakdownTitle))
	for index, row := range breakdown {
		branch := branchSymbol
		if index == len(breakdown)-1 {
			branch = lastBranchSymbol
		}
		padding := strings.Repeat(" ", extensionWidth-len(row.Extension))
		report.println(fmt.Sprintf("  %s %s%s  %s", colors.dim(branch), colors.info(row.Extension), padding, colors.success(formatFileCount(row.Count))))
	}
}

func (report *reporter) processedFiles(result snapshot.Result) {
	processed := scanner.CollectProcessedFiles(result.Root)
	if len(processed) == 0 {
		return
	}
	report.println("")
	report.println(report.palette.bold(processedFilesTitle))
	for _, path := range processed {
		report.println("  " + report.palette.dim(processedFilePathPrefix+path))
	}
}

func (report *reporter) statistic(label string, value string) {
	report.println(report.palette.dim(fmt.Sprintf("%-*s", statisticsLabelWidth, label)) + "  " + value)
}

func (report *reporter) println(line string) {
	_, _ = fmt.Fprintln(report.standardOutput, line)
}

func formatFileCount(count int) string {
	return fmt.Sprintf("%d %s", count, pluralFiles(count))
}

func pluralFiles(count int) string {
	if count == 1 {
		return "file"
	}
	return "files"
}

func roundThousands(tokens int) int {
	return int(math.Round(float64(tokens) / 1000))
}
