// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/temirov/fln/internal/config"
	"github.com/temirov/fln/internal/services/clipboard"
	"github.com/temirov/fln/internal/snapshot"
	"github.com/temirov/fln/internal/usage"
	"github.com/temirov/fln/internal/utils"
)

const (
	outputFlagName           = "output"
	outputFlagShorthand      = "o"
	excludeFlagName          = "exclude"
	excludeFlagShorthand     = "e"
	includeFlagName          = "include"
	includeFlagShorthand     = "i"
	includeHiddenFlagName    = "include-hidden"
	noGitignoreFlagName      = "no-gitignore"
	maximumSizeFlagName      = "max-size"
	maximumTotalSizeFlagName = "max-total-size"
	noContentsFlagName       = "no-contents"
	noTreeFlagName           = "no-tree"
	formatFlagName           = "format"
	overwriteFlagName        = "overwrite"
	overwriteFlagShorthand   = "w"
	dryRunFlagName           = "dry-run"
	quietFlagName            = "quiet"
	quietFlagShorthand       = "q"
	verboseFlagName          = "verbose"
	verboseFlagShorthand     = "V"
	debugFlagName            = "debug"
	noAnsiFlagName           = "no-ansi"
	followSymlinksFlagName   = "follow-symlinks"
	noSponsorFlagName        = "no-sponsor-message"
	bannerFlagName           = "banner"
	footerFlagName           = "footer"
	generatedDateFlagName    = "generated-date"
	tokenizerModelFlagName   = "tokenizer-model"
	copyFlagName             = "copy"
	configFlagName           = "config"
	versionFlagName          = "version"
	versionFlagShorthand     = "v"
	globalFlagName           = "global"
	forceFlagName            = "force"

	rootUse              = "fln [directory]"
	rootShortDescription = "Flatten a codebase into a single file for LLMs"
	rootLongDescription  = `fln walks a directory and writes one Markdown or JSON document with the
directory tree and the contents of every text file.
Ignore rules come from .gitignore files, --exclude patterns and the configuration files
(~/.config/fln/.fln.json, then <directory>/.fln.json, then --config).`
	rootUsageExample = `  # Flatten the current directory
  fln . -o output.md

  # Skip tests and fixtures
  fln src -e "*.test.ts" -e "fixtures/"

  # Tree only, as JSON
  fln . --no-contents --format json`

	initUse              = "init [directory]"
	initShortDescription = "write a default .fln.json"
	initLongDescription  = `Write a configuration file listing every option with its default value.
Without --global the file is created in the given directory or the working directory.`

	outputFlagDescription           = "output file or directory path (default: <name>-<version>.<ext>)"
	excludeFlagDescription          = "exclude pattern (repeatable)"
	includeFlagDescription          = "force include pattern (repeatable)"
	includeHiddenFlagDescription    = "include hidden files and directories"
	noGitignoreFlagDescription      = "ignore .gitignore files"
	maximumSizeFlagDescription      = "max file size (e.g. 10mb, 512kb)"
	maximumTotalSizeFlagDescription = "max total output size"
	noContentsFlagDescription       = "exclude file contents"
	noTreeFlagDescription           = "exclude directory tree"
	formatFlagDescription           = "output format: md or json (default: md)"
	overwriteFlagDescription        = "overwrite the output file instead of adding a numeric suffix"
	dryRunFlagDescription           = "scan and report without writing output"
	quietFlagDescription            = "minimal output"
	verboseFlagDescription          = "verbose output"
	debugFlagDescription            = "debug output with file list"
	noAnsiFlagDescription           = "disable ANSI colors"
	followSymlinksFlagDescription   = "follow symlinks while scanning"
	noSponsorFlagDescription        = "hide the support message (also: FLN_NO_SPONSOR=1)"
	bannerFlagDescription           = "text added at the beginning of the output"
	footerFlagDescription           = "text added at the end of the output"
	generatedDateFlagDescription    = `date used in the "Generated" header (YYYY-MM-DD HH:mm)`
	tokenizerModelFlagDescription   = "count tokens with the tiktoken encoding of this model"
	copyFlagDescription             = "copy the generated document to the clipboard"
	configFlagDescription           = "additional configuration file applied after the global and local ones"
	versionFlagDescription          = "show version"
	globalFlagDescription           = "write the global configuration file"
	forceFlagDescription            = "overwrite an existing configuration file"

	configurationWrittenFormat = "Configuration written to %s\n"
	copyFailedFormat           = "copy %s to clipboard: %w"
)

// Execute runs the fln application.
func Execute() error {
	rootCommand := createRootCommand(clipboard.NewService())
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// rootOptions stores the values of the root command flags.
type rootOptions struct {
	outputValue      string
	excludePatterns  []string
	includePatterns  []string
	includeHidden    bool
	disableGitignore bool
	maximumFileSize  int64
	maximumTotalSize int64
	disableContents  bool
	disableTree      bool
	format           string
	overwrite        bool
	dryRun           bool
	quiet            bool
	verbose          bool
	debug            bool
	disableAnsi      bool
	followSymlinks   bool
	disableSponsor   bool
	banner           string
	footer           string
	generatedDate    string
	tokenizerModel   string
	copyToClipboard  bool
	configFile       string
	showVersion      bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand(copier clipboard.Copier) *cobra.Command {
	var options rootOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, err := fmt.Fprintln(command.OutOrStdout(), utils.GetApplicationVersion())
				return err
			}
			rootDirectory := "."
			if len(arguments) > 0 {
				rootDirectory = arguments[0]
			}
			return runSnapshot(command, rootDirectory, options, copier)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&options.outputValue, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	flagSet.StringArrayVarP(&options.excludePatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	flagSet.StringArrayVarP(&options.includePatterns, includeFlagName, includeFlagShorthand, nil, includeFlagDescription)
	registerBooleanFlag(flagSet, &options.includeHidden, includeHiddenFlagName, "", false, includeHiddenFlagDescription)
	registerBooleanFlag(flagSet, &options.disableGitignore, noGitignoreFlagName, "", false, noGitignoreFlagDescription)
	registerByteSizeFlag(flagSet, &options.maximumFileSize, maximumSizeFlagName, maximumSizeFlagDescription)
	registerByteSizeFlag(flagSet, &options.maximumTotalSize, maximumTotalSizeFlagName, maximumTotalSizeFlagDescription)
	registerBooleanFlag(flagSet, &options.disableContents, noContentsFlagName, "", false, noContentsFlagDescription)
	registerBooleanFlag(flagSet, &options.disableTree, noTreeFlagName, "", false, noTreeFlagDescription)
	registerFormatFlag(flagSet, &options.format, formatFlagName, formatFlagDescription)
	registerBooleanFlag(flagSet, &options.overwrite, overwriteFlagName, overwriteFlagShorthand, false, overwriteFlagDescription)
	registerBooleanFlag(flagSet, &options.dryRun, dryRunFlagName, "", false, dryRunFlagDescription)
	registerBooleanFlag(flagSet, &options.quiet, quietFlagName, quietFlagShorthand, false, quietFlagDescription)
	registerBooleanFlag(flagSet, &options.verbose, verboseFlagName, verboseFlagShorthand, false, verboseFlagDescription)
	registerBooleanFlag(flagSet, &options.debug, debugFlagName, "", false, debugFlagDescription)
	registerBooleanFlag(flagSet, &options.disableAnsi, noAnsiFlagName, "", false, noAnsiFlagDescription)
	registerBooleanFlag(flagSet, &options.followSymlinks, followSymlinksFlagName, "", false, followSymlinksFlagDescription)
	registerBooleanFlag(flagSet, &options.disableSponsor, noSponsorFlagName, "", false, noSponsorFlagDescription)
	flagSet.StringVar(&options.banner, bannerFlagName, "", bannerFlagDescription)
	flagSet.StringVar(&options.footer, footerFlagName, "", footerFlagDescription)
	flagSet.StringVar(&options.generatedDate, generatedDateFlagName, "", generatedDateFlagDescription)
	flagSet.StringVar(&options.tokenizerModel, tokenizerModelFlagName, "", tokenizerModelFlagDescription)
	registerBooleanFlag(flagSet, &options.copyToClipboard, copyFlagName, "", false, copyFlagDescription)
	flagSet.StringVar(&options.configFile, configFlagName, "", configFlagDescription)
	registerBooleanFlag(flagSet, &options.showVersion, versionFlagName, versionFlagShorthand, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand())
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			workingDirectory := ""
			if len(arguments) > 0 {
				workingDirectory = arguments[0]
			}
			destinationPath, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, destinationPath)
			return err
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, "", false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, "", false, forceFlagDescription)
	return initCommand
}

func runSnapshot(command *cobra.Command, rootDirectory string, options rootOptions, copier clipboard.Copier) error {
	flagLogLevel, err := resolveLogLevel(options.quiet, options.verbose, options.debug)
	if err != nil {
		return err
	}

	runCount := 0
	if tracker, trackerErr := usage.NewTracker(); trackerErr == nil {
		runCount, _ = tracker.Increment()
	}

	snapshotOptions := snapshot.Options{
		ConfigFile: options.configFile,
		Overrides:  options.overlay(command.Flags(), flagLogLevel),
	}
	configuration, err := snapshot.ResolveConfiguration(rootDirectory, snapshotOptions)
	if err != nil {
		return err
	}

	logger, err := utils.NewApplicationLogger(configuration.LogLevel)
	if err != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, err)
	}
	defer func() { _ = logger.Sync() }()
	snapshotOptions.Logger = logger

	standardOutput := command.OutOrStdout()
	errorOutput := command.ErrOrStderr()
	useAnsi := configuration.UseAnsi && !options.disableAnsi && isTerminal(standardOutput)
	report := newReporter(standardOutput, errorOutput, configuration.LogLevel, useAnsi)

	var progress *progressLine
	if configuration.LogLevel != utils.LogLevelSilent && isTerminal(errorOutput) {
		progress = newProgressLine(errorOutput, useAnsi)
		snapshotOptions.Progress = progress.Update
	}

	startTime := time.Now()
	result, err := snapshot.CreateFromConfiguration(command.Context(), configuration, snapshotOptions)
	if progress != nil {
		progress.Clear()
	}
	if err != nil {
		return err
	}
	logger.Debug("snapshot complete", zap.String("root", configuration.RootDirectory), zap.Int("files", result.Files))

	if options.dryRun {
		report.DryRun()
	}
	report.Result(result, time.Since(startTime))

	if options.copyToClipboard && !options.dryRun {
		if copyErr := clipboard.CopyFile(copier, result.OutputPath); copyErr != nil {
			return fmt.Errorf(copyFailedFormat, result.OutputPath, copyErr)
		}
	}

	if !options.dryRun && usage.ShouldShowSponsor(runCount, options.disableSponsor, os.LookupEnv) {
		report.Sponsor()
	}
	return nil
}

// overlay converts the explicitly set flags into a configuration overlay.
func (options rootOptions) overlay(flagSet *pflag.FlagSet, logLevel string) config.Overlay {
	var overlay config.Overlay
	changed := flagSet.Changed

	if options.dryRun {
		overlay.OutputFile = stringPointer(os.DevNull)
	} else if changed(outputFlagName) {
		overlay.OutputFile = stringPointer(options.outputValue)
	}
	overlay.ExcludePatterns = options.excludePatterns
	overlay.IncludePatterns = options.includePatterns
	if changed(overwriteFlagName) {
		overlay.Overwrite = boolPointer(options.overwrite)
	}
	if changed(includeHiddenFlagName) {
		overlay.IncludeHidden = boolPointer(options.includeHidden)
	}
	if changed(noGitignoreFlagName) {
		overlay.UseGitignore = boolPointer(!options.disableGitignore)
	}
	if changed(maximumSizeFlagName) {
		overlay.MaximumFileSizeBytes = int64Pointer(options.maximumFileSize)
	}
	if changed(maximumTotalSizeFlagName) {
		overlay.MaximumTotalSizeBytes = int64Pointer(options.maximumTotalSize)
	}
	if changed(noContentsFlagName) {
		overlay.IncludeContents = boolPointer(!options.disableContents)
	}
	if changed(noTreeFlagName) {
		overlay.IncludeTree = boolPointer(!options.disableTree)
	}
	if changed(formatFlagName) {
		overlay.Format = stringPointer(options.format)
	}
	if changed(followSymlinksFlagName) {
		overlay.FollowSymlinks = boolPointer(options.followSymlinks)
	}
	if changed(noAnsiFlagName) && options.disableAnsi {
		overlay.UseAnsi = boolPointer(false)
	}
	if logLevel != "" {
		overlay.LogLevel = stringPointer(logLevel)
	}
	if changed(generatedDateFlagName) {
		overlay.GeneratedDate = stringPointer(options.generatedDate)
	}
	if changed(bannerFlagName) {
		overlay.Banner = stringPointer(options.banner)
	}
	if changed(footerFlagName) {
		overlay.Footer = stringPointer(options.footer)
	}
	if changed(tokenizerModelFlagName) {
		overlay.TokenizerModel = stringPointer(options.tokenizerModel)
	}
	return overlay
}

func stringPointer(value string) *string {
	return &value
}

func boolPointer(value bool) *bool {
	return &value
}

func int64Pointer(value int64) *int64 {
	return &value
}

// isTerminal reports whether writer is a file attached to a terminal.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
