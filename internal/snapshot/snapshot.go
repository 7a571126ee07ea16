// Package snapshot flattens a directory tree into one Markdown or JSON document.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/fln/internal/config"
	"github.com/temirov/fln/internal/output"
	"github.com/temirov/fln/internal/project"
	"github.com/temirov/fln/internal/scanner"
	"github.com/temirov/fln/internal/services/stream"
	"github.com/temirov/fln/internal/tokenizer"
	"github.com/temirov/fln/internal/types"
	"github.com/temirov/fln/internal/utils"
)

// ErrRootSkipped reports that the scanned root itself carries a skip reason.
var ErrRootSkipped = errors.New("Root directory was skipped.")

// Options configures a snapshot run. Overrides take precedence over every configuration file.
type Options struct {
	ConfigFile       string
	SkipGlobalConfig bool
	Overrides        config.Overlay
	Progress         types.ProgressFunc
	Logger           *zap.Logger
	Version          string
}

// Result summarizes a completed snapshot.
type Result struct {
	ProjectName      string
	Files            int
	Directories      int
	Binary           int
	Skipped          int
	Errors           int
	TotalSizeBytes   int64
	OutputSizeBytes  int64
	OutputTokenCount int
	OutputPath       string
	Tokenizer        string
	Root             *types.FileNode
}

// Create resolves configuration for rootDirectory and writes the snapshot.
func Create(ctx context.Context, rootDirectory string, options Options) (Result, error) {
	configuration, err := ResolveConfiguration(rootDirectory, options)
	if err != nil {
		return Result{}, err
	}
	return CreateFromConfiguration(ctx, configuration, options)
}

// ResolveConfiguration loads the configuration files, applies options.Overrides, validates the
// result and fixes the output path. Relative output values resolve against the working directory.
func ResolveConfiguration(rootDirectory string, options Options) (config.Configuration, error) {
	if rootDirectory == "" {
		rootDirectory = "."
	}
	absoluteRoot, err := filepath.Abs(rootDirectory)
	if err != nil {
		return config.Configuration{}, fmt.Errorf("resolve root directory %s: %w", rootDirectory, err)
	}
	fileOverlay, err := config.LoadFileOverlay(config.LoadOptions{
		RootDirectory:    absoluteRoot,
		ExplicitFilePath: options.ConfigFile,
		SkipGlobal:       options.SkipGlobalConfig,
	})
	if err != nil {
		return config.Configuration{}, err
	}
	configuration, err := config.Resolve(absoluteRoot, fileOverlay, options.Overrides)
	if err != nil {
		return config.Configuration{}, err
	}

	outputValue := configuration.OutputFile
	if outputValue != "" && !utils.IsNullDevice(outputValue) {
		absoluteOutput, absErr := filepath.Abs(outputValue)
		if absErr != nil {
			return config.Configuration{}, fmt.Errorf("resolve output path %s: %w", outputValue, absErr)
		}
		if hasTrailingSeparator(outputValue) {
			absoluteOutput += string(filepath.Separator)
		}
		outputValue = absoluteOutput
	}
	configuration.OutputFile = project.ResolveOutputPath(outputValue, absoluteRoot, configuration.Format, configuration.Overwrite)
	return configuration, nil
}

// CreateFromConfiguration scans configuration.RootDirectory and renders the filtered tree to
// configuration.OutputFile. The output file never lists itself.
func CreateFromConfiguration(ctx context.Context, configuration config.Configuration, options Options) (Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var excludedPaths []string
	if relativeOutput, inside := utils.RelativePathInside(configuration.OutputFile, configuration.RootDirectory); inside {
		excludedPaths = append(excludedPaths, relativeOutput)
	}

	metadata := project.ResolveMetadata(configuration.RootDirectory)
	scanResult, err := scanner.Scan(ctx, scanner.Options{
		ProjectName:          metadata.Name,
		RootDirectory:        configuration.RootDirectory,
		ExcludePatterns:      configuration.ExcludePatterns,
		IncludePatterns:      configuration.IncludePatterns,
		ExcludedPaths:        excludedPaths,
		IncludeHidden:        configuration.IncludeHidden,
		UseGitignore:         configuration.UseGitignore,
		FollowSymlinks:       configuration.FollowSymlinks,
		MaximumFileSizeBytes: configuration.MaximumFileSizeBytes,
		Progress:             options.Progress,
		Logger:               logger,
	})
	if err != nil {
		return Result{}, err
	}

	filteredRoot := types.FilterSkipped(scanResult.Root)
	if filteredRoot == nil {
		return Result{}, ErrRootSkipped
	}

	counter, tokenizerName, err := tokenizer.NewCounter(tokenizer.Config{Model: configuration.TokenizerModel})
	if err != nil {
		return Result{}, err
	}

	writerStats, err := render(ctx, configuration, documentHeader(configuration, options, scanResult), filteredRoot, counter)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("snapshot written",
		zap.String("path", configuration.OutputFile),
		zap.Int64("bytes", writerStats.SizeBytes),
		zap.Int("tokens", writerStats.TokenCount),
		zap.String("tokenizer", tokenizerName),
	)

	stats := scanResult.Stats
	return Result{
		ProjectName:      scanResult.ProjectName,
		Files:            stats.Files,
		Directories:      stats.Directories,
		Binary:           stats.Binary,
		Skipped:          stats.Skipped,
		Errors:           stats.Errors,
		TotalSizeBytes:   stats.TotalSizeBytes,
		OutputSizeBytes:  writerStats.SizeBytes,
		OutputTokenCount: writerStats.TokenCount,
		OutputPath:       configuration.OutputFile,
		Tokenizer:        tokenizerName,
		Root:             scanResult.Root,
	}, nil
}

func documentHeader(configuration config.Configuration, options Options, scanResult types.ScanResult) stream.DocumentEvent {
	version := options.Version
	if version == "" {
		version = utils.GetApplicationVersion()
	}
	generated := configuration.GeneratedDate
	if generated == "" {
		generated = utils.FormatTimestamp(time.Now())
	}
	return stream.DocumentEvent{
		Version:       version,
		Generated:     generated,
		ProjectName:   scanResult.ProjectName,
		RootDirectory: configuration.RootDirectory,
		Stats:         scanResult.Stats,
	}
}

// render streams the document into the output file. The file is closed on every path;
// a failed render leaves an incomplete file behind.
func render(ctx context.Context, configuration config.Configuration, header stream.DocumentEvent, root *types.FileNode, counter tokenizer.Counter) (output.WriterStats, error) {
	writer, err := output.NewWriter(configuration.OutputFile, configuration.MaximumTotalSizeBytes, counter)
	if err != nil {
		return output.WriterStats{}, err
	}
	renderer, err := output.NewStreamRenderer(writer, renderOptions(configuration))
	if err != nil {
		_, _ = writer.Close()
		return output.WriterStats{}, err
	}

	producer := func(streamCtx context.Context, events chan<- stream.Event) error {
		return stream.StreamDocument(streamCtx, stream.DocumentOptions{
			RootDirectory:   configuration.RootDirectory,
			Root:            root,
			Header:          header,
			IncludeContents: configuration.IncludeContents,
		}, events)
	}
	renderErr := dispatchStream(ctx, producer, renderer.Handle)
	if renderErr == nil {
		renderErr = renderer.Flush()
	}
	writerStats, closeErr := writer.Close()
	if renderErr != nil {
		return output.WriterStats{}, renderErr
	}
	if closeErr != nil {
		return output.WriterStats{}, fmt.Errorf("close output %s: %w", configuration.OutputFile, closeErr)
	}
	return writerStats, nil
}

func renderOptions(configuration config.Configuration) output.RenderOptions {
	return output.RenderOptions{
		Format:                configuration.Format,
		IncludeTree:           configuration.IncludeTree,
		IncludeContents:       configuration.IncludeContents,
		MaximumFileSizeBytes:  configuration.MaximumFileSizeBytes,
		MaximumTotalSizeBytes: configuration.MaximumTotalSizeBytes,
		IncludeHidden:         configuration.IncludeHidden,
		UseGitignore:          configuration.UseGitignore,
		ExcludePatterns:       configuration.ExcludePatterns,
		IncludePatterns:       configuration.IncludePatterns,
		FollowSymlinks:        configuration.FollowSymlinks,
		Banner:                configuration.Banner,
		Footer:                configuration.Footer,
	}
}

func hasTrailingSeparator(value string) bool {
	return value != "" && (value[len(value)-1] == '/' || value[len(value)-1] == '\\')
}
