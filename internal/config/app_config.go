// Package config loads .fln.json files and resolves them with caller overrides into one validated Configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/fln/internal/types"
	"github.com/temirov/fln/internal/utils"
)

var (
	// ErrInvalidMaximumFileSize rejects a per-file limit that is not positive.
	ErrInvalidMaximumFileSize = errors.New("Max file size must be greater than 0.")
	// ErrInvalidMaximumTotalSize rejects a negative total budget.
	ErrInvalidMaximumTotalSize = errors.New("Max total size must be 0 or greater.")
	// ErrUnsupportedFormat rejects a format other than md or json.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// LoadOptions controls how configuration files are discovered.
type LoadOptions struct {
	RootDirectory    string
	ExplicitFilePath string
	SkipGlobal       bool
}

// Overlay holds optional settings from one source. Nil and empty values leave lower layers untouched.
type Overlay struct {
	OutputFile            *string
	Overwrite             *bool
	ExcludePatterns       []string
	IncludePatterns       []string
	IncludeHidden         *bool
	UseGitignore          *bool
	MaximumFileSizeBytes  *int64
	MaximumTotalSizeBytes *int64
	IncludeTree           *bool
	IncludeContents       *bool
	Format                *string
	FollowSymlinks        *bool
	UseAnsi               *bool
	LogLevel              *string
	GeneratedDate         *string
	Banner                *string
	Footer                *string
	TokenizerModel        *string
}

// Configuration is the fully resolved option set for one run.
type Configuration struct {
	RootDirectory         string
	OutputFile            string
	Overwrite             bool
	ExcludePatterns       []string
	IncludePatterns       []string
	IncludeHidden         bool
	UseGitignore          bool
	MaximumFileSizeBytes  int64
	MaximumTotalSizeBytes int64
	IncludeTree           bool
	IncludeContents       bool
	Format                string
	FollowSymlinks        bool
	UseAnsi               bool
	LogLevel              string
	GeneratedDate         string
	Banner                string
	Footer                string
	TokenizerModel        string
}

// fileConfiguration mirrors the JSON keys of .fln.json. Sizes accept numbers or strings such as "10mb".
type fileConfiguration struct {
	OutputFile            *string  `mapstructure:"outputFile"`
	Overwrite             *bool    `mapstructure:"overwrite"`
	ExcludePatterns       []string `mapstructure:"excludePatterns"`
	IncludePatterns       []string `mapstructure:"includePatterns"`
	IncludeHidden         *bool    `mapstructure:"includeHidden"`
	UseGitignore          *bool    `mapstructure:"useGitignore"`
	MaximumFileSizeBytes  *string  `mapstructure:"maximumFileSizeBytes"`
	MaximumTotalSizeBytes *string  `mapstructure:"maximumTotalSizeBytes"`
	IncludeTree           *bool    `mapstructure:"includeTree"`
	IncludeContents       *bool    `mapstructure:"includeContents"`
	Format                *string  `mapstructure:"format"`
	FollowSymlinks        *bool    `mapstructure:"followSymlinks"`
	UseAnsi               *bool    `mapstructure:"useAnsi"`
	LogLevel              *string  `mapstructure:"logLevel"`
	GeneratedDate         *string  `mapstructure:"generatedDate"`
	Banner                *string  `mapstructure:"banner"`
	Footer                *string  `mapstructure:"footer"`
	TokenizerModel        *string  `mapstructure:"tokenizerModel"`
}

// LoadFileOverlay reads the global configuration, then <root>/.fln.json, then the explicit file,
// each layer overriding the previous one. Missing files are skipped.
func LoadFileOverlay(options LoadOptions) (Overlay, error) {
	type configurationSource struct {
		path     string
		required bool
	}
	var sources []configurationSource
	if !options.SkipGlobal {
		if globalDirectory, err := utils.UserConfigDirectory(); err == nil {
			sources = append(sources, configurationSource{path: filepath.Join(globalDirectory, utils.ConfigFileName)})
		}
	}
	if options.RootDirectory != "" {
		sources = append(sources, configurationSource{path: filepath.Join(options.RootDirectory, utils.ConfigFileName)})
	}
	if options.ExplicitFilePath != "" {
		explicitPath, err := filepath.Abs(options.ExplicitFilePath)
		if err != nil {
			return Overlay{}, fmt.Errorf("resolve configuration path %s: %w", options.ExplicitFilePath, err)
		}
		sources = append(sources, configurationSource{path: explicitPath, required: true})
	}

	var merged Overlay
	for _, source := range sources {
		overlay, err := loadOverlayFromPath(source.path, source.required)
		if err != nil {
			return Overlay{}, err
		}
		merged = merged.Merge(overlay)
	}
	return merged, nil
}

func loadOverlayFromPath(path string, required bool) (Overlay, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return Overlay{}, nil
		}
		return Overlay{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return Overlay{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("json")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return Overlay{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var raw fileConfiguration
	if decodeErr := reader.Unmarshal(&raw); decodeErr != nil {
		return Overlay{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	overlay, normalizeErr := raw.overlay()
	if normalizeErr != nil {
		return Overlay{}, fmt.Errorf("configuration %s: %w", path, normalizeErr)
	}
	return overlay, nil
}

func (raw fileConfiguration) overlay() (Overlay, error) {
	maximumFileSize, err := parseOptionalSize(raw.MaximumFileSizeBytes)
	if err != nil {
		return Overlay{}, err
	}
	maximumTotalSize, err := parseOptionalSize(raw.MaximumTotalSizeBytes)
	if err != nil {
		return Overlay{}, err
	}
	return Overlay{
		OutputFile:            raw.OutputFile,
		Overwrite:             raw.Overwrite,
		ExcludePatterns:       raw.ExcludePatterns,
		IncludePatterns:       raw.IncludePatterns,
		IncludeHidden:         raw.IncludeHidden,
		UseGitignore:          raw.UseGitignore,
		MaximumFileSizeBytes:  maximumFileSize,
		MaximumTotalSizeBytes: maximumTotalSize,
		IncludeTree:           raw.IncludeTree,
		IncludeContents:       raw.IncludeContents,
		Format:                raw.Format,
		FollowSymlinks:        raw.FollowSymlinks,
		UseAnsi:               raw.UseAnsi,
		LogLevel:              raw.LogLevel,
		GeneratedDate:         raw.GeneratedDate,
		Banner:                raw.Banner,
		Footer:                raw.Footer,
		TokenizerModel:        raw.TokenizerModel,
	}, nil
}

func parseOptionalSize(value *string) (*int64, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := utils.ParseByteSize(*value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Merge overlays override onto the receiver. Pattern lists concatenate.
func (overlay Overlay) Merge(override Overlay) Overlay {
	result := overlay
	result.OutputFile = pick(result.OutputFile, override.OutputFile)
	result.Overwrite = cloneBool(pick(result.Overwrite, override.Overwrite))
	result.ExcludePatterns = concatenate(result.ExcludePatterns, override.ExcludePatterns)
	result.IncludePatterns = concatenate(result.IncludePatterns, override.IncludePatterns)
	result.IncludeHidden = cloneBool(pick(result.IncludeHidden, override.IncludeHidden))
	result.UseGitignore = cloneBool(pick(result.UseGitignore, override.UseGitignore))
	result.MaximumFileSizeBytes = pick(result.MaximumFileSizeBytes, override.MaximumFileSizeBytes)
	result.MaximumTotalSizeBytes = pick(result.MaximumTotalSizeBytes, override.MaximumTotalSizeBytes)
	result.IncludeTree = cloneBool(pick(result.IncludeTree, override.IncludeTree))
	result.IncludeContents = cloneBool(pick(result.IncludeContents, override.IncludeContents))
	result.Format = pick(result.Format, override.Format)
	result.FollowSymlinks = cloneBool(pick(result.FollowSymlinks, override.FollowSymlinks))
	result.UseAnsi = cloneBool(pick(result.UseAnsi, override.UseAnsi))
	result.LogLevel = pick(result.LogLevel, override.LogLevel)
	result.GeneratedDate = pick(result.GeneratedDate, override.GeneratedDate)
	result.Banner = pick(result.Banner, override.Banner)
	result.Footer = pick(result.Footer, override.Footer)
	result.TokenizerModel = pick(result.TokenizerModel, override.TokenizerModel)
	return result
}

// Resolve applies defaults to the merged file and caller overlays and validates the result.
// Without contents the size limits are lifted since no file bytes are written.
func Resolve(rootDirectory string, fileOverlay Overlay, userOverlay Overlay) (Configuration, error) {
	merged := fileOverlay.Merge(userOverlay)
	configuration := Configuration{
		RootDirectory:         rootDirectory,
		OutputFile:            valueOr(merged.OutputFile, ""),
		Overwrite:             valueOr(merged.Overwrite, false),
		ExcludePatterns:       utils.DeduplicatePatterns(merged.ExcludePatterns),
		IncludePatterns:       utils.DeduplicatePatterns(merged.IncludePatterns),
		IncludeHidden:         valueOr(merged.IncludeHidden, false),
		UseGitignore:          valueOr(merged.UseGitignore, true),
		MaximumFileSizeBytes:  valueOr(merged.MaximumFileSizeBytes, utils.DefaultMaximumFileSizeBytes),
		MaximumTotalSizeBytes: valueOr(merged.MaximumTotalSizeBytes, 0),
		IncludeTree:           valueOr(merged.IncludeTree, true),
		IncludeContents:       valueOr(merged.IncludeContents, true),
		Format:                strings.ToLower(strings.TrimSpace(valueOr(merged.Format, types.FormatMarkdown))),
		FollowSymlinks:        valueOr(merged.FollowSymlinks, false),
		UseAnsi:               valueOr(merged.UseAnsi, true),
		LogLevel:              valueOr(merged.LogLevel, utils.LogLevelNormal),
		Banner:                valueOr(merged.Banner, ""),
		Footer:                valueOr(merged.Footer, ""),
		TokenizerModel:        valueOr(merged.TokenizerModel, ""),
	}

	if configuration.Format != types.FormatMarkdown && configuration.Format != types.FormatJSON {
		return Configuration{}, fmt.Errorf("%w %q: expected %s or %s", ErrUnsupportedFormat, configuration.Format, types.FormatMarkdown, types.FormatJSON)
	}
	if !configuration.IncludeContents {
		configuration.MaximumFileSizeBytes = math.MaxInt64
		configuration.MaximumTotalSizeBytes = 0
	}
	if configuration.MaximumFileSizeBytes <= 0 {
		return Configuration{}, ErrInvalidMaximumFileSize
	}
	if configuration.MaximumTotalSizeBytes < 0 {
		return Configuration{}, ErrInvalidMaximumTotalSize
	}
	if merged.GeneratedDate != nil {
		generatedDate, err := utils.ParseGeneratedDate(*merged.GeneratedDate)
		if err != nil {
			return Configuration{}, err
		}
		configuration.GeneratedDate = generatedDate
	}
	return configuration, nil
}

func pick[T any](current *T, override *T) *T {
	if override != nil {
		return override
	}
	return current
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}

func concatenate(base []string, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	result := make([]string, 0, len(base)+len(extra))
	result = append(result, base...)
	return append(result, extra...)
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
