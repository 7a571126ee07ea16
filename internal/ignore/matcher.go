package ignore

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/temirov/fln/internal/utils"
)

const (
	invalidPatternWarning   = "ignoring invalid pattern"
	loadedPatternsMessage   = "loaded ignore patterns"
	loadIgnoreFileErrorText = "loading %s from %s: %w"
)

// Options configures an ignore Matcher.
type Options struct {
	RootDirectory   string
	ExcludePatterns []string
	UseGitignore    bool
	Logger          *zap.Logger
}

// Matcher evaluates root-relative paths against an ordered rule list where the
// last matching rule wins. A path also matches when any of its ancestor
// directories matches. Rules may be added concurrently while other goroutines
// query the matcher.
type Matcher struct {
	rootDirectory        string
	useGitignore         bool
	logger               *zap.Logger
	mutex                sync.RWMutex
	rules                []Rule
	processedDirectories map[string]struct{}
}

// NewMatcher builds the ignore matcher from the default patterns followed by the user exclude patterns.
func NewMatcher(options Options) *Matcher {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := &Matcher{
		rootDirectory:        options.RootDirectory,
		useGitignore:         options.UseGitignore,
		logger:               logger,
		processedDirectories: make(map[string]struct{}),
	}
	matcher.addPatterns(DefaultIgnorePatterns)
	matcher.addPatterns(options.ExcludePatterns)
	return matcher
}

// NewIncludeMatcher builds a matcher from force-include patterns only.
func NewIncludeMatcher(includePatterns []string, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := &Matcher{
		logger:               logger,
		processedDirectories: make(map[string]struct{}),
	}
	matcher.addPatterns(includePatterns)
	return matcher
}

// Empty reports whether the matcher holds no rules.
func (matcher *Matcher) Empty() bool {
	matcher.mutex.RLock()
	defer matcher.mutex.RUnlock()
	return len(matcher.rules) == 0
}

// Matches reports whether relativePath, or one of its ancestor directories, is selected by the rules.
// The root itself never matches.
func (matcher *Matcher) Matches(relativePath string, isDirectory bool) bool {
	normalizedPath := normalizeRelativePath(relativePath)
	if normalizedPath == "" {
		return false
	}

	matcher.mutex.RLock()
	defer matcher.mutex.RUnlock()
	if len(matcher.rules) == 0 {
		return false
	}

	foldedPath := strings.ToLower(normalizedPath)
	for separatorIndex := 0; separatorIndex < len(foldedPath); separatorIndex++ {
		if foldedPath[separatorIndex] != '/' {
			continue
		}
		if matcher.evaluate(foldedPath[:separatorIndex], true) {
			return true
		}
	}
	return matcher.evaluate(foldedPath, isDirectory)
}

func (matcher *Matcher) evaluate(foldedPath string, isDirectory bool) bool {
	matched := false
	for _, rule := range matcher.rules {
		if rule.DirectoryOnly && !isDirectory {
			continue
		}
		if doublestar.MatchUnvalidated(rule.Pattern, foldedPath) {
			matched = !rule.Negated
		}
	}
	return matched
}

// AddPatternsForDirectory loads the .gitignore of directoryPath into the matcher.
// Each directory is processed at most once; later calls are no-ops.
func (matcher *Matcher) AddPatternsForDirectory(directoryPath string) error {
	if !matcher.useGitignore {
		return nil
	}

	matcher.mutex.Lock()
	if _, processed := matcher.processedDirectories[directoryPath]; processed {
		matcher.mutex.Unlock()
		return nil
	}
	matcher.processedDirectories[directoryPath] = struct{}{}
	matcher.mutex.Unlock()

	gitIgnorePath := filepath.Join(directoryPath, utils.GitIgnoreFileName)
	lines, loadError := LoadIgnoreFilePatterns(gitIgnorePath)
	if loadError != nil {
		return fmt.Errorf(loadIgnoreFileErrorText, utils.GitIgnoreFileName, directoryPath, loadError)
	}
	if len(lines) == 0 {
		return nil
	}

	relativeDirectory, relativeError := filepath.Rel(matcher.rootDirectory, directoryPath)
	if relativeError != nil {
		relativeDirectory = ""
	}
	rules := make([]Rule, 0, len(lines))
	for _, line := range lines {
		if rule, converted := ConvertGitignorePattern(line, relativeDirectory); converted {
			rules = append(rules, rule)
		}
	}
	added := matcher.appendRules(rules)
	if added > 0 {
		displayDirectory := normalizeRelativePath(relativeDirectory)
		if displayDirectory == "" {
			displayDirectory = "."
		}
		matcher.logger.Debug(loadedPatternsMessage,
			zap.Int("count", added),
			zap.String("file", displayDirectory+pathSeparator+utils.GitIgnoreFileName))
	}
	return nil
}

func (matcher *Matcher) addPatterns(patterns []string) {
	rules := make([]Rule, 0, len(patterns))
	for _, pattern := range patterns {
		if rule, normalized := NormalizeExcludePattern(pattern); normalized {
			rules = append(rules, rule)
		}
	}
	matcher.appendRules(rules)
}

func (matcher *Matcher) appendRules(rules []Rule) int {
	validRules := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		foldedPattern := strings.ToLower(rule.Pattern)
		if !doublestar.ValidatePattern(foldedPattern) {
			matcher.logger.Warn(invalidPatternWarning, zap.String("pattern", rule.Pattern))
			continue
		}
		rule.Pattern = foldedPattern
		validRules = append(validRules, rule)
	}
	if len(validRules) == 0 {
		return 0
	}
	matcher.mutex.Lock()
	matcher.rules = append(matcher.rules, validRules...)
	matcher.mutex.Unlock()
	return len(validRules)
}
