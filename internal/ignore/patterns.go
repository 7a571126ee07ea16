// Package ignore compiles default, user-supplied and .gitignore patterns into path matchers.
package ignore

import (
	"strings"

	"github.com/temirov/fln/internal/utils"
)

const (
	negationPrefix = "!"
	commentPrefix  = "#"
	escapePrefix   = "\\"
	anyDepthPrefix = "**/"
	pathSeparator  = "/"
)

// DefaultIgnorePatterns are excluded from every scan.
var DefaultIgnorePatterns = []string{
	utils.ConfigFileName,
	utils.GitDirectoryName,
	".DS_Store",
	"Thumbs.db",
	"node_modules",
	".env",
	"package-lock.json",
	"bun.lock",
	"yarn.lock",
	"pnpm-lock.yaml",
}

// Rule is one compiled, root-relative pattern.
type Rule struct {
	Pattern       string
	Negated       bool
	DirectoryOnly bool
}

// NormalizeExcludePattern compiles a user glob. A pattern without an inner slash
// matches at any depth, a leading slash anchors it to the scan root, and a
// trailing slash restricts it to directories.
func NormalizeExcludePattern(pattern string) (Rule, bool) {
	body := strings.TrimSpace(pattern)
	negated := strings.HasPrefix(body, negationPrefix)
	if negated {
		body = strings.TrimPrefix(body, negationPrefix)
	}
	directoryOnly := strings.HasSuffix(body, pathSeparator)
	body = strings.TrimSuffix(body, pathSeparator)

	switch {
	case strings.HasPrefix(body, pathSeparator):
		body = strings.TrimPrefix(body, pathSeparator)
	case strings.Contains(body, pathSeparator):
	default:
		body = anyDepthPrefix + body
	}
	if body == "" || body == anyDepthPrefix {
		return Rule{}, false
	}
	return Rule{Pattern: body, Negated: negated, DirectoryOnly: directoryOnly}, true
}

// ConvertGitignorePattern rewrites one .gitignore line found in relativeDirectory
// into a root-relative rule. Blank lines and comments yield false.
func ConvertGitignorePattern(line string, relativeDirectory string) (Rule, bool) {
	trimmedLine := strings.TrimSpace(line)
	if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
		return Rule{}, false
	}

	escaped := strings.HasPrefix(trimmedLine, escapePrefix+negationPrefix) || strings.HasPrefix(trimmedLine, escapePrefix+commentPrefix)
	rawPattern := trimmedLine
	if escaped {
		rawPattern = trimmedLine[1:]
	}
	negated := !escaped && strings.HasPrefix(rawPattern, negationPrefix)
	body := rawPattern
	if negated {
		body = strings.TrimPrefix(rawPattern, negationPrefix)
	}
	directoryOnly := strings.HasSuffix(body, pathSeparator)
	body = strings.TrimSuffix(body, pathSeparator)
	if body == "" {
		return Rule{}, false
	}

	prefix := ""
	if normalizedDirectory := normalizeRelativePath(relativeDirectory); normalizedDirectory != "" {
		prefix = normalizedDirectory + pathSeparator
	}

	var converted string
	switch {
	case strings.HasPrefix(body, pathSeparator):
		converted = prefix + strings.TrimPrefix(body, pathSeparator)
	case strings.Contains(body, pathSeparator):
		converted = prefix + body
	default:
		converted = prefix + anyDepthPrefix + body
	}
	return Rule{Pattern: converted, Negated: negated, DirectoryOnly: directoryOnly}, true
}

func normalizeRelativePath(relativePath string) string {
	return strings.TrimSuffix(utils.ToSlashPath(relativePath), pathSeparator)
}
