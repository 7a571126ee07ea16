package scanner

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/temirov/fln/internal/types"
)

const (
	scoreReadme     = 0
	scoreManifest   = 1
	scoreEntryPoint = 2
	scoreDefinition = 3
	scoreDefault    = 10
	scoreProjectDoc = 15
	scoreTest       = 20
)

var (
	manifestNames    = []string{"package.json", "pyproject.toml", "cargo.toml", "go.mod", "cmakelists.txt", "makefile", "dockerfile", "vcpkg.json"}
	manifestPrefixes = []string{"tsconfig", ".env", ".prettier", ".eslintrc"}
	entryPrefixes    = []string{"index.", "main.", "app.", "server.", "mod.", "lib."}
	definitionWords  = []string{"types", "interface", "schema", "config", "constants"}
	definitionSuffix = []string{".d.ts", ".h", ".hpp"}
	projectDocPrefix = []string{"license", "changelog", "contributing", "code_of_conduct", "security"}
	testMarkers      = []string{".test.", ".spec."}
)

// FileScore ranks a file name for ordering within a directory; lower scores come first.
func FileScore(fileName string) int {
	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasPrefix(lowerName, "readme"):
		return scoreReadme
	case slices.Contains(manifestNames, lowerName) || hasAnyPrefix(lowerName, manifestPrefixes) || strings.Contains(lowerName, ".config."):
		return scoreManifest
	case hasAnyPrefix(lowerName, entryPrefixes):
		return scoreEntryPoint
	case containsAny(lowerName, definitionWords) || hasAnySuffix(lowerName, definitionSuffix):
		return scoreDefinition
	case hasAnyPrefix(lowerName, projectDocPrefix):
		return scoreProjectDoc
	case containsAny(lowerName, testMarkers) || strings.HasPrefix(lowerName, "test_") || strings.HasSuffix(lowerName, "_test.go"):
		return scoreTest
	default:
		return scoreDefault
	}
}

// sortNodes orders siblings: non-directories first by score then by natural name,
// directories last by natural name. Byte order breaks collation ties.
func sortNodes(nodes []*types.FileNode) {
	if len(nodes) < 2 {
		return
	}
	collator := collate.New(language.Und, collate.Loose, collate.Numeric)
	slices.SortFunc(nodes, func(left, right *types.FileNode) int {
		leftIsDirectory, rightIsDirectory := left.IsDirectory(), right.IsDirectory()
		if leftIsDirectory != rightIsDirectory {
			if leftIsDirectory {
				return 1
			}
			return -1
		}
		if !leftIsDirectory {
			if scoreDifference := FileScore(left.Name) - FileScore(right.Name); scoreDifference != 0 {
				return scoreDifference
			}
		}
		if comparison := collator.CompareString(left.Name, right.Name); comparison != 0 {
			return comparison
		}
		return strings.Compare(left.Name, right.Name)
	})
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func hasAnySuffix(value string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(value, suffix) {
			return true
		}
	}
	return false
}

func containsAny(value string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(value, fragment) {
			return true
		}
	}
	return false
}
