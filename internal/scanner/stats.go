package scanner

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/temirov/fln/internal/types"
)

// NoExtensionLabel groups files without an extension in the breakdown.
const NoExtensionLabel = "(no ext)"

// ExtensionCount is one row of the extension breakdown.
type ExtensionCount struct {
	Extension string
	Count     int
}

// CollectExtensionStats counts rendered text files per extension, most frequent first.
func CollectExtensionStats(root *types.FileNode) []ExtensionCount {
	counts := make(map[string]int)
	types.WalkFiles(root, func(node *types.FileNode) {
		if node.IsBinary || node.IsSkipped() {
			return
		}
		counts[fileExtension(node.Name)]++
	})

	breakdown := make([]ExtensionCount, 0, len(counts))
	for extension, count := range counts {
		breakdown = append(breakdown, ExtensionCount{Extension: extension, Count: count})
	}
	slices.SortFunc(breakdown, func(left, right ExtensionCount) int {
		if left.Count != right.Count {
			return right.Count - left.Count
		}
		return strings.Compare(left.Extension, right.Extension)
	})
	return breakdown
}

// CollectProcessedFiles lists the root-relative paths of rendered text files in tree order.
func CollectProcessedFiles(root *types.FileNode) []string {
	var processedFiles []string
	types.WalkFiles(root, func(node *types.FileNode) {
		if node.IsBinary || node.IsSkipped() {
			return
		}
		processedFiles = append(processedFiles, node.Path)
	})
	return processedFiles
}

// fileExtension treats a leading dot as part of the name, not an extension.
func fileExtension(fileName string) string {
	extension := filepath.Ext(fileName)
	if extension == "" || extension == fileName {
		return NoExtensionLabel
	}
	return extension
}
