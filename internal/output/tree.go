package output

import (
	"io"
	"strings"

	"github.com/temirov/fln/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
	symlinkArrow        = " → "
	unknownTarget       = "[unknown]"
)

// RenderTree draws the children of root as an ASCII tree, one line per node.
func RenderTree(root *types.FileNode) string {
	var builder strings.Builder
	WriteTree(&builder, root)
	return builder.String()
}

// WriteTree writes the ASCII tree of root's children to writer.
func WriteTree(writer io.Writer, root *types.FileNode) {
	if root == nil {
		return
	}
	for index, child := range root.Children {
		renderTreeNode(writer, child, "", index == len(root.Children)-1)
	}
}

func renderTreeNode(writer io.Writer, node *types.FileNode, prefix string, isLast bool) {
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	_, _ = io.WriteString(writer, prefix+connector+node.Name+nodeSuffix(node)+"\n")
	for index, child := range node.Children {
		renderTreeNode(writer, child, childPrefix, index == len(node.Children)-1)
	}
}

func nodeSuffix(node *types.FileNode) string {
	if node.Type != types.NodeTypeSymlink {
		return ""
	}
	if node.Target == "" {
		return symlinkArrow + unknownTarget
	}
	return symlinkArrow + node.Target
}
