// Package types defines every cross‑package data structure used by the fln CLI.
package types

const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
)

// NodeType identifies the kind of filesystem entry a FileNode represents.
type NodeType string

const (
	NodeTypeDirectory NodeType = "directory"
	NodeTypeFile      NodeType = "file"
	NodeTypeSymlink   NodeType = "symlink"
)

// SkipReason marks a node that is counted in statistics but excluded from rendered content.
type SkipReason string

const (
	SkipReasonNone           SkipReason = ""
	SkipReasonGenerated      SkipReason = "generated"
	SkipReasonReadError      SkipReason = "readError"
	SkipReasonSymlinkCycle   SkipReason = "symlinkCycle"
	SkipReasonTooLarge       SkipReason = "tooLarge"
	SkipReasonTotalSizeLimit SkipReason = "totalSizeLimit"
)

// FileNode is one entry of the scanned tree. Paths are root-relative with forward slashes.
type FileNode struct {
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	Type       NodeType    `json:"type"`
	Size       int64       `json:"size"`
	Children   []*FileNode `json:"children,omitempty"`
	Target     string      `json:"target,omitempty"`
	IsBinary   bool        `json:"isBinary,omitempty"`
	SkipReason SkipReason  `json:"skipReason,omitempty"`
}

// IsDirectory reports whether the node is a directory.
func (node *FileNode) IsDirectory() bool {
	return node != nil && node.Type == NodeTypeDirectory
}

// IsFile reports whether the node is a regular file.
func (node *FileNode) IsFile() bool {
	return node != nil && node.Type == NodeTypeFile
}

// IsSkipped reports whether the node carries a skip reason.
func (node *FileNode) IsSkipped() bool {
	return node != nil && node.SkipReason != SkipReasonNone
}

// ScanStats holds the running counters of a scan and the final output figures.
type ScanStats struct {
	Files            int   `json:"files"`
	Directories      int   `json:"directories"`
	Binary           int   `json:"binary"`
	Skipped          int   `json:"skipped"`
	Errors           int   `json:"errors"`
	TotalSizeBytes   int64 `json:"totalSizeBytes"`
	OutputSizeBytes  int64 `json:"outputSizeBytes"`
	OutputTokenCount int   `json:"outputTokenCount"`
}

// ScanResult is produced once per invocation.
type ScanResult struct {
	ProjectName string
	Root        *FileNode
	Stats       ScanStats
}

// ProgressFunc receives the processed entry count and the current best-effort total estimate.
type ProgressFunc func(processed int, estimatedTotal int)

// FilterSkipped returns a copy of node with every skip-marked descendant removed.
// A skip-marked root yields nil.
func FilterSkipped(node *FileNode) *FileNode {
	if node == nil || node.IsSkipped() {
		return nil
	}
	filtered := *node
	if len(node.Children) == 0 {
		filtered.Children = nil
		return &filtered
	}
	filtered.Children = make([]*FileNode, 0, len(node.Children))
	for _, child := range node.Children {
		if filteredChild := FilterSkipped(child); filteredChild != nil {
			filtered.Children = append(filtered.Children, filteredChild)
		}
	}
	return &filtered
}

// WalkFiles visits every file node under root in tree order.
func WalkFiles(root *FileNode, visit func(*FileNode)) {
	if root == nil {
		return
	}
	if root.IsFile() {
		visit(root)
	}
	for _, child := range root.Children {
		WalkFiles(child, visit)
	}
}
