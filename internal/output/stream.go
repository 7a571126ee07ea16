package output

import (
	"fmt"
	"io"

	"github.com/temirov/fln/internal/services/stream"
	"github.com/temirov/fln/internal/types"
)

// StreamRenderer consumes document events and writes the rendered document.
type StreamRenderer interface {
	Handle(event stream.Event) error
	Flush() error
}

// RenderOptions holds the user options that shape the document.
type RenderOptions struct {
	Format                string
	IncludeTree           bool
	IncludeContents       bool
	MaximumFileSizeBytes  int64
	MaximumTotalSizeBytes int64
	IncludeHidden         bool
	UseGitignore          bool
	ExcludePatterns       []string
	IncludePatterns       []string
	FollowSymlinks        bool
	Banner                string
	Footer                string
}

// NewStreamRenderer returns the renderer for options.Format.
func NewStreamRenderer(writer io.Writer, options RenderOptions) (StreamRenderer, error) {
	switch options.Format {
	case types.FormatMarkdown, "":
		return NewMarkdownStreamRenderer(writer, options), nil
	case types.FormatJSON:
		return NewJSONStreamRenderer(writer, options), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", options.Format)
	}
}
