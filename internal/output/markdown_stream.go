package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/fln/internal/services/stream"
	"github.com/temirov/fln/internal/utils"
)

const (
	markdownMarkerFormat      = "<!-- 🥞 fln %s -->\n"
	markdownTitleFormat       = "# Codebase Snapshot: %s\n"
	markdownGeneratedFormat   = "Generated: %s  \n"
	markdownCountsFormat      = "Files: %d | Directories: %d\n"
	markdownRule              = "---\n"
	markdownTreeHeading       = "## Directory Tree\n"
	markdownTreeFenceOpen     = "```text\n"
	markdownTreeFenceClose    = "```\n"
	markdownSourceHeading     = "## Source Files\n"
	markdownFileHeadingFormat = "### %s\n"
	markdownBinaryFormat      = "[BINARY FILE: %s]\n"
	markdownReadError         = "[READ ERROR]\n"
	newline                   = "\n"
	backtick                  = "`"
)

type markdownStreamRenderer struct {
	writer        io.Writer
	options       RenderOptions
	sourceStarted bool
	filesStarted  int
	fence         string
	activePath    string
	lastByte      byte
	wroteContent  bool
}

// NewMarkdownStreamRenderer renders document events as Markdown.
func NewMarkdownStreamRenderer(writer io.Writer, options RenderOptions) StreamRenderer {
	return &markdownStreamRenderer{writer: writer, options: options}
}

func (renderer *markdownStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindStart:
		return renderer.writeHeader(event.Document)
	case stream.EventKindTree:
		if !renderer.options.IncludeTree || event.Tree == nil {
			return nil
		}
		return renderer.write(markdownTreeHeading, markdownTreeFenceOpen, RenderTree(event.Tree), markdownTreeFenceClose, newline, markdownRule, newline)
	case stream.EventKindFile:
		return renderer.beginFile(event.File)
	case stream.EventKindContentChunk:
		return renderer.writeChunk(event.Chunk)
	case stream.EventKindFileError:
		return renderer.failFile(event.Path)
	case stream.EventKindDone:
		return renderer.ensureSourceHeading()
	default:
		return nil
	}
}

func (renderer *markdownStreamRenderer) Flush() error {
	if renderer.options.Footer == "" {
		return nil
	}
	return renderer.write(newline, renderer.options.Footer, newline)
}

func (renderer *markdownStreamRenderer) writeHeader(document *stream.DocumentEvent) error {
	if document == nil {
		return nil
	}
	parts := []string{
		fmt.Sprintf(markdownMarkerFormat, document.Version),
		newline,
		fmt.Sprintf(markdownTitleFormat, document.ProjectName),
		newline,
		fmt.Sprintf(markdownGeneratedFormat, document.Generated),
		fmt.Sprintf(markdownCountsFormat, document.Stats.Files, document.Stats.Directories),
		newline,
		markdownRule,
		newline,
	}
	if renderer.options.Banner != "" {
		parts = append(parts, renderer.options.Banner, newline, newline)
	}
	return renderer.write(parts...)
}

func (renderer *markdownStreamRenderer) ensureSourceHeading() error {
	if !renderer.options.IncludeContents || renderer.sourceStarted {
		return nil
	}
	renderer.sourceStarted = true
	return renderer.write(markdownSourceHeading, newline)
}

func (renderer *markdownStreamRenderer) beginFile(file *stream.FileEvent) error {
	if file == nil {
		return nil
	}
	if err := renderer.ensureSourceHeading(); err != nil {
		return err
	}
	var parts []string
	if renderer.filesStarted > 0 {
		parts = append(parts, newline)
	}
	renderer.filesStarted++
	renderer.fence = strings.Repeat(backtick, max(file.FenceLength, stream.MinimumFenceLength))
	parts = append(parts, fmt.Sprintf(markdownFileHeadingFormat, file.Path), renderer.fence+file.Language+newline)
	if file.IsBinary {
		parts = append(parts, fmt.Sprintf(markdownBinaryFormat, utils.FormatByteSize(file.SizeBytes)), renderer.fence+newline)
		return renderer.write(parts...)
	}
	renderer.activePath = file.Path
	renderer.wroteContent = false
	renderer.lastByte = 0
	return renderer.write(parts...)
}

func (renderer *markdownStreamRenderer) writeChunk(chunk *stream.ChunkEvent) error {
	if chunk == nil || chunk.Path != renderer.activePath {
		return nil
	}
	if chunk.Data != "" {
		if err := renderer.write(chunk.Data); err != nil {
			return err
		}
		renderer.wroteContent = true
		renderer.lastByte = chunk.Data[len(chunk.Data)-1]
	}
	if !chunk.IsFinal {
		return nil
	}
	return renderer.closeFile("")
}

func (renderer *markdownStreamRenderer) failFile(path string) error {
	if path != renderer.activePath {
		return nil
	}
	return renderer.closeFile(markdownReadError)
}

func (renderer *markdownStreamRenderer) closeFile(trailer string) error {
	var parts []string
	if renderer.wroteContent && renderer.lastByte != '\n' {
		parts = append(parts, newline)
	}
	parts = append(parts, trailer, renderer.fence+newline)
	renderer.activePath = ""
	return renderer.write(parts...)
}

func (renderer *markdownStreamRenderer) write(parts ...string) error {
	for _, part := range parts {
		if part == "" {
			continue
		}
		if _, err := io.WriteString(renderer.writer, part); err != nil {
			return err
		}
	}
	return nil
}
