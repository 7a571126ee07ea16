package output

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/temirov/fln/internal/services/stream"
	"github.com/temirov/fln/internal/types"
)

type jsonStreamRenderer struct {
	writer       io.Writer
	options      RenderOptions
	started      bool
	filesOpened  bool
	activeFile   *stream.FileEvent
	contentParts strings.Builder
}

type jsonOptionsPayload struct {
	IncludeTree           bool     `json:"includeTree"`
	IncludeContents       bool     `json:"includeContents"`
	Format                string   `json:"format"`
	MaximumFileSizeBytes  int64    `json:"maximumFileSizeBytes"`
	MaximumTotalSizeBytes int64    `json:"maximumTotalSizeBytes"`
	IncludeHidden         bool     `json:"includeHidden"`
	UseGitignore          bool     `json:"useGitignore"`
	ExcludePatterns       []string `json:"excludePatterns"`
	IncludePatterns       []string `json:"includePatterns"`
	FollowSymlinks        bool     `json:"followSymlinks"`
	Banner                string   `json:"banner,omitempty"`
	Footer                string   `json:"footer,omitempty"`
}

type jsonFilePayload struct {
	Path       string           `json:"path"`
	Language   string           `json:"language"`
	IsBinary   bool             `json:"isBinary"`
	SkipReason types.SkipReason `json:"skipReason,omitempty"`
	Content    *string          `json:"content"`
}

// NewJSONStreamRenderer renders document events as one compact JSON object.
func NewJSONStreamRenderer(writer io.Writer, options RenderOptions) StreamRenderer {
	return &jsonStreamRenderer{writer: writer, options: options}
}

func (renderer *jsonStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindStart:
		return renderer.writeHeader(event.Document)
	case stream.EventKindTree:
		if event.Tree == nil {
			return nil
		}
		return renderer.writeField("tree", event.Tree)
	case stream.EventKindFile:
		return renderer.beginFile(event.File)
	case stream.EventKindContentChunk:
		if event.Chunk == nil || renderer.activeFile == nil || event.Chunk.Path != renderer.activeFile.Path {
			return nil
		}
		renderer.contentParts.WriteString(event.Chunk.Data)
		if !event.Chunk.IsFinal {
			return nil
		}
		content := renderer.contentParts.String()
		return renderer.finishFile(types.SkipReasonNone, &content)
	case stream.EventKindFileError:
		if renderer.activeFile == nil || event.Path != renderer.activeFile.Path {
			return nil
		}
		return renderer.finishFile(types.SkipReasonReadError, nil)
	default:
		return nil
	}
}

func (renderer *jsonStreamRenderer) Flush() error {
	if !renderer.started {
		return nil
	}
	if renderer.options.IncludeContents {
		if err := renderer.openFiles(); err != nil {
			return err
		}
		if _, err := io.WriteString(renderer.writer, "]"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(renderer.writer, "}")
	return err
}

func (renderer *jsonStreamRenderer) writeHeader(document *stream.DocumentEvent) error {
	if document == nil {
		return nil
	}
	if _, err := io.WriteString(renderer.writer, "{"); err != nil {
		return err
	}
	renderer.started = true
	fields := []struct {
		key   string
		value any
	}{
		{key: "version", value: document.Version},
		{key: "generated", value: document.Generated},
		{key: "projectName", value: document.ProjectName},
		{key: "rootDirectory", value: document.RootDirectory},
		{key: "stats", value: document.Stats},
		{key: "options", value: renderer.optionsPayload()},
	}
	for index, field := range fields {
		prefix := ","
		if index == 0 {
			prefix = ""
		}
		if err := renderer.writeRawField(prefix, field.key, field.value); err != nil {
			return err
		}
	}
	return nil
}

func (renderer *jsonStreamRenderer) optionsPayload() jsonOptionsPayload {
	excludePatterns := renderer.options.ExcludePatterns
	if excludePatterns == nil {
		excludePatterns = []string{}
	}
	includePatterns := renderer.options.IncludePatterns
	if includePatterns == nil {
		includePatterns = []string{}
	}
	return jsonOptionsPayload{
		IncludeTree:           renderer.options.IncludeTree,
		IncludeContents:       renderer.options.IncludeContents,
		Format:                types.FormatJSON,
		MaximumFileSizeBytes:  renderer.options.MaximumFileSizeBytes,
		MaximumTotalSizeBytes: renderer.options.MaximumTotalSizeBytes,
		IncludeHidden:         renderer.options.IncludeHidden,
		UseGitignore:          renderer.options.UseGitignore,
		ExcludePatterns:       excludePatterns,
		IncludePatterns:       includePatterns,
		FollowSymlinks:        renderer.options.FollowSymlinks,
		Banner:                renderer.options.Banner,
		Footer:                renderer.options.Footer,
	}
}

func (renderer *jsonStreamRenderer) beginFile(file *stream.FileEvent) error {
	if file == nil {
		return nil
	}
	renderer.activeFile = file
	renderer.contentParts.Reset()
	if file.IsBinary {
		return renderer.finishFile(types.SkipReasonNone, nil)
	}
	return nil
}

func (renderer *jsonStreamRenderer) finishFile(skipReason types.SkipReason, content *string) error {
	file := renderer.activeFile
	renderer.activeFile = nil
	renderer.contentParts.Reset()

	separator := ","
	if !renderer.filesOpened {
		if err := renderer.openFiles(); err != nil {
			return err
		}
		separator = ""
	}
	encoded, err := marshalCompact(jsonFilePayload{
		Path:       file.Path,
		Language:   file.Language,
		IsBinary:   file.IsBinary,
		SkipReason: skipReason,
		Content:    content,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(renderer.writer, separator+string(encoded))
	return err
}

func (renderer *jsonStreamRenderer) openFiles() error {
	if renderer.filesOpened {
		return nil
	}
	renderer.filesOpened = true
	_, err := io.WriteString(renderer.writer, `,"files":[`)
	return err
}

func (renderer *jsonStreamRenderer) writeField(key string, value any) error {
	return renderer.writeRawField(",", key, value)
}

func (renderer *jsonStreamRenderer) writeRawField(prefix string, key string, value any) error {
	encodedKey, err := marshalCompact(key)
	if err != nil {
		return err
	}
	encodedValue, err := marshalCompact(value)
	if err != nil {
		return err
	}
	_, err = io.WriteString(renderer.writer, prefix+string(encodedKey)+":"+string(encodedValue))
	return err
}

// marshalCompact encodes value without HTML escaping and without a trailing newline.
func marshalCompact(value any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}
