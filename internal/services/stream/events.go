// Package stream turns a filtered FileNode tree into an ordered sequence of document events.
package stream

import (
	"time"

	"github.com/temirov/fln/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart        EventKind = "start"
	EventKindTree         EventKind = "tree"
	EventKindFile         EventKind = "file"
	EventKindContentChunk EventKind = "content_chunk"
	EventKindFileError    EventKind = "file_error"
	EventKindWarning      EventKind = "warning"
	EventKindDone         EventKind = "done"
)

type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Document *DocumentEvent  `json:"document,omitempty"`
	Tree     *types.FileNode `json:"tree,omitempty"`
	File     *FileEvent      `json:"file,omitempty"`
	Chunk    *ChunkEvent     `json:"chunk,omitempty"`
	Message  *LogEvent       `json:"message,omitempty"`
	Err      *ErrorEvent     `json:"error,omitempty"`
}

// DocumentEvent carries the header fields of the document.
type DocumentEvent struct {
	Version       string          `json:"version"`
	Generated     string          `json:"generated"`
	ProjectName   string          `json:"projectName"`
	RootDirectory string          `json:"rootDirectory"`
	Stats         types.ScanStats `json:"stats"`
}

// FileEvent opens one file section. Text files are followed by content chunks
// ending with a final chunk, or by a file error event.
type FileEvent struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	SizeBytes   int64  `json:"sizeBytes"`
	IsBinary    bool   `json:"isBinary"`
	FenceLength int    `json:"fenceLength"`
}

type ChunkEvent struct {
	Path    string `json:"path"`
	Index   int    `json:"index"`
	Data    string `json:"data,omitempty"`
	IsFinal bool   `json:"isFinal"`
}

type LogEvent struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
