package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/temirov/fln/internal/types"
)

const (
	// DefaultChunkSize is the number of bytes read per content chunk.
	DefaultChunkSize = 64 * 1024
	// MinimumFenceLength is the shortest Markdown code fence.
	MinimumFenceLength = 3

	defaultLanguage   = "txt"
	warningLevel      = "warning"
	backtickCharacter = '`'
)

// DocumentOptions describes the document to stream.
type DocumentOptions struct {
	RootDirectory   string
	Root            *types.FileNode
	Header          DocumentEvent
	IncludeContents bool
	ChunkSize       int
}

type emitter struct {
	ctx context.Context
	out chan<- Event
}

func newEmitter(ctx context.Context, out chan<- Event) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	event.Version = SchemaVersion
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path, message string) error {
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return nil
	}
	return e.send(Event{
		Kind:    EventKindWarning,
		Path:    path,
		Message: &LogEvent{Level: warningLevel, Message: trimmed},
	})
}

// StreamDocument emits the start event, the filtered tree, one file section per
// file in tree order when contents are included, and a final done event.
func StreamDocument(ctx context.Context, opts DocumentOptions, out chan<- Event) error {
	if opts.Root == nil {
		return fmt.Errorf("stream: document root is nil")
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	emitter := newEmitter(ctx, out)
	header := opts.Header
	if err := emitter.send(Event{Kind: EventKindStart, Path: opts.RootDirectory, Document: &header}); err != nil {
		return err
	}
	if err := emitter.send(Event{Kind: EventKindTree, Path: opts.RootDirectory, Tree: opts.Root}); err != nil {
		return err
	}

	if opts.IncludeContents {
		var fileNodes []*types.FileNode
		types.WalkFiles(opts.Root, func(node *types.FileNode) {
			fileNodes = append(fileNodes, node)
		})
		for _, node := range fileNodes {
			if err := emitFile(emitter, opts.RootDirectory, node, chunkSize); err != nil {
				return err
			}
		}
	}

	return emitter.send(Event{Kind: EventKindDone, Path: opts.RootDirectory})
}

func emitFile(emitter *emitter, rootDirectory string, node *types.FileNode, chunkSize int) error {
	filePath := filepath.Join(rootDirectory, filepath.FromSlash(node.Path))
	fenceLength := MinimumFenceLength
	if !node.IsBinary {
		if longestRun, scanError := LongestBacktickRun(filePath); scanError == nil && longestRun >= MinimumFenceLength {
			fenceLength = longestRun + 1
		}
	}

	if err := emitter.send(Event{
		Kind: EventKindFile,
		Path: node.Path,
		File: &FileEvent{
			Path:        node.Path,
			Name:        node.Name,
			Language:    LanguageForFile(node.Name),
			SizeBytes:   node.Size,
			IsBinary:    node.IsBinary,
			FenceLength: fenceLength,
		},
	}); err != nil {
		return err
	}
	if node.IsBinary {
		return nil
	}

	readError := streamChunks(emitter, filePath, node.Path, chunkSize)
	if readError == nil {
		return nil
	}
	if errors.Is(readError, context.Canceled) || errors.Is(readError, context.DeadlineExceeded) {
		return readError
	}
	if err := emitter.warn(node.Path, readError.Error()); err != nil {
		return err
	}
	return emitter.send(Event{Kind: EventKindFileError, Path: node.Path, Err: &ErrorEvent{Message: readError.Error()}})
}

// streamChunks reads the file in chunks that never split a UTF-8 sequence and
// always ends with a final chunk.
func streamChunks(emitter *emitter, filePath string, relativePath string, chunkSize int) error {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, chunkSize+utf8.UTFMax)
	carried := 0
	chunkIndex := 0
	for {
		bytesRead, readError := io.ReadFull(fileHandle, buffer[carried:carried+chunkSize])
		available := carried + bytesRead
		atEnd := errors.Is(readError, io.EOF) || errors.Is(readError, io.ErrUnexpectedEOF)
		if readError != nil && !atEnd {
			return readError
		}

		emitLength := available
		if !atEnd {
			emitLength = completeRuneBoundary(buffer[:available])
		}
		if emitLength > 0 || atEnd {
			if err := emitter.send(Event{
				Kind: EventKindContentChunk,
				Path: relativePath,
				Chunk: &ChunkEvent{
					Path:    relativePath,
					Index:   chunkIndex,
					Data:    string(buffer[:emitLength]),
					IsFinal: atEnd,
				},
			}); err != nil {
				return err
			}
			chunkIndex++
		}
		if atEnd {
			return nil
		}
		carried = copy(buffer, buffer[emitLength:available])
	}
}

// completeRuneBoundary returns the length of the longest prefix of data that does not
// end inside an incomplete UTF-8 sequence.
func completeRuneBoundary(data []byte) int {
	length := len(data)
	for back := 1; back <= utf8.UTFMax && back <= length; back++ {
		startIndex := length - back
		if !utf8.RuneStart(data[startIndex]) {
			continue
		}
		if utf8.FullRune(data[startIndex:]) {
			return length
		}
		return startIndex
	}
	return length
}

// LongestBacktickRun streams the file once and returns its longest run of consecutive backticks.
func LongestBacktickRun(filePath string) (int, error) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return 0, openError
	}
	defer fileHandle.Close()

	reader := bufio.NewReaderSize(fileHandle, DefaultChunkSize)
	longestRun := 0
	currentRun := 0
	for {
		character, readError := reader.ReadByte()
		if readError != nil {
			if errors.Is(readError, io.EOF) {
				return longestRun, nil
			}
			return 0, readError
		}
		if character != backtickCharacter {
			currentRun = 0
			continue
		}
		currentRun++
		longestRun = max(longestRun, currentRun)
	}
}

// LanguageForFile derives the code fence language tag from the file extension.
func LanguageForFile(fileName string) string {
	extension := filepath.Ext(fileName)
	if extension == "" || extension == fileName {
		return defaultLanguage
	}
	return strings.TrimPrefix(extension, ".")
}
