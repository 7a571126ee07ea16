package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/fln/internal/tokenizer"
)

const (
	outputDirectoryPermissions = 0o755
	createOutputErrorFormat    = "creating output file %s: %w"
	createDirectoryErrorFormat = "creating output directory %s: %w"
	countTokensErrorFormat     = "counting output tokens: %w"
	budgetExceededFormat       = "%w of %d bytes"
)

// ErrOutputBudgetExceeded reports a write that would cross the configured total size.
var ErrOutputBudgetExceeded = errors.New("Output size would exceed maximum")

// WriterStats summarises a finished document.
type WriterStats struct {
	SizeBytes  int64
	TokenCount int
}

// Writer writes the document to a file while enforcing the total size budget and counting tokens.
type Writer struct {
	file         *os.File
	counter      tokenizer.Counter
	maximumBytes int64
	bytesWritten int64
	tokenCount   int
	closed       bool
}

// NewWriter creates the output file, and its parent directory when missing. A maximumBytes of 0 disables the budget.
//
// #nosec G304
func NewWriter(outputPath string, maximumBytes int64, counter tokenizer.Counter) (*Writer, error) {
	if counter == nil {
		counter = tokenizer.Estimator{}
	}
	outputDirectory := filepath.Dir(outputPath)
	if outputDirectory != "." {
		if mkdirError := os.MkdirAll(outputDirectory, outputDirectoryPermissions); mkdirError != nil {
			return nil, fmt.Errorf(createDirectoryErrorFormat, outputDirectory, mkdirError)
		}
	}
	file, createError := os.Create(outputPath)
	if createError != nil {
		return nil, fmt.Errorf(createOutputErrorFormat, outputPath, createError)
	}
	return &Writer{file: file, counter: counter, maximumBytes: maximumBytes}, nil
}

// Write implements io.Writer. A write that would exceed the budget writes nothing and fails.
func (writer *Writer) Write(data []byte) (int, error) {
	if writer.maximumBytes > 0 && writer.bytesWritten+int64(len(data)) > writer.maximumBytes {
		return 0, fmt.Errorf(budgetExceededFormat, ErrOutputBudgetExceeded, writer.maximumBytes)
	}
	tokens, countError := tokenizer.CountBytes(writer.counter, data)
	if countError != nil {
		return 0, fmt.Errorf(countTokensErrorFormat, countError)
	}
	written, writeError := writer.file.Write(data)
	writer.bytesWritten += int64(written)
	writer.tokenCount += tokens
	return written, writeError
}

// WriteString writes text.
func (writer *Writer) WriteString(text string) (int, error) {
	return writer.Write([]byte(text))
}

// WriteLine writes text followed by a newline.
func (writer *Writer) WriteLine(text string) error {
	_, writeError := writer.WriteString(text + "\n")
	return writeError
}

// Stats returns the figures accumulated so far.
func (writer *Writer) Stats() WriterStats {
	return WriterStats{SizeBytes: writer.bytesWritten, TokenCount: writer.tokenCount}
}

// Close closes the file and returns the final figures. Calling Close again is a no-op.
func (writer *Writer) Close() (WriterStats, error) {
	if writer.closed {
		return writer.Stats(), nil
	}
	writer.closed = true
	return writer.Stats(), writer.file.Close()
}
