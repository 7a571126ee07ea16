package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// BinarySniffLength defines the maximum number of bytes inspected when detecting binary content.
const BinarySniffLength = 512

// IsBinary reports whether the provided byte slice contains a zero byte.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// ReadFilePrefix reads at most limit bytes from the beginning of the file at path.
//
// #nosec G304
func ReadFilePrefix(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, nil
	}
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, limit)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return nil, readError
	}
	return buffer[:bytesRead], nil
}

// IsFileBinary sniffs the first min(BinarySniffLength, size) bytes of the file at path.
// Empty files are never binary.
func IsFileBinary(path string, size int64) (bool, error) {
	if size <= 0 {
		return false, nil
	}
	prefix, readError := ReadFilePrefix(path, min(BinarySniffLength, size))
	if readError != nil {
		return false, readError
	}
	return IsBinary(prefix), nil
}
