package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/fln/internal/utils"
)

const uniqueSuffixFormat = "%s-%d%s"

// ResolveOutputPath picks where the snapshot is written.
// An empty value names the file after the project inside rootDirectory. A value
// with a trailing separator or naming an existing directory receives the same
// file name inside it. The null device passes through untouched. Unless
// overwrite is set an existing file is never reused: "-1", "-2", ... is appended
// before the extension until the name is free.
func ResolveOutputPath(outputValue, rootDirectory, format string, overwrite bool) string {
	if outputValue != "" && utils.IsNullDevice(outputValue) {
		return outputValue
	}

	var candidatePath string
	switch {
	case outputValue == "":
		candidatePath = filepath.Join(rootDirectory, ResolveMetadata(rootDirectory).FileBaseName(format))
	case hasTrailingSeparator(outputValue) || isDirectory(outputValue):
		candidatePath = filepath.Join(outputValue, ResolveMetadata(rootDirectory).FileBaseName(format))
	default:
		candidatePath = outputValue
	}

	if overwrite {
		return candidatePath
	}
	return uniquePath(candidatePath)
}

func uniquePath(filePath string) string {
	if !exists(filePath) {
		return filePath
	}
	extension := filepath.Ext(filePath)
	if extension == filepath.Base(filePath) {
		extension = ""
	}
	stem := strings.TrimSuffix(filePath, extension)
	for counter := 1; ; counter++ {
		candidatePath := fmt.Sprintf(uniqueSuffixFormat, stem, counter, extension)
		if !exists(candidatePath) {
			return candidatePath
		}
	}
}

func hasTrailingSeparator(value string) bool {
	return strings.HasSuffix(value, "/") || strings.HasSuffix(value, `\`)
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
