// Package utils contains general helper functions used across fln.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	xdgConfigHomeVariable  = "XDG_CONFIG_HOME"
	unixConfigDirectory    = ".config"
	windowsOperatingSystem = "windows"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept. Blank entries are dropped.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ToSlashPath converts a host relative path into forward-slash form without a leading "./".
func ToSlashPath(relativePath string) string {
	normalizedPath := strings.TrimPrefix(filepath.ToSlash(relativePath), "./")
	if normalizedPath == "." {
		return ""
	}
	return normalizedPath
}

// RelativePathInside returns the forward-slash path of fullPath relative to root and
// whether fullPath lies strictly inside root.
func RelativePathInside(fullPath, root string) (string, bool) {
	relativePath, relativeError := filepath.Rel(filepath.Clean(root), filepath.Clean(fullPath))
	if relativeError != nil {
		return "", false
	}
	normalizedPath := ToSlashPath(relativePath)
	if normalizedPath == "" || normalizedPath == ".." || strings.HasPrefix(normalizedPath, "../") {
		return "", false
	}
	return normalizedPath, true
}

// IsNullDevice reports whether path names the platform null device.
func IsNullDevice(path string) bool {
	return path == os.DevNull || path == "/dev/null" || strings.EqualFold(path, "nul")
}

// UserConfigDirectory returns the directory holding the global configuration and usage data:
// $XDG_CONFIG_HOME/fln when set, ~/.config/fln on Unix-like systems and the
// platform configuration directory elsewhere.
func UserConfigDirectory() (string, error) {
	if base := os.Getenv(xdgConfigHomeVariable); base != "" {
		return filepath.Join(base, ApplicationName), nil
	}
	if runtime.GOOS != windowsOperatingSystem {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(homeDirectory, unixConfigDirectory, ApplicationName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user configuration directory: %w", err)
	}
	return filepath.Join(base, ApplicationName), nil
}
