package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	kibibyte = 1024
	mebibyte = kibibyte * 1024
	gibibyte = mebibyte * 1024
)

// ErrInvalidByteSize is returned when a size string cannot be parsed.
var ErrInvalidByteSize = errors.New("invalid size")

var byteSizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(b|kb|mb|gb)?$`)

// ParseByteSize converts strings such as "10mb", "1.5 KB" or "512" into a byte count.
// Units are binary multiples and the result is floored.
func ParseByteSize(input string) (int64, error) {
	normalizedInput := strings.ToLower(strings.TrimSpace(input))
	matches := byteSizePattern.FindStringSubmatch(normalizedInput)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidByteSize, input)
	}
	numericValue, parseError := strconv.ParseFloat(matches[1], 64)
	if parseError != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidByteSize, input)
	}
	multiplier := float64(1)
	switch matches[2] {
	case "kb":
		multiplier = kibibyte
	case "mb":
		multiplier = mebibyte
	case "gb":
		multiplier = gibibyte
	}
	return int64(math.Floor(numericValue * multiplier)), nil
}

// FormatByteSize renders a byte count with two decimals in the largest fitting unit.
func FormatByteSize(sizeBytes int64) string {
	switch {
	case sizeBytes >= gibibyte:
		return fmt.Sprintf("%.2f GB", float64(sizeBytes)/gibibyte)
	case sizeBytes >= mebibyte:
		return fmt.Sprintf("%.2f MB", float64(sizeBytes)/mebibyte)
	case sizeBytes >= kibibyte:
		return fmt.Sprintf("%.2f KB", float64(sizeBytes)/kibibyte)
	default:
		return fmt.Sprintf("%d B", sizeBytes)
	}
}

// FormatTokenCount abbreviates a token count for terminal display.
func FormatTokenCount(tokens int) string {
	switch {
	case tokens < 1_000:
		return strconv.Itoa(tokens)
	case tokens < 1_000_000:
		return fmt.Sprintf("~%dK", int(math.Round(float64(tokens)/1_000)))
	default:
		return fmt.Sprintf("~%.1fM", float64(tokens)/1_000_000)
	}
}
