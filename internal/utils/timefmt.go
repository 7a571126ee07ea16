package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04"

// ErrInvalidGeneratedDate is returned when an explicit generation date does not match timestampLayout.
var ErrInvalidGeneratedDate = errors.New("invalid generated date")

// FormatTimestamp returns the provided time formatted using the local time zone
// and a layout that includes date and minutes.
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(timestampLayout)
}

// ParseGeneratedDate validates an explicit "YYYY-MM-DD HH:mm" override and returns it trimmed.
func ParseGeneratedDate(value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if _, parseError := time.Parse(timestampLayout, trimmedValue); parseError != nil {
		return "", fmt.Errorf("%w %q. Expected format: YYYY-MM-DD HH:mm", ErrInvalidGeneratedDate, value)
	}
	return trimmedValue, nil
}

// FormatElapsed renders a duration as "850ms", "2.4s" or "3m 12s".
func FormatElapsed(elapsed time.Duration) string {
	milliseconds := elapsed.Milliseconds()
	switch {
	case milliseconds < 1_000:
		return fmt.Sprintf("%dms", milliseconds)
	case milliseconds < 60_000:
		return fmt.Sprintf("%.1fs", float64(milliseconds)/1_000)
	default:
		return fmt.Sprintf("%dm %ds", milliseconds/60_000, (milliseconds%60_000)/1_000)
	}
}
