package tokenizer

import (
	"errors"
)

// CountBytes counts tokens for the provided data using counter. Empty input counts zero.
func CountBytes(counter Counter, data []byte) (int, error) {
	if counter == nil {
		return 0, errors.New("nil tokenizer counter")
	}
	if len(data) == 0 {
		return 0, nil
	}
	return counter.CountString(string(data))
}
