package tokenizer_test

import (
	"strings"
	"testing"

	"github.com/temirov/fln/internal/tokenizer"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "empty", text: "", expected: 0},
		{name: "whitespace only", text: "  \n\t\r ", expected: 0},
		{name: "two short words", text: "hello world", expected: 2},
		{name: "common word", text: "the", expected: 1},
		{name: "common keyword longer than three", text: "function", expected: 1},
		{name: "long word", text: "internationalization", expected: 4},
		{name: "mixed case long word", text: "InterNationalization", expected: 4},
		{name: "contraction t", text: "don't", expected: 2},
		{name: "contraction re", text: "we're", expected: 2},
		{name: "contraction ll uppercase", text: "WE'LL", expected: 2},
		{name: "apostrophe without contraction", text: "rock'n", expected: 3},
		{name: "four digits", text: "2024", expected: 1},
		{name: "two digits", text: "42", expected: 1},
		{name: "three digits", text: "123", expected: 1},
		{name: "five digits", text: "12345", expected: 2},
		{name: "seven digits", text: "1234567", expected: 3},
		{name: "hex prefixed digits", text: "0x1F", expected: 3},
		{name: "cyrillic run", text: "привет", expected: 2},
		{name: "short cyrillic run", text: "да", expected: 1},
		{name: "arabic run", text: "مرحبا", expected: 2},
		{name: "cjk characters", text: "你好", expected: 2},
		{name: "kana characters", text: "カタカナ", expected: 4},
		{name: "supplementary character", text: "😀", expected: 1},
		{name: "punctuation each", text: "a+b", expected: 3},
		{name: "latin extended is other", text: "é", expected: 1},
		{name: "code line", text: "const x = 10;", expected: 5},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			result := tokenizer.Estimate(testCase.text)
			if result != testCase.expected {
				t.Fatalf("Estimate(%q): expected %d, got %d", testCase.text, testCase.expected, result)
			}
		})
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	t.Parallel()

	sample := strings.Repeat("func main() { fmt.Println(\"привет, 世界\") } // 0xFF 12345\n", 50)
	first := tokenizer.Estimate(sample)
	second := tokenizer.Estimate(sample)
	if first != second {
		t.Fatalf("expected identical counts, got %d and %d", first, second)
	}
	if first <= 0 {
		t.Fatalf("expected positive count, got %d", first)
	}
}

func TestEstimatorCounter(t *testing.T) {
	t.Parallel()

	var counter tokenizer.Counter = tokenizer.Estimator{}
	if counter.Name() != tokenizer.EstimatorName {
		t.Fatalf("unexpected counter name %q", counter.Name())
	}
	tokens, err := counter.CountString("hello world")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens != 2 {
		t.Fatalf("expected 2 tokens, got %d", tokens)
	}
}
