package tokenizer

import (
	"math"
	"strings"
	"unicode/utf8"
)

// EstimatorName identifies the heuristic counter.
const EstimatorName = "estimate"

const (
	latinCharactersPerToken    = 4.7
	cyrillicCharactersPerToken = 3.3
	arabicCharactersPerToken   = 2.7

	cyrillicStart    = 0x0400
	cyrillicEnd      = 0x04FF
	arabicStart      = 0x0600
	arabicEnd        = 0x06FF
	cjkStart         = 0x4E00
	cjkEnd           = 0x9FFF
	kanaStart        = 0x3040
	kanaEnd          = 0x30FF
	shortWordLength  = 3
	lowercaseBitMask = 0x20
)

type characterCategory uint8

const (
	categoryOther characterCategory = iota
	categoryWhitespace
	categoryDigit
	categoryLatin
	categoryPunctuation
)

var asciiCategories = buildASCIICategories()

var commonWords = map[string]struct{}{
	"the": {}, "be": {}, "to": {}, "of": {}, "and": {}, "a": {}, "in": {}, "that": {}, "have": {}, "i": {},
	"it": {}, "for": {}, "not": {}, "on": {}, "with": {}, "he": {}, "as": {}, "you": {}, "do": {}, "at": {},
	"this": {}, "but": {}, "his": {}, "by": {}, "from": {}, "they": {}, "we": {}, "say": {}, "her": {}, "she": {},
	"or": {}, "an": {}, "will": {}, "my": {}, "one": {}, "all": {}, "would": {}, "there": {}, "their": {},
	"if": {}, "const": {}, "let": {}, "var": {}, "function": {}, "return": {}, "while": {},
	"async": {}, "await": {}, "class": {}, "import": {}, "export": {}, "default": {}, "new": {},
	"else": {}, "case": {}, "break": {}, "continue": {}, "switch": {}, "typeof": {}, "void": {},
}

func buildASCIICategories() [utf8.RuneSelf]characterCategory {
	var categories [utf8.RuneSelf]characterCategory
	for _, whitespace := range []byte{'\t', '\n', '\r', ' '} {
		categories[whitespace] = categoryWhitespace
	}
	for character := '0'; character <= '9'; character++ {
		categories[character] = categoryDigit
	}
	for character := 'A'; character <= 'Z'; character++ {
		categories[character] = categoryLatin
		categories[character+lowercaseBitMask] = categoryLatin
	}
	for _, punctuation := range []byte("!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~") {
		categories[punctuation] = categoryPunctuation
	}
	return categories
}

// Estimator is the default Counter: a fast categorical heuristic, deterministic and side-effect free.
type Estimator struct{}

// Name returns EstimatorName.
func (Estimator) Name() string {
	return EstimatorName
}

// CountString returns Estimate(input). It never fails.
func (Estimator) CountString(input string) (int, error) {
	return Estimate(input), nil
}

// Estimate returns an approximate subword token count for text in a single pass.
func Estimate(text string) int {
	tokenCount := 0
	index := 0
	length := len(text)

	for index < length {
		currentByte := text[index]
		if currentByte < utf8.RuneSelf {
			switch asciiCategories[currentByte] {
			case categoryWhitespace:
				index++
			case categoryLatin:
				wordTokens, wordEnd := countLatinWord(text, index)
				tokenCount += wordTokens
				index = wordEnd
			case categoryDigit:
				digitTokens, digitEnd := countDigits(text, index)
				tokenCount += digitTokens
				index = digitEnd
			default:
				tokenCount++
				index++
			}
			continue
		}

		codePoint, width := utf8.DecodeRuneInString(text[index:])
		switch {
		case isCyrillic(codePoint):
			runeCount, runEnd := consumeRun(text, index, isCyrillic)
			tokenCount += scaledTokens(runeCount, cyrillicCharactersPerToken)
			index = runEnd
		case isArabic(codePoint):
			runeCount, runEnd := consumeRun(text, index, isArabic)
			tokenCount += scaledTokens(runeCount, arabicCharactersPerToken)
			index = runEnd
		case isCJK(codePoint):
			tokenCount++
			index += width
		default:
			tokenCount++
			index += width
		}
	}
	return tokenCount
}

func countLatinWord(text string, start int) (int, int) {
	length := len(text)
	wordEnd := start + 1
	for wordEnd < length && isASCIILetter(text[wordEnd]) {
		wordEnd++
	}

	hasContraction := false
	if wordEnd < length && text[wordEnd] == '\'' {
		suffixStart := wordEnd + 1
		if suffixStart < length {
			firstSuffixByte := text[suffixStart] | lowercaseBitMask
			switch {
			case firstSuffixByte == 's' || firstSuffixByte == 't' || firstSuffixByte == 'm' || firstSuffixByte == 'd':
				wordEnd = suffixStart + 1
				hasContraction = true
			case suffixStart+1 < length:
				secondSuffixByte := text[suffixStart+1] | lowercaseBitMask
				if (firstSuffixByte == 'r' && secondSuffixByte == 'e') ||
					(firstSuffixByte == 'v' && secondSuffixByte == 'e') ||
					(firstSuffixByte == 'l' && secondSuffixByte == 'l') {
					wordEnd = suffixStart + 2
					hasContraction = true
				}
			}
		}
	}

	wordLength := wordEnd - start
	tokens := 1
	if _, isCommon := commonWords[strings.ToLower(text[start:wordEnd])]; !isCommon && wordLength > shortWordLength {
		tokens = scaledTokens(wordLength, latinCharactersPerToken)
	}
	if hasContraction {
		tokens++
	}
	return tokens, wordEnd
}

func countDigits(text string, start int) (int, int) {
	length := len(text)
	digitEnd := start + 1
	hasHexPrefix := start > 1 && text[start-1] == 'x' && text[start-2] == '0'
	if hasHexPrefix {
		for digitEnd < length && isHexDigit(text[digitEnd]) {
			digitEnd++
		}
	} else {
		for digitEnd < length && isDecimalDigit(text[digitEnd]) {
			digitEnd++
		}
	}

	digitCount := digitEnd - start
	switch {
	case hasHexPrefix || digitCount == 4:
		return 1, digitEnd
	case digitCount <= 2:
		return 1, digitEnd
	default:
		return (digitCount + 2) / 3, digitEnd
	}
}

func consumeRun(text string, start int, belongs func(rune) bool) (int, int) {
	runeCount := 0
	index := start
	for index < len(text) {
		codePoint, width := utf8.DecodeRuneInString(text[index:])
		if !belongs(codePoint) {
			break
		}
		runeCount++
		index += width
	}
	return runeCount, index
}

// scaledTokens divides a run length by the characters-per-token ratio, rounding half up, never below one.
func scaledTokens(characterCount int, charactersPerToken float64) int {
	return max(1, int(math.Floor(float64(characterCount)/charactersPerToken+0.5)))
}

func isASCIILetter(value byte) bool {
	return (value >= 'a' && value <= 'z') || (value >= 'A' && value <= 'Z')
}

func isDecimalDigit(value byte) bool {
	return value >= '0' && value <= '9'
}

func isHexDigit(value byte) bool {
	return isDecimalDigit(value) || (value >= 'a' && value <= 'f') || (value >= 'A' && value <= 'F')
}

func isCyrillic(codePoint rune) bool {
	return codePoint >= cyrillicStart && codePoint <= cyrillicEnd
}

func isArabic(codePoint rune) bool {
	return codePoint >= arabicStart && codePoint <= arabicEnd
}

// isCJK covers the unified ideographs and both kana blocks. Each such character counts as one token,
// like punctuation and uncategorized characters.
func isCJK(codePoint rune) bool {
	return (codePoint >= cjkStart && codePoint <= cjkEnd) || (codePoint >= kanaStart && codePoint <= kanaEnd)
}
