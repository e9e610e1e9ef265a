package differ

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/clipperhouse/uax29/v2/words"
)

// Tokenize splits text into tokens whose concatenation is text.
// Line tokens keep their "\n" terminator; the last line has none when text does not end with one.
func Tokenize(text string, g Granularity) []string {
	if text == "" {
		return nil
	}

	switch g {
	case GranularityWord:
		var tokens []string
		iter := words.FromString(text)
		for iter.Next() {
			tokens = append(tokens, iter.Value())
		}
		return tokens
	case GranularityCharacter:
		var tokens []string
		iter := graphemes.FromString(text)
		for iter.Next() {
			tokens = append(tokens, iter.Value())
		}
		return tokens
	default:
		tokens := strings.SplitAfter(text, "\n")
		if tokens[len(tokens)-1] == "" {
			tokens = tokens[:len(tokens)-1]
		}
		return tokens
	}
}

// SplitLines returns the lines of text without terminators. Empty text has no lines
// and a trailing newline does not start a new line.
func SplitLines(text string, normalizeLineEndings bool) []string {
	if normalizeLineEndings {
		text = NormalizeLineEndings(text)
	}
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// NormalizeLineEndings rewrites CRLF and lone CR to LF.
func NormalizeLineEndings(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
