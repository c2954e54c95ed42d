package services

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinSentenceLength is the rune count a sentence must exceed to be embedded.
const DefaultMinSentenceLength = 20

// SplitSentences splits text on periods and newlines, keeping trimmed sentences
// longer than minLength runes.
func SplitSentences(text string, minLength int) []string {
	if minLength < 0 {
		minLength = 0
	}

	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n'
	})

	var sentences []string
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minLength {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
