package subtitle

import (
	"strings"
	"unicode"

	"github.com/tmaki/subvoc/internal/timeline"
)

// Tokenize splits cue text into taggable tokens: whitespace-separated words
// with surrounding punctuation stripped. Inline markup tags are dropped
// first. Tokens that are pure punctuation disappear; the original text stays
// available on the entry as the display fallback.
func Tokenize(text string) []timeline.Token {
	text = stripTags(text)

	var tokens []timeline.Token
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if word == "" {
			continue
		}
		tokens = append(tokens, timeline.Token{Text: word})
	}
	return tokens
}

// removes <i>, <b>, <c.classname> and similar inline cue markup
func stripTags(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	depth := 0
	for _, r := range text {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
