package chunker

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes document text before chunking. Runs of
// whitespace collapse to single spaces, then sentence breaks are
// reinserted after terminal punctuation followed by a capital letter.
// Scraped decision notices frequently arrive with their line breaks
// stripped; this repairs them well enough for sentence splitting.
func Normalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")

	runes := []rune(collapsed)
	var b strings.Builder
	b.Grow(len(collapsed))
	for i, r := range runes {
		if r == ' ' && i > 0 && isSentenceEnd(runes[i-1]) &&
			i+1 < len(runes) && unicode.IsUpper(runes[i+1]) {
			b.WriteRune('\n')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
