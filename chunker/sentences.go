package chunker

import "strings"

// splitSentences splits normalized section text into sentences.
// Normalize marks sentence boundaries with newlines, so each non-empty
// line is one sentence. A section with no boundaries at all comes back
// as a single sentence.
func splitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			sentences = append(sentences, line)
		}
	}
	return sentences
}
