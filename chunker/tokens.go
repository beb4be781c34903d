package chunker

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports how many tokens a piece of text occupies in the
// embedding model's vocabulary.
type TokenCounter interface {
	Count(text string) int
}

// NewTiktokenCounter returns a TokenCounter backed by the cl100k_base
// encoding. The encoding is loaded lazily on first use; if the encoding
// data cannot be loaded (for example, offline with no cache), counting
// falls back to whitespace-delimited words.
func NewTiktokenCounter() TokenCounter {
	return &tiktokenCounter{}
}

type tiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func (t *tiktokenCounter) Count(text string) int {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding("cl100k_base")
	})
	if t.err != nil {
		return len(strings.Fields(text))
	}
	return len(t.enc.Encode(text, nil, nil))
}

// NewWordCounter returns a TokenCounter that counts whitespace-delimited
// words. Useful in tests and offline environments.
func NewWordCounter() TokenCounter {
	return wordCounter{}
}

type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}
