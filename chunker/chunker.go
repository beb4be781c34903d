// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunker

import (
	"log/slog"
	"strings"

	"github.com/poiesic/precedent/core"
)

// Defaults match the production deployment this library grew out of.
const (
	DefaultMaxTokens     = 500
	DefaultOverlapTokens = 50
	DefaultMaxChunks     = 100
)

// Chunker turns normalized document text into an ordered list of
// token-bounded chunks.
type Chunker struct {
	maxTokens     int
	overlapTokens int
	maxChunks     int
	counter       TokenCounter
	logger        *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithMaxTokens sets the maximum token count per chunk.
// Default is DefaultMaxTokens.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) error {
		if n <= 0 {
			return ErrInvalidMaxTokens
		}
		c.maxTokens = n
		return nil
	}
}

// WithOverlapTokens sets the token overlap carried between consecutive
// chunks. Default is DefaultOverlapTokens.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) error {
		if n < 0 {
			return ErrInvalidOverlap
		}
		c.overlapTokens = n
		return nil
	}
}

// WithMaxChunks sets the per-document chunk cap. Documents producing more
// chunks are truncated with a warning. Default is DefaultMaxChunks.
func WithMaxChunks(n int) Option {
	return func(c *Chunker) error {
		if n <= 0 {
			return ErrInvalidMaxChunks
		}
		c.maxChunks = n
		return nil
	}
}

// WithTokenCounter sets the token counter used for chunk budgeting.
// Default is the cl100k_base tiktoken counter.
func WithTokenCounter(counter TokenCounter) Option {
	return func(c *Chunker) error {
		if counter == nil {
			return ErrTokenCounterRequired
		}
		c.counter = counter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a Chunker with the default configuration and applies the
// provided options.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxTokens:     DefaultMaxTokens,
		overlapTokens: DefaultOverlapTokens,
		maxChunks:     DefaultMaxChunks,
		counter:       NewTiktokenCounter(),
		logger:        slog.Default().With("component", "chunker"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.overlapTokens >= c.maxTokens {
		return nil, ErrOverlapTooLarge
	}

	return c, nil
}

// sentence pairs a sentence with its token count so overlap seeding does
// not recount.
type sentence struct {
	text   string
	tokens int
}

// ChunkDocument splits a document's raw text into chunks. The text is
// normalized, segmented into sections, and each section is accumulated
// into token-bounded chunks with overlap between neighbors. Empty or
// whitespace-only input yields zero chunks. Chunk indices are 0-based and
// contiguous across the whole document.
func (c *Chunker) ChunkDocument(documentID, text string) []*core.Chunk {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	var chunks []*core.Chunk
	truncated := false

	for _, sec := range splitSections(normalized) {
		for _, piece := range c.chunkSection(sec) {
			if len(chunks) >= c.maxChunks {
				truncated = true
				break
			}
			index := len(chunks)
			chunks = append(chunks, &core.Chunk{
				ID:         core.ChunkID(documentID, index),
				DocumentID: documentID,
				Index:      index,
				Text:       piece.text,
				TokenCount: piece.tokens,
				Section:    sec.tag,
			})
		}
		if truncated {
			break
		}
	}

	if truncated {
		c.logger.Warn("document exceeded chunk cap, truncating",
			"documentID", documentID, "maxChunks", c.maxChunks, "textLength", len(text))
	}

	c.logger.Debug("document chunked",
		"documentID", documentID, "chunks", len(chunks))

	return chunks
}

// chunkSection accumulates a section's sentences into bounded pieces.
func (c *Chunker) chunkSection(sec section) []sentence {
	sentences := splitSentences(sec.text)

	var pieces []sentence
	var current []sentence
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		for i, s := range current {
			texts[i] = s.text
		}
		pieces = append(pieces, sentence{
			text:   strings.Join(texts, " "),
			tokens: currentTokens,
		})
	}

	for _, text := range sentences {
		s := sentence{text: text, tokens: c.counter.Count(text)}

		// A sentence that alone exceeds the budget is hard-split on
		// word boundaries. The running chunk is closed first and no
		// overlap is carried across the split.
		if s.tokens > c.maxTokens {
			flush()
			current = nil
			currentTokens = 0
			for _, part := range c.hardSplit(s.text) {
				pieces = append(pieces, sentence{
					text:   part,
					tokens: c.counter.Count(part),
				})
			}
			continue
		}

		if currentTokens+s.tokens > c.maxTokens && len(current) > 0 {
			flush()

			// Seed the next chunk with trailing sentences of the one
			// just closed, dropping seeds from the front if the overlap
			// plus the new sentence would itself break the budget.
			overlap, overlapTokens := c.overlapWindow(current)
			for len(overlap) > 0 && overlapTokens+s.tokens > c.maxTokens {
				overlapTokens -= overlap[0].tokens
				overlap = overlap[1:]
			}

			current = append(overlap, s)
			currentTokens = overlapTokens + s.tokens
			continue
		}

		current = append(current, s)
		currentTokens += s.tokens
	}
	flush()

	return pieces
}

// overlapWindow takes sentences from the end of a closed chunk until the
// overlap token budget is exhausted.
func (c *Chunker) overlapWindow(closed []sentence) ([]sentence, int) {
	var window []sentence
	tokens := 0
	for i := len(closed) - 1; i >= 0; i-- {
		if tokens+closed[i].tokens > c.overlapTokens {
			break
		}
		window = append([]sentence{closed[i]}, window...)
		tokens += closed[i].tokens
	}
	return window, tokens
}

// hardSplit cuts an oversized sentence into word-boundary pieces, each
// within the token budget unless a single word alone exceeds it.
func (c *Chunker) hardSplit(text string) []string {
	words := strings.Fields(text)

	var pieces []string
	var current []string
	tokens := 0

	for _, word := range words {
		wordTokens := c.counter.Count(word)
		if tokens+wordTokens > c.maxTokens && len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
			tokens = 0
		}
		current = append(current, word)
		tokens += wordTokens
	}
	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}

	return pieces
}
