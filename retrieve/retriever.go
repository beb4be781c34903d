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


package retrieve

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/precedent/core"
	"github.com/poiesic/precedent/store"
)

const (
	// OverFetchFactor is how many candidates are requested from the index
	// per result slot. Deduplication keeps only the best chunk per
	// document, so the raw candidate list must run deeper than the limit.
	OverFetchFactor = 2

	// DefaultLimit is the result count when the query does not set one.
	DefaultLimit = 10

	// DefaultMinSimilarity is the similarity threshold when the query
	// does not set one.
	DefaultMinSimilarity = 0.7

	// SimilarToMinSimilarity is the looser threshold used when searching
	// by a stored document instead of free text.
	SimilarToMinSimilarity = 0.6

	// ExcerptLength bounds the excerpt attached to each match, in bytes.
	ExcerptLength = 500
)

// Query describes one retrieval request.
type Query struct {
	// Text is the natural-language description of the proposed
	// development.
	Text string

	// Filters restrict candidates by document metadata. All populated
	// predicates must hold.
	Filters core.Filters

	// Limit caps the number of matches. Zero means DefaultLimit.
	Limit int

	// MinSimilarity is the cosine similarity floor. Zero means
	// DefaultMinSimilarity; use a negative value to disable the floor.
	MinSimilarity float32

	// IncludeRefused widens the search to refused decisions. By default
	// only granted decisions are returned, unless Filters.Outcome is set
	// explicitly.
	IncludeRefused bool
}

// QueryEmbedder produces the embedding vector for query text.
// *vectorize.Vectorizer satisfies it.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever executes precedent searches.
type Retriever struct {
	docs     store.DocumentRepository
	index    store.VectorIndex
	embedder QueryEmbedder
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	docs store.DocumentRepository,
	index store.VectorIndex,
	embedder QueryEmbedder,
	opts ...Option,
) (*Retriever, error) {
	if docs == nil {
		return nil, ErrDocumentStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		docs:     docs,
		index:    index,
		embedder: embedder,
		logger:   slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Search finds precedents matching the query text and filters. The
// result holds at most one match per document, ordered by similarity
// descending. An empty result set is returned as an empty slice with a
// nil error; infrastructure failure surfaces as *UnavailableError.
func (r *Retriever) Search(ctx context.Context, query Query) ([]*core.Match, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, core.ErrEmptyInput
	}
	if query.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	limit := query.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	minSimilarity := query.MinSimilarity
	if minSimilarity == 0 {
		minSimilarity = DefaultMinSimilarity
	} else if minSimilarity < 0 {
		minSimilarity = 0
	}

	filters := query.Filters
	if !query.IncludeRefused && filters.Outcome == core.OutcomeUnspecified {
		filters.Outcome = core.OutcomeGranted
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		r.logger.Error("error embedding query", "err", err)
		return nil, err
	}

	candidates, err := r.index.Nearest(ctx, vector, &filters, minSimilarity, limit*OverFetchFactor)
	if err != nil {
		r.logger.Error("error querying vector index", "err", err)
		return nil, &UnavailableError{Op: "nearest", Err: err}
	}

	matches, err := r.resolveMatches(ctx, candidates, limit, "")
	if err != nil {
		return nil, err
	}

	r.logger.Debug("search completed",
		"queryLength", len(text), "candidates", len(candidates), "matches", len(matches))
	return matches, nil
}

// SimilarToDocument finds precedents similar to a stored document,
// seeding the query with the document's leading chunk and excluding the
// document itself from the results. A looser similarity floor applies
// than for free-text search.
func (r *Retriever) SimilarToDocument(ctx context.Context, documentID string, limit int) ([]*core.Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	chunks, err := r.docs.GetChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return []*core.Match{}, nil
	}

	vector, err := r.embedder.Embed(ctx, chunks[0].Text)
	if err != nil {
		return nil, err
	}

	// One extra result slot because the source document itself will come
	// back as the closest match and is dropped.
	filters := &core.Filters{Outcome: core.OutcomeGranted}
	candidates, err := r.index.Nearest(ctx, vector, filters, SimilarToMinSimilarity, (limit+1)*OverFetchFactor)
	if err != nil {
		return nil, &UnavailableError{Op: "nearest", Err: err}
	}

	return r.resolveMatches(ctx, candidates, limit, documentID)
}

// resolveMatches deduplicates candidates to one per document and loads
// the backing records. Candidates are ranked by similarity descending
// with ties broken by lowest chunk index, so earliest-appearing content
// wins within a document.
func (r *Retriever) resolveMatches(ctx context.Context, candidates []*store.IndexMatch, limit int, excludeDocumentID string) ([]*core.Match, error) {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b *store.IndexMatch) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return a.ChunkIndex - b.ChunkIndex
	})

	matches := make([]*core.Match, 0, limit)
	seen := make(map[string]bool)

	for _, candidate := range ranked {
		if len(matches) >= limit {
			break
		}
		if candidate.DocumentID == excludeDocumentID {
			continue
		}
		if seen[candidate.DocumentID] {
			continue
		}
		seen[candidate.DocumentID] = true

		doc, err := r.docs.GetDocument(ctx, candidate.DocumentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Index entry outlived its document; skip rather than fail
				// the whole query.
				r.logger.Warn("index entry for missing document", "documentID", candidate.DocumentID)
				continue
			}
			return nil, &UnavailableError{Op: "get document", Err: err}
		}

		chunk, err := r.docs.GetChunk(ctx, candidate.DocumentID, candidate.ChunkIndex)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				r.logger.Warn("index entry for missing chunk",
					"documentID", candidate.DocumentID, "chunkIndex", candidate.ChunkIndex)
				continue
			}
			return nil, &UnavailableError{Op: "get chunk", Err: err}
		}

		matches = append(matches, &core.Match{
			Document:    doc,
			Chunk:       chunk,
			Score:       candidate.Score,
			Excerpt:     excerpt(chunk.Text),
			KeyPolicies: ExtractPolicies(chunk.Text),
		})
	}

	return matches, nil
}

// excerpt returns a bounded prefix of the chunk text, cut back to a rune
// boundary so the excerpt is always valid UTF-8.
func excerpt(text string) string {
	if len(text) <= ExcerptLength {
		return text
	}
	cut := ExcerptLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
