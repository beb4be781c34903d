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


package vectorize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/precedent/ai"
	"github.com/poiesic/precedent/core"
)

// Defaults match the production deployment this library grew out of.
const (
	DefaultBatchSize      = 100
	DefaultBatchDelay     = 100 * time.Millisecond
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Vectorizer produces unit-length embedding vectors for text, adding
// batching, rate limiting, retries, caching, and dimension enforcement on
// top of an ai.Embedder.
type Vectorizer struct {
	embedder       ai.Embedder
	cache          *embeddingCache // nil when caching is disabled
	limiter        *rate.Limiter
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger

	mu         sync.Mutex
	dimensions int // 0 until pinned by config or first embedding
}

// Option configures a Vectorizer.
type Option func(*Vectorizer) error

// WithBatchSize sets the maximum number of texts per upstream call.
// Default is DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(v *Vectorizer) error {
		if n <= 0 {
			return ErrInvalidBatchSize
		}
		v.batchSize = n
		return nil
	}
}

// WithBatchDelay sets the minimum delay between consecutive upstream
// batch calls. Default is DefaultBatchDelay.
func WithBatchDelay(d time.Duration) Option {
	return func(v *Vectorizer) error {
		if d <= 0 {
			v.limiter = rate.NewLimiter(rate.Inf, 1)
			return nil
		}
		v.limiter = rate.NewLimiter(rate.Every(d), 1)
		return nil
	}
}

// WithMaxRetries sets the number of attempts per upstream call.
// Default is DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(v *Vectorizer) error {
		if n <= 0 {
			return ErrInvalidMaxRetries
		}
		v.maxRetries = n
		return nil
	}
}

// WithRetryBaseDelay sets the base delay for retry backoff.
// Default is DefaultRetryBaseDelay.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(v *Vectorizer) error {
		v.retryBaseDelay = d
		return nil
	}
}

// WithDimensions pins the expected vector length up front instead of
// inferring it from the first embedding.
func WithDimensions(n int) Option {
	return func(v *Vectorizer) error {
		v.dimensions = n
		return nil
	}
}

// WithoutCache disables the in-process embedding cache.
func WithoutCache() Option {
	return func(v *Vectorizer) error {
		if v.cache != nil {
			v.cache.close()
			v.cache = nil
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vectorizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
		return nil
	}
}

// New creates a Vectorizer around the given embedder.
func New(embedder ai.Embedder, opts ...Option) (*Vectorizer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	cache, err := newEmbeddingCache(DefaultCacheMaxBytes)
	if err != nil {
		return nil, err
	}

	v := &Vectorizer{
		embedder:       embedder,
		cache:          cache,
		limiter:        rate.NewLimiter(rate.Every(DefaultBatchDelay), 1),
		batchSize:      DefaultBatchSize,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default().With("component", "vectorizer"),
	}

	for _, opt := range opts {
		if optErr := opt(v); optErr != nil {
			v.Close()
			return nil, optErr
		}
	}

	return v, nil
}

// Close releases the embedding cache. The Vectorizer should not be used
// after Close.
func (v *Vectorizer) Close() {
	if v.cache != nil {
		v.cache.close()
		v.cache = nil
	}
}

// Dimensions returns the pinned vector length, or 0 if no embedding has
// been produced yet and no dimension was configured.
func (v *Vectorizer) Dimensions() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dimensions
}

// Embed produces a unit-length embedding for a single text. Empty or
// whitespace-only text fails with core.ErrEmptyInput. Upstream failures
// are retried with backoff; after exhaustion the error is an
// *ai.ServiceError.
func (v *Vectorizer) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, core.ErrEmptyInput
	}

	key := cacheKey(trimmed)
	if v.cache != nil {
		if vector, ok := v.cache.get(key); ok {
			v.logger.Debug("embedding cache hit", "key", key[:16])
			return vector, nil
		}
	}

	var raw []float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		raw, embedErr = v.embedder.EmbedText(ctx, trimmed)
		return embedErr
	}, v.maxRetries, v.retryBaseDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &ai.ServiceError{Attempts: v.maxRetries, Err: err}
	}

	if err := v.checkDimension(len(raw)); err != nil {
		return nil, err
	}

	vector := NormalizeVector(raw)
	if v.cache != nil {
		v.cache.set(key, vector)
	}
	return vector, nil
}

// EmbedBatch produces embeddings for many texts. The result slices are
// parallel to the input: one vector and one error slot per text. Blank
// texts and texts whose sub-batch failed after retries get an empty
// vector and a non-nil error entry; the overall error is reserved for
// cancellation and dimension mismatches. Upstream calls are capped at
// the configured batch size with a minimum delay between them.
func (v *Vectorizer) EmbedBatch(ctx context.Context, texts []string) ([][]float32, []error, error) {
	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	// Resolve blanks and cache hits first; collect the rest for upstream.
	var pendingIdx []int
	var pendingTexts []string
	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			vectors[i] = []float32{}
			errs[i] = core.ErrEmptyInput
			continue
		}
		if v.cache != nil {
			if vector, ok := v.cache.get(cacheKey(trimmed)); ok {
				vectors[i] = vector
				continue
			}
		}
		pendingIdx = append(pendingIdx, i)
		pendingTexts = append(pendingTexts, trimmed)
	}

	for start := 0; start < len(pendingTexts); start += v.batchSize {
		end := min(start+v.batchSize, len(pendingTexts))
		batch := pendingTexts[start:end]

		// Cooperative rate limiting toward the embedding service.
		if err := v.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}

		var raw [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			raw, embedErr = v.embedder.EmbedTexts(ctx, batch)
			return embedErr
		}, v.maxRetries, v.retryBaseDelay)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, err
			}
			// Mark the whole sub-batch failed and keep going: later
			// sub-batches may still succeed.
			serviceErr := &ai.ServiceError{Attempts: v.maxRetries, Err: err}
			v.logger.Error("sub-batch embedding failed", "size", len(batch), "err", err)
			for _, idx := range pendingIdx[start:end] {
				vectors[idx] = []float32{}
				errs[idx] = serviceErr
			}
			continue
		}

		if len(raw) != len(batch) {
			return nil, nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(raw))
		}

		for j, vec := range raw {
			if err := v.checkDimension(len(vec)); err != nil {
				return nil, nil, err
			}
			idx := pendingIdx[start+j]
			vector := NormalizeVector(vec)
			vectors[idx] = vector
			if v.cache != nil {
				v.cache.set(cacheKey(batch[j]), vector)
			}
		}

		v.logger.Debug("sub-batch embedded", "size", len(batch))
	}

	return vectors, errs, nil
}

// checkDimension pins the vector length on first use and rejects any
// later mismatch. Vectors are never truncated or padded to fit.
func (v *Vectorizer) checkDimension(got int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dimensions == 0 {
		v.dimensions = got
		return nil
	}
	if got != v.dimensions {
		return &core.DimensionMismatchError{Expected: v.dimensions, Got: got}
	}
	return nil
}
