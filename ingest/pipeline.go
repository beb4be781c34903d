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


package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/precedent/chunker"
	"github.com/poiesic/precedent/core"
	"github.com/poiesic/precedent/store"
)

// BatchEmbedder produces embeddings for many texts at once.
// *vectorize.Vectorizer satisfies it.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, []error, error)
}

// Pipeline orchestrates ingestion of planning decision documents.
type Pipeline struct {
	docs       store.DocumentRepository
	index      store.VectorIndex
	chunker    *chunker.Chunker
	vectorizer BatchEmbedder
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for IngestAll.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	docs store.DocumentRepository,
	index store.VectorIndex,
	chk *chunker.Chunker,
	vectorizer BatchEmbedder,
	opts ...Option,
) (*Pipeline, error) {
	if docs == nil {
		return nil, ErrDocumentStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if chk == nil {
		return nil, ErrChunkerRequired
	}
	if vectorizer == nil {
		return nil, ErrVectorizerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		docs:       docs,
		index:      index,
		chunker:    chk,
		vectorizer: vectorizer,
		pool:       pool,
		logger:     slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Document is one unit of work for ingestion.
type Document struct {
	ID       string
	Text     string
	Metadata core.DocumentMetadata
}

// Result reports what a single ingestion produced.
type Result struct {
	DocumentID string
	Chunks     int // chunks stored
	Embedded   int // chunks embedded and indexed
	Err        error
}

// Ingest validates, chunks, embeds, stores, and indexes one document.
// Re-ingesting an existing ID replaces the document and its entire
// chunk set. Chunks whose embedding failed after retries are stored
// without a vector and excluded from the index; the ingestion itself
// still succeeds.
func (p *Pipeline) Ingest(ctx context.Context, documentID, rawText string, metadata core.DocumentMetadata) (*Result, error) {
	doc := &core.SourceDocument{
		ID:         documentID,
		Text:       chunker.Normalize(rawText),
		Metadata:   metadata,
		IngestedAt: time.Now().UTC(),
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	chunks := p.chunker.ChunkDocument(documentID, rawText)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, chunkErrs, err := p.vectorizer.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	embedded := 0
	for i, chunk := range chunks {
		if chunkErrs[i] != nil {
			p.logger.Warn("chunk embedding failed, storing without vector",
				"documentID", documentID, "chunkIndex", chunk.Index, "err", chunkErrs[i])
			continue
		}
		chunk.Vector = vectors[i]
		embedded++
	}

	if err := p.docs.ReplaceDocument(ctx, doc, chunks); err != nil {
		return nil, err
	}

	// Replace the document's index entries wholesale: stale entries from
	// a previous chunk set must not survive re-ingestion.
	if err := p.index.DeleteByDocument(ctx, documentID); err != nil {
		return nil, err
	}

	entries := make([]*store.IndexEntry, 0, embedded)
	for _, chunk := range chunks {
		if len(chunk.Vector) == 0 {
			continue
		}
		entries = append(entries, &store.IndexEntry{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.Index,
			Vector:     chunk.Vector,
			Metadata:   metadata,
		})
	}
	if err := p.index.Upsert(ctx, entries...); err != nil {
		return nil, err
	}

	p.logger.Info("document ingested",
		"documentID", documentID, "chunks", len(chunks), "embedded", embedded)

	return &Result{DocumentID: documentID, Chunks: len(chunks), Embedded: embedded}, nil
}

// IngestAll ingests documents concurrently over the worker pool and
// returns one Result per input, in input order. Failures are recorded
// on the Result rather than aborting the batch.
func (p *Pipeline) IngestAll(ctx context.Context, documents []Document) []*Result {
	results := make([]*Result, len(documents))

	var wg sync.WaitGroup
	for i, doc := range documents {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			result, err := p.Ingest(ctx, doc.ID, doc.Text, doc.Metadata)
			if err != nil {
				p.logger.Error("error ingesting document", "documentID", doc.ID, "err", err)
				result = &Result{DocumentID: doc.ID, Err: err}
			}
			results[i] = result
		})
		if submitErr != nil {
			results[i] = &Result{DocumentID: doc.ID, Err: submitErr}
			wg.Done()
		}
	}
	wg.Wait()

	return results
}

// Delete removes a document, its chunks, and its index entries.
func (p *Pipeline) Delete(ctx context.Context, documentID string) error {
	if err := p.docs.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	return p.index.DeleteByDocument(ctx, documentID)
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
