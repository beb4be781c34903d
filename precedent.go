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


// Package precedent assembles the chunking, embedding, storage, and
// retrieval components into a single engine for searching historical
// planning decisions by semantic similarity.
package precedent

import (
	"log/slog"

	"github.com/poiesic/precedent/ai"
	"github.com/poiesic/precedent/ai/openai"
	"github.com/poiesic/precedent/chunker"
	"github.com/poiesic/precedent/ingest"
	"github.com/poiesic/precedent/retrieve"
	"github.com/poiesic/precedent/store"
	badgerstore "github.com/poiesic/precedent/store/badger"
	"github.com/poiesic/precedent/vectorize"
)

// Engine owns the storage backend and embedding stack and hands out
// ingestion pipelines and retrievers wired to them.
type Engine struct {
	backend    *badgerstore.Backend
	docs       store.DocumentRepository
	index      store.VectorIndex
	vectorizer *vectorize.Vectorizer
	chunker    *chunker.Chunker
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder substitutes the embedding backend, bypassing the
// OpenAI-compatible client. Intended for tests.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithInMemory keeps all storage in memory instead of on disk. The
// file path passed to New is ignored.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// New opens the storage backend at filePath and wires up the engine.
func New(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badgerstore.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	vectorizer, err := vectorize.New(embedder,
		vectorize.WithDimensions(options.aiConfig.Dimensions))
	if err != nil {
		backend.Close()
		return nil, err
	}

	chk, err := chunker.New()
	if err != nil {
		vectorizer.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:    backend,
		docs:       badgerstore.NewDocumentStore(backend),
		index:      badgerstore.NewIndex(backend),
		vectorizer: vectorizer,
		chunker:    chk,
		logger:     slog.Default(),
	}, nil
}

// Close releases the embedding cache and the storage backend.
func (e *Engine) Close() error {
	e.vectorizer.Close()

	if err := e.index.Close(); err != nil {
		e.logger.Error("error closing vector index", "err", err)
	}
	if err := e.docs.Close(); err != nil {
		e.logger.Error("error closing document repository", "err", err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// DocumentRepository exposes stored documents and chunks.
func (e *Engine) DocumentRepository() store.DocumentRepository {
	return e.docs
}

// VectorIndex exposes the similarity index.
func (e *Engine) VectorIndex() store.VectorIndex {
	return e.index
}

// NewIngestionPipeline creates an ingestion pipeline backed by this
// engine's storage and embedding stack.
func (e *Engine) NewIngestionPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(e.docs, e.index, e.chunker, e.vectorizer, opts...)
}

// NewRetriever creates a retriever backed by this engine's storage and
// embedding stack.
func (e *Engine) NewRetriever(opts ...retrieve.Option) (*retrieve.Retriever, error) {
	return retrieve.NewRetriever(e.docs, e.index, e.vectorizer, opts...)
}
