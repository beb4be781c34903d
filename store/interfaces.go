package store

import (
	"context"

	"github.com/poiesic/precedent/core"
)

// Stats summarizes the stored corpus.
type Stats struct {
	Documents      int
	Chunks         int
	EmbeddedChunks int // chunks that carry an embedding vector
}

// DocumentRepository stores source documents together with their chunk
// sets. Implementations must be safe for concurrent use. A document and
// its chunks are always written in one transaction, so a reader never
// observes a partial chunk set.
type DocumentRepository interface {
	// AddDocument stores a new document and its full chunk set.
	// Returns ErrDuplicateKey if a document with the same ID exists.
	AddDocument(ctx context.Context, doc *core.SourceDocument, chunks []*core.Chunk) error

	// ReplaceDocument stores a document and its full chunk set, replacing
	// any previous document and chunks under the same ID. The swap is a
	// single transaction. Replacing an absent document is an insert.
	ReplaceDocument(ctx context.Context, doc *core.SourceDocument, chunks []*core.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.SourceDocument, error)

	// GetChunks retrieves a document's chunks in index order.
	// Returns ErrNotFound if the document doesn't exist.
	GetChunks(ctx context.Context, documentID string) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by its document and ordinal index.
	// Returns ErrNotFound if either doesn't exist.
	GetChunk(ctx context.Context, documentID string, index int) (*core.Chunk, error)

	// DeleteDocument removes a document and all of its chunks in one
	// transaction. Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id string) error

	// Stats reports document and chunk counts.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases resources held by the repository.
	Close() error
}

// IndexEntry is a chunk embedding together with the filterable metadata
// of its owning document. The metadata rides along so queries filter
// without a document lookup per candidate.
type IndexEntry struct {
	ChunkID    core.ID
	DocumentID string
	ChunkIndex int
	Vector     []float32
	Metadata   core.DocumentMetadata
}

// IndexMatch is one nearest-neighbor candidate.
type IndexMatch struct {
	ChunkID    core.ID
	DocumentID string
	ChunkIndex int
	Score      float32
}

// VectorIndex answers nearest-neighbor queries over chunk embeddings.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// Upsert inserts or replaces index entries. All vectors in the index
	// share one dimension; an entry with a different vector length is
	// rejected with *core.DimensionMismatchError.
	Upsert(ctx context.Context, entries ...*IndexEntry) error

	// DeleteByDocument removes every entry belonging to a document.
	// Deleting an unindexed document is a no-op.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Nearest returns up to k entries with cosine similarity to vector of
	// at least minSimilarity, restricted to entries whose metadata
	// satisfies all filter predicates. Results are ordered by similarity
	// descending. A nil filter imposes no restriction.
	Nearest(ctx context.Context, vector []float32, filter *core.Filters, minSimilarity float32, k int) ([]*IndexMatch, error)

	// Close releases resources held by the index.
	Close() error
}
