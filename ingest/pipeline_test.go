package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/precedent/ai/mock"
	"github.com/poiesic/precedent/chunker"
	"github.com/poiesic/precedent/core"
	"github.com/poiesic/precedent/store"
	badgerstore "github.com/poiesic/precedent/store/badger"
	"github.com/poiesic/precedent/vectorize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPipeline struct {
	pipeline *Pipeline
	docs     store.DocumentRepository
	index    store.VectorIndex
	embedder *mock.MockEmbedder
}

func newTestPipeline(t *testing.T, opts ...Option) *testPipeline {
	t.Helper()

	docs, index, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 8

	vectorizer, err := vectorize.New(embedder,
		vectorize.WithBatchSize(1),
		vectorize.WithBatchDelay(0),
		vectorize.WithMaxRetries(1),
		vectorize.WithRetryBaseDelay(0),
	)
	require.NoError(t, err)
	t.Cleanup(vectorizer.Close)

	chk, err := chunker.New(
		chunker.WithTokenCounter(chunker.NewWordCounter()),
		chunker.WithMaxTokens(10),
		chunker.WithOverlapTokens(0),
	)
	require.NoError(t, err)

	pipeline, err := NewPipeline(docs, index, chk, vectorizer, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &testPipeline{pipeline: pipeline, docs: docs, index: index, embedder: embedder}
}

func grantedMetadata() core.DocumentMetadata {
	return core.DocumentMetadata{
		Ward:            "Riverside",
		Outcome:         core.OutcomeGranted,
		DevelopmentType: core.DevelopmentRearExtension,
	}
}

func TestNewPipeline(t *testing.T) {
	tp := newTestPipeline(t)
	chk, err := chunker.New(chunker.WithTokenCounter(chunker.NewWordCounter()))
	require.NoError(t, err)

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewPipeline(nil, tp.index, chk, tp.pipeline.vectorizer)
		assert.ErrorIs(t, err, ErrDocumentStoreRequired)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewPipeline(tp.docs, nil, chk, tp.pipeline.vectorizer)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("nil chunker", func(t *testing.T) {
		_, err := NewPipeline(tp.docs, tp.index, nil, tp.pipeline.vectorizer)
		assert.ErrorIs(t, err, ErrChunkerRequired)
	})

	t.Run("nil vectorizer", func(t *testing.T) {
		_, err := NewPipeline(tp.docs, tp.index, chk, nil)
		assert.ErrorIs(t, err, ErrVectorizerRequired)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	text := "The proposal is a single storey rear extension. " +
		"The extension would not harm neighbouring amenity and accords with the development plan. " +
		"Permission is granted subject to conditions."

	result, err := tp.pipeline.Ingest(ctx, "app-2024-001", text, grantedMetadata())
	require.NoError(t, err)

	assert.Equal(t, "app-2024-001", result.DocumentID)
	assert.Greater(t, result.Chunks, 1)
	assert.Equal(t, result.Chunks, result.Embedded)

	doc, err := tp.docs.GetDocument(ctx, "app-2024-001")
	require.NoError(t, err)
	assert.Equal(t, chunker.Normalize(text), doc.Text)
	assert.Equal(t, "Riverside", doc.Metadata.Ward)
	assert.False(t, doc.IngestedAt.IsZero())

	chunks, err := tp.docs.GetChunks(ctx, "app-2024-001")
	require.NoError(t, err)
	require.Len(t, chunks, result.Chunks)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Vector, "chunk %d should carry its embedding", chunk.Index)
	}

	// Indexed chunks are reachable by nearest-neighbor search.
	matches, err := tp.index.Nearest(ctx, chunks[0].Vector, &core.Filters{}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, matches, result.Embedded)
}

func TestIngest_EmptyText(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	_, err := tp.pipeline.Ingest(ctx, "app-2024-002", "   \n\t  ", grantedMetadata())
	require.ErrorIs(t, err, core.ErrEmptyInput)
	assert.Contains(t, err.Error(), "app-2024-002", "validation error names the offending document")
}

func TestIngest_MissingDocumentID(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	_, err := tp.pipeline.Ingest(ctx, "", "some decision text.", grantedMetadata())
	assert.ErrorIs(t, err, core.ErrMissingDocumentID)
}

func TestIngest_ReplacesChunkSet(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	long := "First sentence about the proposal here now. " +
		"Second sentence on amenity impact considered carefully today. " +
		"Third sentence about the decision reached after assessment."
	first, err := tp.pipeline.Ingest(ctx, "app-2024-003", long, grantedMetadata())
	require.NoError(t, err)
	require.Greater(t, first.Chunks, 1)

	second, err := tp.pipeline.Ingest(ctx, "app-2024-003", "Short replacement text.", grantedMetadata())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Chunks)

	chunks, err := tp.docs.GetChunks(ctx, "app-2024-003")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Short replacement text.", chunks[0].Text)

	// Stale index entries from the first chunk set are gone.
	matches, err := tp.index.Nearest(ctx, chunks[0].Vector, &core.Filters{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, chunks[0].ID, matches[0].ChunkID)
}

func TestIngest_FailedEmbeddingStoredUnindexed(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	// Batch size is 1, so only the sub-batch containing the marker fails.
	tp.embedder.EmbedTextsFunc = failOnMarker(tp.embedder)

	text := "This opening sentence embeds without any trouble at all. " +
		"UNEMBEDDABLE sentence that the embedding service always rejects outright. " +
		"This closing sentence also embeds without any trouble."

	result, err := tp.pipeline.Ingest(ctx, "app-2024-004", text, grantedMetadata())
	require.NoError(t, err, "partial embedding failure must not fail ingestion")
	assert.Equal(t, 3, result.Chunks)
	assert.Equal(t, 2, result.Embedded)

	chunks, err := tp.docs.GetChunks(ctx, "app-2024-004")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.NotEmpty(t, chunks[0].Vector)
	assert.Empty(t, chunks[1].Vector, "failed chunk is stored without a vector")
	assert.NotEmpty(t, chunks[2].Vector)

	matches, err := tp.index.Nearest(ctx, chunks[0].Vector, &core.Filters{}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2, "failed chunk never enters the index")
}

// failOnMarker builds an EmbedTextsFunc that rejects texts containing
// the marker and otherwise delegates to the default behavior.
func failOnMarker(embedder *mock.MockEmbedder) func(ctx context.Context, texts []string) ([][]float32, error) {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.Contains(text, "UNEMBEDDABLE") {
				return nil, errors.New("service down")
			}
		}
		saved := embedder.EmbedTextsFunc
		embedder.EmbedTextsFunc = nil
		defer func() { embedder.EmbedTextsFunc = saved }()
		return embedder.EmbedTexts(ctx, texts)
	}
}

func TestIngestAll(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t, WithPoolSize(2))

	documents := []Document{
		{ID: "batch-1", Text: "First decision notice text for the batch.", Metadata: grantedMetadata()},
		{ID: "batch-2", Text: "Second decision notice text for the batch.", Metadata: grantedMetadata()},
		{ID: "batch-3", Text: "   ", Metadata: grantedMetadata()}, // invalid
		{ID: "batch-4", Text: "Fourth decision notice text for the batch.", Metadata: grantedMetadata()},
	}

	results := tp.pipeline.IngestAll(ctx, documents)
	require.Len(t, results, 4)

	for i, result := range results {
		require.NotNil(t, result, "result %d", i)
		assert.Equal(t, documents[i].ID, result.DocumentID)
	}

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.ErrorIs(t, results[2].Err, core.ErrEmptyInput)
	assert.NoError(t, results[3].Err)

	stats, err := tp.docs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	tp := newTestPipeline(t)

	_, err := tp.pipeline.Ingest(ctx, "app-2024-005", "A decision to be deleted shortly.", grantedMetadata())
	require.NoError(t, err)

	chunks, err := tp.docs.GetChunks(ctx, "app-2024-005")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	vector := chunks[0].Vector

	require.NoError(t, tp.pipeline.Delete(ctx, "app-2024-005"))

	_, err = tp.docs.GetDocument(ctx, "app-2024-005")
	assert.ErrorIs(t, err, store.ErrNotFound)

	matches, err := tp.index.Nearest(ctx, vector, &core.Filters{}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	t.Run("missing document", func(t *testing.T) {
		err := tp.pipeline.Delete(ctx, "never-ingested")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
