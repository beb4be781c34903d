package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/precedent/core"
	"github.com/poiesic/precedent/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (store.DocumentRepository, store.VectorIndex) {
	t.Helper()
	docs, index, backend, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return docs, index
}

func testDocument(id string) *core.SourceDocument {
	return &core.SourceDocument{
		ID:   id,
		Text: "Planning permission is granted for a single storey rear extension.",
		Metadata: core.DocumentMetadata{
			Ward:            "Riverside",
			Outcome:         core.OutcomeGranted,
			DecisionDate:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			DevelopmentType: core.DevelopmentRearExtension,
		},
	}
}

func testChunks(documentID string, texts ...string) []*core.Chunk {
	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{
			ID:         core.ChunkID(documentID, i),
			DocumentID: documentID,
			Index:      i,
			Text:       text,
			TokenCount: len(text),
		}
	}
	return chunks
}

func TestAddDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("roundtrip", func(t *testing.T) {
		docs, _ := newTestStore(t)

		doc := testDocument("2024/1234/P")
		chunks := testChunks(doc.ID, "first chunk", "second chunk")
		require.NoError(t, docs.AddDocument(ctx, doc, chunks))

		got, err := docs.GetDocument(ctx, "2024/1234/P")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
		assert.Equal(t, doc.Text, got.Text)
		assert.Equal(t, doc.Metadata, got.Metadata)
		assert.False(t, got.IngestedAt.IsZero(), "IngestedAt should be set on write")
	})

	t.Run("duplicate ID", func(t *testing.T) {
		docs, _ := newTestStore(t)

		doc := testDocument("2024/1234/P")
		require.NoError(t, docs.AddDocument(ctx, doc, nil))

		err := docs.AddDocument(ctx, testDocument("2024/1234/P"), nil)
		assert.ErrorIs(t, err, store.ErrDuplicateKey)
	})

	t.Run("invalid document", func(t *testing.T) {
		docs, _ := newTestStore(t)

		err := docs.AddDocument(ctx, &core.SourceDocument{Text: "no id"}, nil)
		assert.ErrorIs(t, err, core.ErrMissingDocumentID)
	})
}

func TestGetDocument_NotFound(t *testing.T) {
	docs, _ := newTestStore(t)

	_, err := docs.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetChunks(t *testing.T) {
	ctx := context.Background()

	t.Run("index order", func(t *testing.T) {
		docs, _ := newTestStore(t)

		doc := testDocument("2024/0001/P")
		chunks := testChunks(doc.ID, "zero", "one", "two", "three")
		require.NoError(t, docs.AddDocument(ctx, doc, chunks))

		got, err := docs.GetChunks(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i, chunk := range got {
			assert.Equal(t, i, chunk.Index)
			assert.Equal(t, chunks[i].Text, chunk.Text)
			assert.Equal(t, chunks[i].ID, chunk.ID)
		}
	})

	t.Run("unknown document", func(t *testing.T) {
		docs, _ := newTestStore(t)

		_, err := docs.GetChunks(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("document without chunks", func(t *testing.T) {
		docs, _ := newTestStore(t)

		require.NoError(t, docs.AddDocument(ctx, testDocument("2024/0002/P"), nil))
		got, err := docs.GetChunks(ctx, "2024/0002/P")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGetChunk(t *testing.T) {
	ctx := context.Background()
	docs, _ := newTestStore(t)

	doc := testDocument("2024/0003/P")
	require.NoError(t, docs.AddDocument(ctx, doc, testChunks(doc.ID, "alpha", "beta")))

	chunk, err := docs.GetChunk(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "beta", chunk.Text)

	_, err = docs.GetChunk(ctx, doc.ID, 5)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReplaceDocument(t *testing.T) {
	ctx := context.Background()
	docs, _ := newTestStore(t)

	doc := testDocument("2024/0004/P")
	require.NoError(t, docs.AddDocument(ctx, doc, testChunks(doc.ID, "a", "b", "c")))

	replacement := testDocument("2024/0004/P")
	replacement.Text = "Updated decision text."
	require.NoError(t, docs.ReplaceDocument(ctx, replacement, testChunks(doc.ID, "x", "y")))

	got, err := docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated decision text.", got.Text)

	chunks, err := docs.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 2, "replacement swaps the whole chunk set")
	assert.Equal(t, "x", chunks[0].Text)
	assert.Equal(t, "y", chunks[1].Text)
}

func TestReplaceDocument_Absent(t *testing.T) {
	ctx := context.Background()
	docs, _ := newTestStore(t)

	doc := testDocument("2024/0005/P")
	require.NoError(t, docs.ReplaceDocument(ctx, doc, testChunks(doc.ID, "only")))

	got, err := docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades chunks", func(t *testing.T) {
		docs, _ := newTestStore(t)

		doc := testDocument("2024/0006/P")
		require.NoError(t, docs.AddDocument(ctx, doc, testChunks(doc.ID, "a", "b")))

		require.NoError(t, docs.DeleteDocument(ctx, doc.ID))

		_, err := docs.GetDocument(ctx, doc.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = docs.GetChunk(ctx, doc.ID, 0)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing document", func(t *testing.T) {
		docs, _ := newTestStore(t)

		err := docs.DeleteDocument(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	docs, _ := newTestStore(t)

	first := testDocument("2024/0007/P")
	firstChunks := testChunks(first.ID, "a", "b")
	firstChunks[0].Vector = []float32{1, 0}
	require.NoError(t, docs.AddDocument(ctx, first, firstChunks))

	second := testDocument("2024/0008/P")
	require.NoError(t, docs.AddDocument(ctx, second, testChunks(second.ID, "c")))

	stats, err := docs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 1, stats.EmbeddedChunks)
}
