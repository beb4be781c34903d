package store

import (
	"testing"
	"time"

	"github.com/poiesic/precedent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSerialization(t *testing.T) {
	doc := &core.SourceDocument{
		ID:   "2024/1234/P",
		Text: "Planning permission is granted.",
		Metadata: core.DocumentMetadata{
			Ward:             "Riverside",
			Outcome:          core.OutcomeGranted,
			DecisionDate:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			DevelopmentType:  core.DevelopmentLoftConversion,
			ConservationArea: "Old Town",
		},
		IngestedAt: time.Date(2024, 4, 1, 12, 30, 0, 0, time.UTC),
	}

	got, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestChunkSerialization(t *testing.T) {
	chunk := &core.Chunk{
		ID:         core.ChunkID("2024/1234/P", 2),
		DocumentID: "2024/1234/P",
		Index:      2,
		Text:       "The proposal accords with policy D4.",
		TokenCount: 9,
		Section:    core.SectionAssessment,
		Vector:     []float32{0.1, -0.2, 0.3},
	}

	got, err := UnmarshalChunk(MarshalChunk(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestIndexEntrySerialization(t *testing.T) {
	entry := &IndexEntry{
		ChunkID:    core.ChunkID("2024/1234/P", 0),
		DocumentID: "2024/1234/P",
		ChunkIndex: 0,
		Vector:     []float32{0.6, 0.8},
		Metadata: core.DocumentMetadata{
			Ward:    "Hillside",
			Outcome: core.OutcomeRefused,
		},
	}

	got, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	data := MarshalChunk(&core.Chunk{
		ID:         1,
		DocumentID: "doc",
		Text:       "text",
	})

	_, err := UnmarshalChunk(data[:len(data)-2])
	assert.Error(t, err)
}
