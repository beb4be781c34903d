package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for derived domain entities such as chunks.
// IDs are generated using content-based hashing, so re-ingesting the same
// document produces the same chunk IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID derives the ID for a chunk from its owning document and ordinal index.
func ChunkID(documentID string, index int) ID {
	return IDFromContent(fmt.Sprintf("%s:%d", documentID, index))
}

// DocumentMetadata carries the structured attributes of a planning decision.
// Metadata participates in filtering only, never in ranking.
type DocumentMetadata struct {
	Ward             string
	Outcome          Outcome
	DecisionDate     time.Time
	DevelopmentType  DevelopmentType
	ConservationArea string // designation name, empty outside any conservation area
}

// SourceDocument is an immutable unit of ingested decision text.
// Documents are created once at ingestion and never mutated; re-ingestion
// under the same ID replaces the document and its entire chunk set.
type SourceDocument struct {
	ID         string // opaque caller-assigned identifier, e.g. a case reference
	Text       string // normalized full decision text
	Metadata   DocumentMetadata
	IngestedAt time.Time
}

// Chunk is a contiguous substring of a SourceDocument's normalized text.
// Within a document, chunk indices are 0-based, contiguous, and unique.
// A chunk's embedding, once computed, is treated as immutable.
type Chunk struct {
	ID         ID
	DocumentID string
	Index      int
	Text       string
	TokenCount int
	Section    SectionTag
	Vector     []float32 // embedding vector, nil until computed
}

// Match is the ephemeral output of a retrieval query. A result set contains
// at most one Match per source document, keeping the highest-scoring chunk.
type Match struct {
	Document    *SourceDocument
	Chunk       *Chunk
	Score       float32 // cosine similarity, clipped to [0,1] by the threshold contract
	Excerpt     string  // bounded-length prefix of the matched chunk text
	KeyPolicies []string
}
