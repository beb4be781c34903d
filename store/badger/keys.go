package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/precedent/core"
)

// Key prefixes for different data types. Document IDs are caller-assigned
// strings (planning references like "2024/1234/P"); the ':' delimiter
// after the ID keeps one document's keyspace from shadowing another's.
const (
	documentPrefix = "pladoc"
	chunkPrefix    = "plachk"
	indexPrefix    = "plavec"
	indexDimKey    = "plavecdim"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:documentID:index, with the index in BigEndian so
// lexicographic iteration yields chunks in index order.
func makeChunkKey(documentID string, index int) []byte {
	prefix := []byte(fmt.Sprintf("%s:%s:", chunkPrefix, documentID))
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(index))
	return buf
}

// makeChunkScanPrefix generates the iteration prefix for a document's chunks.
func makeChunkScanPrefix(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, documentID))
}

// makeIndexKey generates a composite key for an index entry.
// Format: prefix:documentID:chunkID. Grouping by document makes
// DeleteByDocument a prefix scan.
func makeIndexKey(documentID string, chunkID core.ID) []byte {
	prefix := []byte(fmt.Sprintf("%s:%s:", indexPrefix, documentID))
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makeIndexScanPrefix generates the iteration prefix for a document's
// index entries.
func makeIndexScanPrefix(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", indexPrefix, documentID))
}
