package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. The store keeps values
// in the MUS binary format; field order here is the struct declaration
// order and must not change without migrating stored data.

var (
	// IDMUS serializes ID values.
	IDMUS = idMUS{}
	// DocumentMUS serializes SourceDocument values.
	DocumentMUS = documentMUS{}
	// ChunkMUS serializes Chunk values.
	ChunkMUS = chunkMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// Timestamps are stored as Unix microseconds.
func marshalTime(t time.Time, bs []byte) int {
	if t.IsZero() {
		return varint.Int64.Marshal(0, bs)
	}
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if v == 0 {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	if t.IsZero() {
		return varint.Int64.Size(0)
	}
	return varint.Int64.Size(t.UnixMicro())
}

// MarshalVector writes a length-prefixed float32 vector.
func MarshalVector(v []float32, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

// UnmarshalVector reads a length-prefixed float32 vector.
func UnmarshalVector(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v := make([]float32, length)
	for i := range v {
		var m int
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

// SizeVector reports the marshalled size of a vector.
func SizeVector(v []float32) int {
	n := varint.Int.Size(len(v))
	for _, f := range v {
		n += raw.Float32.Size(f)
	}
	return n
}

// MarshalMetadata writes DocumentMetadata fields in declaration order.
func MarshalMetadata(md DocumentMetadata, bs []byte) int {
	n := ord.String.Marshal(md.Ward, bs)
	n += varint.Int.Marshal(int(md.Outcome), bs[n:])
	n += marshalTime(md.DecisionDate, bs[n:])
	n += varint.Int.Marshal(int(md.DevelopmentType), bs[n:])
	n += ord.String.Marshal(md.ConservationArea, bs[n:])
	return n
}

// UnmarshalMetadata reads DocumentMetadata fields in declaration order.
func UnmarshalMetadata(bs []byte) (md DocumentMetadata, n int, err error) {
	md.Ward, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	var v int
	v, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	md.Outcome = Outcome(v)
	md.DecisionDate, m, err = unmarshalTime(bs[n:])
	n += m
	if err != nil {
		return
	}
	v, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	md.DevelopmentType = DevelopmentType(v)
	md.ConservationArea, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	return
}

// SizeMetadata reports the marshalled size of DocumentMetadata.
func SizeMetadata(md DocumentMetadata) int {
	return ord.String.Size(md.Ward) +
		varint.Int.Size(int(md.Outcome)) +
		sizeTime(md.DecisionDate) +
		varint.Int.Size(int(md.DevelopmentType)) +
		ord.String.Size(md.ConservationArea)
}

type documentMUS struct{}

func (documentMUS) Marshal(doc SourceDocument, bs []byte) int {
	n := ord.String.Marshal(doc.ID, bs)
	n += ord.String.Marshal(doc.Text, bs[n:])
	n += MarshalMetadata(doc.Metadata, bs[n:])
	n += marshalTime(doc.IngestedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (doc SourceDocument, n int, err error) {
	doc.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	doc.Text, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	doc.Metadata, m, err = UnmarshalMetadata(bs[n:])
	n += m
	if err != nil {
		return
	}
	doc.IngestedAt, m, err = unmarshalTime(bs[n:])
	n += m
	return
}

func (documentMUS) Size(doc SourceDocument) int {
	return ord.String.Size(doc.ID) +
		ord.String.Size(doc.Text) +
		SizeMetadata(doc.Metadata) +
		sizeTime(doc.IngestedAt)
}

type chunkMUS struct{}

func (chunkMUS) Marshal(chunk Chunk, bs []byte) int {
	n := IDMUS.Marshal(chunk.ID, bs)
	n += ord.String.Marshal(chunk.DocumentID, bs[n:])
	n += varint.Int.Marshal(chunk.Index, bs[n:])
	n += ord.String.Marshal(chunk.Text, bs[n:])
	n += varint.Int.Marshal(chunk.TokenCount, bs[n:])
	n += varint.Int.Marshal(int(chunk.Section), bs[n:])
	n += MarshalVector(chunk.Vector, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (chunk Chunk, n int, err error) {
	chunk.ID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	chunk.DocumentID, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	chunk.Index, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	chunk.Text, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	chunk.TokenCount, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	var section int
	section, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	chunk.Section = SectionTag(section)
	chunk.Vector, m, err = UnmarshalVector(bs[n:])
	n += m
	return
}

func (chunkMUS) Size(chunk Chunk) int {
	return IDMUS.Size(chunk.ID) +
		ord.String.Size(chunk.DocumentID) +
		varint.Int.Size(chunk.Index) +
		ord.String.Size(chunk.Text) +
		varint.Int.Size(chunk.TokenCount) +
		varint.Int.Size(int(chunk.Section)) +
		SizeVector(chunk.Vector)
}
