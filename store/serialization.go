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


package store

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/precedent/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalDocument serializes a SourceDocument to bytes.
func MarshalDocument(doc *core.SourceDocument) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a SourceDocument from bytes.
func UnmarshalDocument(data []byte) (*core.SourceDocument, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// indexEntryMUS serializes IndexEntry values. Field order is the struct
// declaration order and must not change without migrating stored data.
type indexEntryMUS struct{}

// IndexEntryMUS serializes IndexEntry values.
var IndexEntryMUS = indexEntryMUS{}

func (indexEntryMUS) Marshal(e IndexEntry, bs []byte) int {
	n := core.IDMUS.Marshal(e.ChunkID, bs)
	n += ord.String.Marshal(e.DocumentID, bs[n:])
	n += varint.Int.Marshal(e.ChunkIndex, bs[n:])
	n += core.MarshalVector(e.Vector, bs[n:])
	n += core.MarshalMetadata(e.Metadata, bs[n:])
	return n
}

func (indexEntryMUS) Unmarshal(bs []byte) (e IndexEntry, n int, err error) {
	e.ChunkID, n, err = core.IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	e.DocumentID, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	e.ChunkIndex, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	e.Vector, m, err = core.UnmarshalVector(bs[n:])
	n += m
	if err != nil {
		return
	}
	e.Metadata, m, err = core.UnmarshalMetadata(bs[n:])
	n += m
	return
}

func (indexEntryMUS) Size(e IndexEntry) int {
	return core.IDMUS.Size(e.ChunkID) +
		ord.String.Size(e.DocumentID) +
		varint.Int.Size(e.ChunkIndex) +
		core.SizeVector(e.Vector) +
		core.SizeMetadata(e.Metadata)
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *IndexEntry) []byte {
	buf := make([]byte, IndexEntryMUS.Size(*entry))
	IndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*IndexEntry, error) {
	entry, _, err := IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
