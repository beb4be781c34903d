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


package badger

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/precedent/core"
	"github.com/poiesic/precedent/store"
)

// Index implements store.VectorIndex as a brute-force cosine scan over
// BadgerDB. Vectors are expected to be unit length, so cosine similarity
// reduces to a dot product.
type Index struct {
	backend *Backend
}

var _ store.VectorIndex = (*Index)(nil)

// NewIndex creates a new Index on the backend.
func NewIndex(backend *Backend) *Index {
	return &Index{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (ix *Index) Close() error {
	return nil
}

// Upsert inserts or replaces index entries. The first entry ever written
// pins the index dimension; later entries with a different vector length
// are rejected with *core.DimensionMismatchError.
func (ix *Index) Upsert(ctx context.Context, entries ...*store.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return ix.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := readDimension(tx)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if len(entry.Vector) == 0 {
				continue // unembedded chunks never enter the index
			}
			if dims == 0 {
				dims = len(entry.Vector)
				if err := writeDimension(tx, dims); err != nil {
					return err
				}
			}
			if len(entry.Vector) != dims {
				return &core.DimensionMismatchError{
					Expected:   dims,
					Got:        len(entry.Vector),
					DocumentID: entry.DocumentID,
					ChunkID:    entry.ChunkID,
				}
			}

			key := makeIndexKey(entry.DocumentID, entry.ChunkID)
			if err := tx.Set(key, store.MarshalIndexEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteByDocument removes every index entry belonging to a document.
func (ix *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	return ix.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteByPrefix(tx, makeIndexScanPrefix(documentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Nearest scans all index entries, keeping those whose metadata passes
// the filter and whose similarity clears the threshold, and returns the
// top k by similarity descending.
func (ix *Index) Nearest(ctx context.Context, vector []float32, filter *core.Filters, minSimilarity float32, k int) ([]*store.IndexMatch, error) {
	if k <= 0 {
		return nil, store.ErrInvalidQuery
	}

	var matches []*store.IndexMatch
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := readDimension(tx)
		if err != nil {
			return err
		}
		if dims != 0 && len(vector) != dims {
			return &core.DimensionMismatchError{Expected: dims, Got: len(vector)}
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry *store.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = store.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}

			if filter != nil && !filter.Matches(entry.Metadata) {
				continue
			}

			similarity := dotProduct(vector, entry.Vector)
			if similarity < minSimilarity {
				continue
			}

			matches = append(matches, &store.IndexMatch{
				ChunkID:    entry.ChunkID,
				DocumentID: entry.DocumentID,
				ChunkIndex: entry.ChunkIndex,
				Score:      similarity,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b *store.IndexMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// readDimension loads the pinned index dimension, 0 if none is set yet.
func readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(indexDimKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var dims int
	err = item.Value(func(val []byte) error {
		var err error
		dims, _, err = varint.Int.Unmarshal(val)
		return err
	})
	return dims, err
}

// writeDimension persists the pinned index dimension.
func writeDimension(tx *badger.Txn, dims int) error {
	buf := make([]byte, varint.Int.Size(dims))
	varint.Int.Marshal(dims, buf)
	return tx.Set([]byte(indexDimKey), buf)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
