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
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/precedent/core"
	"github.com/poiesic/precedent/store"
)

// DocumentStore implements store.DocumentRepository for BadgerDB.
type DocumentStore struct {
	backend *Backend
}

var _ store.DocumentRepository = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore on the backend.
func NewDocumentStore(backend *Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (s *DocumentStore) Close() error {
	return nil
}

// AddDocument stores a new document and its full chunk set in one
// transaction.
func (s *DocumentStore) AddDocument(ctx context.Context, doc *core.SourceDocument, chunks []*core.Chunk) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.ID)
		if _, err := tx.Get(key); err == nil {
			return store.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return s.writeDocument(tx, doc, chunks)
	}, true)
}

// ReplaceDocument stores a document and its full chunk set, dropping any
// previous chunks under the same ID. One transaction: readers see either
// the old complete set or the new one.
func (s *DocumentStore) ReplaceDocument(ctx context.Context, doc *core.SourceDocument, chunks []*core.Chunk) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteByPrefix(tx, makeChunkScanPrefix(doc.ID)); err != nil {
			return err
		}
		return s.writeDocument(tx, doc, chunks)
	}, true)
}

// writeDocument writes the document record and its chunks and commits.
func (s *DocumentStore) writeDocument(tx *badger.Txn, doc *core.SourceDocument, chunks []*core.Chunk) error {
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	if err := tx.Set(makeDocumentKey(doc.ID), store.MarshalDocument(doc)); err != nil {
		return err
	}

	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
		if err := tx.Set(makeChunkKey(chunk.DocumentID, chunk.Index), store.MarshalChunk(chunk)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*core.SourceDocument, error) {
	var doc *core.SourceDocument
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc, err = store.UnmarshalDocument(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetChunks retrieves a document's chunks in index order. The BigEndian
// chunk keys make badger's key order the index order.
func (s *DocumentStore) GetChunks(ctx context.Context, documentID string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeDocumentKey(documentID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkScanPrefix(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := store.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunk retrieves a single chunk by document ID and ordinal index.
func (s *DocumentStore) GetChunk(ctx context.Context, documentID string, index int) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkKey(documentID, index))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			chunk, err = store.UnmarshalChunk(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// DeleteDocument removes a document and all of its chunks in one
// transaction.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}

		if err := deleteByPrefix(tx, makeChunkScanPrefix(id)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Stats reports document and chunk counts across the whole store.
func (s *DocumentStore) Stats(ctx context.Context) (*store.Stats, error) {
	stats := &store.Stats{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stats.Documents++
		}
		iter.Close()

		chunkOpts := badger.DefaultIteratorOptions
		chunkOpts.Prefix = []byte(chunkPrefix + ":")
		chunkIter := tx.NewIterator(chunkOpts)
		defer chunkIter.Close()
		for chunkIter.Rewind(); chunkIter.Valid(); chunkIter.Next() {
			stats.Chunks++
			err := chunkIter.Item().Value(func(val []byte) error {
				chunk, err := store.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				if len(chunk.Vector) > 0 {
					stats.EmbeddedChunks++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// deleteByPrefix removes every key under a prefix within the transaction.
func deleteByPrefix(tx *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
