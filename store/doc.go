// Package store defines the persistence interfaces for the precedent
// library and the binary serialization of stored values.
//
// Two narrow interfaces split the concerns:
//
//   - DocumentRepository holds source documents and their chunk sets.
//     Writes are transactional per document: readers never observe a
//     document with a partial chunk set.
//   - VectorIndex answers nearest-neighbor queries over chunk embeddings,
//     filtered by document metadata. The core treats it as a remote
//     service behind a narrow interface; the bundled implementation in
//     store/badger is a local brute-force scan.
//
// Values are persisted in the MUS binary format (see core's serializers
// and MarshalIndexEntry here).
package store
