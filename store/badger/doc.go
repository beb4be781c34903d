// Package badger implements the store interfaces on BadgerDB.
//
// One Backend carries the database handle; DocumentStore and Index share
// it so that ingestion can keep documents, chunks, and index entries in
// one place. The vector index is a brute-force cosine scan over all
// entries, which is the right trade-off for corpora in the tens of
// thousands of chunks this library targets.
//
// Open with an empty path and inMemory=true to get a throwaway database
// for tests.
package badger
