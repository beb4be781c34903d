// Package ingest turns raw decision text into stored, indexed chunks.
//
// A single Ingest call validates the document, chunks its normalized
// text, embeds the chunks in batches, writes the document and its full
// chunk set in one transaction, and upserts the embedded chunks into
// the vector index. Chunks whose embedding failed are stored without a
// vector and left out of the index; they become searchable after a
// later re-ingestion succeeds.
//
// Re-ingesting an existing document ID replaces the document and its
// entire chunk set. IngestAll fans independent documents out over a
// worker pool; per-document atomicity is unaffected by concurrency.
package ingest
