package ingest

import "errors"

var (
	// ErrDocumentStoreRequired is returned when a document repository is not provided.
	ErrDocumentStoreRequired = errors.New("document repository required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrVectorizerRequired is returned when a vectorizer is not provided.
	ErrVectorizerRequired = errors.New("vectorizer required")
)
