package retrieve

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentStoreRequired is returned when a document repository is not provided.
	ErrDocumentStoreRequired = errors.New("document repository required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when a query embedder is not provided.
	ErrEmbedderRequired = errors.New("query embedder required")

	// ErrInvalidLimit is returned when a query limit is negative.
	ErrInvalidLimit = errors.New("limit must not be negative")
)

// UnavailableError reports that the vector index or document store could
// not be reached. It distinguishes infrastructure failure from an empty
// result set, which is a valid outcome and never an error.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("retrieval backend unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
