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


package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrEmptyInput indicates text that is empty or whitespace-only after trimming.
	// It is a caller error and is never retried.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrInvalidDocument indicates a SourceDocument failed validation.
	ErrInvalidDocument = errors.New("invalid source document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrMissingDocumentID indicates the document ID field is empty.
	ErrMissingDocumentID = errors.New("document ID required")
)

// DimensionMismatchError reports a vector whose length does not match the
// dimension pinned for the deployment. It indicates a model or deployment
// mismatch and is fatal: vectors are never truncated or padded to fit.
type DimensionMismatchError struct {
	Expected   int
	Got        int
	DocumentID string // empty when the vector did not belong to a stored chunk
	ChunkID    ID     // zero when unknown
}

func (e *DimensionMismatchError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("vector dimension mismatch for document %s chunk %d: expected %d, got %d",
			e.DocumentID, e.ChunkID, e.Expected, e.Got)
	}
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
