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
	"fmt"
	"strings"
)

// ValidateDocument validates a SourceDocument according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be empty or whitespace-only
//
// NOT validated:
//   - Metadata (all fields are optional; absent values impose no filter
//     restriction)
//   - IngestedAt (populated by the store)
func ValidateDocument(doc *SourceDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingDocumentID)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: document %s: %w", ErrInvalidDocument, doc.ID, ErrEmptyInput)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - DocumentID must not be empty
//   - Index must not be negative
//   - Text must not be empty
//
// NOT validated (populated by the vectorizer):
//   - Vector (nil until an embedding is computed)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingDocumentID)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidChunk, chunk.Index)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: document %s chunk %d: %w", ErrInvalidChunk, chunk.DocumentID, chunk.Index, ErrEmptyInput)
	}

	return nil
}
