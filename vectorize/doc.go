// Package vectorize produces embedding vectors for chunk and query text.
//
// The Vectorizer wraps an ai.Embedder with the operational concerns the
// raw client does not carry:
//   - batching with a sub-batch size cap and a minimum inter-batch delay
//     toward the embedding service
//   - bounded retries with exponential backoff, surfacing ai.ServiceError
//     once attempts are exhausted
//   - an in-process cache keyed by a BLAKE2b hash of the text, so chunks
//     with identical text reuse one embedding
//   - dimension pinning: the first successful embedding fixes the vector
//     length and later mismatches fail rather than truncate or pad
//
// All vectors are normalized to unit length before being returned, so
// downstream cosine similarity reduces to a dot product.
package vectorize
