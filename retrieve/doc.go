// Package retrieve answers precedent queries over the vector index.
//
// A Search embeds the query text, over-fetches nearest-neighbor
// candidates from the index (twice the requested limit, so that
// same-document duplicates can be discarded), deduplicates to the single
// best chunk per document, and resolves each survivor into a core.Match
// carrying the owning document, an excerpt, and any planning policy
// references found in the matched chunk.
//
// Refused decisions are excluded by default: callers searching for
// precedents almost always want grants. Set Query.IncludeRefused or an
// explicit outcome filter to widen the search.
package retrieve
