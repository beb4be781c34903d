// Package chunker splits raw planning decision text into bounded,
// semantically coherent chunks ready for embedding.
//
// The chunking pipeline normalizes whitespace, detects section headings
// (Proposal, Assessment, Conclusion, and similar), splits each section into
// sentences, and greedily accumulates sentences into chunks bounded by a
// configurable token count. Consecutive chunks share a configurable token
// overlap so that context survives chunk boundaries. A single sentence
// larger than the token budget is hard-split on word boundaries.
//
// Token counts come from a TokenCounter; the default uses the cl100k_base
// encoding via tiktoken, matching the embedding models this library
// targets.
package chunker
