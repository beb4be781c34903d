// Package mock provides a test double implementation of ai.Embedder.
//
// The mock allows tests to run without external AI service dependencies and
// enables controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// The default behavior returns deterministic unit vectors derived from a text
// hash, so identical text always yields identical embeddings.
package mock
