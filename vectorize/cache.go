package vectorize

import (
	"encoding/hex"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-crypt/x/blake2b"
)

// DefaultCacheMaxBytes bounds the in-process embedding cache.
const DefaultCacheMaxBytes = 64 << 20

// embeddingCache is a best-effort, process-local cache of computed
// embeddings. Entries are costed by vector byte size so the ristretto
// budget roughly tracks memory use. Concurrent writers for the same text
// race benignly: both compute the same vector, last write wins.
type embeddingCache struct {
	cache *ristretto.Cache[string, []float32]
}

func newEmbeddingCache(maxBytes int64) (*embeddingCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &embeddingCache{cache: cache}, nil
}

func (c *embeddingCache) get(key string) ([]float32, bool) {
	return c.cache.Get(key)
}

func (c *embeddingCache) set(key string, vector []float32) {
	c.cache.Set(key, vector, int64(len(vector)*4))
	// Set is buffered; Wait so a caller embedding the same text right
	// after sees the hit. Negligible next to the upstream call we saved.
	c.cache.Wait()
}

func (c *embeddingCache) close() {
	c.cache.Close()
}

// cacheKey hashes the exact text with BLAKE2b-256. A cryptographic hash
// keeps collisions out of the picture even across millions of chunks.
func cacheKey(text string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
