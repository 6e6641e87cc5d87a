package store

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// lruEmbeddingCache caches decoded embeddings by chunk id for the
// LRUCached and Hybrid strategies. Hybrid scores its warm entries from
// the cache; both strategies still read and decode every row of the
// table on each search.
type lruEmbeddingCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, []float32]
}

func newLRUEmbeddingCache(capacity int) *lruEmbeddingCache {
	if capacity <= 0 {
		capacity = 1000
	}
	c, err := lru.New[string, []float32](capacity)
	if err != nil {
		// capacity validated above, New only errors on size <= 0
		c, _ = lru.New[string, []float32](1000)
	}
	return &lruEmbeddingCache{cache: c}
}

func (l *lruEmbeddingCache) Get(id string) ([]float32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.Get(id)
}

func (l *lruEmbeddingCache) Put(id string, vec []float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Add(id, vec)
}

func (l *lruEmbeddingCache) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Remove(id)
}

func (l *lruEmbeddingCache) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.Keys()
}

func (l *lruEmbeddingCache) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Purge()
}
