// Package cache holds the in-run query cache. The same sentence shows up in
// many worksheets (section headers, shared passages); resolving it once per
// run keeps the remote UI from seeing duplicate queries. The cache lives in
// memory only — runs are deliberately not resumable and nothing is persisted
// between them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/minsucho/passagetrace/internal/model"
)

// QueryCache maps sentences to their resolved match records. Safe for
// concurrent use by all workers.
type QueryCache struct {
	cache *gocache.Cache
}

// NewQueryCache creates a cache whose entries expire after ttl.
func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &QueryCache{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Get returns the cached records for sentence. A cached empty slice is a
// valid hit: the sentence was queried and is absent from the corpus.
func (c *QueryCache) Get(sentence string) ([]model.MatchRecord, bool) {
	if val, found := c.cache.Get(key(sentence)); found {
		return val.([]model.MatchRecord), true
	}
	return nil, false
}

// Set stores the resolved records for sentence.
func (c *QueryCache) Set(sentence string, records []model.MatchRecord) {
	c.cache.Set(key(sentence), records, gocache.DefaultExpiration)
}

func key(sentence string) string {
	hash := sha256.Sum256([]byte(sentence))
	return "passagetrace:v1:" + hex.EncodeToString(hash[:])
}
