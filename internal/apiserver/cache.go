package apiserver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
)

// AnalysisCacheConfig holds cache configuration.
type AnalysisCacheConfig struct {
	MaxEntries int           // Max cached responses (default: 128)
	TTL        time.Duration // Entry TTL (default: 60 seconds)
	Enabled    bool
}

// DefaultAnalysisCacheConfig returns default cache configuration.
func DefaultAnalysisCacheConfig() AnalysisCacheConfig {
	return AnalysisCacheConfig{
		MaxEntries: 128,
		TTL:        60 * time.Second,
		Enabled:    true,
	}
}

// cachedAnalysis wraps an analysis result with its TTL.
type cachedAnalysis struct {
	value     interface{}
	expiresAt time.Time
}

// AnalysisCacheStats represents cache statistics.
type AnalysisCacheStats struct {
	Items     int     `json:"items"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Expired   uint64  `json:"expired"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
}

// AnalysisCache provides LRU caching for computed analysis responses with
// TTL. Analyses are pure functions of the dataset and the engine options,
// so the cache is flushed whenever either changes.
type AnalysisCache struct {
	lru    *lru.Cache[string, *cachedAnalysis]
	ttl    time.Duration
	mu     sync.RWMutex
	logger *logging.Logger

	// Metrics (atomic)
	hits      uint64
	misses    uint64
	expired   uint64
	evictions uint64
}

// NewAnalysisCache creates a new analysis cache.
func NewAnalysisCache(config AnalysisCacheConfig, logger *logging.Logger) (*AnalysisCache, error) {
	if config.MaxEntries <= 0 {
		return nil, fmt.Errorf("MaxEntries must be positive, got %d", config.MaxEntries)
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("TTL must be positive, got %v", config.TTL)
	}

	c := &AnalysisCache{
		ttl:    config.TTL,
		logger: logger,
	}

	lruCache, err := lru.NewWithEvict[string, *cachedAnalysis](config.MaxEntries,
		func(key string, value *cachedAnalysis) {
			atomic.AddUint64(&c.evictions, 1)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.lru = lruCache

	c.logger.Debug("analysis cache initialized: maxEntries=%d, TTL=%v", config.MaxEntries, config.TTL)
	return c, nil
}

// Get retrieves a cached analysis by key, returning false if absent or
// expired.
func (c *AnalysisCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		atomic.AddUint64(&c.expired, 1)
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	atomic.AddUint64(&c.hits, 1)
	return entry.value, true
}

// Put stores an analysis result.
func (c *AnalysisCache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, &cachedAnalysis{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Clear removes all entries. Called on dataset or options changes.
func (c *AnalysisCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
	c.logger.Debug("analysis cache cleared")
}

// Stats returns cache statistics.
func (c *AnalysisCache) Stats() AnalysisCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	total := hits + misses

	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return AnalysisCacheStats{
		Items:     c.lru.Len(),
		Hits:      hits,
		Misses:    misses,
		Expired:   atomic.LoadUint64(&c.expired),
		Evictions: atomic.LoadUint64(&c.evictions),
		HitRate:   hitRate,
	}
}

// MakeAnalysisKey creates a deterministic cache key from an endpoint name,
// its parameters and the dataset generation.
func MakeAnalysisKey(endpoint string, generation uint64, params ...string) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte(fmt.Sprintf("|gen=%d", generation)))
	for _, p := range params {
		h.Write([]byte("|"))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
