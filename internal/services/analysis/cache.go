package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// CommentaryStore is the byte-level backend of the commentary cache.
// A missing key returns ok=false and no error.
type CommentaryStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheConfig contains configuration for commentary caching
type CacheConfig struct {
	Enabled                  bool
	TTL                      time.Duration
	PriceBucketPct           float64 // price bucket size as a fraction of price
	InvalidationPriceMovePct float64 // drop an entry once price moved this fraction
}

// DefaultCacheConfig returns default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:                  true,
		TTL:                      15 * time.Minute,
		PriceBucketPct:           0.005,
		InvalidationPriceMovePct: 0.01,
	}
}

// CachedCommentary is one stored LLM answer
type CachedCommentary struct {
	Kind      string    `json:"kind"`
	Symbol    string    `json:"symbol"`
	Text      string    `json:"text"`
	Price     float64   `json:"price"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentaryCache stores LLM commentary per symbol and price level so repeated
// /analyse requests within a quiet market reuse the last answer.
type CommentaryCache struct {
	config CacheConfig
	store  CommentaryStore
	now    func() time.Time
	log    *logger.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

// NewCommentaryCache creates a commentary cache over store
func NewCommentaryCache(config CacheConfig, store CommentaryStore, log *logger.Logger) *CommentaryCache {
	if log == nil {
		log = logger.Get()
	}
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig().TTL
	}
	return &CommentaryCache{
		config: config,
		store:  store,
		now:    time.Now,
		log:    log.With("component", "commentary_cache"),
	}
}

// Get returns a cached answer for kind/symbol/variant when the price has not moved too far.
// Store errors are logged and treated as a miss.
func (c *CommentaryCache) Get(ctx context.Context, kind, symbol, variant string, price float64) (*CachedCommentary, bool) {
	if c == nil || !c.config.Enabled {
		return nil, false
	}

	key := c.buildCacheKey(kind, symbol, variant, price)
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warnw("Commentary cache read failed", "kind", kind, "symbol", symbol, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	var cached CachedCommentary
	if err := json.Unmarshal(data, &cached); err != nil {
		_ = c.store.Delete(ctx, key)
		c.evictions.Add(1)
		c.misses.Add(1)
		return nil, false
	}

	if !c.isEntryValid(&cached, price) {
		_ = c.store.Delete(ctx, key)
		c.evictions.Add(1)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	c.log.Debugw("Cache hit", "kind", kind, "symbol", symbol, "age", c.now().Sub(cached.Timestamp))
	return &cached, true
}

// Set stores an answer
func (c *CommentaryCache) Set(ctx context.Context, kind, symbol, variant, text, model string, price float64) error {
	if c == nil || !c.config.Enabled {
		return nil
	}

	cached := CachedCommentary{
		Kind:      kind,
		Symbol:    symbol,
		Text:      text,
		Price:     price,
		Model:     model,
		Timestamp: c.now(),
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return errors.Wrap(err, "failed to marshal commentary")
	}

	key := c.buildCacheKey(kind, symbol, variant, price)
	if err := c.store.Set(ctx, key, data, c.config.TTL); err != nil {
		return errors.Wrap(err, "failed to set cache")
	}

	c.sets.Add(1)
	c.log.Debugw("Cache set", "kind", kind, "symbol", symbol, "ttl", c.config.TTL)
	return nil
}

// buildCacheKey generates a cache key with price bucketing
func (c *CommentaryCache) buildCacheKey(kind, symbol, variant string, price float64) string {
	keyData := fmt.Sprintf("%s:%s:%s:%s", kind, symbol, variant, c.priceBucket(price))
	hash := sha256.Sum256([]byte(keyData))
	return fmt.Sprintf("commentary:%s:%s:%x", symbol, kind, hash[:8])
}

// priceBucket maps price onto geometric buckets PriceBucketPct wide
func (c *CommentaryCache) priceBucket(price float64) string {
	if price <= 0 || c.config.PriceBucketPct <= 0 {
		return fmt.Sprintf("%.8f", price)
	}
	idx := math.Floor(math.Log(price) / math.Log1p(c.config.PriceBucketPct))
	return strconv.FormatInt(int64(idx), 10)
}

func (c *CommentaryCache) isEntryValid(cached *CachedCommentary, currentPrice float64) bool {
	if c.now().Sub(cached.Timestamp) > c.config.TTL {
		return false
	}

	if cached.Price > 0 && currentPrice > 0 && c.config.InvalidationPriceMovePct > 0 {
		move := math.Abs(currentPrice-cached.Price) / cached.Price
		if move > c.config.InvalidationPriceMovePct {
			c.log.Debugw("Cache entry invalidated by price move",
				"symbol", cached.Symbol,
				"cached_price", cached.Price,
				"current_price", currentPrice,
				"change_pct", move*100,
			)
			return false
		}
	}
	return true
}

// Stats returns cache counters
func (c *CommentaryCache) Stats() map[string]int64 {
	return map[string]int64{
		"hits":      c.hits.Load(),
		"misses":    c.misses.Load(),
		"sets":      c.sets.Load(),
		"evictions": c.evictions.Load(),
	}
}

// MemoryStore is an in-process CommentaryStore used when Redis is disabled
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
