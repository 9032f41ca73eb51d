package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// fetchCache memoizes channel reads: L1 in-memory + optional L2 Redis.
// Every lookup declares its TTL; an entry is fresh while now-fetchedAt < ttl.
var fetchCache *tieredCache

// Cache metrics, atomic for concurrent access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// maxTTL bounds L1 retention for entries no lookup has touched.
const maxTTL = time.Hour

// tieredCache implements L1 (memory) + L2 (Redis) caching.
type tieredCache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	maxEntries      int
	cleanupInterval time.Duration
	now             func() time.Time
}

type cacheEntry struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetched_at"`
}

func (e *cacheEntry) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// InitCache sets up the 2-tier cache. redisURL can be empty to disable L2.
func InitCache(redisURL string, maxEntries int, cleanupInterval time.Duration) {
	c := &tieredCache{maxEntries: maxEntries, cleanupInterval: cleanupInterval, now: time.Now}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	fetchCache = c
	slog.Info("cache: initialized", slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from an operation name and its arguments.
func CacheKey(op string, args ...string) string {
	joined := op + "|" + strings.Join(args, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("gc:%s:%x", op, hash[:12])
}

// CacheGet tries L1, then L2. On L2 hit, populates L1.
func CacheGet(ctx context.Context, key string, ttl time.Duration) ([]byte, bool) {
	if fetchCache == nil {
		cacheMisses.Add(1)
		return nil, false
	}
	now := fetchCache.now()

	if val, ok := fetchCache.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if entry.fresh(now, ttl) {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			cacheHits.Add(1)
			return entry.Data, true
		}
		fetchCache.l1.Delete(key)
	}

	if fetchCache.rdb != nil {
		raw, err := fetchCache.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var entry cacheEntry
			if json.Unmarshal(raw, &entry) == nil && entry.fresh(now, ttl) {
				slog.Debug("cache: L2 hit", slog.String("key", key))
				cacheHits.Add(1)
				fetchCache.l1.Store(key, &entry)
				return entry.Data, true
			}
		}
	}

	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores data in both L1 and L2, stamped with the current time.
func CacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if fetchCache == nil {
		return
	}
	entry := &cacheEntry{Data: data, FetchedAt: fetchCache.now()}

	fetchCache.evictIfNeeded()
	fetchCache.l1.Store(key, entry)

	if fetchCache.rdb != nil {
		raw, err := json.Marshal(entry)
		if err != nil {
			return
		}
		if err := fetchCache.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheDelete drops a key from both tiers.
func CacheDelete(ctx context.Context, key string) {
	if fetchCache == nil {
		return
	}
	fetchCache.l1.Delete(key)
	if fetchCache.rdb != nil {
		fetchCache.rdb.Del(ctx, key)
	}
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// CacheLoadJSON loads a cached value of type T.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string, ttl time.Duration) (T, bool) {
	var out T
	data, ok := CacheGet(ctx, key, ttl)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it.
func CacheStoreJSON[T any](ctx context.Context, key string, ttl time.Duration, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSet(ctx, key, data, ttl)
}

// CachedFetch returns the cached value for key when fresh, otherwise calls fetch and
// caches its result. Errors are never cached.
func CachedFetch[T any](ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if out, ok := CacheLoadJSON[T](ctx, key, ttl); ok {
		return out, nil
	}
	out, err := fetch(ctx)
	if err != nil {
		return out, err
	}
	CacheStoreJSON(ctx, key, ttl, out)
	return out, nil
}

// evictIfNeeded removes entries when L1 exceeds maxEntries.
// Removes stale entries first, then oldest entries if still over limit.
func (c *tieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := c.now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && !entry.fresh(now, maxTTL) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.FetchedAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.FetchedAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

// cleanupLoop periodically removes L1 entries older than maxTTL.
func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		now := c.now()
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && !entry.fresh(now, maxTTL) {
				c.l1.Delete(key)
			}
			return true
		})
	}
}
