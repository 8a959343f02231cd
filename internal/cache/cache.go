// Package cache implements the three-level query-result cache: an in-process
// LRU of decoded results (L1), an in-process LRU of zstd-compressed bytes
// (L2), and a SQLite-backed persistent tier (L3). A miss at one level
// promotes into the levels above it on the way back up, matching the
// teacher's embedder cache's "compute once, remember everywhere" shape
// (internal/embed/cached.go) generalized across three tiers instead of one.
package cache

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
)

// L3Store is the persistence surface the cache needs from the metadata
// store. metastore.SQLiteStore satisfies this directly.
type L3Store interface {
	GetCacheEntry(ctx context.Context, key string) (value []byte, ok bool, err error)
	SetCacheEntry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteExpiredCacheEntries(ctx context.Context) (int64, error)
}

// Config controls the size of each cache tier.
type Config struct {
	// L1Entries is the number of decoded results L1 holds (default: 256).
	L1Entries int
	// L2Entries is the number of compressed entries L2 holds (default: 2048).
	L2Entries int
	// TTL is how long an L3 entry survives before it's treated as a miss
	// (default: 24h). 0 means entries never expire.
	TTL time.Duration
}

// DefaultConfig returns sensible tier sizes.
func DefaultConfig() Config {
	return Config{
		L1Entries: 256,
		L2Entries: 2048,
		TTL:       24 * time.Hour,
	}
}

// QueryCache is a three-level cache over arbitrary JSON-serializable query
// results, keyed by an opaque string (the caller hashes query+options into
// it; see Key).
type QueryCache[T any] struct {
	cfg Config

	l1 *lru.Cache[string, T]
	l2 *lru.Cache[string, []byte]
	l3 L3Store

	enc *zstd.Encoder
	dec *zstd.Decoder

	hits   [3]uint64 // l1, l2, l3
	misses uint64
}

// New builds a QueryCache. l3 may be nil to disable the persistent tier
// (e.g. for an in-memory-only index).
func New[T any](cfg Config, l3 L3Store) (*QueryCache[T], error) {
	if cfg.L1Entries <= 0 {
		cfg.L1Entries = DefaultConfig().L1Entries
	}
	if cfg.L2Entries <= 0 {
		cfg.L2Entries = DefaultConfig().L2Entries
	}

	l1, err := lru.New[string, T](cfg.L1Entries)
	if err != nil {
		return nil, err
	}
	l2, err := lru.New[string, []byte](cfg.L2Entries)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &QueryCache[T]{cfg: cfg, l1: l1, l2: l2, l3: l3, enc: enc, dec: dec}, nil
}

// Get looks up key, checking L1, then L2, then L3 in order, promoting the
// value into every faster tier it wasn't found in.
func (c *QueryCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	if v, ok := c.l1.Get(key); ok {
		c.hits[0]++
		return v, true
	}

	if compressed, ok := c.l2.Get(key); ok {
		c.hits[1]++
		v, err := c.decode(compressed)
		if err != nil {
			return zero, false
		}
		c.l1.Add(key, v)
		return v, true
	}

	if c.l3 != nil {
		raw, ok, err := c.l3.GetCacheEntry(ctx, key)
		if err == nil && ok {
			c.hits[2]++
			v, err := c.decodeRaw(raw)
			if err != nil {
				return zero, false
			}
			c.l1.Add(key, v)
			if compressed, err := c.compressRaw(raw); err == nil {
				c.l2.Add(key, compressed)
			}
			return v, true
		}
	}

	c.misses++
	return zero, false
}

// Set stores value in every tier.
func (c *QueryCache[T]) Set(ctx context.Context, key string, value T) error {
	c.l1.Add(key, value)

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	compressed := c.enc.EncodeAll(raw, nil)
	c.l2.Add(key, compressed)

	if c.l3 != nil {
		return c.l3.SetCacheEntry(ctx, key, raw, c.cfg.TTL)
	}
	return nil
}

// Stats reports hit/miss counts per tier for observability.
type Stats struct {
	L1Hits, L2Hits, L3Hits, Misses uint64
}

func (c *QueryCache[T]) Stats() Stats {
	return Stats{L1Hits: c.hits[0], L2Hits: c.hits[1], L3Hits: c.hits[2], Misses: c.misses}
}

func (c *QueryCache[T]) decode(compressed []byte) (T, error) {
	raw, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decodeRaw(raw)
}

func (c *QueryCache[T]) decodeRaw(raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (c *QueryCache[T]) compressRaw(raw []byte) ([]byte, error) {
	return c.enc.EncodeAll(raw, nil), nil
}
