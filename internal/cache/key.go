package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key derives a stable cache key from a query string and a small set of
// option fields that affect its result set. Mirrors the embedder cache's
// text+model key derivation (internal/embed/cached.go's cacheKey) but folds
// in the extra dimensions a search query carries (filters, ranking mode).
func Key(query string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(query))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// KeyOf is a convenience wrapper for the common case of keying on query +
// limit + filter + ranking mode.
func KeyOf(query string, limit int, filter, rankingMode string) string {
	return Key(query, fmt.Sprintf("%d", limit), filter, rankingMode)
}
