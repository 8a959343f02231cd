package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcindex/lcindex/internal/cache"
	"github.com/lcindex/lcindex/internal/metastore"
)

// TestEngine_Search_CacheHitSkipsSearch exercises spec §8 scenario 5: a
// second identical query is served from the cache without touching BM25 or
// the vector store.
func TestEngine_Search_CacheHitSkipsSearch(t *testing.T) {
	var bm25Calls, vecCalls int

	bm25 := &MockBM25Index{
		SearchFn: func(_ context.Context, _ string, _ int) ([]*metastore.BM25Result, error) {
			bm25Calls++
			return []*metastore.BM25Result{{DocID: "chunk-1", Score: 1.0}}, nil
		},
	}
	vec := &MockVectorStore{
		SearchFn: func(_ context.Context, _ []float32, _ int) ([]*metastore.VectorResult, error) {
			vecCalls++
			return nil, nil
		},
	}
	embedder := &MockEmbedder{
		EmbedFn: func(_ context.Context, _ string) ([]float32, error) {
			return make([]float32, 768), nil
		},
	}

	metadata := NewMockMetadataStore()
	metadata.chunks["chunk-1"] = &metastore.Chunk{
		ID:          "chunk-1",
		FilePath:    "internal/service/widget.go",
		Content:     "func Widget() {}",
		ContentType: metastore.ContentTypeCode,
		Language:    "go",
	}

	resultCache, err := cache.New[[]*SearchResult](cache.DefaultConfig(), nil)
	require.NoError(t, err)

	engine, err := NewEngine(bm25, vec, embedder, metadata, DefaultConfig(), WithCache(resultCache))
	require.NoError(t, err)

	ctx := context.Background()
	opts := SearchOptions{Limit: 10, BM25Only: true}

	first, err := engine.Search(ctx, "widget constructor", opts)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, bm25Calls)

	second, err := engine.Search(ctx, "widget constructor", opts)
	require.NoError(t, err)
	require.Len(t, second, 1)

	// The second call must be served from the cache: no additional BM25
	// search was issued.
	assert.Equal(t, 1, bm25Calls)
	assert.Equal(t, first[0].Chunk.ID, second[0].Chunk.ID)

	stats := resultCache.Stats()
	assert.Equal(t, uint64(1), stats.L1Hits)
	_ = vecCalls
}

// TestEngine_cacheKey_DiffersOnOptions asserts the fingerprint changes with
// any option that changes the result set, and is stable for repeated calls
// with identical options.
func TestEngine_cacheKey_DiffersOnOptions(t *testing.T) {
	e := &Engine{}

	base := SearchOptions{Limit: 10, Filter: "all"}
	variant := SearchOptions{Limit: 20, Filter: "all"}

	k1 := e.cacheKey("find handler", base)
	k2 := e.cacheKey("find handler", base)
	k3 := e.cacheKey("find handler", variant)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
