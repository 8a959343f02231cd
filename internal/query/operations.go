package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SignatureQuery searches for a function/method signature rather than free
// text. It runs a BM25-only search over the signature string (semantic
// search adds noise for exact-shape queries like "func(ctx context.Context,
// id string) error") and then promotes results whose Chunk.Symbols contain a
// signature matching the query substring, case-insensitively, above results
// that only matched on surrounding text.
func (e *Engine) SignatureQuery(ctx context.Context, signature string, opts SearchOptions) ([]*SearchResult, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return nil, nil
	}

	opts.BM25Only = true
	results, err := e.Search(ctx, signature, opts)
	if err != nil {
		return nil, fmt.Errorf("signature query: %w", err)
	}

	needle := strings.ToLower(signature)
	matched := make([]*SearchResult, 0, len(results))
	rest := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		if chunkHasMatchingSignature(r, needle) {
			matched = append(matched, r)
		} else {
			rest = append(rest, r)
		}
	}
	return append(matched, rest...), nil
}

func chunkHasMatchingSignature(r *SearchResult, needleLower string) bool {
	if r.Chunk == nil {
		return false
	}
	for _, s := range r.Chunk.Symbols {
		if s == nil {
			continue
		}
		if strings.Contains(strings.ToLower(s.Signature), needleLower) {
			return true
		}
	}
	return false
}

// FileQuery returns the chunks that make up filePath, ordered by their
// position in the file. There is no direct "chunks by path" lookup on
// MetadataStore (GetChunksByFile-style access needs a project-scoped file
// ID the Engine doesn't hold), so this seeds a BM25-only search with the
// path itself - chunk records store FilePath as indexed text - and then
// keeps only chunks whose FilePath matches exactly.
func (e *Engine) FileQuery(ctx context.Context, filePath string, opts SearchOptions) ([]*SearchResult, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, nil
	}

	opts = e.applyDefaults(opts)
	seedLimit := opts.Limit * 8
	if seedLimit < 50 {
		seedLimit = 50
	}

	bm25Results, err := e.searchBM25(ctx, filePath, seedLimit, opts)
	if err != nil {
		return nil, fmt.Errorf("file query: %w", err)
	}

	fused := e.fuseResults(bm25Results, nil, &Weights{BM25: 1.0, Semantic: 0.0})
	enriched, err := e.enrichResults(ctx, fused)
	if err != nil {
		return nil, fmt.Errorf("file query: %w", err)
	}

	filtered := make([]*SearchResult, 0, len(enriched))
	for _, r := range enriched {
		if r.Chunk != nil && r.Chunk.FilePath == filePath {
			filtered = append(filtered, r)
		}
	}
	filtered = ApplyFilters(filtered, opts)

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Chunk.StartLine < filtered[j].Chunk.StartLine
	})

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

// Context-boost multipliers applied by ContextualQuery. A result in the
// file the user currently has open is far more likely to be what they mean
// than one in a file they viewed three edits ago.
const (
	currentFileBoost = 1.5
	recentFileBoost  = 1.15
)

// ContextualQuery runs a normal hybrid search and then re-ranks results
// using IDE-supplied situational hints: chunks in sctx.CurrentFile are
// boosted the most, chunks in sctx.RecentFiles less so. Boosting only
// happens when opts.UseContextBoosting is set - callers that just want to
// pass Context through for telemetry without affecting ranking can leave it
// off.
func (e *Engine) ContextualQuery(ctx context.Context, query string, sctx Context, opts SearchOptions) ([]*SearchResult, error) {
	opts.Context = &sctx
	results, err := e.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if !opts.UseContextBoosting {
		return results, nil
	}
	return applyContextBoost(results, sctx), nil
}

// applyContextBoost multiplies scores by currentFileBoost/recentFileBoost
// and re-sorts descending. Search may return results backed by the query
// cache, so this copies each SearchResult before adjusting its score rather
// than mutating the cached entries in place.
func applyContextBoost(results []*SearchResult, sctx Context) []*SearchResult {
	if len(results) == 0 {
		return results
	}

	recent := make(map[string]bool, len(sctx.RecentFiles))
	for _, f := range sctx.RecentFiles {
		recent[f] = true
	}

	boosted := make([]*SearchResult, len(results))
	for i, r := range results {
		cp := *r
		if cp.Chunk != nil {
			switch {
			case sctx.CurrentFile != "" && cp.Chunk.FilePath == sctx.CurrentFile:
				cp.Score *= currentFileBoost
			case recent[cp.Chunk.FilePath]:
				cp.Score *= recentFileBoost
			}
		}
		boosted[i] = &cp
	}

	sort.Slice(boosted, func(i, j int) bool {
		return boosted[i].Score > boosted[j].Score
	})
	return boosted
}

// BatchQuery runs multiple queries concurrently against the engine and
// returns their results keyed by the original query string. One query
// failing does not fail the batch; its error is joined into the returned
// error and its entry is omitted from the result map, so callers can still
// use whichever queries succeeded.
func (e *Engine) BatchQuery(ctx context.Context, queries []string, opts SearchOptions) (map[string][]*SearchResult, error) {
	results := make(map[string][]*SearchResult, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	var errs []error
	g, gctx := errgroup.WithContext(ctx)

	for _, q := range queries {
		q := q
		g.Go(func() error {
			r, err := e.Search(gctx, q, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("query %q: %w", q, err))
				return nil
			}
			results[q] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	return results, nil
}
