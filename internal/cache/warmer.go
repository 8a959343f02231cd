package cache

import (
	"context"
	"log/slog"
	"sort"
)

// WarmCandidate describes one query worth pre-computing, ranked by how
// often it's been asked and how expensive it was last time.
type WarmCandidate struct {
	Query        string
	Frequency    int
	AvgLatencyMs float64
}

// priority favors queries that are both frequent and slow: the ones where
// a cache hit saves the most aggregate wall-clock time.
func (c WarmCandidate) priority() float64 {
	return float64(c.Frequency) * c.AvgLatencyMs
}

// SearchFunc executes a query against the live query engine, bypassing the
// cache, so its result can be stored into it.
type SearchFunc[T any] func(ctx context.Context, query string) (T, error)

// Warmer pre-populates a QueryCache from historical query-log candidates,
// highest priority first, stopping at a caller-supplied budget. Grounded on
// the indexing pipeline's checkpoint/progress-reporting idiom
// (internal/progress): structured log lines instead of a TUI, one line per
// candidate plus a summary.
type Warmer[T any] struct {
	Cache  *QueryCache[T]
	Search SearchFunc[T]
	Logger *slog.Logger
}

// Warm runs up to maxQueries candidates (highest priority() first) through
// Search and stores each result in Cache. It keeps going on individual
// search errors so one bad candidate doesn't abort the run; it logs and
// counts them instead.
func (w *Warmer[T]) Warm(ctx context.Context, candidates []WarmCandidate, maxQueries int) (warmed, failed int) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ranked := make([]WarmCandidate, len(candidates))
	copy(ranked, candidates)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].priority() > ranked[j].priority() })

	if maxQueries > 0 && len(ranked) > maxQueries {
		ranked = ranked[:maxQueries]
	}

	for _, cand := range ranked {
		select {
		case <-ctx.Done():
			logger.Warn("cache warm cancelled", "warmed", warmed, "failed", failed)
			return warmed, failed
		default:
		}

		result, err := w.Search(ctx, cand.Query)
		if err != nil {
			failed++
			logger.Debug("cache warm query failed", "query", cand.Query, "error", err)
			continue
		}

		key := Key(cand.Query)
		if err := w.Cache.Set(ctx, key, result); err != nil {
			failed++
			logger.Debug("cache warm store failed", "query", cand.Query, "error", err)
			continue
		}
		warmed++
	}

	logger.Info("cache warm complete", "warmed", warmed, "failed", failed, "candidates", len(candidates))
	return warmed, failed
}
