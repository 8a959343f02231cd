package query

import (
	"math"
	"sort"
	"time"
)

// RankingMode selects how fused BM25/vector results are turned into a
// final ordering.
type RankingMode string

const (
	// RankingModeRRF ranks purely by Reciprocal Rank Fusion (the default).
	RankingModeRRF RankingMode = "rrf"
	// RankingModeWeighted applies WeightedReranker's linear blend on top
	// of the fused candidate set.
	RankingModeWeighted RankingMode = "weighted"
)

// WeightedScoreConfig controls the relative contribution of each signal in
// WeightedReranker. Weights don't need to sum to 1; results are compared
// against each other, not against an absolute scale.
type WeightedScoreConfig struct {
	// Similarity weights the fused BM25/vector similarity (RRFScore,
	// already normalized to roughly 0-1 by RRFFusion).
	Similarity float64
	// Confidence weights how strongly a result is corroborated by both
	// retrieval paths at once (1.0 if in both lists, 0.5 otherwise).
	Confidence float64
	// ContextBoost weights symbol-kind and path heuristics (functions and
	// methods outrank bare text chunks; internal/ outranks cmd/; test
	// files are penalized), mirroring the boosts ApplyFilters' siblings
	// already apply post-fusion.
	ContextBoost float64
	// Recency weights how recently the chunk's file was reindexed,
	// favoring actively maintained code over stale, long-unit files.
	Recency float64
	// RecencyHalfLife is the duration after which a chunk's recency
	// contribution decays to half its maximum. Zero disables decay
	// (every chunk gets full recency credit).
	RecencyHalfLife time.Duration
}

// DefaultWeightedScoreConfig returns a blend that favors similarity first,
// with the other signals acting as tie-breakers among close candidates.
func DefaultWeightedScoreConfig() WeightedScoreConfig {
	return WeightedScoreConfig{
		Similarity:      0.60,
		Confidence:      0.15,
		ContextBoost:    0.15,
		Recency:         0.10,
		RecencyHalfLife: 30 * 24 * time.Hour,
	}
}

// WeightedReranker combines a result's fused similarity, cross-list
// confidence, structural context, and recency into a single score:
//
//	score = α·sim + β·confidence + γ·contextBoost + δ·recency
//
// It operates after RRFFusion has produced candidates and after chunks have
// been hydrated from the metadata store, so it has symbol kind, file path,
// and UpdatedAt available. Unlike RRFFusion (rank-based, source-agnostic),
// this mode lets operators tune how much structural metadata should move a
// result, at the cost of needing per-result chunk data up front.
type WeightedReranker struct {
	cfg WeightedScoreConfig
	now func() time.Time
}

// NewWeightedReranker creates a reranker with the given weight config.
func NewWeightedReranker(cfg WeightedScoreConfig) *WeightedReranker {
	return &WeightedReranker{cfg: cfg, now: time.Now}
}

// Rerank recomputes Score for each result using the weighted blend and
// returns them sorted by the new score, descending. The input results must
// already have Chunk populated (e.g. via the engine's existing hydration
// step) for ContextBoost and Recency to have signal; results with a nil
// Chunk get contextBoost=0.5 and recency=0.
func (w *WeightedReranker) Rerank(results []*SearchResult) []*SearchResult {
	now := w.now()
	for _, r := range results {
		sim := clamp01(r.Score)
		confidence := 0.5
		if r.BM25Rank > 0 && r.VecRank > 0 {
			confidence = 1.0
		}
		r.Score = w.cfg.Similarity*sim +
			w.cfg.Confidence*confidence +
			w.cfg.ContextBoost*contextBoost(r) +
			w.cfg.Recency*w.recencyScore(r, now)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (w *WeightedReranker) recencyScore(r *SearchResult, now time.Time) float64 {
	if r.Chunk == nil || r.Chunk.UpdatedAt.IsZero() {
		return 0
	}
	if w.cfg.RecencyHalfLife <= 0 {
		return 1
	}
	age := now.Sub(r.Chunk.UpdatedAt)
	if age < 0 {
		age = 0
	}
	halfLives := float64(age) / float64(w.cfg.RecencyHalfLife)
	return math.Pow(0.5, halfLives)
}

// contextBoost scores structural signals already used for filtering
// elsewhere in this package: functions/methods over bare text, internal/
// implementation code over cmd/ wrappers, non-test files over test files.
func contextBoost(r *SearchResult) float64 {
	if r.Chunk == nil {
		return 0.5
	}

	score := 0.5
	for _, sym := range r.Chunk.Symbols {
		switch sym.Type {
		case "function", "method":
			score = math.Max(score, 0.9)
		case "class", "interface", "type":
			score = math.Max(score, 0.75)
		}
	}

	path := r.Chunk.FilePath
	switch {
	case IsTestFile(path):
		score *= TestFilePenalty
	case IsImplementationPath(path):
		score = math.Min(1, score*InternalPathBoost)
	case IsWrapperPath(path):
		score *= CmdPathPenalty
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
