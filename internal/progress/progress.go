// Package progress reports indexing progress through structured logging
// instead of an interactive terminal UI. It keeps the stage/event shapes a
// TUI renderer would use so a richer frontend can be layered on later
// without touching the pipeline that reports into it.
package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Stage represents an indexing stage.
type Stage int

const (
	// StageScanning is the file scanning stage.
	StageScanning Stage = iota
	// StageChunking is the code chunking stage.
	StageChunking
	// StageContextual is the contextual enrichment stage.
	StageContextual
	// StageEmbedding is the embedding generation stage.
	StageEmbedding
	// StageIndexing is the index building stage.
	StageIndexing
	// StageComplete indicates indexing is complete.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageScanning:
		return "scanning"
	case StageChunking:
		return "chunking"
	case StageContextual:
		return "contextual"
	case StageEmbedding:
		return "embedding"
	case StageIndexing:
		return "indexing"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Event represents a progress update.
type Event struct {
	Stage       Stage
	Current     int
	Total       int
	CurrentFile string
	Message     string
}

// ErrorEvent represents an error or warning encountered during a run.
type ErrorEvent struct {
	File   string
	Err    error
	IsWarn bool
}

// StageTimings tracks duration for each indexing stage.
type StageTimings struct {
	Scan    time.Duration
	Chunk   time.Duration
	Context time.Duration
	Embed   time.Duration
	Index   time.Duration
}

// EmbedderInfo contains embedder backend details, surfaced in the final
// completion log line so operators can see which backend actually ran.
type EmbedderInfo struct {
	Backend    string
	Model      string
	Dimensions int
}

// CompletionStats contains final indexing statistics.
type CompletionStats struct {
	Files    int
	Chunks   int
	Duration time.Duration
	Errors   int
	Warnings int
	Stages   StageTimings
	Embedder EmbedderInfo
}

// Reporter is the interface the indexing pipeline reports progress through.
type Reporter interface {
	Start(ctx context.Context) error
	UpdateProgress(event Event)
	AddError(event ErrorEvent)
	Complete(stats CompletionStats)
	Stop() error
}

// LogReporter reports progress via structured slog records at a throttled
// rate, so a large scan doesn't produce one log line per file.
type LogReporter struct {
	mu           sync.Mutex
	logger       *slog.Logger
	stage        Stage
	lastLogged   time.Time
	logEvery     time.Duration
	errorCount   int
	warningCount int
}

// New creates a LogReporter writing through the given logger. A nil logger
// falls back to slog.Default().
func New(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger, logEvery: 2 * time.Second}
}

// Start implements Reporter.
func (r *LogReporter) Start(ctx context.Context) error {
	r.logger.InfoContext(ctx, "indexing_started")
	return nil
}

// UpdateProgress implements Reporter. Updates are throttled to logEvery,
// except stage transitions and terminal (Current == Total) updates, which
// always log immediately.
func (r *LogReporter) UpdateProgress(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stageChanged := event.Stage != r.stage
	r.stage = event.Stage

	terminal := event.Total > 0 && event.Current >= event.Total
	if !stageChanged && !terminal && time.Since(r.lastLogged) < r.logEvery {
		return
	}
	r.lastLogged = time.Now()

	attrs := []any{
		slog.String("stage", event.Stage.String()),
	}
	if event.Total > 0 {
		attrs = append(attrs, slog.Int("current", event.Current), slog.Int("total", event.Total))
	}
	if event.CurrentFile != "" {
		attrs = append(attrs, slog.String("file", event.CurrentFile))
	}
	if event.Message != "" {
		attrs = append(attrs, slog.String("message", event.Message))
	}
	r.logger.Info("indexing_progress", attrs...)
}

// AddError implements Reporter.
func (r *LogReporter) AddError(event ErrorEvent) {
	r.mu.Lock()
	if event.IsWarn {
		r.warningCount++
	} else {
		r.errorCount++
	}
	r.mu.Unlock()

	level := slog.LevelError
	if event.IsWarn {
		level = slog.LevelWarn
	}
	r.logger.Log(context.Background(), level, "indexing_file_error",
		slog.String("file", event.File),
		slog.String("error", errString(event.Err)))
}

// Complete implements Reporter.
func (r *LogReporter) Complete(stats CompletionStats) {
	r.logger.Info("indexing_complete",
		slog.Int("files", stats.Files),
		slog.Int("chunks", stats.Chunks),
		slog.String("duration", stats.Duration.String()),
		slog.Int("errors", stats.Errors),
		slog.Int("warnings", stats.Warnings),
		slog.String("embedder_backend", stats.Embedder.Backend),
		slog.String("embedder_model", stats.Embedder.Model),
		slog.Int("embedder_dimensions", stats.Embedder.Dimensions),
		slog.Int64("stage_scan_ms", stats.Stages.Scan.Milliseconds()),
		slog.Int64("stage_chunk_ms", stats.Stages.Chunk.Milliseconds()),
		slog.Int64("stage_context_ms", stats.Stages.Context.Milliseconds()),
		slog.Int64("stage_embed_ms", stats.Stages.Embed.Milliseconds()),
		slog.Int64("stage_index_ms", stats.Stages.Index.Milliseconds()))
}

// Stop implements Reporter.
func (r *LogReporter) Stop() error {
	return nil
}

// MultiReporter fans every call out to a list of Reporters, so indexing can
// report to more than one sink at once (e.g. structured logs plus an
// on-disk progress snapshot for an out-of-process status check).
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter creates a MultiReporter over the given reporters, in call order.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

// Start implements Reporter. Continues past a failing reporter so one
// misbehaving sink can't block the others from starting.
func (m *MultiReporter) Start(ctx context.Context) error {
	var firstErr error
	for _, r := range m.reporters {
		if err := r.Start(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// UpdateProgress implements Reporter.
func (m *MultiReporter) UpdateProgress(event Event) {
	for _, r := range m.reporters {
		r.UpdateProgress(event)
	}
}

// AddError implements Reporter.
func (m *MultiReporter) AddError(event ErrorEvent) {
	for _, r := range m.reporters {
		r.AddError(event)
	}
}

// Complete implements Reporter.
func (m *MultiReporter) Complete(stats CompletionStats) {
	for _, r := range m.reporters {
		r.Complete(stats)
	}
}

// Stop implements Reporter.
func (m *MultiReporter) Stop() error {
	var firstErr error
	for _, r := range m.reporters {
		if err := r.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
