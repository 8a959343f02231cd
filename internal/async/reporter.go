package async

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lcindex/lcindex/internal/progress"
)

// stageFromProgress maps a progress.Stage reported by the indexing pipeline
// to the coarser IndexingStage this package's status snapshot exposes.
func stageFromProgress(s progress.Stage) IndexingStage {
	switch s {
	case progress.StageScanning:
		return StageScanning
	case progress.StageChunking:
		return StageChunking
	case progress.StageContextual:
		return StageContextual
	case progress.StageEmbedding:
		return StageEmbedding
	case progress.StageIndexing, progress.StageComplete:
		return StageIndexing
	default:
		return StageScanning
	}
}

// ProgressReporter adapts an IndexProgress to the progress.Reporter interface
// the indexing pipeline reports through, and persists a JSON snapshot to
// <dataDir>/progress.json on every update so a separate `lcindex status`
// invocation (a different process) can read live progress without sharing
// memory with the indexing run.
type ProgressReporter struct {
	progress *IndexProgress
	path     string
}

// NewProgressReporter creates a ProgressReporter writing its snapshot file
// under dataDir.
func NewProgressReporter(p *IndexProgress, dataDir string) *ProgressReporter {
	return &ProgressReporter{progress: p, path: filepath.Join(dataDir, "progress.json")}
}

// Start implements progress.Reporter.
func (r *ProgressReporter) Start(_ context.Context) error {
	return r.persist()
}

// UpdateProgress implements progress.Reporter.
func (r *ProgressReporter) UpdateProgress(event progress.Event) {
	stage := stageFromProgress(event.Stage)
	r.progress.SetStage(stage, event.Total)
	r.progress.UpdateFiles(event.Current)
	if stage == StageEmbedding || stage == StageIndexing {
		r.progress.SetChunksTotal(event.Total)
		r.progress.UpdateChunks(event.Current)
	}
	_ = r.persist()
}

// AddError implements progress.Reporter. Warnings are not fatal and don't
// change the reported status; only the pipeline's returned error does that.
func (r *ProgressReporter) AddError(event progress.ErrorEvent) {
	if !event.IsWarn && event.Err != nil {
		r.progress.SetError(event.Err.Error())
		_ = r.persist()
	}
}

// Complete implements progress.Reporter.
func (r *ProgressReporter) Complete(_ progress.CompletionStats) {
	r.progress.SetReady()
	_ = r.persist()
}

// Stop implements progress.Reporter. The snapshot file is left in place so
// `lcindex status` can still report the final state after the run exits.
func (r *ProgressReporter) Stop() error {
	return r.persist()
}

// persist atomically writes the current progress snapshot to disk.
func (r *ProgressReporter) persist() error {
	data, err := json.Marshal(r.progress.Snapshot())
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// ReadProgressSnapshot loads the progress snapshot written by a
// ProgressReporter for the indexing run under dataDir, if one exists.
func ReadProgressSnapshot(dataDir string) (*IndexProgressSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, "progress.json"))
	if err != nil {
		return nil, err
	}
	var snap IndexProgressSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
