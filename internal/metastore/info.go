package metastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EmbedderInfoInput carries the currently configured embedder's identity,
// used to detect dimension/model drift against what the index was built with.
type EmbedderInfoInput struct {
	Model      string
	Backend    string
	Dimensions int
}

// GetIndexInfo assembles a snapshot of an index's configuration and storage
// footprint for the `lcindex index info` command. current may be nil if the
// embedder could not be constructed (offline, misconfigured, etc).
func GetIndexInfo(ctx context.Context, store MetadataStore, dataDir string, current *EmbedderInfoInput) (*IndexInfo, error) {
	info := &IndexInfo{
		Location:    dataDir,
		ProjectRoot: filepath.Dir(dataDir),
	}

	model, err := store.GetState(ctx, StateKeyIndexModel)
	if err != nil {
		return nil, fmt.Errorf("failed to read index model: %w", err)
	}
	info.IndexModel = model
	if model != "" {
		info.IndexBackend = inferBackendFromModel(model)
	}

	if dimStr, err := store.GetState(ctx, StateKeyIndexDimension); err == nil && dimStr != "" {
		if dims, err := strconv.Atoi(dimStr); err == nil {
			info.IndexDimensions = dims
		}
	}

	withEmbedding, withoutEmbedding, err := store.GetEmbeddingStats(ctx)
	if err == nil {
		info.ChunkCount = withEmbedding + withoutEmbedding
		info.DocumentCount = withEmbedding
	}

	metadataPath := filepath.Join(dataDir, "metadata.db")
	if fi, err := os.Stat(metadataPath); err == nil {
		info.UpdatedAt = fi.ModTime()
		info.CreatedAt = fi.ModTime()
	}

	bm25SQLitePath := filepath.Join(dataDir, "bm25.db")
	bm25BlevePath := filepath.Join(dataDir, "bm25.bleve")
	if size := getFileSize(bm25SQLitePath); size > 0 {
		info.BM25SizeBytes = size
	} else {
		info.BM25SizeBytes = getDirSize(bm25BlevePath)
	}

	info.VectorSizeBytes = getFileSize(filepath.Join(dataDir, "vectors.hnsw"))
	info.IndexSizeBytes = getFileSize(metadataPath) + info.BM25SizeBytes + info.VectorSizeBytes

	if current != nil {
		info.CurrentModel = current.Model
		info.CurrentBackend = current.Backend
		info.CurrentDimensions = current.Dimensions
		info.Compatible = info.IndexDimensions == 0 || info.IndexDimensions == current.Dimensions
	}

	return info, nil
}

// FormatBytes renders a byte count using binary (1024-based) units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatTime renders a timestamp for human display, or "unknown" if zero.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02 15:04:05")
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// inferBackendFromModel guesses the embedding backend from a model identifier
// when the index predates explicit backend tracking.
func inferBackendFromModel(model string) string {
	switch {
	case model == "static" || model == "static768":
		return "static"
	case strings.HasPrefix(model, "/"), containsAny(model, []string{"mlx-community/", "mlx-"}):
		return "mlx"
	default:
		return "ollama"
	}
}

func getFileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func getDirSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !fi.IsDir() {
			size += fi.Size()
		}
		return nil
	})
	return size
}
