package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcindex/lcindex/internal/async"
	"github.com/lcindex/lcindex/internal/config"
	"github.com/lcindex/lcindex/internal/metastore"
	"github.com/lcindex/lcindex/internal/output"
)

// StatusInfo summarizes the health of an on-disk index for display.
type StatusInfo struct {
	ProjectName    string    `json:"project_name"`
	TotalFiles     int       `json:"total_files"`
	TotalChunks    int       `json:"total_chunks"`
	LastIndexed    time.Time `json:"last_indexed"`
	MetadataSize   int64     `json:"metadata_size_bytes"`
	BM25Size       int64     `json:"bm25_size_bytes"`
	VectorSize     int64     `json:"vector_size_bytes"`
	TotalSize      int64     `json:"total_size_bytes"`
	EmbedderType   string    `json:"embedder_type"`
	EmbedderModel  string    `json:"embedder_model"`
	EmbedderStatus string    `json:"embedder_status"`
	WatcherStatus  string    `json:"watcher_status"`

	// IndexingActive reports whether a run (foreground or --background) has
	// an outstanding lock, meaning the figures above may be stale.
	IndexingActive  bool    `json:"indexing_active"`
	IndexingStage   string  `json:"indexing_stage,omitempty"`
	IndexingPercent float64 `json:"indexing_percent,omitempty"`
	IndexingError   string  `json:"indexing_error,omitempty"`
}

// hashString returns SHA256 hash of a string (first 16 chars).
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:16]
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index health and status",
		Long: `Display information about the current index including:
  - Number of indexed files and chunks
  - Last indexing time
  - Storage sizes (metadata, BM25, vectors)
  - Embedder status (type, model, availability)
  - Watcher status (if running)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, jsonOutput bool) error {
	// Find project root
	root, err := config.FindProjectRoot(".")
	if err != nil {
		cwd, _ := os.Getwd()
		root = cwd
	}

	dataDir := filepath.Join(root, ".lcindex")

	// Check if index exists. An active run (lock present) is reported even
	// before metadata.db is first written, so `status` is useful while
	// `index --background` is still working.
	metadataPath := filepath.Join(dataDir, "metadata.db")
	if !fileExists(metadataPath) && !async.HasIncompleteLock(dataDir) {
		return fmt.Errorf("no index found in %s\nRun 'lcindex index' to create one", root)
	}

	// Collect status info
	info, err := collectStatus(ctx, root, dataDir)
	if err != nil {
		return fmt.Errorf("failed to collect status: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	renderStatus(output.New(cmd.OutOrStdout()), info)
	return nil
}

// renderStatus prints a StatusInfo summary as plain status lines.
func renderStatus(w *output.Writer, info StatusInfo) {
	w.Statusf("📁", "Project: %s", info.ProjectName)
	w.Statusf("📄", "Files: %d   Chunks: %d", info.TotalFiles, info.TotalChunks)
	if !info.LastIndexed.IsZero() {
		w.Statusf("🕒", "Last indexed: %s", info.LastIndexed.Format(time.RFC3339))
	}
	w.Statusf("💾", "Storage: metadata=%s bm25=%s vectors=%s total=%s",
		formatBytes(info.MetadataSize), formatBytes(info.BM25Size),
		formatBytes(info.VectorSize), formatBytes(info.TotalSize))
	w.Statusf("🧠", "Embedder: %s (%s) — %s", info.EmbedderType, info.EmbedderModel, info.EmbedderStatus)
	w.Statusf("👁", "Watcher: %s", info.WatcherStatus)
	if info.IndexingActive {
		if info.IndexingError != "" {
			w.Statusf("⚠️", "Indexing: failed during %s — %s", info.IndexingStage, info.IndexingError)
		} else {
			w.Statusf("⏳", "Indexing: in progress (%s, %.0f%%)", info.IndexingStage, info.IndexingPercent)
		}
	}
}

// formatBytes renders a byte count in a human-readable unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func collectStatus(ctx context.Context, root, dataDir string) (StatusInfo, error) {
	info := StatusInfo{
		ProjectName: filepath.Base(root),
	}

	info.IndexingActive = async.HasIncompleteLock(dataDir)
	if snap, err := async.ReadProgressSnapshot(dataDir); err == nil {
		info.IndexingStage = snap.Stage
		info.IndexingPercent = snap.ProgressPct
		info.IndexingError = snap.ErrorMessage
	}

	// Open metadata store, if one has been written yet. A background run
	// may still be in its scanning/chunking stage with no metadata.db on
	// disk at all, so this is not fatal on its own.
	metadataPath := filepath.Join(dataDir, "metadata.db")
	if fileExists(metadataPath) {
		metadata, err := metastore.NewSQLiteStore(metadataPath)
		if err != nil {
			return info, fmt.Errorf("failed to open metadata store: %w", err)
		}
		defer func() { _ = metadata.Close() }()

		projectID := hashString(root)
		project, err := metadata.GetProject(ctx, projectID)
		if err != nil {
			// Project not found is not fatal
			project = nil
		}

		if project != nil {
			info.TotalFiles = project.FileCount
			info.TotalChunks = project.ChunkCount
			info.LastIndexed = project.IndexedAt
		}
	}

	// Get storage sizes
	info.MetadataSize = getFileSize(metadataPath)

	// Check both BM25 backends for size calculation
	bm25SQLitePath := filepath.Join(dataDir, "bm25.db")
	bm25BlevePath := filepath.Join(dataDir, "bm25.bleve")
	if size := getFileSize(bm25SQLitePath); size > 0 {
		info.BM25Size = size
	} else {
		info.BM25Size = getDirSize(bm25BlevePath)
	}

	vectorPath := filepath.Join(dataDir, "vectors.hnsw")
	info.VectorSize = getFileSize(vectorPath)

	info.TotalSize = info.MetadataSize + info.BM25Size + info.VectorSize

	// Detect embedder type
	cfg, err := config.Load(root)
	if err != nil {
		cfg = config.NewConfig()
	}

	info.EmbedderType = cfg.Embeddings.Provider
	if info.EmbedderType == "" {
		info.EmbedderType = "ollama" // Default
	}

	// Check embedder status
	info.EmbedderStatus = "ready"
	info.EmbedderModel = cfg.Embeddings.Model
	if info.EmbedderModel == "" {
		info.EmbedderModel = "qwen3-embedding:0.6b" // Default for ollama
	}

	// Watcher status - check if watcher process is running
	// For now, we don't have a way to check if watcher is running
	// So we'll just report "n/a"
	info.WatcherStatus = "n/a"

	return info, nil
}

// getFileSize returns the size of a file in bytes.
func getFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// getDirSize returns the total size of all files in a directory.
func getDirSize(path string) int64 {
	var size int64

	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	return size
}
