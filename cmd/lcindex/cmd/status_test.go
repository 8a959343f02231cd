package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcindex/lcindex/internal/async"
	"github.com/lcindex/lcindex/internal/metastore"
	"github.com/lcindex/lcindex/internal/output"
)

func TestStatusCmd_NoIndex(t *testing.T) {
	// Given: a directory with no index
	tmpDir := t.TempDir()

	// When: running status command
	cmd := newStatusCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	// Change to temp directory
	oldDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldDir) }()
	_ = os.Chdir(tmpDir)

	err := cmd.Execute()

	// Then: returns error about missing index
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index found")
}

func TestCollectStatus_WithProject(t *testing.T) {
	// Given: a directory with an index
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, ".lcindex")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	// Create a minimal metadata store
	metadataPath := filepath.Join(dataDir, "metadata.db")
	metadata, err := metastore.NewSQLiteStore(metadataPath)
	require.NoError(t, err)

	// Save a project with the correct ID
	projectID := hashString(tmpDir)
	project := &metastore.Project{
		ID:         projectID,
		Name:       "test-project",
		RootPath:   tmpDir,
		FileCount:  10,
		ChunkCount: 50,
		IndexedAt:  time.Now(),
	}
	require.NoError(t, metadata.SaveProject(context.Background(), project))
	require.NoError(t, metadata.Close())

	// When: collecting status
	ctx := context.Background()
	info, err := collectStatus(ctx, tmpDir, dataDir)

	// Then: succeeds and contains correct data
	require.NoError(t, err)
	assert.Equal(t, 10, info.TotalFiles)
	assert.Equal(t, 50, info.TotalChunks)
	assert.NotZero(t, info.MetadataSize)
}

func TestCollectStatus_NoProject(t *testing.T) {
	// Given: a directory with metadata but no project
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, ".lcindex")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	// Create a minimal metadata store (but don't add any project)
	metadataPath := filepath.Join(dataDir, "metadata.db")
	metadata, err := metastore.NewSQLiteStore(metadataPath)
	require.NoError(t, err)
	require.NoError(t, metadata.Close())

	// When: collecting status
	ctx := context.Background()
	info, err := collectStatus(ctx, tmpDir, dataDir)

	// Then: succeeds but shows zero counts
	require.NoError(t, err)
	assert.Equal(t, 0, info.TotalFiles)
	assert.Equal(t, 0, info.TotalChunks)
}

func TestRenderStatus_Output(t *testing.T) {
	// Given: status info
	info := StatusInfo{
		ProjectName:    "my-project",
		TotalFiles:     10,
		TotalChunks:    50,
		LastIndexed:    time.Now(),
		MetadataSize:   1024 * 1024,
		EmbedderType:   "hugot",
		EmbedderStatus: "ready",
		EmbedderModel:  "minilm",
	}

	// When: rendering
	buf := &bytes.Buffer{}
	renderStatus(output.New(buf), info)

	// Then: output contains expected values
	out := buf.String()
	assert.Contains(t, out, "my-project")
	assert.Contains(t, out, "10") // File count
	assert.Contains(t, out, "50") // Chunk count
	assert.Contains(t, out, "hugot")
	assert.Contains(t, out, "ready")
}

func TestStatusCmd_JSON(t *testing.T) {
	// Given: a directory with an indexed project
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, ".lcindex")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	metadataPath := filepath.Join(dataDir, "metadata.db")
	metadata, err := metastore.NewSQLiteStore(metadataPath)
	require.NoError(t, err)
	projectID := hashString(tmpDir)
	require.NoError(t, metadata.SaveProject(context.Background(), &metastore.Project{
		ID: projectID, Name: "json-project", RootPath: tmpDir, FileCount: 5, ChunkCount: 25,
	}))
	require.NoError(t, metadata.Close())

	oldDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldDir) }()
	_ = os.Chdir(tmpDir)

	cmd := newStatusCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, `"project_name"`)
	assert.Contains(t, out, `"json-project"`)
	assert.Contains(t, out, `"total_files"`)
}

func TestGetFileSize_NonExistent(t *testing.T) {
	// When: getting size of non-existent file
	size := getFileSize("/nonexistent/file.txt")

	// Then: returns 0
	assert.Equal(t, int64(0), size)
}

func TestGetFileSize_Exists(t *testing.T) {
	// Given: a file with known content
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test.txt")
	content := []byte("hello world")
	require.NoError(t, os.WriteFile(filePath, content, 0644))

	// When: getting file size
	size := getFileSize(filePath)

	// Then: returns correct size
	assert.Equal(t, int64(len(content)), size)
}

func TestGetDirSize(t *testing.T) {
	// Given: a directory with files
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.txt"), []byte("aaaa"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "b.txt"), []byte("bb"), 0644))

	// When: getting directory size
	size := getDirSize(tmpDir)

	// Then: returns sum of file sizes
	assert.Equal(t, int64(6), size)
}

func TestGetDirSize_NonExistent(t *testing.T) {
	// When: getting size of non-existent directory
	size := getDirSize("/nonexistent/dir")

	// Then: returns 0
	assert.Equal(t, int64(0), size)
}

func TestCollectStatus_ActiveBackgroundRun(t *testing.T) {
	// Given: a background run has written a lock and a progress snapshot
	// but no metadata.db yet (still scanning/chunking)
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, ".lcindex")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "indexing.lock"), []byte(time.Now().Format(time.RFC3339)), 0644))

	prog := async.NewIndexProgress()
	prog.SetStage(async.StageEmbedding, 100)
	prog.UpdateFiles(40)
	reporter := async.NewProgressReporter(prog, dataDir)
	require.NoError(t, reporter.Start(context.Background()))

	// When: collecting status
	info, err := collectStatus(context.Background(), tmpDir, dataDir)

	// Then: reports the in-progress run even without a metadata store
	require.NoError(t, err)
	assert.True(t, info.IndexingActive)
	assert.Equal(t, string(async.StageEmbedding), info.IndexingStage)
}

func TestStatusCmd_ActiveRunWithoutMetadata(t *testing.T) {
	// Given: only a lock file, no metadata.db
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, ".lcindex")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "indexing.lock"), []byte(time.Now().Format(time.RFC3339)), 0644))

	oldDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldDir) }()
	_ = os.Chdir(tmpDir)

	// When: running status command
	cmd := newStatusCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	// Then: it does not fail with "no index found"
	require.NoError(t, cmd.Execute())
}

func TestRenderStatus_ActiveIndexing(t *testing.T) {
	// Given: status info with an active run
	info := StatusInfo{
		ProjectName:     "my-project",
		IndexingActive:  true,
		IndexingStage:   string(async.StageEmbedding),
		IndexingPercent: 42,
	}

	// When: rendering
	buf := &bytes.Buffer{}
	renderStatus(output.New(buf), info)

	// Then: includes the live progress line
	out := buf.String()
	assert.Contains(t, out, "Indexing: in progress")
	assert.Contains(t, out, "embedding")
}
