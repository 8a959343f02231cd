package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_NoGoroutineLeak(t *testing.T) {
	// Get baseline goroutine count
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	// Create temp directory for testing
	tmpDir := t.TempDir()

	// Run init command multiple times
	for i := 0; i < 3; i++ {
		cmd := newInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		// Use offline to avoid network calls
		cmd.SetArgs([]string{"--offline", "--force"})

		// Change to temp dir
		oldWd, _ := os.Getwd()
		_ = os.Chdir(tmpDir)
		_ = cmd.Execute()
		_ = os.Chdir(oldWd)

		// Clean up for next iteration
		_ = os.RemoveAll(filepath.Join(tmpDir, ".lcindex.yaml"))
		_ = os.RemoveAll(filepath.Join(tmpDir, ".lcindex"))
	}

	// Allow time for any leaked goroutines to settle
	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	// Check goroutine count hasn't grown significantly
	current := runtime.NumGoroutine()
	leaked := current - baseline

	// Should not leak more than 2 goroutines
	assert.LessOrEqual(t, leaked, 2, "goroutine leak detected: baseline=%d, current=%d, leaked=%d", baseline, current, leaked)
}

func TestInitCmd_BasicExecution(t *testing.T) {
	tmpDir := t.TempDir()

	var stdout bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline"})

	// Change to temp dir
	oldWd, _ := os.Getwd()
	err := os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	// Execute
	_ = cmd.Execute()

	// Should produce some output
	output := stdout.String()
	assert.Contains(t, output, "LCIndex")
	assert.Contains(t, output, "Initializing")
}

func TestInitCmd_AlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()

	// Create an existing .lcindex.yaml
	yamlPath := filepath.Join(tmpDir, ".lcindex.yaml")
	err := os.WriteFile(yamlPath, []byte("version: 1\n"), 0644)
	require.NoError(t, err)

	var stdout bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline"})

	// Change to temp dir
	oldWd, _ := os.Getwd()
	err = os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	// Execute
	err = cmd.Execute()
	assert.NoError(t, err)

	// Should warn about already initialized
	output := stdout.String()
	assert.Contains(t, output, "already initialized")
}

func TestInitCmd_ForceReinitialize(t *testing.T) {
	tmpDir := t.TempDir()

	// Create existing .lcindex.yaml
	yamlPath := filepath.Join(tmpDir, ".lcindex.yaml")
	err := os.WriteFile(yamlPath, []byte("version: 1\n"), 0644)
	require.NoError(t, err)

	var stdout bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline", "--force", "--config-only"})

	// Change to temp dir
	oldWd, _ := os.Getwd()
	err = os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	// Execute with --force
	_ = cmd.Execute()

	// Should NOT warn about already initialized when using --force
	output := stdout.String()
	assert.NotContains(t, output, "already initialized")
}

// Feature: Test that init generates .lcindex.yaml template
func TestInitCmd_GeneratesLcindexYAML(t *testing.T) {
	tmpDir := t.TempDir()

	var stdout bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline"})

	oldWd, _ := os.Getwd()
	err := os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	_ = cmd.Execute()

	// Check .lcindex.yaml was created
	yamlPath := filepath.Join(tmpDir, ".lcindex.yaml")
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err, ".lcindex.yaml should be created")

	content := string(data)
	// Should contain documented configuration options
	assert.Contains(t, content, "version:", "Should contain version field")
	assert.Contains(t, content, "paths:", "Should contain paths section")
	assert.Contains(t, content, "search:", "Should contain search section")
	assert.Contains(t, content, "embeddings:", "Should contain embeddings section")
	assert.Contains(t, content, "#", "Should contain comments")
}

// Feature: Test --config-only flag skips indexing
func TestInitCmd_ConfigOnlySkipsIndexing(t *testing.T) {
	tmpDir := t.TempDir()

	var stdout bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline", "--config-only"})

	oldWd, _ := os.Getwd()
	err := os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	_ = cmd.Execute()

	output := stdout.String()
	// Should show skipping message
	assert.Contains(t, output, "Skipping indexing", "Should indicate indexing is skipped")
	// Should still create .lcindex.yaml
	yamlPath := filepath.Join(tmpDir, ".lcindex.yaml")
	_, err = os.Stat(yamlPath)
	assert.NoError(t, err, ".lcindex.yaml should be created even with --config-only")
	// Should NOT create .lcindex directory (no indexing)
	lcindexDir := filepath.Join(tmpDir, ".lcindex")
	_, err = os.Stat(lcindexDir)
	assert.True(t, os.IsNotExist(err), ".lcindex directory should NOT be created with --config-only")
}

// Feature: Test that init preserves existing .lcindex.yaml
func TestInitCmd_PreservesExistingLcindexYAML(t *testing.T) {
	tmpDir := t.TempDir()

	// Create existing .lcindex.yaml with custom content
	existingContent := "version: 1\n# My custom config\npaths:\n  exclude:\n    - vendor/**\n"
	yamlPath := filepath.Join(tmpDir, ".lcindex.yaml")
	err := os.WriteFile(yamlPath, []byte(existingContent), 0644)
	require.NoError(t, err)

	var stdout bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline", "--force", "--config-only"})

	oldWd, _ := os.Getwd()
	err = os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	_ = cmd.Execute()

	// Should preserve existing .lcindex.yaml
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, existingContent, string(data), "Existing .lcindex.yaml should not be overwritten")
}

// =============================================================================
// .gitignore auto-add tests
// =============================================================================

// TestHasLcindexIgnore tests the helper function for detecting existing entries
func TestHasLcindexIgnore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"no match", "*.log\nnode_modules/\n", false},
		{"exact .lcindex", ".lcindex\n", true},
		{"with slash .lcindex/", ".lcindex/\n", true},
		{"rooted /.lcindex", "/.lcindex\n", true},
		{"rooted with slash /.lcindex/", "/.lcindex/\n", true},
		{"commented", "# .lcindex/\n", false},
		{"with whitespace", "  .lcindex/  \n", true},
		{"in middle", "*.log\n.lcindex/\nnode_modules/\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasLcindexIgnore(tt.content)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestEnsureGitignore_CreatesNewFile tests creating .gitignore when it doesn't exist
func TestEnsureGitignore_CreatesNewFile(t *testing.T) {
	tmpDir := t.TempDir()

	added, err := ensureGitignore(tmpDir)

	require.NoError(t, err)
	assert.True(t, added, "should return true when gitignore created")

	// Verify content
	content, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(content), ".lcindex/")
	assert.Contains(t, string(content), "# LCIndex")
}

// TestEnsureGitignore_AppendsToExisting tests appending to an existing .gitignore
func TestEnsureGitignore_AppendsToExisting(t *testing.T) {
	tmpDir := t.TempDir()
	gitignorePath := filepath.Join(tmpDir, ".gitignore")

	// Create existing .gitignore
	existingContent := "*.log\nnode_modules/\n"
	err := os.WriteFile(gitignorePath, []byte(existingContent), 0644)
	require.NoError(t, err)

	added, err := ensureGitignore(tmpDir)

	require.NoError(t, err)
	assert.True(t, added)

	content, _ := os.ReadFile(gitignorePath)
	assert.Contains(t, string(content), "*.log", "should preserve existing content")
	assert.Contains(t, string(content), ".lcindex/", "should add .lcindex")
}

// TestEnsureGitignore_IdempotentExactMatch tests that exact matches are detected
func TestEnsureGitignore_IdempotentExactMatch(t *testing.T) {
	tmpDir := t.TempDir()
	gitignorePath := filepath.Join(tmpDir, ".gitignore")

	// Create .gitignore with .lcindex/ already present
	existingContent := "*.log\n.lcindex/\n"
	err := os.WriteFile(gitignorePath, []byte(existingContent), 0644)
	require.NoError(t, err)

	added, err := ensureGitignore(tmpDir)

	require.NoError(t, err)
	assert.False(t, added, "should return false when already present")

	content, _ := os.ReadFile(gitignorePath)
	assert.Equal(t, existingContent, string(content), "should not modify file")
}

// TestEnsureGitignore_IdempotentVariations tests that pattern variations are detected
func TestEnsureGitignore_IdempotentVariations(t *testing.T) {
	variations := []string{".lcindex", ".lcindex/", "/.lcindex", "/.lcindex/"}

	for _, pattern := range variations {
		t.Run(pattern, func(t *testing.T) {
			tmpDir := t.TempDir()
			gitignorePath := filepath.Join(tmpDir, ".gitignore")

			existingContent := "*.log\n" + pattern + "\n"
			err := os.WriteFile(gitignorePath, []byte(existingContent), 0644)
			require.NoError(t, err)

			added, err := ensureGitignore(tmpDir)

			require.NoError(t, err)
			assert.False(t, added, "should detect variation: %s", pattern)
		})
	}
}

// TestEnsureGitignore_PreservesCRLF tests that CRLF line endings are preserved
func TestEnsureGitignore_PreservesCRLF(t *testing.T) {
	tmpDir := t.TempDir()
	gitignorePath := filepath.Join(tmpDir, ".gitignore")

	// Create .gitignore with CRLF endings
	existingContent := "*.log\r\nnode_modules/\r\n"
	err := os.WriteFile(gitignorePath, []byte(existingContent), 0644)
	require.NoError(t, err)

	added, err := ensureGitignore(tmpDir)

	require.NoError(t, err)
	assert.True(t, added)

	content, _ := os.ReadFile(gitignorePath)
	// Should use CRLF for new entry
	assert.Contains(t, string(content), ".lcindex/\r\n")
}

// TestEnsureGitignore_HandlesNoTrailingNewline tests files without trailing newline
func TestEnsureGitignore_HandlesNoTrailingNewline(t *testing.T) {
	tmpDir := t.TempDir()
	gitignorePath := filepath.Join(tmpDir, ".gitignore")

	// Create .gitignore WITHOUT trailing newline
	existingContent := "*.log"
	err := os.WriteFile(gitignorePath, []byte(existingContent), 0644)
	require.NoError(t, err)

	added, err := ensureGitignore(tmpDir)

	require.NoError(t, err)
	assert.True(t, added)

	content, _ := os.ReadFile(gitignorePath)
	// Should add newline before entry
	assert.Contains(t, string(content), "*.log\n")
	assert.Contains(t, string(content), ".lcindex/")
}

// TestEnsureGitignore_SkipsCommentedOut tests that commented entries don't count
func TestEnsureGitignore_SkipsCommentedOut(t *testing.T) {
	tmpDir := t.TempDir()
	gitignorePath := filepath.Join(tmpDir, ".gitignore")

	// Create .gitignore with commented .lcindex
	existingContent := "*.log\n# .lcindex/\n"
	err := os.WriteFile(gitignorePath, []byte(existingContent), 0644)
	require.NoError(t, err)

	added, err := ensureGitignore(tmpDir)

	require.NoError(t, err)
	assert.True(t, added, "should add entry when existing is commented")
}

// TestInitCmd_AddsGitignore tests the integration with init command
func TestInitCmd_AddsGitignore(t *testing.T) {
	tmpDir := t.TempDir()

	var stdout bytes.Buffer
	cmd := newInitCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline", "--config-only"})

	oldWd, _ := os.Getwd()
	err := os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	_ = cmd.Execute()

	// Check .gitignore was created with .lcindex
	content, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(content), ".lcindex/")

	// Check output shows it was added
	output := stdout.String()
	assert.Contains(t, output, ".gitignore")
}

// TestInitCmd_GitignoreIdempotent tests that multiple runs don't duplicate entry
func TestInitCmd_GitignoreIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	oldWd, _ := os.Getwd()
	err := os.Chdir(tmpDir)
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldWd) }()

	// Run init twice
	for i := 0; i < 2; i++ {
		cmd := newInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--offline", "--config-only", "--force"})
		_ = cmd.Execute()
	}

	// Check .gitignore has exactly one .lcindex entry
	content, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
	require.NoError(t, err)

	count := bytes.Count(content, []byte(".lcindex/"))
	assert.Equal(t, 1, count, "Should have exactly one .lcindex/ entry after multiple runs")
}
