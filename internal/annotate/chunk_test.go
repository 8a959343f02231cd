package annotate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeChunker_Chunk_GoFunctions(t *testing.T) {
	chunker := NewCodeChunker()
	defer chunker.Close()

	content := `package sample

import "fmt"

// Greet prints a greeting.
func Greet(name string) {
	fmt.Println("hello", name)
}

func Add(a, b int) int {
	return a + b
}
`

	file := &FileInput{Path: "sample.go", Content: []byte(content), Language: "go"}

	chunks, err := chunker.Chunk(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Greet", chunks[0].Symbols[0].Name)
	assert.Equal(t, ContentTypeCode, chunks[0].ContentType)
	assert.Contains(t, chunks[0].Context, `import "fmt"`)
	assert.Contains(t, chunks[0].Content, "// File: sample.go")
	assert.Equal(t, "Greet prints a greeting.", chunks[0].Symbols[0].DocComment)

	assert.Equal(t, "Add", chunks[1].Symbols[0].Name)
}

func TestCodeChunker_Chunk_UnsupportedLanguageFallsBackToLines(t *testing.T) {
	chunker := NewCodeChunker()
	defer chunker.Close()

	content := "line one\nline two\nline three\n"
	file := &FileInput{Path: "notes.rs", Content: []byte(content), Language: "rust"}

	chunks, err := chunker.Chunk(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, ContentTypeText, chunks[0].ContentType)
}

func TestCodeChunker_Chunk_EmptyFileReturnsNoChunks(t *testing.T) {
	chunker := NewCodeChunker()
	defer chunker.Close()

	chunks, err := chunker.Chunk(context.Background(), &FileInput{Path: "empty.go", Language: "go"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestExtractor_Extract_ClassifiesGoDeclarations(t *testing.T) {
	chunker := NewCodeChunker()
	defer chunker.Close()

	content := `package sample

type Server struct{}

const MaxRetries = 3

func (s *Server) Start() error { return nil }
`
	file := &FileInput{Path: "server.go", Content: []byte(content), Language: "go"}
	chunks, err := chunker.Chunk(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	kinds := map[string]SymbolKind{}
	for _, c := range chunks {
		kinds[c.Symbols[0].Name] = c.Symbols[0].Kind
	}
	assert.Equal(t, SymbolKind("type"), kinds["Server"])
	assert.Equal(t, SymbolKind("constant"), kinds["MaxRetries"])
	assert.Equal(t, SymbolKind("method"), kinds["Start"])
}
