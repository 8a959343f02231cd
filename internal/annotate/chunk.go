package annotate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/lcindex/lcindex/internal/classify"
	"github.com/lcindex/lcindex/internal/grammar"
	"github.com/lcindex/lcindex/internal/parser"
)

// Chunk size defaults, based on 2025 RAG recall research.
const (
	DefaultMaxChunkTokens = 512 // Optimal for 85-90% recall
	DefaultOverlapTokens  = 64  // ~12.5% overlap
	TokensPerChar         = 4   // rough approximation: 4 chars per token
)

// ContentType names the origin of a chunk's content.
type ContentType string

const (
	ContentTypeCode     ContentType = "code"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeText     ContentType = "text"
)

// Chunk is a retrievable unit of annotated content.
type Chunk struct {
	ID          string
	FilePath    string
	Content     string // full content, with surrounding context prepended
	RawContent  string // just the symbol body, no context
	Context     string // imports/package decl (code) or heading path (markdown)
	ContentType ContentType
	Language    string
	StartLine   int
	EndLine     int
	Symbols     []*Symbol
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FileInput is a single file handed to a Chunker.
type FileInput struct {
	Path     string
	Content  []byte
	Language string
}

// Chunker splits a file into annotated chunks.
type Chunker interface {
	Chunk(ctx context.Context, file *FileInput) ([]*Chunk, error)
	SupportedExtensions() []string
}

// Options configures a CodeChunker.
type Options struct {
	MaxChunkTokens int
	OverlapTokens  int
}

// CodeChunker implements AST-aware chunking: each top-level symbol becomes
// its own chunk (split further if it's larger than MaxChunkTokens), with
// file-level context (package/import lines) prepended to every chunk so
// the embedder sees enough to resolve short names.
type CodeChunker struct {
	adapter   *parser.Adapter
	extractor *Extractor
	grammars  *grammar.Cache
	options   Options
}

// NewCodeChunker creates a chunker with default options and grammars.
func NewCodeChunker() *CodeChunker {
	return NewCodeChunkerWithOptions(Options{})
}

// NewCodeChunkerWithOptions creates a chunker with custom chunk sizing.
func NewCodeChunkerWithOptions(opts Options) *CodeChunker {
	if opts.MaxChunkTokens == 0 {
		opts.MaxChunkTokens = DefaultMaxChunkTokens
	}
	if opts.OverlapTokens == 0 {
		opts.OverlapTokens = DefaultOverlapTokens
	}

	g := grammar.Default()
	return &CodeChunker{
		adapter:   parser.NewWithGrammars(g),
		extractor: NewExtractorWithGrammars(g),
		grammars:  g,
		options:   opts,
	}
}

// Close releases the chunker's tree-sitter parser.
func (c *CodeChunker) Close() {
	if c.adapter != nil {
		c.adapter.Close()
	}
}

// SupportedExtensions returns the file extensions this chunker parses.
func (c *CodeChunker) SupportedExtensions() []string {
	return c.grammars.SupportedExtensions()
}

// Chunk splits a file into semantic chunks, falling back to line-based
// chunking when the language has no grammar or fails to parse.
func (c *CodeChunker) Chunk(ctx context.Context, file *FileInput) ([]*Chunk, error) {
	if len(file.Content) == 0 {
		return nil, nil
	}

	if _, ok := c.grammars.ByName(file.Language); !ok {
		return c.chunkByLines(file)
	}

	tree, err := c.adapter.Parse(ctx, file.Content, file.Language)
	if err != nil {
		return c.chunkByLines(file)
	}

	fileContext := c.extractFileContext(tree, file.Language)
	fileContext = enrichContextWithFilePath(file.Path, file.Language, fileContext)

	symbolNodes := c.findSymbolNodes(tree)
	if len(symbolNodes) == 0 {
		return nil, nil
	}

	chunks := make([]*Chunk, 0, len(symbolNodes))
	now := time.Now()
	for _, info := range symbolNodes {
		chunks = append(chunks, c.createChunksFromNode(info, tree, file, fileContext, now)...)
	}

	return chunks, nil
}

type symbolNodeInfo struct {
	node   *parser.Node
	symbol *Symbol
}

func (c *CodeChunker) findSymbolNodes(tree *parser.Tree) []*symbolNodeInfo {
	g, ok := c.grammars.ByName(tree.Language)
	if !ok {
		return nil
	}

	var nodes []*symbolNodeInfo
	tree.Root.Walk(func(n *parser.Node) bool {
		if n.Type == "lexical_declaration" || n.Type == "variable_declaration" {
			if sym := c.extractor.extractSpecial(n, tree.Source, tree.Language); sym != nil {
				nodes = append(nodes, &symbolNodeInfo{node: n, symbol: sym})
				return true
			}
		}

		if kind, isSymbol := classify.NodeType(n.Type, g); isSymbol {
			if sym := c.extractSymbol(n, tree, kind); sym != nil {
				nodes = append(nodes, &symbolNodeInfo{node: n, symbol: sym})
			}
		}
		return true
	})

	return nodes
}

func (c *CodeChunker) extractSymbol(n *parser.Node, tree *parser.Tree, kind SymbolKind) *Symbol {
	name := c.extractor.extractName(n, tree.Source, tree.Language)
	if name == "" {
		return nil
	}
	return &Symbol{
		Name:       name,
		Kind:       kind,
		StartLine:  int(n.StartPoint.Row) + 1,
		EndLine:    int(n.EndPoint.Row) + 1,
		DocComment: c.extractMultilineDocComment(n, tree.Source, tree.Language),
	}
}

// extractMultilineDocComment collects a contiguous run of comment lines
// immediately preceding a node, unlike Extractor's single-line variant.
func (c *CodeChunker) extractMultilineDocComment(n *parser.Node, source []byte, language string) string {
	lineStart := int(n.StartByte)
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	if lineStart <= 1 {
		return ""
	}

	var commentLines []string
	pos := lineStart - 1

	for pos > 0 {
		prevLineEnd := pos
		pos--
		for pos > 0 && source[pos] != '\n' {
			pos--
		}
		prevLineStart := pos
		if pos > 0 {
			prevLineStart++
		}

		prevLine := strings.TrimSpace(string(source[prevLineStart:prevLineEnd]))

		switch language {
		case "go", "typescript", "tsx", "javascript", "jsx":
			if strings.HasPrefix(prevLine, "//") {
				commentLines = append([]string{strings.TrimPrefix(prevLine, "//")}, commentLines...)
				continue
			}
		case "python":
			if strings.HasPrefix(prevLine, "#") {
				commentLines = append([]string{strings.TrimPrefix(prevLine, "#")}, commentLines...)
				continue
			}
		}

		if prevLine != "" {
			break
		}
	}

	if len(commentLines) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(commentLines, "\n"))
}

func (c *CodeChunker) createChunksFromNode(info *symbolNodeInfo, tree *parser.Tree, file *FileInput, fileContext string, now time.Time) []*Chunk {
	node := info.node
	rawContent := string(tree.Source[node.StartByte:node.EndByte])
	if info.symbol.DocComment != "" {
		rawContent = c.withDocComment(node, tree.Source, info.symbol.DocComment)
	}

	if estimateTokens(rawContent) <= c.options.MaxChunkTokens {
		return []*Chunk{c.createChunk(file, rawContent, fileContext, info.symbol, now)}
	}

	return c.splitByLines(string(tree.Source[node.StartByte:node.EndByte]), info.symbol, file, fileContext, now, int(node.StartPoint.Row)+1)
}

func (c *CodeChunker) withDocComment(n *parser.Node, source []byte, docComment string) string {
	lineStart := int(n.StartByte)
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}

	docLines := strings.Count(docComment, "\n") + 1
	for i := 0; i < docLines && lineStart > 0; i++ {
		lineStart--
		for lineStart > 0 && source[lineStart-1] != '\n' {
			lineStart--
		}
	}

	return string(source[lineStart:n.EndByte])
}

func (c *CodeChunker) splitByLines(content string, symbol *Symbol, file *FileInput, fileContext string, now time.Time, startLine int) []*Chunk {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 {
		return []*Chunk{}
	}

	maxLinesPerChunk := (c.options.MaxChunkTokens * TokensPerChar) / 80
	if maxLinesPerChunk < 20 {
		maxLinesPerChunk = 20
	}
	overlapLines := (c.options.OverlapTokens * TokensPerChar) / 80
	if overlapLines < 2 {
		overlapLines = 2
	}

	var chunks []*Chunk
	for i := 0; i < len(lines); {
		end := i + maxLinesPerChunk
		if end > len(lines) {
			end = len(lines)
		}

		chunkContent := strings.Join(lines[i:end], "\n")
		chunkStartLine := startLine + i
		chunkEndLine := startLine + end - 1

		subSymbol := &Symbol{
			Name:      fmt.Sprintf("%s_part%d", symbol.Name, len(chunks)+1),
			Kind:      symbol.Kind,
			StartLine: chunkStartLine,
			EndLine:   chunkEndLine,
		}

		symbols := []*Symbol{subSymbol}
		if len(chunks) == 0 {
			symbols = append(symbols, &Symbol{
				Name:      symbol.Name,
				Kind:      symbol.Kind,
				StartLine: symbol.StartLine,
				EndLine:   symbol.EndLine,
			})
		}

		chunks = append(chunks, &Chunk{
			ID:          generateChunkID(file.Path, chunkContent),
			FilePath:    file.Path,
			Content:     combineContextAndContent(fileContext, chunkContent),
			RawContent:  chunkContent,
			Context:     fileContext,
			ContentType: ContentTypeCode,
			Language:    file.Language,
			StartLine:   chunkStartLine,
			EndLine:     chunkEndLine,
			Symbols:     symbols,
			Metadata:    make(map[string]string),
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		i = end - overlapLines
		if i <= 0 || end >= len(lines) {
			break
		}
	}

	return chunks
}

func (c *CodeChunker) createChunk(file *FileInput, rawContent, fileContext string, symbol *Symbol, now time.Time) *Chunk {
	return &Chunk{
		ID:          generateChunkID(file.Path, rawContent),
		FilePath:    file.Path,
		Content:     combineContextAndContent(fileContext, rawContent),
		RawContent:  rawContent,
		Context:     fileContext,
		ContentType: ContentTypeCode,
		Language:    file.Language,
		StartLine:   symbol.StartLine,
		EndLine:     symbol.EndLine,
		Symbols:     []*Symbol{symbol},
		Metadata:    make(map[string]string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *CodeChunker) extractFileContext(tree *parser.Tree, language string) string {
	var parts []string

	switch language {
	case "go":
		for _, node := range tree.Root.Children {
			if node.Type == "package_clause" {
				parts = append(parts, node.GetContent(tree.Source))
				break
			}
		}
		for _, node := range tree.Root.Children {
			if node.Type == "import_declaration" {
				parts = append(parts, node.GetContent(tree.Source))
			}
		}
	case "typescript", "tsx", "javascript", "jsx":
		for _, node := range tree.Root.Children {
			if node.Type == "import_statement" {
				parts = append(parts, node.GetContent(tree.Source))
			}
		}
	case "python":
		for _, node := range tree.Root.Children {
			if node.Type == "import_statement" || node.Type == "import_from_statement" {
				parts = append(parts, node.GetContent(tree.Source))
			}
		}
	}

	return strings.Join(parts, "\n\n")
}

func (c *CodeChunker) chunkByLines(file *FileInput) ([]*Chunk, error) {
	content := string(file.Content)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	lines := strings.Split(content, "\n")
	linesPerChunk := 128
	overlapLines := 16

	var chunks []*Chunk
	now := time.Now()

	for i := 0; i < len(lines); {
		end := i + linesPerChunk
		if end > len(lines) {
			end = len(lines)
		}

		chunkContent := strings.Join(lines[i:end], "\n")
		chunks = append(chunks, &Chunk{
			ID:          generateChunkID(file.Path, chunkContent),
			FilePath:    file.Path,
			Content:     chunkContent,
			RawContent:  chunkContent,
			ContentType: ContentTypeText,
			Language:    file.Language,
			StartLine:   i + 1,
			EndLine:     end,
			Metadata:    make(map[string]string),
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		i = end - overlapLines
		if i <= 0 || end >= len(lines) {
			break
		}
	}

	return chunks, nil
}

func generateChunkID(filePath, content string) string {
	contentHash := sha256.Sum256([]byte(content))
	contentHashStr := hex.EncodeToString(contentHash[:])[:16]

	input := fmt.Sprintf("%s:%s", filePath, contentHashStr)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

func estimateTokens(content string) int {
	return len(content) / TokensPerChar
}

func combineContextAndContent(context, rawContent string) string {
	if context == "" {
		return rawContent
	}
	return context + "\n\n" + rawContent
}

func enrichContextWithFilePath(filePath, language, existingContext string) string {
	if filePath == "" {
		return existingContext
	}

	var marker string
	switch language {
	case "python":
		marker = fmt.Sprintf("# File: %s", filePath)
	default:
		marker = fmt.Sprintf("// File: %s", filePath)
	}

	if existingContext == "" {
		return marker
	}
	return marker + "\n" + existingContext
}
