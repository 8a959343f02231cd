// Package parser adapts tree-sitter into the AST shape the rest of the
// indexer consumes: plain structs instead of cgo-backed tree-sitter
// handles, so downstream packages never hold a reference into the
// tree-sitter arena past the parse call.
package parser

import (
	"context"
	"fmt"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/lcindex/lcindex/internal/grammar"
	"github.com/lcindex/lcindex/internal/ixerrors"
)

// Point is a position in source text.
type Point struct {
	Row    uint32 // 0-indexed line
	Column uint32
}

// Node is a plain-struct AST node, detached from tree-sitter's cgo arena.
type Node struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
	Children   []*Node
	HasError   bool
}

// GetContent returns the source slice covered by the node.
func (n *Node) GetContent(source []byte) string {
	if n.StartByte >= n.EndByte || int(n.EndByte) > len(source) {
		return ""
	}
	return string(source[n.StartByte:n.EndByte])
}

// FindChildByType returns the first direct child with the given type.
func (n *Node) FindChildByType(nodeType string) *Node {
	for _, child := range n.Children {
		if child.Type == nodeType {
			return child
		}
	}
	return nil
}

// FindChildrenByType returns every direct child with the given type.
func (n *Node) FindChildrenByType(nodeType string) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Type == nodeType {
			result = append(result, child)
		}
	}
	return result
}

// FindAllByType recursively collects every node with the given type.
func (n *Node) FindAllByType(nodeType string) []*Node {
	var result []*Node
	if n.Type == nodeType {
		result = append(result, n)
	}
	for _, child := range n.Children {
		result = append(result, child.FindAllByType(nodeType)...)
	}
	return result
}

// Walk traverses the tree depth-first, calling fn for every node. Returning
// false from fn stops descent into that node's children (and the rest of
// the walk, mirroring the teacher's single-bool short-circuit).
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Tree is a parsed file: the root node plus the source it was parsed from,
// so callers can slice content without re-reading the file.
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
	ParsedAt time.Time
}

// Adapter wraps a tree-sitter parser bound to a grammar cache. It is not
// safe for concurrent use by multiple goroutines; callers needing
// parallel parsing should construct one Adapter per worker (grammars
// themselves are shared and read-only).
type Adapter struct {
	parser   *sitter.Parser
	grammars *grammar.Cache
}

// New creates an adapter using the default grammar cache.
func New() *Adapter {
	return NewWithGrammars(grammar.Default())
}

// NewWithGrammars creates an adapter bound to a specific grammar cache,
// letting tests register fixture grammars without mutating global state.
func NewWithGrammars(grammars *grammar.Cache) *Adapter {
	return &Adapter{
		parser:   sitter.NewParser(),
		grammars: grammars,
	}
}

// Parse parses source text for the named language into a Tree.
func (a *Adapter) Parse(ctx context.Context, source []byte, language string) (*Tree, error) {
	tsLang, ok := a.grammars.TreeSitterLanguage(language)
	if !ok {
		return nil, ixerrors.New(ixerrors.ErrCodeUnsupportedLanguage,
			fmt.Sprintf("parser: unsupported language %q", language), nil)
	}

	a.parser.SetLanguage(tsLang)

	tsTree, err := a.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parser: parse failed: %w", err)
	}
	if tsTree == nil {
		return nil, fmt.Errorf("parser: parse returned nil tree")
	}

	return &Tree{
		Root:     convert(tsTree.RootNode()),
		Source:   source,
		Language: language,
		ParsedAt: time.Now(),
	}, nil
}

// Close releases the underlying tree-sitter parser.
// ParseError is one syntax error tree-sitter flagged within a parse,
// surfaced to the caller instead of failing the parse outright.
type ParseError struct {
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
	Message    string
}

// ParseResult is the parseCode/parseFile contract: every node in the tree
// (flattened, pre-order), any syntax errors tree-sitter found, the
// language parsed, and how long the parse took.
type ParseResult struct {
	Nodes       []*Node
	Errors      []ParseError
	Language    string
	ParseTimeMs float64
}

// ParseResult parses source like Parse, but flattens the tree and reads
// each node's HasError bit to surface syntax errors as an errors[] list
// (byte range + message) instead of failing the parse. A file with a
// syntax error still gets indexed; only the damaged region is skipped
// downstream.
func (a *Adapter) ParseResult(ctx context.Context, source []byte, language string) (*ParseResult, error) {
	start := time.Now()

	tree, err := a.Parse(ctx, source, language)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, 64)
	var errs []ParseError
	tree.Root.Walk(func(n *Node) bool {
		nodes = append(nodes, n)
		if n.HasError && n.Type == "ERROR" {
			errs = append(errs, ParseError{
				StartByte:  n.StartByte,
				EndByte:    n.EndByte,
				StartPoint: n.StartPoint,
				EndPoint:   n.EndPoint,
				Message:    fmt.Sprintf("syntax error near %s", n.Type),
			})
		}
		return true
	})

	return &ParseResult{
		Nodes:       nodes,
		Errors:      errs,
		Language:    language,
		ParseTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

func (a *Adapter) Close() {
	if a.parser != nil {
		a.parser.Close()
	}
}

// Grammars exposes the bound grammar cache, e.g. so a caller can check
// SupportedExtensions without holding its own reference.
func (a *Adapter) Grammars() *grammar.Cache {
	return a.grammars
}

func convert(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	node := &Node{
		Type:      tsNode.Type(),
		StartByte: tsNode.StartByte(),
		EndByte:   tsNode.EndByte(),
		StartPoint: Point{
			Row:    tsNode.StartPoint().Row,
			Column: tsNode.StartPoint().Column,
		},
		EndPoint: Point{
			Row:    tsNode.EndPoint().Row,
			Column: tsNode.EndPoint().Column,
		},
		HasError: tsNode.HasError(),
		Children: make([]*Node, 0, int(tsNode.ChildCount())),
	}

	for i := uint32(0); i < tsNode.ChildCount(); i++ {
		if child := tsNode.Child(int(i)); child != nil {
			node.Children = append(node.Children, convert(child))
		}
	}

	return node
}
