// Package annotate implements the annotation engine: it walks a parsed
// tree, classifies declaration nodes, and produces the Symbol and Chunk
// records the rest of the indexer stores and searches over.
package annotate

import (
	"strings"

	"github.com/lcindex/lcindex/internal/classify"
	"github.com/lcindex/lcindex/internal/grammar"
	"github.com/lcindex/lcindex/internal/parser"
)

// SymbolKind mirrors classify.Kind at the annotation layer so callers of
// this package never need to import classify directly.
type SymbolKind = classify.Kind

// Symbol is a named declaration extracted from a parsed file.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	StartLine  int
	EndLine    int
	Signature  string
	DocComment string
}

// Extractor walks a parser.Tree and produces the Symbols it contains.
type Extractor struct {
	grammars *grammar.Cache
}

// NewExtractor creates an extractor bound to the default grammar cache.
func NewExtractor() *Extractor {
	return &Extractor{grammars: grammar.Default()}
}

// NewExtractorWithGrammars creates an extractor bound to a specific cache.
func NewExtractorWithGrammars(g *grammar.Cache) *Extractor {
	return &Extractor{grammars: g}
}

// Extract returns every Symbol found in the tree, in AST visitation order.
func (e *Extractor) Extract(tree *parser.Tree) []*Symbol {
	if tree == nil || tree.Root == nil {
		return []*Symbol{}
	}

	g, ok := e.grammars.ByName(tree.Language)
	if !ok {
		return []*Symbol{}
	}

	var symbols []*Symbol
	tree.Root.Walk(func(n *parser.Node) bool {
		if s := e.extractFromNode(n, tree.Source, g, tree.Language); s != nil {
			symbols = append(symbols, s)
		}
		return true
	})

	return symbols
}

func (e *Extractor) extractFromNode(n *parser.Node, source []byte, g *grammar.Grammar, language string) *Symbol {
	kind, found := classify.NodeType(n.Type, g)
	if !found {
		return e.extractSpecial(n, source, language)
	}

	name := e.extractName(n, source, language)
	if name == "" {
		return nil
	}

	return &Symbol{
		Name:       name,
		Kind:       kind,
		StartLine:  int(n.StartPoint.Row) + 1,
		EndLine:    int(n.EndPoint.Row) + 1,
		Signature:  e.extractSignature(n, source, kind, language),
		DocComment: e.extractDocComment(n, source, language),
	}
}

func (e *Extractor) extractName(n *parser.Node, source []byte, language string) string {
	switch language {
	case "go":
		return e.extractGoName(n, source)
	case "typescript", "tsx":
		return e.extractVariableOrIdentifierName(n, source)
	case "javascript", "jsx":
		return e.extractVariableOrIdentifierName(n, source)
	case "python":
		for _, child := range n.Children {
			if child.Type == "identifier" {
				return child.GetContent(source)
			}
		}
	default:
		for _, child := range n.Children {
			if child.Type == "identifier" {
				return child.GetContent(source)
			}
		}
	}
	return ""
}

func (e *Extractor) extractGoName(n *parser.Node, source []byte) string {
	switch n.Type {
	case "function_declaration":
		for _, child := range n.Children {
			if child.Type == "identifier" {
				return child.GetContent(source)
			}
		}
	case "method_declaration":
		for _, child := range n.Children {
			if child.Type == "field_identifier" {
				return child.GetContent(source)
			}
		}
	case "type_declaration":
		for _, child := range n.Children {
			if child.Type == "type_spec" {
				for _, gc := range child.Children {
					if gc.Type == "type_identifier" {
						return gc.GetContent(source)
					}
				}
			}
		}
	case "const_declaration":
		for _, child := range n.Children {
			if child.Type == "const_spec" {
				for _, gc := range child.Children {
					if gc.Type == "identifier" {
						return gc.GetContent(source)
					}
				}
			}
		}
	case "var_declaration":
		for _, child := range n.Children {
			if child.Type == "var_spec" {
				for _, gc := range child.Children {
					if gc.Type == "identifier" {
						return gc.GetContent(source)
					}
				}
			}
		}
	}
	return ""
}

func (e *Extractor) extractVariableOrIdentifierName(n *parser.Node, source []byte) string {
	if n.Type == "lexical_declaration" || n.Type == "variable_declaration" {
		for _, child := range n.Children {
			if child.Type == "variable_declarator" {
				for _, gc := range child.Children {
					if gc.Type == "identifier" {
						return gc.GetContent(source)
					}
				}
			}
		}
	}
	for _, child := range n.Children {
		if child.Type == "identifier" || child.Type == "type_identifier" {
			return child.GetContent(source)
		}
	}
	return ""
}

// extractSpecial handles declarations a grammar's tables don't cover
// directly, e.g. `const handler = () => {}` in JS/TS where the function
// lives nested inside a variable declarator rather than at the top level.
func (e *Extractor) extractSpecial(n *parser.Node, source []byte, language string) *Symbol {
	switch language {
	case "typescript", "tsx", "javascript", "jsx":
		if n.Type == "lexical_declaration" || n.Type == "variable_declaration" {
			return e.extractJSFunctionVariable(n, source)
		}
	}
	return nil
}

func (e *Extractor) extractJSFunctionVariable(n *parser.Node, source []byte) *Symbol {
	for _, child := range n.Children {
		if child.Type != "variable_declarator" {
			continue
		}
		var name string
		var hasFunction bool
		for _, gc := range child.Children {
			if gc.Type == "identifier" {
				name = gc.GetContent(source)
			}
			if gc.Type == "arrow_function" || gc.Type == "function" || gc.Type == "function_expression" {
				hasFunction = true
			}
		}
		if name != "" && hasFunction {
			content := n.GetContent(source)
			return &Symbol{
				Name:      name,
				Kind:      classify.KindFunction,
				StartLine: int(n.StartPoint.Row) + 1,
				EndLine:   int(n.EndPoint.Row) + 1,
				Signature: extractFunctionSignature(content, "javascript"),
			}
		}
	}
	return nil
}

func (e *Extractor) extractDocComment(n *parser.Node, source []byte, language string) string {
	if n.StartPoint.Row == 0 {
		return ""
	}
	if language == "python" {
		// Python docstrings live inside the body, not before it; capturing
		// them would require walking the block's first statement, which
		// the line-scan approach below can't do.
		return ""
	}

	lineStart := int(n.StartByte)
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	if lineStart <= 1 {
		return ""
	}

	prevLineEnd := lineStart - 1
	prevLineStart := prevLineEnd - 1
	for prevLineStart > 0 && source[prevLineStart-1] != '\n' {
		prevLineStart--
	}

	prevLine := strings.TrimSpace(string(source[prevLineStart:prevLineEnd]))
	if strings.HasPrefix(prevLine, "//") {
		return strings.TrimPrefix(prevLine, "//")
	}
	return ""
}

func (e *Extractor) extractSignature(n *parser.Node, source []byte, kind SymbolKind, language string) string {
	content := n.GetContent(source)
	if content == "" {
		return ""
	}

	switch kind {
	case classify.KindFunction, classify.KindMethod:
		return extractFunctionSignature(content, language)
	case classify.KindClass, classify.KindInterface, classify.KindType:
		return extractTypeSignature(content, language)
	}
	return ""
}

func extractFunctionSignature(content, language string) string {
	firstLine := firstLineOf(content)

	switch language {
	case "go", "typescript", "tsx", "javascript", "jsx":
		if idx := strings.Index(firstLine, "{"); idx != -1 {
			return strings.TrimSpace(firstLine[:idx])
		}
		return firstLine
	case "python":
		return firstLine
	}
	return firstLine
}

func extractTypeSignature(content, language string) string {
	firstLine := firstLineOf(content)

	switch language {
	case "go", "typescript", "tsx", "javascript", "jsx":
		if idx := strings.Index(firstLine, "{"); idx != -1 {
			return strings.TrimSpace(firstLine[:idx])
		}
		return firstLine
	case "python":
		return firstLine
	}
	return firstLine
}

func firstLineOf(content string) string {
	lines := strings.SplitN(content, "\n", 2)
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}
