// Package classify maps AST node types onto the symbol kinds the indexer
// tracks. It is deliberately separate from the annotation engine so the
// classification table for a language can be tested and extended without
// touching extraction or doc-comment logic.
package classify

import (
	"github.com/lcindex/lcindex/internal/grammar"
	"github.com/lcindex/lcindex/internal/parser"
)

// Kind is the kind of declaration a node represents.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindType      Kind = "type"
	KindConstant  Kind = "constant"
	KindVariable  Kind = "variable"
)

// table is a single classification rule: a Kind and the node types in a
// Grammar that indicate it. Order matters — rules are evaluated in the
// order they're listed below so that, e.g., a method type is checked
// before a bare function type for languages whose grammars might overlap.
type table struct {
	kind  Kind
	types func(*grammar.Grammar) []string
}

var rules = []table{
	{KindMethod, func(g *grammar.Grammar) []string { return g.MethodTypes }},
	{KindFunction, func(g *grammar.Grammar) []string { return g.FunctionTypes }},
	{KindClass, func(g *grammar.Grammar) []string { return g.ClassTypes }},
	{KindInterface, func(g *grammar.Grammar) []string { return g.InterfaceTypes }},
	{KindType, func(g *grammar.Grammar) []string { return g.TypeDefTypes }},
	{KindConstant, func(g *grammar.Grammar) []string { return g.ConstantTypes }},
	{KindVariable, func(g *grammar.Grammar) []string { return g.VariableTypes }},
}

// NodeType classifies a raw tree-sitter node type against a grammar's
// tables, returning the Kind it matches and true, or ("", false) when the
// node type isn't a declaration this grammar recognizes.
func NodeType(nodeType string, g *grammar.Grammar) (Kind, bool) {
	for _, rule := range rules {
		for _, t := range rule.types(g) {
			if t == nodeType {
				return rule.kind, true
			}
		}
	}
	return "", false
}

// Significance is the coarse tier the node classifier assigns to every
// node in a parsed file: significant declarations the annotation engine
// extracts symbols from, supporting nodes that feed other analyses without
// being indexed on their own (imports), and everything else (ignored).
type Significance string

const (
	Significant Significance = "significant"
	Supporting  Significance = "supporting"
	Ignored     Significance = "ignored"
)

// Tier is the significance and role assigned to a single AST node.
type Tier struct {
	Node         *parser.Node
	Depth        int
	Kind         Kind   // set only when Significance is Significant or the node is a demoted nested declaration
	Significance Significance
	Role         string
}

// AssignTiers walks the tree rooted at root and assigns every node a Tier.
// Declarations resolve via NodeType's table first; import statements are
// tagged Supporting/"import" (feeding the dependency analyzer); comments
// are Ignored/"comment" unless they directly precede a declaration, in
// which case they're Ignored/"doc_comment" (kept as doc-comment source,
// not indexed as a node in their own right). Everything else is
// Ignored/"structural".
//
// When a declaration is nested inside another declaration of the same
// Kind (e.g. a function literal assigned inside another function body,
// misclassified by a grammar's tables as a second top-level function), the
// shallower one wins the Significant tier and the nested one is demoted to
// Supporting/"nested" — the node-type-then-depth tie-break.
func AssignTiers(root *parser.Node, g *grammar.Grammar) []Tier {
	if root == nil || g == nil {
		return nil
	}

	var out []Tier
	var open []*parser.Node // stack of currently-open Significant ancestors

	var visit func(n *parser.Node, depth int, precedesDeclaration bool)
	visit = func(n *parser.Node, depth int, precedesDeclaration bool) {
		tier := tierFor(n, depth, g, precedesDeclaration, open)
		out = append(out, tier)

		if tier.Significance == Significant {
			open = append(open, n)
			defer func() { open = open[:len(open)-1] }()
		}

		for i, child := range n.Children {
			precedes := false
			if isCommentType(child.Type, g) && i+1 < len(n.Children) {
				if _, ok := NodeType(n.Children[i+1].Type, g); ok {
					precedes = true
				}
			}
			visit(child, depth+1, precedes)
		}
	}
	visit(root, 0, false)
	return out
}

func tierFor(n *parser.Node, depth int, g *grammar.Grammar, precedesDeclaration bool, open []*parser.Node) Tier {
	switch {
	case isCommentType(n.Type, g):
		role := "comment"
		if precedesDeclaration {
			role = "doc_comment"
		}
		return Tier{Node: n, Depth: depth, Significance: Ignored, Role: role}

	case isImportType(n.Type, g):
		return Tier{Node: n, Depth: depth, Significance: Supporting, Role: "import"}
	}

	kind, found := NodeType(n.Type, g)
	if !found {
		return Tier{Node: n, Depth: depth, Significance: Ignored, Role: "structural"}
	}

	for _, ancestor := range open {
		if ancestorKind, ok := NodeType(ancestor.Type, g); ok && ancestorKind == kind {
			return Tier{Node: n, Depth: depth, Kind: kind, Significance: Supporting, Role: "nested"}
		}
	}

	return Tier{Node: n, Depth: depth, Kind: kind, Significance: Significant, Role: "declaration"}
}

func isCommentType(nodeType string, g *grammar.Grammar) bool {
	for _, t := range g.CommentTypes {
		if t == nodeType {
			return true
		}
	}
	return false
}

func isImportType(nodeType string, g *grammar.Grammar) bool {
	for _, t := range g.ImportTypes {
		if t == nodeType {
			return true
		}
	}
	return false
}
