// Package grammar manages the tree-sitter grammars available to the parser
// adapter and the node-type tables that describe how each language's AST
// maps onto the symbol kinds the rest of the indexer understands.
package grammar

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Grammar describes a single language: its tree-sitter binding and the
// node-type tables a classifier uses to recognize declarations.
type Grammar struct {
	Name       string
	Extensions []string

	FunctionTypes  []string
	MethodTypes    []string
	ClassTypes     []string
	InterfaceTypes []string
	TypeDefTypes   []string
	ConstantTypes  []string
	VariableTypes  []string

	// ImportTypes lists the node types that introduce a dependency (import
	// statements). The node classifier (internal/classify) tags these
	// "supporting" rather than "significant" — they feed the dependency
	// analyzer but aren't declarations in their own right.
	ImportTypes []string

	// CommentTypes lists the node types tree-sitter emits for comments.
	// The node classifier tags these "ignored" unless they directly
	// precede a declaration, in which case they're kept as doc-comment
	// source for the summary generator.
	CommentTypes []string

	// NameField is the tree-sitter field name (or node type, for languages
	// whose bindings don't expose named fields) used to locate a
	// declaration's identifier.
	NameField string

	// Tier ranks how much annotation fidelity this grammar receives.
	// Tier1 languages get full symbol extraction and doc-comment capture;
	// Tier3 languages fall back to line-based chunking even though a
	// tree-sitter binding exists, until their tables are filled in.
	Tier int
}

const (
	Tier1 = 1
	Tier2 = 2
	Tier3 = 3
)

// Cache is the set of grammars available to the parser adapter, keyed by
// language name and by file extension. It is built once at startup; the
// tree-sitter *Language values it hands out are safe for concurrent read
// access across parser instances because the parser's own Parser.Parse
// call serializes access to the underlying C grammar tables.
type Cache struct {
	mu          sync.RWMutex
	grammars    map[string]*Grammar
	extToLang   map[string]string
	tsLanguages map[string]*sitter.Language
}

// NewCache builds a grammar cache pre-loaded with the languages this
// indexer ships support for.
func NewCache() *Cache {
	c := &Cache{
		grammars:    make(map[string]*Grammar),
		extToLang:   make(map[string]string),
		tsLanguages: make(map[string]*sitter.Language),
	}

	c.registerGo()
	c.registerTypeScript()
	c.registerJavaScript()
	c.registerPython()

	return c
}

// ByExtension returns the grammar registered for a file extension.
func (c *Cache) ByExtension(ext string) (*Grammar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	name, ok := c.extToLang[ext]
	if !ok {
		return nil, false
	}
	g, ok := c.grammars[name]
	return g, ok
}

// ByName returns the grammar registered under a language name.
func (c *Cache) ByName(name string) (*Grammar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.grammars[name]
	return g, ok
}

// TreeSitterLanguage returns the tree-sitter binding for a language name.
func (c *Cache) TreeSitterLanguage(name string) (*sitter.Language, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lang, ok := c.tsLanguages[name]
	return lang, ok
}

// SupportedExtensions returns every file extension this cache can parse.
func (c *Cache) SupportedExtensions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	exts := make([]string, 0, len(c.extToLang))
	for ext := range c.extToLang {
		exts = append(exts, ext)
	}
	return exts
}

func (c *Cache) register(g *Grammar, tsLang *sitter.Language) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.grammars[g.Name] = g
	c.tsLanguages[g.Name] = tsLang
	for _, ext := range g.Extensions {
		c.extToLang[ext] = g.Name
	}
}

func (c *Cache) registerGo() {
	g := &Grammar{
		Name:          "go",
		Extensions:    []string{".go"},
		FunctionTypes: []string{"function_declaration"},
		MethodTypes:   []string{"method_declaration"},
		TypeDefTypes:  []string{"type_declaration"},
		ConstantTypes: []string{"const_declaration"},
		VariableTypes: []string{"var_declaration"},
		ImportTypes:   []string{"import_declaration"},
		CommentTypes:  []string{"comment"},
		NameField:     "name",
		Tier:          Tier1,
	}
	c.register(g, golang.GetLanguage())
}

func (c *Cache) registerTypeScript() {
	ts := &Grammar{
		Name:           "typescript",
		Extensions:     []string{".ts"},
		FunctionTypes:  []string{"function_declaration"},
		MethodTypes:    []string{"method_definition"},
		ClassTypes:     []string{"class_declaration"},
		InterfaceTypes: []string{"interface_declaration"},
		TypeDefTypes:   []string{"type_alias_declaration"},
		ConstantTypes:  []string{"lexical_declaration"},
		VariableTypes:  []string{"variable_declaration"},
		ImportTypes:    []string{"import_statement"},
		CommentTypes:   []string{"comment"},
		NameField:      "name",
		Tier:           Tier1,
	}
	c.register(ts, typescript.GetLanguage())

	tsxGrammar := &Grammar{
		Name:           "tsx",
		Extensions:     []string{".tsx"},
		FunctionTypes:  ts.FunctionTypes,
		MethodTypes:    ts.MethodTypes,
		ClassTypes:     ts.ClassTypes,
		InterfaceTypes: ts.InterfaceTypes,
		TypeDefTypes:   ts.TypeDefTypes,
		ConstantTypes:  ts.ConstantTypes,
		VariableTypes:  ts.VariableTypes,
		ImportTypes:    ts.ImportTypes,
		CommentTypes:   ts.CommentTypes,
		NameField:      ts.NameField,
		Tier:           Tier1,
	}
	c.register(tsxGrammar, tsx.GetLanguage())
}

func (c *Cache) registerJavaScript() {
	js := &Grammar{
		Name:          "javascript",
		Extensions:    []string{".js", ".mjs"},
		FunctionTypes: []string{"function_declaration", "function"},
		MethodTypes:   []string{"method_definition"},
		ClassTypes:    []string{"class_declaration"},
		ConstantTypes: []string{"lexical_declaration"},
		VariableTypes: []string{"variable_declaration"},
		ImportTypes:   []string{"import_statement"},
		CommentTypes:  []string{"comment"},
		NameField:     "name",
		Tier:          Tier1,
	}
	c.register(js, javascript.GetLanguage())

	jsx := &Grammar{
		Name:          "jsx",
		Extensions:    []string{".jsx"},
		FunctionTypes: js.FunctionTypes,
		MethodTypes:   js.MethodTypes,
		ClassTypes:    js.ClassTypes,
		ConstantTypes: js.ConstantTypes,
		VariableTypes: js.VariableTypes,
		ImportTypes:   js.ImportTypes,
		CommentTypes:  js.CommentTypes,
		NameField:     js.NameField,
		Tier:          Tier1,
	}
	c.register(jsx, javascript.GetLanguage())
}

func (c *Cache) registerPython() {
	g := &Grammar{
		Name:          "python",
		Extensions:    []string{".py"},
		FunctionTypes: []string{"function_definition"},
		ClassTypes:    []string{"class_definition"},
		VariableTypes: []string{"assignment"},
		ImportTypes:   []string{"import_statement", "import_from_statement"},
		CommentTypes:  []string{"comment"},
		NameField:     "name",
		Tier:          Tier1,
	}
	c.register(g, python.GetLanguage())
}

var defaultCache = NewCache()

// Default returns the process-wide grammar cache. Most callers should
// prefer constructing their own via NewCache so tests can register
// fixture grammars without touching global state; Default exists for the
// CLI wiring path where a single shared cache is appropriate.
func Default() *Cache {
	return defaultCache
}
