package metastore

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenRegex matches alphanumeric sequences (including underscores for initial split).
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// DefaultMinTokenLength is the minimum token length TokenizeCode keeps.
const DefaultMinTokenLength = 2

// TokenizeCode splits text with code-aware rules.
// It handles camelCase, PascalCase, snake_case, and filters short tokens.
// All tokens are lowercased.
func TokenizeCode(text string) []string {
	return TokenizeCodeMinLen(text, DefaultMinTokenLength)
}

// TokenizeCodeMinLen is TokenizeCode with a caller-supplied minimum token
// length, so BM25Config.MinTokenLength can actually vary index granularity
// per corpus instead of every index hardcoding 2.
func TokenizeCodeMinLen(text string, minLen int) []string {
	var tokens []string

	// Split on whitespace and punctuation first
	words := tokenRegex.FindAllString(text, -1)

	for _, word := range words {
		// Split camelCase and snake_case
		subTokens := SplitCodeToken(word)
		for _, t := range subTokens {
			lower := strings.ToLower(t)
			if len(lower) >= minLen {
				tokens = append(tokens, lower)
			}
		}
	}

	return tokens
}

// SplitCodeToken splits camelCase and snake_case identifiers.
func SplitCodeToken(token string) []string {
	var result []string

	// Handle snake_case first
	if strings.Contains(token, "_") {
		parts := strings.Split(token, "_")
		for _, part := range parts {
			if part != "" {
				// Recursively handle camelCase in each part
				result = append(result, SplitCamelCase(part)...)
			}
		}
		return result
	}

	return SplitCamelCase(token)
}

// SplitCamelCase splits camelCase and PascalCase identifiers.
// Examples:
//   - "getUserById" -> ["get", "User", "By", "Id"]
//   - "HTTPHandler" -> ["HTTP", "Handler"]
//   - "parseHTTPRequest" -> ["parse", "HTTP", "Request"]
func SplitCamelCase(s string) []string {
	// Return empty slice, not nil, for consistent API behavior (DEBT-012)
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// Split if previous is lowercase OR next is lowercase (handles acronyms)
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// languageStopWords holds per-language keyword sets, keyed by the canonical
// snake_case language identifiers the grammar registry uses (c_sharp, not
// csharp). DefaultCodeStopWords mixes keywords from several languages into
// one list (var/let/const from JS next to func/def from Go/Python); a
// multi-language corpus gets noisier BM25 matches from that than from
// filtering each document against only the keywords of its own language.
var languageStopWords = map[string][]string{
	"go": {
		"var", "const", "func", "return", "if", "else", "for", "range",
		"switch", "case", "defer", "go", "chan", "select", "package",
		"import", "type", "struct", "interface", "map", "err", "ctx",
	},
	"python": {
		"def", "class", "return", "if", "elif", "else", "for", "while",
		"import", "from", "with", "as", "self", "yield", "lambda", "try",
		"except", "pass", "none", "true", "false",
	},
	"typescript": {
		"var", "let", "const", "function", "return", "if", "else", "for",
		"while", "interface", "type", "class", "extends", "implements",
		"import", "export", "async", "await", "this",
	},
	"javascript": {
		"var", "let", "const", "function", "return", "if", "else", "for",
		"while", "class", "import", "export", "async", "await", "this",
	},
	"rust": {
		"let", "mut", "fn", "return", "if", "else", "match", "for", "while",
		"loop", "impl", "trait", "struct", "enum", "use", "mod", "pub",
		"self", "crate",
	},
	"java": {
		"class", "interface", "return", "if", "else", "for", "while",
		"public", "private", "protected", "static", "final", "void", "new",
		"this", "import", "package",
	},
	"c_sharp": {
		"class", "interface", "return", "if", "else", "for", "while",
		"public", "private", "protected", "static", "void", "new", "this",
		"using", "namespace", "var",
	},
	"cpp": {
		"return", "if", "else", "for", "while", "class", "struct", "public",
		"private", "protected", "static", "const", "void", "new", "delete",
		"namespace", "include", "template",
	},
	"c": {
		"return", "if", "else", "for", "while", "struct", "static", "const",
		"void", "typedef", "include", "define",
	},
	"ruby": {
		"def", "class", "module", "return", "if", "elsif", "else", "unless",
		"end", "do", "require", "attr_accessor", "self", "nil", "true",
		"false",
	},
}

// StopWordsForLanguage returns the keyword stoplist for a canonical language
// identifier (e.g. "go", "c_sharp"), falling back to DefaultCodeStopWords
// for languages without a dedicated list or an empty/unknown identifier.
func StopWordsForLanguage(language string) []string {
	if words, ok := languageStopWords[language]; ok {
		return words
	}
	return DefaultCodeStopWords
}

// FilterStopWords removes stop words from a token list.
func FilterStopWords(tokens []string, stopWords map[string]struct{}) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		lower := strings.ToLower(token)
		if _, isStop := stopWords[lower]; !isStop {
			result = append(result, token)
		}
	}
	return result
}

// BuildStopWordMap converts a slice of stop words to a map for efficient lookup.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}
