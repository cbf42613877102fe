package resolver

import (
	"strings"

	"github.com/tidwall/match"
)

// Glob is a compiled wildcard pattern. "*" matches any run of characters,
// including "/" and ".", and "?" matches exactly one character. Every other
// character, backslash included, matches itself.
type Glob struct {
	pattern string
	expr    string
	fold    bool
	literal bool
}

// NewGlob compiles pattern. With fold set, comparisons ignore case.
func NewGlob(pattern string, fold bool) Glob {
	if fold {
		pattern = strings.ToLower(pattern)
	}
	literal := !match.IsPattern(pattern)
	expr := pattern
	if !literal {
		// match treats a backslash as an escape.
		expr = strings.ReplaceAll(pattern, `\`, `\\`)
	}
	return Glob{
		pattern: pattern,
		expr:    expr,
		fold:    fold,
		literal: literal,
	}
}

// Match reports whether name matches the pattern.
func (g Glob) Match(name string) bool {
	if g.fold {
		name = strings.ToLower(name)
	}
	if g.literal {
		return name == g.pattern
	}
	return match.Match(name, g.expr)
}

// IsLiteral reports whether the pattern contains no wildcards.
func (g Glob) IsLiteral() bool {
	return g.literal
}

// CaseInsensitive reports whether the glob ignores case.
func (g Glob) CaseInsensitive() bool {
	return g.fold
}

// Pattern returns the pattern as compiled (lower-cased when folding).
func (g Glob) Pattern() string {
	return g.pattern
}
