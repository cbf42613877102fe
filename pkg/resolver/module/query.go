package module

import (
	"strings"

	"github.com/coral-mesh/apiresolver/internal/objfile"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

type tableKind string

const (
	kindExports  tableKind = "exports"
	kindImports  tableKind = "imports"
	kindSections tableKind = "sections"
)

type query struct {
	kind   tableKind
	module resolver.Glob
	byPath bool
	symbol resolver.Glob
}

func parseQuery(q resolver.Query) (query, error) {
	kind, rest, ok := strings.Cut(q.Body, ":")
	if !ok {
		return query{}, resolver.Malformed("expected <kind>:<module>!<symbol>, got %q", q.Body)
	}
	if q.CaseInsensitive {
		kind = strings.ToLower(kind)
	}

	parsed := query{kind: tableKind(kind)}
	switch parsed.kind {
	case kindExports, kindImports, kindSections:
	default:
		return query{}, resolver.Malformed("unknown kind %q, expected exports, imports or sections", kind)
	}

	modPattern, symPattern, ok := strings.Cut(rest, "!")
	if !ok {
		return query{}, resolver.Malformed("missing '!' between module and symbol in %q", rest)
	}
	if modPattern == "" || symPattern == "" {
		return query{}, resolver.Malformed("empty module or symbol pattern in %q", rest)
	}

	parsed.module = q.Glob(modPattern)
	parsed.byPath = strings.Contains(modPattern, "/")
	parsed.symbol = q.Glob(symPattern)
	return parsed, nil
}

func (q query) selects(m *objfile.Module) bool {
	if q.byPath {
		return q.module.Match(m.Path)
	}
	return q.module.Match(m.Name)
}
