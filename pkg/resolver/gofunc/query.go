package gofunc

import (
	"strings"

	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

type kind string

const (
	kindFunctions kind = "functions"
	kindMethods   kind = "methods"
)

type query struct {
	kind     kind
	pkg      resolver.Glob
	receiver resolver.Glob // methods only
	name     resolver.Glob
}

func parseQuery(q resolver.Query) (query, error) {
	k, rest, ok := strings.Cut(q.Body, ":")
	if !ok {
		return query{}, resolver.Malformed("expected functions:<package>!<name> or methods:<package>!<type>.<method>, got %q", q.Body)
	}
	if q.CaseInsensitive {
		k = strings.ToLower(k)
	}

	parsed := query{kind: kind(k)}
	if parsed.kind != kindFunctions && parsed.kind != kindMethods {
		return query{}, resolver.Malformed("unknown kind %q, expected functions or methods", k)
	}

	pkgPattern, namePattern, ok := strings.Cut(rest, "!")
	if !ok {
		return query{}, resolver.Malformed("missing '!' between package and name in %q", rest)
	}
	if pkgPattern == "" || namePattern == "" {
		return query{}, resolver.Malformed("empty package or name pattern in %q", rest)
	}
	parsed.pkg = q.Glob(pkgPattern)

	if parsed.kind == kindFunctions {
		parsed.name = q.Glob(namePattern)
		return parsed, nil
	}

	dot := strings.LastIndex(namePattern, ".")
	if dot <= 0 || dot == len(namePattern)-1 {
		return query{}, resolver.Malformed("method pattern %q must be <type>.<method>", namePattern)
	}
	parsed.receiver = q.Glob(namePattern[:dot])
	parsed.name = q.Glob(namePattern[dot+1:])
	return parsed, nil
}

func (q query) matches(fn function) bool {
	if !q.pkg.Match(fn.pkg) || !q.name.Match(fn.base) {
		return false
	}
	if q.kind == kindFunctions {
		return fn.receiver == ""
	}
	return fn.receiver != "" && !fn.closure && q.receiver.Match(fn.receiver)
}
