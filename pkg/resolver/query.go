package resolver

import "strings"

// CaseInsensitiveSuffix marks a query as case-insensitive.
const CaseInsensitiveSuffix = "/i"

// Query is a parsed caller request.
type Query struct {
	// Body is the backend-specific part of the query.
	Body string

	// CaseInsensitive requests case-insensitive name comparison.
	CaseInsensitive bool
}

// ParseQuery splits the optional case-insensitivity suffix off raw.
// The body is not validated; that is up to the backend.
func ParseQuery(raw string) Query {
	if body, ok := strings.CutSuffix(raw, CaseInsensitiveSuffix); ok {
		return Query{Body: body, CaseInsensitive: true}
	}
	return Query{Body: raw}
}

// String renders the query back into its raw form.
func (q Query) String() string {
	if q.CaseInsensitive {
		return q.Body + CaseInsensitiveSuffix
	}
	return q.Body
}

// Glob compiles pattern honoring the query's case sensitivity.
func (q Query) Glob(pattern string) Glob {
	return NewGlob(pattern, q.CaseInsensitive)
}
