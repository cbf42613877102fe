// Package filter narrows resolver matches with CEL expressions such as
//
//	has_size && size > 64u && !name.startsWith("__")
//
// The variables are name (string), address (uint), size (uint, 0 when
// unknown), has_size (bool) and module (string).
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"

	ierrors "github.com/coral-mesh/apiresolver/internal/errors"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

var env = newEnv()

func newEnv() *cel.Env {
	e, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("address", cel.UintType),
		cel.Variable("size", cel.UintType),
		cel.Variable("has_size", cel.BoolType),
		cel.Variable("module", cel.StringType),
		cel.CrossTypeNumericComparisons(true),
	)
	ierrors.Must(err, "create filter environment")
	return e
}

// Filter is a compiled match predicate. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. The expression must evaluate to a bool.
func Compile(expr string) (*Filter, error) {
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must be a bool expression, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter program: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter against m.
func (f *Filter) Match(m resolver.Match) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{
		"name":     m.Name,
		"address":  m.Address,
		"size":     m.SizeOr(0),
		"has_size": m.HasSize(),
		"module":   m.Module,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate filter on %s: %w", m.Name, err)
	}
	keep, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return keep, nil
}

// Visitor returns a visitor passing only matching records on to next. An
// evaluation error stops the enumeration; the returned func reports it.
func (f *Filter) Visitor(next resolver.Visitor) (resolver.Visitor, func() error) {
	var evalErr error
	visit := func(m resolver.Match) bool {
		keep, err := f.Match(m)
		if err != nil {
			evalErr = err
			return false
		}
		if !keep {
			return true
		}
		return next(m)
	}
	return visit, func() error { return evalErr }
}
