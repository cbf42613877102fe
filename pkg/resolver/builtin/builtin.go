// Package builtin wires the backends shipped with this module into a
// resolver.Factory.
package builtin

import (
	"github.com/coral-mesh/apiresolver/pkg/resolver"
	"github.com/coral-mesh/apiresolver/pkg/resolver/gofunc"
	"github.com/coral-mesh/apiresolver/pkg/resolver/kernel"
	"github.com/coral-mesh/apiresolver/pkg/resolver/module"
)

// DefaultType is the resolver type used when none is requested.
const DefaultType = module.Type

// Register adds every built-in backend to f.
func Register(f *resolver.Factory) {
	f.Register(module.Type, module.New)
	f.Register(gofunc.Type, gofunc.New)
	f.Register(kernel.Type, kernel.New)
}

// NewFactory returns a factory with every built-in backend registered.
func NewFactory(opts resolver.Options) *resolver.Factory {
	f := resolver.NewFactory(opts)
	Register(f)
	return f
}

// Make creates a single handle of type typ.
func Make(typ string, opts resolver.Options) (*resolver.Handle, bool) {
	return NewFactory(opts).Make(typ)
}
