package resolver

import "sort"

// Factory maps type tags to backend constructors.
type Factory struct {
	opts  Options
	ctors map[string]Constructor
}

// NewFactory creates an empty factory. opts are passed to every constructor.
func NewFactory(opts Options) *Factory {
	return &Factory{
		opts:  opts,
		ctors: make(map[string]Constructor),
	}
}

// Register associates typ with ctor, replacing any previous registration.
func (f *Factory) Register(typ string, ctor Constructor) {
	f.ctors[typ] = ctor
}

// Types returns the registered type tags, sorted. Registration does not imply
// availability; see Available.
func (f *Factory) Types() []string {
	types := make([]string, 0, len(f.ctors))
	for t := range f.ctors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Make creates a handle of the given type. It reports false when the type is
// unknown or the backend is not usable in the target process; that is not an
// error.
func (f *Factory) Make(typ string) (*Handle, bool) {
	ctor, ok := f.ctors[typ]
	if !ok {
		f.opts.Logger.Debug().Str("resolver_type", typ).Msg("Unknown resolver type")
		return nil, false
	}

	backend, err := ctor(f.opts)
	if err != nil {
		f.opts.Logger.Debug().
			Err(err).
			Str("resolver_type", typ).
			Int("pid", f.opts.PID).
			Msg("Resolver unavailable")
		return nil, false
	}
	if backend == nil {
		return nil, false
	}

	return NewHandle(typ, backend, f.opts.Logger), true
}

// Available reports whether Make would currently succeed for typ. It builds
// and releases a handle.
func (f *Factory) Available(typ string) bool {
	h, ok := f.Make(typ)
	if !ok {
		return false
	}
	_ = h.Close()
	return true
}
