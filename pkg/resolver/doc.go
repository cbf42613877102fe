// Package resolver finds functions and methods in a running process by name.
//
// A caller asks a Factory for a Handle of a given type ("module", "go", ...) and
// then issues glob queries against it. Each handle wraps one Backend, which owns
// the introspection domain (loaded modules' symbol tables, a language runtime's
// function tables) and a lazily populated cache.
//
// # Usage
//
//	f := builtin.NewFactory(resolver.Options{Logger: logger})
//	h, ok := f.Make("module")
//	if !ok {
//		return errors.New("module resolver unavailable")
//	}
//	defer h.Close()
//
//	err := h.EnumerateMatches("exports:libc.so*!open*", func(m resolver.Match) bool {
//		fmt.Printf("%s @ 0x%x\n", m.Name, m.Address)
//		return true
//	})
//
// # Queries
//
// The query body is backend specific. Any query may be suffixed with "/i" to
// request case-insensitive matching; the suffix is stripped here before the body
// reaches a backend. Where globbing is supported, "*" matches any run of
// characters and "?" matches exactly one. There is no escape character: a
// backslash matches a backslash whether or not the pattern has wildcards.
//
// # Caching
//
// A handle loads the minimum on creation and populates its cache on first use.
// It never reloads mid-batch, so queries against one handle see a consistent
// view. Create a new handle for a new batch to avoid stale data.
package resolver
