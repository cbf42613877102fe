package resolver

import "github.com/rs/zerolog"

// Visitor receives each match. Returning false stops the enumeration
// immediately; no further backend work happens for that call.
type Visitor func(Match) bool

// Backend implements enumeration over one introspection domain.
//
// The first Enumerate call populates whatever index the backend needs and later
// calls reuse it. Repeating a query against an unchanged backend yields the same
// sequence. Backends return Malformed errors for bodies they cannot parse and
// must check the visitor's result before producing the next candidate.
type Backend interface {
	Enumerate(q Query, visit Visitor) error
}

// StalenessReporter is implemented by backends that can tell whether their
// cache no longer reflects the process.
type StalenessReporter interface {
	Stale() (bool, error)
}

// Options configure backend construction.
type Options struct {
	// PID of the target process. Zero means the current process.
	PID int

	// Logger for debug/error messages.
	Logger zerolog.Logger
}

// Constructor builds a backend. It must do only the minimum setup needed to
// answer a first query; an error means the backend is unavailable.
type Constructor func(opts Options) (Backend, error)
