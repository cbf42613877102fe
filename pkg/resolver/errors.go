package resolver

import (
	"errors"
	"fmt"
)

// ErrorKind classifies enumeration failures.
type ErrorKind int

const (
	// KindBackendFailure means the introspection source could not be read.
	KindBackendFailure ErrorKind = iota
	// KindMalformedQuery means the query body failed the backend's grammar.
	KindMalformedQuery
	// KindDisposed means the handle was used after Close.
	KindDisposed
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindMalformedQuery:
		return "malformed query"
	case KindDisposed:
		return "disposed"
	default:
		return "backend failure"
	}
}

// Sentinels for errors.Is against *Error values.
var (
	ErrBackendFailure = errors.New("backend failure")
	ErrMalformedQuery = errors.New("malformed query")
	ErrDisposed       = errors.New("resolver disposed")
)

// Error is returned by Handle.EnumerateMatches.
type Error struct {
	Kind  ErrorKind
	Type  string // resolver type tag
	Query string // raw query
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s resolver: %s: %q", e.Type, e.Kind, e.Query)
	}
	return fmt.Sprintf("%s resolver: %s: %q: %v", e.Type, e.Kind, e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBackendFailure:
		return e.Kind == KindBackendFailure
	case ErrMalformedQuery:
		return e.Kind == KindMalformedQuery
	case ErrDisposed:
		return e.Kind == KindDisposed
	}
	return false
}

// Malformed builds the error a backend returns for a query body it cannot parse.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedQuery, fmt.Sprintf(format, args...))
}

// kindOf classifies an error returned by a backend.
func kindOf(err error) ErrorKind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	if errors.Is(err, ErrMalformedQuery) {
		return KindMalformedQuery
	}
	return KindBackendFailure
}
