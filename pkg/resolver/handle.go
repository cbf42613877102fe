package resolver

import (
	"io"
	"iter"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Handle.
type State int

const (
	// StateCreated means only the minimal setup has been done.
	StateCreated State = iota
	// StatePopulated means the backend cache has been built by a first query.
	StatePopulated
	// StateDisposed means the handle was closed.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePopulated:
		return "populated"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Handle is the object callers hold. It forwards queries to the backend it
// wraps. A Handle is not safe for concurrent use; separate handles share no
// mutable state.
type Handle struct {
	typ     string
	id      string
	backend Backend
	state   State
	logger  zerolog.Logger
}

// NewHandle wraps backend. Most callers get handles from a Factory.
func NewHandle(typ string, backend Backend, logger zerolog.Logger) *Handle {
	id := uuid.New().String()
	return &Handle{
		typ:     typ,
		id:      id,
		backend: backend,
		state:   StateCreated,
		logger: logger.With().
			Str("component", "resolver").
			Str("resolver_type", typ).
			Str("resolver_id", id).
			Logger(),
	}
}

// Type returns the resolver type tag.
func (h *Handle) Type() string { return h.typ }

// ID returns a unique identifier for log correlation.
func (h *Handle) ID() string { return h.id }

// State returns the handle's lifecycle state.
func (h *Handle) State() State { return h.state }

// EnumerateMatches performs query, optionally suffixed with "/i", and calls
// visit with each match found until visit returns false or the candidates are
// exhausted. A nil visit accepts everything.
//
// Matches delivered before a failure remain valid; the failure is returned as
// an *Error.
func (h *Handle) EnumerateMatches(query string, visit Visitor) error {
	if h.state == StateDisposed {
		return &Error{Kind: KindDisposed, Type: h.typ, Query: query, Err: ErrDisposed}
	}
	if visit == nil {
		visit = func(Match) bool { return true }
	}

	q := ParseQuery(query)
	h.state = StatePopulated

	var delivered int
	stopped := false
	err := h.backend.Enumerate(q, func(m Match) bool {
		// Backends that keep going after a stop never reach the caller again.
		if stopped {
			return false
		}
		delivered++
		if !visit(m) {
			stopped = true
			return false
		}
		return true
	})

	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("query", query).
			Int("delivered", delivered).
			Msg("Enumeration failed")
		return &Error{Kind: kindOf(err), Type: h.typ, Query: query, Err: err}
	}

	h.logger.Debug().
		Str("query", query).
		Bool("case_insensitive", q.CaseInsensitive).
		Int("delivered", delivered).
		Bool("stopped", stopped).
		Msg("Enumeration completed")

	return nil
}

// Matches returns the results of query as an iterator. Breaking out of the
// loop stops the backend. A failure is yielded once, as the last element,
// with a zero Match.
func (h *Handle) Matches(query string) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		stopped := false
		err := h.EnumerateMatches(query, func(m Match) bool {
			if !yield(m, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(Match{}, err)
		}
	}
}

// Collect returns every match for query. On failure the matches delivered so
// far are returned together with the error.
func (h *Handle) Collect(query string) ([]Match, error) {
	var matches []Match
	err := h.EnumerateMatches(query, func(m Match) bool {
		matches = append(matches, m)
		return true
	})
	return matches, err
}

// Stale reports whether the backend's cache no longer reflects the target.
// Backends that cannot tell report false.
func (h *Handle) Stale() (bool, error) {
	if h.state == StateDisposed {
		return true, nil
	}
	if h.state == StateCreated {
		return false, nil
	}
	sr, ok := h.backend.(StalenessReporter)
	if !ok {
		return false, nil
	}
	return sr.Stale()
}

// Close releases the backend. Further queries fail with ErrDisposed.
// Close is idempotent.
func (h *Handle) Close() error {
	if h.state == StateDisposed {
		return nil
	}
	h.state = StateDisposed
	if c, ok := h.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
