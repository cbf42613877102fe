package resolver

import (
	"errors"
	"strings"
)

// fakeBackend serves a fixed symbol table and records how much work it did.
type fakeBackend struct {
	names     []string
	failAfter int // fail once this many candidates were scanned, 0 = never

	populated int
	scanned   int
	lastQuery Query
	closed    bool
}

func (b *fakeBackend) Enumerate(q Query, visit Visitor) error {
	b.lastQuery = q
	if b.populated == 0 {
		b.populated++
	}

	if q.Body == "" || strings.Contains(q.Body, "!!") {
		return Malformed("bad body %q", q.Body)
	}

	g := q.Glob(q.Body)
	for i, name := range b.names {
		if b.failAfter > 0 && b.scanned == b.failAfter {
			return errors.New("symbol table unreadable")
		}
		b.scanned++
		if !g.Match(name) {
			continue
		}
		if !visit(Match{Name: name, Address: 0x1000 + uint64(i)*0x10, Size: SizeOf(0x10)}) {
			return nil
		}
	}
	return nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

type staleBackend struct {
	fakeBackend
	stale bool
}

func (b *staleBackend) Stale() (bool, error) { return b.stale, nil }

// stubbornBackend ignores the visitor's answer and reports every name.
type stubbornBackend struct {
	names []string
	calls int
}

func (b *stubbornBackend) Enumerate(_ Query, visit Visitor) error {
	for _, name := range b.names {
		b.calls++
		visit(Match{Name: name})
	}
	return nil
}
