package resolver

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandle(b Backend) *Handle {
	return NewHandle("fake", b, zerolog.Nop())
}

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}

func TestHandle_DeliversEveryMatchOnce(t *testing.T) {
	b := &fakeBackend{names: []string{"open", "openat", "close", "open64"}}
	h := newTestHandle(b)

	got, err := h.Collect("open*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"open", "openat", "open64"}, names(got))
	assert.Equal(t, 4, b.scanned)
}

func TestHandle_StopOnFirstMatch(t *testing.T) {
	b := &fakeBackend{names: []string{"close", "open", "openat", "open64"}}
	h := newTestHandle(b)

	calls := 0
	err := h.EnumerateMatches("open*", func(m Match) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	// The backend stopped right after the first match; nothing past "open" was scanned.
	assert.Equal(t, 2, b.scanned)
}

func TestHandle_CaseInsensitiveMarkerStripped(t *testing.T) {
	b := &fakeBackend{names: []string{"open", "close"}}
	h := newTestHandle(b)

	got, err := h.Collect("OPEN/i")
	require.NoError(t, err)
	assert.Equal(t, Query{Body: "OPEN", CaseInsensitive: true}, b.lastQuery)
	assert.Equal(t, []string{"open"}, names(got))

	got, err = h.Collect("OPEN")
	require.NoError(t, err)
	assert.Equal(t, Query{Body: "OPEN"}, b.lastQuery)
	assert.Empty(t, got)
}

func TestHandle_RepeatableSequence(t *testing.T) {
	b := &fakeBackend{names: []string{"b", "a", "c", "ab"}}
	h := newTestHandle(b)

	first, err := h.Collect("*")
	require.NoError(t, err)
	second, err := h.Collect("*")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, b.populated)
}

func TestHandle_MalformedQuery(t *testing.T) {
	h := newTestHandle(&fakeBackend{names: []string{"open"}})

	err := h.EnumerateMatches("open!!x", func(Match) bool { return true })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedQuery))
	assert.False(t, errors.Is(err, ErrBackendFailure))

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindMalformedQuery, rerr.Kind)
	assert.Equal(t, "fake", rerr.Type)
	assert.Equal(t, "open!!x", rerr.Query)
}

func TestHandle_FailureAfterPartialDelivery(t *testing.T) {
	b := &fakeBackend{
		names:     []string{"m1", "m2", "m3", "m4", "m5"},
		failAfter: 2,
	}
	h := newTestHandle(b)

	var seen []Match
	err := h.EnumerateMatches("m*", func(m Match) bool {
		seen = append(seen, m)
		return true
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendFailure))
	assert.Equal(t, []string{"m1", "m2"}, names(seen))
	assert.Equal(t, uint64(0x1000), seen[0].Address)
}

func TestHandle_StateMachine(t *testing.T) {
	b := &fakeBackend{names: []string{"open"}}
	h := newTestHandle(b)
	assert.Equal(t, StateCreated, h.State())
	assert.NotEmpty(t, h.ID())
	assert.Equal(t, "fake", h.Type())

	_, err := h.Collect("*")
	require.NoError(t, err)
	assert.Equal(t, StatePopulated, h.State())

	require.NoError(t, h.Close())
	assert.Equal(t, StateDisposed, h.State())
	assert.True(t, b.closed)
	require.NoError(t, h.Close())

	err = h.EnumerateMatches("*", nil)
	assert.True(t, errors.Is(err, ErrDisposed))
}

func TestHandle_NilVisitor(t *testing.T) {
	b := &fakeBackend{names: []string{"a", "b"}}
	h := newTestHandle(b)
	require.NoError(t, h.EnumerateMatches("*", nil))
	assert.Equal(t, 2, b.scanned)
}

func TestHandle_Matches(t *testing.T) {
	b := &fakeBackend{names: []string{"open", "openat", "open64"}}
	h := newTestHandle(b)

	var got []string
	for m, err := range h.Matches("open*") {
		require.NoError(t, err)
		got = append(got, m.Name)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"open", "openat"}, got)
	assert.Equal(t, 2, b.scanned)

	var lastErr error
	for _, err := range h.Matches("") {
		lastErr = err
	}
	assert.True(t, errors.Is(lastErr, ErrMalformedQuery))
}

func TestHandle_StopHoldsAgainstBackendThatKeepsGoing(t *testing.T) {
	b := &stubbornBackend{names: []string{"open", "openat", "open64"}}
	h := newTestHandle(b)

	calls := 0
	err := h.EnumerateMatches("*", func(Match) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, b.calls)

	var got []string
	assert.NotPanics(t, func() {
		for m, err := range h.Matches("*") {
			require.NoError(t, err)
			got = append(got, m.Name)
			break
		}
	})
	assert.Equal(t, []string{"open"}, got)
}

func TestHandle_Stale(t *testing.T) {
	b := &staleBackend{fakeBackend: fakeBackend{names: []string{"a"}}}
	h := newTestHandle(b)

	stale, err := h.Stale()
	require.NoError(t, err)
	assert.False(t, stale, "created handles have nothing to be stale about")

	_, err = h.Collect("*")
	require.NoError(t, err)
	b.stale = true
	stale, err = h.Stale()
	require.NoError(t, err)
	assert.True(t, stale)

	plain := newTestHandle(&fakeBackend{})
	_, _ = plain.Collect("*")
	stale, err = plain.Stale()
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestMatch_Size(t *testing.T) {
	m := Match{Name: "open", Address: 0x10}
	assert.False(t, m.HasSize())
	assert.Equal(t, uint64(7), m.SizeOr(7))
	assert.Equal(t, "open @ 0x10", m.String())

	m.Size = SizeOf(32)
	m.Module = "/lib/libc.so.6"
	assert.True(t, m.HasSize())
	assert.Equal(t, uint64(32), m.SizeOr(7))
	assert.Equal(t, "/lib/libc.so.6!open @ 0x10", m.String())
	assert.Nil(t, SizeOf(0))
}
