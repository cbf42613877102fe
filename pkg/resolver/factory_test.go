package resolver

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Make(t *testing.T) {
	f := NewFactory(Options{Logger: zerolog.Nop()})
	f.Register("fake", func(opts Options) (Backend, error) {
		return &fakeBackend{names: []string{"open", "openat"}}, nil
	})
	f.Register("broken", func(opts Options) (Backend, error) {
		return nil, errors.New("runtime not loaded")
	})

	h, ok := f.Make("fake")
	require.True(t, ok)
	require.NotNil(t, h)
	assert.Equal(t, "fake", h.Type())

	got, err := h.Collect("open*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"open", "openat"}, names(got))

	for _, typ := range []string{"nonexistent-type", "", "MODULE", "broken"} {
		h, ok := f.Make(typ)
		assert.False(t, ok, typ)
		assert.Nil(t, h, typ)
	}

	assert.Equal(t, []string{"broken", "fake"}, f.Types())
	assert.True(t, f.Available("fake"))
	assert.False(t, f.Available("broken"))
}

func TestFactory_HandlesAreIndependent(t *testing.T) {
	var built []*fakeBackend
	f := NewFactory(Options{})
	f.Register("fake", func(opts Options) (Backend, error) {
		b := &fakeBackend{names: []string{"a", "b"}}
		built = append(built, b)
		return b, nil
	})

	h1, ok := f.Make("fake")
	require.True(t, ok)
	h2, ok := f.Make("fake")
	require.True(t, ok)
	assert.NotEqual(t, h1.ID(), h2.ID())

	_, err := h1.Collect("*")
	require.NoError(t, err)
	require.NoError(t, h1.Close())

	got, err := h2.Collect("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(got))
	require.Len(t, built, 2)
	assert.True(t, built[0].closed)
	assert.False(t, built[1].closed)
}

func TestFactory_PassesOptions(t *testing.T) {
	var seen Options
	f := NewFactory(Options{PID: 4242})
	f.Register("fake", func(opts Options) (Backend, error) {
		seen = opts
		return &fakeBackend{}, nil
	})
	_, ok := f.Make("fake")
	require.True(t, ok)
	assert.Equal(t, 4242, seen.PID)
}
