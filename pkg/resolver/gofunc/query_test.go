package gofunc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		fn      function
		matches bool
	}{
		{
			name:    "package function",
			raw:     "functions:net/http!Get",
			fn:      function{pkg: "net/http", base: "Get"},
			matches: true,
		},
		{
			name: "functions skip methods",
			raw:  "functions:net/http!Do",
			fn:   function{pkg: "net/http", receiver: "Client", base: "Do"},
		},
		{
			name:    "pointer method",
			raw:     "methods:net/http!Client.Do",
			fn:      function{pkg: "net/http", receiver: "Client", base: "Do"},
			matches: true,
		},
		{
			name:    "method globs",
			raw:     "methods:net/*!*.Serve*",
			fn:      function{pkg: "net/http", receiver: "Server", base: "ServeTLS"},
			matches: true,
		},
		{
			name: "methods skip functions",
			raw:  "methods:net/http!*.Get",
			fn:   function{pkg: "net/http", base: "Get"},
		},
		{
			name: "methods skip closures",
			raw:  "methods:main!*.*",
			fn:   function{pkg: "main", receiver: "main", base: "func1", closure: true},
		},
		{
			name:    "case insensitive",
			raw:     "Methods:NET/HTTP!client.DO/i",
			fn:      function{pkg: "net/http", receiver: "Client", base: "Do"},
			matches: true,
		},
		{
			name: "case sensitive by default",
			raw:  "methods:net/http!client.Do",
			fn:   function{pkg: "net/http", receiver: "Client", base: "Do"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parseQuery(resolver.ParseQuery(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.matches, q.matches(tt.fn))
		})
	}
}

func TestParseQuery_Malformed(t *testing.T) {
	for _, raw := range []string{
		"main.main",
		"funcs:main!main",
		"functions:main",
		"functions:!main",
		"functions:main!",
		"methods:net/http!Do",
		"methods:net/http!.Do",
		"methods:net/http!Client.",
	} {
		_, err := parseQuery(resolver.ParseQuery(raw))
		assert.ErrorIs(t, err, resolver.ErrMalformedQuery, raw)
	}
}

func TestTrimReceiver(t *testing.T) {
	assert.Equal(t, "Client", trimReceiver("(*Client)"))
	assert.Equal(t, "Client", trimReceiver("Client"))
	assert.Equal(t, "List[...]", trimReceiver("(*List[...])"))
}

func TestIsClosure(t *testing.T) {
	assert.True(t, isClosure("func1"))
	assert.True(t, isClosure("func2.1"))
	assert.True(t, isClosure("gowrap3"))
	assert.True(t, isClosure("deferwrap1"))
	assert.False(t, isClosure("func"))
	assert.False(t, isClosure("funcName"))
	assert.False(t, isClosure("Do"))
}
