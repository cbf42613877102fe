// Package testutil provides testing helpers shared by the apiresolve packages.
package testutil

import (
	"context"
	"testing"
	"time"
)

// ResolveTimeout bounds a single test that enumerates a live process.
const ResolveTimeout = 30 * time.Second

// NewTestContext returns a context that expires after ResolveTimeout and is
// cancelled when the test ends.
func NewTestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ResolveTimeout)
	t.Cleanup(cancel)
	return ctx
}
