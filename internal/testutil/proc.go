package testutil

import (
	"os"
	"testing"
)

// RequireProc skips the test when the process filesystem is not available.
func RequireProc(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/proc/self/maps"); err != nil {
		t.Skip("Skipping test: /proc not available (not on Linux)")
	}
}
