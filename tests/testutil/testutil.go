// Package testutil holds repository mocks, a recording event publisher and
// polling helpers shared by the service tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RequireEventually polls condition until it holds or timeout elapses, then
// fails the test
func RequireEventually(t testing.TB, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			require.Fail(t, "condition not met within "+timeout.String(), msgAndArgs...)
			return
		}
		time.Sleep(interval)
	}
}
