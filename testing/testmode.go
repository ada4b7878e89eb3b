// Package testing flips the runtime into test mode when imported from test
// binaries, so package init code never dials external services.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	if os.Getenv("FORGELINE_TEST_MODE") == "" {
		_ = os.Setenv("FORGELINE_TEST_MODE", "1")
	}
}

// TestMain keeps the environment settled before any test runs.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
