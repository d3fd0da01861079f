package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment fails the test unless GO_ENV is "test". The
// integration and acceptance suites set environment variables and
// replace the global database handle, which must never happen against
// a development or production environment.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("tests must run with GO_ENV=test (got %q)", env)
	}
}

// SetTestEnvironment forces GO_ENV=test for suites that configure the
// whole process in SetupSuite.
func SetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("failed to set GO_ENV=test: %v", err)
	}
}
