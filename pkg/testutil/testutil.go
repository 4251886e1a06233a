// Package testutil provides shared helpers for hermes tests.
package testutil

import (
	"context"
	"reflect"
	"testing"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// TestRuntimeContext creates a runtime context suitable for tests.
func TestRuntimeContext(t *testing.T) *hermes_io.RuntimeContext {
	t.Helper()
	return hermes_io.NewContext(context.Background(), "test")
}

// TestRuntimeContextWithCancel creates a cancellable runtime context.
func TestRuntimeContextWithCancel(t *testing.T) (*hermes_io.RuntimeContext, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	return hermes_io.NewContext(ctx, "test"), cancel
}

// AssertNoError fails the test if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertEqual fails the test if expected and actual differ.
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
