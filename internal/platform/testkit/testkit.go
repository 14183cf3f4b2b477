// Package testkit holds small assertion helpers and seams shared by tests
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MustPanic fails the test unless fn panics
func MustPanic(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustNotPanic fails the test if fn panics
func MustNotPanic(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	fn()
}

// MustContain fails unless haystack contains needle. Long haystacks are
// written to a temp file rather than the test output.
func MustContain(t testing.TB, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	if len(haystack) < 400 {
		t.Fatalf("expected %q in:\n%s", needle, haystack)
	}
	path := filepath.Join(t.TempDir(), "haystack.txt")
	_ = os.WriteFile(path, []byte(haystack), 0o600)
	t.Fatalf("expected %q; full output in %s", needle, path)
}
