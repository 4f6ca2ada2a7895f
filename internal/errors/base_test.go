package errors

import "testing"

func TestWrap(t *testing.T) {
	err := Wrap(errWrapped, "Hello, Wrapped!")
	if err.Error() != "Hello, Wrapped!, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "ignored"); err != nil {
		t.Fatalf("expected nil, got %+v", err)
	}
}

func TestIsSeesThroughWrap(t *testing.T) {
	err := Wrap(errWrapped, "outer")
	if !Is(err, errWrapped) {
		t.Fatalf("expected Is to match the wrapped error")
	}
}
