package testfixtures

import "testing"

func TestIDGenerator_SequentialWithPrefix(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("res")
	if got := gen.Next(); got != "res-1" {
		t.Fatalf("expected res-1, got %q", got)
	}
	if got := gen.Next(); got != "res-2" {
		t.Fatalf("expected res-2, got %q", got)
	}
}

func TestIDGenerator_EmptyPrefixDefaults(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("")
	if got := gen.Next(); got != "id-1" {
		t.Fatalf("expected id-1, got %q", got)
	}
}
