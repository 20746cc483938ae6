package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegisterAndGet(t *testing.T) {
	r := New[func() int]("widget")
	r.Register("b", func() int { return 2 })
	r.Register("a", func() int { return 1 })

	f, err := r.Get("a")
	if err != nil {
		t.Fatalf("Get(a) error: %v", err)
	}
	if f() != 1 {
		t.Errorf("Expected 1, got %d", f())
	}

	if !r.Exists("b") || r.Exists("c") {
		t.Error("Exists() reported wrong membership")
	}
	if diff := cmp.Diff([]string{"a", "b"}, r.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.Get("c"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := New[int]("number")
	r.Register("x", 1)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	r.Register("x", 2)
}
