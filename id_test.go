package codex

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewRunID(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	if a == b {
		t.Error("consecutive run IDs must differ")
	}

	parsed, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("run ID is not a UUID: %v", err)
	}
	if parsed.Version() != 7 {
		t.Errorf("version = %d, want 7", parsed.Version())
	}
}

func TestRunIDsSortByTime(t *testing.T) {
	prev := NewRunID()
	for i := 0; i < 10; i++ {
		next := NewRunID()
		if next < prev {
			t.Fatalf("run IDs not monotonic: %s then %s", prev, next)
		}
		prev = next
	}
}
