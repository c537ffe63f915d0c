package zodiac

import (
	"slices"
	"testing"
)

func TestRandomName(t *testing.T) {
	if len(Animals) != 12 {
		t.Fatalf("expected 12 animals, got %d", len(Animals))
	}
	for i := 0; i < 50; i++ {
		name := RandomName()
		if !slices.Contains(Animals, name) {
			t.Fatalf("RandomName returned %q, not in the animal list", name)
		}
	}
}
