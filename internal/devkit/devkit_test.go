package devkit

import "testing"

func TestNewKeyIDs_distinct(t *testing.T) {
	ids := NewKeyIDs(4)
	if len(ids) != 4 {
		t.Fatalf("want 4 ids, got %d", len(ids))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if len(id) != 16 {
			t.Fatalf("want 16-byte kid, got %d bytes", len(id))
		}
		key := string(id)
		if seen[key] {
			t.Fatalf("duplicate kid generated")
		}
		seen[key] = true
	}
}
