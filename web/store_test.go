package web

import (
	"testing"
	"time"
)

func TestStoreExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.now = func() time.Time { return now }

	id := s.Put("Title.pdf", []byte("data"))
	d, ok := s.Get(id)
	if !ok || d.Name != "Title.pdf" || string(d.Data) != "data" {
		t.Fatalf("Get = %+v, %v", d, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := s.Get(id); ok {
		t.Error("expired entry still served")
	}

	s.Put("a.pdf", nil)
	old := s.Put("b.pdf", nil)
	now = now.Add(2 * time.Minute)
	s.Put("c.pdf", nil)
	if n := s.Len(); n != 1 {
		t.Errorf("Len = %d after eviction, want 1", n)
	}
	if _, ok := s.Get(old); ok {
		t.Error("evicted entry still served")
	}
}

func TestStoreIDsUnique(t *testing.T) {
	s := NewStore(time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := s.Put("x.pdf", nil)
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
