package monosplit

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
)

func TestHashMapping(t *testing.T) {
	m := NewHashMapping()

	orig := plumbing.NewHash("1111111111111111111111111111111111111111")
	newA := plumbing.NewHash("2222222222222222222222222222222222222222")
	newB := plumbing.NewHash("3333333333333333333333333333333333333333")

	if m.Resolved(orig) || !m.Empty() {
		t.Fatal("fresh mapping should be empty")
	}

	err := m.record(orig, []SubtreeCommit{
		{Subfolder: "pkgA", Hash: newA},
		{Subfolder: "pkgB", Hash: newB},
	})
	if err != nil {
		t.Fatal(err)
	}

	// all subfolder entries of a commit appear together
	if h, found := m.Lookup("pkgA", orig); !found || h != newA {
		t.Fatalf("pkgA lookup: %s %v", h, found)
	}
	if h, found := m.Lookup("pkgB", orig); !found || h != newB {
		t.Fatalf("pkgB lookup: %s %v", h, found)
	}
	if !m.Resolved(orig) {
		t.Fatal("recorded commit not resolved")
	}
	if m.Len() != 1 {
		t.Fatalf("want 1 resolved commit, got %d", m.Len())
	}

	if _, found := m.Lookup("pkgC", orig); found {
		t.Fatal("lookup in unknown subfolder must miss")
	}
	if m.Resolved(newA) {
		t.Fatal("rewritten hash must not count as resolved")
	}
}

func TestHashMapping_recordOnce(t *testing.T) {
	m := NewHashMapping()
	orig := plumbing.NewHash("1111111111111111111111111111111111111111")

	if err := m.record(orig, []SubtreeCommit{{Subfolder: "pkgA", Hash: orig}}); err != nil {
		t.Fatal(err)
	}

	err := m.record(orig, []SubtreeCommit{{Subfolder: "pkgB", Hash: orig}})
	if !errors.Is(err, ErrDuplicateMap) {
		t.Fatalf("want ErrDuplicateMap, got %v", err)
	}
}
