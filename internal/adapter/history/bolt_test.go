package history

import (
	"path/filepath"
	"testing"

	"cbcrag/internal/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndList(t *testing.T) {
	store := openStore(t)

	for _, q := range []string{"first", "second", "third"} {
		err := store.Append(Record{
			Kind:    "ask",
			Model:   "gpt-4o-mini",
			Query:   q,
			Answer:  "answer to " + q,
			Sources: []domain.Source{{Index: 1, Title: "t", Section: "s", Score: 0.9}},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Newest first.
	if records[0].Query != "third" || records[2].Query != "first" {
		t.Errorf("records not newest-first: %q ... %q", records[0].Query, records[2].Query)
	}
	if records[0].ID <= records[2].ID {
		t.Error("IDs should increase with insertion order")
	}
	if records[0].CreatedAt.IsZero() {
		t.Error("creation time should be assigned on append")
	}
	if len(records[0].Sources) != 1 {
		t.Error("source attributions should round-trip")
	}
}

func TestListLimit(t *testing.T) {
	store := openStore(t)

	for i := 0; i < 5; i++ {
		if err := store.Append(Record{Kind: "full", Query: "q", Answer: "a"}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("expected limit of 2 records, got %d", len(records))
	}
}

func TestListEmpty(t *testing.T) {
	store := openStore(t)

	records, err := store.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
