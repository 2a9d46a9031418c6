package vectorstore

import (
	"math"
	"testing"

	"cbcrag/internal/domain"
)

func chunk(section, title string) domain.Chunk {
	return domain.Chunk{Section: section, Title: title, Text: title + " body"}
}

func mustAdd(t *testing.T, s *Store, c domain.Chunk, v []float32) {
	t.Helper()
	if err := s.Add(c, v); err != nil {
		t.Fatal(err)
	}
}

func TestSearchIdenticalVectorScoresOne(t *testing.T) {
	s := New()
	mustAdd(t, s, chunk("A", "one"), []float32{1, 2, 3})
	mustAdd(t, s, chunk("A", "two"), []float32{-3, 1, 0})

	results, err := s.Search([]float32{1, 2, 3}, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Chunk.Title != "one" {
		t.Fatalf("expected identical vector first, got %q", results[0].Chunk.Title)
	}
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Errorf("expected score 1.0 for identical vector, got %v", results[0].Score)
	}
	for _, r := range results {
		if r.Score < -1 || r.Score > 1 {
			t.Errorf("score %v outside [-1, 1]", r.Score)
		}
	}
}

func TestSearchZeroMagnitudeQuery(t *testing.T) {
	s := New()
	mustAdd(t, s, chunk("A", "one"), []float32{1, 0, 0})
	mustAdd(t, s, chunk("A", "two"), []float32{0, 1, 0})

	results, err := s.Search([]float32{0, 0, 0}, 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Score != 0.0 {
			t.Errorf("expected exactly 0.0 for zero-magnitude query, got %v", r.Score)
		}
	}
}

func TestSearchTopKMonotonicity(t *testing.T) {
	s := New()
	vecs := [][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 1, 0}, {0, 0, 1}}
	for i, v := range vecs {
		mustAdd(t, s, chunk("A", string(rune('a'+i))), v)
	}
	query := []float32{1, 0.05, 0}

	for k := 1; k < len(vecs); k++ {
		smaller, err := s.Search(query, k, "")
		if err != nil {
			t.Fatal(err)
		}
		larger, err := s.Search(query, k+1, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(larger) != len(smaller)+1 {
			t.Fatalf("k=%d: expected one more result, got %d vs %d", k, len(larger), len(smaller))
		}
		for i := range smaller {
			if smaller[i].Chunk.Title != larger[i].Chunk.Title {
				t.Errorf("k=%d: result %d differs: %q vs %q", k, i, smaller[i].Chunk.Title, larger[i].Chunk.Title)
			}
		}
	}
}

func TestSearchTopKLargerThanStore(t *testing.T) {
	s := New()
	mustAdd(t, s, chunk("A", "only"), []float32{1, 0})

	results, err := s.Search([]float32{1, 0}, 100, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected all entries when topK exceeds store size, got %d", len(results))
	}
}

func TestSearchSectionFilter(t *testing.T) {
	s := New()
	mustAdd(t, s, chunk("Anemia", "a1"), []float32{1, 0})
	mustAdd(t, s, chunk("Platelets", "p1"), []float32{1, 0})
	mustAdd(t, s, chunk("Anemia", "a2"), []float32{0, 1})

	results, err := s.Search([]float32{1, 0}, 10, "Anemia")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 Anemia results, got %d", len(results))
	}
	for _, r := range results {
		if r.Chunk.Section != "Anemia" {
			t.Errorf("section filter leaked chunk from section %q", r.Chunk.Section)
		}
	}
}

func TestSearchStableTieBreak(t *testing.T) {
	s := New()
	// Identical vectors tie exactly; insertion order must win.
	mustAdd(t, s, chunk("A", "first"), []float32{1, 1})
	mustAdd(t, s, chunk("A", "second"), []float32{1, 1})
	mustAdd(t, s, chunk("A", "third"), []float32{1, 1})

	results, err := s.Search([]float32{1, 1}, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].Chunk.Title != want {
			t.Errorf("tie break broke insertion order at %d: got %q", i, results[i].Chunk.Title)
		}
	}
}

func TestAddDimensionMismatch(t *testing.T) {
	s := New()
	mustAdd(t, s, chunk("A", "one"), []float32{1, 0, 0})

	if err := s.Add(chunk("A", "two"), []float32{1, 0}); err == nil {
		t.Error("expected error when mixing vector dimensions")
	}
	if err := s.Add(chunk("A", "three"), nil); err == nil {
		t.Error("expected error for empty vector")
	}
}

func TestSearchQueryDimensionMismatch(t *testing.T) {
	s := New()
	mustAdd(t, s, chunk("A", "one"), []float32{1, 0, 0})

	if _, err := s.Search([]float32{1, 0}, 1, ""); err == nil {
		t.Error("expected error for query dimension mismatch")
	}
}

func TestSearchEmptyStore(t *testing.T) {
	results, err := New().Search([]float32{1, 0}, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty store, got %d", len(results))
	}
}
