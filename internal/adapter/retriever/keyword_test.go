package retriever

import (
	"testing"

	"cbcrag/internal/domain"
)

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{
			Section:  "Anemia",
			Title:    "Iron deficiency anemia",
			Keywords: []string{"microcytic", "ferritin", "iron"},
			Text:     "Iron deficiency produces a microcytic anemia with low ferritin and elevated RDW.",
		},
		{
			Section:  "Anemia",
			Title:    "Vitamin B12 deficiency",
			Keywords: []string{"macrocytic", "cobalamin"},
			Text:     "Vitamin B12 deficiency produces a macrocytic anemia with hypersegmented neutrophils.",
		},
		{
			Section:  "Platelets",
			Title:    "Thrombocytopenia",
			Keywords: []string{"platelets", "MPV"},
			Text:     "Thrombocytopenia is defined as a platelet count below 150.",
		},
	}
}

func TestSearchFindsIronDeficiency(t *testing.T) {
	r := NewKeywordRetriever(testChunks())

	results, err := r.Search("microcytic anemia low ferritin", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Chunk.Title != "Iron deficiency anemia" {
		t.Errorf("expected iron deficiency chunk, got %q", results[0].Chunk.Title)
	}
	if results[0].Method != "keyword" {
		t.Errorf("expected method tag %q, got %q", "keyword", results[0].Method)
	}
}

func TestKeywordListQueryBeatsDisjointChunk(t *testing.T) {
	chunks := testChunks()
	r := NewKeywordRetriever(chunks)

	// Exactly the keyword list of the iron chunk.
	results, err := r.Search("microcytic ferritin iron", len(chunks))
	if err != nil {
		t.Fatal(err)
	}

	scores := make(map[string]float64, len(results))
	for _, res := range results {
		scores[res.Chunk.Title] = res.Score
	}
	if scores["Iron deficiency anemia"] < scores["Thrombocytopenia"] {
		t.Errorf("keyword-list query scored the matching chunk %v below a disjoint chunk %v",
			scores["Iron deficiency anemia"], scores["Thrombocytopenia"])
	}
	if scores["Thrombocytopenia"] != 0 {
		t.Errorf("disjoint-vocabulary chunk should score 0, got %v", scores["Thrombocytopenia"])
	}
}

func TestEmptyVocabularyScoresZero(t *testing.T) {
	// Punctuation-only content tokenizes to an empty vocabulary.
	chunks := []domain.Chunk{{Section: "X", Title: "—", Text: "… — …"}}
	r := NewKeywordRetriever(chunks)

	results, err := r.Search("anything at all", 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Score != 0.0 {
		t.Errorf("empty-vocabulary chunk must score 0.0, got %v", results[0].Score)
	}
}

func TestSearchTruncatesToTopK(t *testing.T) {
	r := NewKeywordRetriever(testChunks())

	results, err := r.Search("anemia", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	all, err := r.Search("anemia", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("topK past the corpus should return all chunks, got %d", len(all))
	}
}

func TestSearchStableTieBreak(t *testing.T) {
	chunks := []domain.Chunk{
		{Section: "S", Title: "first", Text: "alpha beta"},
		{Section: "S", Title: "second", Text: "alpha beta"},
	}
	r := NewKeywordRetriever(chunks)

	results, err := r.Search("alpha beta", 2)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Chunk.Title != "first" || results[1].Chunk.Title != "second" {
		t.Errorf("tied scores broke knowledge base order: %q, %q", results[0].Chunk.Title, results[1].Chunk.Title)
	}
}
