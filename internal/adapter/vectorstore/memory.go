// Package vectorstore provides an in-memory, append-only vector store with
// exhaustive cosine-similarity search. The corpus is tens of chunks, so a
// linear scan beats the complexity of an approximate index.
package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"cbcrag/internal/domain"
)

// Store holds (chunk, vector) pairs in parallel slices, in insertion order.
// It is not safe for concurrent mutation; confine each store to one engine.
type Store struct {
	chunks    []domain.Chunk
	vectors   [][]float32
	dimension int
}

// New creates an empty store. The first Add fixes the vector dimension.
func New() *Store {
	return &Store{}
}

// Add appends a chunk with its embedding. Vectors of different lengths never
// mix: the dimension is fixed by the first vector added.
func (s *Store) Add(chunk domain.Chunk, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for chunk %q", chunk.Title)
	}
	if s.dimension == 0 {
		s.dimension = len(vector)
	} else if len(vector) != s.dimension {
		return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}

	s.chunks = append(s.chunks, chunk)
	s.vectors = append(s.vectors, vector)
	return nil
}

// Search returns the topK stored chunks ranked by cosine similarity against
// the query vector, best first. Ties keep insertion order. A non-empty
// sectionFilter restricts results to chunks of that section. topK larger
// than the store returns everything.
func (s *Store) Search(query []float32, topK int, sectionFilter string) ([]domain.RetrievalResult, error) {
	if topK <= 0 || len(s.chunks) == 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	results := make([]domain.RetrievalResult, 0, len(s.chunks))
	for i, vec := range s.vectors {
		chunk := s.chunks[i]
		if sectionFilter != "" && chunk.Section != sectionFilter {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Chunk:  chunk,
			Score:  round4(cosineSimilarity(query, vec)),
			Method: "vector",
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return len(s.chunks)
}

// cosineSimilarity calculates the cosine of the angle between two vectors.
// A zero-magnitude vector on either side yields exactly 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
