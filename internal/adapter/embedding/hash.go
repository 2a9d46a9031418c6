package embedding

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashEmbedder is a deterministic feature-hash embedder with no external
// dependency or credential. Tokens are hashed into buckets and the result is
// L2-normalized, so overlapping vocabularies produce high cosine similarity.
// It is meant for offline use and tests, not for semantic quality.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a feature-hash embedder with the given dimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	return &HashEmbedder{dimension: dimension}
}

// EmbedDocuments embeds each text independently.
func (e *HashEmbedder) EmbedDocuments(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = e.embed(t)
	}
	return embeddings, nil
}

// EmbedQuery embeds a query. Hashing is symmetric, so query mode matches
// document mode.
func (e *HashEmbedder) EmbedQuery(text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dimension)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[int(h.Sum32())%e.dimension]++
	}

	l2normalize(vec)
	return vec
}

// Dimension returns the embedding vector dimension.
func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *HashEmbedder) ModelName() string {
	return "feature-hash"
}

// l2normalize scales a vector to unit length in place.
func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
