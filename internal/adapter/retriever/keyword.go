// Package retriever provides the keyword-overlap fallback retriever, usable
// without any embedding provider or credential.
package retriever

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"cbcrag/internal/domain"
)

// KeywordRetriever scores chunks by token overlap against a query. It has no
// build phase; it holds the static chunk list and nothing else.
type KeywordRetriever struct {
	chunks []domain.Chunk
}

// NewKeywordRetriever creates a keyword retriever over the given chunks.
func NewKeywordRetriever(chunks []domain.Chunk) *KeywordRetriever {
	return &KeywordRetriever{chunks: chunks}
}

// Search returns the top-k chunks by length-normalized word overlap:
// |query ∩ chunk| / sqrt(|chunk vocabulary|). The chunk vocabulary covers
// text, title and keywords. Ties keep knowledge base order.
func (r *KeywordRetriever) Search(query string, k int) ([]domain.RetrievalResult, error) {
	queryTokens := tokenSet(query)

	results := make([]domain.RetrievalResult, 0, len(r.chunks))
	for _, chunk := range r.chunks {
		results = append(results, domain.RetrievalResult{
			Chunk:  chunk,
			Score:  round4(score(chunk, queryTokens)),
			Method: "keyword",
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k >= 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func score(chunk domain.Chunk, queryTokens map[string]struct{}) float64 {
	vocab := chunk.Text + " " + chunk.Title + " " + strings.Join(chunk.Keywords, " ")
	chunkTokens := tokenSet(vocab)
	if len(chunkTokens) == 0 {
		return 0
	}

	overlap := 0
	for t := range queryTokens {
		if _, ok := chunkTokens[t]; ok {
			overlap++
		}
	}
	return float64(overlap) / math.Sqrt(float64(len(chunkTokens)))
}

// tokenSet splits text into a lowercase word set. Words are runs of letters,
// digits and underscores.
func tokenSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
