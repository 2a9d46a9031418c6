package port

import "cbcrag/internal/domain"

// Retriever defines the interface for searching the knowledge base.
type Retriever interface {
	// Search returns the top-k chunks matching the query, best first.
	Search(query string, k int) ([]domain.RetrievalResult, error)
}
