package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// EmbedDocuments generates document-mode embeddings for the given texts.
	// Returns a slice of vectors, one per input text, in input order.
	EmbedDocuments(texts []string) ([][]float32, error)

	// EmbedQuery generates a query-mode embedding for a single search query.
	// Providers with asymmetric encoders may apply a different task hint
	// than for documents.
	EmbedQuery(text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
