// Package usecase contains the RAG orchestration: index build, retrieval,
// prompt assembly and the clinical analysis entry points.
package usecase

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"cbcrag/internal/adapter/vectorstore"
	"cbcrag/internal/domain"
	"cbcrag/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const (
	// maxOutputTokens bounds every generation call.
	maxOutputTokens = 1500

	// embedBatchSize is how many chunks are embedded per provider call
	// during an index build. Progress is reported per batch.
	embedBatchSize = 16

	previewLen = 120
)

// Engine owns one knowledge base session: the loaded chunks, the embedding
// and generation providers, and the in-memory vector index. Construct one
// engine per session and reuse it across queries; the index build is the
// expensive part and must not repeat per request.
type Engine struct {
	chunks    []domain.Chunk
	embedder  port.Embedder
	generator port.Generator
	prompt    *template.Template

	mu       sync.Mutex
	store    *vectorstore.Store
	building bool
	ready    bool
}

// NewEngine creates an engine over the given chunks and providers. The index
// starts unbuilt; call BuildIndex before Retrieve or GenerateWithRAG.
func NewEngine(chunks []domain.Chunk, embedder port.Embedder, generator port.Generator) *Engine {
	return &Engine{
		chunks:    chunks,
		embedder:  embedder,
		generator: generator,
		prompt:    template.Must(template.ParseFS(promptTemplates, "templates/rag_prompt.txt")),
		store:     vectorstore.New(),
	}
}

// ChunkCount returns the number of loaded knowledge base chunks.
func (e *Engine) ChunkCount() int {
	return len(e.chunks)
}

// BuildIndex embeds every chunk in knowledge base order and loads the vector
// store. progress, if non-nil, is invoked with (completed, total) as chunks
// finish. Rebuilding replaces the previous index wholesale, so an aborted
// build never leaves duplicates. A build already in flight is rejected with
// ErrBuildInProgress. Returns the number of chunks indexed.
func (e *Engine) BuildIndex(progress func(completed, total int)) (int, error) {
	e.mu.Lock()
	if e.building {
		e.mu.Unlock()
		return 0, domain.ErrBuildInProgress
	}
	e.building = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.building = false
		e.mu.Unlock()
	}()

	fresh := vectorstore.New()
	total := len(e.chunks)

	for start := 0; start < total; start += embedBatchSize {
		end := start + embedBatchSize
		if end > total {
			end = total
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range e.chunks[start:end] {
			texts = append(texts, embeddingText(chunk))
		}

		vectors, err := e.embedder.EmbedDocuments(texts)
		if err != nil {
			return 0, err
		}
		if len(vectors) != len(texts) {
			return 0, &domain.EmbeddingError{
				Op:  "build index",
				Err: fmt.Errorf("expected %d vectors, got %d", len(texts), len(vectors)),
			}
		}

		for i, vec := range vectors {
			if err := fresh.Add(e.chunks[start+i], vec); err != nil {
				return 0, &domain.EmbeddingError{Op: "build index", Err: err}
			}
		}

		if progress != nil {
			progress(end, total)
		}
	}

	e.mu.Lock()
	e.store = fresh
	e.ready = true
	e.mu.Unlock()

	return total, nil
}

// IsReady reports whether the index has been built and can be queried.
func (e *Engine) IsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Retrieve embeds the query and returns the topK most similar chunks.
// A non-empty sectionFilter restricts results to one knowledge base section.
// Fails with ErrIndexNotReady before BuildIndex completes.
func (e *Engine) Retrieve(query string, topK int, sectionFilter string) ([]domain.RetrievalResult, error) {
	e.mu.Lock()
	ready, store := e.ready, e.store
	e.mu.Unlock()

	if !ready {
		return nil, domain.ErrIndexNotReady
	}

	vec, err := e.embedder.EmbedQuery(query)
	if err != nil {
		return nil, err
	}
	return store.Search(vec, topK, sectionFilter)
}

// GenerateWithRAG runs the full pipeline: retrieve topK chunks, format them
// into a cited context block, assemble the grounding prompt (injecting
// additionalContext between passages and question when supplied) and call
// the generation provider. The result carries 1-indexed source attributions
// matching the retrieved chunk order. Provider failures are surfaced, never
// replaced with a fabricated answer.
func (e *Engine) GenerateWithRAG(query string, topK int, additionalContext string, temperature float32) (*domain.Answer, error) {
	retrieved, err := e.Retrieve(query, topK, "")
	if err != nil {
		return nil, err
	}

	prompt, err := e.buildPrompt(query, additionalContext, retrieved)
	if err != nil {
		return nil, err
	}

	text, err := e.generator.Generate(prompt, port.GenerateOptions{
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	sources := make([]domain.Source, 0, len(retrieved))
	for i, r := range retrieved {
		sources = append(sources, domain.Source{
			Index:   i + 1,
			Title:   r.Chunk.Title,
			Section: r.Chunk.Section,
			Score:   r.Score,
			Preview: preview(r.Chunk.Text, previewLen),
		})
	}

	return &domain.Answer{
		Text:      text,
		Sources:   sources,
		Retrieved: retrieved,
		Query:     query,
	}, nil
}

func (e *Engine) buildPrompt(query, additionalContext string, retrieved []domain.RetrievalResult) (string, error) {
	var sb strings.Builder
	err := e.prompt.Execute(&sb, struct {
		Context           string
		AdditionalContext string
		Query             string
	}{
		Context:           FormatContext(retrieved),
		AdditionalContext: additionalContext,
		Query:             query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}

// FormatContext renders retrieved chunks as a labeled context block in rank
// order, one source label per chunk.
func FormatContext(retrieved []domain.RetrievalResult) string {
	parts := make([]string, 0, len(retrieved))
	for i, r := range retrieved {
		parts = append(parts, fmt.Sprintf("[Source %d: %s — %s (relevance: %.3f)]\n%s",
			i+1, r.Chunk.Section, r.Chunk.Title, r.Score, r.Chunk.Text))
	}
	return strings.Join(parts, "\n\n")
}

// embeddingText enriches a chunk's body with its metadata so vector
// similarity is biased toward section, title and keywords as well as content.
func embeddingText(c domain.Chunk) string {
	return fmt.Sprintf("Section: %s\nTitle: %s\nKeywords: %s\n%s",
		c.Section, c.Title, strings.Join(c.Keywords, ", "), c.Text)
}

// preview truncates text to n runes with an ellipsis marker.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
