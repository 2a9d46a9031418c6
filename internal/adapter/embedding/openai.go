// Package embedding provides Embedder implementations: a remote
// OpenAI-compatible provider, a local Ollama provider and a dependency-free
// feature-hash provider.
package embedding

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"cbcrag/internal/domain"
	"cbcrag/internal/util"
)

const (
	defaultBatchSize  = 100
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
	requestTimeout    = 30 * time.Second
)

// Config configures an OpenAI-compatible embedding provider.
type Config struct {
	APIKey       string
	BaseURL      string        // optional, for OpenAI-compatible endpoints
	Model        string        // e.g. "text-embedding-3-small"
	Dimension    int           // 0 infers the dimension from the model name
	BatchSize    int           // texts per API call, 0 uses the default
	RequestDelay time.Duration // pause between successive API calls
}

// OpenAIEmbedder embeds text through an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client       *openai.Client
	model        string
	dimension    int
	batchSize    int
	requestDelay time.Duration
	maxRetries   int
	retryDelay   time.Duration

	// Task prefixes for asymmetric encoders (e.g. nomic models expect
	// "search_document: " and "search_query: ").
	docPrefix   string
	queryPrefix string
}

// NewOpenAIEmbedder creates a remote embedding provider. The API key is
// required; a missing key is an authentication failure at construction
// rather than on the first call.
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, &domain.EmbeddingError{Op: "configure", Err: fmt.Errorf("API key is required")}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = modelDimension(cfg.Model)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &OpenAIEmbedder{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		dimension:    dimension,
		batchSize:    batchSize,
		requestDelay: cfg.RequestDelay,
		maxRetries:   defaultMaxRetries,
		retryDelay:   defaultRetryDelay,
	}, nil
}

// NewOllamaEmbedder creates a local embedding provider backed by an Ollama
// server. No API key is needed; the model runs on-device and is loaded once
// by the server, so the embedder should be constructed once and reused.
func NewOllamaEmbedder(model, baseURL string) (*OpenAIEmbedder, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}

	dimension := 768
	switch model {
	case "nomic-embed-text":
		dimension = 768
	case "mxbai-embed-large":
		dimension = 1024
	case "all-minilm":
		dimension = 384
	}

	clientCfg := openai.DefaultConfig("ollama")
	clientCfg.BaseURL = baseURL

	e := &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		dimension:  dimension,
		batchSize:  defaultBatchSize,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
	if model == "nomic-embed-text" {
		e.docPrefix = "search_document: "
		e.queryPrefix = "search_query: "
	}
	return e, nil
}

// EmbedDocuments embeds texts in document mode, batching API calls and
// sleeping between successive calls to respect provider rate limits.
func (e *OpenAIEmbedder) EmbedDocuments(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		if i > 0 && e.requestDelay > 0 {
			time.Sleep(e.requestDelay)
		}

		batch := make([]string, 0, end-i)
		for _, t := range texts[i:end] {
			batch = append(batch, e.docPrefix+t)
		}

		embeddings, err := e.embed(batch)
		if err != nil {
			return nil, &domain.EmbeddingError{Op: "embed documents", Err: err}
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

// EmbedQuery embeds a single search query in query mode.
func (e *OpenAIEmbedder) EmbedQuery(text string) ([]float32, error) {
	embeddings, err := e.embed([]string{e.queryPrefix + text})
	if err != nil {
		return nil, &domain.EmbeddingError{Op: "embed query", Err: err}
	}
	return embeddings[0], nil
}

func (e *OpenAIEmbedder) embed(texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.Backoff(e.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: openai.EmbeddingModel(e.model),
		})
		cancel()

		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
			continue
		}

		embeddings := make([][]float32, len(texts))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(embeddings) {
				return nil, fmt.Errorf("embedding index %d out of range", d.Index)
			}
			embeddings[d.Index] = d.Embedding
		}
		return embeddings, nil
	}

	return nil, fmt.Errorf("after %d attempts: %w", e.maxRetries+1, lastErr)
}

// Dimension returns the embedding vector dimension.
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func modelDimension(model string) int {
	switch model {
	case "text-embedding-3-small":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-ada-002":
		return 1536
	}
	return 1536
}
