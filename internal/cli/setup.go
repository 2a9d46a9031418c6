package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"cbcrag/config"
	"cbcrag/internal/adapter/embedding"
	"cbcrag/internal/adapter/history"
	"cbcrag/internal/adapter/kb"
	"cbcrag/internal/adapter/llm"
	"cbcrag/internal/domain"
	"cbcrag/internal/port"
	"cbcrag/internal/usecase"
)

func loadChunks(cfg *config.Config) ([]domain.Chunk, error) {
	if len(cfg.KnowledgeBase.Includes) > 0 {
		root := cfg.KnowledgeBase.Dir
		if root == "" {
			root = "."
		}
		return kb.LoadGlob(root, cfg.KnowledgeBase.Includes)
	}
	return kb.Load(cfg.KnowledgeBase.Path)
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	ec := cfg.Embedding
	switch ec.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(embedding.Config{
			APIKey:       os.Getenv(ec.APIKeyEnv),
			BaseURL:      ec.BaseURL,
			Model:        ec.Model,
			Dimension:    ec.Dimension,
			BatchSize:    ec.BatchSize,
			RequestDelay: time.Duration(ec.RequestDelayMS) * time.Millisecond,
		})
	case "ollama":
		return embedding.NewOllamaEmbedder(ec.Model, ec.BaseURL)
	case "hash":
		dim := ec.Dimension
		if dim <= 0 {
			dim = 256
		}
		return embedding.NewHashEmbedder(dim), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", ec.Provider)
	}
}

func newGenerator(cfg *config.Config) (port.Generator, error) {
	return llm.NewOpenAIGenerator(os.Getenv(cfg.Generation.APIKeyEnv), cfg.Generation.Model)
}

// buildEngine wires the providers, loads the knowledge base and builds the
// vector index with a progress bar.
func buildEngine(cfg *config.Config) (*usecase.Engine, error) {
	chunks, err := loadChunks(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("knowledge base loaded", "chunks", len(chunks))

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("providers ready",
		"embedding", embedder.ModelName(), "generation", generator.ModelName())

	engine := usecase.NewEngine(chunks, embedder, generator)

	bar := progressbar.Default(int64(engine.ChunkCount()), "embedding chunks")
	done := 0
	_, err = engine.BuildIndex(func(completed, total int) {
		_ = bar.Add(completed - done)
		done = completed
	})
	if err != nil {
		return nil, fmt.Errorf("index build failed: %w", err)
	}
	_ = bar.Finish()

	return engine, nil
}

func printAnswer(ans *domain.Answer) {
	fmt.Println(ans.Text)
	if len(ans.Sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, s := range ans.Sources {
		fmt.Printf("  [%d] %s — %s (relevance %.3f)\n      %s\n", s.Index, s.Section, s.Title, s.Score, s.Preview)
	}
}

// recordAnswer appends to the history log; failures are logged, not fatal.
func recordAnswer(cfg *config.Config, kind, model string, ans *domain.Answer) {
	if err := config.EnsureHistoryDir(cfg.History.Path); err != nil {
		log.Warn("failed to create history directory", "err", err)
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Warn("failed to open history store", "err", err)
		return
	}
	defer store.Close()

	err = store.Append(history.Record{
		Kind:    kind,
		Model:   model,
		Query:   ans.Query,
		Answer:  ans.Text,
		Sources: ans.Sources,
	})
	if err != nil {
		log.Warn("failed to record answer", "err", err)
	}
}
