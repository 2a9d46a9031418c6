package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"cbcrag/internal/adapter/retriever"
	"cbcrag/internal/port"
)

var (
	searchQuery string
	searchTopK  int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Keyword search over the knowledge base (no API key needed)",
	Long: `Search knowledge base chunks by keyword overlap. This is the fallback
retrieval path: it needs no embedding provider, no credentials and no index
build.

Examples:
  cbcrag search -q "microcytic anemia low ferritin"
  cbcrag search -q "neutropenia severity" -k 3 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	chunks, err := loadChunks(cfg)
	if err != nil {
		return err
	}

	topK := cfg.Retrieve.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}

	var fallback port.Retriever = retriever.NewKeywordRetriever(chunks)
	results, err := fallback.Search(searchQuery, topK)
	if err != nil {
		return err
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), searchQuery)
	for i, r := range results {
		fmt.Printf("[%d] %s — %s (score %.4f)\n%s\n\n", i+1, r.Chunk.Section, r.Chunk.Title, r.Score, r.Chunk.Text)
	}
	return nil
}
