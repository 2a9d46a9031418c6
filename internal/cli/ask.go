package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuery   string
	askTopK    int
	askSection string
	askContext string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a clinical question grounded in the knowledge base",
	Long: `Ask a free-form hematology question. The answer is generated from the
top-k most relevant knowledge base passages and cites them inline.

Examples:
  cbcrag ask -q "when is bone marrow biopsy indicated for thrombocytopenia?"
  cbcrag ask -q "iron studies interpretation" --top-k 6 --section Anemia`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "clinical question (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	askCmd.Flags().StringVar(&askSection, "section", "", "restrict retrieval to one knowledge base section")
	askCmd.Flags().StringVar(&askContext, "context", "", "additional patient context to inject into the prompt")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	topK := cfg.Retrieve.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	// Section-filtered retrieval is only exposed on the retrieve path, so
	// surface it here as a preview when requested.
	if askSection != "" {
		results, err := engine.Retrieve(askQuery, topK, askSection)
		if err != nil {
			return err
		}
		fmt.Printf("Passages in section %q:\n\n", askSection)
		for i, r := range results {
			fmt.Printf("[%d] %s (%.3f)\n%s\n\n", i+1, r.Chunk.Title, r.Score, r.Chunk.Text)
		}
		return nil
	}

	ans, err := engine.GenerateWithRAG(askQuery, topK, askContext, cfg.Generation.Temperature)
	if err != nil {
		return err
	}

	printAnswer(ans)
	recordAnswer(cfg, "ask", cfg.Generation.Model, ans)
	return nil
}
