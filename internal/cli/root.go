package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cbcrag/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cbcrag",
	Short: "Grounded CBC interpretation - retrieval-augmented hematology answers",
	Long: `cbcrag answers hematology questions grounded in a curated knowledge base
of CBC reference text. Answers cite their sources inline; when no embedding
provider is configured, a keyword fallback retriever still works offline.

Example usage:
  cbcrag ask -q "causes of microcytic anemia"     # grounded Q&A
  cbcrag analyze --hgb 10.2 --mcv 72 --sex F      # analyze lab values
  cbcrag search -q "thrombocytopenia MPV"         # keyword retrieval, no API key`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; environment variables win either way.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, perr := log.ParseLevel(cfg.Logging.Level); perr == nil {
			log.SetLevel(lvl)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cbcrag.yaml)")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}
