package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cbcrag/internal/adapter/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of records to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
		fmt.Println("No history yet.")
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No history yet.")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("#%d  %s  [%s, %s]\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Kind, rec.Model)
		fmt.Printf("  Q: %s\n", firstLine(rec.Query))
		fmt.Printf("  A: %s\n\n", firstLine(rec.Answer))
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
