package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/db"
	"github.com/poleguard/repeal/internal/history"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and evaluation statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	store, err := openStore(cfg, embedder)
	if err != nil {
		return err
	}
	stats := store.Stats()

	var evalStats history.Stats
	if _, err := os.Stat(dbPath(cfg)); err == nil {
		database, err := db.Open(dbPath(cfg))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		evalStats, err = history.NewStore(database).EvaluationStats(context.Background())
		if err != nil {
			return fmt.Errorf("reading evaluation stats: %w", err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Corpus      interface{} `json:"corpus"`
			Evaluations interface{} `json:"evaluations"`
		}{stats, evalStats})
	}

	fmt.Printf("Corpus: %d chunks across %d documents\n", stats.TotalChunks, stats.TotalFiles)
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("Last updated: %s\n", stats.LastUpdated.Local())
	}
	fmt.Printf("Evaluations recorded: %d\n", evalStats.Total)
	for status, count := range evalStats.ByStatus {
		fmt.Printf("  %s: %d\n", status, count)
	}
	return nil
}
