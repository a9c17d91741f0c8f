package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/db"
	"github.com/poleguard/repeal/internal/history"
)

var removeCmd = &cobra.Command{
	Use:   "remove [source-file]",
	Short: "Remove a document's chunks from the corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sourceFile := args[0]

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

		removed := store.RemoveSource(sourceFile)
		if removed == 0 {
			return fmt.Errorf("no chunks found for %q", sourceFile)
		}

		if err := store.SaveFile(corpusPath(cfg)); err != nil {
			return fmt.Errorf("saving corpus: %w", err)
		}

		database, err := db.Open(dbPath(cfg))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		if err := history.NewStore(database).RemoveDocument(ctx, sourceFile); err != nil {
			fmt.Printf("Warning: removing %s from history: %v\n", sourceFile, err)
		}

		fmt.Printf("Removed %d chunk(s) from %s.\n", removed, sourceFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
