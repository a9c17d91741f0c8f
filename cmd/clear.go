package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/db"
	"github.com/poleguard/repeal/internal/history"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all documents from the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		store.Clear()
		if err := store.SaveFile(corpusPath(cfg)); err != nil {
			return fmt.Errorf("saving corpus: %w", err)
		}

		database, err := db.Open(dbPath(cfg))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		if err := history.NewStore(database).ClearDocuments(context.Background()); err != nil {
			fmt.Printf("Warning: clearing document history: %v\n", err)
		}

		fmt.Println("Corpus cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
