package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/db"
	"github.com/poleguard/repeal/internal/extract"
	"github.com/poleguard/repeal/internal/history"
	"github.com/poleguard/repeal/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest specification documents into the corpus",
	Long: `Reads a specification document (PDF, text or markdown) or a directory of
documents, chunks the text, embeds each chunk and adds them to the corpus.
Directories are scanned with the configured include/exclude globs.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := args[0]

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

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", root, err)
	}

	var files []string
	baseDir := root
	if info.IsDir() {
		files, err = extract.CollectFiles(root, cfg.Include, cfg.Exclude)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", root, err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no documents matched the include patterns under %s", root)
		}
	} else {
		baseDir = filepath.Dir(root)
		files = []string{filepath.Base(root)}
	}

	database, err := db.Open(dbPath(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	hist := history.NewStore(database)

	reporter := progress.NewReporter()
	reporter.Start(len(files), "Ingesting documents")

	var totalChunks int
	for i, rel := range files {
		reporter.Update(i, rel)

		sections, err := extract.ReadDocument(filepath.Join(baseDir, rel))
		if err != nil {
			reporter.Finish()
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		if len(sections) == 0 {
			if verbose {
				fmt.Fprintf(os.Stderr, "skipping %s: no extractable text\n", rel)
			}
			continue
		}

		count, err := store.IngestSections(ctx, sections, rel)
		if err != nil {
			reporter.Finish()
			return fmt.Errorf("ingesting %s: %w", rel, err)
		}
		totalChunks += count

		if err := hist.RecordDocument(ctx, rel, count); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: recording %s in history: %v\n", rel, err)
		}
	}
	reporter.Update(len(files), "done")
	reporter.Finish()

	if err := store.SaveFile(corpusPath(cfg)); err != nil {
		return fmt.Errorf("saving corpus: %w", err)
	}

	stats := store.Stats()
	fmt.Printf("Ingested %d chunks from %d document(s).\n", totalChunks, len(files))
	fmt.Printf("Corpus now holds %d chunks across %d documents.\n", stats.TotalChunks, stats.TotalFiles)
	return nil
}
