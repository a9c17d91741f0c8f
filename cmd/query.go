package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/retrieval"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Semantically search the specification corpus",
	Long:  `Embeds the query text and returns the most similar spec passages with their source documents and similarity scores.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 10, "maximum number of passages")
	queryCmd.Flags().Float64("min-similarity", -1, "similarity floor (default from config)")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	floor, _ := cmd.Flags().GetFloat64("min-similarity")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if floor < 0 {
		floor = cfg.Thresholds.MinSimilarity
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	store, err := openStore(cfg, embedder)
	if err != nil {
		return err
	}
	if store.Stats().TotalChunks == 0 {
		fmt.Println("Corpus is empty. Run `repeal ingest` first.")
		return nil
	}

	retriever := newRetriever(cfg, embedder, store)
	candidates, err := retriever.Retrieve(ctx, queryText, floor)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if len(candidates) == 0 {
		fmt.Println("No passages matched above the similarity floor.")
		return nil
	}

	if jsonOutput {
		return printQueryResultsJSON(candidates)
	}
	printQueryResultsTable(candidates)
	return nil
}

type queryResultJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	SourceFile string  `json:"source_file"`
	SectionRef string  `json:"section_ref,omitempty"`
	Text       string  `json:"text"`
}

func printQueryResultsJSON(candidates []retrieval.Candidate) error {
	var out []queryResultJSON
	for i, c := range candidates {
		out = append(out, queryResultJSON{
			Rank:       i + 1,
			Similarity: c.Score,
			SourceFile: c.Chunk.SourceFile,
			SectionRef: c.Chunk.SectionRef,
			Text:       c.Chunk.Text,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printQueryResultsTable(candidates []retrieval.Candidate) {
	fmt.Printf("Found %d passage(s):\n\n", len(candidates))
	for i, c := range candidates {
		fmt.Printf("  %d. [%.1f%%] %s (%s)\n", i+1, c.Score*100, c.Chunk.SourceFile, c.Chunk.SectionRef)
		fmt.Printf("     %s\n\n", truncate(c.Chunk.Text, 160))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
