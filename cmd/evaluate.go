package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/config"
	"github.com/poleguard/repeal/internal/db"
	"github.com/poleguard/repeal/internal/history"
	"github.com/poleguard/repeal/internal/pipeline"
	"github.com/poleguard/repeal/internal/progress"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [infraction]",
	Short: "Evaluate infractions against the specification corpus",
	Long: `Evaluates one infraction statement, or a batch read from a file with one
infraction per line, and prints the verdict for each: REPEALABLE,
POTENTIALLY_REPEALABLE or VALID_INFRACTION.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("file", "", "file with one infraction per line")
	evaluateCmd.Flags().Bool("json", false, "output verdicts as JSON")
	evaluateCmd.Flags().Bool("no-record", false, "do not record verdicts in history")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	inputFile, _ := cmd.Flags().GetString("file")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	infractions, err := collectInfractions(args, inputFile)
	if err != nil {
		return err
	}

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
	if store.Stats().TotalChunks == 0 {
		return fmt.Errorf("corpus is empty: run `repeal ingest` first")
	}

	retriever := newRetriever(cfg, embedder, store)
	eval := newEvaluator(cfg, store, retriever)

	var reporter progress.Reporter
	if len(infractions) > 1 && !jsonOutput {
		reporter = progress.NewReporter()
		reporter.Start(len(infractions), "Evaluating infractions")
	}

	results := eval.EvaluateBatch(ctx, infractions, cfg.MaxConcurrency,
		func(done, total int, infraction string) {
			if reporter != nil {
				reporter.Update(done, truncate(infraction, 40))
			}
		})
	if reporter != nil {
		reporter.Finish()
	}

	if !noRecord {
		if err := recordResults(ctx, cfg, store.Stats().LastUpdated, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: recording verdicts: %v\n", err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Results []pipeline.Result `json:"results"`
			Summary pipeline.Summary  `json:"summary"`
		}{results, pipeline.Summarize(results)})
	}

	printResults(results)
	return nil
}

// collectInfractions merges the positional argument and the input file,
// skipping blank lines.
func collectInfractions(args []string, inputFile string) ([]string, error) {
	var infractions []string
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		infractions = append(infractions, args[0])
	}

	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", inputFile, err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				infractions = append(infractions, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", inputFile, err)
		}
	}

	if len(infractions) == 0 {
		return nil, fmt.Errorf("no infractions given: pass one as an argument or use --file")
	}
	return infractions, nil
}

// recordResults appends the successful verdicts to the history database.
func recordResults(ctx context.Context, cfg *config.Config, corpusVersion time.Time, results []pipeline.Result) error {
	database, err := db.Open(dbPath(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	hist := history.NewStore(database)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if _, err := hist.RecordVerdict(ctx, r.Infraction, r.Verdict, corpusVersion); err != nil {
			return err
		}
	}
	return nil
}

func printResults(results []pipeline.Result) {
	summary := pipeline.Summarize(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  %d. FAILED: %s\n     error: %v\n\n", r.Index+1, truncate(r.Infraction, 70), r.Err)
			continue
		}
		fmt.Printf("  %d. %s (%.0f%% confidence, %s)\n     %s\n", r.Index+1, r.Verdict.Status,
			r.Verdict.Confidence*100, r.Verdict.Band, truncate(r.Infraction, 70))
		if top := r.Verdict.TopMatch; top != nil {
			fmt.Printf("     evidence: %s (%s) at %.1f%%\n", top.SourceFile, top.SectionRef, r.Verdict.TopScore*100)
		}
		fmt.Println()
	}

	fmt.Printf("Summary: %d repealable, %d potentially repealable, %d valid", summary.Repealable,
		summary.PotentiallyRepealable, summary.ValidInfractions)
	if summary.Failed > 0 {
		fmt.Printf(", %d failed", summary.Failed)
	}
	fmt.Println()
}
