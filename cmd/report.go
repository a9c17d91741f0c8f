package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/progress"
	"github.com/poleguard/repeal/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Evaluate a batch of infractions and write an audit report",
	Long: `Evaluates every infraction from the input file and writes a Markdown audit
report grouping the verdicts, repealable first. With --html the report is
rendered as a standalone HTML page instead.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("file", "", "file with one infraction per line (required)")
	reportCmd.Flags().String("out", "repeal-report.md", "output path")
	reportCmd.Flags().Bool("html", false, "render the report as HTML")
	reportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	inputFile, _ := cmd.Flags().GetString("file")
	outPath, _ := cmd.Flags().GetString("out")
	asHTML, _ := cmd.Flags().GetBool("html")

	infractions, err := collectInfractions(nil, inputFile)
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

	reporter := progress.NewReporter()
	reporter.Start(len(infractions), "Evaluating infractions")
	results := eval.EvaluateBatch(ctx, infractions, cfg.MaxConcurrency,
		func(done, total int, infraction string) {
			reporter.Update(done, truncate(infraction, 40))
		})
	reporter.Finish()

	if err := recordResults(ctx, cfg, store.Stats().LastUpdated, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: recording verdicts: %v\n", err)
	}

	markdown := report.Markdown(results, store.Stats(), time.Now())

	output := markdown
	if asHTML {
		if output, err = report.HTML(markdown, "Infraction Repeal Audit"); err != nil {
			return fmt.Errorf("rendering HTML: %w", err)
		}
		if strings.HasSuffix(outPath, ".md") {
			outPath = strings.TrimSuffix(outPath, ".md") + ".html"
		}
	}

	if err := os.WriteFile(outPath, []byte(output), 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", outPath, err)
	}

	fmt.Printf("Report written to %s (%d infractions evaluated).\n", outPath, len(results))
	return nil
}
