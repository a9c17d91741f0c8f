package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/corpus"
	mcpserver "github.com/poleguard/repeal/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing corpus search and infraction evaluation tools for AI agents.`,
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
			// Stdout carries the MCP protocol; warnings go to stderr.
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			fmt.Fprintf(os.Stderr, "Starting with an empty corpus. Run `repeal ingest` first.\n")
			store = corpus.NewStore(embedder, cfg.MaxChunkChars)
		}

		retriever := newRetriever(cfg, embedder, store)
		eval := newEvaluator(cfg, store, retriever)

		mcpserver.Version = Version

		stats := store.Stats()
		fmt.Fprintf(os.Stderr, "repeal MCP server started on stdio (%d chunks across %d documents)\n",
			stats.TotalChunks, stats.TotalFiles)

		srv := mcpserver.NewServer(store, retriever, eval)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
