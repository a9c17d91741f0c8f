package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/db"
	"github.com/poleguard/repeal/internal/history"
	"github.com/poleguard/repeal/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the repeal HTTP server",
	Long:  `Starts the repeal server with a REST API for corpus management, batch evaluation and verdict history, plus a WebSocket endpoint for streaming evaluations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort == 0 {
			serverPort = cfg.Server.Port
		}

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		store, err := openStore(cfg, embedder)
		if err != nil {
			return err
		}

		database, err := db.Open(dbPath(cfg))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		retriever := newRetriever(cfg, embedder, store)
		eval := newEvaluator(cfg, store, retriever)

		srv := server.New(server.Config{
			Port:           serverPort,
			AllowAll:       cfg.Server.AllowAll,
			CorpusPath:     corpusPath(cfg),
			MaxConcurrency: cfg.MaxConcurrency,
		}, store, eval, history.NewStore(database))

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		stats := store.Stats()
		fmt.Fprintf(os.Stderr, "repeal server v%s starting on port %d\n", Version, serverPort)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath(cfg))
		fmt.Fprintf(os.Stderr, "  Corpus: %d chunks across %d documents\n", stats.TotalChunks, stats.TotalFiles)

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(serverCmd)
}
