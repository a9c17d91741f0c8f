// Package server exposes the corpus and the decision pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/history"
	"github.com/poleguard/repeal/internal/pipeline"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowAll       bool   // allow all CORS origins (dev mode)
	CorpusPath     string // on-disk corpus location, persisted after mutations
	MaxConcurrency int    // batch evaluation workers
}

// Server is the repeal evaluation server.
type Server struct {
	cfg        Config
	store      *corpus.Store
	eval       *pipeline.Evaluator
	history    *history.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over the given corpus store, evaluator and history
// store. The history store may be nil to disable persistence of verdicts.
func New(cfg Config, store *corpus.Store, eval *pipeline.Evaluator, hist *history.Store) *Server {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 5
	}
	s := &Server{
		cfg:     cfg,
		store:   store,
		eval:    eval,
		history: hist,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/specs", s.handleIngest)
		r.Delete("/specs", s.handleClear)
		r.Delete("/specs/*", s.handleRemove)
		r.Get("/specs/stats", s.handleStats)

		r.Post("/evaluate", s.handleEvaluate)

		r.Get("/history", s.handleHistory)
		r.Get("/history/stats", s.handleHistoryStats)
	})

	r.Get("/ws/evaluate", s.handleWebSocket)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("repeal server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// persistCorpus writes the corpus to disk after a mutation. Failures are
// logged but do not fail the request: the in-memory state is already
// updated and a later mutation will retry the save.
func (s *Server) persistCorpus() {
	if s.cfg.CorpusPath == "" {
		return
	}
	if err := s.store.SaveFile(s.cfg.CorpusPath); err != nil {
		log.Printf("server: saving corpus to %s: %v", s.cfg.CorpusPath, err)
	}
}
