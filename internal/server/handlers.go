package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/poleguard/repeal/internal/embeddings"
	"github.com/poleguard/repeal/internal/history"
	"github.com/poleguard/repeal/internal/pipeline"
)

// ingestRequest is the payload for POST /api/specs.
type ingestRequest struct {
	SourceFile string `json:"source_file"`
	Text       string `json:"text"`
}

// ingestResponse reports the outcome of an ingestion.
type ingestResponse struct {
	SourceFile string `json:"source_file"`
	Chunks     int    `json:"chunks"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.SourceFile == "" {
		writeError(w, http.StatusBadRequest, "source_file is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	count, err := s.store.Ingest(r.Context(), req.Text, req.SourceFile)
	if err != nil {
		var embErr *embeddings.EmbeddingError
		if errors.As(err, &embErr) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.history != nil {
		if err := s.history.RecordDocument(r.Context(), req.SourceFile, count); err != nil {
			log.Printf("server: recording document %s: %v", req.SourceFile, err)
		}
	}
	s.persistCorpus()

	writeJSON(w, http.StatusCreated, ingestResponse{SourceFile: req.SourceFile, Chunks: count})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	sourceFile := chi.URLParam(r, "*")
	if sourceFile == "" {
		writeError(w, http.StatusBadRequest, "source file is required")
		return
	}

	removed := s.store.RemoveSource(sourceFile)
	if removed == 0 {
		writeError(w, http.StatusNotFound, "no chunks for source file "+sourceFile)
		return
	}

	if s.history != nil {
		if err := s.history.RemoveDocument(r.Context(), sourceFile); err != nil {
			log.Printf("server: removing document %s: %v", sourceFile, err)
		}
	}
	s.persistCorpus()

	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	if s.history != nil {
		if err := s.history.ClearDocuments(r.Context()); err != nil {
			log.Printf("server: clearing documents: %v", err)
		}
	}
	s.persistCorpus()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

// evaluateRequest is the payload for POST /api/evaluate.
type evaluateRequest struct {
	Infractions []string `json:"infractions"`
}

// evaluateResponse carries per-infraction verdicts plus a batch summary.
type evaluateResponse struct {
	Results []pipeline.Result `json:"results"`
	Summary pipeline.Summary  `json:"summary"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if len(req.Infractions) == 0 {
		writeError(w, http.StatusBadRequest, "infractions is required")
		return
	}

	results := s.eval.EvaluateBatch(r.Context(), req.Infractions, s.cfg.MaxConcurrency, nil)

	// A batch where every entry failed on the embedding provider is an
	// outage, not a partial failure.
	if allEmbeddingFailures(results) {
		writeError(w, http.StatusServiceUnavailable, results[0].Err.Error())
		return
	}

	if s.history != nil {
		version := s.store.Stats().LastUpdated
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			if _, err := s.history.RecordVerdict(r.Context(), res.Infraction, res.Verdict, version); err != nil {
				log.Printf("server: recording verdict: %v", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Results: results,
		Summary: pipeline.Summarize(results),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	evals, err := s.history.ListEvaluations(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if evals == nil {
		evals = []history.Evaluation{}
	}
	writeJSON(w, http.StatusOK, evals)
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	stats, err := s.history.EvaluationStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func allEmbeddingFailures(results []pipeline.Result) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		var embErr *embeddings.EmbeddingError
		if r.Err == nil || !errors.As(r.Err, &embErr) {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
