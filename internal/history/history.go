// Package history persists the ingested-document registry and the verdict
// log, so past decisions remain auditable after the process restarts.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/poleguard/repeal/internal/db"
	"github.com/poleguard/repeal/internal/engine"
)

// Document is one ingested spec document.
type Document struct {
	SourceFile string    `json:"source_file"`
	Chunks     int       `json:"chunks"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Evaluation is one recorded verdict.
type Evaluation struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Infraction    string    `json:"infraction"`
	Status        string    `json:"status"`
	Confidence    float64   `json:"confidence"`
	Band          string    `json:"confidence_band"`
	MatchCount    int       `json:"match_count"`
	TopChunkID    string    `json:"top_chunk_id,omitempty"`
	TopSourceFile string    `json:"top_source_file,omitempty"`
	TopSectionRef string    `json:"top_section_ref,omitempty"`
	TopScore      float64   `json:"top_score,omitempty"`
	CorpusVersion time.Time `json:"corpus_version"`
}

// Stats aggregates the verdict log by status.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// Store provides persistence for documents and evaluations.
type Store struct {
	db *db.DB
}

// NewStore creates a history store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// RecordDocument upserts the registry entry for an ingested document.
// Re-ingesting adds to the chunk count, matching the corpus's strictly
// additive semantics.
func (s *Store) RecordDocument(ctx context.Context, sourceFile string, chunks int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spec_documents (source_file, chunks, ingested_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(source_file) DO UPDATE SET
			chunks = chunks + excluded.chunks,
			ingested_at = excluded.ingested_at`,
		sourceFile, chunks,
	)
	return err
}

// RemoveDocument deletes a document's registry entry.
func (s *Store) RemoveDocument(ctx context.Context, sourceFile string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM spec_documents WHERE source_file = ?`, sourceFile)
	return err
}

// ClearDocuments empties the document registry.
func (s *Store) ClearDocuments(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM spec_documents`)
	return err
}

// ListDocuments returns the registry ordered by ingestion time, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_file, chunks, ingested_at
		FROM spec_documents ORDER BY ingested_at DESC, source_file`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var ingestedAt string
		if err := rows.Scan(&d.SourceFile, &d.Chunks, &ingestedAt); err != nil {
			return nil, err
		}
		d.IngestedAt, _ = time.Parse(time.DateTime, ingestedAt)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// RecordVerdict appends one verdict to the log and returns its assigned id.
func (s *Store) RecordVerdict(ctx context.Context, infraction string, v engine.Verdict, corpusVersion time.Time) (string, error) {
	id := uuid.NewString()

	var topChunkID, topSourceFile, topSectionRef string
	if v.TopMatch != nil {
		topChunkID = v.TopMatch.ID
		topSourceFile = v.TopMatch.SourceFile
		topSectionRef = v.TopMatch.SectionRef
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, infraction, status, confidence, band, match_count,
			top_chunk_id, top_source_file, top_section_ref, top_score, corpus_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, infraction, string(v.Status), v.Confidence, string(v.Band), v.MatchCount,
		topChunkID, topSourceFile, topSectionRef, v.TopScore,
		corpusVersion.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListEvaluations returns recorded verdicts, newest first.
func (s *Store) ListEvaluations(ctx context.Context, limit, offset int) ([]Evaluation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, infraction, status, confidence, band, match_count,
			top_chunk_id, top_source_file, top_section_ref, top_score, corpus_version
		FROM evaluations ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		var e Evaluation
		var createdAt, corpusVersion string
		if err := rows.Scan(&e.ID, &createdAt, &e.Infraction, &e.Status, &e.Confidence,
			&e.Band, &e.MatchCount, &e.TopChunkID, &e.TopSourceFile, &e.TopSectionRef,
			&e.TopScore, &corpusVersion); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		e.CorpusVersion, _ = time.Parse(time.RFC3339Nano, corpusVersion)
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

// EvaluationStats tallies the verdict log by status.
func (s *Store) EvaluationStats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM evaluations GROUP BY status`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	stats := Stats{ByStatus: make(map[string]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
