package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/poleguard/repeal/internal/retrieval"
)

// handleSearchSpecCorpus performs semantic search over the spec corpus.
func (s *Server) handleSearchSpecCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	minSimilarity := request.GetFloat("min_similarity", s.eval.Thresholds().MinSimilarity)
	if minSimilarity < 0 || minSimilarity > 1 {
		return mcp.NewToolResultError("min_similarity must be between 0 and 1"), nil
	}

	candidates, err := s.retriever.Retrieve(ctx, query, minSimilarity)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if len(candidates) == 0 {
		if s.store.Stats().TotalChunks == 0 {
			return mcp.NewToolResultText("The corpus is empty. Run `repeal ingest` to load specification documents."), nil
		}
		return mcp.NewToolResultText("No spec passages matched the query above the similarity floor."), nil
	}

	return mcp.NewToolResultText(formatCandidates(candidates)), nil
}

// handleEvaluateInfraction runs the full decision pipeline for one infraction.
func (s *Server) handleEvaluateInfraction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infraction, err := request.RequireString("infraction")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: infraction"), nil
	}

	verdict, err := s.eval.Evaluate(ctx, infraction)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding verdict: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleGetCorpusStats returns corpus statistics.
func (s *Server) handleGetCorpusStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(s.store.Stats(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding stats: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// formatCandidates converts retrieval candidates into a rich text format
// optimized for AI agent consumption.
func formatCandidates(candidates []retrieval.Candidate) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d passage(s):\n", len(candidates)))

	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("\n--- Passage %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Source: %s (%s)\n", c.Chunk.SourceFile, c.Chunk.SectionRef))
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", c.Score*100))
		sb.WriteString("\n")
		sb.WriteString(c.Chunk.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}
