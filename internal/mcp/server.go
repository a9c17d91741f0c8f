// Package mcp exposes the spec corpus and the decision pipeline as MCP
// tools over stdio, so AI agents can search the corpus and evaluate
// infractions directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/pipeline"
	"github.com/poleguard/repeal/internal/retrieval"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes repeal evaluation tools.
type Server struct {
	store     *corpus.Store
	retriever retrieval.Retriever
	eval      *pipeline.Evaluator
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(store *corpus.Store, retriever retrieval.Retriever, eval *pipeline.Evaluator) *Server {
	s := &Server{
		store:     store,
		retriever: retriever,
		eval:      eval,
	}

	s.mcp = server.NewMCPServer(
		"repeal",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchSpecCorpusTool, s.handleSearchSpecCorpus)
	s.mcp.AddTool(evaluateInfractionTool, s.handleEvaluateInfraction)
	s.mcp.AddTool(getCorpusStatsTool, s.handleGetCorpusStats)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
