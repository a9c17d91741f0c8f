package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchSpecCorpusTool defines the search_spec_corpus MCP tool.
var searchSpecCorpusTool = mcp.NewTool("search_spec_corpus",
	mcp.WithDescription("Search the ingested specification corpus semantically. Returns the most similar spec passages with their source documents and similarity scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of passages to return (default 5)"),
	),
	mcp.WithNumber("min_similarity",
		mcp.Description("Similarity floor between 0 and 1 (default uses the configured threshold)"),
	),
)

// evaluateInfractionTool defines the evaluate_infraction MCP tool.
var evaluateInfractionTool = mcp.NewTool("evaluate_infraction",
	mcp.WithDescription("Evaluate an infraction statement against the specification corpus and return a repeal verdict: REPEALABLE, POTENTIALLY_REPEALABLE or VALID_INFRACTION, with confidence and supporting evidence."),
	mcp.WithString("infraction",
		mcp.Required(),
		mcp.Description("The infraction statement to evaluate"),
	),
)

// getCorpusStatsTool defines the get_corpus_stats MCP tool.
var getCorpusStatsTool = mcp.NewTool("get_corpus_stats",
	mcp.WithDescription("Get statistics about the ingested specification corpus: chunk count, document count and last update time."),
)
