package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// Tool defaults.
const (
	defaultNResults = 5
	maxNResults     = 50
)

// QueryInput is the input schema for query_documentation.
type QueryInput struct {
	Query           string `json:"query" jsonschema:"the integration question to answer"`
	IncludeTopology bool   `json:"include_topology,omitempty" jsonschema:"also return a Mermaid topology diagram"`
}

// AnalyzeInput is the input schema for analyze_query.
type AnalyzeInput struct {
	Query string `json:"query" jsonschema:"the question to analyse"`
}

// VectorSearchInput is the input schema for search_vector_database.
type VectorSearchInput struct {
	Query      string `json:"query" jsonschema:"text to search for"`
	Collection string `json:"collection,omitempty" jsonschema:"collection key (default all_vendor_docs)"`
	NResults   int    `json:"n_results,omitempty" jsonschema:"maximum number of results (default 5)"`
	Vendor     string `json:"vendor,omitempty" jsonschema:"only return chunks from this vendor"`
}

// VectorSearchOutput is the output schema for search_vector_database.
type VectorSearchOutput struct {
	Collection string       `json:"collection"`
	Results    []domain.Hit `json:"results"`
	Count      int          `json:"count"`
}

// WebSearchInput is the input schema for web_search.
type WebSearchInput struct {
	Query string `json:"query" jsonschema:"the web search query"`
}

// WebSearchOutput is the output schema for web_search.
type WebSearchOutput struct {
	Results []domain.WebResult `json:"results"`
	Count   int                `json:"count"`
}

// StatsInput is the empty input schema for get_collection_stats.
type StatsInput struct{}

// StatsOutput is the output schema for get_collection_stats.
type StatsOutput struct {
	Collections []domain.CollectionStats `json:"collections"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_documentation",
		Description: "Answer a network integration question from vendor documentation",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_query",
		Description: "Identify vendors, products and intent in a question",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_vector_database",
		Description: "Similarity search over one documentation collection",
	}, s.handleVectorSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "web_search",
		Description: "Search the public web",
	}, s.handleWebSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_collection_stats",
		Description: "Document counts and embedding models per collection",
	}, s.handleStats)
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, domain.Answer, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.Answer{}, domain.ErrInvalidInput
	}
	answer := s.ports.Assistant.Ask(ctx, domain.AskRequest{
		Query:           input.Query,
		IncludeTopology: input.IncludeTopology,
	})
	return nil, answer, nil
}

func (s *Server) handleAnalyze(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, domain.QueryAnalysis, error) {
	return nil, s.ports.Assistant.Analyze(input.Query), nil
}

func (s *Server) handleVectorSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VectorSearchInput,
) (*mcp.CallToolResult, VectorSearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, VectorSearchOutput{}, domain.ErrInvalidInput
	}

	key := input.Collection
	if key == "" {
		key = domain.CollectionAllVendorDocs
	}
	n := input.NResults
	if n <= 0 {
		n = defaultNResults
	}
	n = min(n, maxNResults)

	var where map[string]string
	if input.Vendor != "" {
		where = map[string]string{domain.MetaVendor: input.Vendor}
	}

	rs := s.ports.Collections.Query(ctx, key, input.Query, n, where)
	return nil, VectorSearchOutput{
		Collection: rs.Collection,
		Results:    rs.Hits,
		Count:      rs.Len(),
	}, nil
}

func (s *Server) handleWebSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input WebSearchInput,
) (*mcp.CallToolResult, WebSearchOutput, error) {
	if s.ports.Web == nil {
		return nil, WebSearchOutput{}, ErrWebSearchDisabled
	}
	results := s.ports.Web.Search(ctx, input.Query)
	if results == nil {
		results = []domain.WebResult{}
	}
	return nil, WebSearchOutput{Results: results, Count: len(results)}, nil
}

func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Collections.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{Collections: stats}, nil
}
