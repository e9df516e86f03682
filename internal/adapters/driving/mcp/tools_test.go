package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the assistant answer", func(t *testing.T) {
		assistant := &mockAssistant{answer: domain.Answer{
			Response:      "Use VXLAN EVPN.",
			Topology:      "graph TD\n  A-->B",
			UsedWebSearch: true,
		}}
		ports := testPorts()
		ports.Assistant = assistant
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleQuery(ctx, nil, QueryInput{Query: "cisco to aruba", IncludeTopology: true})

		require.NoError(t, err)
		assert.Equal(t, "Use VXLAN EVPN.", out.Response)
		assert.True(t, out.UsedWebSearch)
		require.Len(t, assistant.requests, 1)
		assert.True(t, assistant.requests[0].IncludeTopology)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Query: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleAnalyze(t *testing.T) {
	ports := testPorts()
	ports.Assistant = &mockAssistant{analysis: domain.QueryAnalysis{
		SourceVendor: "Cisco",
		Intent:       domain.IntentMigration,
	}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, out, err := server.handleAnalyze(context.Background(), nil, AnalyzeInput{Query: "migrate from cisco"})

	require.NoError(t, err)
	assert.Equal(t, "Cisco", out.SourceVendor)
	assert.Equal(t, domain.IntentMigration, out.Intent)
	assert.Equal(t, "migrate from cisco", out.OriginalQuery)
}

func TestServer_handleVectorSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		collections := &mockCollections{}
		ports := testPorts()
		ports.Collections = collections
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleVectorSearch(ctx, nil, VectorSearchInput{Query: "vsx"})

		require.NoError(t, err)
		assert.Equal(t, domain.CollectionAllVendorDocs, collections.lastKey)
		assert.Equal(t, defaultNResults, collections.lastN)
		assert.Nil(t, collections.lastWhere)
		assert.Equal(t, 0, out.Count)
		assert.NotNil(t, out.Results)
	})

	t.Run("collection, cap and vendor filter", func(t *testing.T) {
		collections := &mockCollections{result: domain.ResultSet{
			Collection: domain.CollectionErrorCodes,
			Source:     domain.ResultSourceVector,
			Hits:       []domain.Hit{{ID: "e1", Document: "%LINK-3-UPDOWN", Distance: 0.1}},
		}}
		ports := testPorts()
		ports.Collections = collections
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleVectorSearch(ctx, nil, VectorSearchInput{
			Query: "link down", Collection: "error_codes", NResults: 500, Vendor: "cisco",
		})

		require.NoError(t, err)
		assert.Equal(t, maxNResults, collections.lastN)
		assert.Equal(t, map[string]string{domain.MetaVendor: "cisco"}, collections.lastWhere)
		assert.Equal(t, domain.CollectionErrorCodes, out.Collection)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "e1", out.Results[0].ID)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, _, err = server.handleVectorSearch(ctx, nil, VectorSearchInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleWebSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, _, err = server.handleWebSearch(ctx, nil, WebSearchInput{Query: "bgp"})
		assert.ErrorIs(t, err, ErrWebSearchDisabled)
	})

	t.Run("returns results", func(t *testing.T) {
		ports := testPorts()
		ports.Web = &mockWeb{results: []domain.WebResult{{Title: "BGP", Link: "https://example.com"}}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleWebSearch(ctx, nil, WebSearchInput{Query: "bgp"})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "BGP", out.Results[0].Title)
	})

	t.Run("nil results become empty", func(t *testing.T) {
		ports := testPorts()
		ports.Web = &mockWeb{}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleWebSearch(ctx, nil, WebSearchInput{Query: "bgp"})
		require.NoError(t, err)
		assert.NotNil(t, out.Results)
	})
}

func TestServer_handleStats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats", func(t *testing.T) {
		ports := testPorts()
		ports.Collections = &mockCollections{stats: []domain.CollectionStats{
			{Name: "all_vendor_docs", Documents: 42, Dimension: 768},
		}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleStats(ctx, nil, StatsInput{})
		require.NoError(t, err)
		require.Len(t, out.Collections, 1)
		assert.Equal(t, 42, out.Collections[0].Documents)
	})

	t.Run("propagates errors", func(t *testing.T) {
		ports := testPorts()
		ports.Collections = &mockCollections{err: errors.New("store closed")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleStats(ctx, nil, StatsInput{})
		assert.ErrorContains(t, err, "store closed")
	})
}
