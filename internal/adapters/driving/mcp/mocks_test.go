package mcp

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// mockAssistant is a mock implementation of driving.Assistant.
type mockAssistant struct {
	answer   domain.Answer
	analysis domain.QueryAnalysis
	requests []domain.AskRequest
}

func (m *mockAssistant) Ask(_ context.Context, req domain.AskRequest) domain.Answer {
	m.requests = append(m.requests, req)
	return m.answer
}

func (m *mockAssistant) Analyze(query string) domain.QueryAnalysis {
	a := m.analysis
	a.OriginalQuery = query
	return a
}

// mockCollections is a mock implementation of driving.CollectionService.
type mockCollections struct {
	result    domain.ResultSet
	stats     []domain.CollectionStats
	err       error
	lastKey   string
	lastN     int
	lastWhere map[string]string
}

func (m *mockCollections) InitializeCollections(context.Context) error { return nil }

func (m *mockCollections) ResolveCollection(key string) string {
	if key == "cisco" {
		return domain.CollectionAllVendorDocs
	}
	return key
}

func (m *mockCollections) AddDocuments(_ context.Context, _ string, chunks []domain.Chunk) (int, error) {
	return len(chunks), nil
}

func (m *mockCollections) Query(_ context.Context, key, _ string, n int, where map[string]string) domain.ResultSet {
	m.lastKey, m.lastN, m.lastWhere = key, n, where
	rs := m.result
	if rs.Collection == "" {
		rs = domain.EmptyResultSet(key)
	}
	return rs
}

func (m *mockCollections) QueryAll(context.Context, string, int) []domain.ResultSet { return nil }

func (m *mockCollections) ResetDatabase(context.Context) error { return nil }

func (m *mockCollections) Stats(context.Context) ([]domain.CollectionStats, error) {
	return m.stats, m.err
}

// mockWeb is a mock implementation of driven.WebSearcher.
type mockWeb struct {
	results []domain.WebResult
}

func (m *mockWeb) Search(context.Context, string) []domain.WebResult { return m.results }

// mockUpdates is a mock implementation of driving.UpdateService.
type mockUpdates struct {
	sources []domain.WatchedSource
}

func (m *mockUpdates) Check(context.Context, domain.WatchedSource) (domain.UpdateReport, error) {
	return domain.UpdateReport{}, nil
}

func (m *mockUpdates) CheckAll(context.Context) ([]domain.UpdateReport, error) { return nil, nil }

func (m *mockUpdates) Sources() []domain.WatchedSource { return m.sources }

func testPorts() *Ports {
	return &Ports{Assistant: &mockAssistant{}, Collections: &mockCollections{}}
}
