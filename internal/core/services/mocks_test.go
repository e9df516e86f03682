package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/netassist/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/netassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/postprocessors"
)

// --- Scraper ---

// mockScraper serves listings and pages from maps.
type mockScraper struct {
	mu       sync.Mutex
	listings map[string][]domain.ScrapedDoc
	pages    map[string]*driven.FetchedDocument
	listErr  error
	fetchErr map[string]error
	fetched  []string
	// fresh records the URLs fetched under driven.WithFreshFetch.
	fresh []string

	// listHook runs inside ListDocuments before it returns.
	listHook func()
}

func newMockScraper() *mockScraper {
	return &mockScraper{
		listings: make(map[string][]domain.ScrapedDoc),
		pages:    make(map[string]*driven.FetchedDocument),
		fetchErr: make(map[string]error),
	}
}

func (m *mockScraper) ListDocuments(_ context.Context, src domain.WatchedSource) ([]domain.ScrapedDoc, error) {
	if m.listHook != nil {
		m.listHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.ScrapedDoc(nil), m.listings[src.URL]...), nil
}

func (m *mockScraper) FetchDocument(ctx context.Context, url string) (*driven.FetchedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, url)
	if driven.FreshFetch(ctx) {
		m.fresh = append(m.fresh, url)
	}
	if err := m.fetchErr[url]; err != nil {
		return nil, err
	}
	page, ok := m.pages[url]
	if !ok {
		return nil, fmt.Errorf("%s: %w", url, domain.ErrNotFound)
	}
	cp := *page
	return &cp, nil
}

func (m *mockScraper) setPage(url, title, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = &driven.FetchedDocument{URL: url, Title: title, Content: content}
}

func (m *mockScraper) setFetchErr(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fetchErr, url)
		return
	}
	m.fetchErr[url] = err
}

func (m *mockScraper) freshFetches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fresh...)
}

func (m *mockScraper) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetched)
}

// --- LLM ---

// mockLLM returns a fixed response and records every conversation.
type mockLLM struct {
	mu        sync.Mutex
	response  string
	err       error
	chats     [][]driven.ChatMessage
	prompts   []string
	chatOpts  []driven.ChatOptions
	pingError error
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats = append(m.chats, messages)
	m.chatOpts = append(m.chatOpts, opts)
	return m.response, m.err
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(context.Context) error { return m.pingError }

func (m *mockLLM) Close() error { return nil }

// --- Prompts ---

// mockPrompts serves short templates with the same verbs as the real ones.
type mockPrompts struct {
	templates map[string]string
	loadErr   error
}

func newMockPrompts() *mockPrompts {
	return &mockPrompts{templates: map[string]string{
		driven.PromptSystem:       "You are a network integration assistant.",
		driven.PromptIntegration:  "LOCAL\n%s\nQ: %s",
		driven.PromptWebAugmented: "WEB\n%s\nQ: %s",
		driven.PromptTopology:     "intent=%s vendors=%s products=%s answer=%s",
	}}
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	tmpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
	}
	return tmpl, nil
}

func (m *mockPrompts) Reload() {}

// --- Web search ---

type mockWeb struct {
	mu      sync.Mutex
	results []domain.WebResult
	queries []string
}

func (m *mockWeb) Search(_ context.Context, query string) []domain.WebResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	return m.results
}

func (m *mockWeb) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// --- Collections ---

// mockCollections returns canned result sets keyed by logical key.
type mockCollections struct {
	mu       sync.Mutex
	sets     map[string]domain.ResultSet
	queries  []collectionQuery
	queryAll int
	panicOn  string
}

type collectionQuery struct {
	key   string
	text  string
	where map[string]string
}

func newMockCollections() *mockCollections {
	return &mockCollections{sets: make(map[string]domain.ResultSet)}
}

func (m *mockCollections) InitializeCollections(context.Context) error { return nil }

func (m *mockCollections) ResolveCollection(key string) string { return key }

func (m *mockCollections) AddDocuments(_ context.Context, _ string, chunks []domain.Chunk) (int, error) {
	return len(chunks), nil
}

func (m *mockCollections) Query(_ context.Context, key, text string, _ int, where map[string]string) domain.ResultSet {
	if m.panicOn != "" && key == m.panicOn {
		panic("query exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, collectionQuery{key: key, text: text, where: where})
	if rs, ok := m.sets[key]; ok {
		return rs
	}
	return domain.EmptyResultSet(key)
}

func (m *mockCollections) QueryAll(_ context.Context, _ string, _ int) []domain.ResultSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryAll++
	out := make([]domain.ResultSet, 0, len(m.sets))
	for _, rs := range m.sets {
		out = append(out, rs)
	}
	return out
}

func (m *mockCollections) ResetDatabase(context.Context) error { return nil }

func (m *mockCollections) Stats(context.Context) ([]domain.CollectionStats, error) {
	return nil, nil
}

// vectorSet builds a vector result set with one hit per id.
func vectorSet(collection string, ids ...string) domain.ResultSet {
	rs := domain.EmptyResultSet(collection)
	for _, id := range ids {
		rs.Hits = append(rs.Hits, domain.Hit{
			ID:       id,
			Document: "document " + id,
			Metadata: domain.Metadata{domain.MetaTitle: "Title " + id, domain.MetaVendor: "cisco"},
			Distance: 0.2,
		})
	}
	return rs
}

// --- Embedding ---

// failingEmbedder wraps the hashing embedder and fails on demand.
type failingEmbedder struct {
	*hashing.EmbeddingService
	err error
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.EmbeddingService.Embed(ctx, text)
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.EmbeddingService.EmbedBatch(ctx, texts)
}

// --- Vector store ---

// flakyStore wraps the memory store and fails selected operations.
type flakyStore struct {
	*memory.VectorStore
	deleteErr error
	upsertErr error
}

func (f *flakyStore) DeleteCollection(ctx context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.VectorStore.DeleteCollection(ctx, name)
}

func (f *flakyStore) Upsert(ctx context.Context, name string, records []domain.VectorRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorStore.Upsert(ctx, name, records)
}

// --- Fixtures ---

var errBoom = errors.New("boom")

// testPipeline returns the default chunker and metadata pipeline.
func testPipeline(t *testing.T, size, overlap int) driven.PostProcessorPipeline {
	t.Helper()
	p, err := postprocessors.NewDefaultRegistry().Pipeline(
		domain.PipelineConfigFor(domain.ChunkingSettings{Size: size, Overlap: overlap}))
	require.NoError(t, err)
	return p
}

// testLedger returns a ledger persisted under a temporary directory.
func testLedger(t *testing.T) *file.Ledger {
	t.Helper()
	l, err := file.NewLedger(t.TempDir())
	require.NoError(t, err)
	return l
}

// testCollections returns an initialised manager over an in-memory store.
func testCollections(t *testing.T, layout domain.CollectionLayout, ledger driven.IngestionLedger) (*CollectionManager, *memory.VectorStore) {
	t.Helper()
	store := memory.NewVectorStore()
	m := NewCollectionManager(store, hashing.NewEmbeddingService(0), domain.NewRoutingPolicy(layout), WithLedger(ledger))
	require.NoError(t, m.InitializeCollections(context.Background()))
	return m, store
}
