package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
)

// Ensure CollectionManager implements the interface.
var _ driving.CollectionService = (*CollectionManager)(nil)

// chunkIDLength is the hex length of chunk identifiers (128 bits).
const chunkIDLength = 32

// CollectionManager owns the logical collections in the vector store.
// It is built once and shared by ingestion, retrieval and updates.
type CollectionManager struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
	ledger   driven.IngestionLedger
	policy   domain.RoutingPolicy
	metrics  *metrics.Metrics
	now      func() time.Time

	mu    sync.RWMutex
	known map[string]domain.CollectionInfo
}

// CollectionOption configures a CollectionManager.
type CollectionOption func(*CollectionManager)

// WithLedger sets the ingestion ledger cleared by ResetDatabase.
func WithLedger(l driven.IngestionLedger) CollectionOption {
	return func(m *CollectionManager) { m.ledger = l }
}

// WithCollectionMetrics sets the metrics sink.
func WithCollectionMetrics(mt *metrics.Metrics) CollectionOption {
	return func(m *CollectionManager) { m.metrics = mt }
}

// WithClock overrides the clock used for added_at and created_at.
func WithClock(now func() time.Time) CollectionOption {
	return func(m *CollectionManager) { m.now = now }
}

// NewCollectionManager creates a manager. Call InitializeCollections before use.
func NewCollectionManager(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	policy domain.RoutingPolicy,
	opts ...CollectionOption,
) *CollectionManager {
	m := &CollectionManager{
		store:    store,
		embedder: embedder,
		policy:   policy,
		now:      time.Now,
		known:    make(map[string]domain.CollectionInfo),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InitializeCollections gets or creates every managed collection and seeds
// empty ones with a placeholder record. It is idempotent.
func (m *CollectionManager) InitializeCollections(ctx context.Context) error {
	logger.Section("Initialise Collections")

	var errs []error
	for _, spec := range m.policy.Specs() {
		if _, err := m.ensure(ctx, spec); err != nil {
			logger.Error("collections: initialise %s: %v", spec.Name, err)
			errs = append(errs, fmt.Errorf("collection %s: %w", spec.Name, err))
		}
	}
	m.CheckEmbeddingConsistency(ctx)
	return errors.Join(errs...)
}

// ensure creates the collection if needed and seeds a placeholder when empty.
func (m *CollectionManager) ensure(ctx context.Context, spec domain.CollectionSpec) (domain.CollectionInfo, error) {
	info, err := m.store.EnsureCollection(ctx, domain.CollectionInfo{
		Name:      spec.Name,
		Type:      spec.Type,
		Vendor:    spec.Vendor,
		Dimension: m.embedder.Dimensions(),
		Model:     m.embedder.ModelName(),
		CreatedAt: m.now().UTC(),
	})
	if err != nil {
		return domain.CollectionInfo{}, err
	}

	count, err := m.store.Count(ctx, spec.Name, true)
	if err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("count: %w", err)
	}
	if count == 0 {
		placeholder := domain.VectorRecord{
			ID:   spec.Name + "_placeholder",
			Text: "Placeholder document for " + spec.Name,
			Metadata: domain.Metadata{
				domain.MetaType:   domain.TypePlaceholder,
				domain.MetaVendor: domain.UnknownValue,
			},
			Embedding: make([]float32, info.Dimension),
		}
		if err := m.store.Upsert(ctx, spec.Name, []domain.VectorRecord{placeholder}); err != nil {
			return domain.CollectionInfo{}, fmt.Errorf("seed placeholder: %w", err)
		}
		logger.Debug("collections: seeded placeholder in %s", spec.Name)
	}

	m.mu.Lock()
	m.known[info.Name] = info
	m.mu.Unlock()
	return info, nil
}

// ResolveCollection maps a logical key to its physical collection.
func (m *CollectionManager) ResolveCollection(key string) string {
	return m.policy.Resolve(key)
}

// lookup returns cached collection info, falling back to the store.
func (m *CollectionManager) lookup(ctx context.Context, name string) (domain.CollectionInfo, bool) {
	m.mu.RLock()
	info, ok := m.known[name]
	m.mu.RUnlock()
	if ok {
		return info, true
	}

	info, err := m.store.GetCollection(ctx, name)
	if err != nil {
		return domain.CollectionInfo{}, false
	}
	m.mu.Lock()
	m.known[name] = info
	m.mu.Unlock()
	return info, true
}

// ChunkID derives a stable identifier from the source URL, chunk position
// and content. Re-adding identical content overwrites instead of duplicating.
func ChunkID(sourceURL string, index int, content string) string {
	h := sha256.New()
	h.Write([]byte(sourceURL))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(index)))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))[:chunkIDLength]
}

// AddDocuments embeds chunks in one batch and stores them with a single bulk
// upsert. It returns the number of chunks stored; a nil error with a
// positive count is the only signal that documents were persisted.
func (m *CollectionManager) AddDocuments(ctx context.Context, key string, chunks []domain.Chunk) (int, error) {
	name := m.ResolveCollection(key)

	info, ok := m.lookup(ctx, name)
	if !ok {
		spec := domain.CollectionSpec{Name: name, Type: domain.CollectionTypeVendor, Vendor: domain.NormaliseKey(key)}
		var err error
		if info, err = m.ensure(ctx, spec); err != nil {
			logger.Error("collections: create %s: %v", name, err)
			return 0, fmt.Errorf("create collection %s: %w", name, err)
		}
	}

	dim := m.embedder.Dimensions()
	if info.Dimension != 0 && info.Dimension != dim {
		logger.Warn("collections: %s was created with dimension %d (%s) but the active model %s produces %d",
			name, info.Dimension, info.Model, m.embedder.ModelName(), dim)
	}

	addedAt := m.now().UTC().Format(time.RFC3339)
	texts := make([]string, 0, len(chunks))
	records := make([]domain.VectorRecord, 0, len(chunks))
	for i, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			logger.Warn("collections: skipping empty chunk %d for %s", i, name)
			continue
		}
		md := m.stampMetadata(c.Metadata, key, dim, addedAt)

		index := i
		if v, ok := md[domain.MetaChunkIndex].(int); ok {
			index = v
		}
		records = append(records, domain.VectorRecord{
			ID:       ChunkID(md.String(domain.MetaURL), index, c.Text),
			Text:     c.Text,
			Metadata: md,
		})
		texts = append(texts, c.Text)
	}
	if len(records) == 0 {
		return 0, nil
	}

	embeddings, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Error("collections: embed %d chunks for %s: %v", len(texts), name, err)
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(records) {
		return 0, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(records))
	}
	for i := range records {
		if len(embeddings[i]) != dim {
			logger.Warn("collections: embedding %d has dimension %d, expected %d", i, len(embeddings[i]), dim)
		}
		records[i].Embedding = embeddings[i]
	}

	if err := m.store.Upsert(ctx, name, records); err != nil {
		logger.Error("collections: upsert %d chunks into %s: %v", len(records), name, err)
		return 0, fmt.Errorf("store chunks in %s: %w", name, err)
	}

	logger.Info("collections: added %d chunks to %s", len(records), name)
	m.metrics.RecordIngest(name, len(records))
	return len(records), nil
}

// stampMetadata fills the fields every stored chunk must carry.
func (m *CollectionManager) stampMetadata(in domain.Metadata, key string, dim int, addedAt string) domain.Metadata {
	md := in.Clone()

	vendor := strings.ToLower(strings.TrimSpace(md.String(domain.MetaVendor)))
	if vendor == "" || vendor == strings.ToLower(domain.UnknownValue) {
		if k := domain.NormaliseKey(key); k != "" {
			vendor = k
		}
	}
	if vendor == "" {
		vendor = strings.ToLower(domain.UnknownValue)
	}
	md[domain.MetaVendor] = vendor

	for _, field := range []string{domain.MetaProductLine, domain.MetaRelease} {
		if md.String(field) == "" {
			md[field] = domain.UnknownValue
		}
	}
	md[domain.MetaEmbeddingModel] = m.embedder.ModelName()
	md[domain.MetaEmbeddingDimension] = dim
	md[domain.MetaAddedAt] = addedAt
	return md
}

// Query ranks the chunks of a collection by similarity to text. Unknown
// collections fall back through the general collections. Failures yield an
// empty result set.
func (m *CollectionManager) Query(ctx context.Context, key, text string, n int, where map[string]string) domain.ResultSet {
	return m.query(ctx, m.ResolveCollection(key), text, n, where)
}

// query searches a physical collection.
func (m *CollectionManager) query(ctx context.Context, name, text string, n int, where map[string]string) domain.ResultSet {
	if _, ok := m.lookup(ctx, name); !ok {
		fallback := ""
		for _, candidate := range domain.FallbackCollections {
			if _, ok := m.lookup(ctx, candidate); ok {
				fallback = candidate
				break
			}
		}
		if fallback == "" {
			logger.Warn("collections: no collection %q and no fallback available", name)
			return domain.EmptyResultSet(name)
		}
		logger.Debug("collections: %q unknown, falling back to %s", name, fallback)
		name = fallback
	}

	if n <= 0 {
		n = 3
	}
	if strings.TrimSpace(text) == "" {
		return domain.EmptyResultSet(name)
	}

	emb, err := m.embedder.Embed(ctx, text)
	if err != nil {
		logger.Error("collections: embed query for %s: %v", name, err)
		return domain.EmptyResultSet(name)
	}

	hits, err := m.store.Query(ctx, name, emb, n, where)
	if err != nil {
		logger.Error("collections: query %s: %v", name, err)
		return domain.EmptyResultSet(name)
	}

	rs := domain.EmptyResultSet(name)
	for _, h := range hits {
		if h.Metadata.String(domain.MetaType) == domain.TypePlaceholder {
			continue
		}
		rs.Hits = append(rs.Hits, h)
	}
	sort.SliceStable(rs.Hits, func(i, j int) bool { return rs.Hits[i].Distance < rs.Hits[j].Distance })
	if len(rs.Hits) > n {
		rs.Hits = rs.Hits[:n]
	}
	logger.Debug("collections: %s returned %d hits", name, len(rs.Hits))
	return rs
}

// QueryAll runs the query against every managed collection.
func (m *CollectionManager) QueryAll(ctx context.Context, text string, n int) []domain.ResultSet {
	specs := m.policy.Specs()
	out := make([]domain.ResultSet, 0, len(specs))
	for _, spec := range specs {
		out = append(out, m.query(ctx, spec.Name, text, n, nil))
	}
	return out
}

// ResetDatabase deletes every collection, recreates the managed ones and
// then clears the ingestion ledger. When deletion or recreation fails the
// ledger is left untouched.
func (m *CollectionManager) ResetDatabase(ctx context.Context) error {
	logger.Section("Reset Database")

	infos, err := m.store.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, info := range infos {
		if err := m.store.DeleteCollection(ctx, info.Name); err != nil {
			return fmt.Errorf("delete collection %s: %w", info.Name, err)
		}
		logger.Info("collections: deleted %s", info.Name)
	}

	m.mu.Lock()
	m.known = make(map[string]domain.CollectionInfo)
	m.mu.Unlock()

	if err := m.InitializeCollections(ctx); err != nil {
		return fmt.Errorf("reinitialise collections: %w", err)
	}

	if m.ledger != nil {
		if err := m.ledger.Reset(); err != nil {
			return fmt.Errorf("reset ingestion ledger: %w", err)
		}
	}
	return nil
}

// CheckEmbeddingConsistency reports whether every collection was created
// with the active embedding dimension. Mismatches are logged.
func (m *CollectionManager) CheckEmbeddingConsistency(ctx context.Context) bool {
	infos, err := m.store.ListCollections(ctx)
	if err != nil {
		logger.Warn("collections: consistency check: %v", err)
		return false
	}

	dim := m.embedder.Dimensions()
	consistent := true
	for _, info := range infos {
		if info.Dimension != 0 && info.Dimension != dim {
			consistent = false
			logger.Warn("collections: %s uses %s (%d dims) but the active model is %s (%d dims); reset the database to re-embed",
				info.Name, info.Model, info.Dimension, m.embedder.ModelName(), dim)
		}
	}
	return consistent
}

// Stats summarises every collection. Placeholders are not counted.
func (m *CollectionManager) Stats(ctx context.Context) ([]domain.CollectionStats, error) {
	infos, err := m.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	stats := make([]domain.CollectionStats, 0, len(infos))
	for _, info := range infos {
		count, err := m.store.Count(ctx, info.Name, false)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", info.Name, err)
		}
		stats = append(stats, domain.CollectionStats{
			Name:      info.Name,
			Type:      info.Type,
			Documents: count,
			Dimension: info.Dimension,
			Model:     info.Model,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}
