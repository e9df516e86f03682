package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/netassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/netassist/internal/core/domain"
)

func bgpChunks() []domain.Chunk {
	return []domain.Chunk{
		{
			Text:     "BGP route reflectors reduce the number of iBGP sessions in an autonomous system.",
			Metadata: domain.Metadata{domain.MetaURL: "https://www.cisco.com/bgp.html", domain.MetaVendor: "cisco", domain.MetaChunkIndex: 0},
		},
		{
			Text:     "VLAN trunking carries several VLANs over a single 802.1Q link between switches.",
			Metadata: domain.Metadata{domain.MetaURL: "https://www.cisco.com/bgp.html", domain.MetaVendor: "cisco", domain.MetaChunkIndex: 1},
		},
	}
}

func TestCollectionManager_InitializeCollections(t *testing.T) {
	ctx := context.Background()
	m, store := testCollections(t, domain.LayoutShared, nil)

	infos, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, infos, len(domain.NewRoutingPolicy(domain.LayoutShared).Specs()))

	for _, info := range infos {
		assert.Equal(t, 768, info.Dimension, info.Name)
		assert.Equal(t, hashing.ModelName, info.Model, info.Name)

		withPlaceholder, err := store.Count(ctx, info.Name, true)
		require.NoError(t, err)
		assert.Equal(t, 1, withPlaceholder, info.Name)

		visible, err := store.Count(ctx, info.Name, false)
		require.NoError(t, err)
		assert.Zero(t, visible, info.Name)
	}

	// A second call changes nothing.
	require.NoError(t, m.InitializeCollections(ctx))
	count, err := store.Count(ctx, domain.CollectionAllVendorDocs, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectionManager_ResolveCollection(t *testing.T) {
	shared := NewCollectionManager(nil, nil, domain.NewRoutingPolicy(domain.LayoutShared))
	perVendor := NewCollectionManager(nil, nil, domain.NewRoutingPolicy(domain.LayoutPerVendor))

	assert.Equal(t, domain.CollectionAllVendorDocs, shared.ResolveCollection("Cisco"))
	assert.Equal(t, "cisco_docs", perVendor.ResolveCollection("Cisco"))
	assert.Equal(t, "palo_alto_docs", perVendor.ResolveCollection("Palo Alto"))
	assert.Equal(t, domain.CollectionErrorCodes, shared.ResolveCollection(domain.CollectionErrorCodes))
	assert.Equal(t, domain.CollectionErrorCodes, perVendor.ResolveCollection(domain.CollectionErrorCodes))
}

func TestCollectionManager_AddDocuments(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewVectorStore()
	m := NewCollectionManager(store, hashing.NewEmbeddingService(0),
		domain.NewRoutingPolicy(domain.LayoutShared), WithClock(func() time.Time { return fixed }))
	require.NoError(t, m.InitializeCollections(ctx))

	stored, err := m.AddDocuments(ctx, "cisco", bgpChunks())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	count, err := store.Count(ctx, domain.CollectionAllVendorDocs, false)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rs := m.Query(ctx, "cisco", "route reflector", 1, nil)
	require.Len(t, rs.Hits, 1)
	md := rs.Hits[0].Metadata
	assert.Equal(t, "cisco", md[domain.MetaVendor])
	assert.Equal(t, domain.UnknownValue, md[domain.MetaProductLine])
	assert.Equal(t, domain.UnknownValue, md[domain.MetaRelease])
	assert.Equal(t, hashing.ModelName, md[domain.MetaEmbeddingModel])
	assert.EqualValues(t, 768, md[domain.MetaEmbeddingDimension])
	assert.Equal(t, "2026-03-01T12:00:00Z", md[domain.MetaAddedAt])
}

func TestCollectionManager_AddDocuments_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, store := testCollections(t, domain.LayoutShared, nil)

	_, err := m.AddDocuments(ctx, "cisco", bgpChunks())
	require.NoError(t, err)
	_, err = m.AddDocuments(ctx, "cisco", bgpChunks())
	require.NoError(t, err)

	count, err := store.Count(ctx, domain.CollectionAllVendorDocs, false)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollectionManager_AddDocuments_VendorFromKey(t *testing.T) {
	ctx := context.Background()
	m, _ := testCollections(t, domain.LayoutPerVendor, nil)

	chunks := []domain.Chunk{{Text: "EVPN type 5 routes carry IP prefixes.", Metadata: domain.Metadata{domain.MetaVendor: "Unknown"}}}
	stored, err := m.AddDocuments(ctx, "Arista", chunks)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	rs := m.Query(ctx, "arista", "EVPN type 5", 3, nil)
	assert.Equal(t, "arista_docs", rs.Collection)
	require.Len(t, rs.Hits, 1)
	assert.Equal(t, "arista", rs.Hits[0].Metadata[domain.MetaVendor])
}

func TestCollectionManager_AddDocuments_SkipsEmptyChunks(t *testing.T) {
	ctx := context.Background()
	m, _ := testCollections(t, domain.LayoutShared, nil)

	stored, err := m.AddDocuments(ctx, "cisco", []domain.Chunk{{Text: "  "}, {Text: ""}})

	require.NoError(t, err)
	assert.Zero(t, stored)
}

func TestCollectionManager_AddDocuments_EmbedFailure(t *testing.T) {
	ctx := context.Background()
	embedder := &failingEmbedder{EmbeddingService: hashing.NewEmbeddingService(0)}
	m := NewCollectionManager(memory.NewVectorStore(), embedder, domain.NewRoutingPolicy(domain.LayoutShared))
	require.NoError(t, m.InitializeCollections(ctx))

	embedder.err = errBoom
	stored, err := m.AddDocuments(ctx, "cisco", bgpChunks())

	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, stored)
}

func TestCollectionManager_AddDocuments_UpsertFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{VectorStore: memory.NewVectorStore()}
	m := NewCollectionManager(store, hashing.NewEmbeddingService(0), domain.NewRoutingPolicy(domain.LayoutShared))
	require.NoError(t, m.InitializeCollections(ctx))

	store.upsertErr = errBoom
	stored, err := m.AddDocuments(ctx, "cisco", bgpChunks())

	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, stored)
}

func TestCollectionManager_Query_RanksAndFilters(t *testing.T) {
	ctx := context.Background()
	m, _ := testCollections(t, domain.LayoutShared, nil)

	_, err := m.AddDocuments(ctx, "cisco", bgpChunks())
	require.NoError(t, err)
	_, err = m.AddDocuments(ctx, "juniper", []domain.Chunk{{
		Text:     "Junos BGP route reflector cluster configuration.",
		Metadata: domain.Metadata{domain.MetaURL: "https://www.juniper.net/rr.html", domain.MetaVendor: "juniper"},
	}})
	require.NoError(t, err)

	all := m.Query(ctx, domain.CollectionAllVendorDocs, "BGP route reflector", 10, nil)
	require.Len(t, all.Hits, 3)
	for i := 1; i < len(all.Hits); i++ {
		assert.LessOrEqual(t, all.Hits[i-1].Distance, all.Hits[i].Distance)
	}
	assert.Contains(t, all.Hits[0].Document, "route reflector")

	juniper := m.Query(ctx, "juniper", "BGP route reflector", 10, map[string]string{domain.MetaVendor: "juniper"})
	require.Len(t, juniper.Hits, 1)
	assert.Equal(t, "juniper", juniper.Hits[0].Metadata[domain.MetaVendor])
}

func TestCollectionManager_Query_NeverReturnsPlaceholders(t *testing.T) {
	m, _ := testCollections(t, domain.LayoutShared, nil)

	rs := m.Query(context.Background(), domain.CollectionErrorCodes, "Placeholder document for error_codes", 5, nil)

	assert.Equal(t, domain.CollectionErrorCodes, rs.Collection)
	assert.Empty(t, rs.Hits)
}

func TestCollectionManager_Query_FallsBack(t *testing.T) {
	ctx := context.Background()
	m, _ := testCollections(t, domain.LayoutPerVendor, nil)
	_, err := m.AddDocuments(ctx, domain.CollectionAllVendorDocs, bgpChunks())
	require.NoError(t, err)

	rs := m.Query(ctx, "nokia", "BGP route reflector", 3, nil)

	assert.Equal(t, domain.CollectionAllVendorDocs, rs.Collection)
	assert.NotEmpty(t, rs.Hits)
}

func TestCollectionManager_Query_NoFallbackAvailable(t *testing.T) {
	m := NewCollectionManager(memory.NewVectorStore(), hashing.NewEmbeddingService(0),
		domain.NewRoutingPolicy(domain.LayoutPerVendor))

	rs := m.Query(context.Background(), "nokia", "anything", 3, nil)

	assert.Equal(t, "nokia_docs", rs.Collection)
	assert.Empty(t, rs.Hits)
}

func TestCollectionManager_Query_EmbedFailureYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	embedder := &failingEmbedder{EmbeddingService: hashing.NewEmbeddingService(0)}
	m := NewCollectionManager(memory.NewVectorStore(), embedder, domain.NewRoutingPolicy(domain.LayoutShared))
	require.NoError(t, m.InitializeCollections(ctx))
	_, err := m.AddDocuments(ctx, "cisco", bgpChunks())
	require.NoError(t, err)

	embedder.err = errBoom
	rs := m.Query(ctx, "cisco", "BGP", 3, nil)

	assert.Equal(t, domain.CollectionAllVendorDocs, rs.Collection)
	assert.Empty(t, rs.Hits)
}

func TestCollectionManager_QueryAll(t *testing.T) {
	m, _ := testCollections(t, domain.LayoutShared, nil)

	sets := m.QueryAll(context.Background(), "anything", 2)

	specs := domain.NewRoutingPolicy(domain.LayoutShared).Specs()
	require.Len(t, sets, len(specs))
	for i, spec := range specs {
		assert.Equal(t, spec.Name, sets[i].Collection)
	}
}

func TestCollectionManager_ResetDatabase(t *testing.T) {
	ctx := context.Background()
	ledger := testLedger(t)
	m, store := testCollections(t, domain.LayoutPerVendor, ledger)

	_, err := m.AddDocuments(ctx, "nokia", bgpChunks())
	require.NoError(t, err)
	ledger.Record("nokia_page_x", domain.IngestionRecord{Chunks: 2})
	require.NoError(t, ledger.Persist())

	require.NoError(t, m.ResetDatabase(ctx))

	infos, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, len(domain.NewRoutingPolicy(domain.LayoutPerVendor).Specs()), "ad-hoc collections are dropped")
	for _, info := range infos {
		count, err := store.Count(ctx, info.Name, false)
		require.NoError(t, err)
		assert.Zero(t, count, info.Name)
	}
	assert.Zero(t, ledger.Len())
}

func TestCollectionManager_ResetDatabase_LedgerKeptOnFailure(t *testing.T) {
	ctx := context.Background()
	ledger := testLedger(t)
	store := &flakyStore{VectorStore: memory.NewVectorStore()}
	m := NewCollectionManager(store, hashing.NewEmbeddingService(0),
		domain.NewRoutingPolicy(domain.LayoutShared), WithLedger(ledger))
	require.NoError(t, m.InitializeCollections(ctx))
	ledger.Record("cisco_page_x", domain.IngestionRecord{Chunks: 1})

	store.deleteErr = errBoom
	err := m.ResetDatabase(ctx)

	assert.ErrorIs(t, err, errBoom)
	assert.True(t, ledger.IsIngested("cisco_page_x"))
}

func TestCollectionManager_CheckEmbeddingConsistency(t *testing.T) {
	ctx := context.Background()
	store := memory.NewVectorStore()
	_, err := store.EnsureCollection(ctx, domain.CollectionInfo{Name: domain.CollectionAllVendorDocs, Dimension: 1536, Model: "text-embedding-3-small"})
	require.NoError(t, err)

	m := NewCollectionManager(store, hashing.NewEmbeddingService(0), domain.NewRoutingPolicy(domain.LayoutShared))
	assert.False(t, m.CheckEmbeddingConsistency(ctx))

	fresh, _ := testCollections(t, domain.LayoutShared, nil)
	assert.True(t, fresh.CheckEmbeddingConsistency(ctx))
}

func TestCollectionManager_Stats(t *testing.T) {
	ctx := context.Background()
	m, _ := testCollections(t, domain.LayoutShared, nil)
	_, err := m.AddDocuments(ctx, "cisco", bgpChunks())
	require.NoError(t, err)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)

	byName := make(map[string]domain.CollectionStats, len(stats))
	for _, s := range stats {
		byName[s.Name] = s
	}
	assert.Equal(t, 2, byName[domain.CollectionAllVendorDocs].Documents)
	assert.Equal(t, 0, byName[domain.CollectionErrorCodes].Documents)
	assert.Equal(t, domain.CollectionTypeConsolidated, byName[domain.CollectionAllVendorDocs].Type)
}

func TestChunkID(t *testing.T) {
	a := ChunkID("https://x/doc", 0, "text")

	assert.Len(t, a, 32)
	assert.Equal(t, a, ChunkID("https://x/doc", 0, "text"))
	assert.NotEqual(t, a, ChunkID("https://x/doc", 1, "text"))
	assert.NotEqual(t, a, ChunkID("https://x/other", 0, "text"))
	assert.NotEqual(t, a, ChunkID("https://x/doc", 0, "other"))
}
