package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

func newStoreWith(t *testing.T, name string) *VectorStore {
	t.Helper()
	s := NewVectorStore()
	_, err := s.EnsureCollection(context.Background(), domain.CollectionInfo{Name: name, Dimension: 2})
	require.NoError(t, err)
	return s
}

func TestVectorStore_EnsureCollection_KeepsOriginal(t *testing.T) {
	s := NewVectorStore()
	ctx := context.Background()

	first, err := s.EnsureCollection(ctx, domain.CollectionInfo{Name: "default", Dimension: 2, Model: "a"})
	require.NoError(t, err)
	second, err := s.EnsureCollection(ctx, domain.CollectionInfo{Name: "default", Dimension: 3, Model: "b"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestVectorStore_QueryFiltersAndRanks(t *testing.T) {
	s := newStoreWith(t, "all_vendor_docs")
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "all_vendor_docs", []domain.VectorRecord{
		{ID: "p", Text: "placeholder", Metadata: domain.Metadata{"type": "placeholder"}, Embedding: []float32{1, 0}},
		{ID: "a", Text: "a", Metadata: domain.Metadata{"vendor": "cisco"}, Embedding: []float32{0, 1}},
		{ID: "b", Text: "b", Metadata: domain.Metadata{"vendor": "cisco"}, Embedding: []float32{1, 0}},
		{ID: "c", Text: "c", Metadata: domain.Metadata{"vendor": "aruba"}, Embedding: []float32{1, 0}},
	}))

	hits, err := s.Query(ctx, "all_vendor_docs", []float32{1, 0}, 5, map[string]string{"vendor": "cisco"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].ID)
	assert.Equal(t, "a", hits[1].ID)
}

func TestVectorStore_UpsertCopiesInput(t *testing.T) {
	s := newStoreWith(t, "default")
	ctx := context.Background()

	md := domain.Metadata{"vendor": "cisco"}
	require.NoError(t, s.Upsert(ctx, "default", []domain.VectorRecord{
		{ID: "x", Text: "x", Metadata: md, Embedding: []float32{1, 0}},
	}))
	md["vendor"] = "changed"

	hits, err := s.Query(ctx, "default", []float32{1, 0}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "cisco", hits[0].Metadata.String("vendor"))
}

func TestVectorStore_MissingCollection(t *testing.T) {
	s := NewVectorStore()
	ctx := context.Background()

	_, err := s.GetCollection(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Query(ctx, "missing", []float32{1}, 1, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := s.Count(ctx, "missing", true)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVectorStore_ConcurrentUpserts(t *testing.T) {
	s := newStoreWith(t, "default")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Upsert(ctx, "default", []domain.VectorRecord{
				{ID: string(rune('a' + i)), Text: "t", Embedding: []float32{1, 0}},
			})
		}()
	}
	wg.Wait()

	n, err := s.Count(ctx, "default", false)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestSchedulerStore_HistoryAndPrune(t *testing.T) {
	s := NewSchedulerStore()
	ctx := context.Background()
	now := time.Now()

	for i := range 5 {
		require.NoError(t, s.RecordResult(ctx, &domain.TaskResult{
			TaskID:         "t",
			StartedAt:      now.Add(time.Duration(i) * time.Second),
			ItemsProcessed: i,
		}))
	}
	require.NoError(t, s.PruneHistory(ctx, 2))

	history, err := s.GetTaskHistory(ctx, "t", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.Equal(t, 3, history[1].ItemsProcessed)

	assert.ErrorIs(t, s.RecordResult(ctx, nil), domain.ErrInvalidInput)
}

func TestUpdateStateStore_RoundTrip(t *testing.T) {
	s := NewUpdateStateStore()
	ctx := context.Background()

	_, ok, err := s.LoadSeen(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	seen := domain.SeenDocuments{"u": "d"}
	require.NoError(t, s.SaveSeen(ctx, "k", seen))
	seen["u"] = "mutated"

	got, ok, err := s.LoadSeen(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.SeenDocuments{"u": "d"}, got)
}
