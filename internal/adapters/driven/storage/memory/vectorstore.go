// Package memory provides in-memory implementations of the storage ports.
// They back ephemeral sessions and tests; nothing survives the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type collection struct {
	info    domain.CollectionInfo
	records map[string]domain.VectorRecord
}

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string]*collection)}
}

// EnsureCollection returns the named collection, creating it if missing.
func (s *VectorStore) EnsureCollection(_ context.Context, info domain.CollectionInfo) (domain.CollectionInfo, error) {
	if info.Name == "" {
		return domain.CollectionInfo{}, fmt.Errorf("%w: collection name required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[info.Name]; ok {
		return c.info, nil
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now()
	}
	s.collections[info.Name] = &collection{info: info, records: make(map[string]domain.VectorRecord)}
	return info, nil
}

// GetCollection returns a collection by name.
func (s *VectorStore) GetCollection(_ context.Context, name string) (domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return domain.CollectionInfo{}, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return c.info, nil
}

// ListCollections returns every collection ordered by name.
func (s *VectorStore) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CollectionInfo, 0, len(s.collections))
	for _, c := range s.collections {
		out = append(out, c.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteCollection removes a collection and its records.
func (s *VectorStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Upsert writes records, overwriting existing IDs.
func (s *VectorStore) Upsert(_ context.Context, name string, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("%w: record id required", domain.ErrInvalidInput)
		}
		rec.Metadata = rec.Metadata.Clone()
		rec.Embedding = append([]float32(nil), rec.Embedding...)
		c.records[rec.ID] = rec
	}
	return nil
}

// Query ranks the filtered records of a collection by cosine distance.
func (s *VectorStore) Query(
	_ context.Context,
	name string,
	embedding []float32,
	n int,
	where map[string]string,
) ([]domain.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}

	hits := []domain.Hit{}
	if n <= 0 {
		return hits, nil
	}
	for _, rec := range c.records {
		if isPlaceholder(rec) || len(rec.Embedding) != len(embedding) {
			continue
		}
		if !domain.MatchesFilter(rec.Metadata, where) {
			continue
		}
		hits = append(hits, domain.Hit{
			ID:       rec.ID,
			Document: rec.Text,
			Metadata: rec.Metadata.Clone(),
			Distance: domain.CosineDistance(embedding, rec.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits, nil
}

// Count returns the number of records in a collection.
func (s *VectorStore) Count(_ context.Context, name string, includePlaceholders bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return 0, nil
	}
	if includePlaceholders {
		return len(c.records), nil
	}
	n := 0
	for _, rec := range c.records {
		if !isPlaceholder(rec) {
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}

func isPlaceholder(rec domain.VectorRecord) bool {
	return rec.Metadata.String(domain.MetaType) == domain.TypePlaceholder
}
