package driven

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// VectorStore persists collections of embedded chunks and ranks them by
// similarity. Implementations own indexing and persistence; callers own
// routing, identifiers and metadata.
type VectorStore interface {
	// EnsureCollection returns the named collection, creating it with info
	// if it does not exist. Existing collections are returned unchanged.
	EnsureCollection(ctx context.Context, info domain.CollectionInfo) (domain.CollectionInfo, error)

	// GetCollection returns a collection by name.
	// Returns domain.ErrNotFound if it does not exist.
	GetCollection(ctx context.Context, name string) (domain.CollectionInfo, error)

	// ListCollections returns every collection, ordered by name.
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)

	// DeleteCollection removes a collection and all of its records.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert writes records in one batch. A record whose ID already exists
	// in the collection is overwritten.
	Upsert(ctx context.Context, collection string, records []domain.VectorRecord) error

	// Query returns at most n hits ordered by ascending distance.
	// Placeholder records are never returned. The where filter is an
	// exact-match predicate over metadata applied before ranking.
	Query(ctx context.Context, collection string, embedding []float32, n int, where map[string]string) ([]domain.Hit, error)

	// Count returns the number of records, optionally including placeholders.
	Count(ctx context.Context, collection string, includePlaceholders bool) (int, error)

	// Close releases resources.
	Close() error
}
