package driving

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// CollectionService manages the vector store collections.
type CollectionService interface {
	// InitializeCollections creates every managed collection if missing.
	InitializeCollections(ctx context.Context) error

	// ResolveCollection maps a logical key to a physical collection.
	ResolveCollection(key string) string

	// AddDocuments embeds and stores chunks, returning how many were stored.
	AddDocuments(ctx context.Context, key string, chunks []domain.Chunk) (int, error)

	// Query searches one collection. It never fails; errors yield an empty set.
	Query(ctx context.Context, key, text string, n int, where map[string]string) domain.ResultSet

	// QueryAll searches every managed collection.
	QueryAll(ctx context.Context, text string, n int) []domain.ResultSet

	// ResetDatabase recreates every collection, then clears the ledger.
	ResetDatabase(ctx context.Context) error

	// Stats summarises every collection.
	Stats(ctx context.Context) ([]domain.CollectionStats, error)
}
