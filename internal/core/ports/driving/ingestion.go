package driving

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// IngestionService feeds documentation into the vector store.
type IngestionService interface {
	// IngestSource lists a watched source and ingests every document on it.
	IngestSource(ctx context.Context, src domain.WatchedSource) (domain.IngestReport, error)

	// IngestDocuments ingests already-listed documents of a source.
	IngestDocuments(ctx context.Context, src domain.WatchedSource, docs []domain.ScrapedDoc) domain.IngestReport

	// IngestURL fetches and ingests one page under a collection key.
	IngestURL(ctx context.Context, url, collectionKey string) (domain.IngestReport, error)

	// IngestJSONFile ingests a local JSON dump (list or single object).
	IngestJSONFile(ctx context.Context, path, collectionKey string) (domain.IngestReport, error)

	// IngestAll ingests every configured source and file.
	IngestAll(ctx context.Context) (domain.IngestReport, error)

	// ScrapeSitemap fetches every URL listed in a text file and writes a
	// JSON dump suitable for IngestJSONFile.
	ScrapeSitemap(ctx context.Context, listPath, outPath string) (int, error)

	// ResetTracking clears the ingestion ledger.
	ResetTracking() error
}

// UpdateService re-checks watched sources for new or changed documents.
type UpdateService interface {
	// Check diffs one source against its last-seen state and ingests changes.
	Check(ctx context.Context, src domain.WatchedSource) (domain.UpdateReport, error)

	// CheckAll checks every watched source.
	CheckAll(ctx context.Context) ([]domain.UpdateReport, error)

	// Sources returns the watched sources.
	Sources() []domain.WatchedSource
}
