package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
)

// Ensure UpdateChecker implements the interface.
var _ driving.UpdateService = (*UpdateChecker)(nil)

// UpdateChecker re-scrapes watched sources and ingests documents that are
// new or whose reported date changed since the last check.
type UpdateChecker struct {
	scraper driven.DocScraper
	state   driven.UpdateStateStore
	ingest  driving.IngestionService
	sources []domain.WatchedSource
	metrics *metrics.Metrics

	// inFlight guards against overlapping checks of the same source.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewUpdateChecker creates an update checker.
func NewUpdateChecker(
	scraper driven.DocScraper,
	state driven.UpdateStateStore,
	ingest driving.IngestionService,
	sources []domain.WatchedSource,
	mt *metrics.Metrics,
) *UpdateChecker {
	return &UpdateChecker{
		scraper:  scraper,
		state:    state,
		ingest:   ingest,
		sources:  sources,
		metrics:  mt,
		inFlight: make(map[string]struct{}),
	}
}

// Sources returns the watched sources.
func (u *UpdateChecker) Sources() []domain.WatchedSource {
	out := make([]domain.WatchedSource, len(u.sources))
	copy(out, u.sources)
	return out
}

// Check diffs one source against its last-seen state and ingests the
// difference. The first check of a source treats every document as new.
func (u *UpdateChecker) Check(ctx context.Context, src domain.WatchedSource) (report domain.UpdateReport, err error) {
	key := src.Key()
	report.Source = key

	u.mu.Lock()
	if _, busy := u.inFlight[key]; busy {
		u.mu.Unlock()
		return report, fmt.Errorf("%s: %w", key, domain.ErrCheckInProgress)
	}
	u.inFlight[key] = struct{}{}
	u.mu.Unlock()
	defer func() {
		u.mu.Lock()
		delete(u.inFlight, key)
		u.mu.Unlock()
		u.metrics.RecordUpdateCheck(key, report.New+report.Changed, err)
	}()

	logger.Section("Update Check " + key)

	docs, err := u.scraper.ListDocuments(ctx, src)
	if err != nil {
		return report, fmt.Errorf("list %s: %w", src.URL, err)
	}
	report.Discovered = len(docs)

	seen, found, err := u.state.LoadSeen(ctx, key)
	if err != nil {
		return report, fmt.Errorf("load last-seen state for %s: %w", key, err)
	}
	report.FirstCheck = !found

	var pending []domain.ScrapedDoc
	next := make(domain.SeenDocuments, len(seen)+len(docs))
	for url, date := range seen {
		next[url] = date
	}
	for _, doc := range docs {
		old, known := seen[doc.URL]
		switch {
		case !known:
			report.New++
			pending = append(pending, doc)
		case doc.Date != "" && doc.Date != old:
			report.Changed++
			pending = append(pending, doc)
		}
		if doc.Date != "" || !known {
			next[doc.URL] = doc.Date
		}
	}
	logger.Info("updates: %s has %d new and %d changed documents", key, report.New, report.Changed)

	if len(pending) > 0 {
		// Changed pages must not be served from the scraper's page cache.
		report.Ingest = u.ingest.IngestDocuments(driven.WithFreshFetch(ctx), src, pending)

		// Failed or unprocessed documents keep their previous state so the
		// next check picks them up again. Documents already in the ledger
		// are skipped on that retry.
		retry := report.Ingest.FailedURLs
		if ctx.Err() != nil {
			retry = make([]string, 0, len(pending))
			for _, doc := range pending {
				retry = append(retry, doc.URL)
			}
		}
		for _, url := range retry {
			if old, known := seen[url]; known {
				next[url] = old
			} else {
				delete(next, url)
			}
		}
		if len(retry) > 0 {
			logger.Warn("updates: %s will retry %d documents next check", key, len(retry))
		}
	}

	if err := u.state.SaveSeen(ctx, key, next); err != nil {
		return report, fmt.Errorf("save last-seen state for %s: %w", key, err)
	}
	return report, nil
}

// CheckAll checks every watched source. A failing source does not stop the
// others; errors are joined.
func (u *UpdateChecker) CheckAll(ctx context.Context) ([]domain.UpdateReport, error) {
	reports := make([]domain.UpdateReport, 0, len(u.sources))
	var errs []error
	for _, src := range u.sources {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		r, err := u.Check(ctx, src)
		if err != nil {
			logger.Error("updates: %v", err)
			errs = append(errs, err)
		}
		reports = append(reports, r)
	}
	return reports, errors.Join(errs...)
}
