package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// scrapedDataDocType labels records loaded from JSON dumps without a doc type.
const scrapedDataDocType = "Error Documentation"

// IngestionService scrapes, chunks and stores documents, skipping units the
// ledger already holds. The ledger is persisted after every unit.
type IngestionService struct {
	scraper     driven.DocScraper
	processor   *DocumentProcessor
	collections driving.CollectionService
	ledger      driven.IngestionLedger
	sources     []domain.WatchedSource
	files       []string
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewIngestionService creates an ingestion service. sources and files are
// what IngestAll walks.
func NewIngestionService(
	scraper driven.DocScraper,
	processor *DocumentProcessor,
	collections driving.CollectionService,
	ledger driven.IngestionLedger,
	sources []domain.WatchedSource,
	files []string,
	mt *metrics.Metrics,
) *IngestionService {
	return &IngestionService{
		scraper:     scraper,
		processor:   processor,
		collections: collections,
		ledger:      ledger,
		sources:     sources,
		files:       files,
		metrics:     mt,
		now:         time.Now,
	}
}

// IngestSource lists a watched source and ingests every document not yet in
// the ledger.
func (s *IngestionService) IngestSource(ctx context.Context, src domain.WatchedSource) (domain.IngestReport, error) {
	logger.Section("Ingest " + src.Key())

	docs, err := s.scraper.ListDocuments(ctx, src)
	if err != nil {
		return domain.IngestReport{Source: src.Key()}, fmt.Errorf("list %s: %w", src.URL, err)
	}
	logger.Info("ingest: found %d documents at %s", len(docs), src.URL)
	return s.IngestDocuments(ctx, src, docs), nil
}

// IngestDocuments fetches, chunks and stores each document. Failures are
// counted and logged; they never abort the batch.
func (s *IngestionService) IngestDocuments(
	ctx context.Context, src domain.WatchedSource, docs []domain.ScrapedDoc,
) domain.IngestReport {
	report := domain.IngestReport{Source: src.Key(), Discovered: len(docs)}

	for i, doc := range docs {
		if ctx.Err() != nil {
			logger.Warn("ingest: %s cancelled after %d/%d documents", src.Key(), i, len(docs))
			break
		}

		key := domain.IngestionKey(src.DocType.SourceKind(), src.Vendor, doc.URL, doc.Date)
		if s.ledger.IsIngested(key) {
			logger.Debug("ingest: already ingested %q, skipping", doc.Title)
			report.Skipped++
			continue
		}

		chunks, err := s.ingestDocument(ctx, src, doc)
		if err != nil {
			logger.Error("ingest: %s: %v", doc.URL, err)
			s.metrics.RecordIngestFailure()
			report.Failed++
			report.FailedURLs = append(report.FailedURLs, doc.URL)
			continue
		}

		s.record(key, doc.Title, chunks)
		report.Ingested++
		report.Chunks += chunks
		logger.Info("ingest: processed %d/%d: %s", i+1, len(docs), doc.Title)
	}
	return report
}

func (s *IngestionService) ingestDocument(ctx context.Context, src domain.WatchedSource, doc domain.ScrapedDoc) (int, error) {
	fetched, err := s.scraper.FetchDocument(ctx, doc.URL)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if strings.TrimSpace(fetched.Content) == "" {
		return 0, domain.ErrNoContent
	}

	base := doc.Metadata.Clone()
	base.Merge(domain.Metadata{
		domain.MetaURL:     doc.URL,
		domain.MetaTitle:   firstNonEmpty(doc.Title, fetched.Title),
		domain.MetaVendor:  strings.ToLower(firstNonEmpty(doc.Vendor, src.Vendor)),
		domain.MetaDocType: firstNonEmpty(string(doc.DocType), string(src.DocType)),
		domain.MetaDate:    doc.Date,
	})
	base.Merge(fetched.Metadata)

	md := s.processor.DocumentMetadata(base, fetched.Content)
	chunks := s.processor.ChunkDocument(ctx, fetched.Content, md)
	if len(chunks) == 0 {
		return 0, domain.ErrNoContent
	}
	return s.collections.AddDocuments(ctx, src.CollectionKey(), chunks)
}

// IngestURL ingests a single page into the collection for collectionKey.
func (s *IngestionService) IngestURL(ctx context.Context, url, collectionKey string) (domain.IngestReport, error) {
	vendor := VendorFromURL(url)
	if collectionKey == "" {
		collectionKey = vendor
	}
	report := domain.IngestReport{Source: url, Discovered: 1}

	key := domain.IngestionKey(domain.SourceKindPage, vendor, url, "")
	if s.ledger.IsIngested(key) {
		report.Skipped = 1
		return report, nil
	}

	doc := domain.ScrapedDoc{URL: url, Vendor: vendor, DocType: domain.DocTypePage}
	fetched, err := s.scraper.FetchDocument(ctx, url)
	if err != nil {
		report.Failed = 1
		return report, fmt.Errorf("fetch %s: %w", url, err)
	}
	doc.Title = fetched.Title

	md := s.processor.DocumentMetadata(domain.Metadata{
		domain.MetaURL:     url,
		domain.MetaTitle:   fetched.Title,
		domain.MetaVendor:  vendor,
		domain.MetaDocType: string(domain.DocTypePage),
	}, fetched.Content)
	md.Merge(fetched.Metadata)

	chunks := s.processor.ChunkDocument(ctx, fetched.Content, md)
	if len(chunks) == 0 {
		report.Failed = 1
		return report, fmt.Errorf("%s: %w", url, domain.ErrNoContent)
	}
	stored, err := s.collections.AddDocuments(ctx, collectionKey, chunks)
	if err != nil {
		report.Failed = 1
		s.metrics.RecordIngestFailure()
		return report, err
	}

	s.record(key, doc.Title, stored)
	report.Ingested = 1
	report.Chunks = stored
	return report, nil
}

// IngestJSONFile ingests a JSON dump holding one object or a list of
// objects, each with a "content" field. The file is one ledger unit keyed
// by path and modification time. An empty collectionKey routes each object
// by its vendor, or to error_codes when it has none.
func (s *IngestionService) IngestJSONFile(ctx context.Context, path, collectionKey string) (domain.IngestReport, error) {
	report := domain.IngestReport{Source: path}

	info, err := os.Stat(path)
	if err != nil {
		return report, fmt.Errorf("stat %s: %w", path, err)
	}
	key := domain.IngestionKey(domain.SourceKindScrapedData, "", path, strconv.FormatInt(info.ModTime().UnixNano(), 10))
	if s.ledger.IsIngested(key) {
		logger.Info("ingest: %s was already ingested, skipping", path)
		report.Skipped = 1
		return report, nil
	}

	records, err := readJSONRecords(path)
	if err != nil {
		return report, err
	}
	report.Discovered = len(records)

	for i, rec := range records {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		content, md, ok := jsonRecordDocument(rec, path)
		if !ok {
			logger.Warn("ingest: %s record %d has no content, skipping", path, i)
			report.Failed++
			continue
		}
		md = s.processor.DocumentMetadata(md, content)

		target := collectionKey
		if target == "" {
			target = md.String(domain.MetaVendor)
			if target == "" || strings.EqualFold(target, domain.UnknownValue) {
				target = domain.CollectionErrorCodes
			}
		}

		chunks := s.processor.ChunkDocument(ctx, content, md)
		stored, err := s.collections.AddDocuments(ctx, target, chunks)
		if err != nil {
			logger.Error("ingest: %s record %d: %v", path, i, err)
			s.metrics.RecordIngestFailure()
			report.Failed++
			continue
		}
		report.Ingested++
		report.Chunks += stored
	}

	if report.Ingested == 0 && report.Failed > 0 {
		return report, fmt.Errorf("ingest %s: no records stored", path)
	}
	s.record(key, filepath.Base(path), report.Chunks)
	logger.Info("ingest: %d chunks from %s", report.Chunks, path)
	return report, nil
}

// readJSONRecords decodes a list of objects or a single object.
func readJSONRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var list []map[string]any
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var single map[string]any
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []map[string]any{single}, nil
}

// jsonRecordDocument extracts content and metadata from a JSON object. A
// nested "metadata" object is flattened; other scalar fields are kept.
func jsonRecordDocument(rec map[string]any, path string) (string, domain.Metadata, bool) {
	content, _ := rec["content"].(string)
	if strings.TrimSpace(content) == "" {
		return "", nil, false
	}

	md := domain.Metadata{}
	if nested, ok := rec["metadata"].(map[string]any); ok {
		for k, v := range nested {
			md[k] = v
		}
	}
	for k, v := range rec {
		switch k {
		case "content", "metadata":
			continue
		}
		switch v.(type) {
		case string, float64, bool:
			if _, exists := md[k]; !exists {
				md[k] = v
			}
		}
	}
	md.Merge(domain.Metadata{
		domain.MetaSource:  filepath.Base(path),
		domain.MetaDocType: scrapedDataDocType,
	})
	return content, md, true
}

// IngestAll ingests every configured source and JSON file.
func (s *IngestionService) IngestAll(ctx context.Context) (domain.IngestReport, error) {
	total := domain.IngestReport{Source: "all"}
	var errs []error

	for _, src := range s.sources {
		r, err := s.IngestSource(ctx, src)
		total.Add(r)
		if err != nil {
			logger.Error("ingest: %v", err)
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	for _, f := range s.files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			logger.Debug("ingest: %s does not exist, skipping", f)
			continue
		}
		r, err := s.IngestJSONFile(ctx, f, "")
		total.Add(r)
		if err != nil {
			logger.Error("ingest: %v", err)
			errs = append(errs, err)
		}
	}

	logger.Info("ingest: full run finished: %d ingested, %d skipped, %d failed",
		total.Ingested, total.Skipped, total.Failed)
	return total, errors.Join(errs...)
}

// sitemapRecord is one entry written by ScrapeSitemap.
type sitemapRecord struct {
	URL      string          `json:"url"`
	Metadata domain.Metadata `json:"metadata"`
	Content  string          `json:"content"`
}

// ScrapeSitemap fetches every URL listed one per line in listPath and writes
// the extracted documents to outPath as a JSON list that IngestJSONFile
// accepts. It returns the number of documents written.
func (s *IngestionService) ScrapeSitemap(ctx context.Context, listPath, outPath string) (int, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", listPath, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read %s: %w", listPath, err)
	}
	logger.Info("sitemap: %d URLs to scrape", len(urls))

	records := make([]sitemapRecord, 0, len(urls))
	for i, u := range urls {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		fetched, err := s.scraper.FetchDocument(ctx, u)
		if err != nil {
			logger.Warn("sitemap: %d/%d %s: %v", i+1, len(urls), u, err)
			continue
		}
		md := s.processor.DocumentMetadata(domain.Metadata{
			domain.MetaURL:   u,
			domain.MetaTitle: fetched.Title,
		}, fetched.Content)
		records = append(records, sitemapRecord{URL: u, Metadata: md, Content: fetched.Content})
		logger.Debug("sitemap: scraped %d/%d %s", i+1, len(urls), u)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode sitemap data: %w", err)
	}
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", outPath, err)
	}
	return len(records), nil
}

// ResetTracking clears the ingestion ledger.
func (s *IngestionService) ResetTracking() error {
	if err := s.ledger.Reset(); err != nil {
		return fmt.Errorf("reset ingestion ledger: %w", err)
	}
	logger.Info("ingest: tracking has been reset")
	return nil
}

// record stores a ledger entry and persists it immediately so a crash loses
// at most the unit in flight.
func (s *IngestionService) record(key, title string, chunks int) {
	s.ledger.Record(key, domain.IngestionRecord{
		Timestamp: s.now().UTC(),
		Title:     title,
		Chunks:    chunks,
	})
	if err := s.ledger.Persist(); err != nil {
		logger.Error("ingest: persist ledger: %v", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
