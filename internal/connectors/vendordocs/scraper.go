package vendordocs

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/normalisers"
	htmlnorm "github.com/custodia-labs/netassist/internal/normalisers/html"
	pdfnorm "github.com/custodia-labs/netassist/internal/normalisers/pdf"
)

// Ensure Scraper implements the interface.
var _ driven.DocScraper = (*Scraper)(nil)

// Scraper lists and fetches vendor documentation.
type Scraper struct {
	fetch       *fetcher
	normalisers []driven.Normaliser
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.fetch.client = c
	}
}

// WithRetryDelay sets the initial delay between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.fetch.retryDelay = d
	}
}

// WithNormalisers replaces the content normalisers.
func WithNormalisers(n ...driven.Normaliser) Option {
	return func(s *Scraper) {
		s.normalisers = n
	}
}

// New creates a scraper from the scrape settings.
func New(settings domain.ScrapeSettings, opts ...Option) (*Scraper, error) {
	timeout := settings.Timeout.Std()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := settings.UserAgent
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}
	retries := settings.MaxRetries
	if retries < 0 {
		retries = MaxRetries
	}

	var cache *lru.Cache[string, *page]
	if settings.CacheSize > 0 {
		c, err := lru.New[string, *page](settings.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create page cache: %w", err)
		}
		cache = c
	}

	s := &Scraper{
		fetch: &fetcher{
			client:     &http.Client{Timeout: timeout},
			limiter:    NewRateLimiter(settings.Delay.Std()),
			cache:      cache,
			userAgent:  userAgent,
			maxRetries: retries,
			retryDelay: RetryDelay,
		},
		normalisers: []driven.Normaliser{htmlnorm.New(), pdfnorm.New()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListDocuments fetches a listing page and parses it by document type.
func (s *Scraper) ListDocuments(ctx context.Context, src domain.WatchedSource) ([]domain.ScrapedDoc, error) {
	if !src.DocType.IsValid() {
		return nil, fmt.Errorf("%s: %w", src.DocType, ErrUnsupportedDocType)
	}

	// Listings bypass the cache so update checks see fresh dates.
	p, err := s.fetch.get(ctx, src.URL, cacheBypass)
	if err != nil {
		return nil, err
	}

	var docs []domain.ScrapedDoc
	if src.DocType == domain.DocTypePage {
		docs = []domain.ScrapedDoc{{
			Title: htmlnorm.ExtractTitle(string(p.Body), p.URL),
			URL:   src.URL,
			Date:  firstNonEmpty(p.LastModified, domain.UnknownValue),
		}}
	} else {
		root, err := html.Parse(bytes.NewReader(p.Body))
		if err != nil {
			return nil, fmt.Errorf("parse listing %s: %w", src.URL, err)
		}
		base, _ := url.Parse(p.URL)

		switch src.DocType {
		case domain.DocTypeReleaseNotes:
			docs = parseCiscoListing(root, base, "release-notes")
		case domain.DocTypeConfigGuides:
			docs = parseCiscoListing(root, base, "configuration")
		case domain.DocTypeArubaDocs:
			docs = parseArubaIndex(root, base)
		case domain.DocTypePosts:
			docs = parseHackerNews(root, base)
		}
	}

	for i := range docs {
		docs[i].Vendor = src.Vendor
		docs[i].DocType = src.DocType
	}
	logger.Info("vendordocs: parsed %d documents from %s", len(docs), src.URL)
	return docs, nil
}

// FetchDocument downloads a document and extracts its text with the
// normaliser matching its content type. Pages are cached unless ctx
// carries driven.WithFreshFetch, in which case the cached copy is replaced.
func (s *Scraper) FetchDocument(ctx context.Context, rawURL string) (*driven.FetchedDocument, error) {
	mode := cacheUse
	if driven.FreshFetch(ctx) {
		mode = cacheRefresh
	}
	p, err := s.fetch.get(ctx, rawURL, mode)
	if err != nil {
		return nil, err
	}

	mt := mediaType(p)
	n := normalisers.Select(mt, s.normalisers)
	if n == nil {
		return nil, fmt.Errorf("%s (%s): %w", rawURL, mt, ErrUnsupportedContent)
	}

	res, err := n.Normalise(ctx, &domain.RawDocument{URI: p.URL, MIMEType: mt, Content: p.Body})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", rawURL, err)
	}

	md := res.Metadata.Clone()
	md[domain.MetaURL] = rawURL
	return &driven.FetchedDocument{
		URL:      rawURL,
		Title:    res.Title,
		Content:  res.Content,
		Metadata: md,
	}, nil
}

// mediaType returns the response MIME type, sniffing generic types.
func mediaType(p *page) string {
	mt, _, err := mime.ParseMediaType(p.ContentType)
	if err == nil && mt != "" && mt != "application/octet-stream" && mt != "binary/octet-stream" {
		return mt
	}
	if u, err := url.Parse(p.URL); err == nil && strings.EqualFold(path.Ext(u.Path), ".pdf") {
		return "application/pdf"
	}
	mt, _, _ = mime.ParseMediaType(http.DetectContentType(p.Body))
	return mt
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
