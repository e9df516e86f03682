package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/netassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/netassist/internal/core/domain"
)

const ciscoListing = "https://www.cisco.com/c/en/us/support/switches/rn-list.html"

var ciscoSource = domain.WatchedSource{URL: ciscoListing, Vendor: "cisco", DocType: domain.DocTypeReleaseNotes}

type ingestionFixture struct {
	scraper     *mockScraper
	ledger      *file.Ledger
	collections *CollectionManager
	store       *memory.VectorStore
	svc         *IngestionService
}

func newIngestionFixture(t *testing.T, layout domain.CollectionLayout) *ingestionFixture {
	t.Helper()
	f := &ingestionFixture{scraper: newMockScraper(), ledger: testLedger(t)}
	f.collections, f.store = testCollections(t, layout, f.ledger)
	f.svc = NewIngestionService(f.scraper, NewDocumentProcessor(testPipeline(t, 200, 20)),
		f.collections, f.ledger, []domain.WatchedSource{ciscoSource}, nil, nil)
	return f
}

func (f *ingestionFixture) count(t *testing.T, collection string) int {
	t.Helper()
	n, err := f.store.Count(context.Background(), collection, false)
	require.NoError(t, err)
	return n
}

func (f *ingestionFixture) listCiscoDocs() {
	f.scraper.listings[ciscoListing] = []domain.ScrapedDoc{
		{Title: "NX-OS 10.4(1) Release Notes", URL: "https://www.cisco.com/rn-10-4-1.html", Date: "2026-01-10"},
		{Title: "NX-OS 10.3(5) Release Notes", URL: "https://www.cisco.com/rn-10-3-5.html", Date: "2025-11-02"},
	}
	f.scraper.setPage("https://www.cisco.com/rn-10-4-1.html", "NX-OS 10.4(1)",
		"Cisco Nexus 9000 Release 10.4.1 adds VXLAN EVPN multisite improvements for the data center.")
	f.scraper.setPage("https://www.cisco.com/rn-10-3-5.html", "NX-OS 10.3(5)",
		"Cisco Nexus 9000 Release 10.3.5 fixes an OSPF adjacency issue on routed ports.")
}

func TestIngestionService_IngestSource(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutShared)
	f.listCiscoDocs()

	report, err := f.svc.IngestSource(ctx, ciscoSource)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Discovered)
	assert.Equal(t, 2, report.Ingested)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Equal(t, report.Chunks, f.count(t, domain.CollectionAllVendorDocs))
	assert.Equal(t, 2, f.ledger.Len())

	rs := f.collections.Query(ctx, "cisco", "VXLAN EVPN multisite", 1, nil)
	require.Len(t, rs.Hits, 1)
	md := rs.Hits[0].Metadata
	assert.Equal(t, "cisco", md[domain.MetaVendor])
	assert.Equal(t, "NX-OS 10.4(1) Release Notes", md[domain.MetaTitle])
	assert.Equal(t, "2026-01-10", md[domain.MetaDate])
	assert.Equal(t, "Nexus: Nexus 9000", md[domain.MetaProductLine])
	assert.Equal(t, string(domain.DocTypeReleaseNotes), md[domain.MetaDocType])
}

func TestIngestionService_IngestSource_SkipsIngested(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutShared)
	f.listCiscoDocs()

	_, err := f.svc.IngestSource(ctx, ciscoSource)
	require.NoError(t, err)
	fetches := f.scraper.fetchCount()

	report, err := f.svc.IngestSource(ctx, ciscoSource)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, report.Ingested)
	assert.Equal(t, fetches, f.scraper.fetchCount(), "ingested documents are not fetched again")
}

func TestIngestionService_IngestSource_NewDateReingests(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutShared)
	f.listCiscoDocs()
	_, err := f.svc.IngestSource(ctx, ciscoSource)
	require.NoError(t, err)

	f.scraper.listings[ciscoListing][0].Date = "2026-02-01"
	report, err := f.svc.IngestSource(ctx, ciscoSource)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 3, f.ledger.Len())
}

func TestIngestionService_IngestSource_FailuresDoNotAbort(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutShared)
	f.listCiscoDocs()
	f.scraper.fetchErr["https://www.cisco.com/rn-10-4-1.html"] = errBoom

	report, err := f.svc.IngestSource(ctx, ciscoSource)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Ingested)
	assert.Equal(t, 1, f.ledger.Len(), "failed documents are not recorded")
	assert.Equal(t, []string{"https://www.cisco.com/rn-10-4-1.html"}, report.FailedURLs)
}

func TestIngestionService_IngestSource_ListError(t *testing.T) {
	f := newIngestionFixture(t, domain.LayoutShared)
	f.scraper.listErr = errBoom

	_, err := f.svc.IngestSource(context.Background(), ciscoSource)

	assert.ErrorIs(t, err, errBoom)
}

func TestIngestionService_IngestSource_EmptyPageFails(t *testing.T) {
	f := newIngestionFixture(t, domain.LayoutShared)
	f.scraper.listings[ciscoListing] = []domain.ScrapedDoc{{Title: "Empty", URL: "https://www.cisco.com/empty.html"}}
	f.scraper.setPage("https://www.cisco.com/empty.html", "Empty", "   ")

	report, err := f.svc.IngestSource(context.Background(), ciscoSource)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, f.ledger.Len())
}

func TestIngestionService_IngestDocuments_Cancelled(t *testing.T) {
	f := newIngestionFixture(t, domain.LayoutShared)
	f.listCiscoDocs()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.svc.IngestDocuments(ctx, ciscoSource, f.scraper.listings[ciscoListing])

	assert.Zero(t, report.Ingested)
	assert.Zero(t, f.scraper.fetchCount())
}

func TestIngestionService_IngestURL(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutPerVendor)
	url := "https://www.juniper.net/documentation/bgp.html"
	f.scraper.setPage(url, "BGP User Guide", "Junos OS BGP configuration for the MX 480 routing platform.")

	report, err := f.svc.IngestURL(ctx, url, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)
	assert.Positive(t, f.count(t, "juniper_docs"))

	again, err := f.svc.IngestURL(ctx, url, "")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Skipped)
}

func TestIngestionService_IngestURL_FetchError(t *testing.T) {
	f := newIngestionFixture(t, domain.LayoutShared)

	report, err := f.svc.IngestURL(context.Background(), "https://www.cisco.com/missing.html", "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, report.Failed)
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scraped.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestIngestionService_IngestJSONFile_List(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutPerVendor)
	path := writeJSON(t, []map[string]any{
		{"content": "%LINK-3-UPDOWN: Interface changed state to down.", "metadata": map[string]any{"error_code": "LINK-3-UPDOWN"}},
		{"content": "Aruba AOS-CX VSX split brain recovery steps.", "vendor": "aruba"},
		{"title": "no content"},
	})

	report, err := f.svc.IngestJSONFile(ctx, path, "")

	require.NoError(t, err)
	assert.Equal(t, 3, report.Discovered)
	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, f.count(t, domain.CollectionErrorCodes))
	assert.Equal(t, 1, f.count(t, "aruba_docs"))

	rs := f.collections.Query(ctx, domain.CollectionErrorCodes, "LINK-3-UPDOWN", 1, nil)
	require.Len(t, rs.Hits, 1)
	assert.Equal(t, "LINK-3-UPDOWN", rs.Hits[0].Metadata["error_code"])
	assert.Equal(t, "scraped.json", rs.Hits[0].Metadata[domain.MetaSource])
	assert.Equal(t, scrapedDataDocType, rs.Hits[0].Metadata[domain.MetaDocType])

	again, err := f.svc.IngestJSONFile(ctx, path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Skipped)
}

func TestIngestionService_IngestJSONFile_SingleObject(t *testing.T) {
	f := newIngestionFixture(t, domain.LayoutShared)
	path := writeJSON(t, map[string]any{"content": "Spanning tree root guard prevents rogue root bridges."})

	report, err := f.svc.IngestJSONFile(context.Background(), path, domain.CollectionNetworkDocs)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)
	assert.Equal(t, 1, f.count(t, domain.CollectionNetworkDocs))
}

func TestIngestionService_IngestJSONFile_Errors(t *testing.T) {
	f := newIngestionFixture(t, domain.LayoutShared)
	ctx := context.Background()

	_, err := f.svc.IngestJSONFile(ctx, filepath.Join(t.TempDir(), "missing.json"), "")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = f.svc.IngestJSONFile(ctx, bad, "")
	assert.Error(t, err)

	empty := writeJSON(t, []map[string]any{{"title": "no content"}})
	_, err = f.svc.IngestJSONFile(ctx, empty, "")
	assert.Error(t, err)
	assert.Zero(t, f.ledger.Len())
}

func TestIngestionService_IngestAll(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutShared)
	f.listCiscoDocs()
	path := writeJSON(t, []map[string]any{{"content": "Error 42: fan tray failure."}})
	f.svc = NewIngestionService(f.scraper, NewDocumentProcessor(testPipeline(t, 200, 20)), f.collections, f.ledger,
		[]domain.WatchedSource{ciscoSource}, []string{path, filepath.Join(t.TempDir(), "absent.json")}, nil)

	report, err := f.svc.IngestAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Ingested)
	assert.Equal(t, 1, f.count(t, domain.CollectionErrorCodes))
}

func TestIngestionService_ScrapeSitemap(t *testing.T) {
	ctx := context.Background()
	f := newIngestionFixture(t, domain.LayoutShared)
	f.scraper.setPage("https://www.cisco.com/a.html", "A", "Cisco Catalyst 9300 stacking guide.")
	f.scraper.setPage("https://www.cisco.com/b.html", "B", "Cisco Catalyst 9500 StackWise Virtual.")

	dir := t.TempDir()
	list := filepath.Join(dir, "sitemap.txt")
	require.NoError(t, os.WriteFile(list, []byte(strings.Join([]string{
		"# cisco pages",
		"https://www.cisco.com/a.html",
		"",
		"https://www.cisco.com/b.html",
		"https://www.cisco.com/missing.html",
	}, "\n")), 0o644))
	out := filepath.Join(dir, "out", "scraped.json")

	n, err := f.svc.ScrapeSitemap(ctx, list, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	report, err := f.svc.IngestJSONFile(ctx, out, "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 2, f.count(t, domain.CollectionAllVendorDocs))
}

func TestIngestionService_ResetTracking(t *testing.T) {
	f := newIngestionFixture(t, domain.LayoutShared)
	f.listCiscoDocs()
	_, err := f.svc.IngestSource(context.Background(), ciscoSource)
	require.NoError(t, err)
	require.Equal(t, 2, f.ledger.Len())

	require.NoError(t, f.svc.ResetTracking())

	assert.Zero(t, f.ledger.Len())
	_, statErr := os.Stat(f.ledger.Path())
	assert.NoError(t, statErr, "the empty ledger is persisted")
}
