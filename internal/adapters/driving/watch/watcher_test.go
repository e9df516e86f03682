package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// mockIngestion records IngestJSONFile calls.
type mockIngestion struct {
	mu    sync.Mutex
	calls []string
	keys  []string
	err   error
}

func (m *mockIngestion) IngestSource(context.Context, domain.WatchedSource) (domain.IngestReport, error) {
	return domain.IngestReport{}, nil
}

func (m *mockIngestion) IngestDocuments(context.Context, domain.WatchedSource, []domain.ScrapedDoc) domain.IngestReport {
	return domain.IngestReport{}
}

func (m *mockIngestion) IngestURL(context.Context, string, string) (domain.IngestReport, error) {
	return domain.IngestReport{}, nil
}

func (m *mockIngestion) IngestJSONFile(_ context.Context, path, key string) (domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, filepath.Base(path))
	m.keys = append(m.keys, key)
	return domain.IngestReport{Source: path, Ingested: 1, Chunks: 2}, m.err
}

func (m *mockIngestion) IngestAll(context.Context) (domain.IngestReport, error) {
	return domain.IngestReport{}, nil
}

func (m *mockIngestion) ScrapeSitemap(context.Context, string, string) (int, error) { return 0, nil }

func (m *mockIngestion) ResetTracking() error { return nil }

func (m *mockIngestion) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// runWatcher starts w and returns a stop function that waits for Run to return.
func runWatcher(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), "[]")
	writeFile(t, filepath.Join(dir, "a.json"), "[]")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, ".hidden.json"), "[]")

	ingest := &mockIngestion{}
	stop := runWatcher(t, New(dir, ingest, WithDebounce(10*time.Millisecond)))
	defer stop()

	assert.Eventually(t, func() bool { return len(ingest.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a.json", "b.json"}, ingest.snapshot())
}

func TestWatcher_NewFiles(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngestion{}

	var mu sync.Mutex
	var results []Result
	w := New(dir, ingest,
		WithDebounce(20*time.Millisecond),
		WithCollection(domain.CollectionErrorCodes),
		OnResult(func(r Result) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, r)
		}),
	)
	stop := runWatcher(t, w)
	defer stop()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "errors.json"), `[{"content":"x"}]`)
	writeFile(t, filepath.Join(dir, "readme.md"), "ignored")

	assert.Eventually(t, func() bool { return len(ingest.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"errors.json"}, ingest.snapshot())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Report.Chunks)
	assert.Equal(t, []string{domain.CollectionErrorCodes}, ingest.keys)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngestion{}
	stop := runWatcher(t, New(dir, ingest, WithDebounce(200*time.Millisecond), WithInitialScan(false)))
	defer stop()

	time.Sleep(50 * time.Millisecond)
	path := filepath.Join(dir, "dump.json")
	for range 5 {
		writeFile(t, path, "[]")
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return len(ingest.snapshot()) >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, ingest.snapshot(), 1)
}

func TestWatcher_IngestErrorsDoNotStop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.json"), "{")
	ingest := &mockIngestion{err: errors.New("parse failure")}

	var mu sync.Mutex
	var failures int
	stop := runWatcher(t, New(dir, ingest, WithDebounce(10*time.Millisecond), OnResult(func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		if r.Err != nil {
			failures++
		}
	})))
	defer stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return failures == 1
	}, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(dir, "next.json"), "[]")
	assert.Eventually(t, func() bool { return len(ingest.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("/tmp/a.json"))
	assert.True(t, isJSON("B.JSON"))
	assert.False(t, isJSON("a.json.tmp"))
	assert.False(t, isJSON(".a.json"))
	assert.False(t, isJSON("a.txt"))
}
