// Package watch ingests JSON documentation dumps dropped into a directory.
// Files are processed one at a time on the watcher goroutine, so drop-folder
// ingestion never races itself on the ingestion ledger.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Result reports the outcome of ingesting one file.
type Result struct {
	Path   string
	Report domain.IngestReport
	Err    error
}

// Watcher ingests *.json files created or written in a directory.
type Watcher struct {
	dir        string
	ingest     driving.IngestionService
	collection string
	debounce   time.Duration
	initial    bool
	onResult   func(Result)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithCollection routes every file to one collection key instead of
// routing records by vendor.
func WithCollection(key string) Option {
	return func(w *Watcher) {
		w.collection = key
	}
}

// WithDebounce sets the quiet period before a file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithInitialScan controls whether files already present are ingested on start.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initial = enabled
	}
}

// OnResult registers a callback invoked after each file.
func OnResult(fn func(Result)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestionService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		ingest:   ingest,
		debounce: DefaultDebounce,
		initial:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create watch directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watch: watching %s", w.dir)

	if w.initial {
		for _, path := range w.existing() {
			if ctx.Err() != nil {
				return nil
			}
			w.ingestFile(ctx, path)
		}
	}

	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !accept(event) {
				continue
			}
			if t, pending := timers[event.Name]; pending {
				t.Reset(w.debounce)
				continue
			}
			name := event.Name
			timers[name] = time.AfterFunc(w.debounce, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case path := <-ready:
			delete(timers, path)
			w.ingestFile(ctx, path)
		}
	}
}

// existing returns the JSON files already in the directory, sorted.
func (w *Watcher) existing() []string {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("watch: read %s: %v", w.dir, err)
		return nil
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && isJSON(e.Name()) {
			paths = append(paths, filepath.Join(w.dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	report, err := w.ingest.IngestJSONFile(ctx, path, w.collection)
	if err != nil {
		logger.Warn("watch: ingest %s: %v", path, err)
	} else {
		logger.Info("watch: %s: %d chunks, %d skipped", filepath.Base(path), report.Chunks, report.Skipped)
	}
	if w.onResult != nil {
		w.onResult(Result{Path: path, Report: report, Err: err})
	}
}

func accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return isJSON(event.Name)
}

func isJSON(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && !strings.HasPrefix(base, ".")
}
