// Package file provides file-backed storage adapters.
package file

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/logger"
)

// Ensure Ledger implements the interface.
var _ driven.IngestionLedger = (*Ledger)(nil)

// LedgerFile is the ledger location relative to the data directory.
const LedgerFile = "tracking/ingested_files.json"

// Ledger is a JSON-file ingestion ledger.
// One instance is shared by every writer in the process; all access goes
// through mu and persistence replaces the file atomically.
type Ledger struct {
	mu      sync.Mutex
	path    string
	records map[string]domain.IngestionRecord
}

// NewLedger creates a ledger stored under dataDir and loads it.
// A missing or malformed file yields an empty ledger.
func NewLedger(dataDir string) (*Ledger, error) {
	l := &Ledger{
		path:    filepath.Join(dataDir, filepath.FromSlash(LedgerFile)),
		records: make(map[string]domain.IngestionRecord),
	}
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// IsIngested reports whether key has a record.
func (l *Ledger) IsIngested(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[key]
	return ok
}

// Record adds or replaces the record for key.
func (l *Ledger) Record(key string, rec domain.IngestionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[key] = rec
}

// Persist writes the ledger to disk.
func (l *Ledger) Persist() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persist()
}

// Load replaces the in-memory ledger with the file contents.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		l.records = make(map[string]domain.IngestionRecord)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	records := make(map[string]domain.IngestionRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("ingestion ledger %s is malformed, starting empty: %v", l.path, err)
		records = make(map[string]domain.IngestionRecord)
	}
	l.records = records
	return nil
}

// Reset clears the ledger and persists the empty state.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]domain.IngestionRecord)
	return l.persist()
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Snapshot returns a copy of every record.
func (l *Ledger) Snapshot() map[string]domain.IngestionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.records)
}

// persist writes to a temp file in the same directory and renames it over
// the ledger. Caller must hold mu.
func (l *Ledger) persist() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ingested_files-*.json")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}
