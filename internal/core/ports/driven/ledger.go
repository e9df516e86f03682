package driven

import "github.com/custodia-labs/netassist/internal/core/domain"

// IngestionLedger records which sources have already been chunked and stored.
// It is a skip-list for idempotency, not a mirror of the vector store.
// Implementations must be safe for concurrent use by one process.
type IngestionLedger interface {
	// IsIngested reports whether the key has a record.
	IsIngested(key string) bool

	// Record adds or replaces the record for key in memory.
	Record(key string, rec domain.IngestionRecord)

	// Persist writes the in-memory ledger to durable storage.
	Persist() error

	// Load replaces the in-memory ledger with the persisted one.
	Load() error

	// Reset clears the ledger and persists the empty state.
	Reset() error

	// Len returns the number of records.
	Len() int

	// Snapshot returns a copy of every record.
	Snapshot() map[string]domain.IngestionRecord
}
