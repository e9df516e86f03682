package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
)

// updateStateStore implements driven.UpdateStateStore.
type updateStateStore struct {
	store *Store
}

var _ driven.UpdateStateStore = (*updateStateStore)(nil)

// LoadSeen returns the last-seen map for a source key.
func (s *updateStateStore) LoadSeen(ctx context.Context, sourceKey string) (domain.SeenDocuments, bool, error) {
	var raw string
	err := s.store.db.QueryRowContext(ctx,
		`SELECT seen FROM update_state WHERE source_key = ?`, sourceKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SeenDocuments{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading update state %s: %w", sourceKey, err)
	}

	seen := domain.SeenDocuments{}
	if err := json.Unmarshal([]byte(raw), &seen); err != nil {
		return nil, false, fmt.Errorf("decoding update state %s: %w", sourceKey, err)
	}
	return seen, true, nil
}

// SaveSeen replaces the last-seen map for a source key.
func (s *updateStateStore) SaveSeen(ctx context.Context, sourceKey string, seen domain.SeenDocuments) error {
	if seen == nil {
		seen = domain.SeenDocuments{}
	}
	raw, err := json.Marshal(seen)
	if err != nil {
		return fmt.Errorf("encoding update state %s: %w", sourceKey, err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO update_state (source_key, seen, checked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(source_key) DO UPDATE SET
			seen = excluded.seen,
			checked_at = excluded.checked_at
	`, sourceKey, string(raw), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving update state %s: %w", sourceKey, err)
	}
	return nil
}
