package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/logger"
)

// vectorStore implements driven.VectorStore.
// Similarity is computed in Go over the rows that pass the metadata filter.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// EnsureCollection creates a collection if it does not exist and returns it.
func (s *vectorStore) EnsureCollection(ctx context.Context, info domain.CollectionInfo) (domain.CollectionInfo, error) {
	if info.Name == "" {
		return domain.CollectionInfo{}, fmt.Errorf("%w: collection name required", domain.ErrInvalidInput)
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO collections (name, type, vendor, dimension, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, info.Name, info.Type, info.Vendor, info.Dimension, info.Model, formatTime(info.CreatedAt))
	if err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("creating collection %s: %w", info.Name, err)
	}

	return s.GetCollection(ctx, info.Name)
}

// GetCollection returns a collection by name.
func (s *vectorStore) GetCollection(ctx context.Context, name string) (domain.CollectionInfo, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, type, vendor, dimension, model, created_at
		FROM collections WHERE name = ?
	`, name)

	info, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CollectionInfo{}, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("getting collection %s: %w", name, err)
	}
	return info, nil
}

// ListCollections returns every collection ordered by name.
func (s *vectorStore) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, type, vendor, dimension, model, created_at
		FROM collections ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var out []domain.CollectionInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		info, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return out, nil
}

// DeleteCollection removes a collection and its records.
func (s *vectorStore) DeleteCollection(ctx context.Context, name string) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings WHERE collection = ?`, name); err != nil {
			return fmt.Errorf("deleting records of %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
			return fmt.Errorf("deleting collection %s: %w", name, err)
		}
		return nil
	})
}

// Upsert writes records in a single transaction.
func (s *vectorStore) Upsert(ctx context.Context, collection string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := s.GetCollection(ctx, collection); err != nil {
		return err
	}

	now := formatTime(time.Now())
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO embeddings (collection, id, text, metadata, embedding, placeholder, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(collection, id) DO UPDATE SET
				text = excluded.text,
				metadata = excluded.metadata,
				embedding = excluded.embedding,
				placeholder = excluded.placeholder,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("preparing upsert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if rec.ID == "" {
				return fmt.Errorf("%w: record id required", domain.ErrInvalidInput)
			}
			meta, err := marshalMetadata(rec.Metadata)
			if err != nil {
				return err
			}
			placeholder := rec.Metadata.String(domain.MetaType) == domain.TypePlaceholder
			if _, err := stmt.ExecContext(ctx, collection, rec.ID, rec.Text, meta,
				float32SliceToBytes(rec.Embedding), boolToInt(placeholder), now); err != nil {
				return fmt.Errorf("upserting record %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// Query ranks the filtered records of a collection by cosine distance.
func (s *vectorStore) Query(
	ctx context.Context,
	collection string,
	embedding []float32,
	n int,
	where map[string]string,
) ([]domain.Hit, error) {
	if n <= 0 {
		return []domain.Hit{}, nil
	}
	if _, err := s.GetCollection(ctx, collection); err != nil {
		return nil, err
	}

	query, args := buildFilterQuery(collection, where)
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	hits := []domain.Hit{}
	mismatched := 0
	for rows.Next() {
		var (
			id, text, meta string
			blob           []byte
		)
		if err := rows.Scan(&id, &text, &meta, &blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		vec := bytesToFloat32Slice(blob)
		// Records written under a different model cannot be compared.
		if len(vec) != len(embedding) {
			mismatched++
			continue
		}
		md := unmarshalMetadata(meta)
		if !domain.MatchesFilter(md, where) {
			continue
		}
		hits = append(hits, domain.Hit{
			ID:       id,
			Document: text,
			Metadata: md,
			Distance: domain.CosineDistance(embedding, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	if mismatched > 0 {
		logger.Warn("sqlite: skipped %d records in %s with an embedding dimension other than %d",
			mismatched, collection, len(embedding))
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits, nil
}

// Count returns the number of records in a collection.
func (s *vectorStore) Count(ctx context.Context, collection string, includePlaceholders bool) (int, error) {
	query := `SELECT COUNT(*) FROM embeddings WHERE collection = ?`
	if !includePlaceholders {
		query += ` AND placeholder = 0`
	}

	var n int
	if err := s.store.db.QueryRowContext(ctx, query, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n, nil
}

// Close is a no-op; the owning Store holds the connection.
func (s *vectorStore) Close() error {
	return nil
}

// buildFilterQuery narrows candidate rows in SQL. Values are compared as
// text, with JSON booleans rendered as true/false like Metadata.String;
// the Go-side filter settles any other type differences.
func buildFilterQuery(collection string, where map[string]string) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, text, metadata, embedding FROM embeddings WHERE collection = ? AND placeholder = 0`)
	args := []any{collection}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(` AND (CASE json_type(metadata, ?) WHEN 'true' THEN 'true' WHEN 'false' THEN 'false'` +
			` ELSE CAST(json_extract(metadata, ?) AS TEXT) END) = ?`)
		path := jsonPath(k)
		args = append(args, path, path, where[k])
	}
	return b.String(), args
}

// jsonPath quotes a metadata key for json_extract.
func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCollection scans a collection row.
func scanCollection(row rowScanner) (domain.CollectionInfo, error) {
	var info domain.CollectionInfo
	var createdAt string
	if err := row.Scan(&info.Name, &info.Type, &info.Vendor, &info.Dimension, &info.Model, &createdAt); err != nil {
		return domain.CollectionInfo{}, err
	}
	info.CreatedAt = parseTime(createdAt)
	return info, nil
}
