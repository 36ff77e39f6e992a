package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/curves/internal/series"
)

// GetSeries returns the cached series for key. ok is false on a miss.
func (s *Store) GetSeries(ctx context.Context, key series.CacheKey) (*series.Series, bool, error) {
	var (
		count int
		data  []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT point_count, points
		FROM series
		WHERE key_id = ?
	`, KeyID(key)).Scan(&count, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get series: %w", err)
	}

	points, err := unmarshalPoints(data, count)
	if err != nil {
		return nil, false, fmt.Errorf("get series: %w", err)
	}
	return &series.Series{Tag: key.Tag, Points: points}, true, nil
}

// PutSeries stores a decoded series under key and evicts entries for other
// versions of the same log and tag. Writing the same key twice keeps the
// first entry.
func (s *Store) PutSeries(ctx context.Context, key series.CacheKey, ser *series.Series) error {
	id := KeyID(key)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put series: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM series
		WHERE path = ? AND tag = ? AND key_id <> ?
	`, key.Path, key.Tag, id); err != nil {
		return fmt.Errorf("put series: evict: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO series
		(key_id, path, size, mod_time, tag, point_count, points)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_id) DO NOTHING
	`,
		id,
		key.Path,
		key.Size,
		key.ModTime,
		key.Tag,
		len(ser.Points),
		marshalPoints(ser.Points),
	); err != nil {
		return fmt.Errorf("put series: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put series: commit: %w", err)
	}
	return nil
}

// Count returns the number of cached series.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM series").Scan(&n); err != nil {
		return 0, fmt.Errorf("count series: %w", err)
	}
	return n, nil
}

// Clear removes every cached series.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM series"); err != nil {
		return fmt.Errorf("clear series: %w", err)
	}
	return nil
}

var _ series.Cache = (*Store)(nil)
