package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Watermark returns the stored high-water mark for name, or the zero time
// when none has been recorded yet.
func (s *Store) Watermark(ctx context.Context, name string) (time.Time, error) {
	var mark time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT mark FROM watermarks WHERE name = ?`, name,
	).Scan(&mark)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read watermark %q: %w", name, err)
	}
	return mark, nil
}

// SetWatermark stores the high-water mark for name, replacing any previous
// value. The orchestrator only ever moves it forward.
func (s *Store) SetWatermark(ctx context.Context, name string, mark time.Time) error {
	if name == "" {
		return fmt.Errorf("watermark name cannot be empty")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watermarks (name, mark, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			mark = excluded.mark,
			updated_at = excluded.updated_at
	`, name, mark)
	if err != nil {
		return fmt.Errorf("failed to set watermark %q: %w", name, err)
	}
	return nil
}
