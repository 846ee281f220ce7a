package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ierg/nscsync/internal/model"
)

// RecordEvent appends one event to the ledger. The ledger is append-only;
// nothing ever updates or deletes a recorded row.
func (s *Store) RecordEvent(ctx context.Context, event model.SyncEvent) error {
	if event.RemoteName == "" {
		return fmt.Errorf("event remote_name cannot be empty")
	}
	if event.Status == "" {
		return fmt.Errorf("event status cannot be empty")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var fileTime any
	if !event.FileTime.IsZero() {
		fileTime = event.FileTime
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_events (
			remote_name, local_name, rule, status, detail, file_time, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.RemoteName,
		event.LocalName,
		event.Rule,
		string(event.Status),
		event.Detail,
		fileTime,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	return nil
}

// RecentEvents returns up to limit ledger rows, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]model.SyncEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT remote_name, local_name, rule, status, detail, file_time, recorded_at
		FROM sync_events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.SyncEvent
	for rows.Next() {
		var (
			event    model.SyncEvent
			status   string
			fileTime sql.NullTime
		)
		if err := rows.Scan(
			&event.RemoteName,
			&event.LocalName,
			&event.Rule,
			&status,
			&event.Detail,
			&fileTime,
			&event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Status = model.EventStatus(status)
		if fileTime.Valid {
			event.FileTime = fileTime.Time
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, nil
}
