// Package logbook maintains the append-only CSV log of file transfers,
// one row per processed file, in the format the downstream reporting jobs
// already consume.
package logbook

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ierg/nscsync/internal/model"
)

// timestampLayout is the human-readable layout used in log rows.
const timestampLayout = "2006-01-02 15:04:05"

// header is written once, when the log file is first created.
var header = []string{"nsc_file_name", "local_file_name", "file_date_time", "status", "date_time"}

// Logbook appends sync events to a CSV file. Safe for concurrent use; rows
// from parallel workers are serialized.
type Logbook struct {
	path string
	mu   sync.Mutex
}

// New returns a logbook writing to path. The file is created lazily on the
// first record so a dry run never touches it.
func New(path string) (*Logbook, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}
	return &Logbook{path: path}, nil
}

// Record appends one event to the log file, creating it (with header) if
// needed.
func (l *Logbook) Record(event model.SyncEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(filepath.Dir(l.path), 0o750); mkErr != nil {
			return fmt.Errorf("failed to create log directory: %w", mkErr)
		}
		writeHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	fileTime := ""
	if !event.FileTime.IsZero() {
		fileTime = event.FileTime.Format(timestampLayout)
	}

	row := []string{
		event.RemoteName,
		event.LocalName,
		fileTime,
		string(event.Status),
		timestamp.Format(timestampLayout),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush log row: %w", err)
	}
	return nil
}
