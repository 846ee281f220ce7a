package model

import "time"

// EventStatus is the recorded outcome of processing one file.
type EventStatus string

// Event status constants.
const (
	StatusRenamed             EventStatus = "renamed"
	StatusQuarantinedUnparsed EventStatus = "quarantined_unparsed"
	StatusQuarantinedNoMatch  EventStatus = "quarantined_unmatched"
	StatusRenderFailed        EventStatus = "render_failed"
	StatusFetchFailed         EventStatus = "fetch_failed"
	StatusImported            EventStatus = "imported"
	StatusImportFailed        EventStatus = "import_failed"
	StatusUploaded            EventStatus = "uploaded"
	StatusArchived            EventStatus = "archived"
)

// SyncEvent is one row in the sync ledger: a single action taken for a
// single file. Append-only.
type SyncEvent struct {
	Timestamp  time.Time   `json:"timestamp"`
	FileTime   time.Time   `json:"file_time"`
	RemoteName string      `json:"remote_name"`
	LocalName  string      `json:"local_name"`
	Rule       string      `json:"rule"`
	Status     EventStatus `json:"status"`
	Detail     string      `json:"detail,omitempty"`
}
