package engine

import (
	"context"
	"io"
	"time"

	"github.com/ierg/nscsync/internal/model"
	"github.com/ierg/nscsync/internal/transport"
)

// Transport is the slice of the transfer client the orchestrator drives.
// Session lifecycle stays with the caller.
type Transport interface {
	List(ctx context.Context) ([]transport.RemoteFile, error)
	Fetch(ctx context.Context, name string, dst io.Writer) error
	Upload(ctx context.Context, name string, src io.Reader) error
	Acknowledge(ctx context.Context, name string) error
}

// Ledger records processed-file events durably and tracks the remote
// watermark between runs.
type Ledger interface {
	RecordEvent(ctx context.Context, event model.SyncEvent) error
	Watermark(ctx context.Context, name string) (time.Time, error)
	SetWatermark(ctx context.Context, name string, mark time.Time) error
}

// Recorder appends events to the operator-facing CSV logbook.
type Recorder interface {
	Record(event model.SyncEvent) error
}

// ImportRunner executes a fully substituted import invocation.
type ImportRunner interface {
	Run(ctx context.Context, inv model.ImportInvocation) error
}
