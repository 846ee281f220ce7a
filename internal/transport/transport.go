// Package transport implements the clearinghouse file-transfer collaborator.
package transport

import (
	"context"
	"io"
	"time"
)

// RemoteFile describes one file visible in a remote directory.
type RemoteFile struct {
	ModTime time.Time
	Name    string
	Size    int64
}

// Client is the narrow contract the sync orchestrator needs from the
// transfer channel. Implementations own session lifecycle; the orchestrator
// never sees connection details.
type Client interface {
	// List returns the regular files in the remote receive directory.
	List(ctx context.Context) ([]RemoteFile, error)
	// Fetch streams the named remote file into dst.
	Fetch(ctx context.Context, name string, dst io.Writer) error
	// Upload streams src into the named file in the remote send directory.
	Upload(ctx context.Context, name string, src io.Reader) error
	// Acknowledge removes the named file from the remote receive directory
	// after it has been safely landed locally.
	Acknowledge(ctx context.Context, name string) error
	// Close tears down the session.
	Close() error
}
