package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/ierg/nscsync/internal/config"
)

// SFTPClient is the production Client, speaking SFTP to the clearinghouse
// endpoint.
type SFTPClient struct {
	conn        *ssh.Client
	client      *sftp.Client
	receivePath string
	sendPath    string
}

var _ Client = (*SFTPClient)(nil)

// Dial connects and authenticates against the configured endpoint.
func Dial(cfg config.FTPConfig) (*SFTPClient, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	sshCfg := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		// The endpoint is addressed through a dedicated network path; host
		// identity is not verified at this layer, matching the legacy
		// transfer jobs this replaces.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
	}

	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start sftp session: %w", err)
	}

	slog.Debug("Connected to SFTP endpoint", "host", cfg.Host, "port", cfg.Port)

	return &SFTPClient{
		conn:        conn,
		client:      client,
		receivePath: cfg.ReceivePath,
		sendPath:    cfg.SendPath,
	}, nil
}

// List returns the regular files in the remote receive directory.
func (c *SFTPClient) List(ctx context.Context) ([]RemoteFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := c.client.ReadDir(c.receivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.receivePath, err)
	}

	files := make([]RemoteFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, RemoteFile{
			Name:    entry.Name(),
			Size:    entry.Size(),
			ModTime: entry.ModTime(),
		})
	}
	return files, nil
}

// Fetch streams the named remote file into dst.
func (c *SFTPClient) Fetch(ctx context.Context, name string, dst io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	remote := path.Join(c.receivePath, name)
	f, err := c.client.Open(remote)
	if err != nil {
		return fmt.Errorf("failed to open remote file %s: %w", remote, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("failed to download %s: %w", remote, err)
	}
	return nil
}

// Upload streams src into the named file in the remote send directory.
func (c *SFTPClient) Upload(ctx context.Context, name string, src io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	remote := path.Join(c.sendPath, name)
	f, err := c.client.Create(remote)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", remote, err)
	}

	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to upload %s: %w", remote, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", remote, err)
	}
	return nil
}

// Acknowledge removes the named file from the remote receive directory.
func (c *SFTPClient) Acknowledge(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	remote := path.Join(c.receivePath, name)
	if err := c.client.Remove(remote); err != nil {
		return fmt.Errorf("failed to remove remote file %s: %w", remote, err)
	}
	return nil
}

// Close tears down the SFTP session and the underlying SSH connection.
func (c *SFTPClient) Close() error {
	sftpErr := c.client.Close()
	sshErr := c.conn.Close()
	if sftpErr != nil {
		return fmt.Errorf("failed to close sftp session: %w", sftpErr)
	}
	if sshErr != nil {
		return fmt.Errorf("failed to close ssh connection: %w", sshErr)
	}
	return nil
}
