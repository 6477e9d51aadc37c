// Package fetcher downloads the vendor product feed from its SFTP drop
// location to the local path the import pipeline reads from.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// Config holds SFTP connection settings. Either Password or KeyPath must
// be set.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyPath  string
}

// SFTPClient downloads feed files over SFTP.
type SFTPClient struct {
	cfg    Config
	logger zerolog.Logger
}

// NewSFTPClient creates a client from connection settings.
func NewSFTPClient(cfg Config, logger zerolog.Logger) *SFTPClient {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	return &SFTPClient{cfg: cfg, logger: logger}
}

// Download copies remotePath to localPath. The file is written to a
// temporary sibling first and renamed into place, so a partial transfer
// never replaces a previously downloaded feed.
func (c *SFTPClient) Download(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create feed directory: %w", err)
	}

	client, closeConn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer closeConn()

	c.logger.Info().
		Str("host", c.cfg.Host).
		Str("remote_path", remotePath).
		Str("local_path", localPath).
		Msg("Downloading feed over SFTP")

	remote, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("open remote file %s: %w", remotePath, err)
	}
	defer remote.Close()

	tmpPath := localPath + ".tmp"
	local, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	size, err := io.Copy(local, remote)
	if cerr := local.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download %s: %w", remotePath, err)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace feed file: %w", err)
	}

	c.logger.Info().Int64("bytes", size).Str("local_path", localPath).Msg("Feed download completed")
	return nil
}

func (c *SFTPClient) connect(ctx context.Context) (*sftp.Client, func(), error) {
	auth, err := c.authMethods()
	if err != nil {
		return nil, nil, err
	}

	sshCfg := &ssh.ClientConfig{
		User: c.cfg.User,
		Auth: auth,
		// The vendor host rotates keys without notice; host identity is
		// not verified.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := net.JoinHostPort(c.cfg.Host, fmt.Sprintf("%d", c.cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, nil, fmt.Errorf("open sftp session: %w", err)
	}

	closeAll := func() {
		client.Close()
		sshClient.Close()
	}
	return client, closeAll, nil
}

func (c *SFTPClient) authMethods() ([]ssh.AuthMethod, error) {
	if c.cfg.KeyPath != "" {
		keyBytes, err := os.ReadFile(c.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read sftp key %s: %w", c.cfg.KeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse sftp key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	if c.cfg.Password != "" {
		return []ssh.AuthMethod{ssh.Password(c.cfg.Password)}, nil
	}
	return nil, fmt.Errorf("sftp credentials not configured: set a password or key path")
}
