// Package snapshot backs up the account database to R2 as a zstd
// compressed SQLite file and restores it from there.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/r2client"
)

// ErrNotFound is returned by Restore when the bucket has no snapshot.
var ErrNotFound = fmt.Errorf("snapshot: %w", domerrors.ErrNotFound)

// ContentType is the content type of uploaded snapshots.
const ContentType = "application/zstd"

// Source produces a consistent database copy. *storage.DB satisfies it.
type Source interface {
	Snapshot(ctx context.Context, dstPath string) error
}

// Uploader stores an object. *r2client.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Downloader fetches an object. *r2client.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Config holds snapshot settings.
type Config struct {
	Key     string // R2 object key, e.g. "backups/calmmate.db.zst"
	TempDir string // scratch space; defaults to os.TempDir()
}

// Result describes a finished backup.
type Result struct {
	Key        string
	ETag       string
	Size       int64 // uncompressed bytes
	Compressed int64
	Duration   time.Duration
}

// Manager runs backups and restores against one object key.
type Manager struct {
	cfg Config
}

// New creates a manager. The key is required.
func New(cfg Config) (*Manager, error) {
	if cfg.Key == "" {
		return nil, errors.New("snapshot: key is required")
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &Manager{cfg: cfg}, nil
}

// Backup snapshots src, compresses the copy, and uploads it.
func (m *Manager) Backup(ctx context.Context, src Source, up Uploader) (Result, error) {
	start := time.Now()

	work, err := os.MkdirTemp(m.cfg.TempDir, "calmmate-snapshot-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(work) }()

	rawPath := filepath.Join(work, "snapshot.db")
	if err := src.Snapshot(ctx, rawPath); err != nil {
		return Result{}, err
	}
	info, err := os.Stat(rawPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat snapshot: %w", err)
	}

	compressedPath := rawPath + ".zst"
	if err := compressFile(rawPath, compressedPath); err != nil {
		return Result{}, err
	}

	f, err := os.Open(compressedPath)
	if err != nil {
		return Result{}, fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()
	compressed, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat compressed snapshot: %w", err)
	}

	etag, err := up.Upload(ctx, m.cfg.Key, f, ContentType)
	if err != nil {
		return Result{}, fmt.Errorf("upload snapshot: %w", err)
	}

	return Result{
		Key:        m.cfg.Key,
		ETag:       etag,
		Size:       info.Size(),
		Compressed: compressed.Size(),
		Duration:   time.Since(start),
	}, nil
}

// Restore downloads the snapshot and writes it to dstPath. The file is
// written beside dstPath and renamed into place, so a failed restore
// leaves nothing behind. An existing dstPath is refused.
// Returns ErrNotFound when no snapshot exists.
func (m *Manager) Restore(ctx context.Context, down Downloader, dstPath string) (string, error) {
	if _, err := os.Stat(dstPath); err == nil {
		return "", fmt.Errorf("restore: %s already exists", dstPath)
	}
	if dir := filepath.Dir(dstPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("create destination dir: %w", err)
		}
	}

	body, etag, err := down.Download(ctx, m.cfg.Key)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("download snapshot: %w", err)
	}
	defer func() { _ = body.Close() }()

	tmp := dstPath + ".restore"
	if err := decompressTo(body, tmp); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dstPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("move snapshot into place: %w", err)
	}
	return etag, nil
}

func compressFile(srcPath, dstPath string) (err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create compressed file: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close compressed file: %w", cerr)
		}
	}()

	return r2client.Compress(dst, src)
}

func decompressTo(r io.Reader, dstPath string) (err error) {
	dec, err := r2client.Decompress(r)
	if err != nil {
		return err
	}
	defer func() { _ = dec.Close() }()

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create restore file: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close restore file: %w", cerr)
		}
	}()

	if _, err := io.Copy(dst, dec); err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	return nil
}
