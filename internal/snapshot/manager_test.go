package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/r2client"
	"github.com/garyellow/calmmate-go/internal/storage"
)

// memBucket is an in-memory stand-in for the R2 client.
type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memBucket) Upload(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	if b.failPut != nil {
		return "", b.failPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return "etag-1", nil
}

func (b *memBucket) Download(_ context.Context, key string) (io.ReadCloser, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, "", r2client.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "etag-1", nil
}

func newTestDB(t *testing.T, path string) *storage.DB {
	t.Helper()
	db, err := storage.New(context.Background(), path, storage.WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_RequiresKey(t *testing.T) {
	t.Parallel()
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	db := newTestDB(t, filepath.Join(dir, "live.db"))
	_, err := db.CreateUser(ctx, "sam@example.com", "Sam", "password123")
	require.NoError(t, err)

	bucket := newMemBucket()
	m, err := New(Config{Key: "backups/calmmate.db.zst", TempDir: dir})
	require.NoError(t, err)

	res, err := m.Backup(ctx, db, bucket)
	require.NoError(t, err)
	assert.Equal(t, "backups/calmmate.db.zst", res.Key)
	assert.Equal(t, "etag-1", res.ETag)
	assert.Positive(t, res.Size)
	assert.Positive(t, res.Compressed)
	assert.Equal(t, ContentType, bucket.types[res.Key])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "calmmate-snapshot-", "temp dir is removed")
	}

	restored := filepath.Join(dir, "restore", "calmmate.db")
	etag, err := m.Restore(ctx, bucket, restored)
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)

	copyDB := newTestDB(t, restored)
	user, err := copyDB.Authenticate(ctx, "sam@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.Name)
}

func TestRestore_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	m, err := New(Config{Key: "missing.db.zst", TempDir: dir})
	require.NoError(t, err)

	_, err = m.Restore(ctx, newMemBucket(), filepath.Join(dir, "a.db"))
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, domerrors.IsNotFound(err))

	existing := filepath.Join(dir, "existing.db")
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0o600))
	_, err = m.Restore(ctx, newMemBucket(), existing)
	assert.Error(t, err)
	data, _ := os.ReadFile(existing)
	assert.Equal(t, "keep", string(data))

	corrupt := newMemBucket()
	corrupt.objects["missing.db.zst"] = []byte("not zstd")
	target := filepath.Join(dir, "corrupt.db")
	_, err = m.Restore(ctx, corrupt, target)
	assert.Error(t, err)
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(target + ".restore")
	assert.True(t, os.IsNotExist(statErr))
}

func TestBackup_UploadFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	db := newTestDB(t, filepath.Join(dir, "live.db"))

	bucket := newMemBucket()
	bucket.failPut = errors.New("503 slow down")
	m, err := New(Config{Key: "k", TempDir: dir})
	require.NoError(t, err)

	_, err = m.Backup(context.Background(), db, bucket)
	assert.ErrorContains(t, err, "upload snapshot")
}
