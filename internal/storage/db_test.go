package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"), WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_NestedDirectory(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "sub1", "sub2", "calmmate.db")

	db, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.Equal(t, dbPath, db.Path())
	assert.NoError(t, db.Ping(context.Background()))
}

func TestNew_InMemory(t *testing.T) {
	t.Parallel()

	db, err := New(context.Background(), ":memory:", WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.CreateUser(context.Background(), "a@example.com", "A", "password123")
	require.NoError(t, err)
	n, err := db.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "  Jane@Example.COM ", " Jane ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane", u.Name)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = db.CreateUser(ctx, "jane@example.com", "Other", "another password")
	assert.True(t, domerrors.IsAlreadyExists(err))

	n, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateUser_Validation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		field    string
	}{
		{"missing email", "", "A", "password123", "email"},
		{"malformed email", "not-an-email", "A", "password123", "email"},
		{"display-name form", "A <a@example.com>", "A", "password123", "email"},
		{"missing name", "a@example.com", "  ", "password123", "name"},
		{"short password", "a@example.com", "A", "short", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := db.CreateUser(context.Background(), tt.email, tt.userName, tt.password)
			require.Error(t, err)
			assert.True(t, domerrors.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.CreateUser(ctx, "jane@example.com", "Jane", "correct horse")
	require.NoError(t, err)

	u, err := db.Authenticate(ctx, "JANE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)
	require.NotNil(t, u.LastLoginAt)

	stored, err := db.GetUser(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, u.LastLoginAt.Unix(), stored.LastLoginAt.Unix())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "jane@example.com", "battery staple"},
		{"unknown email", "john@example.com", "correct horse"},
		{"empty password", "jane@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := db.Authenticate(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.True(t, domerrors.IsUnauthorized(err))
		})
	}
}

func TestAuthenticate_FailuresCostOneComparison(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.CreateUser(ctx, "jane@example.com", "Jane", "correct horse")
	require.NoError(t, err)

	var hashes [][]byte
	db.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, unknownErr := db.Authenticate(ctx, "nobody@example.com", "correct horse")
	_, wrongErr := db.Authenticate(ctx, "jane@example.com", "battery staple")

	assert.Equal(t, unknownErr, wrongErr)
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.Len(t, hashes, 2)
	assert.Equal(t, db.missHash, hashes[0])

	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestNew_InvalidHashCost(t *testing.T) {
	t.Parallel()
	_, err := New(context.Background(), ":memory:", WithHashCost(bcrypt.MaxCost+1))
	assert.Error(t, err)
}

func TestGetUser_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	_, err := db.GetUser(context.Background(), "nobody@example.com")
	assert.True(t, domerrors.IsNotFound(err))
}

func TestCreateUser_ConcurrentDuplicates(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for range 5 {
		wg.Go(func() {
			if _, err := db.CreateUser(ctx, "race@example.com", "Racer", "password123"); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestClose_Reopen(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "calmmate.db")
	ctx := context.Background()

	db, err := New(ctx, dbPath, WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	_, err = db.CreateUser(ctx, "keep@example.com", "Keep", "password123")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = db2.Close() }()

	u, err := db2.GetUser(ctx, "keep@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Keep", u.Name)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := db.CreateUser(ctx, "kim@example.com", "Kim", "password123")
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, db.Snapshot(ctx, dst))
	assert.Error(t, db.Snapshot(ctx, dst), "existing destination is refused")

	copyDB, err := New(ctx, dst, WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	defer func() { _ = copyDB.Close() }()

	n, err := copyDB.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = copyDB.Authenticate(ctx, "kim@example.com", "password123")
	assert.NoError(t, err)
}
