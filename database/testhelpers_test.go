package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (*Repository, *DB) {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))

	return NewRepository(db), db
}

func i64(v int64) *int64 { return &v }
