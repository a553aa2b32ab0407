// Package testutils holds helpers shared by package tests that need a
// migrated database.
package testutils

import (
	"context"
	"testing"

	"github.com/paparr/paparr/pkg/config"
	"github.com/paparr/paparr/pkg/database"
	"github.com/paparr/paparr/pkg/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// NewDB returns an in-memory SQLite database with every migration applied,
// opened the same way the binaries open theirs. It is closed when the test
// finishes.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return db
}
