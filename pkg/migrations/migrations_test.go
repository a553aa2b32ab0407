package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestBringUpToDate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	for _, table := range []string{"import_jobs", "metadata_candidates", "books", "job_logs"} {
		var count int
		err := db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(ctx, &count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	// Running again is a no-op.
	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.True(t, group.IsZero())
}

func TestFileHashUniqueAmongLiveJobs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO import_jobs (file_path, file_hash, status) VALUES ('/a.epub', 'abc', 'pending')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO import_jobs (file_path, file_hash, status) VALUES ('/b.epub', 'abc', 'pending')`)
	require.Error(t, err)

	_, err = db.Exec(`UPDATE import_jobs SET deleted_at = CURRENT_TIMESTAMP WHERE file_hash = 'abc'`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO import_jobs (file_path, file_hash, status) VALUES ('/b.epub', 'abc', 'pending')`)
	require.NoError(t, err)
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	migrator := migrate.NewMigrator(db, Migrations)
	_, err = migrator.Rollback(ctx)
	require.NoError(t, err)

	var count int
	err = db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('import_jobs', 'job_logs')").Scan(ctx, &count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
