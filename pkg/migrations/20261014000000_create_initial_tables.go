package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE import_jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				deleted_at TIMESTAMPTZ,
				file_path TEXT NOT NULL,
				file_hash TEXT NOT NULL,
				status TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		// Only live jobs take part in deduplication.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_import_jobs_file_hash ON import_jobs (file_hash) WHERE deleted_at IS NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_import_jobs_status_created_at ON import_jobs (status, created_at)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE metadata_candidates (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				import_job_id INTEGER REFERENCES import_jobs (id) ON DELETE CASCADE NOT NULL,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				source TEXT NOT NULL,
				external_id TEXT NOT NULL DEFAULT '',
				confidence_score REAL NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_metadata_candidates_import_job_id ON metadata_candidates (import_job_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				import_job_id INTEGER REFERENCES import_jobs (id) ON DELETE SET NULL,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				source TEXT NOT NULL,
				external_id TEXT NOT NULL DEFAULT '',
				file_path TEXT NOT NULL,
				imported_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_books_import_job_id ON books (import_job_id) WHERE import_job_id IS NOT NULL`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS books")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS metadata_candidates")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS import_jobs")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
