package imports

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// ErrDuplicateFile is returned by CreateImportJob when a live job already
// holds the same content fingerprint.
var ErrDuplicateFile = errors.New("an import job already exists for this file")

type RetrieveImportJobOptions struct {
	ID       *int
	FileHash *string
}

type ListImportJobsOptions struct {
	Limit    *int
	Offset   *int
	Statuses []string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateImportJob(ctx context.Context, job *models.ImportJob) error {
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = job.CreatedAt
	if job.Status == "" {
		job.Status = models.ImportJobStatusPending
	}

	_, err := svc.db.
		NewInsert().
		Model(job).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return errors.WithStack(ErrDuplicateFile)
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveImportJob(ctx context.Context, opts RetrieveImportJobOptions) (*models.ImportJob, error) {
	job := &models.ImportJob{}

	q := svc.db.
		NewSelect().
		Model(job).
		Relation("Candidates", orderCandidates).
		Relation("Book").
		Where("ij.deleted_at IS NULL")

	if opts.ID != nil {
		q = q.Where("ij.id = ?", *opts.ID)
	}
	if opts.FileHash != nil {
		q = q.Where("ij.file_hash = ?", *opts.FileHash)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Import job")
		}
		return nil, errors.WithStack(err)
	}

	return job, nil
}

func (svc *Service) ListImportJobs(ctx context.Context, opts ListImportJobsOptions) ([]*models.ImportJob, error) {
	j, _, err := svc.listImportJobsWithTotal(ctx, opts)
	return j, errors.WithStack(err)
}

func (svc *Service) ListImportJobsWithTotal(ctx context.Context, opts ListImportJobsOptions) ([]*models.ImportJob, int, error) {
	opts.includeTotal = true
	return svc.listImportJobsWithTotal(ctx, opts)
}

func (svc *Service) listImportJobsWithTotal(ctx context.Context, opts ListImportJobsOptions) ([]*models.ImportJob, int, error) {
	jobs := []*models.ImportJob{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&jobs).
		Relation("Candidates", orderCandidates).
		Relation("Book").
		Where("ij.deleted_at IS NULL").
		Order("ij.created_at DESC", "ij.id DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if len(opts.Statuses) > 0 {
		q = q.Where("ij.status IN (?)", bun.In(opts.Statuses))
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return jobs, total, nil
}

// updateStatus moves job to the status reached by event, but only if the row
// still holds the status job was read with. A concurrent writer that got
// there first makes this a conflict and leaves the row alone.
func (svc *Service) updateStatus(ctx context.Context, idb bun.IDB, job *models.ImportJob, event Event) error {
	to, err := Transition(job.Status, event)
	if err != nil {
		return err
	}

	now := time.Now()
	result, err := idb.NewUpdate().
		Model((*models.ImportJob)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", now).
		Where("id = ?", job.ID).
		Where("status = ?", job.Status).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if rowsAffected == 0 {
		return errcodes.Conflict("Import job was modified by another request.")
	}

	job.Status = to
	job.UpdatedAt = now
	return nil
}

// createCandidates stores candidates for job in order, so ids follow
// insertion order.
func (svc *Service) createCandidates(ctx context.Context, job *models.ImportJob, candidates []*models.MetadataCandidate) error {
	if len(candidates) == 0 {
		return nil
	}

	now := time.Now()
	for _, c := range candidates {
		c.ImportJobID = job.ID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, c := range candidates {
			_, err := tx.NewInsert().Model(c).Returning("*").Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	job.Candidates = append(job.Candidates, candidates...)
	return nil
}

func (svc *Service) deleteCandidates(ctx context.Context, idb bun.IDB, jobID int) error {
	_, err := idb.NewDelete().
		Model((*models.MetadataCandidate)(nil)).
		Where("import_job_id = ?", jobID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) createBook(ctx context.Context, idb bun.IDB, book *models.Book) error {
	if book.ImportedAt.IsZero() {
		book.ImportedAt = time.Now()
	}
	_, err := idb.NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

// listStuckJobIDs returns jobs left processing, which only happens when a
// previous process stopped mid-job.
func (svc *Service) listStuckJobIDs(ctx context.Context) ([]int, error) {
	var ids []int
	err := svc.db.NewSelect().
		Model((*models.ImportJob)(nil)).
		Column("id").
		Where("status = ?", models.ImportJobStatusProcessing).
		Where("deleted_at IS NULL").
		Order("id ASC").
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

func orderCandidates(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("mc.confidence_score DESC", "mc.id ASC")
}
