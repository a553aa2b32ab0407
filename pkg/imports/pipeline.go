package imports

import (
	"context"
	"database/sql"
	"os"

	"github.com/paparr/paparr/pkg/enricher"
	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/joblogs"
	"github.com/paparr/paparr/pkg/library"
	"github.com/paparr/paparr/pkg/metadata"
	"github.com/paparr/paparr/pkg/models"
	"github.com/paparr/paparr/pkg/scoring"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// DefaultAutoAcceptThreshold is the confidence at or above which the best
// candidate is accepted without review.
const DefaultAutoAcceptThreshold = 90.0

type Extractor interface {
	Extract(ctx context.Context, path string) (*metadata.Metadata, error)
}

type Enricher interface {
	Enrich(ctx context.Context, title, author string) ([]enricher.Candidate, []*enricher.ProviderError)
}

type PipelineOptions struct {
	Extractor   Extractor
	Enricher    Enricher
	LibraryPath string
	// Threshold defaults to DefaultAutoAcceptThreshold when zero.
	Threshold float64
}

// Pipeline drives import jobs through their lifecycle: extraction,
// enrichment, the auto-accept decision and library placement.
type Pipeline struct {
	db        *bun.DB
	service   *Service
	jobLogs   *joblogs.Service
	extractor Extractor
	enricher  Enricher
	placer    *library.Placer
	threshold float64
	locks     *jobLocks
}

func NewPipeline(db *bun.DB, opts PipelineOptions) *Pipeline {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultAutoAcceptThreshold
	}
	return &Pipeline{
		db:        db,
		service:   NewService(db),
		jobLogs:   joblogs.NewService(db),
		extractor: opts.Extractor,
		enricher:  opts.Enricher,
		placer:    library.NewPlacer(opts.LibraryPath),
		threshold: threshold,
		locks:     newJobLocks(),
	}
}

// Service exposes the store the pipeline writes through.
func (p *Pipeline) Service() *Service {
	return p.service
}

func (p *Pipeline) ListJobs(ctx context.Context, opts ListImportJobsOptions) ([]*models.ImportJob, error) {
	return p.service.ListImportJobs(ctx, opts)
}

func (p *Pipeline) RetrieveJob(ctx context.Context, id int) (*models.ImportJob, error) {
	return p.service.RetrieveImportJob(ctx, RetrieveImportJobOptions{ID: &id})
}

// Process runs a pending job to awaiting_approval, completed or failed.
// Failures of the job itself are recorded on the job and are not returned;
// the returned error means the job could not be started or its failure could
// not be recorded.
func (p *Pipeline) Process(ctx context.Context, job *models.ImportJob) (err error) {
	unlock := p.locks.lock(job.ID)
	defer unlock()

	jl := p.jobLogs.NewJobLogger(ctx, job.ID, logger.FromContext(ctx).Data(logger.Data{"path": job.FilePath}))
	ctx = jl.Logger().WithContext(ctx)

	if err := p.service.updateStatus(ctx, p.db, job, EventStart); err != nil {
		return err
	}
	jl.Info("processing import job", nil)

	defer func() {
		if r := recover(); r != nil {
			err = p.fail(ctx, job, jl, "import job panicked", errors.Errorf("%v", r))
		}
	}()

	if perr := p.process(ctx, job, jl); perr != nil {
		return p.fail(ctx, job, jl, "import job failed", perr)
	}
	return nil
}

func (p *Pipeline) process(ctx context.Context, job *models.ImportJob, jl *joblogs.JobLogger) error {
	if _, err := os.Stat(job.FilePath); err != nil {
		if os.IsNotExist(err) {
			return p.fail(ctx, job, jl, "source file no longer exists", nil)
		}
		return errors.WithStack(err)
	}

	md, err := p.extractor.Extract(ctx, job.FilePath)
	if err != nil {
		return errors.Wrap(err, "failed to extract metadata")
	}
	if md == nil {
		return p.fail(ctx, job, jl, "no title and author could be determined", nil)
	}
	jl.Info("extracted reference metadata", logger.Data{"title": md.Title, "author": md.Author, "source": md.Source})

	candidates := []*models.MetadataCandidate{{
		Title:           md.Title,
		Author:          md.Author,
		Source:          md.Source,
		ConfidenceScore: scoring.EmbeddedConfidence,
	}}

	found, failures := p.enricher.Enrich(ctx, md.Title, md.Author)
	for _, f := range failures {
		jl.Warn("metadata provider lookup failed", logger.Data{"source": f.Source, "error": f.Err.Error()})
	}
	for _, c := range found {
		candidates = append(candidates, &models.MetadataCandidate{
			Title:           c.Title,
			Author:          c.Author,
			Source:          c.Source,
			ExternalID:      c.ExternalID,
			ConfidenceScore: c.Score,
		})
	}

	if err := p.service.createCandidates(ctx, job, candidates); err != nil {
		return errors.Wrap(err, "failed to save candidates")
	}

	best := bestCandidate(candidates)
	jl.Info("scored candidates", logger.Data{
		"count":      len(candidates),
		"best_score": best.ConfidenceScore,
		"best_title": best.Title,
		"threshold":  p.threshold,
	})

	if best.ConfidenceScore >= p.threshold {
		jl.Info("auto-accepting best candidate", logger.Data{"candidate_id": best.ID})
		return p.accept(ctx, job, best, jl)
	}

	if err := p.service.updateStatus(ctx, p.db, job, EventAwait); err != nil {
		return err
	}
	jl.Info("import job awaiting approval", nil)
	return nil
}

// Accept files the job's source under the candidate's title and author and
// completes the job. A failed placement fails the job; the job is returned
// either way. Only jobs awaiting approval can be accepted. Accepting two jobs
// that name the same title and author overwrites the first file in the
// library; accepting the same job twice is a client error.
func (p *Pipeline) Accept(ctx context.Context, jobID, candidateID int) (*models.ImportJob, error) {
	unlock := p.locks.lock(jobID)
	defer unlock()

	job, err := p.RetrieveJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	candidate := job.Candidate(candidateID)
	if candidate == nil {
		return nil, errcodes.BadRequest("candidate not found for this job")
	}
	if job.Status != models.ImportJobStatusAwaitingApproval {
		return nil, errcodes.BadRequest("only jobs awaiting approval can be accepted")
	}

	jl := p.jobLogs.NewJobLogger(ctx, job.ID, logger.FromContext(ctx).Data(logger.Data{"path": job.FilePath}))
	ctx = jl.Logger().WithContext(ctx)
	jl.Info("accepting candidate", logger.Data{"candidate_id": candidate.ID})

	if err := p.accept(ctx, job, candidate, jl); err != nil {
		return nil, err
	}

	return p.RetrieveJob(ctx, jobID)
}

// accept expects the caller to hold the job's lock.
func (p *Pipeline) accept(ctx context.Context, job *models.ImportJob, candidate *models.MetadataCandidate, jl *joblogs.JobLogger) error {
	dst, err := p.placer.Place(ctx, job.FilePath, candidate.Title, candidate.Author)
	if err != nil {
		return p.fail(ctx, job, jl, "failed to place book in library", err)
	}

	jobID := job.ID
	book := &models.Book{
		ImportJobID: &jobID,
		Title:       candidate.Title,
		Author:      candidate.Author,
		Source:      candidate.Source,
		ExternalID:  candidate.ExternalID,
		FilePath:    dst,
	}

	err = p.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := p.service.createBook(ctx, tx, book); err != nil {
			return err
		}
		return p.service.updateStatus(ctx, tx, job, EventComplete)
	})
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			jl.Warn("failed to remove placed file", logger.Data{"destination": dst, "error": rmErr.Error()})
		}
		return err
	}
	job.Book = book
	jl.Info("book added to library", logger.Data{"book_id": book.ID, "destination": dst})

	if err := os.Remove(job.FilePath); err != nil {
		jl.Warn("failed to remove source file", logger.Data{"error": err.Error()})
	}
	return nil
}

// Retry clears a failed job's candidates and returns it to pending for the
// next scan.
func (p *Pipeline) Retry(ctx context.Context, jobID int) (*models.ImportJob, error) {
	unlock := p.locks.lock(jobID)
	defer unlock()

	job, err := p.RetrieveJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ImportJobStatusFailed {
		return nil, errcodes.BadRequest("only failed jobs can be retried")
	}

	err = p.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := p.service.deleteCandidates(ctx, tx, job.ID); err != nil {
			return err
		}
		return p.service.updateStatus(ctx, tx, job, EventRetry)
	})
	if err != nil {
		return nil, err
	}

	jl := p.jobLogs.NewJobLogger(ctx, job.ID, logger.FromContext(ctx))
	jl.Info("import job queued for retry", nil)

	return p.RetrieveJob(ctx, jobID)
}

// RecoverStuck fails jobs left processing by a process that stopped mid-job
// so they can be retried. It returns how many jobs were recovered.
func (p *Pipeline) RecoverStuck(ctx context.Context) (int, error) {
	ids, err := p.service.listStuckJobIDs(ctx)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, id := range ids {
		ok, err := p.recover(ctx, id)
		if err != nil {
			return recovered, err
		}
		if ok {
			recovered++
		}
	}
	return recovered, nil
}

func (p *Pipeline) recover(ctx context.Context, jobID int) (bool, error) {
	unlock := p.locks.lock(jobID)
	defer unlock()

	job, err := p.RetrieveJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job.Status != models.ImportJobStatusProcessing {
		return false, nil
	}

	jl := p.jobLogs.NewJobLogger(ctx, job.ID, logger.FromContext(ctx).Data(logger.Data{"path": job.FilePath}))
	if err := p.fail(ctx, job, jl, "import job was interrupted", nil); err != nil {
		return false, err
	}
	return true, nil
}

// fail records why the job failed and moves it to failed. It returns nil once
// the failure has been recorded.
func (p *Pipeline) fail(ctx context.Context, job *models.ImportJob, jl *joblogs.JobLogger, reason string, cause error) error {
	if cause != nil {
		jl.Error(reason, cause, nil)
	} else {
		jl.Warn(reason, nil)
	}

	if err := p.service.updateStatus(ctx, p.db, job, EventFail); err != nil {
		return errors.Wrap(err, "failed to mark import job failed")
	}
	return nil
}

// bestCandidate picks the highest confidence, keeping the earliest on ties.
func bestCandidate(candidates []*models.MetadataCandidate) *models.MetadataCandidate {
	var best *models.MetadataCandidate
	for _, c := range candidates {
		if best == nil || c.ConfidenceScore > best.ConfidenceScore {
			best = c
		}
	}
	return best
}
