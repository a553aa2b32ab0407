package worker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/paparr/paparr/pkg/errcodes"
	"github.com/paparr/paparr/pkg/fingerprint"
	"github.com/paparr/paparr/pkg/imports"
	"github.com/paparr/paparr/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

var ingestExtensions = map[string]struct{}{
	".epub": {},
	".pdf":  {},
}

// ScanResult summarizes one pass over the ingest directory.
type ScanResult struct {
	// Skipped is set when another process held the scan lock.
	Skipped    bool `json:"skipped"`
	Files      int  `json:"files"`
	Created    int  `json:"created"`
	Duplicates int  `json:"duplicates"`
	Retried    int  `json:"retried"`
	Errors     int  `json:"errors"`
}

// ScanOnce runs a single scan synchronously. A cancelled ctx stops the scan
// between files; the file being processed is always finished.
func (w *Worker) ScanOnce(ctx context.Context) (*ScanResult, error) {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	log := w.log.ID(id.String()).Root(logger.Data{"ingest_path": w.config.IngestPath})
	ctx = log.WithContext(ctx)

	locked, err := w.tryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		log.Info("scan lock is held by another process, skipping scan")
		return &ScanResult{Skipped: true}, nil
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			log.Err(err).Warn("failed to release scan lock")
		}
	}()

	result := &ScanResult{}

	if _, err := os.Stat(w.config.IngestPath); os.IsNotExist(err) {
		log.Info("ingest directory does not exist, creating it")
		if err := os.MkdirAll(w.config.IngestPath, 0755); err != nil {
			return nil, errors.WithStack(err)
		}
		return result, nil
	}

	files, err := listIngestFiles(w.config.IngestPath)
	if err != nil {
		return nil, err
	}
	result.Files = len(files)
	log.Debug("found ingest files", logger.Data{"count": len(files)})

	for _, path := range files {
		if ctx.Err() != nil {
			log.Info("scan cancelled")
			return result, nil
		}
		w.scanFile(context.WithoutCancel(ctx), path, result)
	}

	w.processPending(ctx, result)

	log.Info("scan finished", logger.Data{
		"files":      result.Files,
		"created":    result.Created,
		"duplicates": result.Duplicates,
		"retried":    result.Retried,
		"errors":     result.Errors,
	})
	return result, nil
}

func (w *Worker) scanFile(ctx context.Context, path string, result *ScanResult) {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})
	svc := w.pipeline.Service()

	hash, err := fingerprint.File(path)
	if err != nil {
		log.Err(err).Error("failed to fingerprint file")
		result.Errors++
		return
	}

	existing, err := svc.RetrieveImportJob(ctx, imports.RetrieveImportJobOptions{FileHash: &hash})
	switch {
	case err == nil:
		if existing.FilePath == path && existing.Status != models.ImportJobStatusCompleted {
			// The job's own source, still waiting on review or retry.
			return
		}
		log.Info("removing duplicate file", logger.Data{"job_id": existing.ID})
		if err := os.Remove(path); err != nil {
			log.Err(err).Warn("failed to remove duplicate file")
		}
		result.Duplicates++
		return
	case !errors.Is(err, errcodes.NotFound("Import job")):
		log.Err(err).Error("failed to look up file fingerprint")
		result.Errors++
		return
	}

	job := &models.ImportJob{
		FilePath: path,
		FileHash: hash,
		Status:   models.ImportJobStatusPending,
	}
	if err := svc.CreateImportJob(ctx, job); err != nil {
		if errors.Is(err, imports.ErrDuplicateFile) {
			log.Info("file was claimed by another job, skipping")
			return
		}
		log.Err(err).Error("failed to create import job")
		result.Errors++
		return
	}
	result.Created++
	log.Info("created import job", logger.Data{"job_id": job.ID})

	if err := w.pipeline.Process(ctx, job); err != nil {
		log.Err(err).Error("failed to process import job", logger.Data{"job_id": job.ID})
		result.Errors++
	}
}

// processPending runs jobs that are still pending after the directory pass,
// which are the ones returned to pending by a retry.
func (w *Worker) processPending(ctx context.Context, result *ScanResult) {
	log := logger.FromContext(ctx)
	if ctx.Err() != nil {
		return
	}

	jobs, err := w.pipeline.ListJobs(ctx, imports.ListImportJobsOptions{
		Statuses: []string{models.ImportJobStatusPending},
	})
	if err != nil {
		log.Err(err).Error("failed to list pending import jobs")
		result.Errors++
		return
	}

	// Oldest first.
	for i := len(jobs) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return
		}
		job := jobs[i]
		if err := w.pipeline.Process(context.WithoutCancel(ctx), job); err != nil {
			log.Err(err).Error("failed to process import job", logger.Data{"job_id": job.ID})
			result.Errors++
			continue
		}
		result.Retried++
	}
}

// listIngestFiles returns every regular, non-hidden file under root with a
// supported extension, in lexical order.
func listIngestFiles(root string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := ingestExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return files, nil
}
