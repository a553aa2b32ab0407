package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/paparr/paparr/pkg/config"
	"github.com/paparr/paparr/pkg/imports"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Worker polls the ingest directory and feeds new files to the import
// pipeline. Start runs it in the background until Shutdown is called or the
// context is cancelled.
type Worker struct {
	config *config.Config
	log    logger.Logger

	pipeline *imports.Pipeline
	lock     *flock.Flock

	// scanMu keeps ticks from the poller and from Trigger callers apart.
	scanMu sync.Mutex

	trigger  chan struct{}
	shutdown chan struct{}
	done     chan struct{}
	// cancel stops the in-flight scan between files. Set by Start.
	cancel context.CancelFunc

	startOnce    sync.Once
	shutdownOnce sync.Once
}

func New(cfg *config.Config, pipeline *imports.Pipeline) *Worker {
	return &Worker{
		config:   cfg,
		log:      logger.New(),
		pipeline: pipeline,
		lock:     flock.New(cfg.ScanLockPath),
		trigger:  make(chan struct{}, 1),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start fails jobs interrupted by a previous run and starts polling. The first
// scan runs immediately.
func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		ctx, w.cancel = context.WithCancel(w.log.WithContext(ctx))

		n, err := w.pipeline.RecoverStuck(ctx)
		if err != nil {
			w.log.Err(err).Error("failed to recover interrupted import jobs")
		} else if n > 0 {
			w.log.Warn("marked interrupted import jobs as failed", logger.Data{"count": n})
		}

		go w.poll(ctx)
	})
}

// Trigger requests a scan as soon as the poller is free. It reports false when
// a scan is already queued.
func (w *Worker) Trigger() bool {
	select {
	case w.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (w *Worker) poll(ctx context.Context) {
	defer close(w.done)

	interval := w.config.PollInterval()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-w.trigger:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if _, err := w.ScanOnce(ctx); err != nil {
			w.log.Err(err).Error("scan error")
		}
		timer.Reset(interval)
	}
}

// Shutdown stops polling, cancels an in-flight scan and waits for it to
// finish the file it is on. Files not yet reached are left for the next run.
func (w *Worker) Shutdown() {
	w.shutdownOnce.Do(func() {
		close(w.shutdown)
	})

	started := true
	w.startOnce.Do(func() { started = false })
	if started {
		w.cancel()
		<-w.done
	}
}

// tryLock takes the cross-process scan lock, creating its directory if
// needed. It reports false when another process holds the lock.
func (w *Worker) tryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(w.config.ScanLockPath), 0755); err != nil {
		return false, errors.WithStack(err)
	}
	locked, err := w.lock.TryLock()
	return locked, errors.WithStack(err)
}
