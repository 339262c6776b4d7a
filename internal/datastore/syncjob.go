package datastore

import (
	"context"
	"sync"
	"time"

	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/internal/query"
	"github.com/driftstore/driftstore/models"
)

// Syncer is the non-generic surface of [DataStore.Sync], letting one job
// drive stores of different entity types.
type Syncer interface {
	Collection() string
	Sync(ctx context.Context, q *query.Query) (*models.SyncResult, error)
}

// SyncJob periodically syncs a set of collections in the background. The
// job is idle until Start is called.
type SyncJob struct {
	syncers  []Syncer
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob builds a job syncing every given store each interval. An
// interval of zero or less defaults to 5 minutes.
func NewSyncJob(interval time.Duration, log *logger.Logger, syncers ...Syncer) *SyncJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SyncJob{syncers: syncers, interval: interval, logger: log}
}

// Start stops any previously running job, then launches a background
// goroutine syncing every collection each tick. The goroutine exits when
// ctx is cancelled or Stop is called. Per-collection failures are logged
// and do not stop the job; a store whose queue is dirty after push simply
// reports the precondition error and is retried next tick.
func (j *SyncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.syncAll(jobCtx)
			}
		}
	}()
}

func (j *SyncJob) syncAll(ctx context.Context) {
	for _, s := range j.syncers {
		result, err := s.Sync(ctx, nil)
		if err != nil {
			j.logger.Err(err).
				Str("func", "SyncJob.syncAll").
				Str("collection", s.Collection()).
				Msg("background sync failed")
			continue
		}
		j.logger.Debug().
			Str("func", "SyncJob.syncAll").
			Str("collection", s.Collection()).
			Int("pushed", result.PushCount).
			Int("pulled", result.PullCount).
			Int("errors", len(result.Errors)).
			Msg("background sync completed")
	}
}

// Stop cancels the background goroutine and blocks until it has exited.
// Safe to call when the job is not running.
func (j *SyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
