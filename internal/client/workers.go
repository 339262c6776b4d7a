package client

import (
	"context"

	"github.com/driftstore/driftstore/internal/datastore"
	"github.com/driftstore/driftstore/internal/realtime"
	"github.com/driftstore/driftstore/internal/workers"
)

// syncJobWorker adapts the background sync job to the workers lifecycle.
type syncJobWorker struct {
	job *datastore.SyncJob
}

var _ workers.Worker = syncJobWorker{}

func (w syncJobWorker) Start(ctx context.Context) error {
	w.job.Start(ctx)
	return nil
}

func (w syncJobWorker) Stop() {
	w.job.Stop()
}

// routerWorker adapts the realtime router to the workers lifecycle.
type routerWorker struct {
	router *realtime.Router
}

var _ workers.Worker = routerWorker{}

func (w routerWorker) Start(ctx context.Context) error {
	return w.router.Initialize(ctx)
}

func (w routerWorker) Stop() {
	w.router.Shutdown()
}
