// Package workers tracks a process's background components and stops them
// as a unit. It defines the Worker lifecycle interface and a Workers
// registry that shuts everything down in reverse start order.
package workers

import (
	"context"
	"sync"
)

// Worker is a background component with an explicit start/stop lifecycle.
//
// Start must return promptly, spawning goroutines for ongoing work; Stop
// must block until those goroutines have exited and must be safe to call
// on a worker that never started.
type Worker interface {
	Start(ctx context.Context) error
	Stop()
}

// Workers is an ordered registry of running workers. It records each
// successfully started worker so a single Stop can halt them all in
// reverse start order.
type Workers struct {
	mu      sync.Mutex
	running []Worker
}

// New returns an empty registry.
func New() *Workers {
	return &Workers{}
}

// Start launches worker and records it for later Stop. A worker whose
// Start fails is not recorded.
func (w *Workers) Start(ctx context.Context, worker Worker) error {
	if err := worker.Start(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	w.running = append(w.running, worker)
	w.mu.Unlock()
	return nil
}

// Stop halts every recorded worker in reverse start order and clears the
// registry. Safe to call repeatedly and on an empty registry.
func (w *Workers) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = nil
	w.mu.Unlock()

	for i := len(running) - 1; i >= 0; i-- {
		running[i].Stop()
	}
}
