// Package worker implements the poll loop that turns queued NEST_PARTS
// tasks into placed sheets: claim, load, parse, nest, render, upload,
// record, and always clean up its scratch directory.
package worker

import (
	"context"
	"time"

	"github.com/jewisonj/nestworker/internal/infrastructure/logger"
	"github.com/jewisonj/nestworker/internal/infrastructure/storage"
	"github.com/jewisonj/nestworker/internal/objectstore"
)

// Loop polls the work queue and runs nest jobs to completion.
type Loop struct {
	Queue   *storage.WorkQueueRepository
	Jobs    *storage.NestJobRepository
	Items   *storage.NestJobItemRepository
	Results *storage.NestResultRepository
	Store   objectstore.Store
	Log     *logger.Logger

	// TempDir is the parent directory under which each job gets its own
	// scratch subdirectory, named by job id and removed unconditionally
	// when the job finishes, whether it succeeded or failed.
	TempDir string

	// PollInterval is the delay between empty-queue polls.
	PollInterval time.Duration

	// ChordTolerance is the maximum chord deviation allowed when
	// discretizing arcs, circles, bulges, and splines. Defaults to 0.01
	// inches if zero or negative.
	ChordTolerance float64
}

// Run polls until ctx is cancelled, processing at most one task per
// iteration. It returns ctx.Err() on cancellation; every other error
// encountered while processing a task is logged and absorbed so the loop
// keeps running.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		task, claimed, err := l.Queue.ClaimNext(ctx)
		if err != nil {
			l.Log.Error("queue poll failed", "error", err)
			if !l.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}
		if !claimed {
			if !l.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		l.processTask(ctx, task)
	}
}

func (l *Loop) sleep(ctx context.Context) bool {
	interval := l.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	t := time.NewTimer(interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
