/*-------------------------------------------------------------------------
 *
 * runner.go
 *    Background job runner for fire-and-forget work
 *
 * Runs best-effort tasks (embedding upserts, cache warms) off the
 * request path. Submission never blocks: when the queue is full the
 * task is dropped with a warning, since every task here is safe to
 * lose.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/jobs/runner.go
 *
 *-------------------------------------------------------------------------
 */

package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/formgen/server/internal/metrics"
)

/* Task is a unit of background work */
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Runner struct {
	workers int
	timeout time.Duration
	queue   chan Task
	wg      sync.WaitGroup
	stop    chan struct{}
}

func NewRunner(workers int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = 2
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		workers: workers,
		timeout: timeout,
		queue:   make(chan Task, 256),
		stop:    make(chan struct{}),
	}
}

func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

func (r *Runner) Stop() {
	close(r.stop)
	r.wg.Wait()
}

/* Submit queues a task without blocking. Returns false if the queue is
 * saturated and the task was dropped. */
func (r *Runner) Submit(task Task) bool {
	select {
	case r.queue <- task:
		metrics.RecordJobQueued(1)
		return true
	default:
		log.Warn().Str("task", task.Name).Msg("Job queue full, task dropped")
		return false
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stop:
			return
		case task := <-r.queue:
			metrics.RecordJobQueued(-1)
			r.run(task)
		}
	}
}

func (r *Runner) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := task.Run(ctx); err != nil {
		metrics.RecordJobProcessed(task.Name, "error")
		log.Warn().Err(err).Str("task", task.Name).Msg("Background task failed")
		return
	}
	metrics.RecordJobProcessed(task.Name, "success")
}
