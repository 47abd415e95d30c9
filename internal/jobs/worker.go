package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sjperalta/fintera-rentals/internal/clock"
	"github.com/sjperalta/fintera-rentals/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	queue   chan Job
	queueMu sync.RWMutex
	closed  bool
	clock   clock.Clock
	stats   WorkerStats
	statsMu sync.RWMutex
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int        `json:"active_jobs"`
	CompletedJobs int64      `json:"completed_jobs"`
	FailedJobs    int64      `json:"failed_jobs"`
	QueueLength   int        `json:"queue_length"`
	Workers       int        `json:"workers"`
	LastRunAt     *time.Time `json:"last_run_at"`
}

// NewWorker creates a worker with N concurrent processors. Scheduled jobs
// are timed against clk.
func NewWorker(numWorkers int, clk clock.Clock) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if numWorkers < 1 {
		numWorkers = 1
	}

	w := &Worker{
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Job, 100),
		clock:  clk,
	}
	w.stats.Workers = numWorkers

	// Start worker goroutines
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool. Jobs enqueued after
// Shutdown are dropped. It reports whether the job was accepted.
func (w *Worker) Enqueue(job Job) bool {
	w.queueMu.RLock()
	if w.closed {
		w.queueMu.RUnlock()
		logger.Warn("[Worker] Shutting down, job dropped")
		return false
	}
	select {
	case w.queue <- job:
		w.queueMu.RUnlock()
		return true
	default:
	}
	w.queueMu.RUnlock()

	logger.Warn("[Worker] Queue full, running job synchronously")
	if err := job(w.ctx); err != nil {
		logger.Error(fmt.Sprintf("[Worker] Job error: %v", err))
	}
	return true
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.trackJobStart()
			start := time.Now()
			if err := job(w.ctx); err != nil {
				logger.Error(fmt.Sprintf("[Worker %d] Job error: %v", workerID, err))
				w.trackJobFailure()
			} else {
				logger.Info(fmt.Sprintf("[Worker %d] Job completed in %v", workerID, time.Since(start)))
			}
			w.trackJobEnd()
		}
	}
}

// ScheduleCron runs a job at every activation of a standard five-field cron
// expression, evaluated in the location of the worker clock.
func (w *Worker) ScheduleCron(spec string, job Job) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			now := w.clock.Now()
			next := schedule.Next(now)
			if next.IsZero() {
				logger.Warn(fmt.Sprintf("[Scheduler] Cron %q has no future activation", spec))
				return
			}

			timer := w.clock.NewTimer(next.Sub(now))
			select {
			case <-w.ctx.Done():
				timer.Stop()
				return
			case <-timer.C():
				w.runScheduledJob(job)
			}
		}
	}()

	return nil
}

func (w *Worker) runScheduledJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[Scheduler] Job panic: %v", r))
			w.trackJobFailure()
			w.trackJobEnd()
		}
	}()
	w.trackJobStart()
	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error(fmt.Sprintf("[Scheduler] Job error: %v", err))
		w.trackJobFailure()
	} else {
		logger.Info(fmt.Sprintf("[Scheduler] Job completed in %v", time.Since(start)))
	}
	w.trackJobEnd()
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.cancel()
	w.queueMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.queueMu.Unlock()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
	now := w.clock.Now()
	w.stats.LastRunAt = &now
}

// trackJobEnd counts every finished job; FailedJobs is the failing subset.
func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
