package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/joseph-ayodele/image2text/constants"
)

// Job is one file waiting to be extracted.
type Job struct {
	Path        string
	Mode        constants.Mode
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes a single job. Its error is logged, never retried.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}

// ExtractionQueue feeds jobs to a fixed set of workers. The default of one
// worker keeps extractions strictly sequential.
type ExtractionQueue struct {
	handle  Handler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// base parents every job context; Shutdown cancels it when its deadline passes.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

type Option func(*ExtractionQueue)

func WithWorkers(n int) Option {
	return func(q *ExtractionQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ExtractionQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ExtractionQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewExtractionQueue(handle Handler, logger *slog.Logger, opts ...Option) *ExtractionQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ExtractionQueue{
		handle:  handle,
		logger:  logger,
		workers: 1,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	q.base, q.cancel = context.WithCancel(context.Background())
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ExtractionQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					if q.base.Err() != nil {
						q.logger.Warn("skipping job: shutdown deadline passed", "worker_id", workerID, "path", job.Path, "trace_id", job.TraceID)
						continue
					}
					ctx, cancel := context.WithTimeout(q.base, q.timeout)
					err := q.handle(ctx, job)
					cancel()

					if err != nil {
						q.logger.Error("extraction failed", "worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "error", err)
					} else {
						q.logger.Info("extracted file", "worker_id", workerID, "path", job.Path, "trace_id", job.TraceID,
							"waited_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks when the buffer is full. Jobs offered after Shutdown are dropped.
func (q *ExtractionQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued file for extraction", "path", job.Path, "mode", job.Mode)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for the queued ones to finish. If ctx
// ends first, in-flight jobs are cancelled, the rest are skipped, and Shutdown
// still waits for the workers to return before reporting ctx's error. No
// handler is running once Shutdown returns.
func (q *ExtractionQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.wg.Wait()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-done:
		q.cancel()
		q.logger.Info("queue drained, shutdown complete")
		return nil
	case <-ctx.Done():
		q.logger.Warn("shutdown deadline passed, cancelling in-flight jobs")
		q.cancel()
		<-done
		return ctx.Err()
	}
}
