package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"stockpulse/internal/infrastructure"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Finished reports whether the status is terminal
func (s JobStatus) Finished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

var (
	// ErrQueueFull is returned when the queue buffer has no room
	ErrQueueFull = errors.New("job queue is full")
	// ErrQueueStopped is returned when enqueueing after Stop
	ErrQueueStopped = errors.New("job queue is stopped")
	// ErrJobNotFound is returned for unknown job IDs
	ErrJobNotFound = errors.New("job not found")
	// ErrJobFinished is returned when cancelling a job that already ended
	ErrJobFinished = errors.New("job already finished")
)

// JobInput is the uploaded grid a job ingests
type JobInput struct {
	FileName string            `json:"file_name"`
	Size     int64             `json:"size"`
	Params   map[string]string `json:"params,omitempty"`
	Data     []byte            `json:"-"`
	Products []byte            `json:"-"`
	Sizes    []byte            `json:"-"`
}

// Job represents an async ingest job
type Job struct {
	ID          string                 `json:"id"`
	Status      JobStatus              `json:"status"`
	Message     string                 `json:"message,omitempty"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	StartedAt   *time.Time             `json:"started_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Input       *JobInput              `json:"input,omitempty"`
	Result      interface{}            `json:"result,omitempty"`
}

// Handler runs the work a job describes and returns its result
type Handler func(ctx context.Context, job *Job) (interface{}, error)

// JobStore interface for job persistence
type JobStore interface {
	CreateJob(job *Job) error
	GetJob(id string) (*Job, error)
	UpdateJob(job *Job) error
	ListJobs(filter JobFilter) ([]*Job, error)
	DeleteJob(id string) error
}

// JobFilter for querying jobs
type JobFilter struct {
	Status JobStatus
	Since  time.Time
	Limit  int
}

// QueueStats is a snapshot of queue occupancy
type QueueStats struct {
	Workers    int  `json:"workers"`
	QueueSize  int  `json:"queue_size"`
	QueueCap   int  `json:"queue_cap"`
	ActiveJobs int  `json:"active_jobs"`
	Stopped    bool `json:"stopped"`
}

// JobQueue runs jobs on a fixed pool of workers. The store holds the
// authoritative job state; workers own private copies while running.
type JobQueue struct {
	mu       sync.RWMutex
	jobs     chan string
	workers  int
	wg       sync.WaitGroup
	store    JobStore
	handler  Handler
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
	shutdown chan struct{}
	stopped  bool
	active   map[string]context.CancelFunc
}

// NewJobQueue creates a job queue with the given worker count and buffer size
func NewJobQueue(workers, queueSize int, store JobStore, handler Handler, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *JobQueue {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &JobQueue{
		jobs:     make(chan string, queueSize),
		workers:  workers,
		store:    store,
		handler:  handler,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "jobqueue")),
		shutdown: make(chan struct{}),
		active:   make(map[string]context.CancelFunc),
	}
}

// Start begins processing jobs
func (q *JobQueue) Start(ctx context.Context) {
	q.logger.Info("starting job queue", slog.Int("workers", q.workers), slog.Int("queue_cap", cap(q.jobs)))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Stop signals the workers and waits for running jobs up to timeout.
// Jobs still running after the timeout are cancelled.
func (q *JobQueue) Stop(timeout time.Duration) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.shutdown)
	q.mu.Unlock()

	q.logger.Info("stopping job queue")

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.drain()
		q.logger.Info("job queue stopped gracefully")
		return nil
	case <-time.After(timeout):
		q.logger.Warn("job queue stop timeout exceeded, cancelling running jobs")
		q.cancelActive()
		<-done
		q.drain()
		return fmt.Errorf("timeout waiting for workers to finish")
	}
}

// Enqueue stores job as pending and hands it to the workers. An empty ID
// is replaced with a new UUID.
func (q *JobQueue) Enqueue(ctx context.Context, job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return ErrQueueStopped
	}

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Status = JobStatusPending
	job.CreatedAt = time.Now()
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		if job.Metadata == nil {
			job.Metadata = make(map[string]interface{})
		}
		job.Metadata["trace_id"] = traceID
	}

	if err := q.store.CreateJob(job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case q.jobs <- job.ID:
		q.addQueued(ctx, 1)
		q.logger.InfoContext(ctx, "job enqueued", slog.String("job_id", job.ID))
		return nil
	default:
		job.Status = JobStatusFailed
		job.Error = ErrQueueFull.Error()
		now := time.Now()
		job.CompletedAt = &now
		if err := q.store.UpdateJob(job); err != nil {
			q.logger.Error("failed to update rejected job", slog.String("error", err.Error()))
		}
		return ErrQueueFull
	}
}

// GetJob retrieves a job by ID
func (q *JobQueue) GetJob(id string) (*Job, error) {
	return q.store.GetJob(id)
}

// ListJobs returns jobs matching the filter
func (q *JobQueue) ListJobs(filter JobFilter) ([]*Job, error) {
	return q.store.ListJobs(filter)
}

// CancelJob cancels a pending or running job
func (q *JobQueue) CancelJob(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.store.GetJob(id)
	if err != nil {
		return err
	}
	if job.Status.Finished() {
		return fmt.Errorf("job %s: %w (status: %s)", id, ErrJobFinished, job.Status)
	}

	if cancel, running := q.active[id]; running {
		cancel()
		return nil
	}
	return q.markCancelled(job)
}

func (q *JobQueue) markCancelled(job *Job) error {
	job.Status = JobStatusCancelled
	job.Message = "Job cancelled"
	now := time.Now()
	job.CompletedAt = &now
	job.Input = dropPayload(job.Input)
	return q.store.UpdateJob(job)
}

// RemoveJob cancels an unfinished job or deletes a finished one
func (q *JobQueue) RemoveJob(id string) error {
	job, err := q.store.GetJob(id)
	if err != nil {
		return err
	}
	if !job.Status.Finished() {
		return q.CancelJob(id)
	}
	return q.store.DeleteJob(id)
}

// GetQueueStats returns queue statistics
func (q *JobQueue) GetQueueStats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return QueueStats{
		Workers:    q.workers,
		QueueSize:  len(q.jobs),
		QueueCap:   cap(q.jobs),
		ActiveJobs: len(q.active),
		Stopped:    q.stopped,
	}
}

// worker processes jobs from the queue
func (q *JobQueue) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()

	logger := q.logger.With(slog.Int("worker_id", workerID))
	logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker stopped by context")
			return
		case <-q.shutdown:
			logger.Debug("worker stopped by shutdown")
			return
		case id := <-q.jobs:
			q.addQueued(ctx, -1)
			q.processJob(ctx, id, logger)
		}
	}
}

// processJob executes a single job
func (q *JobQueue) processJob(ctx context.Context, id string, logger *slog.Logger) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	job, ok := q.claim(id, cancel, logger)
	if !ok {
		return
	}

	if traceID, ok := job.Metadata["trace_id"].(string); ok {
		jobCtx = infrastructure.WithTraceID(jobCtx, traceID)
	}
	jobCtx = infrastructure.EnsureTraceID(jobCtx)

	logger = infrastructure.TraceLogger(jobCtx, logger).With(slog.String("job_id", job.ID))
	logger.InfoContext(jobCtx, "processing job started")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job processing panicked", slog.Any("panic", r))
			q.finish(job, nil, fmt.Errorf("job processing panicked: %v", r), logger)
		}

		q.mu.Lock()
		delete(q.active, job.ID)
		q.mu.Unlock()
	}()

	job.Status = JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	job.Message = "Job started"
	if err := q.store.UpdateJob(job); err != nil {
		logger.Error("failed to update job status", slog.String("error", err.Error()))
	}

	result, err := q.handler(jobCtx, job)
	if err == nil && jobCtx.Err() != nil {
		err = jobCtx.Err()
	}
	q.finish(job, result, err, logger)
}

// finish records the outcome of a job
func (q *JobQueue) finish(job *Job, result interface{}, err error, logger *slog.Logger) {
	completedAt := time.Now()
	job.CompletedAt = &completedAt
	job.Input = dropPayload(job.Input)

	switch {
	case err == nil:
		job.Status = JobStatusCompleted
		job.Message = "Job completed successfully"
		job.Result = result
		logger.Info("processing job completed")
	case errors.Is(err, context.Canceled):
		job.Status = JobStatusCancelled
		job.Message = "Job cancelled"
		logger.Info("processing job cancelled")
	default:
		job.Status = JobStatusFailed
		job.Message = "Job failed"
		job.Error = err.Error()
		logger.Error("job failed", slog.String("error", err.Error()))
	}

	if err := q.store.UpdateJob(job); err != nil {
		logger.Error("failed to update job completion", slog.String("error", err.Error()))
	}
}

// claim marks a pending job as active so CancelJob reaches its context
func (q *JobQueue) claim(id string, cancel context.CancelFunc, logger *slog.Logger) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, err := q.store.GetJob(id)
	if err != nil {
		logger.Warn("dequeued unknown job", slog.String("job_id", id))
		return nil, false
	}
	if job.Status != JobStatusPending {
		logger.Debug("skipping job", slog.String("job_id", id), slog.String("status", string(job.Status)))
		return nil, false
	}
	q.active[id] = cancel
	return job, true
}

// drain cancels jobs left in the buffer after the workers exit
func (q *JobQueue) drain() {
	for {
		select {
		case id := <-q.jobs:
			q.addQueued(context.Background(), -1)
			job, err := q.store.GetJob(id)
			if err != nil || job.Status != JobStatusPending {
				continue
			}
			if err := q.markCancelled(job); err != nil {
				q.logger.Error("failed to cancel queued job", slog.String("job_id", id), slog.String("error", err.Error()))
			}
		default:
			return
		}
	}
}

func (q *JobQueue) cancelActive() {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, cancel := range q.active {
		cancel()
	}
}

func (q *JobQueue) addQueued(ctx context.Context, delta int64) {
	if q.metrics == nil || q.metrics.JobsQueued == nil {
		return
	}
	q.metrics.JobsQueued.Add(ctx, delta, metric.WithAttributes(attribute.String("queue", "ingest")))
}

// dropPayload releases the uploaded bytes once a job no longer needs them
func dropPayload(in *JobInput) *JobInput {
	if in == nil {
		return nil
	}
	out := *in
	out.Data, out.Products, out.Sizes = nil, nil, nil
	return &out
}
