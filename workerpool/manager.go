package workerpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/culture/config"
)

const (
	jobRetryBackoffBaseDelay    = 100 * time.Millisecond
	jobRetryBackoffMaxDelay     = 30 * time.Second
	jobRetryBackoffMaxRunNumber = 10
)

var (
	ErrWorkerPoolNotConfigured = errors.New("worker pool is not configured")
	// ErrJobPanicked is matched by the error a job reports when its function panics.
	ErrJobPanicked = errors.New("job panicked")
)

func shouldCloseJob(executionErr error) bool {
	return executionErr == nil || errors.Is(executionErr, context.Canceled) ||
		errors.Is(executionErr, ErrWorkerPoolResultChannelIsClosed)
}

func jobRetryBackoffDelay(run int) time.Duration {
	if run < 1 {
		run = 1
	}

	if run > jobRetryBackoffMaxRunNumber {
		run = jobRetryBackoffMaxRunNumber
	}

	delay := jobRetryBackoffBaseDelay * time.Duration(1<<(run-1))
	if delay > jobRetryBackoffMaxDelay {
		return jobRetryBackoffMaxDelay
	}

	return delay
}

type passthrough struct{}

func (passthrough) Spawn(ctx context.Context) context.Context {
	return ctx
}

type manager struct {
	pool       WorkerPool
	propagator Propagator
	stopErr    func(ctx context.Context, err error)
}

// NewManager creates the worker pool. Every submitted job runs with the context
// propagator.Spawn returns at submission time; a nil propagator passes contexts through.
func NewManager(
	ctx context.Context,
	cfg config.ConfigurationWorkerPool,
	propagator Propagator,
	stopOnErr func(ctx context.Context, err error),
	opts ...Option,
) (Manager, error) {
	poolOpts := defaultOptions(cfg, util.Log(ctx))

	for _, opt := range opts {
		opt(poolOpts)
	}

	pool, err := setupWorkerPool(poolOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	if propagator == nil {
		propagator = passthrough{}
	}

	if stopOnErr == nil {
		stopOnErr = func(ctx context.Context, err error) {
			util.Log(ctx).WithError(err).Error("worker pool reported a fatal error")
		}
	}

	return &manager{
		pool:       pool,
		propagator: propagator,
		stopErr:    stopOnErr,
	}, nil
}

func (m *manager) GetPool() (WorkerPool, error) {
	if m.pool == nil {
		return nil, ErrWorkerPoolNotConfigured
	}
	return m.pool, nil
}

func (m *manager) Propagator() Propagator {
	return m.propagator
}

func (m *manager) StopError(ctx context.Context, err error) {
	m.stopErr(ctx, err)
}

func (m *manager) Shutdown(_ context.Context) error {
	if m.pool == nil {
		return ErrWorkerPoolNotConfigured
	}
	m.pool.Shutdown()
	return nil
}

// SubmitJob hands the job to the worker pool. The job's context is spawned
// from ctx once, here; retries reuse it. Results can be awaited on the job's ResultChan.
func SubmitJob[T any](ctx context.Context, m Manager, job Job[T]) error {
	if m == nil {
		return ErrWorkerPoolNotConfigured
	}

	jobCtx := m.Propagator().Spawn(ctx)
	return submit(jobCtx, m, job)
}

func submit[T any](ctx context.Context, m Manager, job Job[T]) error {
	pool, err := m.GetPool()
	if err != nil {
		return err
	}

	return pool.Submit(ctx, createJobExecutionTask(ctx, m, job))
}

func handleResubmitError[T any](
	ctx context.Context,
	job Job[T],
	log *util.LogEntry,
	executionErr error,
	resubmitErr error,
) {
	if resubmitErr == nil {
		return
	}

	log.WithError(resubmitErr).Error("Failed to resubmit job")
	_ = job.WriteError(ctx, fmt.Errorf("failed to resubmit job: %w", executionErr))
	job.Close()
}

func scheduleRetryResubmission[T any](
	ctx context.Context,
	m Manager,
	job Job[T],
	delay time.Duration,
	log *util.LogEntry,
	executionErr error,
) {
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			job.Close()
			return
		case <-timer.C:
		}

		resubmitErr := submit(ctx, m, job)
		handleResubmitError(ctx, job, log, executionErr, resubmitErr)
	}()
}

func createJobExecutionTask[T any](ctx context.Context, m Manager, job Job[T]) func() {
	return func() {
		log := util.Log(ctx).
			WithField("job", job.ID()).
			WithField("run", job.Runs())

		if job.F() == nil {
			log.Error("Job function (job.F()) is nil")
			_ = job.WriteError(ctx, errors.New("job function (job.F()) is nil"))
			job.Close()
			return
		}

		job.IncreaseRuns()
		executionErr := runJob(ctx, m, job)

		if shouldCloseJob(executionErr) {
			job.Close()
			return
		}

		if errors.Is(executionErr, ErrJobPanicked) {
			log.WithError(executionErr).Error("Job panicked; it will not be retried.")
			_ = job.WriteError(ctx, executionErr)
			job.Close()
			return
		}

		log = log.WithError(executionErr).WithField("can retry", job.CanRun())
		if !job.CanRun() {
			log.Error("Job failed; retries exhausted.")
			_ = job.WriteError(ctx, executionErr)
			job.Close()
			return
		}

		log.Warn("Job failed, attempting to retry it")

		delay := jobRetryBackoffDelay(job.Runs())
		scheduleRetryResubmission(ctx, m, job, delay, log, executionErr)
	}
}

// runJob runs the job function, turning a panic into an ErrJobPanicked error
// that is also reported to the manager's stop error hook.
func runJob[T any](ctx context.Context, m Manager, job Job[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: job %s: %v", ErrJobPanicked, job.ID(), r)
			m.StopError(ctx, err)
		}
	}()

	return job.F()(ctx, job)
}
