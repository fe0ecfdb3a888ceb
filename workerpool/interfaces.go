package workerpool

import (
	"context"
)

const defaultJobResultBufferSize = 10
const defaultJobRetryCount = 0

// JobResult carries either an item produced by a job or the error it failed with.
type JobResult[T any] interface {
	IsError() bool
	Error() error
	Item() T
}

// JobResultPipe is a channel-based pipeline for passing job results.
type JobResultPipe[T any] interface {
	ResultBufferSize() int
	ResultChan() <-chan JobResult[T]
	WriteError(ctx context.Context, val error) error
	WriteResult(ctx context.Context, val T) error
	ReadResult(ctx context.Context) (JobResult[T], bool)
	Close()
}

// Job is a unit of work executed on the pool, producing results of type T.
type Job[T any] interface {
	JobResultPipe[T]
	F() func(ctx context.Context, result JobResultPipe[T]) error
	ID() string
	CanRun() bool
	Retries() int
	Runs() int
	IncreaseRuns()
}

// Propagator prepares the context a newly spawned job runs with.
type Propagator interface {
	Spawn(ctx context.Context) context.Context
}

type Manager interface {
	GetPool() (WorkerPool, error)
	Propagator() Propagator
	StopError(context.Context, error)
	Shutdown(context.Context) error
}

// WorkerPool hides whether a single ants.Pool or an ants.MultiPool runs the tasks.
type WorkerPool interface {
	Submit(ctx context.Context, task func()) error
	Shutdown()
}
