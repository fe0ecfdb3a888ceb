package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/xid"
)

var ErrWorkerPoolResultChannelIsClosed = errors.New("worker job is already closed")

type jobResult[T any] struct {
	item T
	err  error
}

func (j *jobResult[T]) IsError() bool {
	return j.err != nil
}

func (j *jobResult[T]) Error() error {
	return j.err
}

func (j *jobResult[T]) Item() T {
	return j.item
}

func Result[T any](item T) JobResult[T] {
	return &jobResult[T]{item: item}
}

func ErrorResult[T any](err error) JobResult[T] {
	return &jobResult[T]{err: err}
}

type job[T any] struct {
	id               string
	runs             atomic.Int64
	retries          int
	resultBufferSize int
	resultChan       chan JobResult[T]
	resultChanDone   atomic.Bool
	processFunc      func(ctx context.Context, result JobResultPipe[T]) error
}

func (j *job[T]) ID() string {
	return j.id
}

func (j *job[T]) F() func(ctx context.Context, result JobResultPipe[T]) error {
	return j.processFunc
}

// CanRun reports whether the job still has a run left: the first run plus its retries.
func (j *job[T]) CanRun() bool {
	return j.Retries() >= j.Runs()
}

func (j *job[T]) Retries() int {
	return j.retries
}

func (j *job[T]) Runs() int {
	return int(j.runs.Load())
}

func (j *job[T]) IncreaseRuns() {
	j.runs.Add(1)
}

func (j *job[T]) ResultBufferSize() int {
	return j.resultBufferSize
}

func (j *job[T]) ResultChan() <-chan JobResult[T] {
	return j.resultChan
}

func (j *job[T]) ReadResult(ctx context.Context) (JobResult[T], bool) {
	return SafeChannelRead(ctx, j.resultChan)
}

func (j *job[T]) WriteError(ctx context.Context, val error) error {
	if j.resultChanDone.Load() {
		return ErrWorkerPoolResultChannelIsClosed
	}
	return SafeChannelWrite(ctx, j.resultChan, ErrorResult[T](val))
}

func (j *job[T]) WriteResult(ctx context.Context, val T) error {
	if j.resultChanDone.Load() {
		return ErrWorkerPoolResultChannelIsClosed
	}
	return SafeChannelWrite(ctx, j.resultChan, Result[T](val))
}

func (j *job[T]) Close() {
	if j.resultChanDone.CompareAndSwap(false, true) {
		close(j.resultChan)
	}
}

// NewJob creates a new job with default buffer size and retry count.
func NewJob[T any](process func(ctx context.Context, result JobResultPipe[T]) error) Job[T] {
	return NewJobWithBufferAndRetry[T](process, defaultJobResultBufferSize, defaultJobRetryCount)
}

// NewJobWithRetry creates a new job with a specified retry count.
func NewJobWithRetry[T any](process func(ctx context.Context, result JobResultPipe[T]) error, retries int) Job[T] {
	return NewJobWithBufferAndRetry[T](process, defaultJobResultBufferSize, retries)
}

// NewJobWithBufferAndRetry creates a new job with specified buffer size and retry count.
func NewJobWithBufferAndRetry[T any](
	process func(ctx context.Context, result JobResultPipe[T]) error,
	resultBufferSize, retries int,
) Job[T] {
	return &job[T]{
		id:               xid.New().String(),
		retries:          retries,
		resultBufferSize: resultBufferSize,
		resultChan:       make(chan JobResult[T], resultBufferSize),
		processFunc:      process,
	}
}

// SafeChannelWrite writes a value to a channel, returning an error if the context is canceled.
func SafeChannelWrite[T any](ctx context.Context, ch chan<- JobResult[T], value JobResult[T]) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled while writing to channel: %w", ctx.Err())
	default:
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled while writing to channel: %w", ctx.Err())
	case ch <- value:
		return nil
	}
}

// SafeChannelRead reads a value from a channel, returning false if the channel is closed or the context is canceled.
func SafeChannelRead[T any](ctx context.Context, ch <-chan JobResult[T]) (JobResult[T], bool) {
	select {
	case <-ctx.Done():
		var zero JobResult[T]
		return zero, false
	default:
	}

	select {
	case <-ctx.Done():
		var zero JobResult[T]
		return zero, false
	case result, ok := <-ch:
		return result, ok
	}
}

// ConsumeResultStream feeds every item the job produces to consumer until the job closes.
func ConsumeResultStream[T any](ctx context.Context, job JobResultPipe[T], consumer func(T)) error {
	for {
		res, ok := job.ReadResult(ctx)
		if !ok {
			return ctx.Err()
		}

		if res.IsError() {
			return res.Error()
		}

		consumer(res.Item())
	}
}
