package culture

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/pitabwire/culture/workerpool"
)

// Task is a unit of work started by Manager.Go.
type Task struct {
	id   string
	done chan struct{}
	err  error
}

func (t *Task) ID() string {
	return t.id
}

// Done is closed once the task has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task returns or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return t.err
	}
}

// Go runs fn on a new goroutine. fn receives a child of ctx whose culture state is
// snapshotted from the defaults when Go is called, not from ctx's own state.
func (m *Manager) Go(ctx context.Context, fn func(ctx context.Context) error) *Task {
	taskCtx := m.defaults.Spawn(ctx)
	task := &Task{id: xid.New().String(), done: make(chan struct{})}

	go func() {
		defer close(task.done)
		defer func() {
			if r := recover(); r != nil {
				task.err = fmt.Errorf("task %s panicked: %v", task.id, r)
				m.Log(taskCtx).WithError(task.err).Error("culture task failed")
			}
		}()

		task.err = fn(taskCtx)
	}()

	return task
}

// Group runs functions concurrently, each in its own execution context.
type Group struct {
	group    *errgroup.Group
	ctx      context.Context
	defaults *Defaults
}

// Group creates a group whose context is canceled when any function fails.
func (m *Manager) Group(ctx context.Context) *Group {
	group, groupCtx := errgroup.WithContext(ctx)
	return &Group{group: group, ctx: groupCtx, defaults: m.defaults}
}

// SetLimit bounds the number of functions running at once, see errgroup.Group.SetLimit.
func (g *Group) SetLimit(n int) {
	g.group.SetLimit(n)
}

// Go snapshots the defaults now and runs fn with them.
func (g *Group) Go(fn func(ctx context.Context) error) {
	spawnCtx := g.defaults.Spawn(g.ctx)
	g.group.Go(func() error {
		return fn(spawnCtx)
	})
}

// Wait blocks until every function returned and reports the first error.
func (g *Group) Wait() error {
	return g.group.Wait()
}

// SubmitJob runs job on the manager's worker pool with culture state snapshotted
// from the defaults at submission time.
func SubmitJob[T any](ctx context.Context, m *Manager, job workerpool.Job[T]) error {
	return workerpool.SubmitJob(ctx, m.WorkManager(), job)
}
