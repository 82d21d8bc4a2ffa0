// Package shutdownqueue collects named cleanup tasks and drains them in LIFO
// order when the process stops.
//
//	q := shutdownqueue.New(logger)
//	q.Add("db", func(context.Context) error { return db.Close() })
//	...
//	err := q.Shutdown(ctx)
//
// Tasks run once. Panics are recovered. Shutdown is idempotent and returns
// an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type named struct {
	name string
	run  Task
}

type Queue struct {
	mu     sync.Mutex
	tasks  []named
	closed bool
	log    *slog.Logger
}

func New(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}

	return &Queue{tasks: make([]named, 0, 8), log: logger}
}

// Add registers a task to be run on Shutdown. If t is nil or shutdown has
// already started, Add does nothing.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, named{name: name, run: t})
}

// Len reports the number of tasks still pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown drains all registered tasks in LIFO order. Subsequent calls are
// no-ops.
//
// If ctx is canceled mid-drain, Shutdown stops early and returns the context
// error joined with any task errors so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled before %q: %w", tasks[i].name, ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := q.run(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (q *Queue) run(ctx context.Context, t named) (err error) {
	started := time.Now()

	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %q: %v", t.name, r)
		}

		if err != nil {
			q.log.ErrorContext(ctx, "shutdown task failed", "task", t.name, "error", err)
			return
		}

		q.log.InfoContext(ctx, "shutdown task done", "task", t.name, "duration_ms", time.Since(started).Milliseconds())
	}()

	err = t.run(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}

	return nil
}
