package seal

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Task is a completion handle for an asynchronous write.
type Task interface {
	// Wait blocks until the write is durable or ctx is done.
	Wait(ctx context.Context) error
}

type resolvedTask struct {
	err error
}

func (t resolvedTask) Wait(context.Context) error { return t.err }

// ResolvedTask returns a Task that is already complete with err.
func ResolvedTask(err error) Task {
	return resolvedTask{err: err}
}

// TaskFunc adapts a blocking wait function into a Task.
// The function runs at most once; later calls to Wait return the same error.
func TaskFunc(wait func(ctx context.Context) error) Task {
	return &funcTask{wait: wait}
}

type funcTask struct {
	once sync.Once
	wait func(ctx context.Context) error
	err  error
}

func (t *funcTask) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.WithSecondaryError(ErrCanceled, ctx.Err())
	default:
	}

	t.once.Do(func() {
		t.err = t.wait(ctx)
	})
	return t.err
}

// MultiTask returns a Task that waits for every non-nil task in order and
// joins their errors.
func MultiTask(tasks ...Task) Task {
	return TaskFunc(func(ctx context.Context) error {
		var errs error
		for _, t := range tasks {
			if t == nil {
				continue
			}
			if err := t.Wait(ctx); err != nil {
				errs = errors.CombineErrors(errs, err)
			}
		}
		return errs
	})
}
