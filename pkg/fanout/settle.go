package fanout

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config controls how Settle schedules tasks.
type Config struct {
	// Width is the maximum number of tasks in flight. Zero or negative
	// starts every task at once.
	Width int

	// ItemTimeout bounds each task's context. Zero means no timeout.
	ItemTimeout time.Duration
}

// Outcome is the settled result of one task: either Value or Err.
type Outcome[R any] struct {
	Index int
	Value R
	Err   error
}

// OK reports whether the task succeeded.
func (o Outcome[R]) OK() bool {
	return o.Err == nil
}

// PanicError is recorded when a task panics.
type PanicError struct {
	Index int
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %d panicked: %v", e.Index, e.Value)
}

// Settle calls fn for every index in [0, n) and returns once all calls have
// returned. The returned slice has length n and outcome i holds the result
// of fn(ctx, i).
func Settle[R any](ctx context.Context, n int, cfg Config, fn func(ctx context.Context, i int) (R, error)) []Outcome[R] {
	outcomes := make([]Outcome[R], n)
	if n <= 0 {
		return outcomes
	}

	// A plain Group: one task failing must not cancel the others.
	var g errgroup.Group
	if cfg.Width > 0 {
		g.SetLimit(cfg.Width)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			outcomes[i] = run(ctx, i, cfg.ItemTimeout, fn)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// run executes one task, converting a panic into an error outcome.
func run[R any](ctx context.Context, i int, timeout time.Duration, fn func(ctx context.Context, i int) (R, error)) (out Outcome[R]) {
	out.Index = i

	defer func() {
		if r := recover(); r != nil {
			var zero R
			out.Value = zero
			out.Err = &PanicError{Index: i, Value: r}
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out.Value, out.Err = fn(ctx, i)
	return out
}
