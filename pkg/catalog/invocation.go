package catalog

import (
	"context"
	"sync"
)

// Invocation is one asynchronous load. Its state starts as StatusLoading and
// is replaced exactly once by the terminal state.
type Invocation struct {
	id   string
	done chan struct{}

	mu    sync.RWMutex
	state LoadState
}

// Start begins a load in the background and returns immediately.
func Start(ctx context.Context, l *Loader, indexURL string, limit int) *Invocation {
	inv := &Invocation{
		id:   newInvocationID(),
		done: make(chan struct{}),
	}
	inv.state = LoadState{ID: inv.id, Status: StatusLoading}

	go func() {
		final := l.load(ctx, inv.id, indexURL, limit)

		inv.mu.Lock()
		inv.state = final
		inv.mu.Unlock()
		close(inv.done)
	}()

	return inv
}

// ID returns the invocation id shared by its logs and states.
func (inv *Invocation) ID() string {
	return inv.id
}

// State returns the current state.
func (inv *Invocation) State() LoadState {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.state
}

// Done is closed once the terminal state is available.
func (inv *Invocation) Done() <-chan struct{} {
	return inv.done
}

// Wait blocks until the load settles and returns the terminal state.
func (inv *Invocation) Wait() LoadState {
	<-inv.done
	return inv.State()
}
