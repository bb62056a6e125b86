package application

import (
	"context"
	"sync"
)

// ReloadGuard makes sure only the most recent load of a screen publishes its
// result. Starting a new load cancels the previous one.
type ReloadGuard struct {
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// Ticket identifies one load started by ReloadGuard.Begin.
type Ticket struct {
	guard      *ReloadGuard
	generation uint64
	cancel     context.CancelFunc
}

// Begin starts a new load and returns a context that is cancelled when a
// later load begins.
func (g *ReloadGuard) Begin(ctx context.Context) (context.Context, Ticket) {
	loadCtx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	g.generation++
	g.cancel = cancel
	return loadCtx, Ticket{guard: g, generation: g.generation, cancel: cancel}
}

// Current reports whether no newer load has started since t.
func (t Ticket) Current() bool {
	if t.guard == nil {
		return false
	}
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.guard.generation == t.generation
}

// Commit runs apply while holding the guard, but only if t is still the
// latest load. Otherwise it returns ErrStaleResult and apply is not called.
func (t Ticket) Commit(apply func()) error {
	if t.guard == nil {
		return ErrStaleResult
	}
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	if t.guard.generation != t.generation {
		return ErrStaleResult
	}
	if apply != nil {
		apply()
	}
	return nil
}

// Done releases the ticket's context.
func (t Ticket) Done() {
	if t.cancel != nil {
		t.cancel()
	}
}
