package core

import (
	"context"
	"sync"
)

// DeferredFunc is a cleanup action registered during a scenario's run.
// Bound arguments travel in the closure.
type DeferredFunc func(ctx context.Context) error

// DeferStack is the per-scenario LIFO stack of cleanup actions. The
// runner installs it into the step context; the deferrer plugin clears
// it when a scenario starts and flushes it when the scenario reaches a
// terminal pass or fail outcome.
type DeferStack struct {
	mu      sync.Mutex
	entries []DeferredFunc
}

// NewDeferStack creates an empty stack.
func NewDeferStack() *DeferStack {
	return &DeferStack{}
}

// Push registers a cleanup action.
func (s *DeferStack) Push(fn DeferredFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, fn)
}

// Len returns the number of registered actions.
func (s *DeferStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops all registered actions without running them.
func (s *DeferStack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Flush pops and invokes actions in reverse registration order until
// the stack is empty. Actions pushed during a flush are flushed too.
// The first failing action stops the flush and its error propagates;
// entries not yet popped stay on the stack.
func (s *DeferStack) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		n := len(s.entries)
		if n == 0 {
			s.mu.Unlock()
			return nil
		}
		fn := s.entries[n-1]
		s.entries = s.entries[:n-1]
		s.mu.Unlock()

		if err := fn(ctx); err != nil {
			return err
		}
	}
}

type deferStackKey struct{}

// WithDeferStack returns a context carrying the stack. The runner wraps
// step contexts with it so Defer works from inside step bodies.
func WithDeferStack(ctx context.Context, stack *DeferStack) context.Context {
	return context.WithValue(ctx, deferStackKey{}, stack)
}

// DeferStackFrom extracts the stack installed by WithDeferStack.
func DeferStackFrom(ctx context.Context) (*DeferStack, bool) {
	stack, ok := ctx.Value(deferStackKey{}).(*DeferStack)
	return stack, ok
}

// Defer registers a cleanup action for the currently running scenario.
// It fails with ErrOutOfContext when no scenario is running.
func Defer(ctx context.Context, fn DeferredFunc) error {
	stack, ok := DeferStackFrom(ctx)
	if !ok {
		return ErrOutOfContext
	}
	stack.Push(fn)
	return nil
}

// MustDefer is Defer for callers that treat a missing scenario context
// as a programming error; it panics on ErrOutOfContext.
func MustDefer(ctx context.Context, fn DeferredFunc) {
	if err := Defer(ctx, fn); err != nil {
		panic(err)
	}
}
