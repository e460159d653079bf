package transit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Outcome describes how a transition request was resolved.
type Outcome int32

const (
	// OutcomePending means the transition is still running.
	OutcomePending Outcome = iota

	// OutcomeFinished means the driver reached the end of its range.
	OutcomeFinished

	// OutcomeSkipped means the request matched the current target and no
	// transition was started.
	OutcomeSkipped

	// OutcomeSuperseded means a newer request stopped the driver.
	OutcomeSuperseded

	// OutcomeCancelled means the controller was disposed mid-transition.
	OutcomeCancelled
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeFinished:
		return "finished"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Completion is the deferred signal returned by Request. It resolves exactly
// once. Completions of different requests may resolve in any order.
type Completion struct {
	done    chan struct{}
	once    sync.Once
	outcome atomic.Int32
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func resolvedCompletion(o Outcome) *Completion {
	c := newCompletion()
	c.resolve(o)
	return c
}

// resolve settles the completion. Only the first call has any effect.
func (c *Completion) resolve(o Outcome) bool {
	if c == nil {
		return false
	}
	resolved := false
	c.once.Do(func() {
		c.outcome.Store(int32(o))
		close(c.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel that is closed once the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Outcome returns how the completion resolved, or OutcomePending.
func (c *Completion) Outcome() Outcome {
	return Outcome(c.outcome.Load())
}

// Wait blocks until the completion resolves or ctx ends.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
