// Package testing provides test utilities and helpers for transit controllers
// and bindings.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/transit"
)

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForState waits until the controller reaches the expected state or timeout occurs.
func WaitForState[T transit.Value](t *testing.T, c *transit.Controller[T], expected transit.State, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return c.State() == expected
	})
}

// RequireState fails the test immediately if the controller is not in the expected state.
func RequireState[T transit.Value](t *testing.T, c *transit.Controller[T], expected transit.State) {
	t.Helper()
	if got := c.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// RequireRange fails the test if the display interpolation does not run from
// from to to.
func RequireRange[T transit.Value](t *testing.T, c *transit.Controller[T], from, to T) {
	t.Helper()
	gotFrom, gotTo := c.Display().Range()
	if gotFrom != from || gotTo != to {
		t.Fatalf("expected range [%v, %v], got [%v, %v]", from, to, gotFrom, gotTo)
	}
}

// RequireOutcome waits for done and fails the test if it does not resolve
// with the expected outcome within timeout.
func RequireOutcome(t *testing.T, done *transit.Completion, expected transit.Outcome, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := done.Wait(ctx); err != nil {
		t.Fatalf("completion did not resolve: %v", err)
	}
	if got := done.Outcome(); got != expected {
		t.Fatalf("expected outcome %s, got %s", expected, got)
	}
}

// Step advances clock by d and gives driver goroutines a moment to publish
// the resulting frame.
func Step(clock *clockz.FakeClock, d time.Duration) {
	clock.Advance(d)
	clock.BlockUntilReady()
	time.Sleep(10 * time.Millisecond)
}

// NewTestController creates a controller on a fake clock. The controller is
// disposed when the test ends.
func NewTestController[T transit.Value](t *testing.T, cfg transit.Config[T], opts ...transit.Option) (*transit.Controller[T], *clockz.FakeClock) {
	t.Helper()
	clock := clockz.NewFakeClock()
	opts = append([]transit.Option{transit.WithClock(clock)}, opts...)
	c, err := transit.New(cfg, opts...)
	if err != nil {
		t.Fatalf("transit.New() error = %v", err)
	}
	t.Cleanup(c.Dispose)
	return c, clock
}

// NewTestBinding creates a binding that watches a channel for selector keys.
// Returns the binding and a channel for sending keys. The watch stops and
// the binding is disposed when the test ends.
func NewTestBinding[K comparable, T transit.Value](t *testing.T, cfg transit.BindConfig[K, T], opts ...transit.Option) (*transit.Binding[K, T], chan<- []byte) {
	t.Helper()
	b, err := transit.Bind(cfg, opts...)
	if err != nil {
		t.Fatalf("transit.Bind() error = %v", err)
	}

	ch := make(chan []byte, 10)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = b.Watch(ctx, transit.NewSyncChannelWatcher(ch))
	}()

	t.Cleanup(func() {
		cancel()
		<-stopped
		b.Dispose()
	})
	return b, ch
}
