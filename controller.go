package transit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Controller drives a transitioning value. It remembers the last requested
// value and exposes an Interpolation from the previous target to the current
// one, advanced over time by a driver.
//
// Each accepted request replaces the display Interpolation and stops the
// driver of the request before it, so at most one driver runs per controller.
//
// Always call Dispose when done to stop the driver and release listeners.
type Controller[T Value] struct {
	cfg      Config[T]
	clock    clockz.Clock
	frame    time.Duration
	dispatch Dispatcher
	metrics  MetricsProvider

	mu        sync.Mutex
	requested T
	previous  T
	display   *Interpolation[T]
	driver    *driver
	pending   *Completion
	startedAt time.Time
	state     State
	disposed  bool

	subscribers map[int]func(*Interpolation[T])
	listeners   map[int]func(T)
	nextID      int
}

// New creates a Controller resting at cfg.Initial. The initial display
// value is Initial at both ends of its range, so nothing moves until the
// first request for a different value.
//
// Example:
//
//	opacity, err := transit.New(transit.Config[float64]{
//	    Initial:  0,
//	    Duration: 300 * time.Millisecond,
//	    Easing:   transit.EaseInOut,
//	})
//	done, err := opacity.Request(1)
//	<-done.Done()
func New[T Value](cfg Config[T], opts ...Option) (*Controller[T], error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	return &Controller[T]{
		cfg:         cfg,
		clock:       o.clock,
		frame:       o.frame,
		dispatch:    o.dispatch,
		metrics:     o.metrics,
		requested:   cfg.Initial,
		previous:    cfg.Initial,
		display:     newInterpolation(cfg.Initial, cfg.Initial, NewSource(), constantLerp(cfg.Initial)),
		state:       StateIdle,
		subscribers: make(map[int]func(*Interpolation[T])),
		listeners:   make(map[int]func(T)),
	}, nil
}

// Request asks for a transition to v.
//
// When v equals the current target the returned completion is already
// resolved with OutcomeSkipped and nothing else changes. Otherwise the
// display is replaced by an interpolation from the current target to v,
// v becomes the current target immediately, any running driver is stopped
// (its completion resolves with OutcomeSuperseded) and a new driver starts.
//
// A request made while a transition is playing therefore starts from the
// previous request's target, not from the value on screen.
//
// Endpoints that cannot be interpolated return a *MixedValueTypeError and
// leave the controller untouched.
func (c *Controller[T]) Request(v T) (*Completion, error) {
	ctx := context.Background()

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}

	from := c.previous
	if from == v {
		c.requested = v
		c.mu.Unlock()
		capitan.Emit(ctx, TransitionSkipped,
			KeyTo.Field(fmt.Sprint(v)),
			KeyOutcome.Field(OutcomeSkipped.String()),
		)
		c.metrics.OnTransitionSkipped()
		return resolvedCompletion(OutcomeSkipped), nil
	}

	lerp, err := newLerp(from, v)
	if err != nil {
		c.mu.Unlock()
		capitan.Emit(ctx, TransitionRejected,
			KeyFrom.Field(fmt.Sprint(from)),
			KeyTo.Field(fmt.Sprint(v)),
			KeyError.Field(err.Error()),
		)
		return nil, err
	}

	c.requested = v
	abandonedFrom, abandonedTo := c.display.Range()
	superseded := c.stopLocked()

	source := NewSource()
	display := newInterpolation(from, v, source, lerp)
	c.display = display
	c.previous = c.requested

	done := newCompletion()
	oldState := c.state
	instant := c.cfg.Duration == 0 && c.cfg.Delay == 0
	if instant {
		source.set(1)
		c.state = StateIdle
	} else {
		d := newDriver(c.clock, c.cfg.Duration, c.cfg.Delay, c.frame, c.cfg.Easing)
		d.onFrame = c.frameHandler(d)
		d.onDone = func() {
			c.dispatch(func() { c.finish(d) })
		}
		c.driver = d
		c.pending = done
		c.startedAt = c.clock.Now()
		c.state = StateAnimating
		d.start()
	}
	newState := c.state
	subscribers := c.subscribersLocked()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	if superseded != nil && superseded.resolve(OutcomeSuperseded) {
		capitan.Emit(ctx, TransitionSuperseded,
			KeyFrom.Field(fmt.Sprint(abandonedFrom)),
			KeyTo.Field(fmt.Sprint(abandonedTo)),
			KeyOutcome.Field(OutcomeSuperseded.String()),
		)
		c.metrics.OnTransitionSuperseded()
	}

	capitan.Emit(ctx, TransitionRequested,
		KeyFrom.Field(fmt.Sprint(from)),
		KeyTo.Field(fmt.Sprint(v)),
	)
	capitan.Emit(ctx, TransitionStarted,
		KeyFrom.Field(fmt.Sprint(from)),
		KeyTo.Field(fmt.Sprint(v)),
		KeyDuration.Field(c.cfg.Duration),
		KeyDelay.Field(c.cfg.Delay),
	)
	c.metrics.OnTransitionStarted()
	c.stateChanged(ctx, oldState, newState)

	for _, fn := range subscribers {
		fn(display)
	}

	if instant {
		value := display.Value()
		for _, fn := range listeners {
			fn(value)
		}
		capitan.Emit(ctx, TransitionCompleted,
			KeyTo.Field(fmt.Sprint(v)),
			KeyElapsed.Field(0),
			KeyOutcome.Field(OutcomeFinished.String()),
		)
		c.metrics.OnTransitionFinished(0)
		done.resolve(OutcomeFinished)
	}

	return done, nil
}

// frameHandler returns the driver's frame callback. Accelerated configs
// apply frames on the driver goroutine; others hop through the dispatcher.
func (c *Controller[T]) frameHandler(d *driver) func(float64) {
	if c.cfg.Accelerated {
		return func(p float64) { c.applyFrame(d, p) }
	}
	return func(p float64) {
		c.dispatch(func() { c.applyFrame(d, p) })
	}
}

// applyFrame publishes progress p if d is still the current driver.
func (c *Controller[T]) applyFrame(d *driver, p float64) {
	c.mu.Lock()
	if c.driver != d {
		c.mu.Unlock()
		return
	}
	display := c.display
	display.source.set(p)
	listeners := c.listenersLocked()
	c.mu.Unlock()

	value := display.Value()
	for _, fn := range listeners {
		fn(value)
	}
}

// finish settles the completion of d if it is still the current driver.
func (c *Controller[T]) finish(d *driver) {
	ctx := context.Background()

	c.mu.Lock()
	if c.driver != d {
		c.mu.Unlock()
		return
	}
	c.driver = nil
	done := c.pending
	c.pending = nil
	oldState := c.state
	c.state = StateIdle
	elapsed := c.clock.Since(c.startedAt)
	to := c.requested
	c.mu.Unlock()

	capitan.Emit(ctx, TransitionCompleted,
		KeyTo.Field(fmt.Sprint(to)),
		KeyElapsed.Field(elapsed),
		KeyOutcome.Field(OutcomeFinished.String()),
	)
	c.metrics.OnTransitionFinished(elapsed)
	c.stateChanged(ctx, oldState, StateIdle)
	done.resolve(OutcomeFinished)
}

// stopLocked halts the current driver and returns its unresolved completion.
func (c *Controller[T]) stopLocked() *Completion {
	if c.driver != nil {
		c.driver.halt()
		c.driver = nil
	}
	pending := c.pending
	c.pending = nil
	return pending
}

// stateChanged emits a state change event if the state changed.
func (c *Controller[T]) stateChanged(ctx context.Context, oldState, newState State) {
	if oldState == newState {
		return
	}
	capitan.Emit(ctx, StateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	c.metrics.OnStateChange(oldState, newState)
}

// Display returns the current display interpolation.
func (c *Controller[T]) Display() *Interpolation[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Value returns the current display value.
func (c *Controller[T]) Value() T {
	return c.Display().Value()
}

// Requested returns the value of the last accepted request.
func (c *Controller[T]) Requested() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requested
}

// Previous returns the value the next transition will start from.
func (c *Controller[T]) Previous() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previous
}

// State returns the current state of the Controller.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAnimating returns true while a driver is running.
func (c *Controller[T]) IsAnimating() bool {
	return c.State() == StateAnimating
}

// Subscribe adds a callback that fires whenever the display interpolation is
// replaced. Returns an unsubscribe function.
func (c *Controller[T]) Subscribe(fn func(*Interpolation[T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// AddListener adds a callback that fires with the display value on every
// driver frame. Returns a function that removes the listener.
func (c *Controller[T]) AddListener(fn func(T)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Controller[T]) subscribersLocked() []func(*Interpolation[T]) {
	out := make([]func(*Interpolation[T]), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		out = append(out, fn)
	}
	return out
}

func (c *Controller[T]) listenersLocked() []func(T) {
	out := make([]func(T), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

// Dispose stops the running driver, resolving its completion with
// OutcomeCancelled, and drops all listeners. Later requests fail with
// ErrDisposed. Safe to call more than once.
func (c *Controller[T]) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	pending := c.stopLocked()
	oldState := c.state
	c.state = StateIdle
	from, to := c.display.Range()
	c.subscribers = nil
	c.listeners = nil
	c.mu.Unlock()

	ctx := context.Background()
	if pending != nil {
		capitan.Emit(ctx, TransitionCancelled,
			KeyFrom.Field(fmt.Sprint(from)),
			KeyTo.Field(fmt.Sprint(to)),
			KeyOutcome.Field(OutcomeCancelled.String()),
		)
	}
	c.stateChanged(ctx, oldState, StateIdle)
	pending.resolve(OutcomeCancelled)
}
