package transit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
)

// BindConfig describes a transition whose target is chosen by a selector key.
type BindConfig[K comparable, T Value] struct {
	Config[T]

	// Key is the selector key at construction.
	Key K

	// Selectors maps selector keys to transition targets.
	Selectors map[K]T `validate:"min=1"`
}

// Binding forwards selector key changes to a Controller. Whenever the key
// changes, the binding looks the key up in its selector map and requests a
// transition to the result.
type Binding[K comparable, T Value] struct {
	controller *Controller[T]
	codec      Codec

	mu        sync.Mutex
	key       K
	selectors map[K]T
	watching  bool

	lastError    atomic.Pointer[error]
	errorHistory *errorRing
}

// Bind creates a Binding and its Controller, starting at cfg.Initial, then
// requests the target of cfg.Key. That first request is a no-op when the
// target equals Initial.
//
// Example:
//
//	light, err := transit.Bind(transit.BindConfig[string, string]{
//	    Config:    transit.Config[string]{Initial: "red", Duration: 300 * time.Millisecond},
//	    Key:       "off",
//	    Selectors: map[string]string{"on": "green", "off": "red"},
//	})
//	light.Select("on") // red → green
func Bind[K comparable, T Value](cfg BindConfig[K, T], opts ...Option) (*Binding[K, T], error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	target, ok := cfg.Selectors[cfg.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSelector, cfg.Key)
	}

	controller, err := New(cfg.Config, opts...)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	selectors := make(map[K]T, len(cfg.Selectors))
	for k, v := range cfg.Selectors {
		selectors[k] = v
	}

	b := &Binding[K, T]{
		controller:   controller,
		codec:        o.codec,
		key:          cfg.Key,
		selectors:    selectors,
		errorHistory: newErrorRing(o.errorHistory),
	}

	if _, err := controller.Request(target); err != nil {
		controller.Dispose()
		return nil, err
	}
	return b, nil
}

// Select changes the selector key. The same key as before returns a skipped
// completion without requesting anything. An unknown key returns
// ErrUnknownSelector and leaves the key unchanged.
//
// The key is stored before the transition is requested, so subscribers and
// listeners reading Key see the new key. If the request fails the old key
// is restored unless another Select replaced it meanwhile.
func (b *Binding[K, T]) Select(key K) (*Completion, error) {
	ctx := context.Background()

	b.mu.Lock()
	if key == b.key {
		b.mu.Unlock()
		return resolvedCompletion(OutcomeSkipped), nil
	}
	target, ok := b.selectors[key]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrUnknownSelector, key)
	}
	old := b.key
	b.key = key
	b.mu.Unlock()

	done, err := b.controller.Request(target)
	if err != nil {
		b.mu.Lock()
		if b.key == key {
			b.key = old
		}
		b.mu.Unlock()
		return nil, err
	}

	capitan.Emit(ctx, BindingSelected,
		KeySelector.Field(fmt.Sprint(key)),
		KeyTo.Field(fmt.Sprint(target)),
	)
	return done, nil
}

// Request forwards v to the controller without changing the selector key.
func (b *Binding[K, T]) Request(v T) (*Completion, error) {
	return b.controller.Request(v)
}

// Key returns the current selector key.
func (b *Binding[K, T]) Key() K {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Controller returns the controller driven by the binding.
func (b *Binding[K, T]) Controller() *Controller[T] {
	return b.controller
}

// Display returns the controller's current display interpolation.
func (b *Binding[K, T]) Display() *Interpolation[T] {
	return b.controller.Display()
}

// Dispose disposes the controller.
func (b *Binding[K, T]) Dispose() {
	b.controller.Dispose()
}

// Watch selects every key emitted by watcher until the watcher closes its
// channel or ctx ends. Keys are decoded with the binding's codec. Keys that
// fail to decode or select are recorded (see LastError) and skipped.
//
// Watch blocks; run it on its own goroutine. Only one Watch may run at a
// time per binding.
func (b *Binding[K, T]) Watch(ctx context.Context, watcher Watcher) error {
	b.mu.Lock()
	if b.watching {
		b.mu.Unlock()
		return ErrAlreadyWatching
	}
	b.watching = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.watching = false
		b.mu.Unlock()
	}()

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	capitan.Emit(ctx, BindingWatchStarted,
		KeyWatcherType.Field(fmt.Sprintf("%T", watcher)),
	)
	defer func() {
		capitan.Emit(ctx, BindingWatchStopped,
			KeySelector.Field(fmt.Sprint(b.Key())),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-changes:
			if !ok {
				return nil
			}
			b.apply(ctx, raw)
		}
	}
}

// apply decodes and selects one watched key.
func (b *Binding[K, T]) apply(ctx context.Context, raw []byte) {
	var key K
	if err := b.codec.Unmarshal(raw, &key); err != nil {
		err = fmt.Errorf("decode selector %q: %w", raw, err)
		b.setError(err)
		capitan.Emit(ctx, BindingDecodeFailed,
			KeyError.Field(err.Error()),
		)
		return
	}

	if _, err := b.Select(key); err != nil {
		b.setError(err)
		capitan.Emit(ctx, BindingLookupFailed,
			KeySelector.Field(fmt.Sprint(key)),
			KeyError.Field(err.Error()),
		)
		return
	}
	b.lastError.Store(nil)
}

func (b *Binding[K, T]) setError(err error) {
	e := err
	b.lastError.Store(&e)
	b.errorHistory.push(err)
}

// LastError returns the error of the most recent watched key, or nil if it
// was selected successfully.
func (b *Binding[K, T]) LastError() error {
	ptr := b.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns recent watch errors, oldest first. It is empty unless
// the binding was created with WithErrorHistory.
func (b *Binding[K, T]) ErrorHistory() []error {
	return b.errorHistory.all()
}

// errEmptySelectors is returned by LoadSelectors for documents with no entries.
var errEmptySelectors = errors.New("selector map is empty")

// LoadSelectors decodes a selector map such as
//
//	on: "#00ff00"
//	off: "#ff0000"
//
// Colour values must be quoted in YAML, where # starts a comment.
func LoadSelectors[K comparable, T Value](data []byte, codec Codec) (map[K]T, error) {
	if codec == nil {
		codec = YAMLCodec{}
	}
	var m map[K]T
	if err := codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal selectors: %w", err)
	}
	if len(m) == 0 {
		return nil, errEmptySelectors
	}
	return m, nil
}
