package transit

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/clockz"
)

// validate is the shared validator instance.
var validate = validator.New()

// Config describes one transitioning value.
type Config[T Value] struct {
	// Initial is the value shown before the first request.
	Initial T

	// Duration is how long each transition plays, excluding Delay.
	Duration time.Duration `validate:"gte=0"`

	// Easing shapes progress over the duration. Nil is linear.
	Easing Easing

	// Delay postpones the start of each transition.
	Delay time.Duration `validate:"gte=0"`

	// Accelerated applies frames on the driver goroutine instead of
	// routing them through the Dispatcher.
	Accelerated bool
}

// Dispatcher runs fn on the host's event loop. The default runs fn inline.
type Dispatcher func(fn func())

func inline(fn func()) { fn() }

// options holds instance configuration shared by controllers and bindings.
type options struct {
	clock        clockz.Clock
	frame        time.Duration
	dispatch     Dispatcher
	metrics      MetricsProvider
	codec        Codec
	errorHistory int
}

// Option configures a Controller or Binding.
type Option func(*options)

func buildOptions(opts []Option) *options {
	o := &options{
		clock:    clockz.RealClock,
		frame:    DefaultFrameInterval,
		dispatch: inline,
		metrics:  NoOpMetricsProvider{},
		codec:    YAMLCodec{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithClock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic driver testing.
func WithClock(clock clockz.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithFrameInterval sets the time between driver frames.
// Non-positive intervals are ignored. Default: 16ms.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.frame = d
		}
	}
}

// WithDispatcher routes frame updates and completions through the host's
// event loop. Accelerated configs bypass it for frames.
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) {
		if d != nil {
			o.dispatch = d
		}
	}
}

// WithMetrics sets a metrics provider for observability integration.
func WithMetrics(provider MetricsProvider) Option {
	return func(o *options) {
		if provider != nil {
			o.metrics = provider
		}
	}
}

// WithCodec sets the codec a Binding uses to decode watched keys.
// Default: YAMLCodec.
func WithCodec(codec Codec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithErrorHistory sets the number of recent watch errors a Binding retains.
// Use 0 (default) to only retain the most recent error via LastError().
func WithErrorHistory(n int) Option {
	return func(o *options) {
		o.errorHistory = n
	}
}

// Spec is the serialised form of a transition config, as found in YAML or
// JSON files:
//
//	duration: 300ms
//	delay: 50ms
//	easing: ease-in-out
//	accelerated: true
type Spec struct {
	Duration    string `json:"duration" yaml:"duration" validate:"required"`
	Delay       string `json:"delay" yaml:"delay"`
	Easing      string `json:"easing" yaml:"easing"`
	Accelerated bool   `json:"accelerated" yaml:"accelerated"`
}

// ParseSpec decodes and validates a Spec.
func ParseSpec(data []byte, codec Codec) (Spec, error) {
	if codec == nil {
		codec = YAMLCodec{}
	}
	var s Spec
	if err := codec.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("%w: unmarshal failed: %w", ErrInvalidConfig, err)
	}
	if err := validate.Struct(s); err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s, nil
}

// BuildConfig turns a Spec into a Config starting at initial.
func BuildConfig[T Value](s Spec, initial T) (Config[T], error) {
	duration, err := time.ParseDuration(s.Duration)
	if err != nil {
		return Config[T]{}, fmt.Errorf("%w: duration: %w", ErrInvalidConfig, err)
	}

	var delay time.Duration
	if s.Delay != "" {
		delay, err = time.ParseDuration(s.Delay)
		if err != nil {
			return Config[T]{}, fmt.Errorf("%w: delay: %w", ErrInvalidConfig, err)
		}
	}

	easing, err := EasingByName(s.Easing)
	if err != nil {
		return Config[T]{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg := Config[T]{
		Initial:     initial,
		Duration:    duration,
		Easing:      easing,
		Delay:       delay,
		Accelerated: s.Accelerated,
	}
	if err := validateConfig(cfg); err != nil {
		return Config[T]{}, err
	}
	return cfg, nil
}

func validateConfig[T Value](cfg Config[T]) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
