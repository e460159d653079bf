package transit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func newLight(t *testing.T, key string, duration time.Duration, opts ...Option) *Binding[string, string] {
	t.Helper()
	b, err := Bind(BindConfig[string, string]{
		Config:    Config[string]{Initial: "red", Duration: duration},
		Key:       key,
		Selectors: map[string]string{"on": "green", "off": "red"},
	}, opts...)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	t.Cleanup(b.Dispose)
	return b
}

func TestBind_MatchingKeyStaysIdle(t *testing.T) {
	b := newLight(t, "off", 300*time.Millisecond, WithClock(clockz.NewFakeClock()))

	from, to := b.Display().Range()
	if from != "red" || to != "red" {
		t.Errorf("expected range [red, red], got [%s, %s]", from, to)
	}
	if b.Controller().IsAnimating() {
		t.Error("expected no transition at mount")
	}
}

func TestBind_MountRequestsSelectedTarget(t *testing.T) {
	b := newLight(t, "on", 300*time.Millisecond, WithClock(clockz.NewFakeClock()))

	from, to := b.Display().Range()
	if from != "red" || to != "green" {
		t.Errorf("expected range [red, green], got [%s, %s]", from, to)
	}
	if !b.Controller().IsAnimating() {
		t.Error("expected mount transition to be running")
	}
}

func TestBinding_SelectStartsTransition(t *testing.T) {
	clock := clockz.NewFakeClock()
	b := newLight(t, "off", 300*time.Millisecond, WithClock(clock))

	done, err := b.Select("on")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if b.Key() != "on" {
		t.Errorf("expected key 'on', got %q", b.Key())
	}

	from, to := b.Display().Range()
	if from != "red" || to != "green" {
		t.Errorf("expected range [red, green], got [%s, %s]", from, to)
	}

	advance(clock, 300*time.Millisecond)
	waitDone(t, done)
	if done.Outcome() != OutcomeFinished {
		t.Errorf("expected finished, got %s", done.Outcome())
	}
	if v := b.Display().Value(); v != "#008000" {
		t.Errorf("expected #008000 at rest, got %s", v)
	}
}

func TestBinding_SelectSameKeySkips(t *testing.T) {
	b := newLight(t, "off", 0)
	before := b.Display()

	done, err := b.Select("off")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if done.Outcome() != OutcomeSkipped {
		t.Errorf("expected skipped, got %s", done.Outcome())
	}
	if b.Display() != before {
		t.Error("expected display to be unchanged")
	}
}

func TestBinding_SelectUnknownKey(t *testing.T) {
	b := newLight(t, "off", 0)

	if _, err := b.Select("blinking"); !errors.Is(err, ErrUnknownSelector) {
		t.Errorf("expected ErrUnknownSelector, got %v", err)
	}
	if b.Key() != "off" {
		t.Errorf("expected key to stay 'off', got %q", b.Key())
	}
}

func TestBinding_SelectZeroDuration(t *testing.T) {
	b := newLight(t, "off", 0)

	done, err := b.Select("on")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if done.Outcome() != OutcomeFinished {
		t.Errorf("expected finished, got %s", done.Outcome())
	}
	if v := b.Display().Value(); v != "#008000" {
		t.Errorf("expected #008000, got %s", v)
	}
}

func TestBind_Errors(t *testing.T) {
	_, err := Bind(BindConfig[string, float64]{
		Config:    Config[float64]{Duration: time.Second},
		Key:       "a",
		Selectors: map[string]float64{},
	})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty selectors, got %v", err)
	}

	_, err = Bind(BindConfig[string, float64]{
		Config:    Config[float64]{Duration: time.Second},
		Key:       "missing",
		Selectors: map[string]float64{"a": 1},
	})
	if !errors.Is(err, ErrUnknownSelector) {
		t.Errorf("expected ErrUnknownSelector, got %v", err)
	}

	_, err = Bind(BindConfig[string, string]{
		Config:    Config[string]{Initial: "10px"},
		Key:       "a",
		Selectors: map[string]string{"a": "red"},
	})
	var mixed *MixedValueTypeError
	if !errors.As(err, &mixed) {
		t.Errorf("expected MixedValueTypeError, got %v", err)
	}
}

func TestBinding_Watch(t *testing.T) {
	b := newLight(t, "off", 0, WithErrorHistory(5))

	ch := make(chan []byte, 3)
	ch <- []byte("on")
	ch <- []byte("blinking")
	ch <- []byte("[unclosed")
	close(ch)

	if err := b.Watch(context.Background(), NewSyncChannelWatcher(ch)); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if b.Key() != "on" {
		t.Errorf("expected key 'on', got %q", b.Key())
	}
	if b.LastError() == nil {
		t.Error("expected last error from undecodable key")
	}

	history := b.ErrorHistory()
	if len(history) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(history))
	}
	if !errors.Is(history[0], ErrUnknownSelector) {
		t.Errorf("expected ErrUnknownSelector first, got %v", history[0])
	}

	ch = make(chan []byte, 1)
	ch <- []byte("off")
	close(ch)
	if err := b.Watch(context.Background(), NewSyncChannelWatcher(ch)); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if b.LastError() != nil {
		t.Errorf("expected last error to clear, got %v", b.LastError())
	}
	if b.Key() != "off" {
		t.Errorf("expected key 'off', got %q", b.Key())
	}
}

func TestBinding_WatchJSONKeys(t *testing.T) {
	b, err := Bind(BindConfig[int, float64]{
		Config:    Config[float64]{},
		Key:       0,
		Selectors: map[int]float64{0: 0, 1: 0.5, 2: 1},
	}, WithCodec(JSONCodec{}))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer b.Dispose()

	ch := make(chan []byte, 1)
	ch <- []byte("2")
	close(ch)
	if err := b.Watch(context.Background(), NewSyncChannelWatcher(ch)); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if v := b.Controller().Value(); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
}

func TestBinding_CannotWatchTwice(t *testing.T) {
	b := newLight(t, "off", 0)

	ch := make(chan []byte)
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		errs <- b.Watch(ctx, NewSyncChannelWatcher(ch))
	}()

	// The send completes once the first Watch is consuming.
	ch <- []byte("on")

	if err := b.Watch(ctx, NewSyncChannelWatcher(ch)); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("expected ErrAlreadyWatching, got %v", err)
	}

	cancel()
	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for Watch to return")
	}
}

func TestLoadSelectors(t *testing.T) {
	yamlDoc := []byte("on: \"#00ff00\"\noff: \"#ff0000\"\n")
	m, err := LoadSelectors[string, string](yamlDoc, nil)
	if err != nil {
		t.Fatalf("LoadSelectors() error = %v", err)
	}
	if m["on"] != "#00ff00" || m["off"] != "#ff0000" {
		t.Errorf("unexpected selectors %v", m)
	}

	nums, err := LoadSelectors[string, float64]([]byte(`{"closed": 0, "open": 240}`), JSONCodec{})
	if err != nil {
		t.Fatalf("LoadSelectors() error = %v", err)
	}
	if nums["open"] != 240 {
		t.Errorf("expected open 240, got %v", nums["open"])
	}
}

func TestLoadSelectors_Errors(t *testing.T) {
	if _, err := LoadSelectors[string, string]([]byte("{}"), JSONCodec{}); err == nil {
		t.Error("expected error for empty selector map")
	}
	if _, err := LoadSelectors[string, string]([]byte("on: [unclosed"), YAMLCodec{}); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestBinding_SubscriberReadsKeyDuringSelect(t *testing.T) {
	b := newLight(t, "off", 300*time.Millisecond, WithClock(clockz.NewFakeClock()))

	seen := make(chan string, 1)
	b.Controller().Subscribe(func(*Interpolation[string]) {
		seen <- b.Key()
	})

	errs := make(chan error, 1)
	go func() {
		_, err := b.Select("on")
		errs <- err
	}()

	select {
	case err := <-errs:
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Select blocked while a subscriber read the key")
	}
	if key := <-seen; key != "on" {
		t.Errorf("expected subscriber to see key 'on', got %q", key)
	}
}

func TestBinding_SubscriberSelectsDuringSelect(t *testing.T) {
	b := newLight(t, "off", 0)

	var once sync.Once
	b.Controller().Subscribe(func(*Interpolation[string]) {
		once.Do(func() { _, _ = b.Select("off") })
	})

	errs := make(chan error, 1)
	go func() {
		_, err := b.Select("on")
		errs <- err
	}()

	select {
	case err := <-errs:
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("nested Select blocked")
	}
	if b.Key() != "off" {
		t.Errorf("expected the nested selection to win, got %q", b.Key())
	}
	if v := b.Display().Value(); v != "#ff0000" {
		t.Errorf("expected #ff0000, got %s", v)
	}
}

func TestBinding_FailedRequestRestoresKey(t *testing.T) {
	b, err := Bind(BindConfig[string, string]{
		Config:    Config[string]{Initial: "red"},
		Key:       "colour",
		Selectors: map[string]string{"colour": "red", "width": "10px"},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer b.Dispose()

	var mixed *MixedValueTypeError
	if _, err := b.Select("width"); !errors.As(err, &mixed) {
		t.Fatalf("expected MixedValueTypeError, got %v", err)
	}
	if b.Key() != "colour" {
		t.Errorf("expected key to stay 'colour', got %q", b.Key())
	}

	b.Dispose()
	if _, err := b.Select("width"); !errors.Is(err, ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
	if b.Key() != "colour" {
		t.Errorf("expected key to stay 'colour' after dispose, got %q", b.Key())
	}
}
