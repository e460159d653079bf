/*
Package transit drives value transitions for UI hosts.

A Controller holds a transitioning value. Requesting a new value replaces the
controller's display Interpolation with one running from the previous target
to the new one, and starts a driver that advances it over the configured
duration. Hosts read the display value when they render, or subscribe to be
told when it changes.

	fade, _ := transit.New(transit.Config[float64]{
	    Initial:  0,
	    Duration: 300 * time.Millisecond,
	    Easing:   transit.EaseInOut,
	})
	defer fade.Dispose()

	fade.AddListener(func(v float64) { view.SetOpacity(v) })
	done, _ := fade.Request(1)
	<-done.Done()

# Targets

Each request starts from the target of the request before it, even when that
transition is still playing. Requesting the current target again is a no-op
and returns a completion that has already resolved. Starting a new transition
stops the driver of the previous one; its completion resolves with
OutcomeSuperseded.

# Values

Controllers are generic over float64 and string. Strings interpolate as
colours (#rgb, #rrggbb or SVG colour names, blended with go-colorful) or as
numeric templates such as "10px" or "rotate(45deg)". A request whose
endpoints cannot be interpolated fails with a *MixedValueTypeError.

# Bindings

A Binding maps a discrete selector key to a target through a lookup table:

	light, _ := transit.Bind(transit.BindConfig[string, string]{
	    Config:    transit.Config[string]{Initial: "red", Duration: 300 * time.Millisecond},
	    Key:       "off",
	    Selectors: map[string]string{"on": "green", "off": "red"},
	})
	light.Select("on")

Keys can also be fed from a Watcher (ChannelWatcher, FileWatcher) with
Binding.Watch.

# Observability

Lifecycle events are emitted as capitan signals (TransitionStarted,
TransitionSuperseded, StateChanged, ...). Implement MetricsProvider and pass
WithMetrics for counters and timings.
*/
package transit
