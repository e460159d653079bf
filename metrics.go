package transit

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on controller events.
type MetricsProvider interface {
	// OnStateChange is called when the controller moves between states.
	OnStateChange(from, to State)

	// OnTransitionStarted is called when a driver starts.
	OnTransitionStarted()

	// OnTransitionFinished is called when a driver reaches the end of its
	// range. Elapsed includes the delay.
	OnTransitionFinished(elapsed time.Duration)

	// OnTransitionSkipped is called for requests that match the current target.
	OnTransitionSkipped()

	// OnTransitionSuperseded is called when a newer request stops a driver.
	OnTransitionSuperseded()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)             {}
func (NoOpMetricsProvider) OnTransitionStarted()                 {}
func (NoOpMetricsProvider) OnTransitionFinished(_ time.Duration) {}
func (NoOpMetricsProvider) OnTransitionSkipped()                 {}
func (NoOpMetricsProvider) OnTransitionSuperseded()              {}
