package transit

import "github.com/zoobzio/capitan"

// Transition lifecycle signals.
var (
	// TransitionRequested is emitted for every accepted call to Request.
	TransitionRequested = capitan.NewSignal(
		"transit.transition.requested",
		"Transition requested",
	)

	// TransitionStarted is emitted when a new driver starts.
	TransitionStarted = capitan.NewSignal(
		"transit.transition.started",
		"Transition driver started",
	)

	// TransitionSkipped is emitted when a request matches the current target.
	TransitionSkipped = capitan.NewSignal(
		"transit.transition.skipped",
		"Transition skipped, target unchanged",
	)

	// TransitionSuperseded is emitted when a running driver is stopped by a
	// newer request. KeyFrom and KeyTo carry the abandoned range.
	TransitionSuperseded = capitan.NewSignal(
		"transit.transition.superseded",
		"Transition superseded by newer request",
	)

	// TransitionCompleted is emitted when a driver reaches the end of its range.
	TransitionCompleted = capitan.NewSignal(
		"transit.transition.completed",
		"Transition completed",
	)

	// TransitionCancelled is emitted when Dispose stops a running driver.
	TransitionCancelled = capitan.NewSignal(
		"transit.transition.cancelled",
		"Transition cancelled by dispose",
	)

	// TransitionRejected is emitted when a request cannot be interpolated.
	TransitionRejected = capitan.NewSignal(
		"transit.transition.rejected",
		"Transition rejected",
	)

	// StateChanged is emitted when a Controller moves between states.
	StateChanged = capitan.NewSignal(
		"transit.state.changed",
		"Controller state transition",
	)
)

// Binding signals.
var (
	// BindingSelected is emitted when a binding forwards a new key.
	BindingSelected = capitan.NewSignal(
		"transit.binding.selected",
		"Selector key changed",
	)

	// BindingDecodeFailed is emitted when a watched key cannot be decoded.
	BindingDecodeFailed = capitan.NewSignal(
		"transit.binding.decode.failed",
		"Selector key decode failed",
	)

	// BindingLookupFailed is emitted when a watched key is not in the
	// selector map or its target cannot be requested.
	BindingLookupFailed = capitan.NewSignal(
		"transit.binding.lookup.failed",
		"Selector key lookup failed",
	)

	// BindingWatchStarted is emitted when a binding begins watching a source.
	BindingWatchStarted = capitan.NewSignal(
		"transit.binding.watch.started",
		"Binding watching started",
	)

	// BindingWatchStopped is emitted when a binding stops watching.
	BindingWatchStopped = capitan.NewSignal(
		"transit.binding.watch.stopped",
		"Binding watching stopped",
	)
)
