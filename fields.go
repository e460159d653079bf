package transit

import "github.com/zoobzio/capitan"

// Field keys for transit events.
var (
	// KeyFrom is the start of a transition range.
	KeyFrom = capitan.NewStringKey("from")

	// KeyTo is the end of a transition range.
	KeyTo = capitan.NewStringKey("to")

	// KeyOldState is the state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyDuration is the configured transition duration.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeyDelay is the configured start delay.
	KeyDelay = capitan.NewDurationKey("delay")

	// KeyElapsed is the wall time a transition took, delay included.
	KeyElapsed = capitan.NewDurationKey("elapsed")

	// KeyOutcome is how a completion resolved.
	KeyOutcome = capitan.NewStringKey("outcome")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeySelector is a binding's selector key.
	KeySelector = capitan.NewStringKey("selector")

	// KeyWatcherType is the type name of the watcher implementation.
	KeyWatcherType = capitan.NewStringKey("watcher_type")
)
