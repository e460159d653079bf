package transit

// State represents the current state of a Controller.
type State int32

const (
	// StateIdle indicates no driver is running. The display value rests at
	// the end of its range.
	StateIdle State = iota

	// StateAnimating indicates a driver is advancing the display value.
	StateAnimating
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnimating:
		return "animating"
	default:
		return "unknown"
	}
}
