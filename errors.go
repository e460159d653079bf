package transit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a transition config fails validation.
	ErrInvalidConfig = errors.New("invalid transition config")

	// ErrDisposed is returned by Request after Dispose has been called.
	ErrDisposed = errors.New("controller disposed")

	// ErrUnknownSelector is returned when a selector key has no entry in the
	// selector map.
	ErrUnknownSelector = errors.New("unknown selector key")

	// ErrAlreadyWatching is returned when Watch is called on a binding that is
	// already watching a source.
	ErrAlreadyWatching = errors.New("binding already watching")

	// ErrUnknownEasing is returned when an easing name cannot be resolved.
	ErrUnknownEasing = errors.New("unknown easing")
)

// MixedValueTypeError reports a request whose endpoints cannot be
// interpolated into one another, such as a colour and a length.
type MixedValueTypeError struct {
	From string
	To   string
}

func (e *MixedValueTypeError) Error() string {
	return fmt.Sprintf("cannot interpolate %q to %q: mixed value types", e.From, e.To)
}
