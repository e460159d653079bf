package transit

import "context"

// Watcher observes a source of selector keys and emits raw bytes on a
// channel. Implementations must emit the current value immediately upon
// Watch() being called so a binding picks up the key it starts with.
type Watcher interface {
	// Watch begins observing the source and returns a channel that emits
	// raw bytes when the key changes. The channel is closed when the
	// context is canceled or an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan []byte, error)
}
