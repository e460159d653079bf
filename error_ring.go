package transit

import "sync"

// errorRing keeps the most recent errors seen while watching a key source.
type errorRing struct {
	mu     sync.RWMutex
	errors []error
	size   int
	head   int
	count  int
}

// newErrorRing creates a ring holding up to size errors. A non-positive
// size disables the ring; every method is safe on the nil result.
func newErrorRing(size int) *errorRing {
	if size <= 0 {
		return nil
	}
	return &errorRing{
		errors: make([]error, size),
		size:   size,
	}
}

func (r *errorRing) push(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors[r.head] = err
	r.head = (r.head + 1) % r.size
	r.count = min(r.count+1, r.size)
}

// all returns the retained errors, oldest first.
func (r *errorRing) all() []error {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	out := make([]error, 0, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := range r.count {
		out = append(out, r.errors[(start+i)%r.size])
	}
	return out
}
