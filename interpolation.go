package transit

import (
	"math"
	"sync/atomic"
)

// Source is a progress value advanced by exactly one driver. It starts at 0
// and reaches 1 when the driver completes; easing curves may carry it
// outside [0, 1] in between.
type Source struct {
	bits atomic.Uint64
}

// NewSource returns a source at progress 0.
func NewSource() *Source {
	return &Source{}
}

// Progress returns the current progress.
func (s *Source) Progress() float64 {
	return math.Float64frombits(s.bits.Load())
}

func (s *Source) set(p float64) {
	s.bits.Store(math.Float64bits(p))
}

// Interpolation maps the progress of one Source onto the range [from, to].
// It is immutable; a Controller replaces its Interpolation whenever a new
// transition starts rather than retargeting the current one.
type Interpolation[T Value] struct {
	from   T
	to     T
	source *Source
	lerp   lerpFunc[T]
}

// NewInterpolation binds a from→to range to source. It fails with a
// *MixedValueTypeError when the endpoints cannot be interpolated.
func NewInterpolation[T Value](from, to T, source *Source) (*Interpolation[T], error) {
	lerp, err := newLerp(from, to)
	if err != nil {
		return nil, err
	}
	return newInterpolation(from, to, source, lerp), nil
}

func newInterpolation[T Value](from, to T, source *Source, lerp lerpFunc[T]) *Interpolation[T] {
	if source == nil {
		source = NewSource()
	}
	return &Interpolation[T]{
		from:   from,
		to:     to,
		source: source,
		lerp:   lerp,
	}
}

// Range returns the endpoints of the interpolation.
func (i *Interpolation[T]) Range() (from, to T) {
	return i.from, i.to
}

// At returns the value at progress p.
func (i *Interpolation[T]) At(p float64) T {
	return i.lerp(p)
}

// Value returns the value at the source's current progress.
func (i *Interpolation[T]) Value() T {
	return i.lerp(i.source.Progress())
}

// Progress returns the source's current progress.
func (i *Interpolation[T]) Progress() float64 {
	return i.source.Progress()
}
