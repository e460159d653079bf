package transit

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// DefaultFrameInterval is the default time between driver frames.
const DefaultFrameInterval = 16 * time.Millisecond

// driver advances one Source from 0 to 1. It waits out the delay, then wakes
// once per frame until the duration has elapsed. Frames and the final
// completion are reported through the callbacks; the receiver decides
// whether the driver is still current.
type driver struct {
	clock    clockz.Clock
	duration time.Duration
	delay    time.Duration
	frame    time.Duration
	easing   Easing

	onFrame func(p float64)
	onDone  func()

	begin time.Time
	timer clockz.Timer

	stopOnce sync.Once
	stop     chan struct{}
}

func newDriver(clock clockz.Clock, duration, delay, frame time.Duration, easing Easing) *driver {
	if easing == nil {
		easing = Linear
	}
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &driver{
		clock:    clock,
		duration: duration,
		delay:    delay,
		frame:    frame,
		easing:   easing,
		stop:     make(chan struct{}),
	}
}

// start arms the first timer on the calling goroutine so the first wake-up
// is scheduled against the clock as of the request, then hands off to run.
func (d *driver) start() {
	d.begin = d.clock.Now().Add(d.delay)
	d.timer = d.clock.NewTimer(d.delay + d.nextWait(0))
	go d.run()
}

// halt stops the driver. Safe to call more than once.
func (d *driver) halt() {
	d.stopOnce.Do(func() {
		close(d.stop)
	})
}

func (d *driver) run() {
	for {
		select {
		case <-d.stop:
			d.timer.Stop()
			return
		case <-d.timer.C():
		}

		elapsed := d.clock.Now().Sub(d.begin)
		if elapsed < 0 {
			elapsed = 0
		}

		linear := 1.0
		if d.duration > 0 && elapsed < d.duration {
			linear = float64(elapsed) / float64(d.duration)
		}

		p := 1.0
		if linear < 1 {
			p = d.easing(linear)
		}

		select {
		case <-d.stop:
			return
		default:
		}

		d.onFrame(p)
		if linear >= 1 {
			d.onDone()
			return
		}

		d.timer = d.clock.NewTimer(d.nextWait(elapsed))
	}
}

// nextWait returns the time to the next frame, landing exactly on the end of
// the duration for the last one. A zero duration completes on the first
// wake-up after the delay.
func (d *driver) nextWait(elapsed time.Duration) time.Duration {
	if d.duration <= 0 {
		return 0
	}
	return min(d.frame, d.duration-elapsed)
}
