package transit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// Easing maps linear progress in [0, 1] to eased progress. Curves must
// return 0 at 0 and 1 at 1; values in between may overshoot.
type Easing func(float64) float64

// Linear returns progress unchanged.
func Linear(t float64) float64 {
	return t
}

// Ease is equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn starts slowly and accelerates. Equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.42, 0.0, 1.0, 1.0)

// EaseOut starts quickly and decelerates. Equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.58, 1.0)

// EaseInOut is equivalent to CSS ease-in-out.
var EaseInOut = CubicBezier(0.42, 0.0, 0.58, 1.0)

// CubicBezier returns an easing matching CSS cubic-bezier(x1, y1, x2, y2).
// The curve runs from (0,0) to (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson first, it converges in a few steps for sane curves.
		for range 8 {
			x := bezier(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return bezier(y1, y2, clampUnit(u))
			}
			dx := bezierSlope(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 16 {
			x := bezier(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return bezier(y1, y2, u)
	}
}

func bezier(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func bezierSlope(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const (
	springFPS       = 60
	springMaxFrames = 600
	springEpsilon   = 1e-4
)

// Spring returns an easing shaped like a damped spring released from 0
// towards 1. Frequency is the angular frequency and damping the damping
// ratio; ratios below 1 overshoot. The simulated motion is stretched over
// the whole transition, so the duration decides how fast it plays.
func Spring(frequency, damping float64) Easing {
	spring := harmonica.NewSpring(harmonica.FPS(springFPS), frequency, damping)

	samples := []float64{0}
	pos, vel := 0.0, 0.0
	for range springMaxFrames {
		pos, vel = spring.Update(pos, vel, 1)
		samples = append(samples, pos)
		if math.Abs(1-pos) < springEpsilon && math.Abs(vel) < springEpsilon {
			break
		}
	}
	samples[len(samples)-1] = 1

	last := float64(len(samples) - 1)
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		x := t * last
		i := int(x)
		return LerpFloat64(samples[i], samples[i+1], x-float64(i))
	}
}

// Default spring parameters used by EasingByName.
const (
	DefaultSpringFrequency = 6.0
	DefaultSpringDamping   = 0.5
)

// EasingByName resolves an easing from its configuration name: linear, ease,
// ease-in, ease-out, ease-in-out, spring, spring(frequency,damping) or
// cubic-bezier(x1,y1,x2,y2). An empty name is linear.
func EasingByName(name string) (Easing, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "linear":
		return Linear, nil
	case "ease":
		return Ease, nil
	case "ease-in":
		return EaseIn, nil
	case "ease-out":
		return EaseOut, nil
	case "ease-in-out":
		return EaseInOut, nil
	case "spring":
		return Spring(DefaultSpringFrequency, DefaultSpringDamping), nil
	}

	if args, ok := callArgs(n, "cubic-bezier"); ok {
		p, err := parseArgs(args, 4)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownEasing, name, err)
		}
		return CubicBezier(p[0], p[1], p[2], p[3]), nil
	}
	if args, ok := callArgs(n, "spring"); ok {
		p, err := parseArgs(args, 2)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownEasing, name, err)
		}
		return Spring(p[0], p[1]), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownEasing, name)
}

// callArgs extracts the argument list from "fn(a,b,...)".
func callArgs(s, fn string) (string, bool) {
	if !strings.HasPrefix(s, fn+"(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[len(fn)+1 : len(s)-1], true
}

func parseArgs(s string, want int) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d arguments, got %d", want, len(fields))
	}
	out := make([]float64, want)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
