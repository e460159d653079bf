package transit

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Value is the set of types a Controller can animate. Numbers interpolate
// linearly. Strings interpolate as colours (hex or named) or as numeric
// templates such as "10px" or "rotate(45deg)".
type Value interface {
	float64 | string
}

// lerpFunc maps driver progress onto a value between two endpoints.
type lerpFunc[T Value] func(p float64) T

// newLerp resolves the interpolation for a from→to pair. String pairs whose
// forms disagree are rejected with a *MixedValueTypeError.
func newLerp[T Value](from, to T) (lerpFunc[T], error) {
	switch f := any(from).(type) {
	case float64:
		t := any(to).(float64)
		return func(p float64) T {
			return any(LerpFloat64(f, t, p)).(T)
		}, nil
	case string:
		fn, err := lerpString(f, any(to).(string))
		if err != nil {
			return nil, err
		}
		return func(p float64) T {
			return any(fn(p)).(T)
		}, nil
	}
	return func(float64) T { return to }, nil
}

// constantLerp always yields v.
func constantLerp[T Value](v T) lerpFunc[T] {
	return func(float64) T { return v }
}

// LerpFloat64 linearly interpolates between two float64 values. Progress
// outside [0, 1] extrapolates.
func LerpFloat64(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpColor blends two colours in RGB space and returns the result as a
// lowercase #rrggbb string.
func LerpColor(a, b colorful.Color, t float64) string {
	return a.BlendRgb(b, t).Clamped().Hex()
}

func lerpString(from, to string) (func(float64) string, error) {
	if from == to {
		return func(float64) string { return to }, nil
	}

	if a, ok := ParseColor(from); ok {
		b, ok := ParseColor(to)
		if !ok {
			return nil, &MixedValueTypeError{From: from, To: to}
		}
		return func(p float64) string { return LerpColor(a, b, p) }, nil
	}

	a, ok := parseTemplate(from)
	if !ok {
		return nil, &MixedValueTypeError{From: from, To: to}
	}
	b, ok := parseTemplate(to)
	if !ok || !a.compatible(b) {
		return nil, &MixedValueTypeError{From: from, To: to}
	}
	return func(p float64) string { return a.lerp(b, p) }, nil
}

// ParseColor parses a #rgb or #rrggbb hex string or an SVG colour name.
func ParseColor(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, false
		}
		return c, true
	}
	rgba, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return colorful.Color{}, false
	}
	c, _ := colorful.MakeColor(rgba)
	return c, true
}

var numberPattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// template is a string split around its numbers: "rotate(45deg)" has
// parts ["rotate(", "deg)"] and numbers [45].
type template struct {
	parts   []string
	numbers []float64
}

func parseTemplate(s string) (template, bool) {
	idx := numberPattern.FindAllStringIndex(s, -1)
	if len(idx) == 0 {
		return template{}, false
	}

	tpl := template{
		parts:   make([]string, 0, len(idx)+1),
		numbers: make([]float64, 0, len(idx)),
	}
	last := 0
	for _, loc := range idx {
		n, err := strconv.ParseFloat(s[loc[0]:loc[1]], 64)
		if err != nil {
			return template{}, false
		}
		tpl.parts = append(tpl.parts, s[last:loc[0]])
		tpl.numbers = append(tpl.numbers, n)
		last = loc[1]
	}
	tpl.parts = append(tpl.parts, s[last:])
	return tpl, true
}

func (t template) compatible(o template) bool {
	if len(t.numbers) != len(o.numbers) {
		return false
	}
	for i := range t.parts {
		if t.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}

func (t template) lerp(o template, p float64) string {
	var b strings.Builder
	for i, n := range t.numbers {
		b.WriteString(t.parts[i])
		v := math.Round(LerpFloat64(n, o.numbers[i], p)*1e6) / 1e6
		if v == 0 {
			v = 0 // no "-0"
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteString(t.parts[len(t.parts)-1])
	return b.String()
}
