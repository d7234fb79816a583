package gauge

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultDuration is the length of a needle transition.
const DefaultDuration = 300 * time.Millisecond

// Easing maps normalized time in [0, 1] to progress in [0, 1].
type Easing func(t float64) float64

// SineOut decelerates to the target: sin(t*pi/2).
func SineOut(t float64) float64 { return math.Sin(t * math.Pi / 2) }

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// Frame is one sample of a transition.
type Frame struct {
	T         float64 // normalized time in [0, 1]
	Angle     float64 // needle rotation in degrees relative to ZeroNeedleAngle
	Transform string  // SVG rotate(angle,cx,cy) about the pivot
	Value     float64 // interpolated readout value
	Text      string  // formatted readout, e.g. "50.0 %"
	Done      bool    // true once T reaches 1
}

// Transition interpolates the needle and the readout between two values.
//
// A Transition is an immutable value; At may be called any number of times
// in any order. The zero Transition is not usable; create one with
// NewTransition.
type Transition struct {
	// Duration is the wall-clock length used by Animator. It does not
	// affect At, which works on normalized time.
	Duration time.Duration
	// Easing shapes progress. Nil means SineOut.
	Easing Easing

	fromValue, toValue float64
	fromAngle, toAngle float64
	rotate             func(t float64) string
	readout            readout
}

// NewTransition returns a transition of the needle from oldVal to newVal on
// the dial described by cfg, with DefaultDuration and SineOut easing.
//
// Values outside [MinVal, MaxVal] are not clamped; only the needle angle is
// limited to the dial.
func NewTransition(oldVal, newVal float64, cfg Config) (Transition, error) {
	if !finite(oldVal) || !finite(newVal) {
		return Transition{}, ErrNonFinite
	}
	if err := cfg.Validate(); err != nil {
		return Transition{}, err
	}
	scale, err := NewScale(cfg)
	if err != nil {
		return Transition{}, err
	}
	ro, err := newReadout(cfg)
	if err != nil {
		return Transition{}, err
	}

	tr := Transition{
		Duration:  DefaultDuration,
		Easing:    SineOut,
		fromValue: oldVal,
		toValue:   newVal,
		fromAngle: NeedleAngle(scale, cfg, oldVal),
		toAngle:   NeedleAngle(scale, cfg, newVal),
		readout:   ro,
	}
	tr.rotate = rotation(tr.fromAngle, tr.toAngle, cfg.origin())
	return tr, nil
}

// Retarget returns a transition that starts at the live frame f and ends at
// newValue. The needle continues from f.Angle rather than jumping to the
// angle of f.Value, so a superseded transition never snaps. Duration and
// Easing carry over from tr.
func (tr Transition) Retarget(f Frame, newValue float64, cfg Config) (Transition, error) {
	next, err := NewTransition(f.Value, newValue, cfg)
	if err != nil {
		return Transition{}, err
	}
	if finite(f.Angle) {
		next.fromAngle = f.Angle
		next.rotate = rotation(next.fromAngle, next.toAngle, cfg.origin())
	}
	if tr.Duration > 0 {
		next.Duration = tr.Duration
	}
	if tr.Easing != nil {
		next.Easing = tr.Easing
	}
	return next, nil
}

// From returns the starting value.
func (tr Transition) From() float64 { return tr.fromValue }

// To returns the target value.
func (tr Transition) To() float64 { return tr.toValue }

// At returns the frame at normalized time t. t is clamped to [0, 1]; a NaN
// t is treated as 0. At(0) and At(1) hit the endpoints exactly.
func (tr Transition) At(t float64) Frame {
	switch {
	case !(t > 0):
		t = 0
	case t > 1:
		t = 1
	}

	var e float64
	switch t {
	case 0:
		e = 0
	case 1:
		e = 1
	default:
		ease := tr.Easing
		if ease == nil {
			ease = SineOut
		}
		e = ease(t)
	}

	value := lerp(tr.fromValue, tr.toValue, e)
	f := Frame{
		T:     t,
		Angle: lerp(tr.fromAngle, tr.toAngle, e),
		Value: value,
		Text:  tr.readout.format(value),
		Done:  t == 1,
	}
	if tr.rotate != nil {
		f.Transform = tr.rotate(e)
	}
	return f
}

// NeedleAngle returns the needle rotation for v, relative to
// ZeroNeedleAngle. Values past the last tick pin the needle at
// MaxNeedleAngle; values before the first tick rest it at ZeroNeedleAngle.
func NeedleAngle(s Scale, cfg Config, v float64) float64 {
	a := s.At(v) - cfg.ZeroNeedleAngle
	if a+cfg.ZeroNeedleAngle > cfg.MaxTickAngle {
		a = cfg.MaxNeedleAngle - cfg.ZeroNeedleAngle
	}
	if a+cfg.ZeroNeedleAngle < cfg.ZeroTickAngle {
		a = 0
	}
	return a
}

// RotateTransform returns the SVG transform rotating by angle degrees about p.
func RotateTransform(angle float64, p Point) string {
	return "rotate(" + FormatNumber(angle) + "," + FormatNumber(p.X) + "," + FormatNumber(p.Y) + ")"
}

func rotation(from, to float64, pivot Point) func(float64) string {
	return InterpolateString(RotateTransform(from, pivot), RotateTransform(to, pivot))
}

// numberRE matches the decimal numbers InterpolateString blends.
var numberRE = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.?\d+)(?:[eE][-+]?\d+)?`)

// InterpolateString returns an interpolator between two strings with
// embedded numbers. The i-th number of b is blended with the i-th number of
// a; everything else, including numbers of b without a partner in a, is
// taken from b verbatim.
func InterpolateString(a, b string) func(t float64) string {
	type part struct {
		lit      string
		from, to float64
		blend    bool
	}

	from := numberRE.FindAllString(a, -1)
	var parts []part
	last := 0
	for i, loc := range numberRE.FindAllStringIndex(b, -1) {
		if loc[0] > last {
			parts = append(parts, part{lit: b[last:loc[0]]})
		}
		num := b[loc[0]:loc[1]]
		last = loc[1]
		if i >= len(from) || from[i] == num {
			parts = append(parts, part{lit: num})
			continue
		}
		x, errX := strconv.ParseFloat(from[i], 64)
		y, errY := strconv.ParseFloat(num, 64)
		if errX != nil || errY != nil {
			parts = append(parts, part{lit: num})
			continue
		}
		parts = append(parts, part{from: x, to: y, blend: true})
	}
	if last < len(b) {
		parts = append(parts, part{lit: b[last:]})
	}

	return func(t float64) string {
		var sb strings.Builder
		for _, p := range parts {
			if p.blend {
				sb.WriteString(FormatNumber(lerp(p.from, p.to, t)))
			} else {
				sb.WriteString(p.lit)
			}
		}
		return sb.String()
	}
}

// readout formats the units label.
type readout struct {
	digits int
	units  string
	tag    language.Tag
	local  bool
}

func newReadout(cfg Config) (readout, error) {
	ro := readout{digits: cfg.FractionDigits, units: cfg.Units}
	if cfg.Locale != "" {
		tag, err := language.Parse(cfg.Locale)
		if err != nil {
			return readout{}, &FieldError{Field: "locale", Err: ErrInvalidLocale}
		}
		ro.tag, ro.local = tag, true
	}
	return ro, nil
}

func (r readout) format(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	s := toFixed(v, r.digits)
	if r.local {
		// Already rounded; the printer only localizes separators.
		rounded, _ := strconv.ParseFloat(s, 64)
		s = message.NewPrinter(r.tag).Sprint(number.Decimal(rounded, number.Scale(r.digits)))
	}
	return s + " " + r.units
}

// toFixed formats v with digits fraction digits. It rounds the exact binary
// value of v half away from zero, so 2.5 gives "3" but 1.005 (really
// 1.00499...) gives "1.00" with two digits.
func toFixed(v float64, digits int) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	r := new(big.Rat).SetFloat64(math.Abs(v))
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r.Mul(r, new(big.Rat).SetInt(pow))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	s := n.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}
	if v < 0 {
		s = "-" + s
	}
	return s
}

// FormatReadout formats v the way the units label shows it during a
// transition.
func FormatReadout(v float64, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	ro, err := newReadout(cfg)
	if err != nil {
		return "", err
	}
	return ro.format(v), nil
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
