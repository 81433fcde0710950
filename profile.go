package partials

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

type (
	// InstrumentProfile describes how an instrument is rendered additively: a
	// list of harmonic multipliers of the fundamental, a relative amplitude for
	// each of them and one ADSR envelope shared by all harmonics. Profiles are
	// values; use Clone before modifying the slices of a profile obtained from
	// a store.
	InstrumentProfile struct {
		Name     string
		Category string `yaml:",omitempty"`

		// Harmonics are positive multipliers of the fundamental frequency.
		// Harmonic 1.0 is the fundamental itself and is always present.
		Harmonics []float64 `yaml:",flow"`

		// Amplitudes are relative weights in [0, 1], index-aligned with
		// Harmonics. They are scaled independently and do not need to sum to
		// one.
		Amplitudes []float64 `yaml:",flow"`

		Envelope Envelope `yaml:",flow"`

		// Color is an opaque display token, meaningless to the engine.
		Color string `yaml:",omitempty"`

		// Shape is the idealized waveform drawn in the simplified waveform
		// view. ShapeAdditive means no explicit shape was given.
		Shape Shape `yaml:",omitempty"`
	}

	// Envelope is an attack-decay-sustain-release curve. Attack, Decay and
	// Release are durations in seconds, Sustain is a level in [0, 1].
	Envelope struct {
		Attack  float64
		Decay   float64
		Sustain float64
		Release float64
	}

	// Shape is a canonical single-oscillator waveform, used only for
	// visualization.
	Shape int
)

const (
	ShapeAdditive Shape = iota
	ShapeSine
	ShapeSquare
	ShapeSawtooth
	ShapeTriangle
	NumShapes
)

var shapeNames = [...]string{"additive", "sine", "square", "sawtooth", "triangle"}

func (s Shape) String() string {
	if s < 0 || s >= NumShapes {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape parses a lowercase shape name, as returned by Shape.String.
func ParseShape(name string) (Shape, error) {
	i := slices.Index(shapeNames[:], strings.ToLower(strings.TrimSpace(name)))
	if i < 0 {
		return ShapeAdditive, fmt.Errorf("unknown shape %q", name)
	}
	return Shape(i), nil
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Shape) UnmarshalText(text []byte) error {
	v, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Shape) MarshalYAML() (interface{}, error) { return s.String(), nil }

func (s *Shape) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(name))
}

// Validate checks the structural invariants of a profile. The returned error
// wraps ErrInvalidProfile.
func (p *InstrumentProfile) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidProfile, p.Name, fmt.Sprintf(format, args...))
	}
	if p.Name == "" {
		return fail("name is empty")
	}
	if len(p.Harmonics) == 0 {
		return fail("no harmonics")
	}
	if len(p.Harmonics) != len(p.Amplitudes) {
		return fail("%d harmonics but %d amplitudes", len(p.Harmonics), len(p.Amplitudes))
	}
	fundamental := false
	for i, h := range p.Harmonics {
		if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
			return fail("harmonic %d is %v, should be > 0", i, h)
		}
		if h == 1 {
			fundamental = true
		}
	}
	if !fundamental {
		return fail("fundamental (harmonic 1.0) missing")
	}
	for i, a := range p.Amplitudes {
		if math.IsNaN(a) || a < 0 || a > 1 {
			return fail("amplitude %d is %v, should be in [0, 1]", i, a)
		}
	}
	e := p.Envelope
	for _, d := range []float64{e.Attack, e.Decay, e.Release} {
		if err := CheckDuration(d); err != nil {
			return fail("envelope: %v", err)
		}
	}
	if math.IsNaN(e.Sustain) || e.Sustain < 0 || e.Sustain > 1 {
		return fail("sustain level %v outside [0, 1]", e.Sustain)
	}
	if p.Shape < 0 || p.Shape >= NumShapes {
		return fail("unknown shape %d", int(p.Shape))
	}
	return nil
}

// Clone returns a deep copy of the profile.
func (p *InstrumentProfile) Clone() InstrumentProfile {
	ret := *p
	ret.Harmonics = slices.Clone(p.Harmonics)
	ret.Amplitudes = slices.Clone(p.Amplitudes)
	return ret
}

// HarmonicsCount is the number of harmonics in the profile.
func (p *InstrumentProfile) HarmonicsCount() int { return len(p.Harmonics) }

// AmplitudeSum is the plain, unnormalized sum of the amplitudes, i.e. the
// largest possible peak of the summed harmonics.
func (p *InstrumentProfile) AmplitudeSum() float64 {
	var sum float64
	for _, a := range p.Amplitudes {
		sum += a
	}
	return sum
}
