// Package visual produces the point data behind the waveform, harmonic bar,
// interference, idealized shape and measured spectrum views. It draws nothing
// itself.
package visual

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/viterin/vek"
	"github.com/vsariola/partials"
	"github.com/vsariola/partials/synth"
)

const (
	// ReferenceFrequency is middle C. Wave densities are relative to it, so a
	// pitch looks equally dense regardless of the instrument.
	ReferenceFrequency = 261.63
	Cycles             = 4  // visual cycles of the reference frequency per trace
	WaveformScale      = 40 // units per unit amplitude
	MaxBars            = 10

	InterferenceCycles    = 6
	InterferenceAmplitude = 40
)

type (
	Point struct {
		X, Y float64
	}

	InterferencePoint struct {
		X, A, B, Sum float64
	}

	Bar struct {
		Harmonic  float64
		Amplitude float64
	}

	// Mode selects one of the views of a note.
	Mode int

	// Samples holds the data of the view selected by Mode; the other fields
	// are nil.
	Samples struct {
		Mode         Mode
		Waveform     []Point             `yaml:",omitempty" json:",omitempty"`
		Bars         []Bar               `yaml:",omitempty" json:",omitempty"`
		Interference []InterferencePoint `yaml:",omitempty" json:",omitempty"`
		Spectrum     []Point             `yaml:",omitempty" json:",omitempty"` // X in Hz, Y in dB
	}
)

const (
	ModeWaveform Mode = iota
	ModeHarmonics
	ModeInterference
	ModeShape
	ModeSpectrum
	NumModes
)

var modeNames = [...]string{"waveform", "harmonics", "interference", "shape", "spectrum"}

func (m Mode) String() string {
	if m < 0 || m >= NumModes {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseMode parses a mode name, case-insensitively.
func ParseMode(name string) (Mode, error) {
	i := slices.Index(modeNames[:], strings.ToLower(name))
	if i < 0 {
		return ModeWaveform, fmt.Errorf("unknown visualization mode %q, expected one of %v", name, strings.Join(modeNames[:], ", "))
	}
	return Mode(i), nil
}

// Waveform samples the sum of the profile's harmonics at freq. The trace has
// exactly sampleCount points and is bounded by the profile's amplitude sum
// times WaveformScale.
func Waveform(freq float64, profile partials.InstrumentProfile, sampleCount int) ([]Point, error) {
	if err := partials.CheckFrequency(freq); err != nil {
		return nil, err
	}
	if sampleCount <= 0 {
		return nil, fmt.Errorf("%w: sample count %d", partials.ErrEmptyInput, sampleCount)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	sum := vek.Zeros(sampleCount)
	wave := make([]float64, sampleCount)
	for i, h := range profile.Harmonics {
		rate := 2 * math.Pi * Cycles * h * freq / ReferenceFrequency / float64(sampleCount)
		for x := range wave {
			wave[x] = math.Sin(rate * float64(x))
		}
		vek.MulNumber_Inplace(wave, profile.Amplitudes[i])
		vek.Add_Inplace(sum, wave)
	}
	vek.MulNumber_Inplace(sum, WaveformScale)
	return toPoints(sum), nil
}

// Harmonics returns a bar per harmonic in ascending harmonic order, at most
// MaxBars of them.
func Harmonics(profile partials.InstrumentProfile) []Bar {
	ret := make([]Bar, len(profile.Harmonics))
	for i, h := range profile.Harmonics {
		ret[i] = Bar{Harmonic: h}
		if i < len(profile.Amplitudes) {
			ret[i].Amplitude = profile.Amplitudes[i]
		}
	}
	slices.SortStableFunc(ret, func(a, b Bar) int {
		switch {
		case a.Harmonic < b.Harmonic:
			return -1
		case a.Harmonic > b.Harmonic:
			return 1
		}
		return 0
	})
	if len(ret) > MaxBars {
		ret = ret[:MaxBars]
	}
	return ret
}

// Interference samples two unit sines, the second at freqB/freqA times the
// rate of the first, and their sum.
func Interference(freqA, freqB float64, sampleCount int) ([]InterferencePoint, error) {
	if err := partials.CheckFrequency(freqA); err != nil {
		return nil, err
	}
	if err := partials.CheckFrequency(freqB); err != nil {
		return nil, err
	}
	if sampleCount <= 0 {
		return nil, fmt.Errorf("%w: sample count %d", partials.ErrEmptyInput, sampleCount)
	}
	ratio := freqB / freqA
	ret := make([]InterferencePoint, sampleCount)
	a := make([]float64, sampleCount)
	b := make([]float64, sampleCount)
	for x := range ret {
		phase := 2 * math.Pi * InterferenceCycles * float64(x) / float64(sampleCount)
		a[x] = math.Sin(phase)
		b[x] = math.Sin(phase * ratio)
	}
	vek.MulNumber_Inplace(a, InterferenceAmplitude)
	vek.MulNumber_Inplace(b, InterferenceAmplitude)
	sum := vek.Add(a, b)
	for x := range ret {
		ret[x] = InterferencePoint{X: float64(x), A: a[x], B: b[x], Sum: sum[x]}
	}
	return ret, nil
}

// Shape samples the idealized waveform of a shape over Cycles cycles.
func Shape(shape partials.Shape, sampleCount int) ([]Point, error) {
	if sampleCount <= 0 {
		return nil, fmt.Errorf("%w: sample count %d", partials.ErrEmptyInput, sampleCount)
	}
	ys := make([]float64, sampleCount)
	for x := range ys {
		ys[x] = synth.ShapeValue(shape, Cycles*float64(x)/float64(sampleCount))
	}
	vek.MulNumber_Inplace(ys, WaveformScale)
	return toPoints(ys), nil
}

// Extent is the largest absolute y of a trace, 0 for an empty one.
func Extent(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Y
	}
	vek.Abs_Inplace(ys)
	return vek.Max(ys)
}

func toPoints(ys []float64) []Point {
	ret := make([]Point, len(ys))
	for x, y := range ys {
		ret[x] = Point{X: float64(x), Y: y}
	}
	return ret
}
