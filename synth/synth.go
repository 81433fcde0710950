// Package synth turns an instrument profile and a fundamental frequency into
// an additive render specification, and renders it into audio with ADSR
// gated voices.
package synth

import (
	"fmt"

	"github.com/vsariola/partials"
)

// GlobalGain scales every harmonic's amplitude to its oscillator peak. The
// amplitudes themselves are not normalized, so profiles with many strong
// harmonics can sum above 1 and clip at the output.
const GlobalGain = 0.3

type (
	// OscillatorSpec is one sine oscillator of an additive voice.
	OscillatorSpec struct {
		Harmonic  float64 // multiplier of the fundamental
		Frequency float64 // Hz
		Peak      float64 // amplitude * GlobalGain
	}

	// RenderSpec describes a note: one oscillator per harmonic, all gated by
	// the same envelope and started and stopped together. Duration is the
	// gate time in seconds; the release tail sounds after it. A Held note
	// ignores Duration and sounds until its voice is released.
	RenderSpec struct {
		Instrument  string
		Fundamental float64
		Oscillators []OscillatorSpec
		Envelope    partials.Envelope
		Duration    float64
		Held        bool `yaml:",omitempty" json:",omitempty"`
	}
)

// Synthesize returns the render specification of a note. Each call is
// independent; nothing is remembered between calls.
func Synthesize(fundamentalHz float64, profile partials.InstrumentProfile, durationSeconds float64) (RenderSpec, error) {
	if err := partials.CheckFrequency(fundamentalHz); err != nil {
		return RenderSpec{}, err
	}
	if err := partials.CheckDuration(durationSeconds); err != nil {
		return RenderSpec{}, err
	}
	if err := profile.Validate(); err != nil {
		return RenderSpec{}, fmt.Errorf("cannot synthesize: %w", err)
	}
	ret := RenderSpec{
		Instrument:  profile.Name,
		Fundamental: fundamentalHz,
		Oscillators: make([]OscillatorSpec, len(profile.Harmonics)),
		Envelope:    profile.Envelope,
		Duration:    durationSeconds,
	}
	for i, h := range profile.Harmonics {
		ret.Oscillators[i] = OscillatorSpec{
			Harmonic:  h,
			Frequency: fundamentalHz * h,
			Peak:      profile.Amplitudes[i] * GlobalGain,
		}
	}
	return ret, nil
}

// PeakSum is the largest value the summed oscillators can reach.
func (s *RenderSpec) PeakSum() float64 {
	var sum float64
	for _, o := range s.Oscillators {
		sum += o.Peak
	}
	return sum
}

// Clips reports whether the note can exceed the [-1, 1] output range.
func (s *RenderSpec) Clips() bool { return s.PeakSum() > 1 }

// TotalDuration is the gate time plus the release tail, in seconds.
func (s *RenderSpec) TotalDuration() float64 { return s.Duration + s.Envelope.Release }
