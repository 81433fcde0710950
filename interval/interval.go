// Package interval relates two frequencies: it matches their ratio to a
// just-intonation table and classifies how consonant they sound together.
package interval

import (
	"fmt"
	"math"

	"github.com/vsariola/partials"
)

type (
	// JustRatio is an entry of the just-intonation table.
	JustRatio struct {
		Num, Den int
		Name     string
	}

	// Consonance is the two-way classification of an interval.
	Consonance int

	// Result is the analysis of a pair of notes. Ratio is freqB / freqA as
	// played; Nearest, Label, Consonance and Description are computed from
	// the folded ratio and do not depend on the order of the notes.
	Result struct {
		Ratio       float64
		Nearest     JustRatio
		Label       string
		Consonance  Consonance
		Description string
	}

	band struct {
		ratio float64
		text  string
	}
)

const (
	Dissonant Consonance = iota
	Consonant
)

// Tolerance is the half-width of the consonance and description windows.
const Tolerance = 0.05

// DefaultDescription is used when the ratio is in none of the description
// bands.
const DefaultDescription = "Complex interference pattern"

var justRatios = [...]JustRatio{
	{1, 1, "Unison"},
	{16, 15, "Minor 2nd"},
	{9, 8, "Major 2nd"},
	{6, 5, "Minor 3rd"},
	{5, 4, "Major 3rd"},
	{4, 3, "Perfect 4th"},
	{45, 32, "Tritone"},
	{3, 2, "Perfect 5th"},
	{8, 5, "Minor 6th"},
	{5, 3, "Major 6th"},
	{16, 9, "Minor 7th"},
	{15, 8, "Major 7th"},
	{2, 1, "Octave"},
}

// consonantRatios is not derived from justRatios: the two lists
// overlap but have their own tolerances, and can disagree near the edges.
var consonantRatios = [...]float64{1, 2, 3.0 / 2, 4.0 / 3, 5.0 / 4, 5.0 / 3, 6.0 / 5}

var descriptions = [...]band{
	{1, "Identical frequencies: the waves reinforce each other completely"},
	{2, "Octave: every other peak of the higher note lines up"},
	{3.0 / 2, "Perfect fifth: the waves realign every two cycles"},
	{4.0 / 3, "Perfect fourth: the waves realign every three cycles"},
	{5.0 / 4, "Major third: a smooth, slowly repeating pattern"},
	{6.0 / 5, "Minor third: a smooth pattern with a darker color"},
}

func (c Consonance) String() string {
	if c == Consonant {
		return "consonant"
	}
	return "dissonant"
}

func (c Consonance) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Ratio is the value of the entry as a float.
func (j JustRatio) Ratio() float64 { return float64(j.Num) / float64(j.Den) }

// Label reads like "3:2 (Perfect 5th)".
func (j JustRatio) Label() string { return fmt.Sprintf("%d:%d (%s)", j.Num, j.Den, j.Name) }

// JustRatios returns a copy of the just-intonation table, unison to octave.
func JustRatios() []JustRatio {
	ret := justRatios
	return ret[:]
}

// Analyze computes the relationship of two frequencies in Hz.
func Analyze(freqA, freqB float64) (Result, error) {
	if err := partials.CheckFrequency(freqA); err != nil {
		return Result{}, err
	}
	if err := partials.CheckFrequency(freqB); err != nil {
		return Result{}, err
	}
	ratio := freqB / freqA
	nearest := Nearest(ratio)
	return Result{
		Ratio:       ratio,
		Nearest:     nearest,
		Label:       nearest.Label(),
		Consonance:  Classify(ratio),
		Description: Describe(ratio),
	}, nil
}

// Fold inverts ratios below 1, so that an interval and its inversion are
// treated alike.
func Fold(ratio float64) float64 {
	if ratio < 1 {
		return 1 / ratio
	}
	return ratio
}

// tieEpsilon absorbs the rounding of a ratio computed halfway between two
// entries
const tieEpsilon = 1e-12

// Nearest returns the table entry closest to the folded ratio.
func Nearest(ratio float64) JustRatio { return NearestIn(justRatios[:], Fold(ratio)) }

// NearestIn scans table in order and returns the entry minimizing the
// distance to ratio. Distances within tieEpsilon of each other are a tie,
// which the earlier entry wins. The ratio is used as is, without folding.
func NearestIn(table []JustRatio, ratio float64) JustRatio {
	if len(table) == 0 {
		return JustRatio{}
	}
	best, bestDist := table[0], math.Abs(ratio-table[0].Ratio())
	for _, e := range table[1:] {
		if d := math.Abs(ratio - e.Ratio()); d < bestDist-tieEpsilon {
			best, bestDist = e, d
		}
	}
	return best
}

// Classify reports whether the folded ratio is within Tolerance of one of
// the simple consonant ratios.
func Classify(ratio float64) Consonance {
	r := Fold(ratio)
	for _, c := range consonantRatios {
		if math.Abs(r-c) < Tolerance {
			return Consonant
		}
	}
	return Dissonant
}

// Describe returns a human readable description of the folded ratio. The
// bands are checked in order.
func Describe(ratio float64) string {
	r := Fold(ratio)
	for _, b := range descriptions {
		if math.Abs(r-b.ratio) < Tolerance {
			return b.text
		}
	}
	return DefaultDescription
}

// Cents is the size of the ratio in cents.
func Cents(ratio float64) float64 { return 1200 * math.Log2(ratio) }

// Deviation is how far, in cents, the folded ratio is from the nearest table
// entry. Positive means sharp.
func (r *Result) Deviation() float64 {
	return Cents(Fold(r.Ratio)) - Cents(r.Nearest.Ratio())
}
