package synth

import (
	"math"
	"strings"

	"github.com/vsariola/partials"
)

// shapeRules maps instrument ids or categories to the idealized shape drawn
// for them. Anything not listed is drawn as a sawtooth.
var shapeRules = map[string]partials.Shape{
	"flute":    partials.ShapeSine,
	"harp":     partials.ShapeSine,
	"clarinet": partials.ShapeSquare,
}

// ClassifyShape returns the idealized waveform for an instrument id or
// category name. Matching is case-insensitive.
func ClassifyShape(idOrCategory string) partials.Shape {
	if s, ok := shapeRules[strings.ToLower(strings.TrimSpace(idOrCategory))]; ok {
		return s
	}
	return partials.ShapeSawtooth
}

// ShapeOf returns the shape explicitly set on the profile, or classifies it
// by name and then by category. Only the simplified waveform view uses it;
// synthesis always uses the harmonics.
func ShapeOf(profile partials.InstrumentProfile) partials.Shape {
	if profile.Shape != partials.ShapeAdditive {
		return profile.Shape
	}
	if s, ok := shapeRules[strings.ToLower(profile.Name)]; ok {
		return s
	}
	return ClassifyShape(profile.Category)
}

// ShapeValue is the unit waveform of shape at phase, given in cycles. The
// additive shape has no idealized form and is drawn as a sine.
func ShapeValue(shape partials.Shape, phase float64) float64 {
	p := phase - math.Floor(phase)
	switch shape {
	case partials.ShapeSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case partials.ShapeSawtooth:
		return 2*p - 1
	case partials.ShapeTriangle:
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
