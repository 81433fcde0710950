// Package report renders human readable readouts of notes, intervals,
// instruments and visualization samples with text/template.
package report

import (
	"embed"
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"
	"unicode"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/partials"
	"github.com/vsariola/partials/interval"
	"github.com/vsariola/partials/profiles"
	"github.com/vsariola/partials/synth"
	"github.com/vsariola/partials/visual"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// BarWidth is the width, in characters, of a full amplitude harmonic bar.
const BarWidth = 40

type (
	Reporter struct {
		Template *template.Template
	}

	Note struct {
		PitchID string
		Profile partials.InstrumentProfile
		Readout partials.Readout
		Bars    []Bar
		PeakSum float64
		Clips   bool
	}

	Bar struct {
		visual.Bar
		Width int
	}

	Interval struct {
		FreqA, FreqB float64
		Result       interval.Result
		Deviation    float64 // cents
	}

	Category struct {
		Name        string
		Instruments []Instrument
	}

	Instrument struct {
		ID        string
		Harmonics int
		Shape     partials.Shape
	}
)

// New parses the built-in templates.
func New() (*Reporter, error) {
	caser := cases.Title(language.English)
	funcs := sprig.TxtFuncMap()
	funcs["display"] = func(id string) string { return Display(caser, id) }
	tmpl, err := template.New("report").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("could not parse report templates: %v", err)
	}
	return &Reporter{Template: tmpl}, nil
}

// Display turns an id like "frenchHorn" into "French Horn".
func Display(caser cases.Caser, id string) string {
	var b strings.Builder
	for i, r := range id {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return caser.String(b.String())
}

// NewNote collects the readout of a played note.
func NewNote(pitchID string, spec synth.RenderSpec, profile partials.InstrumentProfile, readout partials.Readout) Note {
	ret := Note{PitchID: pitchID, Profile: profile, Readout: readout, PeakSum: spec.PeakSum(), Clips: spec.Clips()}
	for _, b := range visual.Harmonics(profile) {
		ret.Bars = append(ret.Bars, Bar{Bar: b, Width: int(math.Round(b.Amplitude * BarWidth))})
	}
	return ret
}

func NewInterval(freqA, freqB float64, result interval.Result) Interval {
	return Interval{FreqA: freqA, FreqB: freqB, Result: result, Deviation: result.Deviation()}
}

// Categories lists the instruments of a store, categories sorted and
// instruments in registration order.
func Categories(store *profiles.Store) ([]Category, error) {
	var ret []Category
	for _, c := range store.Categories() {
		ids, err := store.Instruments(c)
		if err != nil {
			return nil, err
		}
		cat := Category{Name: c}
		for _, id := range ids {
			p, err := store.Profile(c, id)
			if err != nil {
				return nil, err
			}
			cat.Instruments = append(cat.Instruments, Instrument{ID: id, Harmonics: p.HarmonicsCount(), Shape: synth.ShapeOf(p)})
		}
		ret = append(ret, cat)
	}
	return ret, nil
}

func (r *Reporter) Note(w io.Writer, n Note) error { return r.execute(w, "note.tmpl", n) }

func (r *Reporter) Interval(w io.Writer, i Interval) error { return r.execute(w, "interval.tmpl", i) }

func (r *Reporter) Instruments(w io.Writer, c []Category) error {
	return r.execute(w, "instruments.tmpl", c)
}

func (r *Reporter) Samples(w io.Writer, s visual.Samples) error {
	return r.execute(w, "samples.tmpl", s)
}

func (r *Reporter) execute(w io.Writer, name string, data interface{}) error {
	if err := r.Template.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf(`could not execute template "%v": %v`, name, err)
	}
	return nil
}
