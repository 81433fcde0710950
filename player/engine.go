package player

import (
	"fmt"
	"time"

	"github.com/vsariola/partials"
	"github.com/vsariola/partials/interval"
	"github.com/vsariola/partials/profiles"
	"github.com/vsariola/partials/synth"
	"github.com/vsariola/partials/visual"
)

type (
	// Selection picks an instrument. An empty Instrument means the first
	// instrument of Category; an empty Category means the instrument is
	// looked up in all categories. Both empty selects the first instrument of
	// the preferred default category.
	Selection struct {
		Category   string
		Instrument string
	}

	// Engine is what a user interface calls into: it plays notes on the
	// session, remembers the melody and answers analysis and visualization
	// queries about it. Engine itself is not safe for concurrent use.
	Engine struct {
		store   *profiles.Store
		session *Session
		prefs   partials.Preferences
		melody  partials.MelodySequence
		// profiles[i] is the profile notes[i] of the melody was played with
		profiles []partials.InstrumentProfile
	}
)

func NewEngine(store *profiles.Store, session *Session, prefs partials.Preferences) *Engine {
	return &Engine{store: store, session: session, prefs: prefs}
}

// Session returns the session the engine plays on.
func (e *Engine) Session() *Session { return e.session }

// Resolve returns the profile of a selection.
func (e *Engine) Resolve(sel Selection) (partials.InstrumentProfile, error) {
	switch {
	case sel.Instrument == "" && sel.Category == "":
		return e.store.First(e.prefs.DefaultCategory)
	case sel.Instrument == "":
		return e.store.First(sel.Category)
	case sel.Category == "":
		return e.store.Find(sel.Instrument)
	}
	return e.store.Profile(sel.Category, sel.Instrument)
}

// PlayNote starts a note of the preferred duration, appends it to the melody
// and returns its readout. Nothing is played or remembered on error.
func (e *Engine) PlayNote(pitchID string, freq float64, sel Selection) (Played, error) {
	return e.start(pitchID, freq, sel, false)
}

// NoteOn starts a note that sounds until NoteOff is called with its id, like
// a held key. It is remembered in the melody like PlayNote.
func (e *Engine) NoteOn(pitchID string, freq float64, sel Selection) (Played, error) {
	return e.start(pitchID, freq, sel, true)
}

// NoteOff starts the release tail of a note. The other notes keep sounding.
func (e *Engine) NoteOff(id VoiceID) { e.session.Release(id) }

func (e *Engine) start(pitchID string, freq float64, sel Selection, held bool) (Played, error) {
	profile, err := e.Resolve(sel)
	if err != nil {
		return Played{}, err
	}
	readout, err := partials.NewReadout(freq, profile)
	if err != nil {
		return Played{}, err
	}
	spec, err := synth.Synthesize(freq, profile, e.prefs.NoteDuration)
	if err != nil {
		return Played{}, err
	}
	spec.Held = held
	id := e.session.Play(spec)
	e.melody.Append(partials.Note{PitchID: pitchID, Frequency: freq, Timestamp: time.Now()})
	e.profiles = append(e.profiles, profile)
	return Played{ID: id, Readout: readout, Spec: spec}, nil
}

// StopAll silences every sounding and scheduled note. The melody is kept.
func (e *Engine) StopAll() { e.session.StopAll() }

// AnalyzeCurrentPair analyzes the interval from the second-most-recent to the
// most recent note.
func (e *Engine) AnalyzeCurrentPair() (interval.Result, error) {
	a, b, err := e.melody.LastPair()
	if err != nil {
		return interval.Result{}, err
	}
	return interval.Analyze(a, b)
}

// AnalyzePair analyzes two arbitrary frequencies.
func (e *Engine) AnalyzePair(freqA, freqB float64) (interval.Result, error) {
	return interval.Analyze(freqA, freqB)
}

// Visualization returns the samples of a view of the latest note. The
// interference view needs two notes; with fewer it fails with
// ErrEmptyInput, and callers should show the waveform instead.
func (e *Engine) Visualization(mode visual.Mode) (visual.Samples, error) {
	latest, ok := e.melody.Latest()
	if !ok {
		return visual.Samples{}, fmt.Errorf("%w: no notes played", partials.ErrEmptyInput)
	}
	profile := e.profiles[len(e.profiles)-1]
	ret := visual.Samples{Mode: mode}
	var err error
	switch mode {
	case visual.ModeWaveform:
		ret.Waveform, err = visual.Waveform(latest.Frequency, profile, e.prefs.SampleCount)
	case visual.ModeHarmonics:
		ret.Bars = visual.Harmonics(profile)
	case visual.ModeInterference:
		a, b, perr := e.melody.LastPair()
		if perr != nil {
			return visual.Samples{}, perr
		}
		ret.Interference, err = visual.Interference(a, b, e.prefs.SampleCount)
	case visual.ModeShape:
		ret.Waveform, err = visual.Shape(synth.ShapeOf(profile), e.prefs.SampleCount)
	case visual.ModeSpectrum:
		spec, serr := synth.Synthesize(latest.Frequency, profile, e.prefs.NoteDuration)
		if serr != nil {
			return visual.Samples{}, serr
		}
		buffer := synth.Render(spec, e.prefs.SampleRate)
		ret.Spectrum, err = visual.Spectrum(buffer, e.prefs.SampleRate, visual.SpectrumSize)
	default:
		return visual.Samples{}, fmt.Errorf("unknown visualization mode %v", mode)
	}
	if err != nil {
		return visual.Samples{}, err
	}
	return ret, nil
}

// Replay schedules the whole melody on the audio clock, note i at i*spacing
// seconds from now, each with the instrument it was played with. Spacing 0
// means the preferred spacing.
func (e *Engine) Replay(spacingSeconds float64) ([]int64, error) {
	if e.melody.Len() == 0 {
		return nil, fmt.Errorf("%w: nothing to replay", partials.ErrEmptyInput)
	}
	if spacingSeconds == 0 {
		spacingSeconds = e.prefs.NoteSpacing
	}
	notes := e.melody.Notes()
	specs := make([]synth.RenderSpec, len(notes))
	for i, n := range notes {
		spec, err := synth.Synthesize(n.Frequency, e.profiles[i], e.prefs.NoteDuration)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	return e.session.Schedule(specs, spacingSeconds, e.session.Now())
}

// Reset forgets the melody and silences everything.
func (e *Engine) Reset() {
	e.melody.Reset()
	e.profiles = e.profiles[:0]
	e.session.StopAll()
}

// Melody returns a copy of the notes played so far, oldest first.
func (e *Engine) Melody() []partials.Note { return e.melody.Notes() }
