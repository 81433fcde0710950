package player_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vsariola/partials"
	"github.com/vsariola/partials/player"
	"github.com/vsariola/partials/profiles"
	"github.com/vsariola/partials/visual"
)

func newEngine() *player.Engine {
	prefs := partials.DefaultPreferences()
	prefs.SampleRate = sampleRate
	prefs.NoteDuration = 0.1
	prefs.NoteSpacing = 0.2
	prefs.SampleCount = 64
	return player.NewEngine(profiles.Default(), player.NewSession(sampleRate), prefs)
}

func TestPlayFluteReadout(t *testing.T) {
	e := newEngine()
	played, err := e.PlayNote("A4", 440, player.Selection{Category: "woodwinds", Instrument: "flute"})
	if err != nil {
		t.Fatalf("PlayNote failed: %v", err)
	}
	if played.Spec.Instrument != "flute" || played.Spec.Held || played.ID == 0 {
		t.Errorf("unexpected played note %+v", played)
	}
	r := played.Readout
	if math.Abs(r.Wavelength-0.7795) > 1e-4 {
		t.Errorf("wavelength = %v, want 0.7795", r.Wavelength)
	}
	if math.Abs(r.Period-2.2727) > 1e-4 {
		t.Errorf("period = %v, want 2.2727", r.Period)
	}
	if r.HarmonicsCount != 3 {
		t.Errorf("harmonics count = %v, want 3", r.HarmonicsCount)
	}
	if e.Session().Active() != 1 {
		t.Errorf("PlayNote did not start a voice")
	}
	if m := e.Melody(); len(m) != 1 || m[0].PitchID != "A4" {
		t.Errorf("melody = %+v", m)
	}
}

func TestPlayNoteErrors(t *testing.T) {
	e := newEngine()
	if _, err := e.PlayNote("X", 440, player.Selection{Category: "brass", Instrument: "kazoo"}); !errors.Is(err, partials.ErrNotFound) {
		t.Errorf("unknown instrument error = %v", err)
	}
	if _, err := e.PlayNote("X", 0, player.Selection{}); !errors.Is(err, partials.ErrInvalidFrequency) {
		t.Errorf("zero frequency error = %v", err)
	}
	if len(e.Melody()) != 0 || !e.Session().Idle() {
		t.Errorf("failed notes should not be played or remembered")
	}
}

func TestResolve(t *testing.T) {
	e := newEngine()
	cases := []struct {
		sel  player.Selection
		want string
	}{
		{player.Selection{}, "flute"},
		{player.Selection{Category: "brass"}, "trumpet"},
		{player.Selection{Instrument: "cello"}, "cello"},
		{player.Selection{Category: "strings", Instrument: "harp"}, "harp"},
	}
	for _, c := range cases {
		p, err := e.Resolve(c.sel)
		if err != nil || p.Name != c.want {
			t.Errorf("Resolve(%+v) = %v, %v; want %v", c.sel, p.Name, err, c.want)
		}
	}
}

func TestAnalyzeCurrentPair(t *testing.T) {
	e := newEngine()
	if _, err := e.AnalyzeCurrentPair(); !errors.Is(err, partials.ErrEmptyInput) {
		t.Errorf("no notes error = %v", err)
	}
	e.PlayNote("C4", 261.63, player.Selection{})
	if _, err := e.AnalyzeCurrentPair(); !errors.Is(err, partials.ErrEmptyInput) {
		t.Errorf("one note error = %v", err)
	}
	e.PlayNote("G4", 392, player.Selection{})
	r, err := e.AnalyzeCurrentPair()
	if err != nil {
		t.Fatalf("AnalyzeCurrentPair failed: %v", err)
	}
	if r.Label != "3:2 (Perfect 5th)" {
		t.Errorf("label = %q", r.Label)
	}
}

func TestVisualizationFallsBackToWaveform(t *testing.T) {
	e := newEngine()
	if _, err := e.Visualization(visual.ModeWaveform); !errors.Is(err, partials.ErrEmptyInput) {
		t.Errorf("no notes error = %v", err)
	}
	e.PlayNote("A4", 440, player.Selection{Instrument: "violin"})
	_, err := e.Visualization(visual.ModeInterference)
	if !errors.Is(err, partials.ErrEmptyInput) {
		t.Fatalf("interference with one note error = %v, want ErrEmptyInput", err)
	}
	s, err := e.Visualization(visual.ModeWaveform)
	if err != nil || len(s.Waveform) != 64 {
		t.Fatalf("waveform = %d points, %v", len(s.Waveform), err)
	}
	bars, _ := e.Visualization(visual.ModeHarmonics)
	if len(bars.Bars) != 6 {
		t.Errorf("violin has %d bars, want 6", len(bars.Bars))
	}
	e.PlayNote("E5", 659.26, player.Selection{Instrument: "clarinet"})
	s, err = e.Visualization(visual.ModeInterference)
	if err != nil || len(s.Interference) != 64 {
		t.Fatalf("interference = %d points, %v", len(s.Interference), err)
	}
	s, err = e.Visualization(visual.ModeShape)
	if err != nil || s.Waveform[8].Y != -visual.WaveformScale {
		t.Fatalf("clarinet shape should be square: %v", err)
	}
}

func TestReplay(t *testing.T) {
	e := newEngine()
	if _, err := e.Replay(0); !errors.Is(err, partials.ErrEmptyInput) {
		t.Errorf("empty replay error = %v", err)
	}
	for _, f := range []float64{261.63, 293.66, 329.63} {
		e.PlayNote("", f, player.Selection{})
	}
	e.StopAll()
	frames, err := e.Replay(0)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	for i := 1; i < len(frames); i++ {
		if frames[i]-frames[i-1] != 200 {
			t.Fatalf("frames = %v, want 200 frames apart", frames)
		}
	}
	if e.Session().Pending() != 2 {
		t.Errorf("Pending() = %v, want 2", e.Session().Pending())
	}
	e.Reset()
	if len(e.Melody()) != 0 || e.Session().Pending() != 0 {
		t.Errorf("Reset left notes behind")
	}
}

func TestSpectrumOfLatestNote(t *testing.T) {
	e := newEngine()
	e.PlayNote("A2", 110, player.Selection{Instrument: "flute"})
	s, err := e.Visualization(visual.ModeSpectrum)
	if err != nil {
		t.Fatalf("Visualization(spectrum) failed: %v", err)
	}
	if len(s.Spectrum) != visual.SpectrumSize/2 || s.Waveform != nil {
		t.Fatalf("got %d spectrum bins", len(s.Spectrum))
	}
	best := s.Spectrum[0]
	for _, p := range s.Spectrum {
		if p.Y > best.Y {
			best = p
		}
	}
	if math.Abs(best.X-110) > 2 {
		t.Errorf("spectrum peaks at %v Hz, want the 110 Hz fundamental", best.X)
	}
}

func TestNoteOffReleasesOneNote(t *testing.T) {
	e := newEngine()
	flute := player.Selection{Instrument: "flute"} // release 0.2 s
	c4, err := e.NoteOn("C4", 261.63, flute)
	if err != nil {
		t.Fatalf("NoteOn failed: %v", err)
	}
	e4, _ := e.NoteOn("E4", 329.63, flute)
	if !c4.Spec.Held || c4.ID == e4.ID {
		t.Fatalf("NoteOn returned %+v and %+v", c4, e4)
	}
	buf := make(partials.AudioBuffer, 1000)
	e.Session().ReadAudio(buf) // well past the note duration
	if e.Session().Active() != 2 {
		t.Fatalf("held notes should keep sounding, %d active", e.Session().Active())
	}
	e.NoteOff(c4.ID)
	e.Session().ReadAudio(buf[:201])
	if e.Session().Active() != 1 {
		t.Fatalf("after NoteOff, %d notes active, want 1", e.Session().Active())
	}
	e.Session().ReadAudio(buf[:100])
	if visual.Extent(mono(buf[:100])) == 0 {
		t.Errorf("the still held note went silent")
	}
	e.NoteOff(e4.ID)
	e.Session().ReadAudio(buf[:201])
	if !e.Session().Idle() {
		t.Errorf("session should be idle after both notes were released")
	}
	if len(e.Melody()) != 2 {
		t.Errorf("held notes should be remembered in the melody")
	}
}

func mono(buf partials.AudioBuffer) []visual.Point {
	ret := make([]visual.Point, len(buf))
	for i, f := range buf {
		ret[i] = visual.Point{X: float64(i), Y: float64(f[0])}
	}
	return ret
}
