package synth_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/vsariola/partials"
	"github.com/vsariola/partials/profiles"
	"github.com/vsariola/partials/synth"
)

const sampleRate = 1000

var testProfile = partials.InstrumentProfile{
	Name:       "test",
	Harmonics:  []float64{1, 2},
	Amplitudes: []float64{1, 0.5},
	Envelope:   partials.Envelope{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.01},
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSynthesizeFlute(t *testing.T) {
	flute, err := profiles.Default().Profile("woodwinds", "flute")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	spec, err := synth.Synthesize(440, flute, 0.5)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	wantFreq := []float64{440, 880, 1320}
	wantPeak := []float64{0.3, 0.06, 0.015}
	if len(spec.Oscillators) != 3 {
		t.Fatalf("got %d oscillators, want 3", len(spec.Oscillators))
	}
	for i, o := range spec.Oscillators {
		if !almostEqual(o.Frequency, wantFreq[i]) {
			t.Errorf("oscillator %d frequency = %v, want %v", i, o.Frequency, wantFreq[i])
		}
		if !almostEqual(o.Peak, wantPeak[i]) {
			t.Errorf("oscillator %d peak = %v, want %v", i, o.Peak, wantPeak[i])
		}
	}
	if spec.Envelope != flute.Envelope || spec.Duration != 0.5 || spec.Instrument != "flute" {
		t.Errorf("unexpected spec %+v", spec)
	}
	if spec.Clips() {
		t.Errorf("flute should not clip, peak sum %v", spec.PeakSum())
	}
}

func TestSynthesizeDoesNotNormalize(t *testing.T) {
	trumpet, _ := profiles.Default().Profile("brass", "trumpet")
	spec, err := synth.Synthesize(220, trumpet, 1)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if want := trumpet.AmplitudeSum() * synth.GlobalGain; !almostEqual(spec.PeakSum(), want) {
		t.Errorf("PeakSum() = %v, want %v", spec.PeakSum(), want)
	}
	if !spec.Clips() {
		t.Errorf("trumpet peak sum %v should clip", spec.PeakSum())
	}
}

func TestSynthesizeRejectsBadInput(t *testing.T) {
	for _, f := range []float64{0, -440, math.NaN(), math.Inf(1)} {
		if _, err := synth.Synthesize(f, testProfile, 1); !errors.Is(err, partials.ErrInvalidFrequency) {
			t.Errorf("Synthesize(%v) error = %v, want ErrInvalidFrequency", f, err)
		}
	}
	if _, err := synth.Synthesize(440, testProfile, -1); !errors.Is(err, partials.ErrInvalidDuration) {
		t.Errorf("negative duration error = %v, want ErrInvalidDuration", err)
	}
	broken := testProfile.Clone()
	broken.Amplitudes = broken.Amplitudes[:1]
	if _, err := synth.Synthesize(440, broken, 1); !errors.Is(err, partials.ErrInvalidProfile) {
		t.Errorf("broken profile error = %v, want ErrInvalidProfile", err)
	}
}

func TestEnvelopeStages(t *testing.T) {
	spec, _ := synth.Synthesize(50, testProfile, 0.1)
	v := synth.NewVoice(spec, sampleRate)
	for iter := 0; iter < 25; iter++ {
		v.Sample()
	}
	if !almostEqual(v.Level(), 0.5) {
		t.Fatalf("level after attack and decay = %v, want sustain 0.5", v.Level())
	}
	// gate is 100 samples, release 10 more
	for iter := 0; iter < 85; iter++ {
		v.Sample()
	}
	if !v.Active() || !v.Releasing() {
		t.Fatalf("voice should still be releasing after 110 samples")
	}
	v.Sample()
	if v.Active() {
		t.Fatalf("voice should have finished after release")
	}
	if s := v.Sample(); s != 0 {
		t.Fatalf("finished voice returned %v, want 0", s)
	}
}

func TestReleaseFromCurrentLevel(t *testing.T) {
	spec, _ := synth.Synthesize(50, testProfile, 10)
	v := synth.NewVoice(spec, sampleRate)
	for iter := 0; iter < 5; iter++ {
		v.Sample()
	}
	v.Release()
	v.Sample()
	if l := v.Level(); l > 0.5 || l <= 0 {
		t.Fatalf("release started at level %v, want the attack level", l)
	}
	for iter := 0; iter < 10; iter++ {
		v.Sample()
	}
	if v.Active() {
		t.Fatalf("voice should be silent one release time after Release")
	}
}

func TestZeroSustainEndsAfterDecay(t *testing.T) {
	p := testProfile.Clone()
	p.Envelope = partials.Envelope{Decay: 0.01}
	spec, _ := synth.Synthesize(50, p, 10)
	v := synth.NewVoice(spec, sampleRate)
	for iter := 0; iter < 11; iter++ {
		v.Sample()
	}
	if v.Active() {
		t.Fatalf("voice with zero sustain should end after decay")
	}
}

func TestKill(t *testing.T) {
	spec, _ := synth.Synthesize(50, testProfile, 10)
	v := synth.NewVoice(spec, sampleRate)
	v.Sample()
	v.Kill()
	if v.Active() {
		t.Fatalf("killed voice is still active")
	}
}

func TestHeldVoiceWaitsForRelease(t *testing.T) {
	spec, _ := synth.Synthesize(50, testProfile, 0.1)
	spec.Held = true
	v := synth.NewVoice(spec, sampleRate)
	for iter := 0; iter < 1000; iter++ {
		v.Sample()
	}
	if !v.Active() || v.Releasing() || !almostEqual(v.Level(), 0.5) {
		t.Fatalf("held voice should sustain at 0.5, level %v releasing %v", v.Level(), v.Releasing())
	}
	v.Release()
	for iter := 0; iter < 11; iter++ {
		v.Sample()
	}
	if v.Active() {
		t.Fatalf("voice still active after its release time")
	}
	if got := len(synth.Render(spec, sampleRate)); got != 111 {
		t.Errorf("held note rendered %d frames, want 111", got)
	}
}

func TestRender(t *testing.T) {
	spec, _ := synth.Synthesize(50, testProfile, 0.1)
	buf := synth.Render(spec, sampleRate)
	if len(buf) != 111 {
		t.Fatalf("rendered %d frames, want 111", len(buf))
	}
	peak := float32(spec.PeakSum())
	for i, f := range buf {
		if f[0] != f[1] {
			t.Fatalf("frame %d is not centered: %v", i, f)
		}
		if f[0] > peak || f[0] < -peak {
			t.Fatalf("frame %d out of bounds: %v", i, f)
		}
	}
	if !reflect.DeepEqual(buf, synth.Render(spec, sampleRate)) {
		t.Fatalf("Render is not deterministic")
	}
}

func TestClassifyShape(t *testing.T) {
	cases := map[string]partials.Shape{
		"flute":    partials.ShapeSine,
		"Harp":     partials.ShapeSine,
		"CLARINET": partials.ShapeSquare,
		"violin":   partials.ShapeSawtooth,
		"brass":    partials.ShapeSawtooth,
		"":         partials.ShapeSawtooth,
	}
	for name, want := range cases {
		if got := synth.ClassifyShape(name); got != want {
			t.Errorf("ClassifyShape(%q) = %v, want %v", name, got, want)
		}
	}
	p := partials.InstrumentProfile{Name: "harp", Category: "strings"}
	if got := synth.ShapeOf(p); got != partials.ShapeSine {
		t.Errorf("ShapeOf(harp) = %v, want sine", got)
	}
	p.Shape = partials.ShapeTriangle
	if got := synth.ShapeOf(p); got != partials.ShapeTriangle {
		t.Errorf("explicit shape was ignored: %v", got)
	}
}

func TestShapeValue(t *testing.T) {
	cases := []struct {
		shape partials.Shape
		phase float64
		want  float64
	}{
		{partials.ShapeSine, 0.25, 1},
		{partials.ShapeAdditive, 0.75, -1},
		{partials.ShapeSquare, 0.25, 1},
		{partials.ShapeSquare, 1.75, -1},
		{partials.ShapeSawtooth, 0, -1},
		{partials.ShapeSawtooth, 0.5, 0},
		{partials.ShapeTriangle, 0, -1},
		{partials.ShapeTriangle, 0.25, 0},
		{partials.ShapeTriangle, 0.5, 1},
	}
	for _, c := range cases {
		if got := synth.ShapeValue(c.shape, c.phase); !almostEqual(got, c.want) {
			t.Errorf("ShapeValue(%v, %v) = %v, want %v", c.shape, c.phase, got, c.want)
		}
	}
}
