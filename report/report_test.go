package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vsariola/partials"
	"github.com/vsariola/partials/interval"
	"github.com/vsariola/partials/profiles"
	"github.com/vsariola/partials/report"
	"github.com/vsariola/partials/synth"
	"github.com/vsariola/partials/visual"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func TestDisplay(t *testing.T) {
	caser := cases.Title(language.English)
	ids := map[string]string{"frenchHorn": "French Horn", "woodwinds": "Woodwinds", "": ""}
	for id, want := range ids {
		if got := report.Display(caser, id); got != want {
			t.Errorf("Display(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestNoteReport(t *testing.T) {
	r, err := report.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	flute, _ := profiles.Default().Profile("woodwinds", "flute")
	spec, _ := synth.Synthesize(440, flute, 0.5)
	readout, _ := partials.NewReadout(440, flute)
	var buf bytes.Buffer
	if err := r.Note(&buf, report.NewNote("A4", spec, flute, readout)); err != nil {
		t.Fatalf("Note failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"A4 on Flute (Woodwinds)", "0.7795 m", "2.2727 ms", strings.Repeat("#", report.BarWidth)} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%v", want, out)
		}
	}
	if strings.Contains(out, "warning") {
		t.Errorf("flute should not warn about clipping:\n%v", out)
	}
	trumpet, _ := profiles.Default().Profile("brass", "trumpet")
	spec, _ = synth.Synthesize(440, trumpet, 0.5)
	buf.Reset()
	r.Note(&buf, report.NewNote("", spec, trumpet, readout))
	if !strings.Contains(buf.String(), "warning: peak 1.56") {
		t.Errorf("trumpet report should warn about clipping:\n%v", buf.String())
	}
}

func TestIntervalReport(t *testing.T) {
	r, _ := report.New()
	res, _ := interval.Analyze(261.63, 392)
	var buf bytes.Buffer
	if err := r.Interval(&buf, report.NewInterval(261.63, 392, res)); err != nil {
		t.Fatalf("Interval failed: %v", err)
	}
	for _, want := range []string{"3:2 (Perfect 5th)", "consonant", "1.4983"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("report is missing %q:\n%v", want, buf.String())
		}
	}
}

func TestInstrumentsReport(t *testing.T) {
	r, _ := report.New()
	cats, err := report.Categories(profiles.Default())
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Instruments(&buf, cats); err != nil {
		t.Fatalf("Instruments failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Brass\n") || !strings.Contains(out, "French Horn, 5 harmonics, sawtooth") {
		t.Errorf("unexpected instrument list:\n%v", out)
	}
}

func TestSamplesReport(t *testing.T) {
	r, _ := report.New()
	var buf bytes.Buffer
	s := visual.Samples{Mode: visual.ModeHarmonics, Bars: []visual.Bar{{Harmonic: 1, Amplitude: 1}, {Harmonic: 2, Amplitude: 0.5}}}
	if err := r.Samples(&buf, s); err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	if got, want := buf.String(), "# harmonics\n1 1\n2 0.5\n"; got != want {
		t.Errorf("Samples = %q, want %q", got, want)
	}
}
