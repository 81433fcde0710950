package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vsariola/partials"
	"github.com/vsariola/partials/beepout"
	"github.com/vsariola/partials/interval"
	"github.com/vsariola/partials/oto"
	"github.com/vsariola/partials/player"
	"github.com/vsariola/partials/profiles"
	"github.com/vsariola/partials/report"
	"github.com/vsariola/partials/version"
	"github.com/vsariola/partials/visual"
)

type (
	noteOutput struct {
		PitchID    string
		Instrument string
		Readout    partials.Readout
		PeakSum    float64
		Clips      bool
	}

	output struct {
		Notes    []noteOutput      `json:",omitempty" yaml:",omitempty"`
		Interval *interval.Result  `json:",omitempty" yaml:",omitempty"`
		Samples  *visual.Samples   `json:",omitempty" yaml:",omitempty"`
		Catalog  []report.Category `json:",omitempty" yaml:",omitempty"`
	}
)

var logger = log.New(os.Stderr, "partials-play: ", 0)

func main() {
	prefs := partials.MakePreferences()
	if prefs.YmlError != nil {
		logger.Printf("ignoring preferences.yml: %v", prefs.YmlError)
	}
	help := flag.Bool("h", false, "Show help.")
	instrument := flag.String("i", "", "Instrument as category/instrument or just instrument. By default, the first instrument of the default category.")
	duration := flag.Float64("d", prefs.NoteDuration, "Note duration in seconds, before the release tail.")
	spacing := flag.Float64("s", prefs.NoteSpacing, "Time between the starts of consecutive notes, in seconds.")
	play := flag.Bool("p", false, "Play the notes (default behaviour when no file output is defined).")
	rawOut := flag.Bool("r", false, "Output the rendered notes as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered notes as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	fileName := flag.String("f", "partials", "Base name of the .wav and .raw files.")
	analyze := flag.Bool("a", false, "Analyze the interval between the last two notes.")
	viz := flag.String("viz", "", "Print visualization samples of the last note: waveform, harmonics, interference, shape or spectrum.")
	format := flag.String("o", "text", "Output format of readouts: text, yaml or json.")
	backend := flag.String("backend", prefs.Backend, "Audio backend: oto, beep or portaudio (needs -tags portaudio).")
	list := flag.Bool("l", false, "List the available instruments.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if (flag.NArg() == 0 && !*list) || *help {
		flag.Usage()
		os.Exit(0)
	}
	store, err := profiles.LoadUser()
	if err != nil {
		logger.Printf("%v", err)
	}
	reporter, err := report.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	out := output{}
	emit := func() {
		if err := write(os.Stdout, *format, out, reporter); err != nil {
			fmt.Fprintf(os.Stderr, "could not write output: %v\n", err)
			os.Exit(1)
		}
	}
	if *list {
		out.Catalog, err = report.Categories(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not list instruments: %v\n", err)
			os.Exit(1)
		}
		emit()
		os.Exit(0)
	}
	prefs.NoteDuration = *duration
	prefs.NoteSpacing = *spacing
	if err := prefs.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(1)
	}
	sel := parseSelection(*instrument)
	session := player.NewSession(prefs.SampleRate)
	engine := player.NewEngine(store, session, prefs)
	profile, err := engine.Resolve(sel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	// notes are started on the audio clock, spacing apart, while the session
	// is rendered into one buffer
	var buffer partials.AudioBuffer
	step := int(math.Round(prefs.NoteSpacing * float64(prefs.SampleRate)))
	for i, arg := range flag.Args() {
		pitchID, freq, err := parseNote(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		played, err := engine.PlayNote(pitchID, freq, sel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not play %v: %v\n", arg, err)
			os.Exit(1)
		}
		spec, readout := played.Spec, played.Readout
		if spec.Clips() {
			logger.Printf("%v on %v may clip, peak %.2f", arg, profile.Name, spec.PeakSum())
		}
		out.Notes = append(out.Notes, noteOutput{PitchID: pitchID, Instrument: profile.Name, Readout: readout, PeakSum: spec.PeakSum(), Clips: spec.Clips()})
		if *format == "text" {
			if err := reporter.Note(os.Stdout, report.NewNote(pitchID, spec, profile, readout)); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		}
		if i < flag.NArg()-1 {
			chunk := make(partials.AudioBuffer, step)
			n, _ := session.ReadAudio(chunk)
			buffer = append(buffer, chunk[:n]...)
		}
	}
	session.CloseWhenIdle()
	maxTail := int(math.Ceil((prefs.NoteDuration+profile.Envelope.Release+1)*float64(prefs.SampleRate))) * 2
	tail, err := partials.ReadAll(session, maxTail)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not render notes: %v\n", err)
		os.Exit(1)
	}
	buffer = append(buffer, tail...)
	if p := buffer.Peak(); p > 1 {
		logger.Printf("rendered audio peaks at %.2f and clips", p)
	}
	retval := 0
	if *analyze {
		res, err := engine.AnalyzeCurrentPair()
		if err != nil {
			logger.Printf("cannot analyze: %v", err)
		} else {
			out.Interval = &res
			if *format == "text" {
				a, b := lastPair(engine)
				if err := reporter.Interval(os.Stdout, report.NewInterval(a, b, res)); err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
				}
			}
		}
	}
	if *viz != "" {
		mode, err := visual.ParseMode(*viz)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		samples, err := engine.Visualization(mode)
		if errors.Is(err, partials.ErrEmptyInput) && mode == visual.ModeInterference {
			logger.Printf("interference needs two notes, showing the waveform instead")
			samples, err = engine.Visualization(visual.ModeWaveform)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not sample %v: %v\n", mode, err)
			retval = 1
		} else {
			out.Samples = &samples
			if *format == "text" {
				if err := reporter.Samples(os.Stdout, samples); err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
				}
			}
		}
	}
	if *format != "text" {
		emit()
	}
	if *rawOut {
		if err := writeFile(*fileName+".raw", func() ([]byte, error) { return buffer.Raw(*pcm) }); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retval = 1
		}
	}
	if *wavOut {
		if err := writeFile(*fileName+".wav", func() ([]byte, error) { return buffer.Wav(*pcm, prefs.SampleRate) }); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retval = 1
		}
	}
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the notes
	}
	if *play {
		audioContext, err := openContext(*backend, prefs.SampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire %v AudioContext: %v\n", *backend, err)
			os.Exit(1)
		}
		playWaiter := audioContext.Play(buffer.Source())
		playWaiter.Wait()
		playWaiter.Close()
		audioContext.Close()
	}
	os.Exit(retval)
}

func openContext(backend string, sampleRate int) (partials.AudioContext, error) {
	switch strings.ToLower(backend) {
	case "oto", "":
		c, err := oto.NewContext(sampleRate)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "beep":
		c, err := beepout.NewContext(sampleRate)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "portaudio":
		return newPortAudioContext(sampleRate)
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

// parseSelection parses "category/instrument" or "instrument"
func parseSelection(s string) player.Selection {
	if c, i, ok := strings.Cut(s, "/"); ok {
		return player.Selection{Category: c, Instrument: i}
	}
	return player.Selection{Instrument: s}
}

// parseNote accepts pitch ids like A4, the home row keys a..k and
// frequencies in Hz
func parseNote(arg string) (string, float64, error) {
	if id, ok := partials.KeyboardMap[strings.ToLower(arg)]; ok {
		arg = id
	}
	if f, err := partials.ParsePitch(arg); err == nil {
		return arg, f, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(arg), "hz"), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q is neither a pitch id nor a frequency", partials.ErrInvalidPitch, arg)
	}
	return "", f, nil
}

func lastPair(e *player.Engine) (float64, float64) {
	m := e.Melody()
	return m[len(m)-2].Frequency, m[len(m)-1].Frequency
}

func write(w io.Writer, format string, out output, reporter *report.Reporter) error {
	switch format {
	case "yaml":
		b, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "json":
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "text":
		if out.Catalog != nil {
			return reporter.Instruments(w, out.Catalog)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeFile(name string, contents func() ([]byte, error)) error {
	b, err := contents()
	if err != nil {
		return fmt.Errorf("could not generate %v: %v", name, err)
	}
	if err := os.WriteFile(name, b, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", name, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Partials command line utility for playing and analyzing additively synthesized notes.\nUsage: %s [flags] [note ...]\nNotes are pitch ids (A4, C#5, Bb3), keys a..k (C4..C5) or frequencies in Hz.\n", os.Args[0])
	flag.PrintDefaults()
}
