package partials

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ReferencePitch is the frequency of A4, which is MIDI note 69.
const ReferencePitch = 440.0

// KeyboardMap maps the home row of a computer keyboard to one octave of the
// C major scale, starting from middle C.
var KeyboardMap = map[string]string{
	"a": "C4",
	"s": "D4",
	"d": "E4",
	"f": "F4",
	"g": "G4",
	"h": "A4",
	"j": "B4",
	"k": "C5",
}

var pitchRegexp = regexp.MustCompile(`^([A-Ga-g])([#b]?)(-?\d+)$`)

var pitchClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// MIDINote parses a pitch id such as "A4", "C#5" or "Bb3" into a MIDI note
// number. Octaves follow scientific pitch notation, so "C4" is 60.
func MIDINote(pitchID string) (int, error) {
	m := pitchRegexp.FindStringSubmatch(strings.TrimSpace(pitchID))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, pitchID)
	}
	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidPitch, pitchID, err)
	}
	note := (octave+1)*12 + pitchClasses[strings.ToUpper(m[1])[0]]
	switch m[2] {
	case "#":
		note++
	case "b":
		note--
	}
	return note, nil
}

// NoteFrequency returns the 12-tone equal temperament frequency of a MIDI
// note.
func NoteFrequency(note int) float64 {
	return ReferencePitch * math.Pow(2, float64(note-69)/12)
}

// ParsePitch returns the frequency of a pitch id in Hz.
func ParsePitch(pitchID string) (float64, error) {
	note, err := MIDINote(pitchID)
	if err != nil {
		return 0, err
	}
	return NoteFrequency(note), nil
}
