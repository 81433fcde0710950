package partials

import (
	"fmt"
	"slices"
	"time"
)

type (
	// Note is a played event. PitchID is only a label, e.g. "A4".
	Note struct {
		PitchID   string
		Frequency float64
		Timestamp time.Time
	}

	// MelodySequence is the ordered, append-only list of notes played in a
	// session. It has no size limit and is emptied only by Reset. The zero
	// value is an empty sequence.
	MelodySequence struct {
		notes []Note
	}
)

func (m *MelodySequence) Append(n Note) { m.notes = append(m.notes, n) }

func (m *MelodySequence) Len() int { return len(m.notes) }

// Notes returns a copy of the notes, oldest first.
func (m *MelodySequence) Notes() []Note { return slices.Clone(m.notes) }

// Latest returns the most recently appended note.
func (m *MelodySequence) Latest() (Note, bool) {
	if len(m.notes) == 0 {
		return Note{}, false
	}
	return m.notes[len(m.notes)-1], true
}

// Previous returns the second most recently appended note.
func (m *MelodySequence) Previous() (Note, bool) {
	if len(m.notes) < 2 {
		return Note{}, false
	}
	return m.notes[len(m.notes)-2], true
}

// LastPair returns the frequencies of the second-most-recent and the most
// recent note, in that order.
func (m *MelodySequence) LastPair() (prev, latest float64, err error) {
	p, ok := m.Previous()
	if !ok {
		return 0, 0, fmt.Errorf("%w: need 2, have %d", ErrEmptyInput, len(m.notes))
	}
	l, _ := m.Latest()
	return p.Frequency, l.Frequency, nil
}

func (m *MelodySequence) Reset() { m.notes = m.notes[:0] }
