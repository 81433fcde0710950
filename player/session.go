// Package player mixes synthesized notes into the shared audio output and
// exposes the engine facade that user interfaces call into.
package player

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/partials"
	"github.com/vsariola/partials/synth"
)

type (
	// VoiceID identifies a voice started by a Session.
	VoiceID int64

	// Session owns the voices of all currently sounding or scheduled notes
	// and mixes them additively, without a limiter. Time is measured with an
	// audio clock that counts the frames read so far. Session is an
	// AudioSource; ReadAudio is typically called from the audio goroutine
	// while the other methods are called from the user interface, so all
	// methods are safe for concurrent use.
	Session struct {
		mutex      sync.Mutex
		sampleRate int
		now        int64 // frames read so far
		nextID     VoiceID
		voices     []*sessionVoice
		closing    bool
		mix, tmp   []float32
	}

	sessionVoice struct {
		id    VoiceID
		start int64 // audio clock frame of the first sample
		voice *synth.Voice
	}
)

// NewSession returns a session with no voices, its clock at frame 0.
func NewSession(sampleRate int) *Session {
	return &Session{sampleRate: sampleRate, nextID: 1}
}

func (s *Session) SampleRate() int { return s.sampleRate }

// Now is the current audio clock, in frames.
func (s *Session) Now() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.now
}

// Play starts a voice for spec at the current audio clock.
func (s *Session) Play(spec synth.RenderSpec) VoiceID {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.add(spec, s.now)
}

// PlayAt starts a voice for spec at the given audio clock frame. Frames in
// the past mean now.
func (s *Session) PlayAt(spec synth.RenderSpec, frame int64) VoiceID {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.add(spec, max(frame, s.now))
}

// Schedule starts spec i at start + i*round(spacing*sampleRate) frames and
// returns the start frames. A start in the past means now. The start frames
// are strictly increasing, so a spacing shorter than one frame is an error.
func (s *Session) Schedule(specs []synth.RenderSpec, spacingSeconds float64, start int64) ([]int64, error) {
	if err := partials.CheckDuration(spacingSeconds); err != nil {
		return nil, fmt.Errorf("invalid spacing: %w", err)
	}
	step := int64(math.Round(spacingSeconds * float64(s.sampleRate)))
	if step <= 0 && len(specs) > 1 {
		return nil, fmt.Errorf("%w: spacing %v s is shorter than one frame", partials.ErrInvalidDuration, spacingSeconds)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	start = max(start, s.now)
	ret := make([]int64, len(specs))
	for i, spec := range specs {
		ret[i] = start + int64(i)*step
		s.add(spec, ret[i])
	}
	return ret, nil
}

// Release starts the release tail of a voice, or cancels it if it has not
// started yet. Unknown ids are ignored.
func (s *Session) Release(id VoiceID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i, v := range s.voices {
		if v.id != id {
			continue
		}
		if v.start > s.now {
			s.voices = slices.Delete(s.voices, i, i+1)
			return
		}
		v.voice.Release()
		return
	}
}

// StopAll releases every sounding voice and cancels the scheduled ones, so
// that nothing is audible after the longest release time from now.
func (s *Session) StopAll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.voices = slices.DeleteFunc(s.voices, func(v *sessionVoice) bool {
		if v.start > s.now {
			return true
		}
		v.voice.Release()
		return false
	})
}

// Active is the number of started voices that are still sounding.
func (s *Session) Active() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ret := 0
	for _, v := range s.voices {
		if v.start <= s.now && v.voice.Active() {
			ret++
		}
	}
	return ret
}

// Pending is the number of scheduled voices that have not started yet.
func (s *Session) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ret := 0
	for _, v := range s.voices {
		if v.start > s.now {
			ret++
		}
	}
	return ret
}

// Idle reports whether the session has no voices at all.
func (s *Session) Idle() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.voices) == 0
}

// CloseWhenIdle makes ReadAudio return io.EOF once all voices, including the
// scheduled ones, have finished. Until then, and without it, the session
// produces silence forever.
func (s *Session) CloseWhenIdle() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closing = true
}

// ReadAudio mixes the voices into buffer, both channels getting the same
// signal, and advances the audio clock by the number of frames filled.
func (s *Session) ReadAudio(buffer partials.AudioBuffer) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closing && len(s.voices) == 0 {
		return 0, io.EOF
	}
	n := len(buffer)
	if cap(s.mix) < n {
		s.mix = make([]float32, n)
		s.tmp = make([]float32, n)
	}
	mix, tmp := s.mix[:n], s.tmp[:n]
	clear(mix)
	end := s.now + int64(n)
	for _, v := range s.voices {
		if v.start >= end {
			continue
		}
		offset := int(max(v.start-s.now, 0))
		clear(tmp[:offset])
		for i := offset; i < n; i++ {
			tmp[i] = float32(v.voice.Sample())
		}
		vek32.Add_Inplace(mix, tmp)
	}
	for i, m := range mix {
		buffer[i] = [2]float32{m, m}
	}
	s.now = end
	s.voices = slices.DeleteFunc(s.voices, func(v *sessionVoice) bool {
		return v.start < end && !v.voice.Active()
	})
	if s.closing && len(s.voices) == 0 {
		return n, io.EOF
	}
	return n, nil
}

func (s *Session) add(spec synth.RenderSpec, frame int64) VoiceID {
	id := s.nextID
	s.nextID++
	s.voices = append(s.voices, &sessionVoice{id: id, start: frame, voice: synth.NewVoice(spec, s.sampleRate)})
	return id
}
