package synth

import (
	"math"

	"github.com/vsariola/partials"
)

const (
	envStateIdle = iota
	envStateAttack
	envStateDecay
	envStateSustain
	envStateRelease
)

type (
	// envelope is a linear ADSR state machine, advanced one sample at a time
	envelope struct {
		state   int
		level   float64
		pos     int // samples into the current state
		attack  int // samples
		decay   int // samples
		sustain float64
		release int // samples
		// level at the moment the release started
		releaseLevel float64
	}

	// partial is one harmonic with its own copy of the note's envelope
	partial struct {
		phase    float64 // cycles, in [0, 1)
		phaseInc float64
		peak     float64
		env      envelope
	}

	// Voice is a sounding note: one oscillator and envelope per harmonic,
	// all triggered and released together. Voice is not safe for concurrent
	// use.
	Voice struct {
		partials []partial
		gate     int // samples until automatic release, -1 when held
		pos      int
	}
)

// NewVoice triggers a voice for spec at the given sample rate. The voice
// releases itself after spec.Duration seconds, unless spec is Held.
func NewVoice(spec RenderSpec, sampleRate int) *Voice {
	sr := float64(sampleRate)
	env := envelope{
		state:   envStateAttack,
		attack:  int(math.Round(spec.Envelope.Attack * sr)),
		decay:   int(math.Round(spec.Envelope.Decay * sr)),
		sustain: spec.Envelope.Sustain,
		release: int(math.Round(spec.Envelope.Release * sr)),
	}
	v := &Voice{
		partials: make([]partial, len(spec.Oscillators)),
		gate:     int(math.Round(spec.Duration * sr)),
	}
	if spec.Held {
		v.gate = -1
	}
	for i, o := range spec.Oscillators {
		v.partials[i] = partial{phaseInc: o.Frequency / sr, peak: o.Peak, env: env}
	}
	return v
}

// Sample returns the next mono sample of the voice, 0 once it has finished.
func (v *Voice) Sample() float64 {
	if v.pos == v.gate {
		v.Release()
	}
	v.pos++
	var sum float64
	for i := range v.partials {
		p := &v.partials[i]
		if p.env.state == envStateIdle {
			continue
		}
		sum += p.peak * math.Sin(2*math.Pi*p.phase) * p.env.next()
		p.phase += p.phaseInc
		p.phase -= math.Floor(p.phase)
	}
	return sum
}

// Active reports whether any harmonic of the voice is still sounding.
func (v *Voice) Active() bool {
	for i := range v.partials {
		if v.partials[i].env.state != envStateIdle {
			return true
		}
	}
	return false
}

// Releasing reports whether the voice has entered its release tail.
func (v *Voice) Releasing() bool {
	for i := range v.partials {
		if s := v.partials[i].env.state; s != envStateIdle && s != envStateRelease {
			return false
		}
	}
	return true
}

// Release starts the release phase of every harmonic from its current
// level. Releasing an already released voice does nothing.
func (v *Voice) Release() {
	for i := range v.partials {
		v.partials[i].env.startRelease()
	}
}

// Kill silences the voice immediately, without a release tail.
func (v *Voice) Kill() {
	for i := range v.partials {
		v.partials[i].env = envelope{}
	}
}

// Level is the current envelope level of the voice.
func (v *Voice) Level() float64 {
	if len(v.partials) == 0 {
		return 0
	}
	return v.partials[0].env.level
}

func (e *envelope) startRelease() {
	if e.state == envStateIdle || e.state == envStateRelease {
		return
	}
	e.state = envStateRelease
	e.pos = 0
	e.releaseLevel = e.level
}

// next returns the level for the current sample and advances the state
func (e *envelope) next() float64 {
	switch e.state {
	case envStateAttack:
		if e.pos >= e.attack {
			e.state, e.pos = envStateDecay, 0
			return e.next()
		}
		e.level = float64(e.pos) / float64(e.attack)
	case envStateDecay:
		if e.pos >= e.decay {
			e.state, e.pos = envStateSustain, 0
			if e.sustain <= 0 {
				e.state, e.level = envStateIdle, 0
				return 0
			}
			return e.next()
		}
		t := float64(e.pos) / float64(e.decay)
		e.level = 1 - t*(1-e.sustain)
	case envStateSustain:
		e.level = e.sustain
	case envStateRelease:
		if e.pos >= e.release {
			e.state, e.level = envStateIdle, 0
			return 0
		}
		t := float64(e.pos) / float64(e.release)
		e.level = e.releaseLevel * (1 - t)
	default:
		return 0
	}
	e.pos++
	return e.level
}

// Render renders the whole note described by spec, including its release
// tail, into a buffer. The result is deterministic. A held note is rendered
// as if released after Duration.
func Render(spec RenderSpec, sampleRate int) partials.AudioBuffer {
	spec.Held = false
	maxFrames := int(math.Ceil(spec.TotalDuration()*float64(sampleRate))) + 1
	v := NewVoice(spec, sampleRate)
	ret := make(partials.AudioBuffer, 0, maxFrames)
	for len(ret) < maxFrames && v.Active() {
		s := float32(v.Sample())
		ret = append(ret, [2]float32{s, s})
	}
	return ret
}
