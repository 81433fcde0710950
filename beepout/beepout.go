// Package beepout plays audio sources through the gopxl/beep speaker. It
// is the alternative to the oto package, for systems where the beep
// speaker is preferred.
package beepout

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/vsariola/partials"
)

type (
	// Context is the speaker. There is only one speaker per process, so
	// only one Context should be open at a time.
	Context struct {
		sampleRate beep.SampleRate
	}

	// Streamer adapts an AudioSource to a beep.Streamer.
	Streamer struct {
		source  partials.AudioSource
		buffer  partials.AudioBuffer
		err     error
		drained bool
	}

	output struct {
		ctrl *beep.Ctrl
		done chan struct{}
		once sync.Once
	}
)

// NewContext initializes the speaker with a buffer of 100 ms.
func NewContext(sampleRate int) (*Context, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("cannot initialize speaker: %w", err)
	}
	return &Context{sampleRate: sr}, nil
}

func (c *Context) SampleRate() int { return int(c.sampleRate) }

func (c *Context) Play(source partials.AudioSource) partials.CloserWaiter {
	o := &output{done: make(chan struct{})}
	o.ctrl = &beep.Ctrl{Streamer: beep.Seq(NewStreamer(source), beep.Callback(o.finish))}
	speaker.Play(o.ctrl)
	return o
}

func (c *Context) Close() error {
	speaker.Close()
	return nil
}

func NewStreamer(source partials.AudioSource) *Streamer {
	return &Streamer{source: source}
}

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	if s.drained {
		return 0, false
	}
	if cap(s.buffer) < len(samples) {
		s.buffer = make(partials.AudioBuffer, len(samples))
	}
	n, err := s.source.ReadAudio(s.buffer[:len(samples)])
	for i, f := range s.buffer[:n] {
		samples[i] = [2]float64{float64(f[0]), float64(f[1])}
	}
	if err != nil {
		s.drained = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return n, n > 0
	}
	return n, true
}

func (s *Streamer) Err() error { return s.err }

func (o *output) finish() { o.once.Do(func() { close(o.done) }) }

func (o *output) Wait() { <-o.done }

func (o *output) Close() error {
	speaker.Lock()
	o.ctrl.Streamer = nil
	speaker.Unlock()
	o.finish()
	return nil
}
