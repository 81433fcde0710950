package oto

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/partials"
)

type (
	// Context is the shared audio output, stereo float32 at a fixed sample
	// rate.
	Context struct {
		context    *oto.Context
		sampleRate int
	}

	// Output is a source being played. It is returned as a
	// partials.CloserWaiter.
	Output struct {
		player    *oto.Player
		reader    *sourceReader
		closeOnce sync.Once
		closed    chan struct{}
	}
)

const pollInterval = 10 * time.Millisecond

// NewContext opens the audio device. It blocks until the device is ready.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Play starts playing source. The returned Output plays until source
// returns io.EOF or the output is closed.
func (c *Context) Play(source partials.AudioSource) partials.CloserWaiter {
	r := newSourceReader(source)
	o := &Output{player: c.context.NewPlayer(r), reader: r, closed: make(chan struct{})}
	o.player.Play()
	return o
}

// Close suspends the device. oto does not support reopening a context, so
// Close is meant to be called once, when the program exits.
func (c *Context) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Wait blocks until the source is drained and the player has played all of
// it, or until the output is closed.
func (o *Output) Wait() {
	select {
	case <-o.reader.drained:
	case <-o.closed:
		return
	}
	for o.player.IsPlaying() {
		select {
		case <-o.closed:
			return
		case <-time.After(pollInterval):
		}
	}
}

// Close stops the output.
func (o *Output) Close() error {
	o.closeOnce.Do(func() {
		o.player.Pause()
		close(o.closed)
	})
	if err := o.reader.Err(); err != nil {
		return fmt.Errorf("audio source failed: %w", err)
	}
	return nil
}
