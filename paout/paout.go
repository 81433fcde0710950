//go:build portaudio

// Package paout plays audio through PortAudio. It needs cgo and the PortAudio
// library, so it is only built with the portaudio build tag.
package paout

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/vsariola/partials"
)

const framesPerBuffer = 512

type (
	Context struct {
		sampleRate int
	}

	output struct {
		stream *portaudio.Stream
		source partials.AudioSource
		frames partials.AudioBuffer

		mutex    sync.Mutex
		err      error
		drained  bool
		done     chan struct{}
		doneOnce sync.Once
	}
)

// NewContext initializes PortAudio. Close terminates it.
func NewContext(sampleRate int) (*Context, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("cannot initialize portaudio: %w", err)
	}
	return &Context{sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Play opens a stereo stream on the default output device and plays source
// on it until it is drained.
func (c *Context) Play(source partials.AudioSource) partials.CloserWaiter {
	o := newOutput(source)
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(c.sampleRate), framesPerBuffer, o.fill)
	if err != nil {
		o.fail(fmt.Errorf("cannot open portaudio stream: %w", err))
		return o
	}
	o.stream = stream
	if err := stream.Start(); err != nil {
		o.fail(fmt.Errorf("cannot start portaudio stream: %w", err))
	}
	return o
}

func (c *Context) Close() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("cannot terminate portaudio: %w", err)
	}
	return nil
}

func newOutput(source partials.AudioSource) *output {
	return &output{source: source, done: make(chan struct{})}
}

// fill is the stream callback; out holds interleaved stereo samples
func (o *output) fill(out []float32) {
	frames := len(out) / 2
	o.mutex.Lock()
	drained := o.drained
	o.mutex.Unlock()
	n := 0
	if !drained {
		if cap(o.frames) < frames {
			o.frames = make(partials.AudioBuffer, frames)
		}
		var err error
		n, err = o.source.ReadAudio(o.frames[:frames])
		for i, f := range o.frames[:n] {
			out[2*i], out[2*i+1] = f[0], f[1]
		}
		if errors.Is(err, io.EOF) {
			o.fail(nil)
		} else if err != nil {
			o.fail(err)
		}
	}
	clear(out[2*n:])
}

func (o *output) fail(err error) {
	o.mutex.Lock()
	o.drained = true
	if o.err == nil {
		o.err = err
	}
	o.mutex.Unlock()
	o.doneOnce.Do(func() { close(o.done) })
}

// Wait blocks until the source is drained and the device has had time to
// play the last buffer.
func (o *output) Wait() {
	<-o.done
	if o.stream != nil {
		info := o.stream.Info()
		buffer := time.Duration(float64(time.Second) * framesPerBuffer / info.SampleRate)
		time.Sleep(info.OutputLatency + buffer)
	}
}

func (o *output) Close() error {
	o.fail(nil)
	if o.stream != nil {
		o.stream.Stop()
		o.stream.Close()
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.err
}
