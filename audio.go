package partials

import (
	"errors"
	"fmt"
	"io"
)

type (
	// AudioBuffer is a buffer of stereo frames, left channel first.
	AudioBuffer [][2]float32

	// AudioSource is anything that can fill audio buffers, e.g. a playback
	// session or an already rendered buffer. ReadAudio returns io.EOF once
	// the source is drained; n frames are valid even when err != nil.
	AudioSource interface {
		ReadAudio(buffer AudioBuffer) (n int, err error)
	}

	// AudioContext is the single shared output destination of the program.
	AudioContext interface {
		Play(source AudioSource) CloserWaiter
		Close() error
	}

	// CloserWaiter is returned by AudioContext.Play; Wait blocks until the
	// source is drained and all of its audio has been played.
	CloserWaiter interface {
		Close() error
		Wait()
	}

	bufferSource struct {
		buffer AudioBuffer
		pos    int
	}
)

// ReadAll reads source until io.EOF, into one buffer. maxFrames limits the
// length of the result, so that a source that never drains cannot hang the
// caller.
func ReadAll(source AudioSource, maxFrames int) (AudioBuffer, error) {
	const chunk = 1024
	ret := make(AudioBuffer, 0, chunk)
	tmp := make(AudioBuffer, chunk)
	for len(ret) < maxFrames {
		l := min(chunk, maxFrames-len(ret))
		n, err := source.ReadAudio(tmp[:l])
		ret = append(ret, tmp[:n]...)
		if errors.Is(err, io.EOF) {
			return ret, nil
		}
		if err != nil {
			return ret, fmt.Errorf("ReadAudio failed: %w", err)
		}
	}
	return ret, fmt.Errorf("source was not drained after %v frames", maxFrames)
}

// Source returns an AudioSource that plays the buffer once.
func (buffer AudioBuffer) Source() AudioSource {
	return &bufferSource{buffer: buffer}
}

func (s *bufferSource) ReadAudio(buffer AudioBuffer) (int, error) {
	n := copy(buffer, s.buffer[s.pos:])
	s.pos += n
	if s.pos >= len(s.buffer) {
		return n, io.EOF
	}
	return n, nil
}
