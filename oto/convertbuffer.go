package oto

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/vsariola/partials"
)

const bytesPerFrame = 8 // two float32 channels

// sourceReader adapts an AudioSource to the io.Reader oto pulls from. A Read
// may end in the middle of a frame; the rest of the frame is kept for the
// next Read.
type sourceReader struct {
	source  partials.AudioSource
	frames  partials.AudioBuffer
	encoded []byte
	pending []byte

	mutex       sync.Mutex
	err         error
	eof         bool
	drained     chan struct{}
	drainedOnce sync.Once
}

func newSourceReader(source partials.AudioSource) *sourceReader {
	return &sourceReader{source: source, drained: make(chan struct{})}
}

func (r *sourceReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		r.mutex.Lock()
		eof := r.eof
		r.mutex.Unlock()
		if eof {
			r.drainedOnce.Do(func() { close(r.drained) })
			return 0, io.EOF
		}
		r.fill(max(len(p)/bytesPerFrame, 1))
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *sourceReader) fill(frames int) {
	if cap(r.frames) < frames {
		r.frames = make(partials.AudioBuffer, frames)
	}
	n, err := r.source.ReadAudio(r.frames[:frames])
	r.encoded = EncodeFloat32LE(r.frames[:n], r.encoded[:0])
	r.pending = r.encoded
	if err != nil {
		r.mutex.Lock()
		r.eof = true
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
		r.mutex.Unlock()
	}
}

// Err returns the error the source failed with, nil if it ended with io.EOF
// or has not ended.
func (r *sourceReader) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.err
}

// EncodeFloat32LE appends the interleaved little-endian float32 encoding of
// buffer to dst.
func EncodeFloat32LE(buffer partials.AudioBuffer, dst []byte) []byte {
	for _, frame := range buffer {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(frame[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(frame[1]))
	}
	return dst
}
