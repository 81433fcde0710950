//go:build !portaudio

package main

import (
	"errors"

	"github.com/vsariola/partials"
)

func newPortAudioContext(sampleRate int) (partials.AudioContext, error) {
	// portaudio needs cgo and the native library, so it is opt-in
	return nil, errors.New("built without portaudio support, rebuild with -tags portaudio")
}
