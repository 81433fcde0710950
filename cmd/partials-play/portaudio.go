//go:build portaudio

package main

import (
	"github.com/vsariola/partials"
	"github.com/vsariola/partials/paout"
)

func newPortAudioContext(sampleRate int) (partials.AudioContext, error) {
	c, err := paout.NewContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return c, nil
}
