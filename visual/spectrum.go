package visual

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/viterin/vek/vek32"
	"github.com/vsariola/partials"
)

// SpectrumSize is the FFT window length used for the spectrum view.
const SpectrumSize = 4096

// spectrumFloor keeps silent bins finite when converted to decibels
const spectrumFloor = 1e-12

type spectrumAnalyzer struct {
	window     []float32 // Hann window
	normFactor float32   // sum of the window, to normalize for windowing
	tmp1, tmp2 []float32
	real       []float64
}

// Spectrum measures the power spectrum of a rendered buffer, in dB, by
// averaging Hann windowed FFTs of size samples with 50% overlap. The channels
// are mixed to mono. Point i is the bin at (i+1)*sampleRate/size Hz; DC is
// left out. size must be a power of two; buffers shorter than one window are
// centered in it and zero padded.
func Spectrum(buffer partials.AudioBuffer, sampleRate, size int) ([]Point, error) {
	if size < 4 || bits.OnesCount(uint(size)) != 1 {
		return nil, fmt.Errorf("spectrum size should be a power of two >= 4, was %d", size)
	}
	if len(buffer) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", partials.ErrEmptyInput)
	}
	a := newSpectrumAnalyzer(size)
	mono := make([]float32, max(len(buffer), size))
	offset := max(size-len(buffer), 0) / 2
	for i, f := range buffer {
		mono[offset+i] = sanitize((f[0] + f[1]) / 2)
	}
	acc := make([]float32, size/2)
	count := 0
	for start := 0; start+size <= len(mono); start += size / 2 {
		vek32.Add_Inplace(acc, a.power(mono[start:start+size]))
		count++
	}
	vek32.DivNumber_Inplace(acc, float32(count))
	for i, p := range acc {
		acc[i] = max(p, spectrumFloor)
	}
	// convert to decibels
	vek32.Log10_Inplace(acc)
	vek32.MulNumber_Inplace(acc, 10)
	ret := make([]Point, len(acc))
	for i, p := range acc {
		ret[i] = Point{X: float64(i+1) * float64(sampleRate) / float64(size), Y: float64(p)}
	}
	return ret, nil
}

func newSpectrumAnalyzer(n int) *spectrumAnalyzer {
	a := &spectrumAnalyzer{
		window: make([]float32, n),
		tmp1:   make([]float32, n),
		tmp2:   make([]float32, n),
		real:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		w := float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1))))
		a.window[i] = w
		a.normFactor += w
	}
	return a
}

// power returns the one-sided power of bins 1..n/2 of samples, which must
// have the length of the window. The result is reused by the next call.
func (a *spectrumAnalyzer) power(samples []float32) []float32 {
	copy(a.tmp1, samples)
	vek32.Mul_Inplace(a.tmp1, a.window)
	for i, v := range a.tmp1 {
		a.real[i] = float64(v)
	}
	c := fft.FFTReal(a.real)
	m := len(a.window) / 2
	t1, t2 := a.tmp1[:m], a.tmp2[:m]
	for i := 0; i < m; i++ {
		t1[i] = float32(cmplx.Abs(c[1+i]))
	}
	vek32.Mul_Into(t2, t1, t1)
	vek32.DivNumber_Inplace(t2, a.normFactor*a.normFactor)
	// one-sided spectrum: every bin but Nyquist gets the power of its mirror
	vek32.MulNumber_Inplace(t2[:m-1], 2)
	return t2
}

func sanitize(v float32) float32 {
	if v != v { // NaN
		return 0
	}
	return min(max(v, -1), 1)
}
