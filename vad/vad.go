// Package vad classifies PCM frames as speech or silence.
package vad

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Flux tracks spectral flux between consecutive frames of a fixed size.
type Flux struct {
	size     int
	previous []float64
}

func New(size int) *Flux {
	return &Flux{size: size}
}

// Next returns the positive spectral flux of samples against the previous frame.
// The first frame always yields 0.
func (f *Flux) Next(samples []int16) float64 {
	frame := make([]float64, f.size)
	for i := 0; i < f.size && i < len(samples); i++ {
		frame[i] = float64(samples[i]) / math.MaxInt16
	}

	spectrum := fft.FFTReal(frame)
	half := len(spectrum)/2 + 1
	magnitudes := make([]float64, half)
	for i := 0; i < half; i++ {
		magnitudes[i] = cmplx.Abs(spectrum[i])
	}

	if f.previous == nil {
		f.previous = magnitudes
		return 0
	}

	var flux float64
	for i := range magnitudes {
		diff := magnitudes[i] - f.previous[i]
		if diff > 0 {
			flux += diff
		}
	}
	f.previous = magnitudes

	return flux
}

// RMS returns the root-mean-square level of samples, normalized to [0, 1].
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
