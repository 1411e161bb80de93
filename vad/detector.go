package vad

import "keyword-assistant/ring_buffer"

const (
	DefaultThreshold = 0.02
	// onsetRatio is how much the spectral flux must jump to count as an onset.
	onsetRatio = 1.75
)

// Detector decides whether the most recent audio window contains speech.
type Detector struct {
	threshold float64
	window    *ring_buffer.Window
	flux      *Flux
	lastFlux  float64
}

// NewDetector builds a detector averaging energy over windowSize samples and
// computing spectral flux over frames of frameSize samples.
func NewDetector(windowSize, frameSize int, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		threshold: threshold,
		window:    ring_buffer.New(windowSize),
		flux:      New(frameSize),
	}
}

// IsSpeech feeds a frame and reports whether the window is above the energy
// threshold, or the frame is a spectral onset at half that energy.
func (d *Detector) IsSpeech(samples []int16) bool {
	d.window.Add(samples)
	level := RMS(d.window.Read())

	flux := d.flux.Next(samples)
	onset := d.lastFlux > 0 && flux >= d.lastFlux*onsetRatio
	d.lastFlux = flux

	if level >= d.threshold {
		return true
	}
	return onset && level >= d.threshold/2
}
