// Package visualizer turns live microphone PCM into the audio-reactive glow
// shown around the capture box while recording.
package visualizer

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	DefaultFFTSize   = 64
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyser keeps a rolling window of the most recent s16le samples and
// exposes byte-scaled frequency magnitudes for it, mirroring the defaults of
// a WebAudio AnalyserNode.
type Analyser struct {
	mu        sync.Mutex
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	window   []float64 // ring of normalized samples
	pos      int
	filled   int
	previous []float64 // smoothed magnitudes per bin
	blackman []float64
}

func NewAnalyser(fftSize int) *Analyser {
	if fftSize < 2 {
		fftSize = DefaultFFTSize
	}
	a := &Analyser{
		fftSize:   fftSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
		window:    make([]float64, fftSize),
		previous:  make([]float64, fftSize/2),
		blackman:  make([]float64, fftSize),
	}
	const alpha = 0.16
	a0, a1, a2 := 0.5*(1-alpha), 0.5, 0.5*alpha
	n := float64(fftSize)
	for i := range a.blackman {
		x := float64(i) / n
		a.blackman[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return a
}

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int {
	return a.fftSize / 2
}

// Write appends little-endian signed 16-bit samples. A trailing odd byte is ignored.
func (a *Analyser) Write(pcm []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i : i+2]))
		a.window[a.pos] = float64(s) / 32768.0
		a.pos = (a.pos + 1) % a.fftSize
		if a.filled < a.fftSize {
			a.filled++
		}
	}
}

// Reset drops buffered samples and smoothing state.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.window {
		a.window[i] = 0
	}
	for i := range a.previous {
		a.previous[i] = 0
	}
	a.pos = 0
	a.filled = 0
}

// ByteFrequencyData fills dst (resized to FrequencyBinCount) with magnitudes
// scaled from [minDB, maxDB] onto 0..255.
func (a *Analyser) ByteFrequencyData(dst []uint8) []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	bins := a.fftSize / 2
	if cap(dst) < bins {
		dst = make([]uint8, bins)
	}
	dst = dst[:bins]

	// Oldest sample first.
	samples := make([]float64, a.fftSize)
	for i := 0; i < a.fftSize; i++ {
		samples[i] = a.window[(a.pos+i)%a.fftSize] * a.blackman[i]
	}

	n := float64(a.fftSize)
	scale := 255.0 / (a.maxDB - a.minDB)
	for k := 0; k < bins; k++ {
		var re, im float64
		for i, s := range samples {
			angle := 2 * math.Pi * float64(k) * float64(i) / n
			re += s * math.Cos(angle)
			im -= s * math.Sin(angle)
		}
		mag := math.Sqrt(re*re+im*im) / n
		mag = a.smoothing*a.previous[k] + (1-a.smoothing)*mag
		a.previous[k] = mag

		db := math.Inf(-1)
		if mag > 0 {
			db = 20 * math.Log10(mag)
		}
		v := (db - a.minDB) * scale
		switch {
		case math.IsInf(v, -1) || v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		dst[k] = uint8(v)
	}
	return dst
}

// Average is the arithmetic mean across all bins.
func Average(bins []uint8) float64 {
	if len(bins) == 0 {
		return 0
	}
	var sum int
	for _, b := range bins {
		sum += int(b)
	}
	return float64(sum) / float64(len(bins))
}
