package tuner

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// AudioFrame is one capture cycle's worth of mono samples.
type AudioFrame struct {
	Samples    []float64
	SampleRate int // Hz
}

// Duration returns the frame length in seconds.
func (f AudioFrame) Duration() float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return float64(len(f.Samples)) / float64(f.SampleRate)
}

// BinWidth returns the frequency resolution of a spectral analysis of
// this frame, in Hz. Estimates are only accurate to within this bound,
// which is what limits low-string accuracy on short buffers.
func (f AudioFrame) BinWidth() float64 {
	if f.SampleRate <= 0 || len(f.Samples) == 0 {
		return 0
	}
	return float64(f.SampleRate) / float64(len(f.Samples))
}

// Estimate detects the dominant pitch of a frame by magnitude-spectrum
// peak picking: the frame is Hann-windowed, transformed, and the
// frequency of the strongest bin is returned.
//
// A 0 Hz result is valid and means the DC bin dominated (silence or no
// tonal content); callers must guard it before feeding the estimate to
// Compare. The picker locks onto the strongest spectral component, so
// a harmonic louder than the fundamental wins. That is a documented
// accuracy characteristic of this method, not a defect to patch here.
func Estimate(frame AudioFrame) (float64, error) {
	n := len(frame.Samples)
	if n < 2 {
		return 0, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidInput, n)
	}
	if frame.SampleRate <= 0 {
		return 0, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, frame.SampleRate)
	}

	windowed := make([]float64, n)
	for i, s := range frame.Samples {
		theta := 2 * math.Pi * float64(i) / float64(n-1)
		windowed[i] = s * (0.5 - 0.5*math.Cos(theta)) // hanning
	}

	spectrum := fft.FFTReal(windowed)

	// stable argmax over the full two-sided spectrum: ties keep the
	// lowest bin, so pure silence resolves to the DC bin.
	peakBin := 0
	peakMag := cmplx.Abs(spectrum[0])
	for k := 1; k < n; k++ {
		if mag := cmplx.Abs(spectrum[k]); mag > peakMag {
			peakMag = mag
			peakBin = k
		}
	}

	return math.Abs(binFrequency(peakBin, n, frame.SampleRate)), nil
}

// binFrequency maps FFT bin k to its center frequency using the
// standard two-sided convention: bins up to N/2 are positive, bins
// above mirror to negative frequencies.
func binFrequency(k, n, sampleRate int) float64 {
	if k <= n/2 {
		return float64(k) * float64(sampleRate) / float64(n)
	}
	return float64(k-n) * float64(sampleRate) / float64(n)
}
