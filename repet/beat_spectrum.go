package repet

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/jiauy/nussl/algorithms/spectral"
)

// BeatSpectrum reduces a power spectrogram to a 1-D periodicity signal by
// averaging the per-bin autocorrelations over all frequency bins. Peaks in
// the result indicate lags at which the spectral content repeats.
type BeatSpectrum struct {
	fft *spectral.FFT
}

// NewBeatSpectrum creates a new beat spectrum estimator
func NewBeatSpectrum() *BeatSpectrum {
	return &BeatSpectrum{
		fft: spectral.NewFFT(),
	}
}

// Compute computes the beat spectrum of a power spectrogram laid out as
// time x frequency (power[t][f], non-negative). The result has one value per
// time lag, length equal to the number of frames.
//
// Each bin's time series is zero-padded to twice its length so the
// autocorrelation is linear rather than circular, then transformed with the
// Wiener-Khinchin identity: forward FFT, squared magnitude, inverse FFT.
// Only the non-negative lags are kept, and lag k is divided by (Lt - k) to
// unbias the shrinking overlap at larger lags.
func (bs *BeatSpectrum) Compute(power [][]float64) ([]float64, error) {
	numFrames := len(power)
	if numFrames == 0 {
		return nil, fmt.Errorf("%w: power spectrogram has no time frames", ErrEmptyInput)
	}

	numBins := len(power[0])
	if numBins == 0 {
		return nil, fmt.Errorf("%w: power spectrogram has no frequency bins", ErrEmptyInput)
	}

	for t, frame := range power {
		if len(frame) != numBins {
			return nil, fmt.Errorf("%w: frame %d has %d bins, expected %d", ErrShapeMismatch, t, len(frame), numBins)
		}
	}

	beat := make([]float64, numFrames)
	padded := make([]float64, 2*numFrames)
	psd := make([]complex128, 2*numFrames)
	lagAC := make([]float64, numFrames)

	for f := 0; f < numBins; f++ {
		for t := 0; t < numFrames; t++ {
			padded[t] = power[t][f]
		}
		for t := numFrames; t < 2*numFrames; t++ {
			padded[t] = 0
		}

		transform := bs.fft.Compute(padded)
		for i, v := range transform {
			re := real(v)
			im := imag(v)
			psd[i] = complex(re*re+im*im, 0)
		}

		autocorr := bs.fft.ComputeInverse(psd)
		for k := 0; k < numFrames; k++ {
			lagAC[k] = real(autocorr[k]) / float64(numFrames-k)
		}

		floats.Add(beat, lagAC)
	}

	floats.Scale(1.0/float64(numBins), beat)

	return beat, nil
}
