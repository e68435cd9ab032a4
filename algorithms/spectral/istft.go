package spectral

import (
	"fmt"
	"math/cmplx"
)

// Inverse reconstructs a time-domain signal from a one-sided complex
// spectrogram (time x freq, windowSize/2 + 1 bins per frame) via weighted
// overlap-add: each frame's full spectrum is rebuilt by conjugate symmetry,
// inverse transformed, multiplied by the synthesis window, and the running
// sum is normalized by the accumulated squared window.
//
// For an unmodified spectrogram this inverts Compute exactly wherever the
// window sum is nonzero; for a masked spectrogram it is the standard WOLA
// resynthesis. The returned signal has length
// (frames-1)*hopSize + windowSize; callers truncate to the original sample
// count.
func (s *STFT) Inverse(spectrum [][]complex128, windowSize int, hopSize int, window Window) ([]float64, error) {
	if len(spectrum) == 0 {
		return nil, fmt.Errorf("empty spectrogram")
	}

	if windowSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("window size and hop size must be positive")
	}

	freqBins := windowSize/2 + 1
	for i, frame := range spectrum {
		if len(frame) != freqBins {
			return nil, fmt.Errorf("frame %d has %d bins, expected %d", i, len(frame), freqBins)
		}
	}

	if window == nil {
		return nil, fmt.Errorf("window is required for resynthesis")
	}
	coeffs := window.GetCoefficients()
	if len(coeffs) != windowSize {
		return nil, fmt.Errorf("window size (%d) doesn't match frame size (%d)", len(coeffs), windowSize)
	}

	numFrames := len(spectrum)
	outLen := (numFrames-1)*hopSize + windowSize
	signal := make([]float64, outLen)
	windowSum := make([]float64, outLen)

	fullSpectrum := make([]complex128, windowSize)

	for frameIdx, frame := range spectrum {
		// Rebuild the negative-frequency half by conjugate symmetry.
		// Bin 0 is DC and bin freqBins-1 is Nyquist; neither is mirrored.
		copy(fullSpectrum[:freqBins], frame)
		for k := 1; k < freqBins-1; k++ {
			fullSpectrum[windowSize-k] = cmplx.Conj(frame[k])
		}

		frameSignal := s.fft.ComputeInverseReal(fullSpectrum)

		offset := frameIdx * hopSize
		for i := 0; i < windowSize; i++ {
			signal[offset+i] += frameSignal[i] * coeffs[i]
			windowSum[offset+i] += coeffs[i] * coeffs[i]
		}
	}

	for i := range signal {
		if windowSum[i] > 0 {
			signal[i] /= windowSum[i]
		}
	}

	return signal, nil
}
