package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/jiauy/nussl/logging"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft    *FFT
	logger logging.Logger
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude      [][]float64    `json:"magnitude"`       // Time x Frequency magnitude matrix
	Complex        [][]complex128 `json:"-"`               // Raw one-sided complex spectrogram (not serialized)
	TimeFrames     int            `json:"time_frames"`     // Number of time frames
	FreqBins       int            `json:"freq_bins"`       // Number of frequency bins (one-sided)
	SampleRate     int            `json:"sample_rate"`     // Sample rate
	WindowSize     int            `json:"window_size"`     // Analysis window size (== FFT size)
	HopSize        int            `json:"hop_size"`        // Hop size between frames
	NumSamples     int            `json:"num_samples"`     // Original signal length before padding
	FreqResolution float64        `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64        `json:"time_resolution"` // Time resolution (seconds/frame)
}

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetType() string
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft:    NewFFT(),
		logger: logging.GetGlobalLogger(),
	}
}

// Compute computes the STFT of a real signal with the given window.
//
// The signal is zero-padded at the end so every input sample is covered by
// at least one analysis frame; Inverse undoes the padding when the caller
// truncates its output back to NumSamples. Frequency bins are one-sided
// (windowSize/2 + 1 bins, FFT size equal to the window size).
func (s *STFT) Compute(signal []float64, windowSize int, hopSize int, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	// Frames needed to cover the whole signal, tail padded with zeros
	numFrames := 1
	if len(signal) > windowSize {
		numFrames += (len(signal) - windowSize + hopSize - 1) / hopSize
	}

	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	complexSpectrum := make([][]complex128, numFrames)

	frameBuffer := make([]float64, windowSize)

	for frameIdx := range numFrames {
		startIdx := frameIdx * hopSize

		for i := range frameBuffer {
			if startIdx+i < len(signal) {
				frameBuffer[i] = signal[startIdx+i]
			} else {
				frameBuffer[i] = 0
			}
		}

		if window != nil {
			if err := window.ApplyInPlace(frameBuffer); err != nil {
				return nil, fmt.Errorf("windowing frame %d: %w", frameIdx, err)
			}
		}

		fftResult := s.fft.Compute(frameBuffer)

		magnitude[frameIdx] = make([]float64, freqBins)
		complexSpectrum[frameIdx] = make([]complex128, freqBins)
		for i := range freqBins {
			complexSpectrum[frameIdx][i] = fftResult[i]
			magnitude[frameIdx][i] = cmplx.Abs(fftResult[i])
		}
	}

	result := &STFTResult{
		Magnitude:      magnitude,
		Complex:        complexSpectrum,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		NumSamples:     len(signal),
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}

	return result, nil
}
