package repet

import (
	"fmt"
	"math"
	"sync"

	"github.com/jiauy/nussl/algorithms/spectral"
	"github.com/jiauy/nussl/algorithms/windowing"
	"github.com/jiauy/nussl/logging"
)

// Separator runs the full REPET pipeline: STFT, beat-spectrum based period
// estimation (unless an exact period is configured), per-channel soft
// masking with a low-frequency background override, and resynthesis.
//
// A Separator is stateless across calls; every invocation of Separate
// allocates its own spectrograms, beat spectrum and masks.
type Separator struct {
	cfg    Config
	stft   *spectral.STFT
	beat   *BeatSpectrum
	masker *RepeatingMask
	logger logging.Logger
}

// New creates a Separator with the given configuration. Zero-valued window
// and overlap fields fall back to the documented defaults.
func New(cfg Config) *Separator {
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = DefaultWindowDuration
	}
	if cfg.Overlap <= 0 || cfg.Overlap >= 1 {
		cfg.Overlap = DefaultOverlap
	}
	if cfg.WindowType == "" {
		cfg.WindowType = "hamming"
	}

	return &Separator{
		cfg:    cfg,
		stft:   spectral.NewSTFT(),
		beat:   NewBeatSpectrum(),
		masker: NewRepeatingMask(),
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{"component": "repet"}),
	}
}

// NewWithDefaults creates a Separator with DefaultConfig
func NewWithDefaults() *Separator {
	return New(DefaultConfig())
}

// Separate extracts the repeating background from a multichannel mixture
// (mixture[channel][sample], all channels the same length). The returned
// background has exactly the shape of the input; the non-repeating
// foreground is the input minus the result.
//
// On any error no partial output is returned.
func (s *Separator) Separate(mixture [][]float64, sampleRate int) ([][]float64, error) {
	numChannels := len(mixture)
	if numChannels == 0 {
		return nil, fmt.Errorf("%w: mixture has no channels", ErrEmptyInput)
	}

	numSamples := len(mixture[0])
	if numSamples == 0 {
		return nil, fmt.Errorf("%w: mixture has no samples", ErrEmptyInput)
	}

	for c, channel := range mixture {
		if len(channel) != numSamples {
			return nil, fmt.Errorf("%w: channel %d has %d samples, expected %d", ErrShapeMismatch, c, len(channel), numSamples)
		}
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	windowSize := nextPowerOfTwo(int(math.Ceil(s.cfg.WindowDuration * float64(sampleRate))))
	hopSize := windowSize - int(float64(windowSize)*s.cfg.Overlap)

	window, err := s.newWindow(windowSize)
	if err != nil {
		return nil, err
	}

	cutoffBin := int(math.Ceil(s.cfg.HighPassCutoff * float64(windowSize-1) / float64(sampleRate)))

	specs := make([]*spectral.STFTResult, numChannels)
	for c, channel := range mixture {
		spec, err := s.stft.Compute(channel, windowSize, hopSize, sampleRate, window)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", c, err)
		}
		if c > 0 && (spec.TimeFrames != specs[0].TimeFrames || spec.FreqBins != specs[0].FreqBins) {
			return nil, fmt.Errorf("%w: channel %d spectrogram is %dx%d, expected %dx%d",
				ErrShapeMismatch, c, spec.TimeFrames, spec.FreqBins, specs[0].TimeFrames, specs[0].FreqBins)
		}
		specs[c] = spec
	}

	period, err := s.resolvePeriod(specs, sampleRate, windowSize, hopSize, numSamples)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("separating repeating background", logging.Fields{
		"channels":      numChannels,
		"samples":       numSamples,
		"sample_rate":   sampleRate,
		"window_size":   windowSize,
		"hop_size":      hopSize,
		"period_frames": period,
		"cutoff_bin":    cutoffBin,
	})

	// Channels share the period but nothing else; each one masks and
	// resynthesizes independently.
	background := make([][]float64, numChannels)
	errs := make([]error, numChannels)

	var wg sync.WaitGroup
	for c := range specs {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			background[c], errs[c] = s.separateChannel(specs[c], period, cutoffBin, windowSize, hopSize, window, numSamples)
		}(c)
	}
	wg.Wait()

	for c, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", c, err)
		}
	}

	return background, nil
}

// separateChannel masks one channel's spectrogram and reconstructs its
// background waveform, truncated to the original sample count.
func (s *Separator) separateChannel(spec *spectral.STFTResult, period, cutoffBin, windowSize, hopSize int, window spectral.Window, numSamples int) ([]float64, error) {
	mask, err := s.masker.Compute(spec.Magnitude, period)
	if err != nil {
		return nil, err
	}

	forceLowFrequencyBackground(mask, cutoffBin)

	masked := make([][]complex128, spec.TimeFrames)
	for t := range masked {
		masked[t] = make([]complex128, spec.FreqBins)
		for f := range masked[t] {
			masked[t][f] = spec.Complex[t][f] * complex(mask[t][f], 0)
		}
	}

	signal, err := s.stft.Inverse(masked, windowSize, hopSize, window)
	if err != nil {
		return nil, err
	}

	// The forward transform padded the tail; drop the reconstruction
	// beyond the original length.
	out := make([]float64, numSamples)
	copy(out, signal)
	return out, nil
}

// resolvePeriod returns the repeating period in frames. An exact configured
// period bypasses estimation; otherwise the beat spectrum of the
// channel-averaged power spectrogram drives the selection.
func (s *Separator) resolvePeriod(specs []*spectral.STFTResult, sampleRate, windowSize, hopSize, numSamples int) (int, error) {
	if s.cfg.Period != 0 {
		if s.cfg.Period < 0 {
			return 0, fmt.Errorf("%w: %g seconds", ErrInvalidPeriod, s.cfg.Period)
		}
		period := secondsToFrames(s.cfg.Period, sampleRate, windowSize, hopSize)
		if period < 1 {
			return 0, fmt.Errorf("%w: %g seconds resolves to %d frames", ErrInvalidPeriod, s.cfg.Period, period)
		}
		return period, nil
	}

	numFrames := specs[0].TimeFrames
	numBins := specs[0].FreqBins

	minSec, maxSec := s.cfg.PeriodRange[0], s.cfg.PeriodRange[1]
	defaulted := minSec == 0 && maxSec == 0
	if defaulted {
		duration := float64(numSamples) / float64(sampleRate)
		minSec = DefaultPeriodMin
		maxSec = math.Min(DefaultPeriodMax, duration/3)
	} else if minSec <= 0 || minSec > maxSec {
		return 0, fmt.Errorf("%w: period range [%g, %g] seconds", ErrInvalidRange, minSec, maxSec)
	}

	minLag := secondsToFrames(minSec, sampleRate, windowSize, hopSize)
	maxLag := secondsToFrames(maxSec, sampleRate, windowSize, hopSize)

	// The default range is derived, not asserted by the caller, so fit it
	// to the actual beat-spectrum length. Caller-specified ranges are
	// validated strictly by RepeatingPeriod instead.
	if defaulted {
		if maxLag > numFrames-1 {
			maxLag = numFrames - 1
		}
		if minLag < 1 {
			minLag = 1
		}
		if minLag > maxLag {
			minLag = maxLag
		}
	}

	power := make([][]float64, numFrames)
	for t := 0; t < numFrames; t++ {
		power[t] = make([]float64, numBins)
		for f := 0; f < numBins; f++ {
			sum := 0.0
			for _, spec := range specs {
				mag := spec.Magnitude[t][f]
				sum += mag * mag
			}
			power[t][f] = sum / float64(len(specs))
		}
	}

	beat, err := s.beat.Compute(power)
	if err != nil {
		return 0, err
	}

	if s.cfg.OnBeatSpectrum != nil {
		s.cfg.OnBeatSpectrum(beat)
	}

	period, err := RepeatingPeriod(beat, minLag, maxLag)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("estimated repeating period", logging.Fields{
		"period_frames":  period,
		"period_seconds": float64(period*hopSize) / float64(sampleRate),
		"min_lag":        minLag,
		"max_lag":        maxLag,
	})

	return period, nil
}

// newWindow builds the configured analysis/synthesis window
func (s *Separator) newWindow(size int) (spectral.Window, error) {
	switch s.cfg.WindowType {
	case "hamming":
		return windowing.NewHamming(size, false), nil
	case "hann":
		return windowing.NewHann(size, false), nil
	default:
		return nil, fmt.Errorf("unsupported window type %q", s.cfg.WindowType)
	}
}

// forceLowFrequencyBackground overrides the mask to full background below
// the cutoff bin; very low frequencies are never treated as foreground.
func forceLowFrequencyBackground(mask [][]float64, cutoffBin int) {
	for t := range mask {
		limit := min(cutoffBin, len(mask[t]))
		for f := 0; f < limit; f++ {
			mask[t][f] = 1
		}
	}
}

// secondsToFrames converts a duration to STFT frame units, rounding up so a
// requested period never falls short of the true repetition length.
func secondsToFrames(seconds float64, sampleRate, windowSize, hopSize int) int {
	framesPerWindow := float64(windowSize) / float64(hopSize)
	return int(math.Ceil((seconds*float64(sampleRate) + framesPerWindow - 1) / float64(hopSize)))
}

// nextPowerOfTwo returns the smallest power of two >= n
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
