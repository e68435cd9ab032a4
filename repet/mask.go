package repet

import (
	"fmt"

	"github.com/jiauy/nussl/algorithms/stats"
)

// maskEpsilon keeps the mask well-defined where both the repeating estimate
// and the observed magnitude vanish; such cells classify as background.
const maskEpsilon = 1e-16

// RepeatingMask builds the soft mask identifying repeating energy in a
// magnitude spectrogram.
type RepeatingMask struct{}

// NewRepeatingMask creates a new repeating-pattern masker
func NewRepeatingMask() *RepeatingMask {
	return &RepeatingMask{}
}

// Compute computes the soft mask for a magnitude spectrogram laid out as
// time x frequency (magnitude[t][f], non-negative) and a repeating period in
// frames. Every mask value lies in [0, 1]; 1 attributes the cell fully to
// the repeating background, 0 fully to the foreground.
//
// The time axis is folded into ceil(Lt/period) segments of one period each.
// For every (bin, phase slot) the median across segments gives the typical
// repeating magnitude; the final segment is shorter than a full period and
// contributes only the samples it actually has, so its missing tail cannot
// bias the median. The tiled profile is clamped to never exceed the observed
// magnitude before forming the ratio mask.
func (m *RepeatingMask) Compute(magnitude [][]float64, period int) ([][]float64, error) {
	numFrames := len(magnitude)
	if numFrames == 0 {
		return nil, fmt.Errorf("%w: magnitude spectrogram has no time frames", ErrEmptyInput)
	}

	numBins := len(magnitude[0])
	if numBins == 0 {
		return nil, fmt.Errorf("%w: magnitude spectrogram has no frequency bins", ErrEmptyInput)
	}

	if period < 1 {
		return nil, fmt.Errorf("%w: period %d frames", ErrInvalidPeriod, period)
	}

	for t, frame := range magnitude {
		if len(frame) != numBins {
			return nil, fmt.Errorf("%w: frame %d has %d bins, expected %d", ErrShapeMismatch, t, len(frame), numBins)
		}
	}

	numSegments := (numFrames + period - 1) / period

	// Typical repeating magnitude per (phase slot, bin)
	profile := make([][]float64, period)
	segmentValues := make([]float64, 0, numSegments)

	for slot := 0; slot < period; slot++ {
		profile[slot] = make([]float64, numBins)
		for f := 0; f < numBins; f++ {
			segmentValues = segmentValues[:0]
			for t := slot; t < numFrames; t += period {
				segmentValues = append(segmentValues, magnitude[t][f])
			}
			profile[slot][f] = stats.Median(segmentValues)
		}
	}

	mask := make([][]float64, numFrames)
	for t := 0; t < numFrames; t++ {
		mask[t] = make([]float64, numBins)
		repeating := profile[t%period]
		for f := 0; f < numBins; f++ {
			observed := magnitude[t][f]
			estimate := repeating[f]
			if estimate > observed {
				// The repeating background cannot contain more
				// energy than the mixture itself.
				estimate = observed
			}
			mask[t][f] = (estimate + maskEpsilon) / (observed + maskEpsilon)
		}
	}

	return mask, nil
}
