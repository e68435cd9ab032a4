package repet

import "fmt"

// RepeatingPeriod selects the repeating period from a beat spectrum.
//
// Lag semantics are zero-indexed: beatSpectrum[k] is the autocorrelation at
// lag k frames, so beatSpectrum[0] is the trivially maximal zero-lag value
// and is never a candidate. The search covers lags [minLag, maxLag]
// inclusive, which must satisfy 1 <= minLag <= maxLag <= len(beatSpectrum)-1;
// anything else is rejected with ErrInvalidRange rather than clamped. Ties
// resolve to the lowest lag.
func RepeatingPeriod(beatSpectrum []float64, minLag, maxLag int) (int, error) {
	if len(beatSpectrum) == 0 {
		return 0, fmt.Errorf("%w: empty beat spectrum", ErrEmptyInput)
	}

	if minLag < 1 {
		return 0, fmt.Errorf("%w: min lag %d is below 1 (lag 0 is not a valid period)", ErrInvalidRange, minLag)
	}
	if minLag > maxLag {
		return 0, fmt.Errorf("%w: min lag %d exceeds max lag %d", ErrInvalidRange, minLag, maxLag)
	}
	if maxLag > len(beatSpectrum)-1 {
		return 0, fmt.Errorf("%w: max lag %d exceeds available lags (%d)", ErrInvalidRange, maxLag, len(beatSpectrum)-1)
	}

	period := minLag
	best := beatSpectrum[minLag]
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if beatSpectrum[lag] > best {
			best = beatSpectrum[lag]
			period = lag
		}
	}

	return period, nil
}
