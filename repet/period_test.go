package repet

import (
	"errors"
	"testing"
)

func TestRepeatingPeriod_PicksMaximum(t *testing.T) {
	beat := []float64{10, 1, 2, 7, 3, 1, 0.5}

	period, err := RepeatingPeriod(beat, 1, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period != 3 {
		t.Errorf("expected period 3, got %d", period)
	}
}

func TestRepeatingPeriod_TiesResolveToLowestLag(t *testing.T) {
	beat := []float64{10, 1, 5, 2, 5, 1}

	period, err := RepeatingPeriod(beat, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period != 2 {
		t.Errorf("expected lowest tied lag 2, got %d", period)
	}
}

func TestRepeatingPeriod_NeverReturnsLagZero(t *testing.T) {
	// Lag 0 dominates every beat spectrum; it must never be selected even
	// when all other lags are far smaller.
	beat := []float64{1000, 1, 1, 1}

	period, err := RepeatingPeriod(beat, 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period == 0 {
		t.Error("selector returned the excluded zero lag")
	}
}

func TestRepeatingPeriod_RangeIncludingLagZeroRejected(t *testing.T) {
	beat := []float64{1000, 1, 2, 1}

	if _, err := RepeatingPeriod(beat, 0, 3); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for min lag 0, got %v", err)
	}
}

func TestRepeatingPeriod_RangeBounds(t *testing.T) {
	beat := []float64{5, 1, 2, 3}

	if _, err := RepeatingPeriod(beat, 1, 4); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for max lag past the end, got %v", err)
	}

	if _, err := RepeatingPeriod(beat, 3, 2); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for min > max, got %v", err)
	}

	if _, err := RepeatingPeriod(nil, 1, 2); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput for empty beat spectrum, got %v", err)
	}
}

func TestRepeatingPeriod_SingleLagRange(t *testing.T) {
	beat := []float64{9, 1, 2, 3}

	period, err := RepeatingPeriod(beat, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period != 2 {
		t.Errorf("expected period 2, got %d", period)
	}
}
