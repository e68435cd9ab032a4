package windowing

import (
	"math"
	"testing"
)

func TestHamming_Coefficients(t *testing.T) {
	h := NewHamming(8, true)
	coeffs := h.GetCoefficients()

	if len(coeffs) != 8 {
		t.Fatalf("expected 8 coefficients, got %d", len(coeffs))
	}

	// Symmetric Hamming starts and ends at 0.08
	if math.Abs(coeffs[0]-0.08) > 1e-12 {
		t.Errorf("expected first coefficient 0.08, got %v", coeffs[0])
	}
	if math.Abs(coeffs[7]-0.08) > 1e-12 {
		t.Errorf("expected last coefficient 0.08, got %v", coeffs[7])
	}

	// Symmetry
	for i := 0; i < 4; i++ {
		if math.Abs(coeffs[i]-coeffs[7-i]) > 1e-12 {
			t.Errorf("coefficients not symmetric at %d: %v vs %v", i, coeffs[i], coeffs[7-i])
		}
	}
}

func TestHamming_PeriodicDiffersFromSymmetric(t *testing.T) {
	periodic := NewHamming(8, false).GetCoefficients()
	symmetric := NewHamming(8, true).GetCoefficients()

	same := true
	for i := range periodic {
		if periodic[i] != symmetric[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("periodic and symmetric windows should differ")
	}
}

func TestHamming_ApplyInPlace(t *testing.T) {
	h := NewHamming(4, false)
	signal := []float64{1, 1, 1, 1}
	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coeffs := h.GetCoefficients()
	for i := range signal {
		if math.Abs(signal[i]-coeffs[i]) > 1e-12 {
			t.Errorf("sample %d: expected %v, got %v", i, coeffs[i], signal[i])
		}
	}
}

func TestHamming_ApplyInPlace_LengthMismatch(t *testing.T) {
	h := NewHamming(8, false)
	if err := h.ApplyInPlace(make([]float64, 4)); err == nil {
		t.Error("expected error for mismatched signal length")
	}
}

func TestHann_Endpoints(t *testing.T) {
	h := NewHann(16, true)
	coeffs := h.GetCoefficients()

	if math.Abs(coeffs[0]) > 1e-12 {
		t.Errorf("expected first Hann coefficient 0, got %v", coeffs[0])
	}
	if math.Abs(coeffs[15]) > 1e-12 {
		t.Errorf("expected last Hann coefficient 0, got %v", coeffs[15])
	}
	if h.GetType() != "hann" {
		t.Errorf("unexpected window type %q", h.GetType())
	}
}
