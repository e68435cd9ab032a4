package repet

import "errors"

// Sentinel errors for precondition violations. Each is detected at the
// boundary of the component that first observes it and wrapped with context
// via fmt.Errorf("%w", ...); callers match with errors.Is.
var (
	// ErrInvalidRange reports period-search bounds outside the valid lag
	// interval [1, beat-spectrum length - 1], or min > max.
	ErrInvalidRange = errors.New("invalid period search range")

	// ErrInvalidPeriod reports a resolved repeating period below one frame.
	ErrInvalidPeriod = errors.New("invalid repeating period")

	// ErrEmptyInput reports a zero-length signal, zero frequency bins or
	// zero time frames.
	ErrEmptyInput = errors.New("empty input")

	// ErrShapeMismatch reports inconsistent channel or sample counts
	// between the waveform and its spectrograms.
	ErrShapeMismatch = errors.New("shape mismatch")
)
