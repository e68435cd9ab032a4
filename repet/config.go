package repet

// Config holds the separation parameters. The zero value of every field has
// a documented meaning, so callers usually start from DefaultConfig and
// override what they need.
type Config struct {
	// Period is the exact repeating period in seconds. When positive, the
	// beat-spectrum estimation and period selection stages are skipped
	// entirely and this value is used for every channel.
	Period float64 `json:"period,omitempty"`

	// PeriodRange is the [min, max] search range for the repeating period,
	// in seconds. The zero value selects the default range
	// [0.8, min(8, duration/3)]. Ignored when Period is set.
	PeriodRange [2]float64 `json:"period_range,omitempty"`

	// WindowDuration is the STFT analysis window length in seconds; the
	// actual window size is rounded up to the next power of two samples.
	WindowDuration float64 `json:"window_duration"`

	// Overlap is the analysis window overlap as a fraction of the window
	// size.
	Overlap float64 `json:"overlap"`

	// HighPassCutoff is the cutoff frequency in Hz below which every
	// time-frequency cell is attributed to the repeating background.
	// Zero disables the override.
	HighPassCutoff float64 `json:"high_pass_cutoff"`

	// WindowType selects the analysis/synthesis window: "hamming" or
	// "hann".
	WindowType string `json:"window_type"`

	// OnBeatSpectrum, when non-nil, is invoked with the computed beat
	// spectrum before period selection. It is a diagnostic hook only and
	// never affects the returned waveform; it is not called when Period
	// is set. The callback must not retain the slice.
	OnBeatSpectrum func(b []float64) `json:"-"`
}

// Default parameter values.
const (
	DefaultWindowDuration = 0.04  // 40 ms analysis window
	DefaultOverlap        = 0.5   // 50% overlap
	DefaultHighPassCutoff = 100.0 // Hz
	DefaultPeriodMin      = 0.8   // seconds, lower bound of the default search range
	DefaultPeriodMax      = 8.0   // seconds, upper bound cap of the default search range
)

// DefaultConfig returns the standard REPET parameters
func DefaultConfig() Config {
	return Config{
		WindowDuration: DefaultWindowDuration,
		Overlap:        DefaultOverlap,
		HighPassCutoff: DefaultHighPassCutoff,
		WindowType:     "hamming",
	}
}
