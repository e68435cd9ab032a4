package repet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

const testSampleRate = 8000

// buildLoopMixture synthesizes a stereo mixture whose background is a
// 2.048 s loop of four half-second-ish notes, tiled to 4.096 s, plus
// channel-specific non-repeating noise. The loop length is 64 STFT frames
// at the default 512/256 analysis parameters for an 8 kHz signal.
func buildLoopMixture(noiseAmp float64) (mixture, clean [][]float64) {
	const (
		loopSamples  = 16384
		totalSamples = 2 * loopSamples
	)

	freqs := []float64{440, 660, 880, 550}
	amps := []float64{0.5, 0.4, 0.6, 0.45}

	loop := make([]float64, loopSamples)
	noteLen := loopSamples / len(freqs)
	for n := range loop {
		note := n / noteLen
		loop[n] = amps[note] * math.Sin(2*math.Pi*freqs[note]*float64(n)/testSampleRate)
	}

	gains := []float64{1.0, 0.8}
	mixture = make([][]float64, 2)
	clean = make([][]float64, 2)
	for c := range mixture {
		rng := rand.New(rand.NewSource(int64(100 + c)))
		mixture[c] = make([]float64, totalSamples)
		clean[c] = make([]float64, totalSamples)
		for n := range mixture[c] {
			background := gains[c] * loop[n%loopSamples]
			clean[c][n] = background
			mixture[c][n] = background + noiseAmp*(2*rng.Float64()-1)
		}
	}

	return mixture, clean
}

func TestSeparate_EndToEnd(t *testing.T) {
	mixture, clean := buildLoopMixture(0.1)

	var observed []float64
	cfg := DefaultConfig()
	cfg.PeriodRange = [2]float64{1.5, 3}
	cfg.OnBeatSpectrum = func(b []float64) {
		observed = append([]float64(nil), b...)
	}

	background, err := New(cfg).Separate(mixture, testSampleRate)
	require.NoError(t, err)
	require.Len(t, background, len(mixture))

	// The selected period must land within one frame of the true 64-frame
	// loop. The observer hands us the same beat spectrum the separator
	// used, so re-running the selector reproduces its choice.
	require.NotNil(t, observed)
	minLag := secondsToFrames(1.5, testSampleRate, 512, 256)
	maxLag := secondsToFrames(3, testSampleRate, 512, 256)
	period, err := RepeatingPeriod(observed, minLag, maxLag)
	require.NoError(t, err)
	assert.InDelta(t, 64, period, 1, "estimated period (frames)")

	// The background estimate should resemble the clean loop more than the
	// residual does.
	for c := range mixture {
		residual := make([]float64, len(mixture[c]))
		for i := range residual {
			residual[i] = mixture[c][i] - background[c][i]
		}

		bgCorr := stat.Correlation(background[c], clean[c], nil)
		resCorr := stat.Correlation(residual, clean[c], nil)
		assert.Greater(t, bgCorr, resCorr, "channel %d", c)
		assert.Greater(t, bgCorr, 0.8, "channel %d background correlation", c)
	}
}

func TestSeparate_ExactlyPeriodicInputIsReturned(t *testing.T) {
	mixture, _ := buildLoopMixture(0)

	// 2.04 s resolves to exactly the 64-frame loop length
	cfg := DefaultConfig()
	cfg.Period = 2.04

	background, err := New(cfg).Separate(mixture, testSampleRate)
	require.NoError(t, err)

	for c := range mixture {
		maxErr := 0.0
		for i := range mixture[c] {
			diff := math.Abs(background[c][i] - mixture[c][i])
			if diff > maxErr {
				maxErr = diff
			}
		}
		assert.Less(t, maxErr, 1e-8, "channel %d reconstruction error", c)
	}
}

func TestSeparate_ExplicitPeriodSkipsEstimation(t *testing.T) {
	mixture, _ := buildLoopMixture(0.05)

	estimatorRan := false
	cfg := DefaultConfig()
	cfg.Period = 0.5
	cfg.OnBeatSpectrum = func([]float64) { estimatorRan = true }

	background, err := New(cfg).Separate(mixture, testSampleRate)
	require.NoError(t, err)

	assert.False(t, estimatorRan, "beat spectrum must not be computed for an explicit period")
	require.Len(t, background, 2)
	for c := range background {
		assert.Len(t, background[c], len(mixture[c]))
	}
}

func TestSeparate_EstimationInvokesObserverOnce(t *testing.T) {
	mixture, _ := buildLoopMixture(0.05)

	calls := 0
	cfg := DefaultConfig()
	cfg.OnBeatSpectrum = func(b []float64) {
		calls++
		assert.NotEmpty(t, b)
	}

	_, err := New(cfg).Separate(mixture, testSampleRate)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSeparate_ShapeInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, channels := range []int{1, 2, 4} {
		mixture := make([][]float64, channels)
		for c := range mixture {
			mixture[c] = make([]float64, 9000)
			for i := range mixture[c] {
				mixture[c][i] = 2*rng.Float64() - 1
			}
		}

		cfg := DefaultConfig()
		cfg.Period = 0.3

		background, err := New(cfg).Separate(mixture, testSampleRate)
		require.NoError(t, err)
		require.Len(t, background, channels)
		for c := range background {
			assert.Len(t, background[c], 9000)
		}
	}
}

func TestSeparate_InputErrors(t *testing.T) {
	mixture, _ := buildLoopMixture(0.05)

	_, err := NewWithDefaults().Separate(nil, testSampleRate)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = NewWithDefaults().Separate([][]float64{{}}, testSampleRate)
	assert.ErrorIs(t, err, ErrEmptyInput)

	ragged := [][]float64{make([]float64, 100), make([]float64, 99)}
	_, err = NewWithDefaults().Separate(ragged, testSampleRate)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	cfg := DefaultConfig()
	cfg.Period = -1
	_, err = New(cfg).Separate(mixture, testSampleRate)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	cfg = DefaultConfig()
	cfg.PeriodRange = [2]float64{3, 1}
	_, err = New(cfg).Separate(mixture, testSampleRate)
	assert.ErrorIs(t, err, ErrInvalidRange)

	// A caller-specified range beyond the beat spectrum is rejected, not
	// clamped.
	cfg = DefaultConfig()
	cfg.PeriodRange = [2]float64{10, 12}
	_, err = New(cfg).Separate(mixture, testSampleRate)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestForceLowFrequencyBackground(t *testing.T) {
	mask := make([][]float64, 4)
	for i := range mask {
		mask[i] = make([]float64, 6)
	}

	forceLowFrequencyBackground(mask, 3)

	for tt := range mask {
		for f := range mask[tt] {
			want := 0.0
			if f < 3 {
				want = 1.0
			}
			if mask[tt][f] != want {
				t.Errorf("mask[%d][%d] = %v, expected %v", tt, f, mask[tt][f], want)
			}
		}
	}

	// Cutoff past the last bin covers every bin without panicking
	forceLowFrequencyBackground(mask, 100)
	for tt := range mask {
		for f := range mask[tt] {
			if mask[tt][f] != 1 {
				t.Errorf("mask[%d][%d] = %v, expected 1", tt, f, mask[tt][f])
			}
		}
	}
}

func TestSecondsToFrames(t *testing.T) {
	// 2.048 s at 8 kHz with a 512/256 analysis resolves past the 64-frame
	// loop boundary, while 2.04 s lands exactly on it.
	assert.Equal(t, 65, secondsToFrames(2.048, testSampleRate, 512, 256))
	assert.Equal(t, 64, secondsToFrames(2.04, testSampleRate, 512, 256))
	assert.Equal(t, 1, secondsToFrames(0.001, testSampleRate, 512, 256))
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 320: 512, 512: 512, 513: 1024}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, expected %d", in, got, want)
		}
	}
}
