package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialPolarity(t *testing.T) {
	tests := []struct {
		name string
		buf  []float64
		want Polarity
	}{
		{"first_positive", []float64{0, 0, 0.5, -1}, Positive},
		{"first_negative", []float64{0, -0.25, 1}, Negative},
		{"all_zero", []float64{0, 0, 0}, Undetermined},
		{"empty", nil, Undetermined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialPolarity(tt.buf))
		})
	}
}

func TestPolarity_Flip(t *testing.T) {
	assert.Equal(t, Negative, Positive.Flip())
	assert.Equal(t, Positive, Negative.Flip())
	assert.Equal(t, Undetermined, Undetermined.Flip())
	assert.Equal(t, "positive", Positive.String())
	assert.Equal(t, "undetermined", Undetermined.String())
}

func TestCountZeroCrossings_AlternatingSignal(t *testing.T) {
	polarity := Positive
	var counter uint64

	n := CountZeroCrossings([]float64{+1, -1, +1, -1}, &polarity, &counter)

	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(3), counter, "caller's counter must be updated")
	assert.Equal(t, Negative, polarity)
}

func TestCountZeroCrossings_AccumulatesAcrossBlocks(t *testing.T) {
	polarity := Positive
	var counter uint64

	CountZeroCrossings([]float64{1, 1, -1}, &polarity, &counter)
	CountZeroCrossings([]float64{-1, 1}, &polarity, &counter)

	assert.Equal(t, uint64(2), counter)
	assert.Equal(t, Positive, polarity)
}

func TestCountZeroCrossings_ZerosDoNotFlip(t *testing.T) {
	polarity := Positive
	var counter uint64

	n := CountZeroCrossings([]float64{0, 0, 1, 0, -1, 0, 0}, &polarity, &counter)

	assert.Equal(t, 1, n)
	assert.Equal(t, Negative, polarity)
}

func TestCountZeroCrossings_SeedsUndetermined(t *testing.T) {
	polarity := Undetermined
	var counter uint64

	n := CountZeroCrossings([]float64{0, -1, -2, 3}, &polarity, &counter)

	assert.Equal(t, 1, n, "seeding from the first nonzero sample is not a crossing")
	assert.Equal(t, Positive, polarity)

	polarity = Undetermined
	counter = 0
	assert.Zero(t, CountZeroCrossings([]float64{0, 0}, &polarity, &counter))
	assert.Equal(t, Undetermined, polarity)
}

// TestCountZeroCrossings_Sine checks that a sine yields two crossings per cycle.
func TestCountZeroCrossings_Sine(t *testing.T) {
	const (
		sampleRate = 48000.0
		frequency  = 1000.0
		samples    = 4800 // 100 cycles
	)

	buf := make([]float64, samples)
	for i := range buf {
		// quarter-sample phase offset keeps samples off exact zeros
		buf[i] = math.Sin(2 * math.Pi * frequency * (float64(i) + 0.25) / sampleRate)
	}

	polarity := InitialPolarity(buf)
	require.Equal(t, Positive, polarity)

	var counter uint64
	CountZeroCrossings(buf, &polarity, &counter)
	assert.InDelta(t, 199, float64(counter), 1)
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, 2.5, float64(Mean([]float32{1, 2, 3, 4})), 1e-6)
	assert.Zero(t, Mean[float64](nil))
}

// TestRMS_LegacyFormula pins sqrt(Σx²)/n and its relation to the conventional RMS.
func TestRMS_LegacyFormula(t *testing.T) {
	buf := []float64{1, -1, 1, -1}

	assert.InDelta(t, 2.0/4.0, RMS(buf), 1e-12)
	assert.InDelta(t, 1.0, TrueRMS(buf), 1e-12)
	assert.InDelta(t, TrueRMS(buf)/math.Sqrt(float64(len(buf))), RMS(buf), 1e-12)

	assert.Zero(t, RMS[float64](nil))
	assert.Zero(t, TrueRMS[float64](nil))
}

func TestPeak(t *testing.T) {
	assert.InDelta(t, 0.9, Peak([]float64{0.1, -0.9, 0.5}), 1e-12)
	assert.Zero(t, Peak[float64](nil))
}

func TestPartitionMeans(t *testing.T) {
	p := PartitionMeans([]float64{1, 2, 3, 4, 5}, 2, 3)

	require.True(t, p.Low.Valid())
	require.True(t, p.High.Valid())
	assert.InDelta(t, 1.0, p.Low.Value, 1e-12)
	assert.Equal(t, 1, p.Low.Count)
	assert.InDelta(t, 4.5, p.High.Value, 1e-12)
	assert.Equal(t, 2, p.High.Count)
}

func TestPartitionMeans_EmptyPartitions(t *testing.T) {
	p := PartitionMeans([]float64{2, 2, 2}, 1, 5)

	assert.False(t, p.Low.Valid())
	assert.False(t, p.High.Valid())
	assert.Zero(t, p.Low.Value)
	assert.Zero(t, p.High.Value)

	empty := PartitionMeans[float64](nil, 0, 0)
	assert.False(t, empty.Low.Valid())
	assert.False(t, empty.High.Valid())
}

func TestPartitionMeans_OverlappingThresholds(t *testing.T) {
	// every sample is below low; none is double counted as high
	p := PartitionMeans([]float64{1, 2, 3}, 10, 0)

	assert.Equal(t, 3, p.Low.Count)
	assert.InDelta(t, 2.0, p.Low.Value, 1e-12)
	assert.False(t, p.High.Valid())
}

func TestAnalysis_NoAllocations(t *testing.T) {
	buf := make([]float64, 128)
	for i := range buf {
		buf[i] = math.Sin(float64(i))
	}
	polarity := Undetermined
	var counter uint64

	allocs := testing.AllocsPerRun(100, func() {
		_ = Mean(buf)
		_ = RMS(buf)
		_ = PartitionMeans(buf, -0.5, 0.5)
		CountZeroCrossings(buf, &polarity, &counter)
	})
	assert.Zero(t, allocs)
}
