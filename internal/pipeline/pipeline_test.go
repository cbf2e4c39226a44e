package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-freqout/internal/analysis"
	"github.com/tphakala/go-audio-freqout/internal/filter"
	"github.com/tphakala/go-audio-freqout/internal/testutil"
)

const (
	testRate   = 48000.0
	testCutoff = 1000.0
	testFrames = 256
)

func monoSpec() Spec {
	return Spec{
		SampleRate: testRate,
		Channels:   1,
		BlockSize:  testFrames,
		CutoffHz:   testCutoff,
		Order:      filter.OrderFirst,
	}
}

func stereoSpec() Spec {
	s := monoSpec()
	s.Channels = 2
	s.BlockSize = 2 * testFrames
	s.Analyze = true
	return s
}

func interleave(left, right []float64) []float64 {
	out := make([]float64, 0, len(left)+len(right))
	for i := range left {
		out = append(out, left[i], right[i])
	}
	return out
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr bool
	}{
		{"valid", func(*Spec) {}, false},
		{"zero_rate", func(s *Spec) { s.SampleRate = 0 }, true},
		{"nan_rate", func(s *Spec) { s.SampleRate = math.NaN() }, true},
		{"no_channels", func(s *Spec) { s.Channels = 0 }, true},
		{"block_smaller_than_frame", func(s *Spec) { s.Channels = 2; s.BlockSize = 1 }, true},
		{"block_not_multiple", func(s *Spec) { s.Channels = 2; s.BlockSize = 7 }, true},
		{"stereo_even_block", func(s *Spec) { s.Channels = 2; s.BlockSize = 8 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := monoSpec()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSpec)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBuild_Stages(t *testing.T) {
	p, err := Build(monoSpec())
	require.NoError(t, err)
	require.Len(t, p.GetStages(), 1)
	assert.Equal(t, StageLowPass, p.GetStages()[0].Type())
	assert.Nil(t, p.Analysis())

	p, err = Build(stereoSpec())
	require.NoError(t, err)
	require.Len(t, p.GetStages(), 2)
	assert.Equal(t, StageAnalysis, p.GetStages()[0].Type())
	assert.Equal(t, StageLowPass, p.GetStages()[1].Type())
	assert.NotNil(t, p.Analysis())
	assert.Equal(t, 2*testFrames, p.Spec().BlockSize)
}

func TestBuild_RejectsUnstableCutoff(t *testing.T) {
	s := monoSpec()
	s.CutoffHz = testRate // alpha = 2π
	_, err := Build(s)
	require.ErrorIs(t, err, filter.ErrInvalidParams)

	s = monoSpec()
	s.BlockSize = 0
	_, err = Build(s)
	require.ErrorIs(t, err, ErrInvalidSpec)
}

func TestStageType_String(t *testing.T) {
	assert.Equal(t, "analysis", StageAnalysis.String())
	assert.Equal(t, "lowpass", StageLowPass.String())
	assert.Equal(t, "stage(7)", StageType(7).String())
}

func TestPipeline_MonoMatchesFilter(t *testing.T) {
	p, err := Build(monoSpec())
	require.NoError(t, err)

	ref, err := filter.NewForCutoff[float64](testRate, testCutoff, filter.OrderFirst)
	require.NoError(t, err)

	signal := testutil.Sine(4*testFrames, 3000, testRate, 0.8)
	want := append([]float64(nil), signal...)
	ref.Process(want)

	got := append([]float64(nil), signal...)
	for off := 0; off < len(got); off += testFrames {
		p.Process(got[off : off+testFrames])
	}

	assert.InDeltaSlice(t, want, got, testutil.DefaultTolerance)
	assert.True(t, p.LowPass().Filter(0).Running())
}

func TestPipeline_StereoChannelsIndependent(t *testing.T) {
	p, err := Build(stereoSpec())
	require.NoError(t, err)

	left := testutil.Sine(testFrames, 5000, testRate, 0.9)
	right := make([]float64, testFrames)
	for i := range right {
		right[i] = 0.25
	}
	block := interleave(left, right)
	p.Process(block)

	ref, err := filter.NewForCutoff[float64](testRate, testCutoff, filter.OrderFirst)
	require.NoError(t, err)
	wantLeft := append([]float64(nil), left...)
	ref.Process(wantLeft)

	for i := range testFrames {
		assert.InDelta(t, wantLeft[i], block[2*i], testutil.DefaultTolerance, "left frame %d", i)
		assert.InDelta(t, 0.25, block[2*i+1], testutil.DefaultTolerance, "right frame %d", i)
	}
	testutil.AssertNoNaNOrInf(t, block)
}

func TestPipeline_AnalysisStats(t *testing.T) {
	s := stereoSpec()
	s.ThresholdLow = -0.1
	s.ThresholdHigh = 0.1
	p, err := Build(s)
	require.NoError(t, err)

	left := make([]float64, testFrames)
	right := make([]float64, testFrames)
	for i := range left {
		left[i] = 0.5
		if i%2 == 1 {
			left[i] = -0.5
		}
		right[i] = 0.25
	}
	p.Process(interleave(left, right))

	stats := p.Analysis().Snapshot(nil)
	require.Len(t, stats, 2)

	assert.Equal(t, uint64(testFrames-1), stats[0].ZeroCrossings)
	assert.Equal(t, analysis.Negative, stats[0].Polarity)
	assert.InDelta(t, 0.0, stats[0].Mean, testutil.DefaultTolerance)
	assert.InDelta(t, 0.5, stats[0].Peak, testutil.DefaultTolerance)
	assert.Equal(t, testFrames/2, stats[0].Partition.Low.Count)
	assert.Equal(t, testFrames/2, stats[0].Partition.High.Count)
	assert.InDelta(t, -0.5, stats[0].Partition.Low.Value, testutil.DefaultTolerance)
	assert.InDelta(t, 0.5, stats[0].Partition.High.Value, testutil.DefaultTolerance)

	assert.Equal(t, uint64(0), stats[1].ZeroCrossings)
	assert.Equal(t, analysis.Positive, stats[1].Polarity)
	assert.InDelta(t, 0.25, stats[1].Mean, testutil.DefaultTolerance)
	assert.InDelta(t, math.Sqrt(testFrames*0.0625)/testFrames, stats[1].RMS, testutil.DefaultTolerance)
	assert.False(t, stats[1].Partition.Low.Valid())
	assert.True(t, stats[1].Partition.High.Valid())

	// Crossings accumulate across blocks; the boundary between blocks counts.
	p.Process(interleave(left, right))
	stats = p.Analysis().Snapshot(stats[:0])
	assert.Equal(t, uint64(2*testFrames-1), stats[0].ZeroCrossings)
}

func TestPipeline_Reset(t *testing.T) {
	p, err := Build(stereoSpec())
	require.NoError(t, err)

	block := interleave(testutil.Sine(testFrames, 440, testRate, 0.5), testutil.Sine(testFrames, 880, testRate, 0.5))
	p.Process(block)
	require.True(t, p.LowPass().Filter(1).Running())

	p.Reset()

	assert.False(t, p.LowPass().Filter(0).Running())
	assert.False(t, p.LowPass().Filter(1).Running())
	for _, st := range p.Analysis().Snapshot(nil) {
		assert.Equal(t, ChannelStats{}, st)
	}
}

func TestLowPassStage_NonFiniteRecovery(t *testing.T) {
	p, err := Build(monoSpec())
	require.NoError(t, err)

	block := []float64{math.NaN(), 0.5, 0.5, 0.5}
	p.Process(block)

	assert.Equal(t, 0.0, block[0])
	assert.InDelta(t, 0.5, block[1], testutil.DefaultTolerance)
	assert.InDelta(t, 0.5, block[3], testutil.DefaultTolerance)
	assert.Equal(t, uint64(1), p.LowPass().Resets())
	testutil.AssertNoNaNOrInf(t, block)
}

func TestPipeline_NoAllocations(t *testing.T) {
	s := stereoSpec()
	s.ThresholdLow = -0.5
	s.ThresholdHigh = 0.5
	s.Order = filter.OrderSecond
	p, err := Build(s)
	require.NoError(t, err)

	block := interleave(testutil.Sine(testFrames, 440, testRate, 0.7), testutil.Sine(testFrames, 660, testRate, 0.7))
	stats := make([]ChannelStats, 0, s.Channels)

	allocs := testing.AllocsPerRun(100, func() {
		p.Process(block)
		stats = p.Analysis().Snapshot(stats[:0])
	})
	assert.Zero(t, allocs)
}

func BenchmarkPipeline_StereoBlock(b *testing.B) {
	p, err := Build(stereoSpec())
	require.NoError(b, err)

	block := interleave(testutil.Sine(testFrames, 440, testRate, 0.7), testutil.Sine(testFrames, 660, testRate, 0.7))

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		p.Process(block)
	}
}
