package freqout

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-freqout/internal/testutil"
)

func TestAnalyzeSamples_Sine(t *testing.T) {
	const rate = 48000.0
	sine := testutil.Sine(48000, 1000, rate, 0.5)

	r := AnalyzeSamples(sine, rate, -0.25, 0.25)
	assert.Equal(t, len(sine), r.Samples)
	testutil.AssertRelativeError(t, 1000, r.FrequencyHz, 1e-3)
	assert.InDelta(t, 0, r.Mean, 1e-3)
	assert.InDelta(t, 0.5/math.Sqrt2, r.TrueRMS, 1e-3)
	assert.InDelta(t, r.TrueRMS/math.Sqrt(float64(len(sine))), r.RMS, 1e-9)
	assert.InDelta(t, 0.5, r.Peak, 1e-3)
	assert.True(t, r.Partition.Low.Valid())
	assert.True(t, r.Partition.High.Valid())
	assert.InDelta(t, -r.Partition.High.Value, r.Partition.Low.Value, 1e-3)
}

func TestAnalyzeSamples_EdgeCases(t *testing.T) {
	r := AnalyzeSamples(nil, 48000, 0, 0)
	assert.Equal(t, PolarityUndetermined, r.Polarity)
	assert.Zero(t, r.Mean)
	assert.Zero(t, r.RMS)
	assert.Zero(t, r.FrequencyHz)

	r = AnalyzeSamples([]float64{0, 0, 0}, 48000, -1, 1)
	assert.Equal(t, PolarityUndetermined, r.Polarity)
	assert.False(t, r.Partition.Low.Valid())
	assert.False(t, r.Partition.High.Valid())

	r = AnalyzeSamples([]float64{1, -1, 1, -1}, 4, 0, 0)
	assert.Equal(t, uint64(3), r.ZeroCrossings)
	assert.Equal(t, PolarityNegative, r.Polarity)
}

func TestFilterSamples(t *testing.T) {
	dc := []float64{0.25, 0.25, 0.25, 0.25}
	out, err := FilterSamples(dc, 48000, 1000, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, dc, out, testutil.DefaultTolerance)
	assert.NotSame(t, &dc[0], &out[0])

	// High frequencies are attenuated.
	hf := testutil.Sine(4800, 12000, 48000, 1)
	out, err = FilterSamples(hf, 48000, 1000, 1)
	require.NoError(t, err)
	assert.Less(t, AnalyzeSamples(out[480:], 48000, 0, 0).Peak, 0.2)

	_, err = FilterSamples(dc, 48000, 20000, 1)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFilterSamplesFloat32(t *testing.T) {
	in := []float32{0.5, 0.5, 0.5}
	out, err := FilterSamplesFloat32(in, 48000, 1000, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5}, out, 1e-6)

	_, err = FilterSamplesFloat32(in, 48000, 1000, 5)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func writeWAV(t *testing.T, rate, bitDepth, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, bitDepth, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	return path
}

func TestProcessWAV_PreservesLengthAndDC(t *testing.T) {
	const frames = 1001 // not a whole number of blocks
	data := make([]int, 0, 2*frames)
	for range frames {
		data = append(data, 1000, -500)
	}
	inPath := writeWAV(t, RateDAT, 16, 2, data)

	in, err := os.Open(inPath)
	require.NoError(t, err)
	defer in.Close()
	outPath := filepath.Join(t.TempDir(), "out.wav")
	out, err := os.Create(outPath)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BlockSize = 127 // rounded up to whole stereo frames
	cfg.Analyze = true
	stats, err := ProcessWAV(cfg, in, out, WithLogger(discardLogger()))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	assert.Equal(t, uint64((2*frames+127)/128), stats.Blocks)
	require.Len(t, stats.Channels, 2)
	assert.Equal(t, PolarityPositive, stats.Channels[0].Polarity)
	assert.Equal(t, PolarityNegative, stats.Channels[1].Polarity)

	check, err := os.Open(outPath)
	require.NoError(t, err)
	defer check.Close()
	dec := wav.NewDecoder(check)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 16, int(dec.BitDepth))
	assert.Equal(t, 2, int(dec.NumChans))
	assert.Equal(t, data, buf.Data)
}

func TestProcessWAV_RejectsUnknownRate(t *testing.T) {
	inPath := writeWAV(t, 50000, 16, 1, []int{1, 2, 3})
	in, err := os.Open(inPath)
	require.NoError(t, err)
	defer in.Close()
	outPath := filepath.Join(t.TempDir(), "out.wav")
	out, err := os.Create(outPath)
	require.NoError(t, err)

	_, err = ProcessWAV(nil, in, out, WithLogger(discardLogger()))
	require.ErrorIs(t, err, ErrInvalidSampleRate)
	require.NoError(t, out.Close())

	// The output is still a finalized, empty WAV file.
	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, int64(44), info.Size())

	check, err := os.Open(outPath)
	require.NoError(t, err)
	defer check.Close()
	dec := wav.NewDecoder(check)
	dec.ReadInfo()
	require.NoError(t, dec.Err())
	assert.Equal(t, 50000, int(dec.SampleRate))
	assert.Equal(t, 1, int(dec.NumChans))
}

func TestRoundToFrames(t *testing.T) {
	assert.Equal(t, 128, roundToFrames(127, 2))
	assert.Equal(t, 128, roundToFrames(128, 2))
	assert.Equal(t, 6, roundToFrames(1, 6))
	assert.Equal(t, 129, roundToFrames(128, 3))
}
