package freqout

import (
	"fmt"
	"io"

	"github.com/tphakala/go-audio-freqout/internal/analysis"
	"github.com/tphakala/go-audio-freqout/internal/device"
	"github.com/tphakala/go-audio-freqout/internal/filter"
)

// Partition holds the thresholded means of a signal.
type Partition = analysis.Partition[float64]

// SignalReport summarizes one channel of a signal.
type SignalReport struct {
	Samples       int
	Polarity      Polarity // of the last nonzero sample
	ZeroCrossings uint64
	Mean          float64
	RMS           float64 // legacy sqrt(Σx²)/n
	TrueRMS       float64 // sqrt(Σx²/n)
	Peak          float64
	Partition     Partition

	// Frequency estimated from the zero-crossing rate, 0 when unknown.
	FrequencyHz float64
}

// AnalyzeSamples reports the statistics of one channel of normalized
// samples. Partition means are computed when thresholdLow < thresholdHigh.
func AnalyzeSamples(samples []float64, sampleRate, thresholdLow, thresholdHigh float64) SignalReport {
	r := SignalReport{
		Samples: len(samples),
		Mean:    analysis.Mean(samples),
		RMS:     analysis.RMS(samples),
		TrueRMS: analysis.TrueRMS(samples),
		Peak:    analysis.Peak(samples),
	}
	analysis.CountZeroCrossings(samples, &r.Polarity, &r.ZeroCrossings)
	if thresholdLow < thresholdHigh {
		r.Partition = analysis.PartitionMeans(samples, thresholdLow, thresholdHigh)
	}
	if len(samples) > 0 && sampleRate > 0 {
		seconds := float64(len(samples)) / sampleRate
		r.FrequencyHz = float64(r.ZeroCrossings) / 2 / seconds
	}
	return r
}

// FilterSamples returns a low-pass filtered copy of samples.
func FilterSamples(samples []float64, sampleRate, cutoffHz float64, order int) ([]float64, error) {
	f, err := filter.NewForCutoff[float64](sampleRate, cutoffHz, filter.Order(order))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	out := make([]float64, len(samples))
	copy(out, samples)
	f.Process(out)
	return out, nil
}

// FilterSamplesFloat32 is like FilterSamples but for float32 samples.
func FilterSamplesFloat32(samples []float32, sampleRate, cutoffHz float64, order int) ([]float32, error) {
	f, err := filter.NewForCutoff[float32](sampleRate, cutoffHz, filter.Order(order))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	out := make([]float32, len(samples))
	copy(out, samples)
	f.Process(out)
	return out, nil
}

// ProcessWAV runs the pipeline offline from a WAV stream to another. The
// stream layout of cfg is taken from the input header and deadline checks
// are disabled. The output has exactly as many samples as the input.
func ProcessWAV(cfg *Config, in io.ReadSeeker, out io.WriteSeeker, opts ...Option) (Stats, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg

	c.BlockSize = max(c.BlockSize, 1)

	// Room to round the block up to whole frames of any channel count.
	src, err := device.NewWAVSource(in, c.BlockSize+maxChannels)
	if err != nil {
		return Stats{}, err
	}
	f := src.Format()
	c.SampleRate = uint32(f.SampleRate)
	c.BitDepth = uint16(f.BitDepth)
	c.Channels = uint16(f.Channels)
	c.BlockSize = roundToFrames(c.BlockSize, f.Channels)
	c.DisableDeadline = true

	sink, err := device.NewWAVSink(out, f, c.BlockSize)
	if err != nil {
		return Stats{}, err
	}
	dev := device.NewWAVFile(src, sink)

	// On failure the output is still finalized; the first error wins.
	p, err := New(&c, dev, opts...)
	if err != nil {
		_ = dev.Close()
		return Stats{}, err
	}
	if err := p.Run(); err != nil {
		_ = dev.Close()
		return p.Stats(), err
	}
	if err := dev.Close(); err != nil {
		return p.Stats(), fmt.Errorf("failed to finalize WAV output: %w", err)
	}
	p.logger.Debug("wav processed", "samples", dev.Samples())
	return p.Stats(), nil
}

// roundToFrames rounds n up to a positive multiple of channels.
func roundToFrames(n, channels int) int {
	if n < channels {
		return channels
	}
	if rem := n % channels; rem != 0 {
		n += channels - rem
	}
	return n
}
