package freqout

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/tphakala/go-audio-freqout/internal/filter"
	"github.com/tphakala/go-audio-freqout/internal/pipeline"
)

// Config holds the startup configuration of the I/O loop. It is read once
// by New and never consulted again.
type Config struct {
	// SampleRate in Hz. Must be a catalog rate.
	SampleRate uint32 `yaml:"sample_rate"`

	// BitDepth of the PCM samples at the block boundary (8, 16, 24 or 32).
	BitDepth uint16 `yaml:"bit_depth"`

	// Channels is the number of interleaved channels.
	Channels uint16 `yaml:"channels"`

	// BlockSize is the number of interleaved samples per block. It must be
	// a multiple of Channels.
	BlockSize int `yaml:"block_size"`

	// CutoffHz is the low-pass cutoff frequency.
	CutoffHz float64 `yaml:"cutoff_hz"`

	// FilterOrder is 1 or 2.
	FilterOrder int `yaml:"filter_order"`

	// YieldEvery is the number of blocks between liveness yields.
	YieldEvery int `yaml:"yield_every"`

	// Analyze enables per-channel polarity, zero-crossing and level
	// tracking of the input.
	Analyze bool `yaml:"analyze"`

	// ThresholdLow and ThresholdHigh enable partition means in the analysis
	// when ThresholdLow < ThresholdHigh. Values are normalized to [-1, 1).
	ThresholdLow  float64 `yaml:"threshold_low"`
	ThresholdHigh float64 `yaml:"threshold_high"`

	// DisableDeadline turns off stall and deadline detection, for offline
	// processing where the device is not clocked.
	DisableDeadline bool `yaml:"disable_deadline"`

	// StallTolerance is added to the block period when checking how long a
	// read or write may take. It absorbs wake-up jitter of devices paced by
	// a software timer; compute time is still held to the bare period.
	StallTolerance time.Duration `yaml:"stall_tolerance"`
}

// DefaultConfig returns the configuration of the reference hardware:
// 48 kHz, 32-bit mono, 128-sample blocks and a first-order 8 kHz low-pass.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:  DefaultSampleRate,
		BitDepth:    DefaultBitDepth,
		Channels:    DefaultChannels,
		BlockSize:   DefaultBlockSize,
		CutoffHz:    DefaultCutoffHz,
		FilterOrder: DefaultFilterOrder,
		YieldEvery:  DefaultYieldEvery,
	}
}

// LoadConfig reads a YAML configuration file. Fields absent from the file
// keep their DefaultConfig values. The result is not validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// TimeBase returns the validated time base of the configuration.
func (c *Config) TimeBase() (TimeBase, error) {
	return NewTimeBase(c.SampleRate, c.BitDepth, c.Channels)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	tb, err := c.TimeBase()
	if err != nil {
		return err
	}
	if _, err := Classify(c.SampleRate); err != nil {
		return err
	}

	if tb.BitDepth() > maxBitDepth {
		return fmt.Errorf("%w: %d bits exceeds %d", ErrInvalidBitsPerSample, tb.BitDepth(), maxBitDepth)
	}
	if tb.Channels() > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidNumChannels, maxChannels)
	}

	channels := int(c.Channels)
	if c.BlockSize < channels || c.BlockSize%channels != 0 {
		return fmt.Errorf("%w: block size %d is not a positive multiple of %d channels",
			ErrInvalidConfig, c.BlockSize, channels)
	}

	if !(c.CutoffHz > 0) || math.IsInf(c.CutoffHz, 0) {
		return fmt.Errorf("%w: cutoff must be positive and finite", ErrInvalidConfig)
	}
	if alpha := 2 * math.Pi * c.CutoffHz / float64(c.SampleRate); alpha >= filter.MaxAlpha {
		return fmt.Errorf("%w: cutoff %g Hz is too high for %d Hz (dt·ω = %.3f, limit %g)",
			ErrInvalidConfig, c.CutoffHz, c.SampleRate, alpha, filter.MaxAlpha)
	}

	switch filter.Order(c.FilterOrder) {
	case filter.OrderFirst, filter.OrderSecond:
	default:
		return fmt.Errorf("%w: filter order must be %d or %d",
			ErrInvalidConfig, filter.OrderFirst, filter.OrderSecond)
	}

	if c.YieldEvery < 1 {
		return fmt.Errorf("%w: yield cadence must be at least 1 block", ErrInvalidConfig)
	}

	if c.StallTolerance < 0 {
		return fmt.Errorf("%w: stall tolerance must not be negative", ErrInvalidConfig)
	}

	if math.IsNaN(c.ThresholdLow) || math.IsNaN(c.ThresholdHigh) || c.ThresholdLow > c.ThresholdHigh {
		return fmt.Errorf("%w: thresholds must satisfy low <= high", ErrInvalidConfig)
	}

	return nil
}

// pipelineSpec maps the configuration onto the processing chain.
func (c *Config) pipelineSpec() pipeline.Spec {
	return pipeline.Spec{
		SampleRate:    float64(c.SampleRate),
		Channels:      int(c.Channels),
		BlockSize:     c.BlockSize,
		CutoffHz:      c.CutoffHz,
		Order:         filter.Order(c.FilterOrder),
		Analyze:       c.Analyze,
		ThresholdLow:  c.ThresholdLow,
		ThresholdHigh: c.ThresholdHigh,
	}
}
