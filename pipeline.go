package freqout

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tphakala/go-audio-freqout/internal/analysis"
	"github.com/tphakala/go-audio-freqout/internal/convert"
	"github.com/tphakala/go-audio-freqout/internal/pipeline"
)

// Polarity is the sign of the most recent nonzero sample of a channel.
type Polarity = analysis.Polarity

// Polarity values.
const (
	PolarityUndetermined = analysis.Undetermined
	PolarityPositive     = analysis.Positive
	PolarityNegative     = analysis.Negative
)

// ChannelStats is the analysis state of one channel.
type ChannelStats = pipeline.ChannelStats

// Stats is a snapshot of the loop counters.
type Stats struct {
	Blocks        uint64        // blocks processed
	Yields        uint64        // liveness feeds
	SkippedYields uint64        // yields dropped for lack of slack
	FilterResets  uint64        // filter resets after non-finite output
	WorstCompute  time.Duration // longest block processing time
	LastCompute   time.Duration // processing time of the last block

	// Channels holds per-channel analysis, or nil when analysis is off.
	Channels []ChannelStats
}

// Clock supplies the time used for deadline and stall detection.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLiveness sets the hook fed every YieldEvery blocks. The default
// yields the processor with runtime.Gosched.
func WithLiveness(l Liveness) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.liveness = l
		}
	}
}

// WithLogger sets the logger for start, stop and fault messages. The
// default is slog.Default(). Nothing is logged per block.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// Pipeline is the block I/O loop: read one block from the device, convert
// it to normalized samples, analyze and low-pass filter it, convert it back
// and write it out, all within one block period.
//
// Every buffer and filter is allocated by New; Step does not allocate.
// A Pipeline is driven by a single goroutine.
type Pipeline struct {
	cfg    Config
	tb     TimeBase
	class  SampleRateClass
	dev    BlockDevice
	codec  convert.Codec
	conv   *convert.Converter[float64]
	chain  *pipeline.Pipeline
	period time.Duration

	raw    []byte
	ints   []int32
	floats []float64

	liveness Liveness
	logger   *slog.Logger
	clock    Clock

	blocks        uint64
	yields        uint64
	skippedYields uint64
	worstCompute  time.Duration
	lastCompute   time.Duration
}

// New validates cfg and builds a pipeline that exchanges blocks with dev.
func New(cfg *Config, dev BlockDevice, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if dev == nil {
		return nil, fmt.Errorf("%w: block device is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tb, err := cfg.TimeBase()
	if err != nil {
		return nil, err
	}
	class, err := Classify(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	codec, err := convert.NewCodec(int(tb.SampleWidth()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBitsPerSample, err)
	}
	conv, err := convert.New[float64](int(tb.BitDepth()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBitsPerSample, err)
	}
	chain, err := pipeline.Build(cfg.pipelineSpec())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	p := &Pipeline{
		cfg:      *cfg,
		tb:       tb,
		class:    class,
		dev:      dev,
		codec:    codec,
		conv:     conv,
		chain:    chain,
		period:   tb.BlockPeriod(cfg.BlockSize),
		raw:      make([]byte, cfg.BlockSize*int(tb.SampleWidth())),
		ints:     make([]int32, cfg.BlockSize),
		floats:   make([]float64, cfg.BlockSize),
		liveness: goschedLiveness,
		logger:   slog.Default(),
		clock:    systemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Step runs one cycle of the loop. It returns io.EOF, unwrapped, when the
// device has no more input.
func (p *Pipeline) Step() error {
	start := p.clock.Now()
	if err := p.dev.ReadBlock(p.raw); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("%w: read: %w", ErrTransferFault, err)
	}
	readDone := p.clock.Now()
	if elapsed := readDone.Sub(start); p.timed() && elapsed > p.stallLimit() {
		return fmt.Errorf("%w: read took %v, block period %v", ErrTransferStall, elapsed, p.period)
	}

	p.codec.Decode(p.ints, p.raw)
	p.conv.ToFloat(p.floats, p.ints)
	p.chain.Process(p.floats)
	p.conv.ToInt(p.ints, p.floats)
	p.codec.Encode(p.raw, p.ints)

	computeDone := p.clock.Now()
	compute := computeDone.Sub(readDone)
	p.lastCompute = compute
	p.worstCompute = max(p.worstCompute, compute)
	if p.timed() && compute > p.period {
		return fmt.Errorf("%w: processing took %v, block period %v", ErrDeadlineMissed, compute, p.period)
	}

	if err := p.dev.WriteBlock(p.raw); err != nil {
		return fmt.Errorf("%w: write: %w", ErrTransferFault, err)
	}
	writeDone := p.clock.Now()
	if elapsed := writeDone.Sub(computeDone); p.timed() && elapsed > p.stallLimit() {
		return fmt.Errorf("%w: write took %v, block period %v", ErrTransferStall, elapsed, p.period)
	}

	p.blocks++
	if p.blocks%uint64(p.cfg.YieldEvery) == 0 {
		p.yield(writeDone.Sub(readDone))
	}
	return nil
}

func (p *Pipeline) timed() bool { return !p.cfg.DisableDeadline }

// stallLimit is the longest a single transfer may take.
func (p *Pipeline) stallLimit() time.Duration { return p.period + p.cfg.StallTolerance }

// yield feeds the liveness hook with the slack left in the block period
// once the block has been processed and written.
func (p *Pipeline) yield(busy time.Duration) {
	budget := p.period - busy
	if budget <= 0 {
		p.skippedYields++
		return
	}
	p.liveness.Feed(budget)
	p.yields++
}

// Run calls Step until the device runs out of input, in which case it
// returns nil, or until a fault, which it returns. There is no other way to
// stop the loop; the host ends it by closing the device.
func (p *Pipeline) Run() error {
	p.logger.Info("pipeline started",
		"timebase", p.tb.String(),
		"class", p.class.String(),
		"block_size", p.cfg.BlockSize,
		"block_period", p.period,
		"cutoff_hz", p.cfg.CutoffHz,
		"filter_order", p.cfg.FilterOrder,
		"deadline", p.timed(),
		"stall_tolerance", p.cfg.StallTolerance)

	for {
		err := p.Step()
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			p.logger.Info("pipeline stopped",
				"blocks", p.blocks,
				"worst_compute", p.worstCompute,
				"filter_resets", p.chain.LowPass().Resets())
			return nil
		}
		p.logger.Error("pipeline fault", "error", err, "blocks", p.blocks)
		return err
	}
}

// Reset clears filter and analysis state and the loop counters.
func (p *Pipeline) Reset() {
	p.chain.Reset()
	p.blocks = 0
	p.yields = 0
	p.skippedYields = 0
	p.worstCompute = 0
	p.lastCompute = 0
}

// Stats returns a snapshot of the loop counters and channel analysis.
func (p *Pipeline) Stats() Stats {
	s := Stats{
		Blocks:        p.blocks,
		Yields:        p.yields,
		SkippedYields: p.skippedYields,
		FilterResets:  p.chain.LowPass().Resets(),
		WorstCompute:  p.worstCompute,
		LastCompute:   p.lastCompute,
	}
	if a := p.chain.Analysis(); a != nil {
		s.Channels = a.Snapshot(make([]ChannelStats, 0, p.tb.Channels()))
	}
	return s
}

// Config returns a copy of the configuration the pipeline was built from.
func (p *Pipeline) Config() Config { return p.cfg }

// TimeBase returns the stream time base.
func (p *Pipeline) TimeBase() TimeBase { return p.tb }

// Class returns the catalog classification of the sample rate.
func (p *Pipeline) Class() SampleRateClass { return p.class }

// BlockBytes returns the size in bytes of one device block.
func (p *Pipeline) BlockBytes() int { return len(p.raw) }

// BlockPeriod returns the real-time duration of one block.
func (p *Pipeline) BlockPeriod() time.Duration { return p.period }
