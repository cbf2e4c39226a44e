// Package pipeline implements the per-block processing chain that runs
// between the two format conversions of the I/O loop. Each stage works in
// place on one block of interleaved normalized samples.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-freqout/internal/filter"
)

// ErrInvalidSpec indicates a chain specification that cannot be built.
var ErrInvalidSpec = errors.New("invalid pipeline spec")

// Stage represents a single in-place processing step of the chain.
// Stages must not allocate in Process.
type Stage interface {
	// Process transforms one interleaved block in place.
	Process(block []float64)

	// Reset clears internal state.
	Reset()

	// Type identifies the stage.
	Type() StageType
}

// StageType identifies the type of processing stage.
type StageType int

const (
	// StageAnalysis tracks polarity, zero crossings and levels of the input.
	StageAnalysis StageType = iota

	// StageLowPass applies one recursive low-pass filter per channel.
	StageLowPass
)

// String implements fmt.Stringer.
func (t StageType) String() string {
	switch t {
	case StageAnalysis:
		return "analysis"
	case StageLowPass:
		return "lowpass"
	default:
		return fmt.Sprintf("stage(%d)", int(t))
	}
}

// Spec holds the parameters for building a chain.
type Spec struct {
	SampleRate float64 // Hz
	Channels   int     // interleaved channels per block
	BlockSize  int     // samples per block, a multiple of Channels

	CutoffHz float64      // low-pass cutoff
	Order    filter.Order // low-pass order

	// Analyze inserts an analysis stage ahead of the filter.
	Analyze bool

	// Partition thresholds for the analysis stage. Partition means are
	// only computed when ThresholdLow < ThresholdHigh.
	ThresholdLow  float64
	ThresholdHigh float64
}

// Validate checks that s describes a buildable chain.
func (s *Spec) Validate() error {
	if !(s.SampleRate > 0) {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidSpec)
	}
	if s.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidSpec)
	}
	if s.BlockSize < s.Channels || s.BlockSize%s.Channels != 0 {
		return fmt.Errorf("%w: block size %d is not a positive multiple of %d channels",
			ErrInvalidSpec, s.BlockSize, s.Channels)
	}
	return nil
}

// Frames returns the number of frames (samples per channel) in a block.
func (s *Spec) Frames() int { return s.BlockSize / s.Channels }

// Pipeline is an ordered chain of stages built once at startup.
type Pipeline struct {
	spec     Spec
	stages   []Stage
	analysis *AnalysisStage
	lowPass  *LowPassStage
}

// Build constructs the chain for spec: an optional analysis stage followed
// by the per-channel low-pass stage. Every buffer the stages need is
// allocated here.
func Build(spec Spec) (*Pipeline, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		spec:   spec,
		stages: make([]Stage, 0, defaultStageCapacity),
	}

	if spec.Analyze {
		p.analysis = newAnalysisStage(spec)
		p.stages = append(p.stages, p.analysis)
	}

	lp, err := newLowPassStage(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build low-pass stage: %w", err)
	}
	p.lowPass = lp
	p.stages = append(p.stages, lp)

	return p, nil
}

// Process runs block through every stage in order.
func (p *Pipeline) Process(block []float64) {
	for _, s := range p.stages {
		s.Process(block)
	}
}

// Reset clears the state of every stage.
func (p *Pipeline) Reset() {
	for _, s := range p.stages {
		s.Reset()
	}
}

// GetStages returns the pipeline stages.
func (p *Pipeline) GetStages() []Stage {
	return p.stages
}

// Spec returns the Spec the chain was built from.
func (p *Pipeline) Spec() Spec {
	return p.spec
}

// Analysis returns the analysis stage, or nil if analysis is disabled.
func (p *Pipeline) Analysis() *AnalysisStage {
	return p.analysis
}

// LowPass returns the low-pass stage.
func (p *Pipeline) LowPass() *LowPassStage {
	return p.lowPass
}
