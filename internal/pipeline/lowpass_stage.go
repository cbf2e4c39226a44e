package pipeline

import (
	"math"

	"github.com/tphakala/go-audio-freqout/internal/filter"
)

// LowPassStage filters every channel of an interleaved block with its own
// low-pass filter.
type LowPassStage struct {
	channels int
	filters  []*filter.LowPass[float64]
	resets   uint64
}

func newLowPassStage(spec Spec) (*LowPassStage, error) {
	s := &LowPassStage{
		channels: spec.Channels,
		filters:  make([]*filter.LowPass[float64], spec.Channels),
	}
	for ch := range spec.Channels {
		f, err := filter.NewForCutoff[float64](spec.SampleRate, spec.CutoffHz, spec.Order)
		if err != nil {
			return nil, err
		}
		s.filters[ch] = f
	}
	return s, nil
}

// Process filters block in place. A non-finite filter output resets that
// channel's filter, which then re-seeds from the current input. A non-finite
// input leaves the filter reset and produces silence.
func (s *LowPassStage) Process(block []float64) {
	if s.channels == monoChannels {
		s.processChannel(s.filters[0], block, 1)
		return
	}
	for ch, f := range s.filters {
		s.processChannel(f, block[ch:], s.channels)
	}
}

func (s *LowPassStage) processChannel(f *filter.LowPass[float64], block []float64, stride int) {
	for i := 0; i < len(block); i += stride {
		x := block[i]
		y := f.Update(x)
		if !isFinite(y) {
			f.Reset()
			s.resets++
			y = 0
			if isFinite(x) {
				y = f.Update(x)
			}
		}
		block[i] = y
	}
}

// Reset returns every channel filter to its uninitialized state.
func (s *LowPassStage) Reset() {
	for _, f := range s.filters {
		f.Reset()
	}
}

// Type implements Stage.
func (s *LowPassStage) Type() StageType { return StageLowPass }

// Resets returns how many times a filter was reset after a non-finite output.
func (s *LowPassStage) Resets() uint64 { return s.resets }

// Filter returns the filter of channel ch.
func (s *LowPassStage) Filter(ch int) *filter.LowPass[float64] { return s.filters[ch] }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
