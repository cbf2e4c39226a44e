package pipeline

import (
	"github.com/tphakala/go-audio-freqout/internal/analysis"
)

// ChannelStats is the analysis state of one channel.
type ChannelStats struct {
	// Polarity of the last nonzero sample seen.
	Polarity analysis.Polarity

	// ZeroCrossings counts polarity transitions since the last reset.
	ZeroCrossings uint64

	// Mean, RMS (legacy sqrt(Σx²)/n formula) and Peak of the last block.
	Mean float64
	RMS  float64
	Peak float64

	// Partition holds the thresholded means of the last block when
	// partition thresholds are configured.
	Partition analysis.Partition[float64]
}

// AnalysisStage records per-channel statistics of each block without
// modifying it.
type AnalysisStage struct {
	channels  int
	partition bool
	low, high float64
	stats     []ChannelStats
	scratch   []float64 // one deinterleaved channel
}

func newAnalysisStage(spec Spec) *AnalysisStage {
	s := &AnalysisStage{
		channels:  spec.Channels,
		partition: spec.ThresholdLow < spec.ThresholdHigh,
		low:       spec.ThresholdLow,
		high:      spec.ThresholdHigh,
		stats:     make([]ChannelStats, spec.Channels),
	}
	if spec.Channels > monoChannels {
		s.scratch = make([]float64, spec.Frames())
	}
	return s
}

// Process updates the statistics of every channel from block.
func (s *AnalysisStage) Process(block []float64) {
	if s.channels == monoChannels {
		s.analyze(&s.stats[0], block)
		return
	}

	frames := min(len(block)/s.channels, len(s.scratch))
	buf := s.scratch[:frames]
	for ch := range s.stats {
		for i := range buf {
			buf[i] = block[i*s.channels+ch]
		}
		s.analyze(&s.stats[ch], buf)
	}
}

func (s *AnalysisStage) analyze(st *ChannelStats, buf []float64) {
	analysis.CountZeroCrossings(buf, &st.Polarity, &st.ZeroCrossings)
	st.Mean = analysis.Mean(buf)
	st.RMS = analysis.RMS(buf)
	st.Peak = analysis.Peak(buf)
	if s.partition {
		st.Partition = analysis.PartitionMeans(buf, s.low, s.high)
	}
}

// Reset clears polarity, counters and levels.
func (s *AnalysisStage) Reset() {
	clear(s.stats)
}

// Type implements Stage.
func (s *AnalysisStage) Type() StageType { return StageAnalysis }

// Snapshot appends the statistics of every channel to dst and returns the
// extended slice.
func (s *AnalysisStage) Snapshot(dst []ChannelStats) []ChannelStats {
	return append(dst, s.stats...)
}
