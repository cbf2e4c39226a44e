package analysis

import "github.com/tphakala/go-audio-freqout/internal/simdops"

// Level is the mean of a subset of samples together with the subset size.
// A Level with Count 0 carries no value.
type Level[F simdops.Float] struct {
	Value F
	Count int
}

// Valid reports whether the level was computed from at least one sample.
func (l Level[F]) Valid() bool { return l.Count > 0 }

// Partition holds the means of the samples below the low threshold and
// above the high threshold.
type Partition[F simdops.Float] struct {
	Low  Level[F]
	High Level[F]
}

// PartitionMeans splits buf into samples strictly below thresholdLow and
// samples strictly above thresholdHigh and returns the mean of each set.
// A sample below thresholdLow is never counted as high, even when the
// thresholds overlap. Empty sets are reported with Count 0 instead of
// dividing by zero.
func PartitionMeans[F simdops.Float](buf []F, thresholdLow, thresholdHigh F) Partition[F] {
	var sumLow, sumHigh F
	var p Partition[F]
	for _, v := range buf {
		switch {
		case v < thresholdLow:
			sumLow += v
			p.Low.Count++
		case v > thresholdHigh:
			sumHigh += v
			p.High.Count++
		}
	}
	if p.Low.Count > 0 {
		p.Low.Value = sumLow / F(p.Low.Count)
	}
	if p.High.Count > 0 {
		p.High.Value = sumHigh / F(p.High.Count)
	}
	return p
}
