// Package analysis provides block-level signal statistics: polarity and
// zero-crossing tracking, mean and RMS levels, and thresholded partition
// means.
//
// All functions operate on caller-owned slices and never allocate.
package analysis

import (
	"math"

	"github.com/tphakala/go-audio-freqout/internal/simdops"
)

// Polarity is the sign of the most recent nonzero sample.
type Polarity int8

const (
	// Undetermined means no nonzero sample has been seen yet.
	Undetermined Polarity = iota
	// Positive means the last nonzero sample was > 0.
	Positive
	// Negative means the last nonzero sample was < 0.
	Negative
)

// String implements fmt.Stringer.
func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "undetermined"
	}
}

// Flip returns the opposite polarity. Undetermined stays Undetermined.
func (p Polarity) Flip() Polarity {
	switch p {
	case Positive:
		return Negative
	case Negative:
		return Positive
	default:
		return Undetermined
	}
}

func polarityOf[F simdops.Float](v F) Polarity {
	switch {
	case v > 0:
		return Positive
	case v < 0:
		return Negative
	default:
		return Undetermined
	}
}

// InitialPolarity scans forward for the first nonzero sample and reports its
// sign. An empty or all-zero buffer yields Undetermined.
func InitialPolarity[F simdops.Float](buf []F) Polarity {
	for _, v := range buf {
		if p := polarityOf(v); p != Undetermined {
			return p
		}
	}
	return Undetermined
}

// CountZeroCrossings walks buf and, for every sample whose sign opposes
// *polarity, increments *counter and flips *polarity. Zero samples never
// cause a transition. An Undetermined polarity is seeded from the first
// nonzero sample without counting. It returns the number of transitions
// found in buf.
//
// Only transitions are counted; converting them to a period or frequency is
// left to the caller.
func CountZeroCrossings[F simdops.Float](buf []F, polarity *Polarity, counter *uint64) int {
	crossings := 0
	state := *polarity
	for _, v := range buf {
		p := polarityOf(v)
		if p == Undetermined || p == state {
			continue
		}
		if state != Undetermined {
			crossings++
		}
		state = p
	}
	*polarity = state
	*counter += uint64(crossings)
	return crossings
}

// Mean returns the arithmetic mean of buf, or 0 for an empty buffer.
func Mean[F simdops.Float](buf []F) F {
	if len(buf) == 0 {
		return 0
	}
	return simdops.For[F]().Sum(buf) / F(len(buf))
}

// RMS returns sqrt(Σx²) / n, the level formula used by the original sync
// firmware. It differs from the conventional root mean square by a factor
// of sqrt(n); see TrueRMS. An empty buffer yields 0.
func RMS[F simdops.Float](buf []F) F {
	if len(buf) == 0 {
		return 0
	}
	return F(math.Sqrt(float64(simdops.SumOfSquares(buf)))) / F(len(buf))
}

// TrueRMS returns the conventional root mean square sqrt(Σx² / n).
// An empty buffer yields 0.
func TrueRMS[F simdops.Float](buf []F) F {
	if len(buf) == 0 {
		return 0
	}
	return F(math.Sqrt(float64(simdops.SumOfSquares(buf)) / float64(len(buf))))
}

// Peak returns the largest absolute sample value in buf.
func Peak[F simdops.Float](buf []F) F {
	var peak F
	for _, v := range buf {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
