// Package convert maps fixed-point PCM samples to normalized floating point
// and back, and packs samples into the little-endian byte layout used at the
// hardware block boundary.
package convert

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-freqout/internal/simdops"
)

const (
	bitsPerByte = 8
	minBitDepth = 8
	maxBitDepth = 32
)

// ErrUnsupportedBitDepth indicates a bit depth the converter cannot map
// without losing the exact round-trip property.
var ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

// Converter maps signed integer samples of a fixed bit depth to floating
// point values in [-1, 1) and back.
//
// The full-scale divisor is 2^(bitDepth-1), so every representable integer
// maps to an exactly representable float and ToInt(ToFloat(x)) == x.
// Conversion back to integers saturates at the range limits.
type Converter[F simdops.Float] struct {
	bitDepth int
	scale    F // 2^(bitDepth-1)
	invScale F // 1 / 2^(bitDepth-1)
	minInt   int32
	maxInt   int32
	ops      *simdops.Ops[F]
}

// New creates a converter for the given bit depth.
// The depth must be a multiple of 8 between 8 and 32 and must fit the
// significand of F (float32 supports at most 24 bits).
func New[F simdops.Float](bitDepth int) (*Converter[F], error) {
	if bitDepth < minBitDepth || bitDepth > maxBitDepth || bitDepth%bitsPerByte != 0 {
		return nil, fmt.Errorf("%w: %d bits (want 8, 16, 24 or 32)", ErrUnsupportedBitDepth, bitDepth)
	}
	if bitDepth > simdops.MantissaBits[F]() {
		return nil, fmt.Errorf("%w: %d bits exceed the %d-bit significand of the float type",
			ErrUnsupportedBitDepth, bitDepth, simdops.MantissaBits[F]())
	}

	scale := math.Ldexp(1, bitDepth-1)
	return &Converter[F]{
		bitDepth: bitDepth,
		scale:    F(scale),
		invScale: F(1 / scale),
		minInt:   int32(-scale),
		maxInt:   int32(scale - 1),
		ops:      simdops.For[F](),
	}, nil
}

// BitDepth returns the configured bit depth.
func (c *Converter[F]) BitDepth() int { return c.bitDepth }

// Range returns the smallest and largest representable integer sample.
func (c *Converter[F]) Range() (minVal, maxVal int32) { return c.minInt, c.maxInt }

// ToFloat converts min(len(dst), len(src)) integer samples to normalized
// floats and returns the number converted.
func (c *Converter[F]) ToFloat(dst []F, src []int32) int {
	n := min(len(dst), len(src))
	if n == 0 {
		return 0
	}
	dst = dst[:n]
	for i, v := range src[:n] {
		dst[i] = F(v)
	}
	c.ops.Scale(dst, dst, c.invScale)
	return n
}

// ToInt converts min(len(dst), len(src)) normalized floats back to integer
// samples and returns the number converted. Values are rounded to nearest
// and clamped to the representable range; NaN maps to zero.
func (c *Converter[F]) ToInt(dst []int32, src []F) int {
	n := min(len(dst), len(src))
	lo, hi := float64(c.minInt), float64(c.maxInt)
	scale := float64(c.scale)
	for i, v := range src[:n] {
		x := math.RoundToEven(float64(v) * scale)
		switch {
		case x >= hi:
			dst[i] = c.maxInt
		case x <= lo:
			dst[i] = c.minInt
		case math.IsNaN(x):
			dst[i] = 0
		default:
			dst[i] = int32(x)
		}
	}
	return n
}
