// Package filter provides the recursive low-pass filter applied to every
// sample of the stream, together with tools to inspect its frequency
// response.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-freqout/internal/simdops"
)

// Order is the number of poles of the low-pass filter.
type Order int

const (
	// OrderFirst is a one-pole filter with a monotone step response.
	OrderFirst Order = 1

	// OrderSecond is a two-pole Butterworth filter with a steeper roll-off
	// and a small step overshoot.
	OrderSecond Order = 2
)

// Stability limits in terms of alpha = dt·ω.
const (
	// MaxAlpha is the exclusive upper bound accepted by New. Beyond it the
	// one-pole filter's pole turns negative and the output rings around
	// the input instead of approaching it.
	MaxAlpha = 2.0

	// RecommendedAlpha is the bound below which the discrete response
	// tracks the continuous-time prototype closely (cutoff below ~fs/12).
	RecommendedAlpha = 0.5

	// MaxOvershootSecondOrder bounds the relative step overshoot of the
	// two-pole filter for alpha ≤ RecommendedAlpha. The continuous-time
	// prototype overshoots by 4.3%.
	MaxOvershootSecondOrder = 0.047
)

// Bilinear transform constants
const (
	bilinearTwo   = 2.0
	bilinearFour  = 4.0
	bilinearEight = 8.0
)

// ErrInvalidParams indicates parameters the filter cannot run with.
var ErrInvalidParams = errors.New("invalid low-pass filter parameters")

// LowPass is a Butterworth low-pass filter discretised with the bilinear
// (Tustin) transform of H(s) = ω/(s+ω) or ω²/(s²+√2ωs+ω²).
//
// The filter starts Uninitialized. The first Update seeds the whole delay
// line with that input so a DC signal passes without a start-up transient;
// from then on it is Running. Reset returns it to Uninitialized.
//
// Stable operating range: with alpha = dt·ω the recursion is BIBO stable
// for every alpha > 0. The one-pole step response is monotone with zero
// overshoot while alpha < 2; as alpha approaches 2 the pole approaches zero
// and the output follows the input almost immediately, and past 2 it
// oscillates around the target. The two-pole step response overshoots by
// at most MaxOvershootSecondOrder for alpha ≤ RecommendedAlpha; the
// overshoot grows to ~6% at alpha = 1 and ~12% near alpha = 2. New rejects
// alpha ≥ MaxAlpha.
//
// A LowPass must not be shared between goroutines.
type LowPass[F simdops.Float] struct {
	order Order
	alpha float64

	// y[n] = b0·x[n] + b1·x[n-1] + b2·x[n-2] - a1·y[n-1] - a2·y[n-2]
	b0, b1, b2 F
	a1, a2     F

	x1, x2 F
	y1, y2 F

	running bool
}

// New creates a low-pass filter for sample period dt (seconds) and angular
// cutoff frequency omega (rad/s).
func New[F simdops.Float](dt, omega float64, order Order) (*LowPass[F], error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: sample period must be positive, got %v", ErrInvalidParams, dt)
	}
	if !(omega > 0) || math.IsInf(omega, 0) {
		return nil, fmt.Errorf("%w: cutoff must be positive, got %v rad/s", ErrInvalidParams, omega)
	}

	alpha := dt * omega
	if alpha >= MaxAlpha {
		return nil, fmt.Errorf("%w: dt·ω = %.4f outside the stable range (< %.1f)", ErrInvalidParams, alpha, MaxAlpha)
	}

	f := &LowPass[F]{order: order, alpha: alpha}
	switch order {
	case OrderFirst:
		// α(x[n] + x[n-1]) - (α-2)·y[n-1], all over (2+α)
		norm := bilinearTwo + alpha
		f.b0 = F(alpha / norm)
		f.b1 = F(alpha / norm)
		f.a1 = F((alpha - bilinearTwo) / norm)

	case OrderSecond:
		a2 := alpha * alpha
		k := bilinearTwo * math.Sqrt2 * alpha
		norm := bilinearFour + k + a2
		f.b0 = F(a2 / norm)
		f.b1 = F(bilinearTwo * a2 / norm)
		f.b2 = F(a2 / norm)
		f.a1 = F((bilinearTwo*a2 - bilinearEight) / norm)
		f.a2 = F((bilinearFour - k + a2) / norm)

	default:
		return nil, fmt.Errorf("%w: unsupported order %d", ErrInvalidParams, order)
	}

	return f, nil
}

// NewForCutoff creates a low-pass filter from a sample rate and a cutoff
// frequency, both in Hz.
func NewForCutoff[F simdops.Float](sampleRate, cutoffHz float64, order Order) (*LowPass[F], error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidParams, sampleRate)
	}
	return New[F](1/sampleRate, 2*math.Pi*cutoffHz, order)
}

// Update consumes one input sample and returns the filtered output.
func (f *LowPass[F]) Update(x F) F {
	if !f.running {
		f.x1, f.x2 = x, x
		f.y1, f.y2 = x, x
		f.running = true
		return x
	}

	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// Process filters buf in place.
func (f *LowPass[F]) Process(buf []F) {
	for i, x := range buf {
		buf[i] = f.Update(x)
	}
}

// Output returns the most recent output sample (0 before the first Update).
func (f *LowPass[F]) Output() F { return f.y1 }

// Running reports whether the filter has been seeded.
func (f *LowPass[F]) Running() bool { return f.running }

// Reset returns the filter to the Uninitialized state.
func (f *LowPass[F]) Reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
	f.running = false
}

// Order returns the filter order.
func (f *LowPass[F]) Order() Order { return f.order }

// Alpha returns dt·ω, the quantity that governs stability.
func (f *LowPass[F]) Alpha() float64 { return f.alpha }

// Coefficients returns the numerator (b) and denominator (a, with a[0] = 1)
// of the transfer function.
func (f *LowPass[F]) Coefficients() (b, a [3]float64) {
	b = [3]float64{float64(f.b0), float64(f.b1), float64(f.b2)}
	a = [3]float64{1, float64(f.a1), float64(f.a2)}
	return b, a
}
