package filter

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	defaultResponsePoints = 512
	defaultImpulseLength  = 4096

	// Normalized frequencies run from 0 to Nyquist (0.5 cycles/sample).
	nyquistNormalized = 0.5
)

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64

	// Phase response at each frequency (radians)
	Phase []float64
}

// Response evaluates the transfer function of the filter on numPoints
// frequencies evenly spaced from DC to just below Nyquist.
//
//	H(e^jω) = (b0 + b1·e^-jω + b2·e^-2jω) / (1 + a1·e^-jω + a2·e^-2jω)
func (f *LowPass[F]) Response(numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}

	b, a := f.Coefficients()
	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := nyquistNormalized * float64(k) / float64(numPoints)
		response.Frequencies[k] = freq

		z1 := cmplx.Exp(complex(0, -2*math.Pi*freq))
		z2 := z1 * z1
		num := complex(b[0], 0) + complex(b[1], 0)*z1 + complex(b[2], 0)*z2
		den := complex(a[0], 0) + complex(a[1], 0)*z1 + complex(a[2], 0)*z2
		h := num / den

		response.Magnitude[k] = cmplx.Abs(h)
		response.Phase[k] = cmplx.Phase(h)
	}

	return response
}

// ImpulseResponse returns the first n samples of the filter's response to a
// unit impulse, computed from a zero initial state. The filter's own state
// is not touched.
func (f *LowPass[F]) ImpulseResponse(n int) []float64 {
	b, a := f.Coefficients()
	h := make([]float64, n)

	var x1, x2, y1, y2 float64
	for i := range h {
		var x float64
		if i == 0 {
			x = 1
		}
		y := b[0]*x + b[1]*x1 + b[2]*x2 - a[1]*y1 - a[2]*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		h[i] = y
	}
	return h
}

// MeasureResponse computes the frequency response from an FFT of the first
// impulseLen samples of the impulse response. It cross-checks Response and
// shows the effect of truncating the infinite impulse response.
func (f *LowPass[F]) MeasureResponse(impulseLen int) FilterResponse {
	if impulseLen <= 0 {
		impulseLen = defaultImpulseLength
	}

	h := f.ImpulseResponse(impulseLen)
	fft := fourier.NewFFT(impulseLen)
	coeffs := fft.Coefficients(nil, h)

	response := FilterResponse{
		Frequencies: make([]float64, len(coeffs)),
		Magnitude:   make([]float64, len(coeffs)),
		Phase:       make([]float64, len(coeffs)),
	}
	for k, c := range coeffs {
		response.Frequencies[k] = fft.Freq(k)
		response.Magnitude[k] = cmplx.Abs(c)
		response.Phase[k] = cmplx.Phase(c)
	}
	return response
}

// CutoffIndex returns the index of the first frequency whose magnitude has
// fallen below -3 dB, or -1 if none has.
func (r FilterResponse) CutoffIndex() int {
	const halfPowerDB = -3.0
	for i, m := range r.Magnitude {
		if MagnitudeDB(m) < halfPowerDB {
			return i
		}
	}
	return -1
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
