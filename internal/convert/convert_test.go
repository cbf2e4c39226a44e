package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBitDepth8  = 8
	testBitDepth16 = 16
	testBitDepth24 = 24
	testBitDepth32 = 32
)

func TestNew_RejectsUnsupportedDepths(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
	}{
		{"zero", 0},
		{"not_multiple_of_8", 12},
		{"too_wide", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float64](tt.bitDepth)
			require.ErrorIs(t, err, ErrUnsupportedBitDepth)
		})
	}

	_, err := New[float32](testBitDepth32)
	require.ErrorIs(t, err, ErrUnsupportedBitDepth, "float32 cannot hold 32-bit samples exactly")

	_, err = New[float32](testBitDepth24)
	require.NoError(t, err)
}

func TestConverter_Range(t *testing.T) {
	c, err := New[float64](testBitDepth16)
	require.NoError(t, err)

	lo, hi := c.Range()
	assert.Equal(t, int32(math.MinInt16), lo)
	assert.Equal(t, int32(math.MaxInt16), hi)
	assert.Equal(t, testBitDepth16, c.BitDepth())
}

// TestConverter_RoundTrip checks ToInt(ToFloat(x)) == x across the range.
func TestConverter_RoundTrip(t *testing.T) {
	for _, depth := range []int{testBitDepth8, testBitDepth16, testBitDepth24, testBitDepth32} {
		c, err := New[float64](depth)
		require.NoError(t, err)

		lo, hi := c.Range()
		src := []int32{lo, lo + 1, -1, 0, 1, hi - 1, hi, hi / 3, lo / 7}

		floats := make([]float64, len(src))
		back := make([]int32, len(src))
		require.Equal(t, len(src), c.ToFloat(floats, src))
		require.Equal(t, len(src), c.ToInt(back, floats))

		assert.Equal(t, src, back, "bit depth %d", depth)
		for i, f := range floats {
			assert.True(t, f >= -1 && f < 1, "bit depth %d: sample %d = %f outside [-1, 1)", depth, i, f)
		}
	}
}

func TestConverter_RoundTripFloat32(t *testing.T) {
	c, err := New[float32](testBitDepth24)
	require.NoError(t, err)

	lo, hi := c.Range()
	src := make([]int32, 0, 1024)
	for v := lo; v < hi-8191; v += 8191 {
		src = append(src, v)
	}
	src = append(src, hi)

	floats := make([]float32, len(src))
	back := make([]int32, len(src))
	c.ToFloat(floats, src)
	c.ToInt(back, floats)
	assert.Equal(t, src, back)
}

// TestConverter_Saturates checks that out-of-range values clamp instead of wrapping.
func TestConverter_Saturates(t *testing.T) {
	c, err := New[float64](testBitDepth16)
	require.NoError(t, err)

	src := []float64{1.0, 1.5, 100, math.Inf(1), -1.0, -1.0001, -42, math.Inf(-1), math.NaN()}
	dst := make([]int32, len(src))
	c.ToInt(dst, src)

	assert.Equal(t, []int32{
		math.MaxInt16, math.MaxInt16, math.MaxInt16, math.MaxInt16,
		math.MinInt16, math.MinInt16, math.MinInt16, math.MinInt16,
		0,
	}, dst)
}

func TestConverter_Saturates32Bit(t *testing.T) {
	c, err := New[float64](testBitDepth32)
	require.NoError(t, err)

	dst := make([]int32, 2)
	c.ToInt(dst, []float64{2, -2})
	assert.Equal(t, []int32{math.MaxInt32, math.MinInt32}, dst)
}

func TestConverter_ShortBuffers(t *testing.T) {
	c, err := New[float64](testBitDepth16)
	require.NoError(t, err)

	floats := make([]float64, 2)
	assert.Equal(t, 2, c.ToFloat(floats, []int32{16384, -16384, 1}))
	assert.Equal(t, []float64{0.5, -0.5}, floats)

	ints := make([]int32, 4)
	assert.Equal(t, 2, c.ToInt(ints, floats))
	assert.Equal(t, []int32{16384, -16384, 0, 0}, ints)

	assert.Zero(t, c.ToFloat(nil, []int32{1}))
}

func TestConverter_NoAllocations(t *testing.T) {
	c, err := New[float64](testBitDepth32)
	require.NoError(t, err)

	ints := make([]int32, 128)
	floats := make([]float64, 128)
	allocs := testing.AllocsPerRun(100, func() {
		c.ToFloat(floats, ints)
		c.ToInt(ints, floats)
	})
	assert.Zero(t, allocs)
}

func BenchmarkConverter_Block128(b *testing.B) {
	c, err := New[float64](testBitDepth32)
	require.NoError(b, err)

	ints := make([]int32, 128)
	for i := range ints {
		ints[i] = int32(i << 20)
	}
	floats := make([]float64, 128)

	b.ReportAllocs()
	for b.Loop() {
		c.ToFloat(floats, ints)
		c.ToInt(ints, floats)
	}
}
