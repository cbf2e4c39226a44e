package device

import (
	"fmt"
	"io"
	"math"

	"github.com/tphakala/go-audio-freqout/internal/convert"
)

// Tone is a BlockReader that synthesizes a sine wave, identical on every
// channel, at a fraction of full scale.
type Tone struct {
	codec     convert.Codec
	channels  int
	amplitude float64
	step      float64 // phase increment per frame, radians
	phase     float64
	remaining int // blocks left; negative means unlimited
	scratch   []int32
}

// NewTone creates a tone source for f at freqHz with level in [0, 1].
// It produces the given number of blocks of blockSamples samples and then
// returns io.EOF; blocks < 0 produces blocks forever.
func NewTone(f Format, blockSamples int, freqHz, level float64, blocks int) (*Tone, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if blockSamples < f.Channels || blockSamples%f.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrBlockSize, blockSamples, f.Channels)
	}
	if !(freqHz >= 0) || freqHz > float64(f.SampleRate)/2 {
		return nil, fmt.Errorf("%w: tone frequency %g Hz", ErrUnsupportedFormat, freqHz)
	}
	codec, err := convert.NewCodec(f.SampleWidth())
	if err != nil {
		return nil, err
	}

	level = math.Max(0, math.Min(1, level))
	fullScale := math.Ldexp(1, f.BitDepth-1) - 1

	return &Tone{
		codec:     codec,
		channels:  f.Channels,
		amplitude: level * fullScale,
		step:      2 * math.Pi * freqHz / float64(f.SampleRate),
		remaining: blocks,
		scratch:   make([]int32, blockSamples),
	}, nil
}

// ReadBlock implements BlockReader.
func (t *Tone) ReadBlock(p []byte) error {
	n := len(p) / t.codec.Width()
	if n > len(t.scratch) || n%t.channels != 0 {
		return fmt.Errorf("%w: %d bytes", ErrBlockSize, len(p))
	}
	if t.remaining == 0 {
		return io.EOF
	}
	if t.remaining > 0 {
		t.remaining--
	}

	buf := t.scratch[:n]
	for i := 0; i < n; i += t.channels {
		v := int32(math.Round(t.amplitude * math.Sin(t.phase)))
		for ch := range t.channels {
			buf[i+ch] = v
		}
		t.phase += t.step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	t.codec.Encode(p, buf)
	return nil
}
