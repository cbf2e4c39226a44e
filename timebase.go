package freqout

import (
	"fmt"
	"time"
)

// TimeBase describes the framing of a PCM stream: sample rate, bit depth
// and channel count. It is an immutable value; the With methods return
// modified copies.
type TimeBase struct {
	sampleRate  uint32
	bitDepth    uint16
	channels    uint16
	sampleWidth uint16
}

// NewTimeBase creates a validated time base. The sample rate is not checked
// here; see Classify.
func NewTimeBase(rate uint32, bitDepth, channels uint16) (TimeBase, error) {
	tb, err := TimeBase{}.WithSampleRate(rate).WithBitDepth(bitDepth)
	if err != nil {
		return TimeBase{}, err
	}
	return tb.WithChannels(channels)
}

// WithSampleRate returns a copy of t with the given sample rate.
func (t TimeBase) WithSampleRate(rate uint32) TimeBase {
	t.sampleRate = rate
	return t
}

// WithBitDepth returns a copy of t with the given bit depth, which must be a
// positive multiple of 8.
func (t TimeBase) WithBitDepth(bitDepth uint16) (TimeBase, error) {
	if bitDepth == 0 || bitDepth%bitsPerByte != 0 {
		return t, fmt.Errorf("%w: %d is not a positive multiple of %d",
			ErrInvalidBitsPerSample, bitDepth, bitsPerByte)
	}
	t.bitDepth = bitDepth
	t.sampleWidth = bitDepth / bitsPerByte
	return t, nil
}

// WithChannels returns a copy of t with the given channel count.
func (t TimeBase) WithChannels(channels uint16) (TimeBase, error) {
	if channels == 0 {
		return t, fmt.Errorf("%w: channel count must be at least 1", ErrInvalidNumChannels)
	}
	t.channels = channels
	return t, nil
}

// SampleRate returns the sample rate in Hz.
func (t TimeBase) SampleRate() uint32 { return t.sampleRate }

// BitDepth returns the bits per sample.
func (t TimeBase) BitDepth() uint16 { return t.bitDepth }

// Channels returns the number of interleaved channels.
func (t TimeBase) Channels() uint16 { return t.channels }

// SampleWidth returns the bytes per sample.
func (t TimeBase) SampleWidth() uint16 { return t.sampleWidth }

// FrameWidth returns the bytes per interleaved frame.
func (t TimeBase) FrameWidth() int { return int(t.sampleWidth) * int(t.channels) }

// BlockPeriod returns how long the stream takes to play samples
// interleaved samples, or 0 when the time base is incomplete.
func (t TimeBase) BlockPeriod(samples int) time.Duration {
	if t.sampleRate == 0 || t.channels == 0 {
		return 0
	}
	frames := samples / int(t.channels)
	return time.Duration(float64(frames) * float64(time.Second) / float64(t.sampleRate))
}

// String implements fmt.Stringer.
func (t TimeBase) String() string {
	return fmt.Sprintf("%d Hz, %d-bit, %d ch", t.sampleRate, t.bitDepth, t.channels)
}
