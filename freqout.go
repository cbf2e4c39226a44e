package freqout

import (
	"errors"
	"runtime"
	"time"

	"github.com/tphakala/go-audio-freqout/internal/device"
)

// BlockDevice is the hardware boundary of the I/O loop. One block is
// BlockSize × SampleWidth bytes of signed little-endian PCM.
//
// ReadBlock and WriteBlock may block for up to one block period. A
// ReadBlock returning io.EOF ends the loop cleanly.
type BlockDevice = device.BlockDevice

// Liveness receives the periodic cooperative yield of the loop, the hook
// for feeding a watchdog. Feed must return within budget, the slack left
// before the next block deadline.
type Liveness interface {
	Feed(budget time.Duration)
}

// LivenessFunc adapts an ordinary function to the Liveness interface.
type LivenessFunc func(budget time.Duration)

// Feed calls f(budget).
func (f LivenessFunc) Feed(budget time.Duration) { f(budget) }

// goschedLiveness yields the processor to other goroutines.
var goschedLiveness = LivenessFunc(func(time.Duration) { runtime.Gosched() })

// Configuration errors, fatal to New.
var (
	// ErrInvalidSampleRate indicates a rate absent from the catalog.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidBitsPerSample indicates a bit depth that is not a positive
	// multiple of 8 or cannot be converted.
	ErrInvalidBitsPerSample = errors.New("invalid bits per sample")

	// ErrInvalidNumChannels indicates a channel count that is not positive.
	ErrInvalidNumChannels = errors.New("invalid number of channels")

	// ErrInvalidConfig indicates invalid block size, cutoff, filter order or
	// yield cadence.
	ErrInvalidConfig = errors.New("invalid freqout configuration")
)

// Runtime errors returned by Step and Run. None of them is retried.
var (
	// ErrTransferFault wraps an error reported by the block device.
	ErrTransferFault = errors.New("block transfer fault")

	// ErrTransferStall indicates a block read or write that took longer
	// than one block period.
	ErrTransferStall = errors.New("block transfer stalled")

	// ErrDeadlineMissed indicates block processing that took longer than
	// one block period.
	ErrDeadlineMissed = errors.New("block deadline missed")
)
