// Package device provides block devices for the freqout I/O loop: an
// in-memory loopback, WAV file endpoints, a tone generator and a pacing
// wrapper that simulates a hardware sample clock.
//
// Every device moves whole blocks of signed little-endian PCM bytes, the
// layout the pipeline's codec produces.
package device

import (
	"errors"
	"fmt"
)

// Device errors.
var (
	// ErrUnderrun indicates a read from an empty open device.
	ErrUnderrun = errors.New("device underrun")

	// ErrOverrun indicates a write to a full device.
	ErrOverrun = errors.New("device overrun")

	// ErrClosed indicates a write to a closed device.
	ErrClosed = errors.New("device closed")

	// ErrBlockSize indicates a buffer whose length does not match the
	// device block size.
	ErrBlockSize = errors.New("block size mismatch")

	// ErrUnsupportedFormat indicates a PCM layout the device cannot carry.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// BlockReader receives one block of input from the hardware boundary.
type BlockReader interface {
	ReadBlock(p []byte) error
}

// BlockWriter sends one block of output to the hardware boundary.
type BlockWriter interface {
	WriteBlock(p []byte) error
}

// BlockDevice is a full-duplex block device.
type BlockDevice interface {
	BlockReader
	BlockWriter
}

// Duplex joins an independent source and sink into one BlockDevice.
type Duplex struct {
	BlockReader
	BlockWriter
}

// Discard is a sink that drops every block and counts them.
type Discard struct {
	Blocks uint64
}

// WriteBlock implements BlockWriter.
func (d *Discard) WriteBlock(p []byte) error {
	d.Blocks++
	return nil
}

// Format describes a PCM stream layout.
type Format struct {
	SampleRate int
	BitDepth   int
	Channels   int
}

// Validate reports whether f describes a stream the devices can carry.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, f.SampleRate)
	}
	if f.BitDepth < bitsPerByte || f.BitDepth > maxBitDepth || f.BitDepth%bitsPerByte != 0 {
		return fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, f.BitDepth)
	}
	if f.Channels < 1 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, f.Channels)
	}
	return nil
}

// SampleWidth returns the number of bytes per sample.
func (f Format) SampleWidth() int { return f.BitDepth / bitsPerByte }

const (
	bitsPerByte = 8
	maxBitDepth = 32
)
