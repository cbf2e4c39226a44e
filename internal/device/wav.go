package device

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/go-audio-freqout/internal/convert"
)

const (
	wavFormatPCM = 1

	// 8-bit WAV data is unsigned, which the signed block layout cannot
	// carry without an offset.
	minWAVBitDepth = 16
)

// WAVSource reads a PCM WAV stream as a sequence of blocks. The final
// partial block is zero padded; the next read returns io.EOF.
type WAVSource struct {
	dec     *wav.Decoder
	format  Format
	codec   convert.Codec
	buf     *audio.IntBuffer
	data    []int
	scratch []int32
	valid   int
	samples uint64
	eof     bool
}

// NewWAVSource opens a WAV stream for blocks of up to blockSamples
// interleaved samples. Each block read must hold whole frames.
func NewWAVSource(r io.ReadSeeker, blockSamples int) (*WAVSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV stream", ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV audio format %d is not integer PCM",
			ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	f := Format{
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		Channels:   int(dec.NumChans),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.BitDepth < minWAVBitDepth {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, f.BitDepth)
	}
	if blockSamples < f.Channels {
		return nil, fmt.Errorf("%w: %d samples is less than one %d-channel frame",
			ErrBlockSize, blockSamples, f.Channels)
	}

	codec, err := convert.NewCodec(f.SampleWidth())
	if err != nil {
		return nil, err
	}

	data := make([]int, blockSamples)
	return &WAVSource{
		dec:     dec,
		format:  f,
		codec:   codec,
		buf:     &audio.IntBuffer{Data: data, Format: dec.Format(), SourceBitDepth: f.BitDepth},
		data:    data,
		scratch: make([]int32, blockSamples),
	}, nil
}

// Format returns the stream layout read from the WAV header.
func (s *WAVSource) Format() Format { return s.format }

// Valid returns the number of samples of real data in the last block read.
func (s *WAVSource) Valid() int { return s.valid }

// Samples returns the total number of samples read so far.
func (s *WAVSource) Samples() uint64 { return s.samples }

// ReadBlock implements BlockReader.
func (s *WAVSource) ReadBlock(p []byte) error {
	want := len(p) / s.codec.Width()
	if want > len(s.data) || want*s.codec.Width() != len(p) || want%s.format.Channels != 0 {
		return fmt.Errorf("%w: %d bytes", ErrBlockSize, len(p))
	}
	if s.eof {
		s.valid = 0
		return io.EOF
	}

	filled := 0
	for filled < want {
		s.buf.Data = s.data[filled:want]
		n, err := s.dec.PCMBuffer(s.buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read WAV data: %w", err)
		}
		if n == 0 {
			break
		}
		filled += n
	}

	if filled == 0 {
		s.eof = true
		s.valid = 0
		return io.EOF
	}
	if filled < want {
		s.eof = true
	}

	for i, v := range s.data[:filled] {
		s.scratch[i] = int32(v)
	}
	w := s.codec.Encode(p, s.scratch[:filled]) * s.codec.Width()
	clear(p[w:])

	s.valid = filled
	s.samples += uint64(filled)
	return nil
}

// WAVSink writes blocks to a PCM WAV stream. The header is finalized by
// Close.
type WAVSink struct {
	enc     *wav.Encoder
	format  Format
	codec   convert.Codec
	buf     *audio.IntBuffer
	data    []int
	scratch []int32
	samples uint64
}

// NewWAVSink creates a WAV writer for blocks of up to blockSamples
// interleaved samples.
func NewWAVSink(w io.WriteSeeker, f Format, blockSamples int) (*WAVSink, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.BitDepth < minWAVBitDepth {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, f.BitDepth)
	}
	codec, err := convert.NewCodec(f.SampleWidth())
	if err != nil {
		return nil, err
	}

	data := make([]int, blockSamples)
	return &WAVSink{
		enc:    wav.NewEncoder(w, f.SampleRate, f.BitDepth, f.Channels, wavFormatPCM),
		format: f,
		codec:  codec,
		buf: &audio.IntBuffer{
			Data:           data,
			Format:         &audio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
			SourceBitDepth: f.BitDepth,
		},
		data:    data,
		scratch: make([]int32, blockSamples),
	}, nil
}

// Format returns the stream layout.
func (s *WAVSink) Format() Format { return s.format }

// Samples returns the total number of samples written so far.
func (s *WAVSink) Samples() uint64 { return s.samples }

// WriteBlock implements BlockWriter. p may be shorter than a full block.
func (s *WAVSink) WriteBlock(p []byte) error {
	n := len(p) / s.codec.Width()
	if n > len(s.data) {
		return fmt.Errorf("%w: %d bytes", ErrBlockSize, len(p))
	}
	if n == 0 {
		return nil
	}

	s.codec.Decode(s.scratch[:n], p)
	for i, v := range s.scratch[:n] {
		s.data[i] = int(v)
	}
	s.buf.Data = s.data[:n]
	if err := s.enc.Write(s.buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	s.samples += uint64(n)
	return nil
}

// Close flushes the encoder and writes the final header. A sink that was
// never written to still produces a valid, empty WAV stream. It does not
// close the underlying writer.
func (s *WAVSink) Close() error {
	if s.samples == 0 {
		// The encoder emits its header on the first write.
		s.buf.Data = s.data[:0]
		if err := s.enc.Write(s.buf); err != nil {
			return fmt.Errorf("failed to write WAV header: %w", err)
		}
	}
	return s.enc.Close()
}

// WAVFile pairs a WAVSource with a WAVSink so that each block written is
// trimmed to the real data of the block last read.
type WAVFile struct {
	*WAVSource
	*WAVSink
}

// NewWAVFile joins src and dst into one BlockDevice.
func NewWAVFile(src *WAVSource, dst *WAVSink) *WAVFile {
	return &WAVFile{WAVSource: src, WAVSink: dst}
}

// WriteBlock implements BlockWriter.
func (f *WAVFile) WriteBlock(p []byte) error {
	n := min(len(p), f.WAVSource.Valid()*f.WAVSink.codec.Width())
	return f.WAVSink.WriteBlock(p[:n])
}

// Format resolves the ambiguity between the embedded types.
func (f *WAVFile) Format() Format { return f.WAVSource.Format() }

// Samples returns the number of samples written.
func (f *WAVFile) Samples() uint64 { return f.WAVSink.Samples() }

// Close finalizes the sink.
func (f *WAVFile) Close() error { return f.WAVSink.Close() }
