package convert

import (
	"encoding/binary"
	"fmt"
)

// Byte widths of the supported PCM sample containers.
const (
	width8  = 1
	width16 = 2
	width24 = 3
	width32 = 4

	// 24-bit sign extension
	bitShift8    = 8
	bitShift16   = 16
	signBit24    = 0x800000
	signExtend24 = ^int32(0xFFFFFF)
)

// Codec packs signed PCM samples as little-endian integers of a fixed byte
// width, the layout exchanged with the hardware block boundary.
type Codec struct {
	width int
}

// NewCodec creates a codec for samples of the given byte width (1 to 4).
func NewCodec(width int) (Codec, error) {
	if width < width8 || width > width32 {
		return Codec{}, fmt.Errorf("%w: %d-byte samples", ErrUnsupportedBitDepth, width)
	}
	return Codec{width: width}, nil
}

// Width returns the sample width in bytes.
func (c Codec) Width() int { return c.width }

// Decode unpacks min(len(dst), len(src)/width) samples from src into dst,
// sign-extending each to 32 bits. It returns the number of samples decoded.
func (c Codec) Decode(dst []int32, src []byte) int {
	n := min(len(dst), len(src)/c.width)
	switch c.width {
	case width8:
		for i := range n {
			dst[i] = int32(int8(src[i]))
		}
	case width16:
		for i := range n {
			dst[i] = int32(int16(binary.LittleEndian.Uint16(src[i*width16:])))
		}
	case width24:
		for i := range n {
			b := src[i*width24:]
			v := int32(b[0]) | int32(b[1])<<bitShift8 | int32(b[2])<<bitShift16
			if v&signBit24 != 0 {
				v |= signExtend24
			}
			dst[i] = v
		}
	case width32:
		for i := range n {
			dst[i] = int32(binary.LittleEndian.Uint32(src[i*width32:]))
		}
	}
	return n
}

// Encode packs min(len(src), len(dst)/width) samples into dst. Bits above
// the sample width are discarded, so samples must already be in range.
// It returns the number of samples encoded.
func (c Codec) Encode(dst []byte, src []int32) int {
	n := min(len(src), len(dst)/c.width)
	switch c.width {
	case width8:
		for i := range n {
			dst[i] = byte(src[i])
		}
	case width16:
		for i := range n {
			binary.LittleEndian.PutUint16(dst[i*width16:], uint16(src[i]))
		}
	case width24:
		for i := range n {
			v := src[i]
			b := dst[i*width24:]
			b[0] = byte(v)
			b[1] = byte(v >> bitShift8)
			b[2] = byte(v >> bitShift16)
		}
	case width32:
		for i := range n {
			binary.LittleEndian.PutUint32(dst[i*width32:], uint32(src[i]))
		}
	}
	return n
}
