package device

import (
	"fmt"
	"io"
	"sync"
)

// blockRing is a fixed-capacity FIFO of equally sized byte blocks. The
// capacity is rounded up to a power of two so positions wrap with a mask.
type blockRing struct {
	data       []byte
	blockBytes int
	mask       uint32
	readPos    uint32
	writePos   uint32
	size       int
}

func newBlockRing(blockBytes, capacity int) blockRing {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}
	return blockRing{
		data:       make([]byte, cap2*blockBytes),
		blockBytes: blockBytes,
		mask:       uint32(cap2 - 1),
	}
}

func (r *blockRing) capacity() int { return int(r.mask) + 1 }

func (r *blockRing) slot(pos uint32) []byte {
	off := int(pos&r.mask) * r.blockBytes
	return r.data[off : off+r.blockBytes]
}

func (r *blockRing) push(p []byte) bool {
	if r.size == r.capacity() {
		return false
	}
	copy(r.slot(r.writePos), p)
	r.writePos++
	r.size++
	return true
}

func (r *blockRing) pop(p []byte) bool {
	if r.size == 0 {
		return false
	}
	copy(p, r.slot(r.readPos))
	r.readPos++
	r.size--
	return true
}

func (r *blockRing) clear() {
	r.size = 0
	r.readPos = 0
	r.writePos = 0
}

// Loopback is an in-memory BlockDevice. A producer Feeds input blocks that
// the pipeline reads, and a consumer Drains the blocks the pipeline writes.
// Both queues have a fixed capacity set at construction and never grow.
//
// Loopback is safe for one producer, one consumer and the pipeline running
// on separate goroutines.
type Loopback struct {
	mu         sync.Mutex
	in         blockRing
	out        blockRing
	blockBytes int
	closed     bool
}

// NewLoopback creates a loopback carrying blocks of blockBytes bytes with
// room for at least capacity blocks in each direction.
func NewLoopback(blockBytes, capacity int) *Loopback {
	if blockBytes < 1 {
		blockBytes = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Loopback{
		in:         newBlockRing(blockBytes, capacity),
		out:        newBlockRing(blockBytes, capacity),
		blockBytes: blockBytes,
	}
}

// BlockBytes returns the block size in bytes.
func (l *Loopback) BlockBytes() int { return l.blockBytes }

// Capacity returns the number of blocks each direction can hold.
func (l *Loopback) Capacity() int { return l.in.capacity() }

func (l *Loopback) checkBlock(p []byte) error {
	if len(p) != l.blockBytes {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBlockSize, len(p), l.blockBytes)
	}
	return nil
}

// Feed queues one input block for the pipeline.
func (l *Loopback) Feed(p []byte) error {
	if err := l.checkBlock(p); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if !l.in.push(p) {
		return ErrOverrun
	}
	return nil
}

// ReadBlock implements BlockReader. It returns io.EOF once the loopback is
// closed and every fed block has been read, and ErrUnderrun when no block
// is queued yet.
func (l *Loopback) ReadBlock(p []byte) error {
	if err := l.checkBlock(p); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.in.pop(p) {
		return nil
	}
	if l.closed {
		return io.EOF
	}
	return ErrUnderrun
}

// WriteBlock implements BlockWriter. It returns ErrOverrun when the output
// queue is full.
func (l *Loopback) WriteBlock(p []byte) error {
	if err := l.checkBlock(p); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.out.push(p) {
		return ErrOverrun
	}
	return nil
}

// Drain dequeues one output block into p. It returns io.EOF once the
// loopback is closed and empty, and ErrUnderrun when no block is queued.
func (l *Loopback) Drain(p []byte) error {
	if err := l.checkBlock(p); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out.pop(p) {
		return nil
	}
	if l.closed {
		return io.EOF
	}
	return ErrUnderrun
}

// Pending returns the number of queued input and output blocks.
func (l *Loopback) Pending() (in, out int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.in.size, l.out.size
}

// Close stops accepting input. Queued blocks stay readable.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Reset discards every queued block and reopens the loopback.
func (l *Loopback) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.in.clear()
	l.out.clear()
	l.closed = false
}
