package buffer

import (
	"math"

	"github.com/indigo-web/utils/uf"
)

// Buffer is an arena for the pieces of a message arriving in runs. Every element (an URL,
// a header name, a value) is written as a segment, which may be appended to several times
// before it's finished. Finished segments stay valid until Clear.
type Buffer struct {
	memory  []byte
	begin   int
	maxSize int
}

// New returns a buffer preallocating initialSize bytes and refusing to grow past maxSize.
// A non-positive maxSize means no limit.
func New(initialSize, maxSize int) Buffer {
	if maxSize <= 0 {
		maxSize = math.MaxInt
	}

	return Buffer{
		memory:  make([]byte, 0, max(initialSize, 0)),
		maxSize: maxSize,
	}
}

// Append writes data into the current segment, checking whether the new amount of bytes
// doesn't exceed the limit, otherwise discarding the data and returning false.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if len(elements) > b.maxSize-len(b.memory) {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// SegmentLength returns a number of bytes taken by the current segment.
func (b *Buffer) SegmentLength() int {
	return len(b.memory) - b.begin
}

// Len returns a number of bytes taken by all the segments.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Finish completes current segment, returning its value.
func (b *Buffer) Finish() []byte {
	segment := b.memory[b.begin:]
	b.begin = len(b.memory)

	return segment
}

// FinishString completes current segment, returning it as a string without copying. The
// string is valid until Clear.
func (b *Buffer) FinishString() string {
	return uf.B2S(b.Finish())
}

// Discard drops the current segment.
func (b *Buffer) Discard() {
	b.memory = b.memory[:b.begin]
}

// Clear just resets the pointers, so old values may be overridden by new ones.
func (b *Buffer) Clear() {
	b.begin = 0
	b.memory = b.memory[:0]
}
