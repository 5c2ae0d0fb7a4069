package pools

import "encoding/binary"

// BufferBuilder appends into a pooled buffer. It implements io.Writer.
type BufferBuilder struct {
	buf  []byte
	pool *BytePool
}

// NewBufferBuilder creates a builder with at least initialCap bytes of room.
func NewBufferBuilder(initialCap int) *BufferBuilder {
	return &BufferBuilder{
		buf:  defaultBytePool.Get(initialCap),
		pool: defaultBytePool,
	}
}

// Write appends p.
func (b *BufferBuilder) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *BufferBuilder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends a string.
func (b *BufferBuilder) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// WriteUint32LE appends v in little-endian order.
func (b *BufferBuilder) WriteUint32LE(v uint32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
}

// WriteLines appends lines joined by '\n', without a trailing newline.
func (b *BufferBuilder) WriteLines(lines []string) {
	for i, l := range lines {
		if i > 0 {
			b.buf = append(b.buf, '\n')
		}
		b.buf = append(b.buf, l...)
	}
}

// Bytes returns the built buffer. It is only valid until Release.
func (b *BufferBuilder) Bytes() []byte {
	return b.buf
}

// Len returns the current length of the buffer.
func (b *BufferBuilder) Len() int {
	return len(b.buf)
}

// Reset empties the buffer, keeping its capacity.
func (b *BufferBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Release returns the buffer to the pool. After Release, the builder should not be used.
func (b *BufferBuilder) Release() {
	if b.pool != nil && b.buf != nil {
		b.pool.Put(b.buf)
	}
	b.buf = nil
}
