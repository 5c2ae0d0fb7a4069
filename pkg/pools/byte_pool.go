package pools

import (
	"sync"
)

// Buffer size classes. Block payloads range from a single G line to the
// node block of a large section.
const (
	SmallSize  = 4 << 10  // marker plus a few records
	MediumSize = 64 << 10 // typical section block
	LargeSize  = 1 << 20  // node and edge blocks of large sections
	HugeSize   = 16 << 20 // dictionaries of whole-genome inputs
	MaxPool    = HugeSize // larger buffers are left to the GC
)

var classSizes = [...]int{SmallSize, MediumSize, LargeSize, HugeSize}

// BytePool provides size-class based pooling for byte slices.
type BytePool struct {
	classes [len(classSizes)]sync.Pool
}

// NewBytePool creates an empty pool
func NewBytePool() *BytePool {
	p := &BytePool{}
	for i, size := range classSizes {
		p.classes[i].New = func() any {
			b := make([]byte, 0, size)
			return &b
		}
	}
	return p
}

// classFor returns the smallest class holding size bytes, or -1
func classFor(size int) int {
	for i, c := range classSizes {
		if size <= c {
			return i
		}
	}
	return -1
}

// Get returns a slice with length 0 and capacity of at least size.
func (p *BytePool) Get(size int) []byte {
	i := classFor(size)
	if i < 0 {
		return make([]byte, 0, size)
	}
	bp, ok := p.classes[i].Get().(*[]byte)
	if !ok || cap(*bp) < size {
		return make([]byte, 0, size)
	}
	return (*bp)[:0]
}

// Put returns b to the pool. A slice is filed under the largest class its
// capacity covers, so Get never hands out a slice smaller than its class.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	if c > MaxPool || c < SmallSize {
		return
	}
	i := len(classSizes) - 1
	for i > 0 && classSizes[i] > c {
		i--
	}
	b = b[:0]
	p.classes[i].Put(&b)
}

// Default global byte pool
var defaultBytePool = NewBytePool()

// GetBytes returns a byte slice from the default pool.
func GetBytes(size int) []byte {
	return defaultBytePool.Get(size)
}

// PutBytes returns a byte slice to the default pool.
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}
