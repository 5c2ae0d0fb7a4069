// Package pools recycles the byte buffers used to assemble, compress and
// inflate BTSG block payloads.
//
//   - BytePool: size-class based byte slice pooling
//   - BufferBuilder: append-only payload construction backed by a BytePool
package pools
