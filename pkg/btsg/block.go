package btsg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Block is one typed unit of the container. Data is the compressed payload.
type Block struct {
	Type BlockType
	Data []byte
}

// writeBlock writes [type:1][length:4 LE][payload]
func writeBlock(w io.Writer, b Block) (int, error) {
	if uint64(len(b.Data)) > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: %s block of %d bytes", ErrBlockTooLarge, b.Type, len(b.Data))
	}
	var hdr [blockHeaderSize]byte
	hdr[0] = byte(b.Type)
	binary.LittleEndian.PutUint32(hdr[1:], uint32(len(b.Data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return 0, err
	}
	n, err := w.Write(b.Data)
	return blockHeaderSize + n, err
}

// writePreamble writes the magic and version
func writePreamble(w io.Writer) error {
	var buf [8]byte
	copy(buf[:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:], Version)
	_, err := w.Write(buf[:])
	return err
}

// BlockReader reads blocks sequentially after the preamble has been
// consumed. Declared lengths above the limit are rejected before any
// payload buffer is allocated.
type BlockReader struct {
	r      io.Reader
	offset int64
	limit  uint32

	// Strict makes Next fail on block types this version does not know
	Strict bool
}

// NewBlockReader wraps r, which must be positioned at the first block.
// offset is the stream position of r, used in errors.
func NewBlockReader(r io.Reader, offset int64, limit uint32) *BlockReader {
	if limit == 0 {
		limit = DefaultMaxBlockSize
	}
	return &BlockReader{r: r, offset: offset, limit: limit}
}

// Offset returns the stream position of the next block
func (br *BlockReader) Offset() int64 { return br.offset }

// Next returns the next block, or io.EOF when the stream ends cleanly
// between blocks.
func (br *BlockReader) Next() (Block, error) {
	start := br.offset

	var typ [1]byte
	if _, err := io.ReadFull(br.r, typ[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Block{}, io.EOF
		}
		return Block{}, &FormatError{Op: "read block type", Offset: start, Cause: err}
	}
	br.offset++

	var size [4]byte
	if n, err := io.ReadFull(br.r, size[:]); err != nil {
		br.offset += int64(n)
		return Block{}, &FormatError{Op: "read block length", Offset: start, Cause: truncation(err)}
	}
	br.offset += 4

	length := binary.LittleEndian.Uint32(size[:])
	if length > br.limit {
		return Block{}, &FormatError{
			Op:     "read block length",
			Offset: start,
			Cause:  fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, length, br.limit),
		}
	}

	t := BlockType(typ[0])
	if br.Strict && !t.Known() {
		return Block{}, &FormatError{Op: "read block", Offset: start, Cause: fmt.Errorf("%w: %s", ErrUnknownBlockType, t)}
	}

	data := make([]byte, length)
	n, err := io.ReadFull(br.r, data)
	br.offset += int64(n)
	if err != nil {
		return Block{}, &FormatError{Op: "read block payload", Offset: start, Cause: truncation(err)}
	}
	return Block{Type: t, Data: data}, nil
}

// truncation maps short reads to ErrTruncated and keeps other I/O errors
func truncation(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
