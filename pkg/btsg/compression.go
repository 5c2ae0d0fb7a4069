package btsg

import (
	"bytes"
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Codec names
const (
	CodecZstd   = "zstd"
	CodecSnappy = "snappy"
)

// zstdMagic starts every zstd frame
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Compressor compresses one block payload
type Compressor interface {
	Name() string
	Compress(src []byte) []byte
	Close() error
}

type zstdCompressor struct {
	enc *zstd.Encoder
}

func (z *zstdCompressor) Name() string { return CodecZstd }

func (z *zstdCompressor) Compress(src []byte) []byte {
	return z.enc.EncodeAll(src, make([]byte, 0, len(src)/2+64))
}

func (z *zstdCompressor) Close() error { return z.enc.Close() }

type snappyCompressor struct{}

func (snappyCompressor) Name() string { return CodecSnappy }

func (snappyCompressor) Compress(src []byte) []byte { return snappy.Encode(nil, src) }

func (snappyCompressor) Close() error { return nil }

// NewCompressor returns the named codec. level is a zstd level (1-22) and
// is ignored by snappy.
func NewCompressor(name string, level int) (Compressor, error) {
	switch name {
	case "", CodecZstd:
		if level <= 0 {
			level = 3
		}
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		return &zstdCompressor{enc: enc}, nil
	case CodecSnappy:
		return snappyCompressor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// decompressor inflates block payloads of either codec, telling them apart
// by the zstd frame magic
type decompressor struct {
	zstd       *zstd.Decoder
	maxDecoded int
}

func newDecompressor(maxDecoded int) (*decompressor, error) {
	if maxDecoded <= 0 {
		maxDecoded = DefaultMaxDecodedSize
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(maxDecoded)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &decompressor{zstd: dec, maxDecoded: maxDecoded}, nil
}

// decompress inflates data, reusing dst's storage when it is large enough
func (d *decompressor) decompress(data, dst []byte) ([]byte, string, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		out, err := d.zstd.DecodeAll(data, dst[:0])
		if err != nil {
			return nil, CodecZstd, fmt.Errorf("%w: zstd: %v", ErrCorruptBlock, err)
		}
		return out, CodecZstd, nil
	}

	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, CodecSnappy, fmt.Errorf("%w: snappy: %v", ErrCorruptBlock, err)
	}
	if n > d.maxDecoded {
		return nil, CodecSnappy, fmt.Errorf("%w: decoded size %d > %d", ErrBlockTooLarge, n, d.maxDecoded)
	}
	out, err := snappy.Decode(dst[:cap(dst)], data)
	if err != nil {
		return nil, CodecSnappy, fmt.Errorf("%w: snappy: %v", ErrCorruptBlock, err)
	}
	return out, CodecSnappy, nil
}

func (d *decompressor) close() {
	d.zstd.Close()
}
