package btsg

import (
	"errors"
	"fmt"
)

// Sentinel errors for container decoding
var (
	ErrBadMagic           = errors.New("not a BTSG stream")
	ErrUnsupportedVersion = errors.New("unsupported BTSG version")
	ErrTruncated          = errors.New("truncated BTSG stream")
	ErrBlockTooLarge      = errors.New("block exceeds size limit")
	ErrUnknownBlockType   = errors.New("unknown block type")
	ErrUnknownCodec       = errors.New("unknown compression codec")
	ErrCorruptBlock       = errors.New("corrupt block payload")
	ErrDictionary         = errors.New("malformed dictionary")
)

// FormatError reports a container-level failure at a byte offset of the
// input stream.
type FormatError struct {
	Op     string // e.g. "read magic", "read block"
	Offset int64
	Cause  error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("btsg: %s at offset %d: %v", e.Op, e.Offset, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FormatError) Unwrap() error {
	return e.Cause
}

// IsFormatError reports whether err is a container-level decoding failure
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
