package document

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// Sentinel errors for document parsing and validation
var (
	ErrDuplicateGraph  = errors.New("duplicate graph")
	ErrDuplicateGroup  = storage.ErrDuplicateGroup
	ErrMalformedRecord = errors.New("malformed record")
	ErrElementNotFound = errors.New("element not found")
	ErrGraphNotFound   = errors.New("graph not found")
)

// ParseError locates a failure in TSG text. Line is 1-based and is zero for
// failures found after the whole document was read.
type ParseError struct {
	Line  int
	Kind  string // record tag, e.g. "E"
	ID    string
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	where := ""
	if e.Line > 0 {
		where = fmt.Sprintf("line %d: ", e.Line)
	}
	if e.ID != "" {
		return fmt.Sprintf("%s%s record %s: %v", where, e.Kind, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s%s record: %v", where, e.Kind, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedRecord, err)
}
