package storage

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrEdgeNotFound    = errors.New("edge not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrInvalidID       = errors.New("invalid ID")
	ErrDuplicateGroup  = errors.New("duplicate group")
	ErrMalformedField  = errors.New("malformed field")
	ErrForeignPath     = errors.New("path belongs to another graph section")
	ErrInvalidPath     = errors.New("invalid path")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// StorageError provides structured error information for graph section operations.
type StorageError struct {
	Op      string // Operation that failed (e.g., "add_edge", "set_attribute")
	Entity  string // Entity type (e.g., "node", "edge", "group")
	ID      string // Entity ID (if applicable)
	Section string // Owning graph section
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	where := ""
	if e.Section != "" {
		where = " in graph " + e.Section
	}
	if e.ID != "" {
		if e.Context != "" {
			return fmt.Sprintf("%s %s %s%s (%s): %v", e.Op, e.Entity, e.ID, where, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s %s %s%s: %v", e.Op, e.Entity, e.ID, where, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s%s (%s): %v", e.Op, e.Entity, where, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s%s: %v", e.Op, e.Entity, where, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *StorageError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building StorageErrors.
type ErrorBuilder struct {
	err StorageError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: StorageError{Op: op}}
}

// Node sets the entity to "node" with the given ID.
func (b *ErrorBuilder) Node(id string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = id
	return b
}

// Edge sets the entity to "edge" with the given ID.
func (b *ErrorBuilder) Edge(id string) *ErrorBuilder {
	b.err.Entity = "edge"
	b.err.ID = id
	return b
}

// Group sets the entity to "group" with the given ID.
func (b *ErrorBuilder) Group(id string) *ErrorBuilder {
	b.err.Entity = "group"
	b.err.ID = id
	return b
}

// Path sets the entity to "path".
func (b *ErrorBuilder) Path() *ErrorBuilder {
	b.err.Entity = "path"
	return b
}

// Section records the owning graph section.
func (b *ErrorBuilder) Section(id string) *ErrorBuilder {
	b.err.Section = id
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed StorageError.
func (b *ErrorBuilder) Build() *StorageError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// NodeNotFoundError creates a node not found error.
func NodeNotFoundError(section, nodeID string) error {
	return NewError("get").Node(nodeID).Section(section).Cause(ErrNodeNotFound).Err()
}

// EdgeNotFoundError creates an edge not found error.
func EdgeNotFoundError(section, edgeID string) error {
	return NewError("get").Edge(edgeID).Section(section).Cause(ErrEdgeNotFound).Err()
}

// GroupNotFoundError creates a group not found error.
func GroupNotFoundError(section, groupID string) error {
	return NewError("get").Group(groupID).Section(section).Cause(ErrGroupNotFound).Err()
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrEdgeNotFound) || errors.Is(err, ErrGroupNotFound)
}
