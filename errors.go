package fdt

import (
	"errors"
	"fmt"

	"github.com/scigolib/fdt/internal/cursor"
)

// Re-exported so callers never need to reach into an internal package to
// use errors.As against a cursor-level failure.
type (
	// UnexpectedEndOfInputError is returned by any read that would cross
	// the end of the buffer it reads from.
	UnexpectedEndOfInputError = cursor.UnexpectedEndOfInputError
	// UnalignedWriteError indicates a serializer write targeted a position
	// that was not a multiple of the value's width. A correct
	// implementation of this package never produces one; seeing this error
	// means the codec has a bug.
	UnalignedWriteError = cursor.UnalignedWriteError
	// NonContiguousWriteError indicates a serializer write targeted a
	// position that neither extended the buffer nor patched bytes already
	// written. Like UnalignedWriteError, this signals a codec bug rather
	// than a caller mistake.
	NonContiguousWriteError = cursor.NonContiguousWriteError
)

// ErrInvalidMagicNumber is returned by Load when the buffer does not begin
// with the DTB magic number 0xd00dfeed.
var ErrInvalidMagicNumber = errors.New("fdt: invalid magic number")

// ErrSizeMismatch is returned by Load when the header's totalsize field
// disagrees with the length of the buffer passed to Load.
var ErrSizeMismatch = errors.New("fdt: header totalsize does not match buffer length")

// ErrVersionNotSupported is returned by Load when the header's version
// field is not 17, the only version this codec understands.
var ErrVersionNotSupported = errors.New("fdt: unsupported device tree version")

// ErrUtf8 is returned when a name the format requires to be UTF-8 is not.
var ErrUtf8 = errors.New("fdt: invalid utf-8")

// ParseError reports a structural token that was expected but not found at
// Offset within the structure block.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fdt: parse error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("fdt: parse error at offset %d", e.Offset)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PropErrorKind enumerates the ways decoding a property's value can fail.
type PropErrorKind int

const (
	// PropNotFound means the node has no property with the requested name.
	PropNotFound PropErrorKind = iota
	// PropMissing0 means a string property's value does not end in 0x00.
	PropMissing0
	// PropUtf8Error means a string property's bytes are not valid UTF-8.
	PropUtf8Error
	// PropSliceReadError means an integer property's value is shorter than
	// the requested width.
	PropSliceReadError
)

func (k PropErrorKind) String() string {
	switch k {
	case PropNotFound:
		return "not found"
	case PropMissing0:
		return "missing NUL terminator"
	case PropUtf8Error:
		return "invalid utf-8"
	case PropSliceReadError:
		return "value too short"
	default:
		return "unknown"
	}
}

// PropError is returned by Node's typed property accessors. It is a
// distinct type from the load/store error taxonomy above, since decoding a
// property is a query-time operation that can fail independently of
// whether the tree itself was well-formed.
type PropError struct {
	Name string
	Kind PropErrorKind
	Err  error
}

func (e *PropError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fdt: property %q: %s: %v", e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("fdt: property %q: %s", e.Name, e.Kind)
}

func (e *PropError) Unwrap() error { return e.Err }

func newPropError(name string, kind PropErrorKind, err error) *PropError {
	return &PropError{Name: name, Kind: kind, Err: err}
}
