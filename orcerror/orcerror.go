// Package orcerror defines the error kinds reported by the ORC decoder.
//
// Every fallible operation in the module returns either a plain I/O error
// from the underlying reader or an *Error tagged with one of the kinds
// below. Decoding does not recover: once a decoder has returned an error
// it is poisoned and further batch requests are not supported.
package orcerror

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the categories of decode failures.
type Kind uint8

// Error kinds.
const (
	// IO reports a failure of the underlying chunk reader.
	IO Kind = iota
	// EmptyFile reports a file with no content.
	EmptyFile
	// InvalidInput reports a caller-supplied argument that violates a
	// documented constraint.
	InvalidInput
	// OutOfSpec reports stream bytes that do not conform to the ORC
	// format.
	OutOfSpec
	// DecodeProto reports metadata that failed protobuf decoding.
	DecodeProto
	// UnsupportedType reports a column type the decoder does not
	// implement, such as union.
	UnsupportedType
	// UnsupportedTypeVariant reports an unimplemented variant of an
	// otherwise supported type.
	UnsupportedTypeVariant
	// MismatchedSchema reports an ORC type that cannot be decoded into
	// the requested output type.
	MismatchedSchema
	// InvalidColumnEncoding reports an encoding kind that is not valid
	// for the column's type.
	InvalidColumnEncoding
	// DecodeFloat reports a truncated or malformed floating-point value.
	DecodeFloat
	// DecodeTimestamp reports a timestamp whose conversion to the target
	// time unit overflows.
	DecodeTimestamp
	// VarintTooLarge reports a varint exceeding the representable range.
	VarintTooLarge
	// OutOfBound reports an index into a buffer or dictionary that is
	// out of range.
	OutOfBound
	// Arrow reports a failure while assembling Arrow arrays or record
	// batches.
	Arrow
)

func (kind Kind) String() string {
	switch kind {
	case IO:
		return "i/o error"
	case EmptyFile:
		return "empty file"
	case InvalidInput:
		return "invalid input"
	case OutOfSpec:
		return "out of spec"
	case DecodeProto:
		return "protobuf decode error"
	case UnsupportedType:
		return "unsupported type"
	case UnsupportedTypeVariant:
		return "unsupported type variant"
	case MismatchedSchema:
		return "mismatched schema"
	case InvalidColumnEncoding:
		return "invalid column encoding"
	case DecodeFloat:
		return "float decode error"
	case DecodeTimestamp:
		return "timestamp decode error"
	case VarintTooLarge:
		return "varint too large"
	case OutOfBound:
		return "out of bound"
	case Arrow:
		return "arrow error"
	}
	return fmt.Sprintf("unknown error kind (%d)", uint8(kind))
}

// An Error is a decode failure tagged with its kind. The underlying cause,
// if any, is available through errors.Unwrap.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// New returns a new tagged error with a captured stack trace.
func New(kind Kind, msg string) error {
	return errors.WithStack(&Error{kind: kind, msg: msg})
}

// Newf returns a new tagged error with a formatted message and a captured
// stack trace.
func Newf(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{kind: kind, msg: fmt.Sprintf(format, args...)})
}

// Wrap tags the given error with kind, annotating it with msg. A nil err
// returns nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{kind: kind, msg: msg, err: err})
}

// Wrapf tags the given error with kind, annotating it with a formatted
// message. A nil err returns nil.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{kind: kind, msg: fmt.Sprintf(format, args...), err: err})
}

// Kind returns the kind the error was tagged with.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.err != nil && len(e.msg) > 0:
		return fmt.Sprintf("%v: %s: %v", e.kind, e.msg, e.err)
	case e.err != nil:
		return fmt.Sprintf("%v: %v", e.kind, e.err)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.msg)
}

// Unwrap returns the underlying cause of the error, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether err or any error in its chain is tagged with kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.kind == kind {
			return true
		}
		err = e.err
	}
	return false
}
