package avro

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors this package returns, per the error taxonomy:
// schema construction/parsing errors surface at build time, wire errors
// surface immediately during read/write and leave the cursor/sink in an
// undefined position.
type Kind int

const (
	// InvalidSchema means schema text or construction violates an invariant.
	InvalidSchema Kind = iota + 1
	// UnknownSchema means a schema-reader case could not recognize the element.
	UnknownSchema
	// UnsupportedSchema means a writer case received a schema kind it cannot handle.
	UnsupportedSchema
	// UnsupportedType means a host type could not be mapped to the schema.
	UnsupportedType
	// Overflow means a varint, decimal fixed size, or duration bound was violated.
	Overflow
	// OutOfRange means an enum index/symbol was not present in the schema.
	OutOfRange
	// InvalidEncoding means wire bytes violate the encoding (negative length, truncated varint).
	InvalidEncoding
	// NoMatchingCase means no builder case accepted a (schema, type) pair.
	NoMatchingCase
)

func (k Kind) String() string {
	switch k {
	case InvalidSchema:
		return "InvalidSchema"
	case UnknownSchema:
		return "UnknownSchema"
	case UnsupportedSchema:
		return "UnsupportedSchema"
	case UnsupportedType:
		return "UnsupportedType"
	case Overflow:
		return "Overflow"
	case OutOfRange:
		return "OutOfRange"
	case InvalidEncoding:
		return "InvalidEncoding"
	case NoMatchingCase:
		return "NoMatchingCase"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind    Kind
	Message string
	Reasons []string // per-case refusal reasons, populated for NoMatchingCase
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("avro: ")
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	for _, r := range e.Reasons {
		b.WriteString("\n  - ")
		b.WriteString(r)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func noMatchingCase(schemaDesc string, reasons []string) *Error {
	return &Error{
		Kind:    NoMatchingCase,
		Message: fmt.Sprintf("no case matched schema %s", schemaDesc),
		Reasons: reasons,
	}
}

// KindOf reports the Kind of err if err (or something it wraps) is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
