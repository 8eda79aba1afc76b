// Package stream provides the forward-only JSON token reader and writer that
// qualify codecs operate on.
//
// Reader and Writer are thin wrappers around jsontext.Decoder and
// jsontext.Encoder. They add the pieces codecs rely on: a distinguishable
// Null kind on Peek, a JSONPath-style position for error messages, exact
// single-value skipping, and a deferred member name on the writer so that a
// null value can drop its member unless emit-nulls is switched on.
package stream

import (
	"errors"
	"fmt"
)

// Kind is the kind of the next JSON token.
type Kind byte

// Token kinds. The byte values match jsontext.Kind.
const (
	Invalid     Kind = 0
	Null        Kind = 'n'
	False       Kind = 'f'
	True        Kind = 't'
	String      Kind = '"'
	Number      Kind = '0'
	BeginObject Kind = '{'
	EndObject   Kind = '}'
	BeginArray  Kind = '['
	EndArray    Kind = ']'
)

// String returns the upper-case token name used in error messages.
func (k Kind) String() string {
	switch k {
	case Null:
		return "NULL"
	case False, True:
		return "BOOLEAN"
	case String:
		return "STRING"
	case Number:
		return "NUMBER"
	case BeginObject:
		return "BEGIN_OBJECT"
	case EndObject:
		return "END_OBJECT"
	case BeginArray:
		return "BEGIN_ARRAY"
	case EndArray:
		return "END_ARRAY"
	default:
		return "INVALID"
	}
}

// ErrMismatch is matched by every error describing a document whose shape
// disagrees with what a codec expected.
var ErrMismatch = errors.New("data mismatch")

// MismatchError reports a token of the wrong kind.
type MismatchError struct {
	Expected string // what the codec wanted (e.g. "BEGIN_ARRAY", "int8")
	Actual   string // what the document held
	Path     string // stream position, e.g. $.obj[2]
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s but was %s at path %s", e.Expected, e.Actual, e.Path)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}
