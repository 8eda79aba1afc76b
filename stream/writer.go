package stream

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
)

// Writer is a forward-only JSON token writer.
//
// Member names are held back until the member's value is written. When the
// value is null and emit-nulls is off, the name is discarded and nothing is
// written for the member.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	enc     *jsontext.Encoder
	nulls   bool
	pending string
	named   bool
}

// NewWriter returns a Writer producing compact JSON on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		enc: jsontext.NewEncoder(w, jsontext.AllowDuplicateNames(true)),
	}
}

// SerializeNulls reports whether null members are written.
func (w *Writer) SerializeNulls() bool {
	return w.nulls
}

// SetSerializeNulls switches emit-nulls and returns the previous setting so
// callers can restore it.
func (w *Writer) SetSerializeNulls(on bool) bool {
	prev := w.nulls
	w.nulls = on
	return prev
}

// BeginObject writes '{'.
func (w *Writer) BeginObject() error {
	return w.token(jsontext.BeginObject)
}

// EndObject writes '}'.
func (w *Writer) EndObject() error {
	if w.named {
		return fmt.Errorf("object closed with dangling member name %q", w.pending)
	}
	return w.enc.WriteToken(jsontext.EndObject)
}

// BeginArray writes '['.
func (w *Writer) BeginArray() error {
	return w.token(jsontext.BeginArray)
}

// EndArray writes ']'.
func (w *Writer) EndArray() error {
	return w.enc.WriteToken(jsontext.EndArray)
}

// Name records the next member name. It is written together with the value.
func (w *Writer) Name(name string) error {
	if w.named {
		return fmt.Errorf("member name %q follows name %q without a value", name, w.pending)
	}
	w.pending = name
	w.named = true
	return nil
}

// Null writes null, or drops the pending member when emit-nulls is off.
func (w *Writer) Null() error {
	if w.named && !w.nulls {
		w.pending = ""
		w.named = false
		return nil
	}
	return w.token(jsontext.Null)
}

// String writes a string value.
func (w *Writer) String(s string) error {
	return w.token(jsontext.String(s))
}

// Bool writes a boolean value.
func (w *Writer) Bool(b bool) error {
	return w.token(jsontext.Bool(b))
}

// Int writes a signed integer.
func (w *Writer) Int(n int64) error {
	return w.token(jsontext.Int(n))
}

// Uint writes an unsigned integer.
func (w *Writer) Uint(n uint64) error {
	return w.token(jsontext.Uint(n))
}

// Float writes f using the shortest representation for the given size.
func (w *Writer) Float(f float64, bits int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("unsupported float value %v", f)
	}
	if bits == 32 {
		return w.Raw(jsontext.Value(strconv.FormatFloat(f, 'g', -1, 32)))
	}
	return w.token(jsontext.Float(f))
}

// Raw writes a complete, already encoded JSON value.
func (w *Writer) Raw(v jsontext.Value) error {
	if err := w.flush(); err != nil {
		return err
	}
	return w.enc.WriteValue(v)
}

func (w *Writer) token(t jsontext.Token) error {
	if err := w.flush(); err != nil {
		return err
	}
	return w.enc.WriteToken(t)
}

func (w *Writer) flush() error {
	if !w.named {
		return nil
	}
	name := w.pending
	w.pending = ""
	w.named = false
	return w.enc.WriteToken(jsontext.String(name))
}
