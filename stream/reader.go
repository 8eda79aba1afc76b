package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrTrailingData indicates input continues after the top-level value.
var ErrTrailingData = errors.New("trailing data after top-level value")

// scope is one open container on the reader's path.
type scope struct {
	array bool
	name  string
	named bool
	index int
}

// Reader is a forward-only JSON token reader.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	dec    *jsontext.Decoder
	scopes []scope
	root   string
}

// NewReader returns a Reader consuming r. Duplicate member names are
// permitted; codecs decide which occurrence they honour.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		dec: jsontext.NewDecoder(r, jsontext.AllowDuplicateNames(true)),
	}
}

// NewReaderBytes returns a Reader over an in-memory document.
func NewReaderBytes(data []byte) *Reader {
	return NewReader(bytes.NewReader(data))
}

// NewReaderAt returns a Reader over a value that was read from path in an
// enclosing document. Paths it reports are rooted at path.
func NewReaderAt(data []byte, path string) *Reader {
	r := NewReaderBytes(data)
	r.root = path
	return r
}

// Peek reports the kind of the next token without consuming it.
func (r *Reader) Peek() (Kind, error) {
	k := Kind(r.dec.PeekKind())
	if k != Invalid {
		return k, nil
	}
	// PeekKind reports failures as kind 0; ReadToken surfaces the cause.
	if _, err := r.dec.ReadToken(); err != nil {
		if errors.Is(err, io.EOF) {
			return Invalid, io.ErrUnexpectedEOF
		}
		return Invalid, err
	}
	return Invalid, fmt.Errorf("invalid token at path %s", r.Path())
}

// HasNext reports whether the current object or array has another member.
func (r *Reader) HasNext() (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	return k != EndObject && k != EndArray, nil
}

// BeginObject consumes the '{' opening an object.
func (r *Reader) BeginObject() error {
	if err := r.expect(BeginObject); err != nil {
		return err
	}
	r.scopes = append(r.scopes, scope{})
	return nil
}

// EndObject consumes the '}' closing the current object.
func (r *Reader) EndObject() error {
	if err := r.expect(EndObject); err != nil {
		return err
	}
	r.pop()
	return nil
}

// BeginArray consumes the '[' opening an array.
func (r *Reader) BeginArray() error {
	if err := r.expect(BeginArray); err != nil {
		return err
	}
	r.scopes = append(r.scopes, scope{array: true})
	return nil
}

// EndArray consumes the ']' closing the current array.
func (r *Reader) EndArray() error {
	if err := r.expect(EndArray); err != nil {
		return err
	}
	r.pop()
	return nil
}

// NextName consumes an object member name.
func (r *Reader) NextName() (string, error) {
	if n := len(r.scopes); n == 0 || r.scopes[n-1].array {
		return "", fmt.Errorf("member name requested outside an object at path %s", r.Path())
	}
	tok, err := r.read(String, "NAME")
	if err != nil {
		return "", err
	}
	name := tok.String()
	top := &r.scopes[len(r.scopes)-1]
	top.name = name
	top.named = true
	return name, nil
}

// NextNull consumes a null literal.
func (r *Reader) NextNull() error {
	if _, err := r.read(Null, Null.String()); err != nil {
		return err
	}
	r.valueDone()
	return nil
}

// NextString consumes a string value.
func (r *Reader) NextString() (string, error) {
	tok, err := r.read(String, String.String())
	if err != nil {
		return "", err
	}
	r.valueDone()
	return tok.String(), nil
}

// NextBool consumes a boolean value.
func (r *Reader) NextBool() (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	if k != True && k != False {
		return false, r.Mismatch("BOOLEAN", k.String())
	}
	tok, err := r.dec.ReadToken()
	if err != nil {
		return false, err
	}
	r.valueDone()
	return tok.Bool(), nil
}

// NextNumber consumes a number and returns its literal text.
func (r *Reader) NextNumber() (string, error) {
	tok, err := r.read(Number, Number.String())
	if err != nil {
		return "", err
	}
	r.valueDone()
	return tok.String(), nil
}

// NextInt consumes a number that must fit a signed integer of the given size.
func (r *Reader) NextInt(bits int) (int64, error) {
	var n int64
	err := r.number(fmt.Sprintf("int%d", bits), func(lit string) (err error) {
		n, err = strconv.ParseInt(lit, 10, bits)
		return err
	})
	return n, err
}

// NextUint consumes a number that must fit an unsigned integer of the given size.
func (r *Reader) NextUint(bits int) (uint64, error) {
	var n uint64
	err := r.number(fmt.Sprintf("uint%d", bits), func(lit string) (err error) {
		n, err = strconv.ParseUint(lit, 10, bits)
		return err
	})
	return n, err
}

// NextFloat consumes a number as a float of the given size.
func (r *Reader) NextFloat(bits int) (float64, error) {
	var f float64
	err := r.number(fmt.Sprintf("float%d", bits), func(lit string) (err error) {
		f, err = strconv.ParseFloat(lit, bits)
		return err
	})
	return f, err
}

// number reads a numeric literal and parses it before the position advances,
// so a range failure reports the offending element.
func (r *Reader) number(expected string, parse func(string) error) error {
	tok, err := r.read(Number, expected)
	if err != nil {
		return err
	}
	lit := tok.String()
	if err := parse(lit); err != nil {
		return r.Mismatch(expected, lit)
	}
	r.valueDone()
	return nil
}

// SkipValue consumes exactly one complete value, scalar or nested.
func (r *Reader) SkipValue() error {
	if err := r.dec.SkipValue(); err != nil {
		return err
	}
	r.valueDone()
	return nil
}

// ReadValue consumes one complete value and returns a copy of its raw text.
func (r *Reader) ReadValue() (jsontext.Value, error) {
	v, err := r.dec.ReadValue()
	if err != nil {
		return nil, err
	}
	r.valueDone()
	return jsontext.Value(bytes.Clone(v)), nil
}

// End verifies that the input holds nothing after the top-level value.
func (r *Reader) End() error {
	if r.dec.PeekKind() != 0 {
		return fmt.Errorf("%w at offset %d", ErrTrailingData, r.dec.InputOffset())
	}
	_, err := r.dec.ReadToken()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Path returns the current position as $.member[index] notation.
func (r *Reader) Path() string {
	var b strings.Builder
	if r.root != "" {
		b.WriteString(r.root)
	} else {
		b.WriteByte('$')
	}
	for _, s := range r.scopes {
		switch {
		case s.array:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case s.named:
			b.WriteByte('.')
			b.WriteString(s.name)
		}
	}
	return b.String()
}

// Mismatch builds a MismatchError at the current position.
func (r *Reader) Mismatch(expected, actual string) error {
	return &MismatchError{Expected: expected, Actual: actual, Path: r.Path()}
}

func (r *Reader) expect(k Kind) error {
	if _, err := r.read(k, k.String()); err != nil {
		return err
	}
	return nil
}

func (r *Reader) read(k Kind, expected string) (jsontext.Token, error) {
	got, err := r.Peek()
	if err != nil {
		return jsontext.Token{}, err
	}
	if got != k {
		return jsontext.Token{}, r.Mismatch(expected, got.String())
	}
	return r.dec.ReadToken()
}

func (r *Reader) pop() {
	if len(r.scopes) > 0 {
		r.scopes = r.scopes[:len(r.scopes)-1]
	}
	r.valueDone()
}

// valueDone advances the enclosing array index after a complete value.
func (r *Reader) valueDone() {
	if n := len(r.scopes); n > 0 && r.scopes[n-1].array {
		r.scopes[n-1].index++
	}
}
