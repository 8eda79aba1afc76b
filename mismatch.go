package qualify

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/zoobzio/qualify/stream"
)

func defaultOnMismatchFactory() Factory {
	return QualifierFactory[DefaultOnMismatch](StageValue, func(t reflect.Type, tag DefaultOnMismatch, rest Qualifiers, res Resolver) (Codec, error) {
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		c := &defaultOnMismatchCodec{inner: inner, typ: t, label: tag.String()}
		switch {
		case tag.JSON != "":
			def, err := inner.Decode(stream.NewReaderBytes([]byte(tag.JSON)))
			switch {
			case errors.Is(err, errUnbound):
				// Recursive types can only decode the literal once resolved.
				c.literal = []byte(tag.JSON)
			case err != nil:
				return nil, newConfigError(ErrInvalidTag, t, tag.String(), err.Error())
			default:
				c.fallback = def
			}
		case tag.Value != nil:
			rv := reflect.ValueOf(tag.Value)
			if !rv.Type().ConvertibleTo(t) {
				return nil, newConfigError(ErrInvalidTag, t, tag.String(), fmt.Sprintf("%T is not convertible", tag.Value))
			}
			c.fallback = rv.Convert(t).Interface()
		}
		return c, nil
	})
}

// defaultOnMismatchCodec decodes the raw value in isolation and substitutes
// a default when its shape disagrees with the inner codec.
type defaultOnMismatchCodec struct {
	inner    Codec
	typ      reflect.Type
	fallback any
	label    string

	// literal is a JSON default decoded on first use.
	literal []byte
	once    sync.Once
	err     error
}

func (c *defaultOnMismatchCodec) Decode(r *stream.Reader) (any, error) {
	at := r.Path()
	raw, err := r.ReadValue()
	if err != nil {
		return nil, err
	}
	v, err := c.inner.Decode(stream.NewReaderAt(raw, at))
	if errors.Is(err, ErrMismatch) {
		return c.defaultValue()
	}
	return v, err
}

func (c *defaultOnMismatchCodec) defaultValue() (any, error) {
	if c.literal == nil {
		return c.fallback, nil
	}
	c.once.Do(func() {
		def, err := c.inner.Decode(stream.NewReaderBytes(c.literal))
		if err != nil {
			c.err = newConfigError(ErrInvalidTag, c.typ, c.label, err.Error())
			return
		}
		c.fallback = def
	})
	return c.fallback, c.err
}

func (c *defaultOnMismatchCodec) Encode(w *stream.Writer, v any) error {
	return c.inner.Encode(w, v)
}

func (c *defaultOnMismatchCodec) String() string {
	return c.inner.String() + "." + c.label
}
