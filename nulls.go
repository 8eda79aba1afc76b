package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/stream"
)

// requiredFactory claims Required. A struct codec also reads the qualifier
// to report members that are absent altogether.
func requiredFactory() Factory {
	return QualifierFactory[Required](StageValue, func(t reflect.Type, _ Required, rest Qualifiers, res Resolver) (Codec, error) {
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &requiredCodec{inner: inner}, nil
	})
}

// requiredCodec rejects null in both directions.
type requiredCodec struct {
	inner Codec
}

func (c *requiredCodec) Decode(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.Null {
		return nil, newDataError(ErrRequired, "", r)
	}
	v, err := c.inner.Decode(r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, newDataError(ErrRequired, "", r)
	}
	return v, nil
}

func (c *requiredCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return &DataError{Err: ErrRequired, At: c.inner.String()}
	}
	return c.inner.Encode(w, v)
}

func (c *requiredCodec) String() string {
	return c.inner.String() + ".required()"
}

func serializeNullsFactory() Factory {
	return QualifierFactory[SerializeNulls](StageValue, func(t reflect.Type, _ SerializeNulls, rest Qualifiers, res Resolver) (Codec, error) {
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &serializeNullsCodec{inner: inner}, nil
	})
}

// serializeNullsCodec turns on null members while the value is written.
type serializeNullsCodec struct {
	inner Codec
}

func (c *serializeNullsCodec) Decode(r *stream.Reader) (any, error) {
	return c.inner.Decode(r)
}

func (c *serializeNullsCodec) Encode(w *stream.Writer, v any) error {
	prev := w.SetSerializeNulls(true)
	err := c.inner.Encode(w, v)
	w.SetSerializeNulls(prev)
	return err
}

func (c *serializeNullsCodec) String() string {
	return c.inner.String() + ".serializeNulls()"
}
