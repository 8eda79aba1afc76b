package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/sanitize"
	"github.com/zoobzio/qualify/stream"
)

// requireString rejects sanitising qualifiers on types that are not string
// or pointer-to-string kinded.
func requireString(t reflect.Type, q Qualifier) error {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.String {
		return newConfigError(ErrInapplicable, t, q.String(), "requires a string type")
	}
	return nil
}

// stringOf returns the text of a string-kinded value, following one pointer.
func stringOf(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// asType returns s as a value of t, which requireString has accepted.
func asType(t reflect.Type, s string) any {
	switch {
	case t == reflect.TypeFor[string]():
		return s
	case t.Kind() == reflect.Pointer:
		p := reflect.New(t.Elem())
		p.Elem().SetString(s)
		return p.Interface()
	}
	rv := reflect.New(t).Elem()
	rv.SetString(s)
	return rv.Interface()
}

func maskFactory() Factory {
	return QualifierFactory[Mask](StageValue, func(t reflect.Type, tag Mask, rest Qualifiers, res Resolver) (Codec, error) {
		if err := requireString(t, tag); err != nil {
			return nil, err
		}
		masker, ok := res.Masker(tag.Type)
		if !ok {
			return nil, newConfigError(ErrMissingMasker, t, tag.String(), "register one with SetMasker")
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &maskCodec{inner: inner, typ: t, masker: masker, mt: tag.Type}, nil
	})
}

// maskCodec masks values on the way out. Decoding is untouched.
type maskCodec struct {
	inner  Codec
	typ    reflect.Type
	masker sanitize.Masker
	mt     sanitize.MaskType
}

func (c *maskCodec) Decode(r *stream.Reader) (any, error) {
	return c.inner.Decode(r)
}

func (c *maskCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return c.inner.Encode(w, v)
	}
	s, ok := stringOf(v)
	if !ok {
		return encodeTypeError(c, v)
	}
	return c.inner.Encode(w, asType(c.typ, c.masker.Mask(s)))
}

func (c *maskCodec) String() string {
	return c.inner.String() + ".mask(" + string(c.mt) + ")"
}

func redactFactory() Factory {
	return QualifierFactory[Redact](StageValue, func(t reflect.Type, tag Redact, rest Qualifiers, res Resolver) (Codec, error) {
		if err := requireString(t, tag); err != nil {
			return nil, err
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &redactCodec{inner: inner, replacement: asType(t, tag.Value), label: tag.String()}, nil
	})
}

// redactCodec writes a fixed replacement for every non-null value.
type redactCodec struct {
	inner       Codec
	replacement any
	label       string
}

func (c *redactCodec) Decode(r *stream.Reader) (any, error) {
	return c.inner.Decode(r)
}

func (c *redactCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return c.inner.Encode(w, v)
	}
	return c.inner.Encode(w, c.replacement)
}

func (c *redactCodec) String() string {
	return c.inner.String() + "." + c.label
}
