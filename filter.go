package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/stream"
)

func filterNullsFactory() Factory {
	return QualifierFactory[FilterNulls](StageValue, func(t reflect.Type, tag FilterNulls, rest Qualifiers, res Resolver) (Codec, error) {
		if t.Kind() != reflect.Slice || !nillable(t.Elem()) {
			return nil, newConfigError(ErrInapplicable, t, tag.String(), "requires a slice of pointers, interfaces, maps or slices")
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &filterNullsCodec{inner: inner}, nil
	})
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// filterNullsCodec drops nil elements of a slice in both directions.
type filterNullsCodec struct {
	inner Codec
}

// Decode compacts the decoded slice in place.
func (c *filterNullsCodec) Decode(r *stream.Reader) (any, error) {
	v, err := c.inner.Decode(r)
	if err != nil || v == nil {
		return v, err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return v, nil
	}
	n := 0
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.IsNil() {
			continue
		}
		if n != i {
			rv.Index(n).Set(item)
		}
		n++
	}
	for i := n; i < rv.Len(); i++ {
		rv.Index(i).SetZero()
	}
	return rv.Slice(0, n).Interface(), nil
}

// Encode writes a filtered copy; the caller's slice is left untouched.
func (c *filterNullsCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return c.inner.Encode(w, v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || !nillable(rv.Type().Elem()) {
		return c.inner.Encode(w, v)
	}
	out := reflect.MakeSlice(rv.Type(), 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if item := rv.Index(i); !item.IsNil() {
			out = reflect.Append(out, item)
		}
	}
	return c.inner.Encode(w, out.Interface())
}

func (c *filterNullsCodec) String() string {
	return c.inner.String() + ".filterNulls()"
}

func nonEmptyFactory() Factory {
	return QualifierFactory[SerializeOnlyNonEmpty](StageValue, func(t reflect.Type, tag SerializeOnlyNonEmpty, rest Qualifiers, res Resolver) (Codec, error) {
		switch t.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		default:
			return nil, newConfigError(ErrInapplicable, t, tag.String(), "requires a slice, array, map or string")
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &nonEmptyCodec{inner: inner}, nil
	})
}

// nonEmptyCodec writes null for empty collections and strings.
type nonEmptyCodec struct {
	inner Codec
}

func (c *nonEmptyCodec) Decode(r *stream.Reader) (any, error) {
	return c.inner.Decode(r)
}

func (c *nonEmptyCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		if rv.Len() == 0 {
			return w.Null()
		}
	}
	return c.inner.Encode(w, v)
}

func (c *nonEmptyCodec) String() string {
	return c.inner.String() + ".serializeOnlyNonEmpty()"
}
