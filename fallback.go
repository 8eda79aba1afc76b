package qualify

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/zoobzio/qualify/stream"
)

func fallbackOnNullFactory() Factory {
	return QualifierFactory[FallbackOnNull](StageValue, func(t reflect.Type, tag FallbackOnNull, rest Qualifiers, res Resolver) (Codec, error) {
		def, err := primitiveValue(t, tag.Value)
		if err != nil {
			return nil, newConfigError(ErrInapplicable, t, tag.String(), err.Error())
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &fallbackOnNullCodec{inner: inner, fallback: def}, nil
	})
}

// primitiveValue converts v to t, which must be a bool or numeric kind. A
// string v is parsed as the text form of the value.
func primitiveValue(t reflect.Type, v any) (any, error) {
	out := reflect.New(t).Elem()
	s, isText := v.(string)
	src := reflect.ValueOf(v)
	if v == nil {
		return nil, fmt.Errorf("no fallback value")
	}

	switch t.Kind() {
	case reflect.Bool:
		if isText {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, err
			}
			out.SetBool(b)
		} else if src.Kind() == reflect.Bool {
			out.SetBool(src.Bool())
		} else {
			return nil, fmt.Errorf("%T is not a boolean", v)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		switch {
		case isText:
			parsed, err := strconv.ParseInt(s, 10, t.Bits())
			if err != nil {
				return nil, err
			}
			n = parsed
		case src.CanInt():
			n = src.Int()
		case src.CanUint() && src.Uint() <= 1<<63-1:
			n = int64(src.Uint())
		default:
			return nil, fmt.Errorf("%T is not an integer", v)
		}
		if out.OverflowInt(n) {
			return nil, fmt.Errorf("%d overflows %s", n, t)
		}
		out.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var n uint64
		switch {
		case isText:
			parsed, err := strconv.ParseUint(s, 10, t.Bits())
			if err != nil {
				return nil, err
			}
			n = parsed
		case src.CanUint():
			n = src.Uint()
		case src.CanInt() && src.Int() >= 0:
			n = uint64(src.Int())
		default:
			return nil, fmt.Errorf("%T is not an unsigned integer", v)
		}
		if out.OverflowUint(n) {
			return nil, fmt.Errorf("%d overflows %s", n, t)
		}
		out.SetUint(n)

	case reflect.Float32, reflect.Float64:
		var f float64
		switch {
		case isText:
			parsed, err := strconv.ParseFloat(s, t.Bits())
			if err != nil {
				return nil, err
			}
			f = parsed
		case src.CanFloat():
			f = src.Float()
		case src.CanInt():
			f = float64(src.Int())
		case src.CanUint():
			f = float64(src.Uint())
		default:
			return nil, fmt.Errorf("%T is not a number", v)
		}
		out.SetFloat(f)

	default:
		return nil, fmt.Errorf("fallback applies only to booleans and numbers")
	}
	return out.Interface(), nil
}

// fallbackOnNullCodec substitutes a fixed value for null.
type fallbackOnNullCodec struct {
	inner    Codec
	fallback any
}

func (c *fallbackOnNullCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		if err != nil {
			return nil, err
		}
		return c.fallback, nil
	}
	return c.inner.Decode(r)
}

func (c *fallbackOnNullCodec) Encode(w *stream.Writer, v any) error {
	return c.inner.Encode(w, v)
}

func (c *fallbackOnNullCodec) String() string {
	return fmt.Sprintf("%s.fallbackOnNull(%v)", c.inner, c.fallback)
}

func fallbackEnumFactory() Factory {
	return QualifierFactory[FallbackEnum](StageValue, func(t reflect.Type, tag FallbackEnum, rest Qualifiers, res Resolver) (Codec, error) {
		enum, ok := res.Enum(t)
		if !ok {
			return nil, newConfigError(ErrNotEnum, t, tag.String(), "declare its constants with DeclareEnum")
		}
		fallback, ok := enum.Lookup(tag.Name)
		if !ok {
			return nil, newConfigError(ErrMissingConstant, t, tag.String(),
				fmt.Sprintf("Missing field in %s: constant %q is not declared", t, tag.Name))
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &fallbackEnumCodec{inner: inner, enum: enum, fallback: fallback, name: tag.Name}, nil
	})
}

// fallbackEnumCodec decodes unknown enum names as a fallback constant.
type fallbackEnumCodec struct {
	inner    Codec
	enum     *Enum
	fallback any
	name     string
}

func (c *fallbackEnumCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	if v, ok := c.enum.fromJSON(s); ok {
		return v, nil
	}
	return c.fallback, nil
}

func (c *fallbackEnumCodec) Encode(w *stream.Writer, v any) error {
	return c.inner.Encode(w, v)
}

func (c *fallbackEnumCodec) String() string {
	return c.inner.String() + ".fallbackEnum(" + c.name + ")"
}
