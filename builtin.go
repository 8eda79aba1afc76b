package qualify

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/zoobzio/qualify/stream"
)

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	rawValueType        = reflect.TypeFor[jsontext.Value]()
)

// structural returns the default codec for t, ignoring qualifiers.
func (res *resolution) structural(t reflect.Type) (Codec, error) {
	res.reg.mu.RLock()
	defined, isDefined := res.reg.defined[t]
	enum, isEnum := res.reg.enums[t]
	res.reg.mu.RUnlock()

	switch {
	case isDefined:
		return defined, nil
	case isEnum:
		return &enumCodec{enum: enum}, nil
	case t == rawValueType:
		return rawCodec{}, nil
	case t.Kind() != reflect.Pointer && t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType):
		return &textCodec{typ: t}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return &boolCodec{typ: t}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &intCodec{typ: t}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &uintCodec{typ: t}, nil
	case reflect.Float32, reflect.Float64:
		return &floatCodec{typ: t}, nil
	case reflect.String:
		return &stringCodec{typ: t}, nil
	case reflect.Pointer:
		elem, err := res.Resolve(t.Elem(), Qualifiers{})
		if err != nil {
			return nil, err
		}
		return &pointerCodec{typ: t, elem: elem}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &bytesCodec{typ: t}, nil
		}
		elem, err := res.Resolve(t.Elem(), Qualifiers{})
		if err != nil {
			return nil, err
		}
		return &sliceCodec{typ: t, elem: elem}, nil
	case reflect.Array:
		elem, err := res.Resolve(t.Elem(), Qualifiers{})
		if err != nil {
			return nil, err
		}
		return &arrayCodec{typ: t, elem: elem}, nil
	case reflect.Map:
		switch t.Key().Kind() {
		case reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return nil, newConfigError(ErrUnsupportedType, t, "", "map keys must be strings or integers")
		}
		elem, err := res.Resolve(t.Elem(), Qualifiers{})
		if err != nil {
			return nil, err
		}
		return &mapCodec{typ: t, elem: elem}, nil
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, newConfigError(ErrUnsupportedType, t, "", "only the empty interface is supported")
		}
		return &anyCodec{reg: res.reg}, nil
	case reflect.Struct:
		return res.structCodec(t)
	}
	return nil, newConfigError(ErrUnsupportedType, t, "", "")
}

// encodeTypeError reports a value handed to a codec built for another type.
func encodeTypeError(c Codec, v any) error {
	return fmt.Errorf("%w: %s cannot encode %T", ErrUnsupportedType, c, v)
}

// typeName returns a short name for codec descriptions.
func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

type boolCodec struct {
	typ reflect.Type
}

func (c *boolCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	b, err := r.NextBool()
	if err != nil {
		return nil, err
	}
	if c.typ.Kind() == reflect.Bool && c.typ.PkgPath() == "" {
		return b, nil
	}
	rv := reflect.New(c.typ).Elem()
	rv.SetBool(b)
	return rv.Interface(), nil
}

func (c *boolCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return encodeTypeError(c, v)
	}
	return w.Bool(rv.Bool())
}

func (c *boolCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

type intCodec struct {
	typ reflect.Type
}

func (c *intCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	n, err := r.NextInt(c.typ.Bits())
	if err != nil {
		return nil, err
	}
	rv := reflect.New(c.typ).Elem()
	rv.SetInt(n)
	return rv.Interface(), nil
}

func (c *intCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.Uint(rv.Uint())
	}
	return encodeTypeError(c, v)
}

func (c *intCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

type uintCodec struct {
	typ reflect.Type
}

func (c *uintCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	n, err := r.NextUint(c.typ.Bits())
	if err != nil {
		return nil, err
	}
	rv := reflect.New(c.typ).Elem()
	rv.SetUint(n)
	return rv.Interface(), nil
}

func (c *uintCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return w.Uint(rv.Uint())
	}
	return encodeTypeError(c, v)
}

func (c *uintCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

type floatCodec struct {
	typ reflect.Type
}

func (c *floatCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	f, err := r.NextFloat(c.typ.Bits())
	if err != nil {
		return nil, err
	}
	rv := reflect.New(c.typ).Elem()
	rv.SetFloat(f)
	return rv.Interface(), nil
}

func (c *floatCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32:
		return w.Float(rv.Float(), 32)
	case reflect.Float64:
		return w.Float(rv.Float(), 64)
	}
	return encodeTypeError(c, v)
}

func (c *floatCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

type stringCodec struct {
	typ reflect.Type
}

func (c *stringCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	if c.typ.PkgPath() == "" {
		return s, nil
	}
	rv := reflect.New(c.typ).Elem()
	rv.SetString(s)
	return rv.Interface(), nil
}

func (c *stringCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return encodeTypeError(c, v)
	}
	return w.String(rv.String())
}

func (c *stringCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

// textCodec carries encoding.TextMarshaler types as JSON strings.
type textCodec struct {
	typ reflect.Type
}

func (c *textCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	at := r.Path()
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	p := reflect.New(c.typ)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return nil, &MismatchError{Expected: c.typ.String(), Actual: strconv.Quote(s), Path: at}
	}
	return p.Elem().Interface(), nil
}

func (c *textCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	m, ok := v.(encoding.TextMarshaler)
	if !ok {
		return encodeTypeError(c, v)
	}
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	return w.String(string(text))
}

func (c *textCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

// bytesCodec carries byte slices as base64 strings.
type bytesCodec struct {
	typ reflect.Type
}

func (c *bytesCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	at := r.Path()
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &MismatchError{Expected: "base64", Actual: strconv.Quote(s), Path: at}
	}
	return reflect.ValueOf(b).Convert(c.typ).Interface(), nil
}

func (c *bytesCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
		return encodeTypeError(c, v)
	}
	return w.String(base64.StdEncoding.EncodeToString(rv.Bytes()))
}

func (c *bytesCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

type pointerCodec struct {
	typ  reflect.Type
	elem Codec
}

func (c *pointerCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	v, err := c.elem.Decode(r)
	if err != nil || v == nil {
		return nil, err
	}
	p := reflect.New(c.typ.Elem())
	assign(p.Elem(), v)
	return p.Interface(), nil
}

func (c *pointerCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return c.elem.Encode(w, v)
	}
	return c.elem.Encode(w, rv.Elem().Interface())
}

func (c *pointerCodec) String() string { return "codec(*" + typeName(c.typ.Elem()) + ")" }

// listCodec reads and writes JSON arrays as []any through an element codec.
type listCodec struct {
	elem Codec
}

func (c *listCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := []any{}
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := r.EndArray(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *listCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	items, ok := v.([]any)
	if !ok {
		return encodeTypeError(c, v)
	}
	if err := w.BeginArray(); err != nil {
		return err
	}
	for _, item := range items {
		if err := c.elem.Encode(w, item); err != nil {
			return err
		}
	}
	return w.EndArray()
}

func (c *listCodec) String() string { return "list(" + c.elem.String() + ")" }

type sliceCodec struct {
	typ  reflect.Type
	elem Codec
}

func (c *sliceCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := reflect.MakeSlice(c.typ, 0, 0)
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, err
		}
		item := reflect.New(c.typ.Elem()).Elem()
		assign(item, v)
		out = reflect.Append(out, item)
	}
	if err := r.EndArray(); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (c *sliceCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return encodeTypeError(c, v)
	}
	return encodeElements(w, c.elem, rv)
}

func (c *sliceCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

type arrayCodec struct {
	typ  reflect.Type
	elem Codec
}

// Decode fills the array in order. Extra elements are skipped and missing
// ones stay zero.
func (c *arrayCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := reflect.New(c.typ).Elem()
	for i := 0; ; i++ {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		if i >= c.typ.Len() {
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
			continue
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, err
		}
		assign(out.Index(i), v)
	}
	if err := r.EndArray(); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (c *arrayCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Array && rv.Kind() != reflect.Slice {
		return encodeTypeError(c, v)
	}
	return encodeElements(w, c.elem, rv)
}

func (c *arrayCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

func encodeElements(w *stream.Writer, elem Codec, rv reflect.Value) error {
	if err := w.BeginArray(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := elem.Encode(w, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return w.EndArray()
}

type mapCodec struct {
	typ  reflect.Type
	elem Codec
}

func (c *mapCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	out := reflect.MakeMap(c.typ)
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		name, err := r.NextName()
		if err != nil {
			return nil, err
		}
		key, err := c.parseKey(name, r)
		if err != nil {
			return nil, err
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, err
		}
		item := reflect.New(c.typ.Elem()).Elem()
		assign(item, v)
		out.SetMapIndex(key, item)
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (c *mapCodec) parseKey(name string, r *stream.Reader) (reflect.Value, error) {
	kt := c.typ.Key()
	key := reflect.New(kt).Elem()
	switch kt.Kind() {
	case reflect.String:
		key.SetString(name)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, kt.Bits())
		if err != nil {
			return key, r.Mismatch(kt.String()+" key", strconv.Quote(name))
		}
		key.SetInt(n)
	default:
		n, err := strconv.ParseUint(name, 10, kt.Bits())
		if err != nil {
			return key, r.Mismatch(kt.String()+" key", strconv.Quote(name))
		}
		key.SetUint(n)
	}
	return key, nil
}

// Encode writes members sorted by key.
func (c *mapCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return encodeTypeError(c, v)
	}

	type member struct {
		name string
		val  reflect.Value
	}
	members := make([]member, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		var name string
		switch k.Kind() {
		case reflect.String:
			name = k.String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			name = strconv.FormatInt(k.Int(), 10)
		default:
			name = strconv.FormatUint(k.Uint(), 10)
		}
		members = append(members, member{name: name, val: iter.Value()})
	}
	slices.SortFunc(members, func(a, b member) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})

	if err := w.BeginObject(); err != nil {
		return err
	}
	for _, m := range members {
		if err := w.Name(m.name); err != nil {
			return err
		}
		if err := c.elem.Encode(w, m.val.Interface()); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func (c *mapCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

// anyCodec decodes documents generically and encodes values by their
// dynamic type through the registry.
type anyCodec struct {
	reg *Registry
}

// Decode produces map[string]any, []any, string, float64, bool or nil.
func (c *anyCodec) Decode(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case stream.Null:
		return nil, r.NextNull()
	case stream.True, stream.False:
		return r.NextBool()
	case stream.String:
		return r.NextString()
	case stream.Number:
		return r.NextFloat(64)
	case stream.BeginArray:
		if err := r.BeginArray(); err != nil {
			return nil, err
		}
		out := []any{}
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			v, err := c.Decode(r)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, r.EndArray()
	case stream.BeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		out := map[string]any{}
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			name, err := r.NextName()
			if err != nil {
				return nil, err
			}
			v, err := c.Decode(r)
			if err != nil {
				return nil, err
			}
			if _, dup := out[name]; !dup {
				out[name] = v
			}
		}
		return out, r.EndObject()
	}
	return nil, r.Mismatch("value", k.String())
}

func (c *anyCodec) Encode(w *stream.Writer, v any) error {
	switch v := v.(type) {
	case nil:
		return w.Null()
	case string:
		return w.String(v)
	case bool:
		return w.Bool(v)
	case float64:
		return w.Float(v, 64)
	case []any:
		if v == nil {
			return w.Null()
		}
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, item := range v {
			if err := c.Encode(w, item); err != nil {
				return err
			}
		}
		return w.EndArray()
	}
	if isNull(v) {
		return w.Null()
	}
	inner, err := c.reg.ResolveSet(reflect.TypeOf(v), Qualifiers{})
	if err != nil {
		return err
	}
	return inner.Encode(w, v)
}

func (c *anyCodec) String() string { return "codec(any)" }

// rawCodec passes jsontext.Value through verbatim.
type rawCodec struct{}

func (rawCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	return r.ReadValue()
}

func (c rawCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	raw, ok := v.(jsontext.Value)
	if !ok {
		return encodeTypeError(c, v)
	}
	if len(raw) == 0 {
		return w.Null()
	}
	return w.Raw(raw)
}

func (rawCodec) String() string { return "codec(raw)" }

// consumeNull consumes a null token if one is next.
func consumeNull(r *stream.Reader) (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	if k != stream.Null {
		return false, nil
	}
	return true, r.NextNull()
}
