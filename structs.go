package qualify

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/zoobzio/qualify/stream"
	"github.com/zoobzio/sentinel"
)

// structField is one JSON member of a struct codec.
type structField struct {
	name      string // Go field path, e.g. Address.City
	member    string // JSON member name
	index     []int
	depth     int
	codec     Codec
	omitEmpty bool
	required  bool
}

// structCodec reads and writes a struct as a JSON object. Member codecs are
// resolved from each field's type and qualifier tags.
type structCodec struct {
	typ    reflect.Type
	fields []*structField
	byName map[string]int
}

func (res *resolution) structCodec(t reflect.Type) (Codec, error) {
	var all []*structField
	if err := res.collectFields(t, scanStruct(t), nil, "", 0, &all); err != nil {
		return nil, err
	}

	// Shallower fields shadow embedded ones; among equals the first wins.
	dominant := make(map[string]*structField, len(all))
	for _, f := range all {
		if cur, ok := dominant[f.member]; !ok || f.depth < cur.depth {
			dominant[f.member] = f
		}
	}
	c := &structCodec{typ: t, byName: make(map[string]int, len(dominant))}
	for _, f := range all {
		if dominant[f.member] != f {
			continue
		}
		c.byName[f.member] = len(c.fields)
		c.fields = append(c.fields, f)
	}
	return c, nil
}

func (res *resolution) collectFields(t reflect.Type, meta sentinel.Metadata, prefix []int, path string, depth int, out *[]*structField) error {
	for _, fm := range meta.Fields {
		sf := t.FieldByIndex(fm.Index)
		tags := fieldTags(fm.Tags, sf.Tag)
		raw, hasJSON := tags["json"]
		jt := parseJSONTag(sf.Name, raw)
		if jt.skip {
			continue
		}

		index := append(slices.Clone(prefix), fm.Index...)
		name := sf.Name
		if path != "" {
			name = path + "." + sf.Name
		}

		// Embedded structs without an explicit member name are flattened.
		explicit := hasJSON && raw != "" && raw[0] != ','
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !explicit {
			if err := res.collectFields(sf.Type, scanStruct(sf.Type), index, name, depth+1, out); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		q, err := parseQualifierTags(name, tags)
		if err != nil {
			return err
		}
		codec, err := res.Resolve(sf.Type, q)
		if err != nil {
			return withField(err, name)
		}
		*out = append(*out, &structField{
			name:      name,
			member:    jt.name,
			index:     index,
			depth:     depth,
			codec:     codec,
			omitEmpty: jt.omitEmpty,
			required:  q.Has(KindRequired),
		})
	}
	return nil
}

// scanStruct returns sentinel's metadata for rt, building it from
// reflection when the type has not been scanned.
func scanStruct(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}
		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        fieldTags(nil, sf.Tag),
		}
		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Pointer:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}
		meta.Fields = append(meta.Fields, fm)
	}
	return meta
}

func (c *structCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	out := reflect.New(c.typ).Elem()
	seen := make([]bool, len(c.fields))
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
		i, ok := c.byName[name]
		if !ok || seen[i] {
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
			continue
		}
		f := c.fields[i]
		v, err := f.codec.Decode(r)
		if err != nil {
			return nil, err
		}
		seen[i] = true
		assign(out.FieldByIndex(f.index), v)
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	for i, f := range c.fields {
		if f.required && !seen[i] {
			return nil, &DataError{Err: ErrRequired, Path: strconv.Quote(f.member), At: r.Path()}
		}
	}
	return out.Interface(), nil
}

func (c *structCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Type() != c.typ {
		return encodeTypeError(c, v)
	}
	if err := w.BeginObject(); err != nil {
		return err
	}
	for _, f := range c.fields {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if err := w.Name(f.member); err != nil {
			return err
		}
		if err := f.codec.Encode(w, fv.Interface()); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func (c *structCodec) String() string { return "codec(" + typeName(c.typ) + ")" }

// isEmptyValue matches encoding/json's omitempty rule.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
