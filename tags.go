package qualify

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/zoobzio/qualify/sanitize"
	"github.com/zoobzio/sentinel"
)

// Struct tags that carry qualifiers.
const (
	tagWrapped      = "wrapped"
	tagElement      = "element"
	tagOnly         = "only"
	tagTransient    = "transient"
	tagFallback     = "fallback"
	tagEnumFallback = "enum.fallback"
	tagFilter       = "filter"
	tagOmit         = "omit"
	tagMismatch     = "mismatch"
	tagRequired     = "required"
	tagNulls        = "nulls"
	tagMask         = "mask"
	tagRedact       = "redact"
	tagHash         = "hash"
	tagEncrypt      = "encrypt"
)

var qualifierTags = []string{
	tagWrapped, tagElement, tagOnly, tagTransient, tagFallback, tagEnumFallback,
	tagFilter, tagOmit, tagMismatch, tagRequired, tagNulls,
	tagMask, tagRedact, tagHash, tagEncrypt,
}

func init() {
	for _, tag := range qualifierTags {
		sentinel.Tag(tag)
	}
}

// jsonTag is the parsed form of a json struct tag.
type jsonTag struct {
	name      string
	omitEmpty bool
	skip      bool
}

func parseJSONTag(field string, tag string) jsonTag {
	if tag == "-" {
		return jsonTag{skip: true}
	}
	name, opts, _ := strings.Cut(tag, ",")
	jt := jsonTag{name: name}
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == "omitempty" {
			jt.omitEmpty = true
		}
	}
	if jt.name == "" {
		jt.name = field
	}
	return jt
}

// tagError reports an invalid qualifier tag value on a field.
func tagError(field, tag, value, detail string) error {
	return &ConfigError{
		Err:       ErrInvalidTag,
		Field:     field,
		Qualifier: tag + ":" + strconv.Quote(value),
		Detail:    detail,
	}
}

// parseQualifierTags converts a field's qualifier tags into a set.
func parseQualifierTags(field string, tags map[string]string) (Qualifiers, error) {
	var qs []Qualifier
	for _, tag := range qualifierTags {
		value, ok := tags[tag]
		if !ok {
			continue
		}
		q, err := parseQualifierTag(field, tag, value)
		if err != nil {
			return Qualifiers{}, err
		}
		if q != nil {
			qs = append(qs, q)
		}
	}
	set, err := NewQualifiers(qs...)
	if err != nil {
		return Qualifiers{}, withField(err, field)
	}
	return set, nil
}

func parseQualifierTag(field, tag, value string) (Qualifier, error) {
	switch tag {
	case tagWrapped:
		path, opt, _ := strings.Cut(value, ",")
		segments := strings.Split(path, ".")
		for _, s := range segments {
			if s == "" {
				return nil, tagError(field, tag, value, "empty path segment")
			}
		}
		w := Wrap(segments...)
		switch opt {
		case "":
		case "lenient":
			w = w.Lenient()
		default:
			return nil, tagError(field, tag, value, "unknown option "+strconv.Quote(opt))
		}
		return w, nil

	case tagElement:
		switch value {
		case "first":
			return ElementAt{Index: First}, nil
		case "last":
			return ElementAt{Index: Last}, nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, tagError(field, tag, value, "want first, last or a non-negative index")
		}
		return ElementAt{Index: n}, nil

	case tagOnly:
		switch value {
		case "serialize":
			return SerializeOnly{}, nil
		case "deserialize":
			return DeserializeOnly{}, nil
		}
		return nil, tagError(field, tag, value, "want serialize or deserialize")

	case tagTransient, tagRequired:
		on, err := strconv.ParseBool(value)
		if err != nil {
			return nil, tagError(field, tag, value, "want a boolean")
		}
		switch {
		case !on:
			return nil, nil
		case tag == tagTransient:
			return Transient{}, nil
		default:
			return Required{}, nil
		}

	case tagFallback:
		return FallbackOnNull{Value: value}, nil

	case tagEnumFallback:
		if value == "" {
			return nil, tagError(field, tag, value, "want a constant name")
		}
		return FallbackEnum{Name: value}, nil

	case tagFilter:
		if value != "nulls" {
			return nil, tagError(field, tag, value, "want nulls")
		}
		return FilterNulls{}, nil

	case tagOmit:
		if value != "empty" {
			return nil, tagError(field, tag, value, "want empty")
		}
		return SerializeOnlyNonEmpty{}, nil

	case tagMismatch:
		if strings.TrimSpace(value) == "" {
			return nil, tagError(field, tag, value, "want a JSON literal")
		}
		return DefaultOnMismatch{JSON: value}, nil

	case tagNulls:
		if value != "serialize" {
			return nil, tagError(field, tag, value, "want serialize")
		}
		return SerializeNulls{}, nil

	case tagMask:
		if !sanitize.MaskType(value).Valid() {
			return nil, tagError(field, tag, value, "unknown mask type")
		}
		return Mask{Type: sanitize.MaskType(value)}, nil

	case tagRedact:
		return Redact{Value: value}, nil

	case tagHash:
		if !sanitize.HashAlgo(value).Valid() {
			return nil, tagError(field, tag, value, "unknown hash algorithm")
		}
		return Hash{Algo: sanitize.HashAlgo(value)}, nil

	case tagEncrypt:
		if !sanitize.EncryptAlgo(value).Valid() {
			return nil, tagError(field, tag, value, "unknown encryption algorithm")
		}
		return Encrypt{Algo: sanitize.EncryptAlgo(value)}, nil
	}
	return nil, nil
}

// fieldTags merges sentinel's tag map with the raw struct tag.
func fieldTags(scanned map[string]string, raw reflect.StructTag) map[string]string {
	tags := make(map[string]string, len(scanned)+1)
	for k, v := range scanned {
		tags[k] = v
	}
	for _, name := range append([]string{"json"}, qualifierTags...) {
		if _, ok := tags[name]; ok {
			continue
		}
		if v, ok := raw.Lookup(name); ok {
			tags[name] = v
		}
	}
	return tags
}
