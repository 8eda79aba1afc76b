package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/stream"
)

// elementFactory claims ElementAt qualifiers. The remaining qualifiers
// apply to each array element.
func elementFactory() Factory {
	return QualifierFactory[ElementAt](StageShape, func(t reflect.Type, tag ElementAt, rest Qualifiers, res Resolver) (Codec, error) {
		if tag.Index < Last {
			return nil, newConfigError(ErrInvalidTag, t, tag.String(), "index must be non-negative, First or Last")
		}
		elem, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &elementCodec{list: &listCodec{elem: elem}, index: tag.Index}, nil
	})
}

// elementCodec projects one element of a JSON array onto a value. The
// whole array is decoded; other elements are discarded.
type elementCodec struct {
	list  *listCodec
	index int
}

// Decode returns nil for a null or empty array and for an index out of range.
func (c *elementCodec) Decode(r *stream.Reader) (any, error) {
	v, err := c.list.Decode(r)
	if err != nil || v == nil {
		return nil, err
	}
	items := v.([]any)
	i := c.index
	if i == Last {
		i = len(items) - 1
	}
	if i < 0 || i >= len(items) {
		return nil, nil
	}
	return items[i], nil
}

// Encode writes the value as a single-element array, [null] for nil.
func (c *elementCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		v = nil
	}
	return c.list.Encode(w, []any{v})
}

func (c *elementCodec) String() string {
	return c.list.elem.String() + ".elementAt(" + indexString(c.index) + ")"
}
