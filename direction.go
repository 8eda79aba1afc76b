package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/stream"
)

// direction limits a codec to decoding, encoding or neither.
type direction struct {
	inner  Codec
	decode bool
	encode bool
	label  string
}

func directionFactory[Q Qualifier](decode, encode bool) Factory {
	return QualifierFactory[Q](StageMember, func(t reflect.Type, tag Q, rest Qualifiers, res Resolver) (Codec, error) {
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &direction{inner: inner, decode: decode, encode: encode, label: tag.String()}, nil
	})
}

// Decode skips exactly one value and returns nil when decoding is off.
func (c *direction) Decode(r *stream.Reader) (any, error) {
	if c.decode {
		return c.inner.Decode(r)
	}
	return nil, r.SkipValue()
}

// Encode writes null when encoding is off, so an object member is dropped
// unless the writer emits nulls.
func (c *direction) Encode(w *stream.Writer, v any) error {
	if c.encode {
		return c.inner.Encode(w, v)
	}
	return w.Null()
}

func (c *direction) String() string {
	return c.inner.String() + "." + c.label + "()"
}
