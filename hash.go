package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/sanitize"
	"github.com/zoobzio/qualify/stream"
)

func hashFactory() Factory {
	return QualifierFactory[Hash](StageValue, func(t reflect.Type, tag Hash, rest Qualifiers, res Resolver) (Codec, error) {
		if err := requireString(t, tag); err != nil {
			return nil, err
		}
		hasher, ok := res.Hasher(tag.Algo)
		if !ok {
			return nil, newConfigError(ErrMissingHasher, t, tag.String(), "register one with SetHasher")
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &hashCodec{inner: inner, typ: t, hasher: hasher, algo: tag.Algo}, nil
	})
}

// hashCodec replaces incoming values with their hash. Hashing is one-way,
// so encoding writes the stored hash unchanged.
type hashCodec struct {
	inner  Codec
	typ    reflect.Type
	hasher sanitize.Hasher
	algo   sanitize.HashAlgo
}

func (c *hashCodec) Decode(r *stream.Reader) (any, error) {
	at := r.Path()
	v, err := c.inner.Decode(r)
	if err != nil || v == nil {
		return v, err
	}
	s, _ := stringOf(v)
	digest, err := c.hasher.Hash([]byte(s))
	if err != nil {
		return nil, newTransformError(ErrHash, "hash", at, err)
	}
	return asType(c.typ, digest), nil
}

func (c *hashCodec) Encode(w *stream.Writer, v any) error {
	return c.inner.Encode(w, v)
}

func (c *hashCodec) String() string {
	return c.inner.String() + ".hash(" + string(c.algo) + ")"
}
