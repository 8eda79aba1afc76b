package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/stream"
)

// wrappedFactory claims Wrapped qualifiers.
func wrappedFactory() Factory {
	return QualifierFactory[Wrapped](StageShape, func(t reflect.Type, tag Wrapped, rest Qualifiers, res Resolver) (Codec, error) {
		if len(tag.Path) == 0 {
			return nil, newConfigError(ErrInvalidTag, t, tag.String(), "path must name at least one member")
		}
		for _, segment := range tag.Path {
			if segment == "" {
				return nil, newConfigError(ErrInvalidTag, t, tag.String(), "empty path segment")
			}
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &wrappedCodec{
			inner:  inner,
			path:   append([]string(nil), tag.Path...),
			strict: tag.FailOnMissing,
		}, nil
	})
}

// wrappedCodec reads a value nested under a path of object members and
// writes it back under the same path.
type wrappedCodec struct {
	inner  Codec
	path   []string
	strict bool
}

// Decode returns nil for a top-level null without traversing the path.
func (c *wrappedCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	return c.descend(r, 0)
}

// descend scans the object at depth for path[depth]. Once the member is
// found the scan commits to it; the rest of the object is skipped.
func (c *wrappedCodec) descend(r *stream.Reader, depth int) (any, error) {
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	want := c.path[depth]
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
		if name != want {
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
			continue
		}

		v, err := c.member(r, depth)
		if err != nil {
			return nil, err
		}
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			if _, err := r.NextName(); err != nil {
				return nil, err
			}
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
		}
		if err := r.EndObject(); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, newDataError(ErrPathNotFound, pathString(c.path), r)
}

// member decodes the value of a matched path member.
func (c *wrappedCodec) member(r *stream.Reader, depth int) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == stream.Null {
		if c.strict {
			return nil, newDataError(ErrNullAtPath, pathString(c.path), r)
		}
		return nil, r.NextNull()
	}
	if depth+1 == len(c.path) {
		return c.inner.Decode(r)
	}
	return c.descend(r, depth+1)
}

// Encode writes {"p0":{"p1":...value...}}. Nulls are emitted inside the
// wrapper, so a nil value is written as {"p0":{"p1":null}}; the writer's
// previous setting is restored before the outermost object is closed.
func (c *wrappedCodec) Encode(w *stream.Writer, v any) error {
	prev := w.SetSerializeNulls(true)
	err := c.wrap(w, v, 0)
	w.SetSerializeNulls(prev)
	return err
}

func (c *wrappedCodec) wrap(w *stream.Writer, v any, depth int) error {
	if depth == len(c.path) {
		return c.inner.Encode(w, v)
	}
	if err := w.BeginObject(); err != nil {
		return err
	}
	if err := w.Name(c.path[depth]); err != nil {
		return err
	}
	if err := c.wrap(w, v, depth+1); err != nil {
		return err
	}
	return w.EndObject()
}

func (c *wrappedCodec) String() string {
	s := c.inner.String() + ".wrappedIn(" + pathString(c.path) + ")"
	if c.strict {
		s += ".failOnNotFound()"
	}
	return s
}
