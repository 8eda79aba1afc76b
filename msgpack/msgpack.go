// Package msgpack provides a MessagePack format. Map order is preserved in
// both directions.
package msgpack

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/internal/tree"
)

// ErrTrailingData is returned when input continues after the first value.
var ErrTrailingData = errors.New("msgpack: trailing data after value")

// maxDepth bounds nesting while decoding.
const maxDepth = 512

// msgpackFormat implements qualify.Format for MessagePack.
type msgpackFormat struct{}

// New returns a MessagePack format.
func New() qualify.Format {
	return &msgpackFormat{}
}

// ContentType returns the MIME type for MessagePack.
func (f *msgpackFormat) ContentType() string {
	return "application/msgpack"
}

// ToJSON converts one MessagePack value to JSON. Binary values become
// base64 strings; non-string map keys are formatted as text.
func (f *msgpackFormat) ToJSON(data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	n, err := decode(dec, 0)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, ErrTrailingData
	}
	return n.JSON()
}

// FromJSON converts a JSON document to MessagePack. Integers use the
// smallest encoding that holds them.
func (f *msgpackFormat) FromJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := encode(enc, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(dec *msgpack.Decoder, depth int) (*tree.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("msgpack: nesting deeper than %d", maxDepth)
	}
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		size, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		n := &tree.Node{Kind: tree.Object, Members: make([]tree.Member, 0, max(size, 0))}
		for i := 0; i < size; i++ {
			key, err := dec.DecodeInterfaceLoose()
			if err != nil {
				return nil, err
			}
			value, err := decode(dec, depth+1)
			if err != nil {
				return nil, err
			}
			n.Members = append(n.Members, tree.Member{Name: keyString(key), Value: value})
		}
		return n, nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		size, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		n := &tree.Node{Kind: tree.Array, Items: make([]*tree.Node, 0, max(size, 0))}
		for i := 0; i < size; i++ {
			item, err := decode(dec, depth+1)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, item)
		}
		return n, nil
	}
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	return tree.FromValue(v)
}

func keyString(k any) string {
	switch k := k.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	}
	return fmt.Sprint(k)
}

func encode(enc *msgpack.Encoder, n *tree.Node) error {
	switch n.Kind {
	case tree.Null:
		return enc.EncodeNil()
	case tree.Bool:
		return enc.EncodeBool(n.Bool)
	case tree.String:
		return enc.EncodeString(n.Text)
	case tree.Number:
		v, err := n.Number()
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case int64:
			return enc.EncodeInt(v)
		case uint64:
			return enc.EncodeUint(v)
		case float64:
			return enc.EncodeFloat64(v)
		}
		return fmt.Errorf("msgpack: unexpected number %T", v)
	case tree.Array:
		if err := enc.EncodeArrayLen(len(n.Items)); err != nil {
			return err
		}
		for _, item := range n.Items {
			if err := encode(enc, item); err != nil {
				return err
			}
		}
		return nil
	case tree.Object:
		if err := enc.EncodeMapLen(len(n.Members)); err != nil {
			return err
		}
		for _, m := range n.Members {
			if err := enc.EncodeString(m.Name); err != nil {
				return err
			}
			if err := encode(enc, m.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("msgpack: unknown node kind %v", n.Kind)
}
