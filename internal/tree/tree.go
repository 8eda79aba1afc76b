// Package tree holds a generic, order-preserving document model that the
// format packages use to convert between JSON and other wire formats.
package tree

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrUnrepresentable is returned for values JSON cannot carry.
var ErrUnrepresentable = errors.New("value has no JSON representation")

// Kind identifies the type of a Node.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is one value in a document.
type Node struct {
	Kind    Kind
	Bool    bool
	Text    string // string value, or the literal of a number
	Members []Member
	Items   []*Node
}

// Member is a named object entry.
type Member struct {
	Name  string
	Value *Node
}

// NewNull returns a null node.
func NewNull() *Node { return &Node{Kind: Null} }

// NewBool returns a boolean node.
func NewBool(b bool) *Node { return &Node{Kind: Bool, Bool: b} }

// NewString returns a string node.
func NewString(s string) *Node { return &Node{Kind: String, Text: s} }

// NewInt returns a number node for an integer.
func NewInt(i int64) *Node { return &Node{Kind: Number, Text: strconv.FormatInt(i, 10)} }

// NewUint returns a number node for an unsigned integer.
func NewUint(u uint64) *Node { return &Node{Kind: Number, Text: strconv.FormatUint(u, 10)} }

// NewFloat returns a number node for f. NaN and infinities are rejected.
func NewFloat(f float64) (*Node, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrUnrepresentable, f)
	}
	return &Node{Kind: Number, Text: strconv.FormatFloat(f, 'g', -1, 64)}, nil
}

// Lookup returns the value of the named member.
func (n *Node) Lookup(name string) (*Node, bool) {
	for _, m := range n.Members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// IsInteger reports whether a number node holds an integer literal.
func (n *Node) IsInteger() bool {
	if n.Kind != Number {
		return false
	}
	for i := 0; i < len(n.Text); i++ {
		switch n.Text[i] {
		case '.', 'e', 'E':
			return false
		}
	}
	return true
}

// Number returns a number node as int64, uint64 or float64, preferring the
// narrowest that holds the literal exactly.
func (n *Node) Number() (any, error) {
	if n.IsInteger() {
		if i, err := strconv.ParseInt(n.Text, 10, 64); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(n.Text, 10, 64); err == nil {
			return u, nil
		}
	}
	f, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ParseJSON reads a single JSON document.
func ParseJSON(data []byte) (*Node, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))
	n, err := read(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return n, nil
}

func read(dec *jsontext.Decoder) (*Node, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return NewNull(), nil
	case 't', 'f':
		return NewBool(tok.Bool()), nil
	case '"':
		return NewString(tok.String()), nil
	case '0':
		return &Node{Kind: Number, Text: tok.String()}, nil
	case '{':
		n := &Node{Kind: Object, Members: []Member{}}
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// The token is only valid until the next read.
			key := name.String()
			v, err := read(dec)
			if err != nil {
				return nil, err
			}
			n.Members = append(n.Members, Member{Name: key, Value: v})
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return n, nil
	case '[':
		n := &Node{Kind: Array, Items: []*Node{}}
		for dec.PeekKind() != ']' {
			v, err := read(dec)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// JSON returns n as a compact JSON document.
func (n *Node) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.AllowDuplicateNames(true))
	if err := n.Write(enc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write encodes n to enc.
func (n *Node) Write(enc *jsontext.Encoder) error {
	switch n.Kind {
	case Null:
		return enc.WriteToken(jsontext.Null)
	case Bool:
		return enc.WriteToken(jsontext.Bool(n.Bool))
	case String:
		return enc.WriteToken(jsontext.String(n.Text))
	case Number:
		return enc.WriteValue(jsontext.Value(n.Text))
	case Object:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, m := range n.Members {
			if err := enc.WriteToken(jsontext.String(m.Name)); err != nil {
				return err
			}
			if err := m.Value.Write(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case Array:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range n.Items {
			if err := item.Write(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	}
	return fmt.Errorf("unknown node kind %v", n.Kind)
}

// FromValue builds a node from a decoded Go value. Maps are emitted with
// their keys sorted; byte slices become base64 strings.
func FromValue(v any) (*Node, error) {
	switch v := v.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(v), nil
	case string:
		return NewString(v), nil
	case []byte:
		return NewString(base64.StdEncoding.EncodeToString(v)), nil
	case int:
		return NewInt(int64(v)), nil
	case int8:
		return NewInt(int64(v)), nil
	case int16:
		return NewInt(int64(v)), nil
	case int32:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case uint:
		return NewUint(uint64(v)), nil
	case uint8:
		return NewUint(uint64(v)), nil
	case uint16:
		return NewUint(uint64(v)), nil
	case uint32:
		return NewUint(uint64(v)), nil
	case uint64:
		return NewUint(v), nil
	case float32:
		return NewFloat(float64(v))
	case float64:
		return NewFloat(v)
	case []any:
		n := &Node{Kind: Array, Items: make([]*Node, 0, len(v))}
		for _, item := range v {
			child, err := FromValue(item)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, child)
		}
		return n, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return objectOf(keys, func(k string) any { return v[k] })
	case map[any]any:
		byName := make(map[string]any, len(v))
		keys := make([]string, 0, len(v))
		for k, item := range v {
			name := fmt.Sprint(k)
			keys = append(keys, name)
			byName[name] = item
		}
		sort.Strings(keys)
		return objectOf(keys, func(k string) any { return byName[k] })
	}
	return nil, fmt.Errorf("%w: %T", ErrUnrepresentable, v)
}

func objectOf(keys []string, get func(string) any) (*Node, error) {
	n := &Node{Kind: Object, Members: make([]Member, 0, len(keys))}
	for _, k := range keys {
		child, err := FromValue(get(k))
		if err != nil {
			return nil, err
		}
		n.Members = append(n.Members, Member{Name: k, Value: child})
	}
	return n, nil
}

// Value converts n to plain Go values: map[string]any, []any, string,
// bool, nil and the result of Number.
func (n *Node) Value() (any, error) {
	switch n.Kind {
	case Null:
		return nil, nil
	case Bool:
		return n.Bool, nil
	case String:
		return n.Text, nil
	case Number:
		return n.Number()
	case Object:
		out := make(map[string]any, len(n.Members))
		for _, m := range n.Members {
			v, err := m.Value.Value()
			if err != nil {
				return nil, err
			}
			out[m.Name] = v
		}
		return out, nil
	case Array:
		out := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			v, err := item.Value()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown node kind %v", n.Kind)
}
