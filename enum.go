package qualify

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/qualify/stream"
)

// Constant declares one enum constant. JSON is the name on the wire and
// defaults to Name.
type Constant[T comparable] struct {
	Name  string
	JSON  string
	Value T
}

// Enum holds the declared constants of an enum type.
type Enum struct {
	typ    reflect.Type
	names  []string       // Go names, declaration order
	jsons  []string       // wire names, declaration order
	values []any          // constant values, declaration order
	byName map[string]int // Go name to index
	byJSON map[string]int // wire name to index
	byVal  map[any]int    // value to index
}

// DeclareEnum registers the constants of T with the registry. T's values
// are then carried as JSON strings, and the fallbackEnum qualifier applies
// to T.
func DeclareEnum[T comparable](r *Registry, constants ...Constant[T]) error {
	t := reflect.TypeFor[T]()
	if len(constants) == 0 {
		return newConfigError(ErrNotEnum, t, "", "no constants declared")
	}
	e := &Enum{
		typ:    t,
		byName: make(map[string]int, len(constants)),
		byJSON: make(map[string]int, len(constants)),
		byVal:  make(map[any]int, len(constants)),
	}
	for i, c := range constants {
		wire := c.JSON
		if wire == "" {
			wire = c.Name
		}
		if c.Name == "" {
			return newConfigError(ErrInvalidTag, t, "", fmt.Sprintf("constant %d has no name", i))
		}
		if _, dup := e.byName[c.Name]; dup {
			return newConfigError(ErrInvalidTag, t, "", "duplicate constant "+c.Name)
		}
		if _, dup := e.byJSON[wire]; dup {
			return newConfigError(ErrInvalidTag, t, "", "duplicate json name "+wire)
		}
		e.names = append(e.names, c.Name)
		e.jsons = append(e.jsons, wire)
		e.values = append(e.values, c.Value)
		e.byName[c.Name] = i
		e.byJSON[wire] = i
		if _, seen := e.byVal[any(c.Value)]; !seen {
			e.byVal[any(c.Value)] = i
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[t] = e
	clear(r.codecs)
	return nil
}

// Type returns the enum's Go type.
func (e *Enum) Type() reflect.Type { return e.typ }

// Names returns the Go names of the constants in declaration order.
func (e *Enum) Names() []string { return append([]string(nil), e.names...) }

// Lookup returns the constant with the given Go name.
func (e *Enum) Lookup(name string) (any, bool) {
	i, ok := e.byName[name]
	if !ok {
		return nil, false
	}
	return e.values[i], true
}

// fromJSON returns the constant with the given wire name.
func (e *Enum) fromJSON(wire string) (any, bool) {
	i, ok := e.byJSON[wire]
	if !ok {
		return nil, false
	}
	return e.values[i], true
}

// toJSON returns the wire name of a constant value.
func (e *Enum) toJSON(v any) (string, bool) {
	i, ok := e.byVal[v]
	if !ok {
		return "", false
	}
	return e.jsons[i], true
}

// enumCodec carries declared enum constants as JSON strings.
type enumCodec struct {
	enum *Enum
}

func (c *enumCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	at := r.Path()
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	v, ok := c.enum.fromJSON(s)
	if !ok {
		return nil, &DataError{
			Err:  ErrUnknownEnum,
			Path: fmt.Sprintf("%q (expected one of [%s])", s, strings.Join(c.enum.jsons, ", ")),
			At:   at,
		}
	}
	return v, nil
}

func (c *enumCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return w.Null()
	}
	name, ok := c.enum.toJSON(v)
	if !ok {
		return fmt.Errorf("%w: %v is not a declared %s constant", ErrUnknownEnum, v, c.enum.typ)
	}
	return w.String(name)
}

func (c *enumCodec) String() string { return "codec(" + typeName(c.enum.typ) + ")" }
