package qualify

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zoobzio/qualify/sanitize"
)

// Kind identifies a qualifier. A Qualifiers set holds at most one qualifier
// per kind.
type Kind string

// Built-in qualifier kinds.
const (
	KindWrapped           Kind = "wrapped"
	KindElementAt         Kind = "elementAt"
	KindSerializeOnly     Kind = "serializeOnly"
	KindDeserializeOnly   Kind = "deserializeOnly"
	KindTransient         Kind = "transient"
	KindFallbackOnNull    Kind = "fallbackOnNull"
	KindFallbackEnum      Kind = "fallbackEnum"
	KindFilterNulls       Kind = "filterNulls"
	KindNonEmpty          Kind = "serializeOnlyNonEmpty"
	KindDefaultOnMismatch Kind = "defaultOnDataMismatch"
	KindRequired          Kind = "required"
	KindSerializeNulls    Kind = "serializeNulls"
	KindRedact            Kind = "redact"
	KindMask              Kind = "mask"
	KindHash              Kind = "hash"
	KindEncrypt           Kind = "encrypt"
)

// Qualifier is an immutable marker that selects a codec transformation.
//
// String must describe every parameter: it is part of the registry cache key.
type Qualifier interface {
	Kind() Kind
	String() string
}

// Qualifiers is an immutable set of qualifiers keyed by kind.
// The zero value is the empty set.
type Qualifiers struct {
	m map[Kind]Qualifier
}

// NewQualifiers builds a set. Two qualifiers of the same kind are a
// ConfigError wrapping ErrDuplicateQualifier.
func NewQualifiers(qs ...Qualifier) (Qualifiers, error) {
	if len(qs) == 0 {
		return Qualifiers{}, nil
	}
	m := make(map[Kind]Qualifier, len(qs))
	for _, q := range qs {
		if q == nil {
			continue
		}
		if prev, ok := m[q.Kind()]; ok {
			return Qualifiers{}, &ConfigError{
				Err:       ErrDuplicateQualifier,
				Qualifier: q.String(),
				Detail:    "already holds " + prev.String(),
			}
		}
		m[q.Kind()] = q
	}
	return Qualifiers{m: m}, nil
}

// MustQualifiers is like NewQualifiers but panics on error.
func MustQualifiers(qs ...Qualifier) Qualifiers {
	set, err := NewQualifiers(qs...)
	if err != nil {
		panic(err)
	}
	return set
}

// Len returns the number of qualifiers in the set.
func (q Qualifiers) Len() int {
	return len(q.m)
}

// Get returns the qualifier of the given kind.
func (q Qualifiers) Get(k Kind) (Qualifier, bool) {
	v, ok := q.m[k]
	return v, ok
}

// Has reports whether the set holds a qualifier of the given kind.
func (q Qualifiers) Has(k Kind) bool {
	_, ok := q.m[k]
	return ok
}

// Without returns a copy of the set minus the given kind.
func (q Qualifiers) Without(k Kind) Qualifiers {
	if _, ok := q.m[k]; !ok {
		return q
	}
	if len(q.m) == 1 {
		return Qualifiers{}
	}
	m := make(map[Kind]Qualifier, len(q.m)-1)
	for kind, v := range q.m {
		if kind != k {
			m[kind] = v
		}
	}
	return Qualifiers{m: m}
}

// Kinds returns the kinds in the set, sorted.
func (q Qualifiers) Kinds() []Kind {
	kinds := make([]Kind, 0, len(q.m))
	for k := range q.m {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// All returns the qualifiers sorted by kind.
func (q Qualifiers) All() []Qualifier {
	out := make([]Qualifier, 0, len(q.m))
	for _, k := range q.Kinds() {
		out = append(out, q.m[k])
	}
	return out
}

// String returns the canonical form of the set, e.g. "{elementAt(last), wrapped([a])}".
func (q Qualifiers) String() string {
	if len(q.m) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(q.m))
	for _, v := range q.All() {
		parts = append(parts, v.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Take looks up the qualifier of Q's kind. On success it returns the
// qualifier and the set with that kind removed, ready for resolving the
// inner codec.
func Take[Q Qualifier](q Qualifiers) (Q, Qualifiers, bool) {
	var zero Q
	v, ok := q.m[zero.Kind()]
	if !ok {
		return zero, q, false
	}
	typed, ok := v.(Q)
	if !ok {
		return zero, q, false
	}
	return typed, q.Without(zero.Kind()), true
}

// Wrapped nests a value under Path inside the JSON document.
type Wrapped struct {
	Path          []string
	FailOnMissing bool
}

// Wrap returns a strict Wrapped qualifier: a null found before the end of
// the path is an error.
func Wrap(path ...string) Wrapped {
	return Wrapped{Path: slices.Clone(path), FailOnMissing: true}
}

// Lenient returns a copy that decodes a null found along the path as nil.
func (w Wrapped) Lenient() Wrapped {
	return Wrapped{Path: slices.Clone(w.Path), FailOnMissing: false}
}

func (Wrapped) Kind() Kind { return KindWrapped }

func (w Wrapped) String() string {
	if w.FailOnMissing {
		return "wrapped(" + pathString(w.Path) + ", failOnNotFound)"
	}
	return "wrapped(" + pathString(w.Path) + ")"
}

// Element positions for ElementAt.
const (
	First = 0
	Last  = -1
)

// ElementAt projects the element at Index of a JSON array onto a value.
type ElementAt struct {
	Index int
}

func (ElementAt) Kind() Kind { return KindElementAt }

func (e ElementAt) String() string {
	return "elementAt(" + indexString(e.Index) + ")"
}

// SerializeOnly ignores the value when decoding.
type SerializeOnly struct{}

func (SerializeOnly) Kind() Kind     { return KindSerializeOnly }
func (SerializeOnly) String() string { return "serializeOnly" }

// DeserializeOnly writes null in place of the value when encoding.
type DeserializeOnly struct{}

func (DeserializeOnly) Kind() Kind     { return KindDeserializeOnly }
func (DeserializeOnly) String() string { return "deserializeOnly" }

// Transient ignores the value in both directions.
type Transient struct{}

func (Transient) Kind() Kind     { return KindTransient }
func (Transient) String() string { return "transient" }

// FallbackOnNull substitutes Value when a primitive decodes from null.
// Value is either a Go value convertible to the target type or its text form.
type FallbackOnNull struct {
	Value any
}

func (FallbackOnNull) Kind() Kind { return KindFallbackOnNull }

func (f FallbackOnNull) String() string {
	return fmt.Sprintf("fallbackOnNull(%T %v)", f.Value, f.Value)
}

// FallbackEnum substitutes the constant named Name for unknown enum names.
type FallbackEnum struct {
	Name string
}

func (FallbackEnum) Kind() Kind { return KindFallbackEnum }

func (f FallbackEnum) String() string {
	return "fallbackEnum(" + f.Name + ")"
}

// FilterNulls drops null elements of a slice.
type FilterNulls struct{}

func (FilterNulls) Kind() Kind     { return KindFilterNulls }
func (FilterNulls) String() string { return "filterNulls" }

// SerializeOnlyNonEmpty writes null in place of an empty slice, array, map or string.
type SerializeOnlyNonEmpty struct{}

func (SerializeOnlyNonEmpty) Kind() Kind     { return KindNonEmpty }
func (SerializeOnlyNonEmpty) String() string { return "serializeOnlyNonEmpty" }

// DefaultOnMismatch substitutes a default when the value has the wrong shape.
// Set either Value (a Go value) or JSON (a literal decoded through the inner codec).
type DefaultOnMismatch struct {
	Value any
	JSON  string
}

func (DefaultOnMismatch) Kind() Kind { return KindDefaultOnMismatch }

func (d DefaultOnMismatch) String() string {
	if d.JSON != "" {
		return "defaultOnDataMismatch(" + d.JSON + ")"
	}
	return fmt.Sprintf("defaultOnDataMismatch(%T %v)", d.Value, d.Value)
}

// Required rejects null and, inside structs, absent members.
type Required struct{}

func (Required) Kind() Kind     { return KindRequired }
func (Required) String() string { return "required" }

// SerializeNulls writes null members for the value even when the
// surrounding writer drops them.
type SerializeNulls struct{}

func (SerializeNulls) Kind() Kind     { return KindSerializeNulls }
func (SerializeNulls) String() string { return "serializeNulls" }

// Redact replaces a string value with Value when encoding.
type Redact struct {
	Value string
}

func (Redact) Kind() Kind { return KindRedact }

func (r Redact) String() string {
	return "redact(" + strconv.Quote(r.Value) + ")"
}

// Mask applies content-aware masking to a string value when encoding.
type Mask struct {
	Type sanitize.MaskType
}

func (Mask) Kind() Kind { return KindMask }

func (m Mask) String() string {
	return "mask(" + string(m.Type) + ")"
}

// Hash replaces a string value with its hash when decoding.
type Hash struct {
	Algo sanitize.HashAlgo
}

func (Hash) Kind() Kind { return KindHash }

func (h Hash) String() string {
	return "hash(" + string(h.Algo) + ")"
}

// Encrypt stores a string value as base64 ciphertext.
type Encrypt struct {
	Algo sanitize.EncryptAlgo
}

func (Encrypt) Kind() Kind { return KindEncrypt }

func (e Encrypt) String() string {
	return "encrypt(" + string(e.Algo) + ")"
}

// pathString renders a path as [a, b].
func pathString(path []string) string {
	return "[" + strings.Join(path, ", ") + "]"
}

func indexString(i int) string {
	switch i {
	case First:
		return "first"
	case Last:
		return "last"
	default:
		return strconv.Itoa(i)
	}
}
