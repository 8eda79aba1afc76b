package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/sanitize"
)

// Stage orders factories by what their decorators operate on. A registry
// always consults every StageMember factory before any StageShape factory,
// and every StageShape factory before any StageValue factory.
type Stage int

const (
	// StageMember decides whether a value takes part in decoding or encoding at all.
	StageMember Stage = iota

	// StageShape relocates a value inside the document (wrapping, array position).
	StageShape

	// StageValue transforms the value once it has been located.
	StageValue
)

func (s Stage) String() string {
	switch s {
	case StageMember:
		return "member"
	case StageShape:
		return "shape"
	case StageValue:
		return "value"
	default:
		return "unknown"
	}
}

// Factory builds a decorator codec for the qualifier it recognises.
//
// Create returns (nil, nil) when q holds no qualifier it handles. When it
// claims one, it resolves the inner codec for t with that qualifier removed
// and wraps it. An error means the qualifier was recognised but cannot
// apply to t.
type Factory interface {
	Name() string
	Stage() Stage
	Create(t reflect.Type, q Qualifiers, res Resolver) (Codec, error)
}

// Resolver is the view of a registry a factory sees while building.
type Resolver interface {
	// Resolve returns the codec for t under q, continuing the current resolution.
	Resolve(t reflect.Type, q Qualifiers) (Codec, error)

	// Enum returns the constants declared for t.
	Enum(t reflect.Type) (*Enum, bool)

	Encryptor(algo sanitize.EncryptAlgo) (sanitize.Encryptor, bool)
	Hasher(algo sanitize.HashAlgo) (sanitize.Hasher, bool)
	Masker(mt sanitize.MaskType) (sanitize.Masker, bool)
}

// CreateFunc is the body of a Factory.
type CreateFunc func(t reflect.Type, q Qualifiers, res Resolver) (Codec, error)

type funcFactory struct {
	name   string
	stage  Stage
	create CreateFunc
}

// NewFactory returns a Factory from a function.
func NewFactory(name string, stage Stage, create CreateFunc) Factory {
	return &funcFactory{name: name, stage: stage, create: create}
}

func (f *funcFactory) Name() string { return f.name }
func (f *funcFactory) Stage() Stage { return f.stage }

func (f *funcFactory) Create(t reflect.Type, q Qualifiers, res Resolver) (Codec, error) {
	return f.create(t, q, res)
}

// BuildFunc builds the decorator for a claimed qualifier. rest is the set
// with the qualifier removed.
type BuildFunc[Q Qualifier] func(t reflect.Type, tag Q, rest Qualifiers, res Resolver) (Codec, error)

// QualifierFactory returns a Factory that claims qualifiers of type Q.
func QualifierFactory[Q Qualifier](stage Stage, build BuildFunc[Q]) Factory {
	var zero Q
	return NewFactory(string(zero.Kind()), stage, func(t reflect.Type, q Qualifiers, res Resolver) (Codec, error) {
		tag, rest, ok := Take[Q](q)
		if !ok {
			return nil, nil
		}
		return build(t, tag, rest, res)
	})
}
