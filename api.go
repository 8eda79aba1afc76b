// Package qualify builds JSON codecs from a type plus a set of qualifiers.
//
// A qualifier is a small immutable marker (Wrapped, ElementAt, Transient,
// FallbackEnum, ...) that selects a transformation of the default codec for
// a type. A Registry resolves each (type, qualifiers) pair by consulting its
// factories in order: the first factory that recognises one of the
// qualifiers claims it, resolves the inner codec for the remaining
// qualifiers and wraps it. Once no qualifier is claimed the structural
// codec for the type is used.
//
// # Resolution Order
//
// Factories belong to a stage and are consulted by priority:
//
//   - StageMember: SerializeOnly, DeserializeOnly, Transient
//   - StageShape: Wrapped, ElementAt
//   - StageValue: Required, FallbackOnNull, FallbackEnum, DefaultOnMismatch,
//     FilterNulls, SerializeOnlyNonEmpty, SerializeNulls, Redact, Mask, Hash, Encrypt
//
// Earlier factories produce outer decorators. A value qualified with both
// Wrapped and ElementAt is the element of an array found under the wrapped
// path. Custom factories are added with Register; a registration that
// would consult a later stage before an earlier one is rejected.
//
// # Path Projection
//
// Wrapped reads a value nested under a path of object members:
//
//	a, _ := qualify.For[string](reg, qualify.Wrap("data", "name"))
//	name, _ := a.Unmarshal(ctx, []byte(`{"data":{"id":1,"name":"ada"}}`))
//	// name == "ada"
//
// A missing member is always an error. A null along the path is an error
// for Wrap and decodes as nil for Wrap(...).Lenient(). Encoding writes the
// value back under the same path, emitting nulls inside the wrapper.
//
// # Positional Projection
//
// ElementAt reads one element of an array. Indices past the end, empty
// arrays and null decode as nil:
//
//	a, _ := qualify.For[string](reg, qualify.ElementAt{Index: qualify.Last})
//	last, _ := a.Unmarshal(ctx, []byte(`["a","b","c"]`))
//	// last == "c"
//
// Encoding writes a single-element array.
//
// # Struct Tags
//
// The structural codec for structs reads qualifiers from field tags:
//
//	type Account struct {
//	    ID       string   `json:"id"`
//	    Name     string   `json:"name" wrapped:"profile.name"`
//	    Primary  string   `json:"emails" element:"first"`
//	    Status   Status   `json:"status" enum.fallback:"Unknown"`
//	    Password string   `json:"password" hash:"argon2" only:"deserialize"`
//	    Email    string   `json:"email" mask:"email"`
//	    Tags     []*Tag   `json:"tags" filter:"nulls"`
//	    Retries  int      `json:"retries" fallback:"3"`
//	    Internal string   `transient:"true"`
//	}
//
// # Formats
//
// Adapters read and write JSON directly. Documents in other formats pass
// through a Format, which converts them to and from JSON. Implementations
// are available as subpackages:
//
//   - json - JSON (application/json)
//   - jsonc - JSON with comments (application/jsonc)
//   - yaml - YAML (application/yaml)
//   - msgpack - MessagePack (application/msgpack)
//   - bson - BSON (application/bson)
//   - cbor - CBOR (application/cbor)
//   - zstd - zstd compression around any other format
//
// # Observability
//
// Registries and adapters emit capitan signals: codec resolution, unclaimed
// qualifiers, factory registration and decode/encode completion.
package qualify
