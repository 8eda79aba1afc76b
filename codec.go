package qualify

import (
	"reflect"

	"github.com/zoobzio/qualify/stream"
)

// Codec reads values from and writes values to a JSON token stream.
//
// Values cross the interface untyped. A nil value is the null
// representation of every type; Decode returns nil for JSON null and Encode
// treats nil (and nil pointers, slices and maps) as null. A non-nil decoded
// value always holds the exact Go type the codec was resolved for.
//
// Codecs are immutable once built and safe for concurrent use on
// independent streams.
type Codec interface {
	Decode(r *stream.Reader) (any, error)
	Encode(w *stream.Writer, v any) error

	// String describes the composed pipeline, e.g.
	// codec(string).elementAt(last).wrappedIn([a, b]).failOnNotFound().
	String() string
}

// Format converts documents in another wire format to and from JSON so
// they can pass through qualified codecs.
type Format interface {
	// ContentType returns the MIME type for this format.
	ContentType() string

	// ToJSON converts a document in this format to JSON.
	ToJSON(data []byte) ([]byte, error)

	// FromJSON converts a JSON document to this format.
	FromJSON(data []byte) ([]byte, error)
}

// isNull reports whether v is the null representation.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// assign stores a decoded value into dst, leaving dst zero for null.
func assign(dst reflect.Value, v any) {
	if v == nil {
		dst.SetZero()
		return
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(dst.Type()) {
		rv = rv.Convert(dst.Type())
	}
	dst.Set(rv)
}
