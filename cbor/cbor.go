// Package cbor provides a CBOR format using Core Deterministic Encoding:
// map keys are sorted and integers take their smallest form, so equal
// documents always produce identical bytes.
package cbor

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/internal/tree"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cbor: encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// JSON objects only carry string keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}
}

// cborFormat implements qualify.Format for CBOR.
type cborFormat struct{}

// New returns a CBOR format.
func New() qualify.Format {
	return &cborFormat{}
}

// ContentType returns the MIME type for CBOR.
func (f *cborFormat) ContentType() string {
	return "application/cbor"
}

// ToJSON converts one CBOR data item to JSON. Byte strings become base64
// strings and object members are sorted by name.
func (f *cborFormat) ToJSON(data []byte) ([]byte, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	n, err := tree.FromValue(v)
	if err != nil {
		return nil, err
	}
	return n.JSON()
}

// FromJSON converts a JSON document to deterministic CBOR.
func (f *cborFormat) FromJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	v, err := n.Value()
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(v)
}
