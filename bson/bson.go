// Package bson provides a BSON format. Documents are converted through
// relaxed MongoDB Extended JSON, so BSON-only types such as ObjectID and
// dates appear as their $-prefixed wrapper objects.
package bson

import (
	"errors"

	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/internal/tree"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotDocument is returned when the top-level JSON value is not an object.
var ErrNotDocument = errors.New("bson: top-level value must be an object")

// bsonFormat implements qualify.Format for BSON.
type bsonFormat struct {
	canonical bool
}

// Option configures the BSON format.
type Option func(*bsonFormat)

// Canonical switches to canonical Extended JSON, which keeps numeric
// types exact at the cost of wrapper objects for every number.
func Canonical() Option {
	return func(f *bsonFormat) { f.canonical = true }
}

// New returns a BSON format.
func New(opts ...Option) qualify.Format {
	f := &bsonFormat{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ContentType returns the MIME type for BSON.
func (f *bsonFormat) ContentType() string {
	return "application/bson"
}

// ToJSON converts a BSON document to Extended JSON.
func (f *bsonFormat) ToJSON(data []byte) ([]byte, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out, err := bson.MarshalExtJSON(doc, f.canonical, false)
	if err != nil {
		return nil, err
	}
	n, err := tree.ParseJSON(out)
	if err != nil {
		return nil, err
	}
	return n.JSON()
}

// FromJSON converts a JSON object to a BSON document.
func (f *bsonFormat) FromJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	if n.Kind != tree.Object {
		return nil, ErrNotDocument
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, f.canonical, &doc); err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}
