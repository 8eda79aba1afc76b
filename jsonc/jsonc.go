// Package jsonc provides a JSON-with-comments format. Comments and
// trailing commas are accepted on input; output is plain JSON.
package jsonc

import (
	"github.com/tidwall/jsonc"
	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/internal/tree"
)

// jsoncFormat implements qualify.Format for JSONC.
type jsoncFormat struct{}

// New returns a JSONC format.
func New() qualify.Format {
	return &jsoncFormat{}
}

// ContentType returns the MIME type for JSONC.
func (f *jsoncFormat) ContentType() string {
	return "application/jsonc"
}

// ToJSON strips comments and trailing commas from data.
func (f *jsoncFormat) ToJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(jsonc.ToJSON(data))
	if err != nil {
		return nil, err
	}
	return n.JSON()
}

// FromJSON returns data unchanged; JSON is valid JSONC.
func (f *jsoncFormat) FromJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return n.JSON()
}
