// Package json provides the identity JSON format.
package json

import (
	"bytes"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/internal/tree"
)

// jsonFormat implements qualify.Format for JSON.
type jsonFormat struct {
	indent string
}

// Option configures the JSON format.
type Option func(*jsonFormat)

// WithIndent pretty-prints output with the given indent.
func WithIndent(indent string) Option {
	return func(f *jsonFormat) { f.indent = indent }
}

// New returns a JSON format.
func New(opts ...Option) qualify.Format {
	f := &jsonFormat{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ContentType returns the MIME type for JSON.
func (f *jsonFormat) ContentType() string {
	return qualify.ContentTypeJSON
}

// ToJSON validates data and returns it compacted.
func (f *jsonFormat) ToJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return n.JSON()
}

// FromJSON returns data, indented when configured.
func (f *jsonFormat) FromJSON(data []byte) ([]byte, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	if f.indent == "" {
		return n.JSON()
	}
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.AllowDuplicateNames(true), jsontext.WithIndent(f.indent))
	if err := n.Write(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
