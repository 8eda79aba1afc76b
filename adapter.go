package qualify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/zoobzio/qualify/stream"
	"github.com/zoobzio/sentinel"
)

// ContentTypeJSON is the content type reported for plain JSON documents.
const ContentTypeJSON = "application/json"

// Adapter is a typed view of a resolved codec.
//
// Adapters are immutable and safe for concurrent use.
type Adapter[T any] struct {
	codec    Codec
	typeName string
}

// For resolves an adapter for T on reg.
func For[T any](reg *Registry, qs ...Qualifier) (*Adapter[T], error) {
	q, err := NewQualifiers(qs...)
	if err != nil {
		return nil, err
	}
	return forSet[T](reg, q)
}

func forSet[T any](reg *Registry, q Qualifiers) (*Adapter[T], error) {
	t := reflect.TypeFor[T]()
	typeName := t.String()
	if t.Kind() == reflect.Struct {
		// Scanning caches metadata for scanStruct.
		typeName = sentinel.Scan[T]().TypeName
	}
	c, err := reg.ResolveSet(t, q)
	if err != nil {
		return nil, err
	}
	return &Adapter[T]{codec: c, typeName: typeName}, nil
}

// Codec returns the underlying codec.
func (a *Adapter[T]) Codec() Codec {
	return a.codec
}

func (a *Adapter[T]) String() string {
	return a.codec.String()
}

// Decode reads one value from r. Null decodes as the zero value.
func (a *Adapter[T]) Decode(r *stream.Reader) (T, error) {
	var zero T
	v, err := a.codec.Decode(r)
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s decoded %T", ErrUnsupportedType, a.codec, v)
	}
	return out, nil
}

// Encode writes v to w.
func (a *Adapter[T]) Encode(w *stream.Writer, v T) error {
	return a.codec.Encode(w, v)
}

// Unmarshal decodes a complete JSON document. Input after the top-level
// value is ErrTrailingData.
func (a *Adapter[T]) Unmarshal(ctx context.Context, data []byte) (T, error) {
	start := time.Now()
	v, err := a.unmarshal(data)
	emitDecodeComplete(ctx, ContentTypeJSON, a.typeName, len(data), time.Since(start), err)
	return v, err
}

func (a *Adapter[T]) unmarshal(data []byte) (T, error) {
	r := stream.NewReaderBytes(data)
	v, err := a.Decode(r)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := r.End(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Marshal encodes v as a compact JSON document.
func (a *Adapter[T]) Marshal(ctx context.Context, v T) ([]byte, error) {
	start := time.Now()
	data, err := a.marshal(v)
	emitEncodeComplete(ctx, ContentTypeJSON, a.typeName, len(data), time.Since(start), err)
	return data, err
}

func (a *Adapter[T]) marshal(v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Encode(stream.NewWriter(&buf), v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Read decodes one JSON value from r without requiring the input to end.
func (a *Adapter[T]) Read(ctx context.Context, r io.Reader) (T, error) {
	start := time.Now()
	v, err := a.Decode(stream.NewReader(r))
	emitDecodeComplete(ctx, ContentTypeJSON, a.typeName, 0, time.Since(start), err)
	return v, err
}

// Write encodes v to w followed by a newline.
func (a *Adapter[T]) Write(ctx context.Context, w io.Writer, v T) error {
	start := time.Now()
	err := a.Encode(stream.NewWriter(w), v)
	emitEncodeComplete(ctx, ContentTypeJSON, a.typeName, 0, time.Since(start), err)
	return err
}

// UnmarshalFrom converts data from f to JSON and decodes it.
func (a *Adapter[T]) UnmarshalFrom(ctx context.Context, f Format, data []byte) (T, error) {
	start := time.Now()
	var retErr error
	defer func() {
		emitDecodeComplete(ctx, f.ContentType(), a.typeName, len(data), time.Since(start), retErr)
	}()

	doc, err := f.ToJSON(data)
	if err != nil {
		var zero T
		retErr = newCodecError(ErrUnmarshal, err)
		return zero, retErr
	}
	v, err := a.unmarshal(doc)
	retErr = err
	return v, err
}

// MarshalTo encodes v as JSON and converts the document to f.
func (a *Adapter[T]) MarshalTo(ctx context.Context, f Format, v T) ([]byte, error) {
	start := time.Now()
	var retErr error
	var retData []byte
	defer func() {
		emitEncodeComplete(ctx, f.ContentType(), a.typeName, len(retData), time.Since(start), retErr)
	}()

	doc, err := a.marshal(v)
	if err != nil {
		retErr = err
		return nil, err
	}
	retData, err = f.FromJSON(doc)
	if err != nil {
		retErr = newCodecError(ErrMarshal, err)
		retData = nil
		return nil, retErr
	}
	return retData, nil
}
