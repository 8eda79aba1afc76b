// Package zstd wraps another format with Zstandard compression.
package zstd

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zoobzio/qualify"
)

// Encoders and decoders are reused across calls; both are safe for
// concurrent use through EncodeAll and DecodeAll.
var (
	decoder  *zstd.Decoder
	encoders = make(map[zstd.EncoderLevel]*zstd.Encoder)
)

func init() {
	var err error
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("zstd: decoder initialization failed: " + err.Error())
	}
	for _, level := range []zstd.EncoderLevel{zstd.SpeedFastest, zstd.SpeedDefault, zstd.SpeedBetterCompression, zstd.SpeedBestCompression} {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		if err != nil {
			panic("zstd: encoder initialization failed: " + err.Error())
		}
		encoders[level] = enc
	}
}

// zstdFormat compresses the output of an inner format.
type zstdFormat struct {
	inner   qualify.Format
	encoder *zstd.Encoder
}

// Option configures the zstd format.
type Option func(*zstdFormat)

// WithLevel selects the compression level. The default is
// zstd.SpeedDefault.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(f *zstdFormat) {
		if enc, ok := encoders[level]; ok {
			f.encoder = enc
		}
	}
}

// New returns a format that decompresses input before handing it to inner
// and compresses inner's output.
func New(inner qualify.Format, opts ...Option) qualify.Format {
	f := &zstdFormat{inner: inner, encoder: encoders[zstd.SpeedDefault]}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ContentType returns the inner content type with a +zstd suffix.
func (f *zstdFormat) ContentType() string {
	return f.inner.ContentType() + "+zstd"
}

// ToJSON decompresses data and converts it with the inner format.
func (f *zstdFormat) ToJSON(data []byte) ([]byte, error) {
	plain, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return f.inner.ToJSON(plain)
}

// FromJSON converts data with the inner format and compresses the result.
func (f *zstdFormat) FromJSON(data []byte) ([]byte, error) {
	plain, err := f.inner.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return f.encoder.EncodeAll(plain, nil), nil
}
