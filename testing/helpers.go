// Package testing provides test utilities for qualify.
package testing

import (
	"context"
	"reflect"
	"testing"

	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/sanitize"
)

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES encryptor configured for testing.
func TestEncryptor(tb testing.TB) sanitize.Encryptor {
	tb.Helper()
	enc, err := sanitize.AES(TestKey(tb))
	if err != nil {
		tb.Fatalf("AES() error: %v", err)
	}
	return enc
}

// TestRegistry returns a registry with the test AES encryptor registered.
func TestRegistry(tb testing.TB, opts ...qualify.Option) *qualify.Registry {
	tb.Helper()
	opts = append([]qualify.Option{qualify.WithEncryptor(sanitize.EncryptAES, TestEncryptor(tb))}, opts...)
	return qualify.NewRegistry(opts...)
}

// MustFor resolves an adapter for T or fails the test.
func MustFor[T any](tb testing.TB, reg *qualify.Registry, qs ...qualify.Qualifier) *qualify.Adapter[T] {
	tb.Helper()
	a, err := qualify.For[T](reg, qs...)
	if err != nil {
		tb.Fatalf("For[%s]() error: %v", reflect.TypeFor[T](), err)
	}
	return a
}

// RoundTrip marshals v to f and back, failing the test on any error.
func RoundTrip[T any](tb testing.TB, a *qualify.Adapter[T], f qualify.Format, v T) T {
	tb.Helper()
	ctx := context.Background()
	data, err := a.MarshalTo(ctx, f, v)
	if err != nil {
		tb.Fatalf("MarshalTo(%s) error: %v", f.ContentType(), err)
	}
	got, err := a.UnmarshalFrom(ctx, f, data)
	if err != nil {
		tb.Fatalf("UnmarshalFrom(%s) error: %v", f.ContentType(), err)
	}
	return got
}

// SimpleUser is a test type with no qualifier tags.
type SimpleUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SanitizedUser is a test type carrying the sanitising qualifiers.
type SanitizedUser struct {
	ID       string `json:"id"`
	Email    string `json:"email" encrypt:"aes"`
	Password string `json:"password" hash:"argon2" only:"deserialize"`
	SSN      string `json:"ssn" mask:"ssn"`
	Note     string `json:"note" redact:"[REDACTED]"`
}

// Envelope nests a user below a wrapper path with positional projection.
type Envelope struct {
	Owner   *SimpleUser   `json:"owner" wrapped:"data.owner,lenient"`
	Latest  *SimpleUser   `json:"latest" element:"last"`
	Members []*SimpleUser `json:"members" filter:"nulls" omit:"empty"`
}
