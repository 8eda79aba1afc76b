package sanitize

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
)

var testKey = []byte("32-byte-key-for-aes-256-encrypt!")

func TestEncryptors_RoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	aesEnc, err := AES(testKey)
	if err != nil {
		t.Fatal(err)
	}
	envEnc, err := Envelope(testKey)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		enc  Encryptor
	}{
		{"aes", aesEnc},
		{"rsa", RSA(&priv.PublicKey, priv)},
		{"envelope", envEnc},
	}

	plaintext := []byte("sensitive data")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := tt.enc.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			second, err := tt.enc.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			if bytes.Equal(first, second) {
				t.Error("encryptions of the same plaintext should differ")
			}

			got, err := tt.enc.Decrypt(first)
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("Decrypt() = %q, want %q", got, plaintext)
			}
		})
	}
}

func TestEncryptors_InvalidKeySize(t *testing.T) {
	if _, err := AES([]byte("short")); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("AES: expected ErrInvalidKeySize, got %v", err)
	}
	if _, err := Envelope([]byte("short")); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("Envelope: expected ErrInvalidKeySize, got %v", err)
	}
}

func TestEncryptors_Tampered(t *testing.T) {
	enc, _ := AES(testKey)

	if _, err := enc.Decrypt([]byte("x")); !errors.Is(err, ErrCiphertextShort) {
		t.Errorf("expected ErrCiphertextShort, got %v", err)
	}

	sealed, _ := enc.Encrypt([]byte("data"))
	sealed[len(sealed)-1] ^= 0xff
	if _, err := enc.Decrypt(sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}

	env, _ := Envelope(testKey)
	if _, err := env.Decrypt([]byte{0, 200, 1}); !errors.Is(err, ErrCiphertextShort) {
		t.Errorf("expected ErrCiphertextShort, got %v", err)
	}
}

func TestRSA_MissingKeys(t *testing.T) {
	enc := RSA(nil, nil)
	if _, err := enc.Encrypt([]byte("x")); err == nil {
		t.Error("expected error without public key")
	}
	if _, err := enc.Decrypt([]byte("x")); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestEncryptAlgo_Valid(t *testing.T) {
	for _, a := range []EncryptAlgo{EncryptAES, EncryptRSA, EncryptEnvelope} {
		if !a.Valid() {
			t.Errorf("%s should be valid", a)
		}
	}
	if EncryptAlgo("des").Valid() {
		t.Error("des should be invalid")
	}
}
