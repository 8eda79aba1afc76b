package qualify

import (
	"encoding/base64"
	"reflect"

	"github.com/zoobzio/qualify/sanitize"
	"github.com/zoobzio/qualify/stream"
)

func encryptFactory() Factory {
	return QualifierFactory[Encrypt](StageValue, func(t reflect.Type, tag Encrypt, rest Qualifiers, res Resolver) (Codec, error) {
		if err := requireString(t, tag); err != nil {
			return nil, err
		}
		enc, ok := res.Encryptor(tag.Algo)
		if !ok {
			return nil, newConfigError(ErrMissingEncryptor, t, tag.String(), "register one with SetEncryptor")
		}
		inner, err := res.Resolve(t, rest)
		if err != nil {
			return nil, err
		}
		return &encryptCodec{inner: inner, typ: t, enc: enc, algo: tag.Algo}, nil
	})
}

// encryptCodec stores values as base64-encoded ciphertext.
type encryptCodec struct {
	inner Codec
	typ   reflect.Type
	enc   sanitize.Encryptor
	algo  sanitize.EncryptAlgo
}

func (c *encryptCodec) Decode(r *stream.Reader) (any, error) {
	if null, err := consumeNull(r); null || err != nil {
		return nil, err
	}
	at := r.Path()
	encoded, err := r.NextString()
	if err != nil {
		return nil, err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, newTransformError(ErrDecrypt, "decrypt", at, err)
	}
	plaintext, err := c.enc.Decrypt(ciphertext)
	if err != nil {
		return nil, newTransformError(ErrDecrypt, "decrypt", at, err)
	}
	return asType(c.typ, string(plaintext)), nil
}

func (c *encryptCodec) Encode(w *stream.Writer, v any) error {
	if isNull(v) {
		return c.inner.Encode(w, v)
	}
	s, ok := stringOf(v)
	if !ok {
		return encodeTypeError(c, v)
	}
	ciphertext, err := c.enc.Encrypt([]byte(s))
	if err != nil {
		return newTransformError(ErrEncrypt, "encrypt", c.String(), err)
	}
	return w.String(base64.StdEncoding.EncodeToString(ciphertext))
}

func (c *encryptCodec) String() string {
	return c.inner.String() + ".encrypt(" + string(c.algo) + ")"
}
