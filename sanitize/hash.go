package sanitize

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces an irreversible encoding of a value.
type Hasher interface {
	// Hash returns the encoded hash of plaintext. Password hashers include
	// their salt and parameters in the result.
	Hash(plaintext []byte) (string, error)
}

// Argon2Params are the Argon2id cost settings.
type Argon2Params struct {
	Time    uint32 // passes
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Params returns the OWASP-recommended Argon2id parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

type argon2Hasher struct {
	p Argon2Params
}

// Argon2 hashes with DefaultArgon2Params.
func Argon2() Hasher {
	return Argon2WithParams(DefaultArgon2Params())
}

// Argon2WithParams hashes with the given Argon2id settings.
func Argon2WithParams(p Argon2Params) Hasher {
	return argon2Hasher{p: p}
}

// Hash encodes as $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
func (h argon2Hasher) Hash(plaintext []byte) (string, error) {
	salt := make([]byte, h.p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey(plaintext, salt, h.p.Time, h.p.Memory, h.p.Threads, h.p.KeyLen)
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.p.Memory, h.p.Time, h.p.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

// BcryptCost is the bcrypt work factor.
type BcryptCost int

// Bcrypt cost bounds.
const (
	BcryptMinCost     = BcryptCost(bcrypt.MinCost)
	BcryptDefaultCost = BcryptCost(bcrypt.DefaultCost)
	BcryptMaxCost     = BcryptCost(bcrypt.MaxCost)
)

type bcryptHasher struct {
	cost BcryptCost
}

// Bcrypt returns a bcrypt hasher with the default cost.
func Bcrypt() Hasher {
	return BcryptWithCost(BcryptDefaultCost)
}

// BcryptWithCost returns a bcrypt hasher with a specific cost.
func BcryptWithCost(cost BcryptCost) Hasher {
	return bcryptHasher{cost: cost}
}

func (h bcryptHasher) Hash(plaintext []byte) (string, error) {
	out, err := bcrypt.GenerateFromPassword(plaintext, int(h.cost))
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// digestHasher hex-encodes an unsalted digest.
type digestHasher struct {
	newHash func() hash.Hash
}

// SHA256 returns a hasher producing 64 hex characters.
func SHA256() Hasher {
	return digestHasher{newHash: sha256.New}
}

// SHA512 returns a hasher producing 128 hex characters.
func SHA512() Hasher {
	return digestHasher{newHash: sha512.New}
}

func (h digestHasher) Hash(plaintext []byte) (string, error) {
	d := h.newHash()
	d.Write(plaintext)
	return hex.EncodeToString(d.Sum(nil)), nil
}

// Hashers returns a fresh map of the built-in hashers.
func Hashers() map[HashAlgo]Hasher {
	return map[HashAlgo]Hasher{
		HashArgon2: Argon2(),
		HashBcrypt: Bcrypt(),
		HashSHA256: SHA256(),
		HashSHA512: SHA512(),
	}
}
