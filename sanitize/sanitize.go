// Package sanitize holds the value transformations behind the mask, hash
// and encrypt qualifiers: content-aware maskers, one-way hashers and
// reversible encryptors.
package sanitize

// EncryptAlgo names an encryption algorithm.
// Use these constants in struct tags: `encrypt:"aes"`
type EncryptAlgo string

const (
	// EncryptAES uses AES-GCM symmetric encryption.
	EncryptAES EncryptAlgo = "aes"

	// EncryptRSA uses RSA-OAEP asymmetric encryption.
	EncryptRSA EncryptAlgo = "rsa"

	// EncryptEnvelope uses envelope encryption with per-message data keys.
	EncryptEnvelope EncryptAlgo = "envelope"
)

// HashAlgo names a hashing algorithm.
// Use these constants in struct tags: `hash:"argon2"`
type HashAlgo string

const (
	// HashArgon2 uses Argon2id for password hashing (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt for password hashing (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"

	// HashSHA256 uses SHA-256 for deterministic fingerprints, not passwords.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512 for deterministic fingerprints, not passwords.
	HashSHA512 HashAlgo = "sha512"
)

// MaskType names a data format with masking rules.
// Use these constants in struct tags: `mask:"email"`
type MaskType string

const (
	MaskSSN   MaskType = "ssn"   // 123-45-6789 -> ***-**-6789
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // (555) 123-4567 -> (***) ***-4567
	MaskCard  MaskType = "card"  // 4111111111111111 -> ************1111
	MaskIP    MaskType = "ip"    // 192.168.1.100 -> 192.168.xxx.xxx
	MaskUUID  MaskType = "uuid"  // 550e8400-e29b-... -> 550e8400-****-****-****-************
	MaskIBAN  MaskType = "iban"  // GB82WEST12345698765432 -> GB82**************5432
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// Valid reports whether the algorithm is known.
func (a EncryptAlgo) Valid() bool {
	switch a {
	case EncryptAES, EncryptRSA, EncryptEnvelope:
		return true
	}
	return false
}

// Valid reports whether the algorithm is known.
func (a HashAlgo) Valid() bool {
	switch a {
	case HashArgon2, HashBcrypt, HashSHA256, HashSHA512:
		return true
	}
	return false
}

// Valid reports whether the mask type is known.
func (m MaskType) Valid() bool {
	_, ok := builtinMasks[m]
	return ok
}
