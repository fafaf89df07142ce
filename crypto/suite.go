// Package crypto implements the ciphersuite layer of the Golix protocol.
//
// A ciphersuite is a fixed bundle of primitives (signature, asymmetric and
// symmetric encryption, key exchange, MAC, KDF) identified by a small
// integer. Every suite satisfies the Suite contract; identities pick one
// suite at construction time through the registry and never mix suites.
//
// Example:
//
//	suite, err := crypto.ForCipher(crypto.DefaultCipher)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	keys, err := suite.GenerateKeys(nil)
package crypto

import (
	"fmt"
	"io"
)

// CipherID identifies a ciphersuite.
type CipherID uint8

const (
	// CipherNull is the fixed-output testing suite. It performs no real
	// cryptography and must never be selected by default.
	CipherNull CipherID = 0

	// CipherRSA is the production suite: RSA-4096 PSS signatures, RSA-4096
	// OAEP encryption, X25519 exchange, AES-256-CTR, HMAC-SHA512.
	CipherRSA CipherID = 1

	// CipherNaCl is the modern suite: Ed25519 signatures, NaCl sealed-box
	// encryption, X25519 exchange, XSalsa20-Poly1305, keyed BLAKE2b MAC.
	CipherNaCl CipherID = 2

	// DefaultCipher is used when no suite is configured.
	DefaultCipher = CipherRSA
)

// PublicKey is one public key role of an identity. Bytes returns the
// canonical wire encoding packed into a GIDC record.
type PublicKey interface {
	Cipher() CipherID
	Bytes() []byte
}

// PrivateKey is one private key role of an identity.
type PrivateKey interface {
	Cipher() CipherID
	Public() PublicKey
}

// KeyBundle holds the private key material of a first-person identity, one
// key per role.
type KeyBundle struct {
	Cipher     CipherID
	Signature  PrivateKey
	Encryption PrivateKey
	Exchange   PrivateKey
}

// Validate checks that every key role is present and belongs to the
// bundle's ciphersuite.
func (kb *KeyBundle) Validate() error {
	if kb == nil {
		return fmt.Errorf("%w: nil key bundle", ErrConfiguration)
	}
	roles := []struct {
		name string
		key  PrivateKey
	}{
		{"signature", kb.Signature},
		{"encryption", kb.Encryption},
		{"exchange", kb.Exchange},
	}
	for _, r := range roles {
		if r.key == nil {
			return fmt.Errorf("%w: key bundle missing %s key", ErrConfiguration, r.name)
		}
		if r.key.Cipher() != kb.Cipher {
			return fmt.Errorf("%w: %s key belongs to cipher %d, bundle declares %d",
				ErrConfiguration, r.name, r.key.Cipher(), kb.Cipher)
		}
	}
	return nil
}

// PublicKeyBundle holds the public key material of an identity.
type PublicKeyBundle struct {
	Cipher     CipherID
	Signature  PublicKey
	Encryption PublicKey
	Exchange   PublicKey
}

// Validate checks that every public key role is present and belongs to the
// bundle's ciphersuite.
func (pb *PublicKeyBundle) Validate() error {
	if pb == nil {
		return fmt.Errorf("%w: nil public key bundle", ErrConfiguration)
	}
	roles := []struct {
		name string
		key  PublicKey
	}{
		{"signature", pb.Signature},
		{"encryption", pb.Encryption},
		{"exchange", pb.Exchange},
	}
	for _, r := range roles {
		if r.key == nil {
			return fmt.Errorf("%w: public key bundle missing %s key", ErrConfiguration, r.name)
		}
		if r.key.Cipher() != pb.Cipher {
			return fmt.Errorf("%w: %s key belongs to cipher %d, bundle declares %d",
				ErrConfiguration, r.name, r.key.Cipher(), pb.Cipher)
		}
	}
	return nil
}

// Suite is the contract every ciphersuite satisfies. All operations are pure
// functions of their inputs; implementations retain no state between calls
// and are safe for concurrent use.
//
// Sign and Verify operate on a container's 64-byte address digest, never on
// raw plaintext: authenticity binds to the container's identity rather than
// its content.
type Suite interface {
	// ID returns the suite's ciphersuite id.
	ID() CipherID

	// GenerateKeys produces fresh asymmetric material for all three key
	// roles, drawing randomness from rand (package default when nil).
	GenerateKeys(rand io.Reader) (*KeyBundle, error)

	// PublicBundle projects the public portions of a key bundle.
	PublicBundle(keys *KeyBundle) (*PublicKeyBundle, error)

	// ParsePublicBundle reconstructs public keys from their canonical wire
	// encodings, as unpacked from a GIDC record.
	ParsePublicBundle(signature, encryption, exchange []byte) (*PublicKeyBundle, error)

	// Sign produces a detached signature over an address digest.
	Sign(key PrivateKey, digest []byte) ([]byte, error)

	// Verify checks a detached signature over an address digest. Any
	// mismatch returns an error wrapping ErrSecurity.
	Verify(key PublicKey, signature, digest []byte) error

	// EncryptAsym encrypts a short record to a public encryption key.
	EncryptAsym(key PublicKey, plaintext []byte) ([]byte, error)

	// DecryptAsym decrypts a payload with a private encryption key.
	DecryptAsym(key PrivateKey, ciphertext []byte) ([]byte, error)

	// EncryptSym encrypts a payload under a one-time Secret.
	EncryptSym(secret *Secret, plaintext []byte) ([]byte, error)

	// DecryptSym decrypts a payload under a one-time Secret.
	DecryptSym(secret *Secret, ciphertext []byte) ([]byte, error)

	// DeriveShared computes the key material shared between two identities
	// from their exchange keys and address digests. The derivation is
	// symmetric: both sides obtain identical output regardless of order.
	DeriveShared(self PrivateKey, partner PublicKey, selfGuid, partnerGuid Guid) ([]byte, error)

	// MAC produces a keyed integrity tag over data.
	MAC(key, data []byte) ([]byte, error)

	// VerifyMAC checks a keyed integrity tag in constant time. Any
	// mismatch returns an error wrapping ErrSecurity.
	VerifyMAC(key, tag, data []byte) error

	// NewSecret generates a Secret with independently random key and
	// nonce, drawing randomness from rand (package default when nil).
	NewSecret(rand io.Reader) (*Secret, error)
}

// suites is the id -> implementation registry. Populated at init time by
// each suite file.
var suites = map[CipherID]Suite{}

func register(s Suite) {
	suites[s.ID()] = s
}

// ForCipher returns the suite registered for the given id.
func ForCipher(id CipherID) (Suite, error) {
	s, ok := suites[id]
	if !ok {
		return nil, fmt.Errorf("%w: no ciphersuite registered for id %d", ErrConfiguration, id)
	}
	return s, nil
}
