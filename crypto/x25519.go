package crypto

import (
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
)

// xKeySize is the length of X25519 scalars and curve points.
const xKeySize = 32

// xPublicKey is a Curve25519 point. Suites 1 and 2 both use it for the
// exchange role; suite 2 additionally uses it for sealed-box encryption.
type xPublicKey struct {
	cipher CipherID
	point  [xKeySize]byte
}

func (k *xPublicKey) Cipher() CipherID { return k.cipher }

func (k *xPublicKey) Bytes() []byte {
	out := make([]byte, xKeySize)
	copy(out, k.point[:])
	return out
}

// xPrivateKey is a Curve25519 scalar with its derived public point.
type xPrivateKey struct {
	cipher CipherID
	scalar [xKeySize]byte
	point  [xKeySize]byte
}

func (k *xPrivateKey) Cipher() CipherID { return k.cipher }

func (k *xPrivateKey) Public() PublicKey {
	return &xPublicKey{cipher: k.cipher, point: k.point}
}

// generateXKey creates a fresh Curve25519 key pair for the given suite.
func generateXKey(rand io.Reader, cipher CipherID) (*xPrivateKey, error) {
	scalar, err := randomBytes(rand, xKeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate X25519 scalar: %w", err)
	}
	point, err := curve25519.X25519(scalar, curve25519.Basepoint)
	if err != nil {
		ZeroBytes(scalar)
		return nil, fmt.Errorf("failed to derive X25519 public key: %w", err)
	}

	key := &xPrivateKey{cipher: cipher}
	copy(key.scalar[:], scalar)
	copy(key.point[:], point)
	ZeroBytes(scalar)
	return key, nil
}

// parseXPublicKey reconstructs a Curve25519 public key from its 32-byte
// wire encoding.
func parseXPublicKey(raw []byte, cipher CipherID) (*xPublicKey, error) {
	if len(raw) != xKeySize {
		return nil, fmt.Errorf("%w: X25519 public key must be %d bytes, got %d",
			ErrConfiguration, xKeySize, len(raw))
	}
	key := &xPublicKey{cipher: cipher}
	copy(key.point[:], raw)
	return key, nil
}

// xorSalt combines both participants' address digests into an
// order-independent HKDF salt. Either side computes an identical salt
// regardless of who initiates.
func xorSalt(a, b Guid) ([]byte, error) {
	if len(a.Digest) != len(b.Digest) {
		return nil, fmt.Errorf("%w: address digests of length %d and %d cannot be combined",
			ErrTypeMismatch, len(a.Digest), len(b.Digest))
	}
	salt := make([]byte, len(a.Digest))
	for i := range salt {
		salt[i] = a.Digest[i] ^ b.Digest[i]
	}
	return salt, nil
}
