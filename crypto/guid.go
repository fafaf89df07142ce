package crypto

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
)

// AddressAlgo identifies the hash algorithm used to derive container
// addresses.
type AddressAlgo uint8

const (
	// AddressNull produces a fixed placeholder digest. Testing only.
	AddressNull AddressAlgo = 0

	// AddressSHA512 derives addresses with SHA-512.
	AddressSHA512 AddressAlgo = 1

	// DefaultAddressAlgo is used when no algorithm is configured.
	DefaultAddressAlgo = AddressSHA512
)

// nullDigest is the fixed output of the null address algorithm.
var nullDigest = bytes.Repeat([]byte{0x67}, sha512.Size)

// DigestSize returns the digest length of an address algorithm.
func DigestSize(algo AddressAlgo) (int, error) {
	switch algo {
	case AddressNull, AddressSHA512:
		return sha512.Size, nil
	default:
		return 0, fmt.Errorf("%w: unknown address algorithm %d", ErrConfiguration, algo)
	}
}

// Digest hashes data under the given address algorithm.
func Digest(algo AddressAlgo, data []byte) ([]byte, error) {
	switch algo {
	case AddressNull:
		out := make([]byte, len(nullDigest))
		copy(out, nullDigest)
		return out, nil
	case AddressSHA512:
		sum := sha512.Sum512(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("%w: unknown address algorithm %d", ErrConfiguration, algo)
	}
}

// Guid is a content-derived address uniquely identifying a packed container.
type Guid struct {
	Algo   AddressAlgo
	Digest []byte
}

// NewGuid derives the address of a canonical container body.
func NewGuid(algo AddressAlgo, body []byte) (Guid, error) {
	digest, err := Digest(algo, body)
	if err != nil {
		return Guid{}, err
	}
	return Guid{Algo: algo, Digest: digest}, nil
}

// Bytes returns the wire form: one algorithm byte followed by the digest.
func (g Guid) Bytes() []byte {
	out := make([]byte, 1+len(g.Digest))
	out[0] = byte(g.Algo)
	copy(out[1:], g.Digest)
	return out
}

// GuidFromBytes parses the wire form produced by Bytes.
func GuidFromBytes(data []byte) (Guid, error) {
	if len(data) < 1 {
		return Guid{}, fmt.Errorf("%w: empty guid", ErrConfiguration)
	}
	algo := AddressAlgo(data[0])
	size, err := DigestSize(algo)
	if err != nil {
		return Guid{}, err
	}
	if len(data) != 1+size {
		return Guid{}, fmt.Errorf("%w: guid length %d does not match algorithm %d", ErrConfiguration, len(data), algo)
	}
	digest := make([]byte, size)
	copy(digest, data[1:])
	return Guid{Algo: algo, Digest: digest}, nil
}

// String returns the hexadecimal representation of the guid.
func (g Guid) String() string {
	return hex.EncodeToString(g.Bytes())
}

// GuidFromString parses the hexadecimal form produced by String.
func GuidFromString(s string) (Guid, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Guid{}, fmt.Errorf("%w: invalid guid hex: %v", ErrConfiguration, err)
	}
	return GuidFromBytes(data)
}

// Equal reports whether two guids identify the same container.
func (g Guid) Equal(other Guid) bool {
	return g.Algo == other.Algo && bytes.Equal(g.Digest, other.Digest)
}

// IsZero reports whether the guid is unset.
func (g Guid) IsZero() bool {
	return len(g.Digest) == 0
}
