package crypto

import (
	"crypto/rand"
	"io"
)

// defaultEntropy is the package-level randomness source. It defaults to the
// operating system CSPRNG. Low-entropy environments can route all key and
// secret generation through a hardware or blocking generator instead of
// silently degrading.
var defaultEntropy io.Reader = rand.Reader

// SetDefaultEntropy replaces the package-level entropy source. Pass nil to
// reset to the operating system CSPRNG. The source must be cryptographically
// secure and safe for concurrent use.
func SetDefaultEntropy(r io.Reader) {
	if r == nil {
		r = rand.Reader
	}
	defaultEntropy = r
}

// DefaultEntropy returns the current package-level entropy source.
func DefaultEntropy() io.Reader {
	return defaultEntropy
}

// randomBytes fills a fresh buffer of n bytes from the given source, or the
// package default when src is nil.
func randomBytes(src io.Reader, n int) ([]byte, error) {
	if src == nil {
		src = defaultEntropy
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
