package crypto

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReader wraps an entropy source and records how many reads pass
// through it.
type countingReader struct {
	inner io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.inner.Read(p)
}

func TestSetDefaultEntropy(t *testing.T) {
	counter := &countingReader{inner: DefaultEntropy()}
	SetDefaultEntropy(counter)
	defer SetDefaultEntropy(nil)

	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)

	_, err = suite.NewSecret(nil)
	require.NoError(t, err)
	assert.Greater(t, counter.reads, 0, "secret generation must draw from the configured source")
}

func TestExplicitRandOverridesDefault(t *testing.T) {
	counter := &countingReader{inner: DefaultEntropy()}

	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)

	secret, err := suite.NewSecret(counter)
	require.NoError(t, err)
	assert.Greater(t, counter.reads, 0)
	assert.Len(t, secret.Key, symKeySize)
}

func TestZeroBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	ZeroBytes(data)
	assert.Equal(t, []byte{0, 0, 0, 0}, data)

	assert.Error(t, SecureWipe(nil))
}
