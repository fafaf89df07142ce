package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuidDeterministic(t *testing.T) {
	a, err := NewGuid(AddressSHA512, []byte("container body"))
	require.NoError(t, err)
	b, err := NewGuid(AddressSHA512, []byte("container body"))
	require.NoError(t, err)

	assert.True(t, a.Equal(b), "same body must produce the same guid")
	assert.Len(t, a.Digest, 64)

	c, err := NewGuid(AddressSHA512, []byte("different body"))
	require.NoError(t, err)
	assert.False(t, a.Equal(c), "different bodies must produce different guids")
}

func TestNewGuidUnknownAlgo(t *testing.T) {
	_, err := NewGuid(AddressAlgo(200), []byte("body"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNullAddressAlgo(t *testing.T) {
	a, err := NewGuid(AddressNull, []byte("anything"))
	require.NoError(t, err)
	b, err := NewGuid(AddressNull, []byte("anything else"))
	require.NoError(t, err)

	// The null algorithm is a fixed placeholder, not a hash.
	assert.True(t, a.Equal(b))
	assert.Len(t, a.Digest, 64)
}

func TestGuidStringRoundTrip(t *testing.T) {
	g, err := NewGuid(AddressSHA512, []byte("round trip"))
	require.NoError(t, err)

	parsed, err := GuidFromString(g.String())
	require.NoError(t, err)
	assert.True(t, g.Equal(parsed))
}

func TestGuidFromBytesRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown algorithm", append([]byte{200}, bytes.Repeat([]byte{1}, 64)...)},
		{"truncated digest", append([]byte{byte(AddressSHA512)}, bytes.Repeat([]byte{1}, 32)...)},
		{"oversized digest", append([]byte{byte(AddressSHA512)}, bytes.Repeat([]byte{1}, 96)...)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GuidFromBytes(tc.data)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestGuidIsZero(t *testing.T) {
	assert.True(t, Guid{}.IsZero())

	g, err := NewGuid(AddressSHA512, []byte("x"))
	require.NoError(t, err)
	assert.False(t, g.IsZero())
}
