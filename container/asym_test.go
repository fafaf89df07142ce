package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/golix/crypto"
)

func TestHandshakeRoundTrip(t *testing.T) {
	handshake := &Handshake{
		Author: testGuid(t, "author"),
		Target: testGuid(t, "target"),
		Secret: crypto.Secret{
			Cipher: crypto.CipherRSA,
			Key:    []byte("0123456789abcdef0123456789abcdef"),
			Nonce:  []byte("0123456789abcdef"),
		},
	}
	assert.Equal(t, KindHandshake, handshake.Kind())

	packed, err := handshake.Pack()
	require.NoError(t, err)

	parsed, err := UnpackHandshake(packed)
	require.NoError(t, err)
	assert.True(t, handshake.Author.Equal(parsed.AuthorGuid()))
	assert.True(t, handshake.Target.Equal(parsed.TargetGuid()))
	assert.Equal(t, handshake.Secret.Cipher, parsed.Secret.Cipher)
	assert.Equal(t, handshake.Secret.Key, parsed.Secret.Key)
	assert.Equal(t, handshake.Secret.Nonce, parsed.Secret.Nonce)
}

func TestAckNakRoundTrip(t *testing.T) {
	ack := &Ack{Author: testGuid(t, "a"), Target: testGuid(t, "t"), Status: 7}
	packedAck, err := ack.Pack()
	require.NoError(t, err)
	parsedAck, err := UnpackAck(packedAck)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), parsedAck.Status)
	assert.Equal(t, KindAck, parsedAck.Kind())

	nak := &Nak{Author: testGuid(t, "a"), Target: testGuid(t, "t"), Status: 404}
	packedNak, err := nak.Pack()
	require.NoError(t, err)
	parsedNak, err := UnpackNak(packedNak)
	require.NoError(t, err)
	assert.Equal(t, uint32(404), parsedNak.Status)
	assert.Equal(t, KindNak, parsedNak.Kind())
}

// Each inner record must parse only as its own kind, so the ordered cascade
// in the identity layer is unambiguous.
func TestInnerRecordsAreMutuallyExclusive(t *testing.T) {
	handshake := &Handshake{
		Author: testGuid(t, "a"),
		Target: testGuid(t, "t"),
		Secret: crypto.Secret{Cipher: crypto.CipherRSA, Key: make([]byte, 32), Nonce: make([]byte, 16)},
	}
	packedHandshake, err := handshake.Pack()
	require.NoError(t, err)

	ack := &Ack{Author: testGuid(t, "a"), Target: testGuid(t, "t")}
	packedAck, err := ack.Pack()
	require.NoError(t, err)

	_, err = UnpackAck(packedHandshake)
	assert.ErrorIs(t, err, ErrParse)
	_, err = UnpackNak(packedHandshake)
	assert.ErrorIs(t, err, ErrParse)
	_, err = UnpackHandshake(packedAck)
	assert.ErrorIs(t, err, ErrParse)
	_, err = UnpackNak(packedAck)
	assert.ErrorIs(t, err, ErrParse)
}

func TestInnerRecordRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("x"), []byte("[[ Placeholder asymmetric payload ]]")} {
		_, err := UnpackHandshake(data)
		assert.ErrorIs(t, err, ErrParse)
		_, err = UnpackAck(data)
		assert.ErrorIs(t, err, ErrParse)
		_, err = UnpackNak(data)
		assert.ErrorIs(t, err, ErrParse)
	}
}
