package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuite2SignVerify(t *testing.T) {
	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)
	keys, err := suite.GenerateKeys(nil)
	require.NoError(t, err)

	digest := testDigest("container address")
	signature, err := suite.Sign(keys.Signature, digest)
	require.NoError(t, err)

	require.NoError(t, suite.Verify(keys.Signature.Public(), signature, digest))

	tampered := append([]byte(nil), digest...)
	tampered[3] ^= 0x04
	assert.ErrorIs(t, suite.Verify(keys.Signature.Public(), signature, tampered), ErrSecurity)

	badSig := append([]byte(nil), signature...)
	badSig[10] ^= 0x01
	assert.ErrorIs(t, suite.Verify(keys.Signature.Public(), badSig, digest), ErrSecurity)
}

func TestSuite2AsymRoundTrip(t *testing.T) {
	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)
	keys, err := suite.GenerateKeys(nil)
	require.NoError(t, err)

	plaintext := []byte("sealed record")
	ciphertext, err := suite.EncryptAsym(keys.Encryption.Public(), plaintext)
	require.NoError(t, err)

	decrypted, err := suite.DecryptAsym(keys.Encryption, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	tampered := append([]byte(nil), ciphertext...)
	tampered[5] ^= 0x01
	_, err = suite.DecryptAsym(keys.Encryption, tampered)
	assert.ErrorIs(t, err, ErrSecurity)
}

func TestSuite2SymRoundTrip(t *testing.T) {
	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)

	secret, err := suite.NewSecret(nil)
	require.NoError(t, err)
	assert.Equal(t, CipherNaCl, secret.Cipher)
	assert.Len(t, secret.Nonce, boxNonceSize)

	plaintext := bytes.Repeat([]byte("golix "), 200)
	ciphertext, err := suite.EncryptSym(secret, plaintext)
	require.NoError(t, err)

	decrypted, err := suite.DecryptSym(secret, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	// Secretbox is authenticated: tampering fails outright instead of
	// decrypting to garbage.
	tampered := append([]byte(nil), ciphertext...)
	tampered[1] ^= 0x01
	_, err = suite.DecryptSym(secret, tampered)
	assert.ErrorIs(t, err, ErrSecurity)
}

func TestSuite2DeriveSharedSymmetry(t *testing.T) {
	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)

	aliceKeys, err := suite.GenerateKeys(nil)
	require.NoError(t, err)
	bobKeys, err := suite.GenerateKeys(nil)
	require.NoError(t, err)

	aliceGuid, err := NewGuid(AddressSHA512, []byte("alice"))
	require.NoError(t, err)
	bobGuid, err := NewGuid(AddressSHA512, []byte("bob"))
	require.NoError(t, err)

	fromAlice, err := suite.DeriveShared(aliceKeys.Exchange, bobKeys.Exchange.Public(), aliceGuid, bobGuid)
	require.NoError(t, err)
	fromBob, err := suite.DeriveShared(bobKeys.Exchange, aliceKeys.Exchange.Public(), bobGuid, aliceGuid)
	require.NoError(t, err)

	assert.Equal(t, fromAlice, fromBob)
	assert.Len(t, fromAlice, sharedKeySize)
}

func TestSuite2MACRoundTrip(t *testing.T) {
	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)

	key := bytes.Repeat([]byte{0x24}, sharedKeySize)
	data := testDigest("envelope")

	tag, err := suite.MAC(key, data)
	require.NoError(t, err)
	assert.Len(t, tag, 64)

	require.NoError(t, suite.VerifyMAC(key, tag, data))

	tampered := append([]byte(nil), tag...)
	tampered[0] ^= 0x01
	assert.ErrorIs(t, suite.VerifyMAC(key, tampered, data), ErrSecurity)
}

func TestSuite2PublicBundleWireRoundTrip(t *testing.T) {
	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)
	keys, err := suite.GenerateKeys(nil)
	require.NoError(t, err)

	public, err := suite.PublicBundle(keys)
	require.NoError(t, err)

	parsed, err := suite.ParsePublicBundle(
		public.Signature.Bytes(), public.Encryption.Bytes(), public.Exchange.Bytes())
	require.NoError(t, err)

	digest := testDigest("wire round trip")
	signature, err := suite.Sign(keys.Signature, digest)
	require.NoError(t, err)
	assert.NoError(t, suite.Verify(parsed.Signature, signature, digest))

	// Sealed boxes to the re-parsed encryption key must open with the
	// original private key.
	ciphertext, err := suite.EncryptAsym(parsed.Encryption, []byte("to re-parsed key"))
	require.NoError(t, err)
	plaintext, err := suite.DecryptAsym(keys.Encryption, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("to re-parsed key"), plaintext)
}

func TestSuite2ParsePublicBundleRejectsBadLengths(t *testing.T) {
	suite, err := ForCipher(CipherNaCl)
	require.NoError(t, err)

	_, err = suite.ParsePublicBundle(make([]byte, 16), make([]byte, 32), make([]byte, 32))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = suite.ParsePublicBundle(make([]byte, 32), make([]byte, 31), make([]byte, 32))
	assert.ErrorIs(t, err, ErrConfiguration)
}
