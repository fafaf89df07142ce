package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/golix/crypto"
)

func testGuid(t *testing.T, seed string) crypto.Guid {
	t.Helper()
	g, err := crypto.NewGuid(crypto.AddressSHA512, []byte(seed))
	require.NoError(t, err)
	return g
}

func TestGIDCRoundTrip(t *testing.T) {
	gidc := &GIDC{
		SignatureKey:  []byte("signature key bytes"),
		EncryptionKey: []byte("encryption key bytes"),
		ExchangeKey:   []byte("exchange key bytes"),
	}
	require.NoError(t, gidc.Pack(crypto.CipherRSA, crypto.AddressSHA512))
	require.False(t, gidc.Guid().IsZero())

	parsed, err := UnpackGIDC(gidc.Packed())
	require.NoError(t, err)
	assert.Equal(t, crypto.CipherRSA, parsed.Cipher)
	assert.Equal(t, gidc.SignatureKey, parsed.SignatureKey)
	assert.Equal(t, gidc.EncryptionKey, parsed.EncryptionKey)
	assert.Equal(t, gidc.ExchangeKey, parsed.ExchangeKey)
	assert.True(t, gidc.Guid().Equal(parsed.Guid()))
}

func TestGEOCRoundTripWithSignature(t *testing.T) {
	geoc := &GEOC{
		Author:  testGuid(t, "author"),
		Payload: []byte("opaque encrypted payload"),
	}
	require.NoError(t, geoc.Pack(crypto.CipherRSA, crypto.AddressSHA512))

	// Two-phase: pack first, then attach a signature over the address.
	signature := []byte("detached signature over the address digest")
	require.NoError(t, geoc.PackSignature(signature))

	parsed, err := UnpackGEOC(geoc.Packed())
	require.NoError(t, err)
	assert.True(t, geoc.Author.Equal(parsed.Author))
	assert.Equal(t, geoc.Payload, parsed.Payload)
	assert.Equal(t, signature, parsed.Signature())
	assert.True(t, geoc.Guid().Equal(parsed.Guid()))
}

func TestPackSignatureBeforePack(t *testing.T) {
	geoc := &GEOC{Author: testGuid(t, "author")}
	assert.Error(t, geoc.PackSignature([]byte("sig")))
}

func TestGOBSRoundTrip(t *testing.T) {
	gobs := &GOBS{Binder: testGuid(t, "binder"), Target: testGuid(t, "target")}
	require.NoError(t, gobs.Pack(crypto.CipherNaCl, crypto.AddressSHA512))
	require.NoError(t, gobs.PackSignature([]byte("sig")))

	parsed, err := UnpackGOBS(gobs.Packed())
	require.NoError(t, err)
	assert.True(t, gobs.Binder.Equal(parsed.Binder))
	assert.True(t, gobs.Target.Equal(parsed.Target))
}

func TestGOBDRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		history []crypto.Guid
	}{
		{"no history", nil},
		{"with history", []crypto.Guid{testGuid(t, "frame 2"), testGuid(t, "frame 1")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gobd := &GOBD{
				Binder:         testGuid(t, "binder"),
				Target:         testGuid(t, "target"),
				DynamicAddress: testGuid(t, "dynamic"),
				History:        tc.history,
			}
			require.NoError(t, gobd.Pack(crypto.CipherRSA, crypto.AddressSHA512))
			require.NoError(t, gobd.PackSignature([]byte("sig")))

			parsed, err := UnpackGOBD(gobd.Packed())
			require.NoError(t, err)
			assert.True(t, gobd.DynamicAddress.Equal(parsed.DynamicAddress))
			require.Len(t, parsed.History, len(tc.history))
			for i := range tc.history {
				assert.True(t, tc.history[i].Equal(parsed.History[i]))
			}
		})
	}
}

func TestGDXXRoundTrip(t *testing.T) {
	gdxx := &GDXX{Debinder: testGuid(t, "debinder"), Target: testGuid(t, "target")}
	require.NoError(t, gdxx.Pack(crypto.CipherRSA, crypto.AddressSHA512))
	require.NoError(t, gdxx.PackSignature([]byte("sig")))

	parsed, err := UnpackGDXX(gdxx.Packed())
	require.NoError(t, err)
	assert.True(t, gdxx.Debinder.Equal(parsed.Debinder))
	assert.True(t, gdxx.Target.Equal(parsed.Target))
}

func TestGARQRoundTrip(t *testing.T) {
	garq := &GARQ{Recipient: testGuid(t, "recipient"), Payload: []byte("asymmetric ciphertext")}
	require.NoError(t, garq.Pack(crypto.CipherRSA, crypto.AddressSHA512))
	require.NoError(t, garq.PackSignature([]byte("mac tag")))

	parsed, err := UnpackGARQ(garq.Packed())
	require.NoError(t, err)
	assert.True(t, garq.Recipient.Equal(parsed.Recipient))
	assert.Equal(t, garq.Payload, parsed.Payload)
	assert.Equal(t, []byte("mac tag"), parsed.Signature())
}

func TestUnpackRejectsMalformed(t *testing.T) {
	geoc := &GEOC{Author: testGuid(t, "author"), Payload: []byte("payload")}
	require.NoError(t, geoc.Pack(crypto.CipherRSA, crypto.AddressSHA512))
	require.NoError(t, geoc.PackSignature([]byte("sig")))
	packed := geoc.Packed()

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong magic", append([]byte("GOBX"), packed[4:]...)},
		{"truncated header", packed[:3]},
		{"truncated body", packed[:len(packed)/2]},
		{"trailing garbage", append(append([]byte(nil), packed...), 0xff)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnpackGEOC(tc.data)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestUnpackDetectsBodyCorruption(t *testing.T) {
	geoc := &GEOC{Author: testGuid(t, "author"), Payload: []byte("payload")}
	require.NoError(t, geoc.Pack(crypto.CipherRSA, crypto.AddressSHA512))
	require.NoError(t, geoc.PackSignature([]byte("sig")))

	// Flip one payload byte: the recomputed address digest no longer
	// matches the one carried in the record.
	packed := geoc.Packed()
	packed[10] ^= 0x01
	_, err := UnpackGEOC(packed)
	assert.ErrorIs(t, err, ErrParse)
}

func TestUnpackWrongRecordKind(t *testing.T) {
	gobs := &GOBS{Binder: testGuid(t, "binder"), Target: testGuid(t, "target")}
	require.NoError(t, gobs.Pack(crypto.CipherRSA, crypto.AddressSHA512))
	require.NoError(t, gobs.PackSignature([]byte("sig")))

	_, err := UnpackGEOC(gobs.Packed())
	assert.ErrorIs(t, err, ErrParse)
}

func TestPackDeterministic(t *testing.T) {
	a := &GOBS{Binder: testGuid(t, "binder"), Target: testGuid(t, "target")}
	b := &GOBS{Binder: testGuid(t, "binder"), Target: testGuid(t, "target")}
	require.NoError(t, a.Pack(crypto.CipherRSA, crypto.AddressSHA512))
	require.NoError(t, b.Pack(crypto.CipherRSA, crypto.AddressSHA512))

	assert.Equal(t, a.Packed(), b.Packed(), "identical fields must pack to identical bytes")
	assert.True(t, a.Guid().Equal(b.Guid()))
}
