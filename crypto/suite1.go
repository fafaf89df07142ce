package crypto

import (
	stdcrypto "crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha512"
	"fmt"
	"io"
	"math/big"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// Suite 1 parameters.
const (
	rsaBits           = 4096
	rsaModulusSize    = rsaBits / 8
	rsaPublicExponent = 65537

	symKeySize    = 32
	ctrNonceSize  = 16
	sharedKeySize = sha512.Size
)

// suite1 is the production ciphersuite: RSA-4096 PSS signatures over the
// container address digest, RSA-4096 OAEP for short asymmetric records,
// X25519 exchange stretched with HKDF-SHA512, AES-256-CTR for bulk payloads,
// and HMAC-SHA512 tags.
type suite1 struct{}

func init() {
	register(suite1{})
}

// pssOptions fixes the PSS salt length to the digest size with MGF1 over the
// same digest algorithm.
var pssOptions = &rsa.PSSOptions{
	SaltLength: sha512.Size,
	Hash:       stdcrypto.SHA512,
}

// rsaPublicKey wraps an RSA public key for the signature or encryption role.
// The wire encoding is the 512-byte big-endian modulus; the exponent is
// fixed at 65537.
type rsaPublicKey struct {
	key *rsa.PublicKey
}

func (k *rsaPublicKey) Cipher() CipherID { return CipherRSA }

func (k *rsaPublicKey) Bytes() []byte {
	return k.key.N.FillBytes(make([]byte, rsaModulusSize))
}

// rsaPrivateKey wraps an RSA private key.
type rsaPrivateKey struct {
	key *rsa.PrivateKey
}

func (k *rsaPrivateKey) Cipher() CipherID { return CipherRSA }

func (k *rsaPrivateKey) Public() PublicKey {
	return &rsaPublicKey{key: &k.key.PublicKey}
}

func (suite1) ID() CipherID { return CipherRSA }

// GenerateKeys produces two fresh RSA-4096 keys (signature, encryption) and
// an X25519 exchange key. This is the only latency-heavy operation in the
// suite; it holds no shared state and may run on a worker pool.
func (suite1) GenerateKeys(rand io.Reader) (*KeyBundle, error) {
	if rand == nil {
		rand = defaultEntropy
	}

	logrus.WithFields(opFields(CipherRSA, "generate_keys")).Info("Generating RSA-4096 identity keys")

	signature, err := rsa.GenerateKey(rand, rsaBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signature key: %w", err)
	}
	encryption, err := rsa.GenerateKey(rand, rsaBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	exchange, err := generateXKey(rand, CipherRSA)
	if err != nil {
		return nil, fmt.Errorf("failed to generate exchange key: %w", err)
	}

	logrus.WithFields(opFields(CipherRSA, "generate_keys")).Debug("Key bundle generation complete")

	return &KeyBundle{
		Cipher:     CipherRSA,
		Signature:  &rsaPrivateKey{key: signature},
		Encryption: &rsaPrivateKey{key: encryption},
		Exchange:   exchange,
	}, nil
}

func (suite1) PublicBundle(keys *KeyBundle) (*PublicKeyBundle, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	if keys.Cipher != CipherRSA {
		return nil, fmt.Errorf("%w: key bundle for cipher %d used with cipher %d",
			ErrTypeMismatch, keys.Cipher, CipherRSA)
	}
	return &PublicKeyBundle{
		Cipher:     CipherRSA,
		Signature:  keys.Signature.Public(),
		Encryption: keys.Encryption.Public(),
		Exchange:   keys.Exchange.Public(),
	}, nil
}

func (suite1) ParsePublicBundle(signature, encryption, exchange []byte) (*PublicKeyBundle, error) {
	sig, err := parseRSAPublicKey(signature)
	if err != nil {
		return nil, fmt.Errorf("signature key: %w", err)
	}
	enc, err := parseRSAPublicKey(encryption)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	exch, err := parseXPublicKey(exchange, CipherRSA)
	if err != nil {
		return nil, fmt.Errorf("exchange key: %w", err)
	}
	return &PublicKeyBundle{
		Cipher:     CipherRSA,
		Signature:  sig,
		Encryption: enc,
		Exchange:   exch,
	}, nil
}

func parseRSAPublicKey(raw []byte) (*rsaPublicKey, error) {
	if len(raw) != rsaModulusSize {
		return nil, fmt.Errorf("%w: RSA modulus must be %d bytes, got %d",
			ErrConfiguration, rsaModulusSize, len(raw))
	}
	n := new(big.Int).SetBytes(raw)
	if n.BitLen() < rsaBits-8 {
		return nil, fmt.Errorf("%w: RSA modulus too small (%d bits)", ErrConfiguration, n.BitLen())
	}
	return &rsaPublicKey{key: &rsa.PublicKey{N: n, E: rsaPublicExponent}}, nil
}

// Sign signs a precomputed 64-byte address digest with PSS. The digest is
// passed straight to the PSS entry point; no rehashing occurs.
func (suite1) Sign(key PrivateKey, digest []byte) ([]byte, error) {
	priv, ok := key.(*rsaPrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: signing key is not an RSA private key", ErrTypeMismatch)
	}
	if len(digest) != sha512.Size {
		return nil, fmt.Errorf("%w: signing expects a %d-byte digest, got %d",
			ErrTypeMismatch, sha512.Size, len(digest))
	}
	signature, err := rsa.SignPSS(defaultEntropy, priv.key, stdcrypto.SHA512, digest, pssOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	return signature, nil
}

func (suite1) Verify(key PublicKey, signature, digest []byte) error {
	pub, ok := key.(*rsaPublicKey)
	if !ok {
		return fmt.Errorf("%w: verification key is not an RSA public key", ErrTypeMismatch)
	}
	if len(digest) != sha512.Size {
		return fmt.Errorf("%w: verification expects a %d-byte digest, got %d",
			ErrTypeMismatch, sha512.Size, len(digest))
	}
	if err := rsa.VerifyPSS(pub.key, stdcrypto.SHA512, digest, signature, pssOptions); err != nil {
		logrus.WithFields(opFields(CipherRSA, "verify")).
			WithFields(previewFields("digest", digest)).
			Warn("Signature verification failed")
		return fmt.Errorf("%w: signature does not verify", ErrSecurity)
	}
	return nil
}

// EncryptAsym encrypts with OAEP. Plaintext length is bounded by the modulus
// size minus padding overhead, so this path only carries short structured
// records, never bulk payloads.
func (suite1) EncryptAsym(key PublicKey, plaintext []byte) ([]byte, error) {
	pub, ok := key.(*rsaPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: encryption key is not an RSA public key", ErrTypeMismatch)
	}
	ciphertext, err := rsa.EncryptOAEP(sha512.New(), defaultEntropy, pub.key, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt payload: %w", err)
	}
	return ciphertext, nil
}

func (suite1) DecryptAsym(key PrivateKey, ciphertext []byte) ([]byte, error) {
	priv, ok := key.(*rsaPrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: decryption key is not an RSA private key", ErrTypeMismatch)
	}
	plaintext, err := rsa.DecryptOAEP(sha512.New(), nil, priv.key, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: asymmetric payload does not decrypt", ErrSecurity)
	}
	return plaintext, nil
}

// EncryptSym runs AES-256-CTR with a 128-bit counter initialized from the
// Secret's nonce interpreted as a big-endian integer. Callers must never
// reuse a (key, nonce) pair for two plaintexts.
func (suite1) EncryptSym(secret *Secret, plaintext []byte) ([]byte, error) {
	return suite1CTR(secret, plaintext)
}

// DecryptSym is the inverse keystream application of EncryptSym.
func (suite1) DecryptSym(secret *Secret, ciphertext []byte) ([]byte, error) {
	return suite1CTR(secret, ciphertext)
}

func suite1CTR(secret *Secret, data []byte) ([]byte, error) {
	if err := checkSecret(secret, CipherRSA); err != nil {
		return nil, err
	}
	if len(secret.Key) != symKeySize {
		return nil, fmt.Errorf("%w: symmetric key must be %d bytes, got %d",
			ErrTypeMismatch, symKeySize, len(secret.Key))
	}
	if len(secret.Nonce) != ctrNonceSize {
		return nil, fmt.Errorf("%w: counter nonce must be %d bytes, got %d",
			ErrTypeMismatch, ctrNonceSize, len(secret.Nonce))
	}

	block, err := aes.NewCipher(secret.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AES: %w", err)
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, secret.Nonce).XORKeyStream(out, data)
	return out, nil
}

// DeriveShared runs X25519 over both identities' exchange keys, then
// stretches the raw shared value with HKDF-SHA512. The salt is the byte-wise
// XOR of both address digests, so either side derives the identical key
// without a negotiated nonce.
func (suite1) DeriveShared(self PrivateKey, partner PublicKey, selfGuid, partnerGuid Guid) ([]byte, error) {
	priv, ok := self.(*xPrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: own exchange key is not an X25519 private key", ErrTypeMismatch)
	}
	pub, ok := partner.(*xPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: partner exchange key is not an X25519 public key", ErrTypeMismatch)
	}
	salt, err := xorSalt(selfGuid, partnerGuid)
	if err != nil {
		return nil, err
	}

	shared, err := curve25519.X25519(priv.scalar[:], pub.point[:])
	if err != nil {
		return nil, fmt.Errorf("failed to compute X25519 shared value: %w", err)
	}

	key := make([]byte, sharedKeySize)
	if _, err := io.ReadFull(hkdf.New(sha512.New, shared, salt, nil), key); err != nil {
		ZeroBytes(shared)
		return nil, fmt.Errorf("failed to stretch shared value: %w", err)
	}
	ZeroBytes(shared)
	return key, nil
}

func (suite1) MAC(key, data []byte) ([]byte, error) {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// VerifyMAC recomputes the tag and compares in constant time.
func (suite1) VerifyMAC(key, tag, data []byte) error {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	if !hmac.Equal(tag, mac.Sum(nil)) {
		logrus.WithFields(opFields(CipherRSA, "verify_mac")).
			WithFields(previewFields("data", data)).
			Warn("MAC verification failed")
		return fmt.Errorf("%w: MAC does not verify", ErrSecurity)
	}
	return nil
}

func (suite1) NewSecret(rand io.Reader) (*Secret, error) {
	key, err := randomBytes(rand, symKeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret key: %w", err)
	}
	nonce, err := randomBytes(rand, ctrNonceSize)
	if err != nil {
		ZeroBytes(key)
		return nil, fmt.Errorf("failed to generate secret nonce: %w", err)
	}
	return &Secret{Cipher: CipherRSA, Key: key, Nonce: nonce}, nil
}
