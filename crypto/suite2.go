package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

// boxNonceSize is the XSalsa20-Poly1305 nonce length.
const boxNonceSize = 24

// suite2 is the modern ciphersuite: Ed25519 signatures over the container
// address digest, NaCl anonymous sealed boxes for short asymmetric records,
// X25519 exchange stretched with HKDF-SHA512, XSalsa20-Poly1305 secretboxes
// for bulk payloads, and keyed BLAKE2b-512 tags.
type suite2 struct{}

func init() {
	register(suite2{})
}

// edPublicKey wraps an Ed25519 public key for the signature role.
type edPublicKey struct {
	key ed25519.PublicKey
}

func (k *edPublicKey) Cipher() CipherID { return CipherNaCl }

func (k *edPublicKey) Bytes() []byte {
	out := make([]byte, ed25519.PublicKeySize)
	copy(out, k.key)
	return out
}

// edPrivateKey wraps an Ed25519 private key.
type edPrivateKey struct {
	key ed25519.PrivateKey
}

func (k *edPrivateKey) Cipher() CipherID { return CipherNaCl }

func (k *edPrivateKey) Public() PublicKey {
	return &edPublicKey{key: k.key.Public().(ed25519.PublicKey)}
}

func (suite2) ID() CipherID { return CipherNaCl }

func (suite2) GenerateKeys(rand io.Reader) (*KeyBundle, error) {
	if rand == nil {
		rand = defaultEntropy
	}

	logrus.WithFields(opFields(CipherNaCl, "generate_keys")).Debug("Generating NaCl identity keys")

	_, signature, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signature key: %w", err)
	}
	encryption, err := generateXKey(rand, CipherNaCl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	exchange, err := generateXKey(rand, CipherNaCl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate exchange key: %w", err)
	}

	return &KeyBundle{
		Cipher:     CipherNaCl,
		Signature:  &edPrivateKey{key: signature},
		Encryption: encryption,
		Exchange:   exchange,
	}, nil
}

func (suite2) PublicBundle(keys *KeyBundle) (*PublicKeyBundle, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	if keys.Cipher != CipherNaCl {
		return nil, fmt.Errorf("%w: key bundle for cipher %d used with cipher %d",
			ErrTypeMismatch, keys.Cipher, CipherNaCl)
	}
	return &PublicKeyBundle{
		Cipher:     CipherNaCl,
		Signature:  keys.Signature.Public(),
		Encryption: keys.Encryption.Public(),
		Exchange:   keys.Exchange.Public(),
	}, nil
}

func (suite2) ParsePublicBundle(signature, encryption, exchange []byte) (*PublicKeyBundle, error) {
	if len(signature) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: Ed25519 public key must be %d bytes, got %d",
			ErrConfiguration, ed25519.PublicKeySize, len(signature))
	}
	sig := &edPublicKey{key: ed25519.PublicKey(append([]byte(nil), signature...))}
	enc, err := parseXPublicKey(encryption, CipherNaCl)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	exch, err := parseXPublicKey(exchange, CipherNaCl)
	if err != nil {
		return nil, fmt.Errorf("exchange key: %w", err)
	}
	return &PublicKeyBundle{
		Cipher:     CipherNaCl,
		Signature:  sig,
		Encryption: enc,
		Exchange:   exch,
	}, nil
}

func (suite2) Sign(key PrivateKey, digest []byte) ([]byte, error) {
	priv, ok := key.(*edPrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: signing key is not an Ed25519 private key", ErrTypeMismatch)
	}
	if len(digest) != sha512.Size {
		return nil, fmt.Errorf("%w: signing expects a %d-byte digest, got %d",
			ErrTypeMismatch, sha512.Size, len(digest))
	}
	return ed25519.Sign(priv.key, digest), nil
}

func (suite2) Verify(key PublicKey, signature, digest []byte) error {
	pub, ok := key.(*edPublicKey)
	if !ok {
		return fmt.Errorf("%w: verification key is not an Ed25519 public key", ErrTypeMismatch)
	}
	if !ed25519.Verify(pub.key, digest, signature) {
		logrus.WithFields(opFields(CipherNaCl, "verify")).
			WithFields(previewFields("digest", digest)).
			Warn("Signature verification failed")
		return fmt.Errorf("%w: signature does not verify", ErrSecurity)
	}
	return nil
}

// EncryptAsym seals a short record to the recipient with an anonymous NaCl
// box: an ephemeral key is generated per message, so the sender needs no
// long-term encryption key.
func (suite2) EncryptAsym(key PublicKey, plaintext []byte) ([]byte, error) {
	pub, ok := key.(*xPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: encryption key is not a Curve25519 public key", ErrTypeMismatch)
	}
	ciphertext, err := box.SealAnonymous(nil, plaintext, &pub.point, defaultEntropy)
	if err != nil {
		return nil, fmt.Errorf("failed to seal payload: %w", err)
	}
	return ciphertext, nil
}

func (suite2) DecryptAsym(key PrivateKey, ciphertext []byte) ([]byte, error) {
	priv, ok := key.(*xPrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: decryption key is not a Curve25519 private key", ErrTypeMismatch)
	}
	plaintext, ok := box.OpenAnonymous(nil, ciphertext, &priv.point, &priv.scalar)
	if !ok {
		return nil, fmt.Errorf("%w: asymmetric payload does not open", ErrSecurity)
	}
	return plaintext, nil
}

func (suite2) EncryptSym(secret *Secret, plaintext []byte) ([]byte, error) {
	key, nonce, err := suite2SecretParts(secret)
	if err != nil {
		return nil, err
	}
	return secretbox.Seal(nil, plaintext, nonce, key), nil
}

// DecryptSym opens a secretbox. Unlike suite 1's raw keystream, this path is
// authenticated, so a tampered payload fails here rather than decrypting to
// garbage.
func (suite2) DecryptSym(secret *Secret, ciphertext []byte) ([]byte, error) {
	key, nonce, err := suite2SecretParts(secret)
	if err != nil {
		return nil, err
	}
	plaintext, ok := secretbox.Open(nil, ciphertext, nonce, key)
	if !ok {
		return nil, fmt.Errorf("%w: symmetric payload does not open", ErrSecurity)
	}
	return plaintext, nil
}

func suite2SecretParts(secret *Secret) (*[32]byte, *[boxNonceSize]byte, error) {
	if err := checkSecret(secret, CipherNaCl); err != nil {
		return nil, nil, err
	}
	if len(secret.Key) != symKeySize {
		return nil, nil, fmt.Errorf("%w: symmetric key must be %d bytes, got %d",
			ErrTypeMismatch, symKeySize, len(secret.Key))
	}
	if len(secret.Nonce) != boxNonceSize {
		return nil, nil, fmt.Errorf("%w: secretbox nonce must be %d bytes, got %d",
			ErrTypeMismatch, boxNonceSize, len(secret.Nonce))
	}
	var key [32]byte
	var nonce [boxNonceSize]byte
	copy(key[:], secret.Key)
	copy(nonce[:], secret.Nonce)
	return &key, &nonce, nil
}

func (suite2) DeriveShared(self PrivateKey, partner PublicKey, selfGuid, partnerGuid Guid) ([]byte, error) {
	priv, ok := self.(*xPrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: own exchange key is not a Curve25519 private key", ErrTypeMismatch)
	}
	pub, ok := partner.(*xPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: partner exchange key is not a Curve25519 public key", ErrTypeMismatch)
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

func (suite2) MAC(key, data []byte) ([]byte, error) {
	mac, err := blake2b.New512(key)
	if err != nil {
		return nil, fmt.Errorf("%w: MAC key unusable: %v", ErrTypeMismatch, err)
	}
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (s suite2) VerifyMAC(key, tag, data []byte) error {
	expected, err := s.MAC(key, data)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(tag, expected) != 1 {
		return fmt.Errorf("%w: MAC does not verify", ErrSecurity)
	}
	return nil
}

func (suite2) NewSecret(rand io.Reader) (*Secret, error) {
	key, err := randomBytes(rand, symKeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret key: %w", err)
	}
	nonce, err := randomBytes(rand, boxNonceSize)
	if err != nil {
		ZeroBytes(key)
		return nil, fmt.Errorf("failed to generate secret nonce: %w", err)
	}
	return &Secret{Cipher: CipherNaCl, Key: key, Nonce: nonce}, nil
}
