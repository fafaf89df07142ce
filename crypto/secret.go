package crypto

import "fmt"

// Secret holds one-time symmetric key material: a key and a nonce, tagged
// with the ciphersuite it belongs to. A given (key, nonce) pair must encrypt
// at most one plaintext; counter-mode reuse is catastrophic.
type Secret struct {
	Cipher CipherID
	Key    []byte
	Nonce  []byte
}

// Compatible reports whether the secret can be used with the given suite.
func (s *Secret) Compatible(cipher CipherID) bool {
	return s != nil && s.Cipher == cipher
}

// Wipe zeroes the secret's key material. The secret must not be used
// afterwards.
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	ZeroBytes(s.Key)
	ZeroBytes(s.Nonce)
}

// checkSecret rejects secrets from a different suite before any
// cryptographic call is made.
func checkSecret(s *Secret, cipher CipherID) error {
	if s == nil {
		return fmt.Errorf("%w: nil secret", ErrTypeMismatch)
	}
	if s.Cipher != cipher {
		return fmt.Errorf("%w: secret for cipher %d used with cipher %d", ErrTypeMismatch, s.Cipher, cipher)
	}
	return nil
}
