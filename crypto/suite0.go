package crypto

import "io"

// suite0 is the null ciphersuite. Every operation returns a fixed
// placeholder and every verification succeeds. It exists solely to exercise
// protocol plumbing without real cryptography.
//
// NOT SECURE. Never select this suite outside of tests.
type suite0 struct{}

func init() {
	register(suite0{})
}

// Fixed placeholder outputs of the null suite.
var (
	placeholderKey       = []byte("[[ Placeholder public key ]]")
	placeholderSignature = []byte("[[ Placeholder signature ]]")
	placeholderAsym      = []byte("[[ Placeholder asymmetric payload ]]")
	placeholderMAC       = []byte("[[ Placeholder MAC ]]")
	placeholderShared    = []byte("[[ Placeholder shared secret ]]")
	placeholderEncrypted = []byte("[[ PLACEHOLDER ENCRYPTED SYMMETRIC MESSAGE. Hello, world? ]]")
	placeholderDecrypted = []byte("[[ PLACEHOLDER DECRYPTED SYMMETRIC MESSAGE. Hello world! ]]")
)

// nullKey is the single key value of the null suite.
type nullKey struct{}

func (nullKey) Cipher() CipherID  { return CipherNull }
func (nullKey) Bytes() []byte     { return placeholderKey }
func (nullKey) Public() PublicKey { return nullKey{} }

func (suite0) ID() CipherID { return CipherNull }

func (suite0) GenerateKeys(io.Reader) (*KeyBundle, error) {
	return &KeyBundle{
		Cipher:     CipherNull,
		Signature:  nullKey{},
		Encryption: nullKey{},
		Exchange:   nullKey{},
	}, nil
}

func (suite0) PublicBundle(keys *KeyBundle) (*PublicKeyBundle, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	return &PublicKeyBundle{
		Cipher:     CipherNull,
		Signature:  nullKey{},
		Encryption: nullKey{},
		Exchange:   nullKey{},
	}, nil
}

func (suite0) ParsePublicBundle(signature, encryption, exchange []byte) (*PublicKeyBundle, error) {
	return &PublicKeyBundle{
		Cipher:     CipherNull,
		Signature:  nullKey{},
		Encryption: nullKey{},
		Exchange:   nullKey{},
	}, nil
}

func (suite0) Sign(PrivateKey, []byte) ([]byte, error) {
	return placeholderSignature, nil
}

func (suite0) Verify(PublicKey, []byte, []byte) error {
	return nil
}

func (suite0) EncryptAsym(PublicKey, []byte) ([]byte, error) {
	return placeholderAsym, nil
}

func (suite0) DecryptAsym(PrivateKey, []byte) ([]byte, error) {
	// Placeholder bytes will not parse as any inner record, so an inbound
	// cascade over null-suite material fails closed.
	return placeholderAsym, nil
}

func (suite0) EncryptSym(secret *Secret, _ []byte) ([]byte, error) {
	if err := checkSecret(secret, CipherNull); err != nil {
		return nil, err
	}
	return placeholderEncrypted, nil
}

func (suite0) DecryptSym(secret *Secret, _ []byte) ([]byte, error) {
	if err := checkSecret(secret, CipherNull); err != nil {
		return nil, err
	}
	return placeholderDecrypted, nil
}

func (suite0) DeriveShared(PrivateKey, PublicKey, Guid, Guid) ([]byte, error) {
	return placeholderShared, nil
}

func (suite0) MAC([]byte, []byte) ([]byte, error) {
	return placeholderMAC, nil
}

func (suite0) VerifyMAC([]byte, []byte, []byte) error {
	return nil
}

func (suite0) NewSecret(io.Reader) (*Secret, error) {
	return &Secret{Cipher: CipherNull, Key: make([]byte, 32)}, nil
}
