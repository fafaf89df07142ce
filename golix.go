// Package golix implements the identity layer of the Golix protocol.
//
// Golix is a decentralized, ciphersuite-agnostic object protocol:
// self-contained, content-addressed containers are created, signed or
// encrypted, exchanged, and verified without a central authority. This
// package provides first-person identities (which own private key material
// and perform all protocol operations) and third-person identities (the
// public-only view of a remote party), layered over the pluggable
// ciphersuites of the crypto subpackage and the container records of the
// container subpackage.
//
// Example:
//
//	alice, err := golix.NewFirstPersonIdentity(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	secret, err := alice.NewSecret()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	guid, packed, err := alice.CreateObject(secret, []byte("hello"))
//
// A counterpart unpacks with UnpackObject, then authenticates and decrypts
// with ReceiveObject. No plaintext is ever returned before the container's
// signature verifies.
package golix

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/golix/container"
	"github.com/opd-ai/golix/crypto"
)

// Options configures a new first-person identity. Build it with NewOptions:
// the zero values of Cipher and AddressAlgo select the null (testing)
// algorithms, not the production defaults.
type Options struct {
	// Cipher selects the ciphersuite.
	Cipher crypto.CipherID

	// AddressAlgo selects the address hash.
	AddressAlgo crypto.AddressAlgo

	// Rand supplies randomness for key and secret generation. Defaults to
	// the crypto package's entropy source. Must be cryptographically
	// secure.
	Rand io.Reader
}

// NewOptions returns Options populated with the default cipher and address
// algorithm.
func NewOptions() *Options {
	return &Options{
		Cipher:      crypto.DefaultCipher,
		AddressAlgo: crypto.DefaultAddressAlgo,
	}
}

// ThirdPersonIdentity is the public-only representation of an identity: its
// author guid, ciphersuite, and public key bundle. Immutable after
// construction.
type ThirdPersonIdentity struct {
	guid        crypto.Guid
	addressAlgo crypto.AddressAlgo
	keys        *crypto.PublicKeyBundle
	packed      []byte
}

// NewThirdPersonIdentity builds a third-person identity from a public key
// bundle: the keys are packed as a GIDC record and the record's address
// becomes the author guid.
func NewThirdPersonIdentity(keys *crypto.PublicKeyBundle, algo crypto.AddressAlgo) (*ThirdPersonIdentity, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}

	gidc := &container.GIDC{
		SignatureKey:  keys.Signature.Bytes(),
		EncryptionKey: keys.Encryption.Bytes(),
		ExchangeKey:   keys.Exchange.Bytes(),
	}
	if err := gidc.Pack(keys.Cipher, algo); err != nil {
		return nil, err
	}

	return &ThirdPersonIdentity{
		guid:        gidc.Guid(),
		addressAlgo: algo,
		keys:        keys,
		packed:      gidc.Packed(),
	}, nil
}

// ThirdPersonFromGIDC reconstructs a remote identity from its packed GIDC
// declaration.
func ThirdPersonFromGIDC(packed []byte) (*ThirdPersonIdentity, error) {
	gidc, err := container.UnpackGIDC(packed)
	if err != nil {
		return nil, err
	}
	suite, err := crypto.ForCipher(gidc.Cipher)
	if err != nil {
		return nil, err
	}
	keys, err := suite.ParsePublicBundle(gidc.SignatureKey, gidc.EncryptionKey, gidc.ExchangeKey)
	if err != nil {
		return nil, err
	}
	return &ThirdPersonIdentity{
		guid:        gidc.Guid(),
		addressAlgo: gidc.Guid().Algo,
		keys:        keys,
		packed:      packed,
	}, nil
}

// AuthorGuid returns the identity's author guid.
func (tp *ThirdPersonIdentity) AuthorGuid() crypto.Guid { return tp.guid }

// Cipher returns the identity's ciphersuite id.
func (tp *ThirdPersonIdentity) Cipher() crypto.CipherID { return tp.keys.Cipher }

// Keys returns the identity's public key bundle.
func (tp *ThirdPersonIdentity) Keys() *crypto.PublicKeyBundle { return tp.keys }

// Packed returns the identity's canonical GIDC bytes.
func (tp *ThirdPersonIdentity) Packed() []byte { return tp.packed }

// FirstPersonIdentity owns the private key material of one identity and its
// derived third-person representation. The pairing is created once at
// construction and is immutable; both always share author guid and
// ciphersuite. All operations are pure over immutable state and safe for
// concurrent use, provided callers never reuse a Secret across calls.
type FirstPersonIdentity struct {
	suite       crypto.Suite
	keys        *crypto.KeyBundle
	third       *ThirdPersonIdentity
	addressAlgo crypto.AddressAlgo
	rand        io.Reader
}

// NewFirstPersonIdentity generates a fresh identity. Pass nil options for
// the defaults (production ciphersuite, SHA-512 addressing). Key generation
// is the only latency-heavy call in the package.
func NewFirstPersonIdentity(options *Options) (*FirstPersonIdentity, error) {
	if options == nil {
		options = NewOptions()
	}
	suite, err := crypto.ForCipher(options.Cipher)
	if err != nil {
		return nil, err
	}
	algo := options.AddressAlgo

	keys, err := suite.GenerateKeys(options.Rand)
	if err != nil {
		return nil, err
	}
	public, err := suite.PublicBundle(keys)
	if err != nil {
		return nil, err
	}
	third, err := NewThirdPersonIdentity(public, algo)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"package": "golix",
		"cipher":  uint8(suite.ID()),
		"author":  third.AuthorGuid().String()[:18],
	}).Info("Created first-person identity")

	return &FirstPersonIdentity{
		suite:       suite,
		keys:        keys,
		third:       third,
		addressAlgo: algo,
		rand:        options.Rand,
	}, nil
}

// LoadFirstPersonIdentity reconstructs an identity from an existing key
// bundle and its previously derived third-person identity.
func LoadFirstPersonIdentity(keys *crypto.KeyBundle, third *ThirdPersonIdentity, options *Options) (*FirstPersonIdentity, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	if third == nil {
		return nil, fmt.Errorf("%w: loading an identity requires both keys and its third person",
			crypto.ErrConfiguration)
	}
	if third.Cipher() != keys.Cipher {
		return nil, fmt.Errorf("%w: key bundle cipher %d does not match third person cipher %d",
			crypto.ErrConfiguration, keys.Cipher, third.Cipher())
	}
	suite, err := crypto.ForCipher(keys.Cipher)
	if err != nil {
		return nil, err
	}

	var rand io.Reader
	if options != nil {
		rand = options.Rand
	}
	return &FirstPersonIdentity{
		suite:       suite,
		keys:        keys,
		third:       third,
		addressAlgo: third.addressAlgo,
		rand:        rand,
	}, nil
}

// ThirdParty returns the identity's own third-person representation.
func (fp *FirstPersonIdentity) ThirdParty() *ThirdPersonIdentity { return fp.third }

// AuthorGuid returns the identity's author guid.
func (fp *FirstPersonIdentity) AuthorGuid() crypto.Guid { return fp.third.guid }

// Cipher returns the identity's ciphersuite id.
func (fp *FirstPersonIdentity) Cipher() crypto.CipherID { return fp.suite.ID() }

// Keys returns the identity's private key bundle.
func (fp *FirstPersonIdentity) Keys() *crypto.KeyBundle { return fp.keys }

// NewSecret generates a fresh one-time Secret for this identity's suite.
func (fp *FirstPersonIdentity) NewSecret() (*crypto.Secret, error) {
	return fp.suite.NewSecret(fp.rand)
}

// checkSecret rejects a foreign-suite secret before any cryptographic call.
func (fp *FirstPersonIdentity) checkSecret(secret *crypto.Secret) error {
	if secret == nil || !secret.Compatible(fp.suite.ID()) {
		return fmt.Errorf("%w: secret incompatible with identity cipher %d",
			crypto.ErrTypeMismatch, fp.suite.ID())
	}
	return nil
}

// checkThirdParty rejects a counterparty of a different suite before any
// cryptographic call.
func (fp *FirstPersonIdentity) checkThirdParty(tp *ThirdPersonIdentity) error {
	if tp == nil {
		return fmt.Errorf("%w: nil third-person identity", crypto.ErrTypeMismatch)
	}
	if tp.Cipher() != fp.suite.ID() {
		return fmt.Errorf("%w: third person uses cipher %d, identity uses %d",
			crypto.ErrTypeMismatch, tp.Cipher(), fp.suite.ID())
	}
	return nil
}

// CreateObject encrypts plaintext under the secret, packs it as a GEOC, and
// signs the resulting address. Returns the object's guid and canonical
// bytes.
func (fp *FirstPersonIdentity) CreateObject(secret *crypto.Secret, plaintext []byte) (crypto.Guid, []byte, error) {
	if err := fp.checkSecret(secret); err != nil {
		return crypto.Guid{}, nil, err
	}

	payload, err := fp.suite.EncryptSym(secret, plaintext)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	geoc := &container.GEOC{Author: fp.AuthorGuid(), Payload: payload}
	if err := geoc.Pack(fp.suite.ID(), fp.addressAlgo); err != nil {
		return crypto.Guid{}, nil, err
	}
	signature, err := fp.suite.Sign(fp.keys.Signature, geoc.Guid().Digest)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	if err := geoc.PackSignature(signature); err != nil {
		return crypto.Guid{}, nil, err
	}
	return geoc.Guid(), geoc.Packed(), nil
}

// BindStatic publishes a static binding from this identity to the target.
func (fp *FirstPersonIdentity) BindStatic(target crypto.Guid) (crypto.Guid, []byte, error) {
	gobs := &container.GOBS{Binder: fp.AuthorGuid(), Target: target}
	if err := gobs.Pack(fp.suite.ID(), fp.addressAlgo); err != nil {
		return crypto.Guid{}, nil, err
	}
	signature, err := fp.suite.Sign(fp.keys.Signature, gobs.Guid().Digest)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	if err := gobs.PackSignature(signature); err != nil {
		return crypto.Guid{}, nil, err
	}
	return gobs.Guid(), gobs.Packed(), nil
}

// BindDynamic publishes a dynamic binding frame. Pass a zero address for the
// first frame of a binding; the dynamic address is then derived from binder
// and target. History carries the guids of superseded frames, newest first.
// Returns the frame's guid, its canonical bytes, and the dynamic address.
func (fp *FirstPersonIdentity) BindDynamic(target crypto.Guid, address crypto.Guid, history []crypto.Guid) (crypto.Guid, []byte, crypto.Guid, error) {
	if address.IsZero() {
		var err error
		address, err = fp.deriveDynamicAddress(target)
		if err != nil {
			return crypto.Guid{}, nil, crypto.Guid{}, err
		}
	}

	gobd := &container.GOBD{
		Binder:         fp.AuthorGuid(),
		Target:         target,
		DynamicAddress: address,
		History:        history,
	}
	if err := gobd.Pack(fp.suite.ID(), fp.addressAlgo); err != nil {
		return crypto.Guid{}, nil, crypto.Guid{}, err
	}
	signature, err := fp.suite.Sign(fp.keys.Signature, gobd.Guid().Digest)
	if err != nil {
		return crypto.Guid{}, nil, crypto.Guid{}, err
	}
	if err := gobd.PackSignature(signature); err != nil {
		return crypto.Guid{}, nil, crypto.Guid{}, err
	}
	return gobd.Guid(), gobd.Packed(), gobd.DynamicAddress, nil
}

// deriveDynamicAddress gives the first frame of a binding a stable dynamic
// address without negotiated state.
func (fp *FirstPersonIdentity) deriveDynamicAddress(target crypto.Guid) (crypto.Guid, error) {
	seed := []byte("gobd-dynamic")
	seed = append(seed, fp.AuthorGuid().Bytes()...)
	seed = append(seed, target.Bytes()...)
	return crypto.NewGuid(fp.addressAlgo, seed)
}

// Debind publishes a revocation of the target binding or request.
func (fp *FirstPersonIdentity) Debind(target crypto.Guid) (crypto.Guid, []byte, error) {
	gdxx := &container.GDXX{Debinder: fp.AuthorGuid(), Target: target}
	if err := gdxx.Pack(fp.suite.ID(), fp.addressAlgo); err != nil {
		return crypto.Guid{}, nil, err
	}
	signature, err := fp.suite.Sign(fp.keys.Signature, gdxx.Guid().Digest)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	if err := gdxx.PackSignature(signature); err != nil {
		return crypto.Guid{}, nil, err
	}
	return gdxx.Guid(), gdxx.Packed(), nil
}

// UnpackObject structurally unpacks a GEOC without verifying anything.
// Returns the claimed author guid and a handle for ReceiveObject.
func (fp *FirstPersonIdentity) UnpackObject(packed []byte) (crypto.Guid, *container.GEOC, error) {
	geoc, err := container.UnpackGEOC(packed)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	return geoc.Author, geoc, nil
}

// ReceiveObject verifies the object's signature against the sender's public
// signature key and only then decrypts the payload. Fail-closed: no
// plaintext is returned unless the signature verifies.
func (fp *FirstPersonIdentity) ReceiveObject(sender *ThirdPersonIdentity, secret *crypto.Secret, geoc *container.GEOC) (crypto.Guid, []byte, error) {
	if err := fp.checkThirdParty(sender); err != nil {
		return crypto.Guid{}, nil, err
	}
	if geoc == nil || geoc.Packed() == nil {
		return crypto.Guid{}, nil, fmt.Errorf("%w: object must be an unpacked GEOC, as returned from UnpackObject",
			crypto.ErrTypeMismatch)
	}
	if err := fp.checkSecret(secret); err != nil {
		return crypto.Guid{}, nil, err
	}

	if err := fp.suite.Verify(sender.keys.Signature, geoc.Signature(), geoc.Guid().Digest); err != nil {
		logrus.WithFields(logrus.Fields{
			"package": "golix",
			"author":  geoc.Author.String()[:18],
		}).Warn("Rejected object with bad signature")
		return crypto.Guid{}, nil, err
	}
	plaintext, err := fp.suite.DecryptSym(secret, geoc.Payload)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	return geoc.Guid(), plaintext, nil
}
