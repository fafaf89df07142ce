package golix

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/golix/container"
	"github.com/opd-ai/golix/crypto"
)

// ErrConsumed indicates a second ReceiveRequest call on the same envelope.
// This is a usage error, not a security failure: the envelope's cached
// plaintext is discarded after its single authenticated consumption.
var ErrConsumed = errors.New("envelope already consumed")

// Envelope is an unpacked GARQ awaiting authentication. UnpackRequest caches
// the structurally parsed payload; ReceiveRequest verifies the MAC, returns
// the payload once, and discards the cache. The lifecycle is one-way:
// unverified, then authenticated, then consumed.
type Envelope struct {
	garq     *container.GARQ
	record   container.AsymRecord
	consumed bool
}

// Guid returns the envelope's address.
func (e *Envelope) Guid() crypto.Guid { return e.garq.Guid() }

// Recipient returns the guid the envelope is addressed to.
func (e *Envelope) Recipient() crypto.Guid { return e.garq.Recipient }

// MakeRequest builds a handshake carrying the secret for the target, packs
// it, and wraps it in a GARQ envelope addressed to the recipient.
func (fp *FirstPersonIdentity) MakeRequest(secret *crypto.Secret, target crypto.Guid, recipient *ThirdPersonIdentity) (crypto.Guid, []byte, error) {
	if err := fp.checkThirdParty(recipient); err != nil {
		return crypto.Guid{}, nil, err
	}
	if err := fp.checkSecret(secret); err != nil {
		return crypto.Guid{}, nil, err
	}
	handshake := &container.Handshake{
		Author: fp.AuthorGuid(),
		Target: target,
		Secret: *secret,
	}
	return fp.makeAsym(recipient, handshake)
}

// MakeAck builds an ack for the target handshake, wrapped in a GARQ envelope
// addressed to the recipient.
func (fp *FirstPersonIdentity) MakeAck(target crypto.Guid, recipient *ThirdPersonIdentity, status uint32) (crypto.Guid, []byte, error) {
	if err := fp.checkThirdParty(recipient); err != nil {
		return crypto.Guid{}, nil, err
	}
	ack := &container.Ack{Author: fp.AuthorGuid(), Target: target, Status: status}
	return fp.makeAsym(recipient, ack)
}

// MakeNak builds a nak for the target handshake, wrapped in a GARQ envelope
// addressed to the recipient.
func (fp *FirstPersonIdentity) MakeNak(target crypto.Guid, recipient *ThirdPersonIdentity, status uint32) (crypto.Guid, []byte, error) {
	if err := fp.checkThirdParty(recipient); err != nil {
		return crypto.Guid{}, nil, err
	}
	nak := &container.Nak{Author: fp.AuthorGuid(), Target: target, Status: status}
	return fp.makeAsym(recipient, nak)
}

// makeAsym packs an inner record, encrypts it to the recipient, and wraps it
// in a MACed GARQ envelope. Asymmetric requests are authenticated by MAC
// rather than signature: only the recipient, holder of the shared secret,
// needs to verify, which binds authentication to the relationship instead of
// a broadcastable credential.
func (fp *FirstPersonIdentity) makeAsym(recipient *ThirdPersonIdentity, record container.AsymRecord) (crypto.Guid, []byte, error) {
	plaintext, err := record.Pack()
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	payload, err := fp.suite.EncryptAsym(recipient.keys.Encryption, plaintext)
	if err != nil {
		return crypto.Guid{}, nil, err
	}

	garq := &container.GARQ{Recipient: recipient.AuthorGuid(), Payload: payload}
	if err := garq.Pack(fp.suite.ID(), fp.addressAlgo); err != nil {
		return crypto.Guid{}, nil, err
	}

	key, err := fp.suite.DeriveShared(fp.keys.Exchange, recipient.keys.Exchange,
		fp.AuthorGuid(), recipient.AuthorGuid())
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	tag, err := fp.suite.MAC(key, garq.Guid().Digest)
	crypto.ZeroBytes(key)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	if err := garq.PackSignature(tag); err != nil {
		return crypto.Guid{}, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"package":   "golix",
		"kind":      record.Kind().String(),
		"recipient": recipient.AuthorGuid().String()[:18],
	}).Debug("Packed asymmetric request envelope")

	return garq.Guid(), garq.Packed(), nil
}

// asymParsers is the fixed-precedence structural parse cascade for decrypted
// GARQ payloads: handshake, then ack, then nak.
var asymParsers = []func([]byte) (container.AsymRecord, error){
	func(b []byte) (container.AsymRecord, error) { return container.UnpackHandshake(b) },
	func(b []byte) (container.AsymRecord, error) { return container.UnpackAck(b) },
	func(b []byte) (container.AsymRecord, error) { return container.UnpackNak(b) },
}

// UnpackRequest unpacks a GARQ envelope, decrypts its payload with the
// identity's private encryption key, and runs the parse cascade. Only a
// parse failure advances the cascade; any other error propagates
// immediately. A payload matching no candidate fails closed with a security
// failure, since an unparseable payload cannot be distinguished from an
// attack. Returns the claimed author guid and the envelope holding the
// cached plaintext.
func (fp *FirstPersonIdentity) UnpackRequest(packed []byte) (crypto.Guid, *Envelope, error) {
	garq, err := container.UnpackGARQ(packed)
	if err != nil {
		return crypto.Guid{}, nil, err
	}
	plaintext, err := fp.suite.DecryptAsym(fp.keys.Encryption, garq.Payload)
	if err != nil {
		return crypto.Guid{}, nil, err
	}

	var record container.AsymRecord
	for _, parse := range asymParsers {
		parsed, parseErr := parse(plaintext)
		if parseErr == nil {
			record = parsed
			break
		}
		if !errors.Is(parseErr, container.ErrParse) {
			return crypto.Guid{}, nil, parseErr
		}
	}
	if record == nil {
		logrus.WithFields(logrus.Fields{
			"package":  "golix",
			"envelope": garq.Guid().String()[:18],
		}).Warn("Inbound asymmetric payload matched no record type")
		return crypto.Guid{}, nil, fmt.Errorf("%w: could not securely unpack request", crypto.ErrSecurity)
	}

	envelope := &Envelope{garq: garq, record: record}
	return record.AuthorGuid(), envelope, nil
}

// ReceiveRequest authenticates an unpacked envelope and consumes it: the
// shared secret with the sender keys a MAC check over the envelope address,
// and on success the cached payload is returned exactly once.
func (fp *FirstPersonIdentity) ReceiveRequest(sender *ThirdPersonIdentity, envelope *Envelope) (container.AsymRecord, error) {
	if err := fp.checkThirdParty(sender); err != nil {
		return nil, err
	}
	if envelope == nil || envelope.garq == nil {
		return nil, fmt.Errorf("%w: request must be an envelope returned from UnpackRequest",
			crypto.ErrTypeMismatch)
	}
	if envelope.consumed || envelope.record == nil {
		return nil, ErrConsumed
	}

	key, err := fp.suite.DeriveShared(fp.keys.Exchange, sender.keys.Exchange,
		fp.AuthorGuid(), sender.AuthorGuid())
	if err != nil {
		return nil, err
	}
	err = fp.suite.VerifyMAC(key, envelope.garq.Signature(), envelope.Guid().Digest)
	crypto.ZeroBytes(key)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"package":  "golix",
			"envelope": envelope.Guid().String()[:18],
			"sender":   sender.AuthorGuid().String()[:18],
		}).Warn("Rejected request envelope with bad MAC")
		return nil, err
	}

	record := envelope.record
	envelope.record = nil
	envelope.consumed = true
	return record, nil
}
