package container

import (
	"fmt"

	"github.com/opd-ai/golix/crypto"
)

// Inner record magics. The upstream wire format carries no explicit type
// discriminant; the per-record magic is what makes the structural parse
// cascade unambiguous.
const (
	magicHandshake = "HREQ"
	magicAck       = "HACK"
	magicNak       = "HNAK"
)

// AsymKind identifies which record a GARQ payload contained.
type AsymKind uint8

const (
	KindHandshake AsymKind = iota + 1
	KindAck
	KindNak
)

func (k AsymKind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindAck:
		return "ack"
	case KindNak:
		return "nak"
	default:
		return fmt.Sprintf("asym(%d)", uint8(k))
	}
}

// AsymRecord is implemented by the records a GARQ payload may carry:
// Handshake, Ack, and Nak.
type AsymRecord interface {
	Kind() AsymKind
	AuthorGuid() crypto.Guid
	TargetGuid() crypto.Guid
	Pack() ([]byte, error)
}

// Handshake proposes a relationship: it hands the recipient the Secret for
// the target container.
type Handshake struct {
	Author crypto.Guid
	Target crypto.Guid
	Secret crypto.Secret
}

func (h *Handshake) Kind() AsymKind          { return KindHandshake }
func (h *Handshake) AuthorGuid() crypto.Guid { return h.Author }
func (h *Handshake) TargetGuid() crypto.Guid { return h.Target }

func (h *Handshake) Pack() ([]byte, error) {
	body := []byte(magicHandshake)
	body = append(body, containerVersion)
	body = appendGuid(body, h.Author)
	body = appendGuid(body, h.Target)
	body = append(body, byte(h.Secret.Cipher))
	body = appendBytes(body, h.Secret.Key)
	body = appendBytes(body, h.Secret.Nonce)
	return body, nil
}

// UnpackHandshake structurally parses a decrypted GARQ payload as a
// handshake record.
func UnpackHandshake(packed []byte) (*Handshake, error) {
	r := &reader{data: packed}
	if err := innerHeader(r, magicHandshake); err != nil {
		return nil, err
	}
	h := &Handshake{}
	var err error
	if h.Author, err = r.guid(); err != nil {
		return nil, err
	}
	if h.Target, err = r.guid(); err != nil {
		return nil, err
	}
	cipher, err := r.byte()
	if err != nil {
		return nil, err
	}
	h.Secret.Cipher = crypto.CipherID(cipher)
	if h.Secret.Key, err = r.bytes(); err != nil {
		return nil, err
	}
	if h.Secret.Nonce, err = r.bytes(); err != nil {
		return nil, err
	}
	if len(h.Secret.Nonce) == 0 {
		h.Secret.Nonce = nil
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrParse, r.remaining())
	}
	return h, nil
}

// Ack confirms a handshake with a status code.
type Ack struct {
	Author crypto.Guid
	Target crypto.Guid
	Status uint32
}

func (a *Ack) Kind() AsymKind          { return KindAck }
func (a *Ack) AuthorGuid() crypto.Guid { return a.Author }
func (a *Ack) TargetGuid() crypto.Guid { return a.Target }

func (a *Ack) Pack() ([]byte, error) {
	return packStatusRecord(magicAck, a.Author, a.Target, a.Status), nil
}

// UnpackAck structurally parses a decrypted GARQ payload as an ack record.
func UnpackAck(packed []byte) (*Ack, error) {
	author, target, status, err := unpackStatusRecord(packed, magicAck)
	if err != nil {
		return nil, err
	}
	return &Ack{Author: author, Target: target, Status: status}, nil
}

// Nak rejects a handshake with a status code.
type Nak struct {
	Author crypto.Guid
	Target crypto.Guid
	Status uint32
}

func (n *Nak) Kind() AsymKind          { return KindNak }
func (n *Nak) AuthorGuid() crypto.Guid { return n.Author }
func (n *Nak) TargetGuid() crypto.Guid { return n.Target }

func (n *Nak) Pack() ([]byte, error) {
	return packStatusRecord(magicNak, n.Author, n.Target, n.Status), nil
}

// UnpackNak structurally parses a decrypted GARQ payload as a nak record.
func UnpackNak(packed []byte) (*Nak, error) {
	author, target, status, err := unpackStatusRecord(packed, magicNak)
	if err != nil {
		return nil, err
	}
	return &Nak{Author: author, Target: target, Status: status}, nil
}

func innerHeader(r *reader, magic string) error {
	if r.remaining() < len(magic)+1 {
		return fmt.Errorf("%w: record shorter than header", ErrParse)
	}
	if string(r.data[r.off:r.off+len(magic)]) != magic {
		return fmt.Errorf("%w: not a %s record", ErrParse, magic)
	}
	r.off += len(magic)
	version, _ := r.byte()
	if version != containerVersion {
		return fmt.Errorf("%w: unsupported %s version %d", ErrParse, magic, version)
	}
	return nil
}

func packStatusRecord(magic string, author, target crypto.Guid, status uint32) []byte {
	body := []byte(magic)
	body = append(body, containerVersion)
	body = appendGuid(body, author)
	body = appendGuid(body, target)
	body = append(body,
		byte(status>>24), byte(status>>16), byte(status>>8), byte(status))
	return body
}

func unpackStatusRecord(packed []byte, magic string) (author, target crypto.Guid, status uint32, err error) {
	r := &reader{data: packed}
	if err = innerHeader(r, magic); err != nil {
		return
	}
	if author, err = r.guid(); err != nil {
		return
	}
	if target, err = r.guid(); err != nil {
		return
	}
	if status, err = r.uint32(); err != nil {
		return
	}
	if r.remaining() != 0 {
		err = fmt.Errorf("%w: %d trailing bytes", ErrParse, r.remaining())
	}
	return
}
