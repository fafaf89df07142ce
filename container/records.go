package container

import (
	"fmt"

	"github.com/opd-ai/golix/crypto"
)

// Record magics.
const (
	magicGIDC = "GIDC"
	magicGEOC = "GEOC"
	magicGOBS = "GOBS"
	magicGOBD = "GOBD"
	magicGDXX = "GDXX"
	magicGARQ = "GARQ"
)

// packedState is embedded by every container record once packed: the derived
// address, the canonical body bytes, and the detached signature slot.
type packedState struct {
	guid      crypto.Guid
	body      []byte
	signature []byte
}

// Guid returns the container's address. Zero until Pack is called.
func (p *packedState) Guid() crypto.Guid { return p.guid }

// Signature returns the attached detached signature or MAC, nil if none.
func (p *packedState) Signature() []byte { return p.signature }

// Packed returns the full canonical bytes including address and signature
// slot. Nil until Pack is called.
func (p *packedState) Packed() []byte {
	if p.body == nil {
		return nil
	}
	return assemble(p.body, p.guid, p.signature)
}

// PackSignature attaches a detached signature or MAC computed over the
// container's address digest. The record must already be packed.
func (p *packedState) PackSignature(signature []byte) error {
	if p.body == nil {
		return fmt.Errorf("cannot attach signature before packing")
	}
	p.signature = append([]byte(nil), signature...)
	return nil
}

func (p *packedState) finish(body []byte, algo crypto.AddressAlgo) error {
	guid, err := crypto.NewGuid(algo, body)
	if err != nil {
		return err
	}
	p.body = body
	p.guid = guid
	return nil
}

// GIDC declares an identity: the public key of each role, packed in wire
// form. Its address is the identity's author guid. GIDC records carry no
// signature; they are self-addressing.
type GIDC struct {
	Cipher        crypto.CipherID
	SignatureKey  []byte
	EncryptionKey []byte
	ExchangeKey   []byte
	packedState
}

func (g *GIDC) Pack(cipher crypto.CipherID, algo crypto.AddressAlgo) error {
	body := packHeader(magicGIDC, cipher)
	body = appendBytes(body, g.SignatureKey)
	body = appendBytes(body, g.EncryptionKey)
	body = appendBytes(body, g.ExchangeKey)
	g.Cipher = cipher
	return g.finish(body, algo)
}

func UnpackGIDC(packed []byte) (*GIDC, error) {
	r := &reader{data: packed}
	cipher, err := r.header(magicGIDC)
	if err != nil {
		return nil, err
	}
	g := &GIDC{Cipher: cipher}
	if g.SignatureKey, err = r.bytes(); err != nil {
		return nil, err
	}
	if g.EncryptionKey, err = r.bytes(); err != nil {
		return nil, err
	}
	if g.ExchangeKey, err = r.bytes(); err != nil {
		return nil, err
	}
	g.body = packed[:r.off]
	if g.guid, err = r.address(); err != nil {
		return nil, err
	}
	if _, err = r.signature(); err != nil {
		return nil, err
	}
	return g, nil
}

// GEOC is an encrypted object container: an author guid and an opaque
// symmetric-encrypted payload, signed over its address.
type GEOC struct {
	Cipher  crypto.CipherID
	Author  crypto.Guid
	Payload []byte
	packedState
}

func (g *GEOC) Pack(cipher crypto.CipherID, algo crypto.AddressAlgo) error {
	body := packHeader(magicGEOC, cipher)
	body = appendGuid(body, g.Author)
	body = appendBytes(body, g.Payload)
	g.Cipher = cipher
	return g.finish(body, algo)
}

func UnpackGEOC(packed []byte) (*GEOC, error) {
	r := &reader{data: packed}
	cipher, err := r.header(magicGEOC)
	if err != nil {
		return nil, err
	}
	g := &GEOC{Cipher: cipher}
	if g.Author, err = r.guid(); err != nil {
		return nil, err
	}
	if g.Payload, err = r.bytes(); err != nil {
		return nil, err
	}
	g.body = packed[:r.off]
	if g.guid, err = r.address(); err != nil {
		return nil, err
	}
	if g.signature, err = r.signature(); err != nil {
		return nil, err
	}
	return g, nil
}

// GOBS statically binds a target container to its binder: as long as the
// binding stands, the target must be retained.
type GOBS struct {
	Cipher crypto.CipherID
	Binder crypto.Guid
	Target crypto.Guid
	packedState
}

func (g *GOBS) Pack(cipher crypto.CipherID, algo crypto.AddressAlgo) error {
	body := packHeader(magicGOBS, cipher)
	body = appendGuid(body, g.Binder)
	body = appendGuid(body, g.Target)
	g.Cipher = cipher
	return g.finish(body, algo)
}

func UnpackGOBS(packed []byte) (*GOBS, error) {
	r := &reader{data: packed}
	cipher, err := r.header(magicGOBS)
	if err != nil {
		return nil, err
	}
	g := &GOBS{Cipher: cipher}
	if g.Binder, err = r.guid(); err != nil {
		return nil, err
	}
	if g.Target, err = r.guid(); err != nil {
		return nil, err
	}
	g.body = packed[:r.off]
	if g.guid, err = r.address(); err != nil {
		return nil, err
	}
	if g.signature, err = r.signature(); err != nil {
		return nil, err
	}
	return g, nil
}

// GOBD dynamically binds a reassignable dynamic address to a target, with a
// history chain of superseded frame guids.
type GOBD struct {
	Cipher         crypto.CipherID
	Binder         crypto.Guid
	Target         crypto.Guid
	DynamicAddress crypto.Guid
	History        []crypto.Guid
	packedState
}

func (g *GOBD) Pack(cipher crypto.CipherID, algo crypto.AddressAlgo) error {
	body := packHeader(magicGOBD, cipher)
	body = appendGuid(body, g.Binder)
	body = appendGuid(body, g.Target)
	body = appendGuid(body, g.DynamicAddress)
	body = appendBytes(body, packGuidList(g.History))
	g.Cipher = cipher
	return g.finish(body, algo)
}

func UnpackGOBD(packed []byte) (*GOBD, error) {
	r := &reader{data: packed}
	cipher, err := r.header(magicGOBD)
	if err != nil {
		return nil, err
	}
	g := &GOBD{Cipher: cipher}
	if g.Binder, err = r.guid(); err != nil {
		return nil, err
	}
	if g.Target, err = r.guid(); err != nil {
		return nil, err
	}
	if g.DynamicAddress, err = r.guid(); err != nil {
		return nil, err
	}
	rawHistory, err := r.bytes()
	if err != nil {
		return nil, err
	}
	if g.History, err = unpackGuidList(rawHistory); err != nil {
		return nil, err
	}
	g.body = packed[:r.off]
	if g.guid, err = r.address(); err != nil {
		return nil, err
	}
	if g.signature, err = r.signature(); err != nil {
		return nil, err
	}
	return g, nil
}

func packGuidList(guids []crypto.Guid) []byte {
	var buf []byte
	for _, g := range guids {
		buf = appendGuid(buf, g)
	}
	return buf
}

func unpackGuidList(raw []byte) ([]crypto.Guid, error) {
	r := &reader{data: raw}
	var out []crypto.Guid
	for r.remaining() > 0 {
		g, err := r.guid()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// GDXX debinds (revokes) a previously published binding or request.
type GDXX struct {
	Cipher   crypto.CipherID
	Debinder crypto.Guid
	Target   crypto.Guid
	packedState
}

func (g *GDXX) Pack(cipher crypto.CipherID, algo crypto.AddressAlgo) error {
	body := packHeader(magicGDXX, cipher)
	body = appendGuid(body, g.Debinder)
	body = appendGuid(body, g.Target)
	g.Cipher = cipher
	return g.finish(body, algo)
}

func UnpackGDXX(packed []byte) (*GDXX, error) {
	r := &reader{data: packed}
	cipher, err := r.header(magicGDXX)
	if err != nil {
		return nil, err
	}
	g := &GDXX{Cipher: cipher}
	if g.Debinder, err = r.guid(); err != nil {
		return nil, err
	}
	if g.Target, err = r.guid(); err != nil {
		return nil, err
	}
	g.body = packed[:r.off]
	if g.guid, err = r.address(); err != nil {
		return nil, err
	}
	if g.signature, err = r.signature(); err != nil {
		return nil, err
	}
	return g, nil
}

// GARQ is an asymmetric request envelope: an opaque payload encrypted to the
// recipient, authenticated by a MAC (not a signature) over the envelope
// address, keyed with the shared secret of author and recipient.
type GARQ struct {
	Cipher    crypto.CipherID
	Recipient crypto.Guid
	Payload   []byte
	packedState
}

func (g *GARQ) Pack(cipher crypto.CipherID, algo crypto.AddressAlgo) error {
	body := packHeader(magicGARQ, cipher)
	body = appendGuid(body, g.Recipient)
	body = appendBytes(body, g.Payload)
	g.Cipher = cipher
	return g.finish(body, algo)
}

func UnpackGARQ(packed []byte) (*GARQ, error) {
	r := &reader{data: packed}
	cipher, err := r.header(magicGARQ)
	if err != nil {
		return nil, err
	}
	g := &GARQ{Cipher: cipher}
	if g.Recipient, err = r.guid(); err != nil {
		return nil, err
	}
	if g.Payload, err = r.bytes(); err != nil {
		return nil, err
	}
	g.body = packed[:r.off]
	if g.guid, err = r.address(); err != nil {
		return nil, err
	}
	if g.signature, err = r.signature(); err != nil {
		return nil, err
	}
	return g, nil
}
