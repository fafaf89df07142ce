// Package container implements the Golix container records and their
// canonical binary encoding.
//
// Every record packs to deterministic bytes: a four-byte magic, a format
// version, the ciphersuite id, the record fields, the derived address, and a
// detached signature slot. Packing is two-phase: Pack assigns the address
// over the canonical body, the caller signs or MACs the address digest, and
// PackSignature attaches the result. Unpacking recomputes the address and
// fails with ErrParse on any malformed input.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/opd-ai/golix/crypto"
)

// containerVersion is the wire format version of all records.
const containerVersion = 1

// ErrParse indicates malformed container bytes. The handshake cascade
// advances past ErrParse only; all other errors propagate.
var ErrParse = errors.New("parse failure")

func appendBytes(buf, b []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

func appendGuid(buf []byte, g crypto.Guid) []byte {
	return appendBytes(buf, g.Bytes())
}

// reader walks packed bytes, turning every truncation or bad value into
// ErrParse.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("%w: truncated record", ErrParse)
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad length prefix", ErrParse)
	}
	r.off += n
	return v, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: field length %d exceeds remaining %d", ErrParse, n, r.remaining())
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+int(n)])
	r.off += int(n)
	return out, nil
}

func (r *reader) guid() (crypto.Guid, error) {
	raw, err := r.bytes()
	if err != nil {
		return crypto.Guid{}, err
	}
	g, err := crypto.GuidFromBytes(raw)
	if err != nil {
		return crypto.Guid{}, fmt.Errorf("%w: bad guid: %v", ErrParse, err)
	}
	return g, nil
}

func (r *reader) uint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("%w: truncated record", ErrParse)
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// header consumes and checks magic, version and cipher.
func (r *reader) header(magic string) (crypto.CipherID, error) {
	if r.remaining() < len(magic)+2 {
		return 0, fmt.Errorf("%w: record shorter than header", ErrParse)
	}
	if string(r.data[r.off:r.off+len(magic)]) != magic {
		return 0, fmt.Errorf("%w: not a %s record", ErrParse, magic)
	}
	r.off += len(magic)
	version, _ := r.byte()
	if version != containerVersion {
		return 0, fmt.Errorf("%w: unsupported %s version %d", ErrParse, magic, version)
	}
	cipher, _ := r.byte()
	return crypto.CipherID(cipher), nil
}

// address consumes the trailing address block and verifies it against the
// canonical body, which spans the packed bytes up to the current offset.
func (r *reader) address() (crypto.Guid, error) {
	bodyEnd := r.off
	algoByte, err := r.byte()
	if err != nil {
		return crypto.Guid{}, err
	}
	algo := crypto.AddressAlgo(algoByte)
	size, err := crypto.DigestSize(algo)
	if err != nil {
		return crypto.Guid{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if r.remaining() < size {
		return crypto.Guid{}, fmt.Errorf("%w: truncated address digest", ErrParse)
	}
	digest := make([]byte, size)
	copy(digest, r.data[r.off:r.off+size])
	r.off += size

	expected, err := crypto.NewGuid(algo, r.data[:bodyEnd])
	if err != nil {
		return crypto.Guid{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	guid := crypto.Guid{Algo: algo, Digest: digest}
	if !guid.Equal(expected) {
		return crypto.Guid{}, fmt.Errorf("%w: address digest does not match body", ErrParse)
	}
	return guid, nil
}

// signature consumes the detached signature slot and requires the record to
// end there.
func (r *reader) signature() ([]byte, error) {
	sig, err := r.bytes()
	if err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrParse, r.remaining())
	}
	return sig, nil
}

func packHeader(magic string, cipher crypto.CipherID) []byte {
	body := make([]byte, 0, 256)
	body = append(body, magic...)
	body = append(body, containerVersion, byte(cipher))
	return body
}

// assemble builds the full packed bytes from body, address and signature.
func assemble(body []byte, guid crypto.Guid, signature []byte) []byte {
	out := make([]byte, 0, len(body)+1+len(guid.Digest)+len(signature)+2)
	out = append(out, body...)
	out = append(out, byte(guid.Algo))
	out = append(out, guid.Digest...)
	out = appendBytes(out, signature)
	return out
}
