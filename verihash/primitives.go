package verihash

import (
	"encoding/binary"
	"hash"

	"github.com/veriform-go/veriform/wire"
)

// Primitives composes the low-level feed operations that both the message
// and sequence hashers build on: every Verihash transcript is, underneath,
// a sequence of calls into one of these over some hash.Hash.
type Primitives struct {
	h hash.Hash
}

// NewPrimitives wraps h (any hash.Hash, typically from a Registry) with
// veriform's transcript-feeding operations.
func NewPrimitives(h hash.Hash) *Primitives {
	return &Primitives{h: h}
}

// Update feeds raw bytes directly into the transcript.
func (p *Primitives) Update(b []byte) {
	p.h.Write(b)
}

// Tag feeds a field tag as if it were a UInt64-wire-typed value: the
// UInt64 wire-type byte followed by the tag's 8-byte little-endian form.
// Tags are hashed this way (rather than as part of the header byte
// stream) so the transcript format doesn't depend on vint64's variable
// width.
func (p *Primitives) Tag(t uint64) {
	p.h.Write([]byte{byte(wire.UInt64)})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], t)
	p.h.Write(buf[:])
}

// Boolean feeds a boolean field: its wire type byte (False or True)
// followed by a single 0x00/0x01 byte.
func (p *Primitives) Boolean(b bool) {
	if b {
		p.h.Write([]byte{byte(wire.True), 0x01})
	} else {
		p.h.Write([]byte{byte(wire.False), 0x00})
	}
}

// UInt64 feeds an unsigned scalar: the UInt64 wire type byte followed by
// the value's 8-byte little-endian form.
func (p *Primitives) UInt64(v uint64) {
	p.h.Write([]byte{byte(wire.UInt64)})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	p.h.Write(buf[:])
}

// SInt64 feeds a signed scalar: the SInt64 wire type byte followed by the
// value's raw (not zigzag-mapped) 8-byte little-endian bit pattern.
// Zigzag mapping is purely a vint64 compactness trick for the wire
// encoding; the transcript hashes the semantic value itself, so two
// encoders that choose different (canonical) vint64 forms for the same
// signed value still agree on the digest.
func (p *Primitives) SInt64(v int64) {
	p.h.Write([]byte{byte(wire.SInt64)})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	p.h.Write(buf[:])
}

// DynamicallySizedValue feeds a length-delimited value's header: its wire
// type byte followed by the *declared length* (not the body) as an
// 8-byte little-endian count. The body itself is hashed separately via
// Update or, for nested messages/sequences, replaced entirely by the
// child's digest (see MessageHasher / SequenceHasher).
func (p *Primitives) DynamicallySizedValue(wt wire.Type, length uint64) {
	p.h.Write([]byte{byte(wt)})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], length)
	p.h.Write(buf[:])
}

// FixedSizeValue feeds a wire type byte followed immediately by the given
// body bytes, with no length prefix. MessageHasher uses it to feed a
// nested message's or sequence's digest in place of the field's body.
func (p *Primitives) FixedSizeValue(wt wire.Type, body []byte) {
	p.h.Write([]byte{byte(wt)})
	p.h.Write(body)
}

// Finalize returns the digest of everything fed so far, tagged with name.
// It does not reset the underlying hash.Hash.
func (p *Primitives) Finalize(name string) Digest {
	var d Digest
	d.Algorithm = name
	sum := p.h.Sum(nil)
	copy(d.Bytes[:], sum)
	return d
}
