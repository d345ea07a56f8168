// Package wire defines veriform's wire types, field headers, and sequence
// headers: the structural vocabulary that sits directly on top of vint64
// (adapted from the teacher's codec.DecodeTagAndWireType /
// EncodeTagAndWireType, generalized from protobuf's 3-bit wire type plus
// implicit group-end marker to veriform's 3-bit wire type plus explicit
// critical bit).
package wire

import (
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/vint64"
)

// Type is veriform's 4-bit (8-value) wire type enum. Unlike protobuf's
// wire types, every value is valid: there is no "reserved" encoding to
// detect, so conversion from a raw nibble is infallible.
type Type uint8

const (
	False    Type = 0
	True     Type = 1
	UInt64   Type = 2
	SInt64   Type = 3
	Bytes    Type = 4
	String   Type = 5
	Message  Type = 6
	Sequence Type = 7
)

// DynamicallySized reports whether values of this wire type are
// length-delimited on the wire (Bytes, String, Message, Sequence).
func (t Type) DynamicallySized() bool {
	return t >= Bytes
}

func (t Type) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	case UInt64:
		return "uint64"
	case SInt64:
		return "sint64"
	case Bytes:
		return "bytes"
	case String:
		return "string"
	case Message:
		return "message"
	case Sequence:
		return "sequence"
	default:
		return "invalid"
	}
}

// FromUnmasked extracts a Type from the low 3 bits of v. All 8 possible
// values are valid wire types, so this never fails.
func FromUnmasked(v uint64) Type {
	return Type(v & 0b111)
}

// Header is the logical record encoded by a field header vint64: the
// field's tag, whether it is critical (an unrecognized critical field
// must fail decoding rather than be skipped), and its wire type.
type Header struct {
	Tag      uint64
	Critical bool
	Type     Type
}

const (
	criticalBit = 0x08
	wireTypeLen = 4 // wire type (3 bits) + critical bit occupy the low nibble
)

// Encode packs h into its canonical u64 form: tag<<4 | critical<<3 | wire_type.
func (h Header) Encode() uint64 {
	v := h.Tag << wireTypeLen
	if h.Critical {
		v |= criticalBit
	}
	v |= uint64(h.Type) & 0b111
	return v
}

// DecodeHeader unpacks an already-decoded field header vint64 value into
// its logical fields.
func DecodeHeader(encoded uint64) Header {
	return Header{
		Tag:      encoded >> wireTypeLen,
		Critical: encoded&criticalBit != 0,
		Type:     FromUnmasked(encoded),
	}
}

// AppendEncode vint64-encodes h's canonical packing and appends it to dst.
func (h Header) AppendEncode(dst []byte) []byte {
	return vint64.AppendEncode(dst, h.Encode())
}

// EncodedLen returns the number of bytes h will occupy on the wire.
func (h Header) EncodedLen() int {
	return vint64.EncodedLen(h.Encode())
}

// DecodeHeaderBytes reads one field header from the front of b.
func DecodeHeaderBytes(b []byte) (Header, int, error) {
	v, n, err := vint64.Decode(b)
	if err != nil {
		return Header{}, 0, err
	}
	return DecodeHeader(v), n, nil
}

// SequenceHeader is the vint64 that immediately follows a Sequence-typed
// field's header: the element wire type plus the sequence body's length
// in bytes. A Sequence field has no separate length prefix, so this
// header is the only record of the body length.
//
// Spec note: historical snapshots of the reference implementation
// disagreed on whether this length counts elements or bytes; veriform
// adopts the body-byte-count reading.
type SequenceHeader struct {
	BodyLen     uint64
	ElementType Type
}

// Encode packs h into its canonical u64 form: (body_len<<4) | element_wire_type.
func (h SequenceHeader) Encode() uint64 {
	return h.BodyLen<<wireTypeLen | uint64(h.ElementType)&0b111
}

// DecodeSequenceHeader unpacks an already-decoded sequence header vint64
// value into its logical fields.
func DecodeSequenceHeader(encoded uint64) SequenceHeader {
	return SequenceHeader{
		BodyLen:     encoded >> wireTypeLen,
		ElementType: FromUnmasked(encoded),
	}
}

// AppendEncode vint64-encodes h and appends it to dst.
func (h SequenceHeader) AppendEncode(dst []byte) []byte {
	return vint64.AppendEncode(dst, h.Encode())
}

// DecodeSequenceHeaderBytes reads one sequence header from the front of b.
func DecodeSequenceHeaderBytes(b []byte) (SequenceHeader, int, error) {
	v, n, err := vint64.Decode(b)
	if err != nil {
		return SequenceHeader{}, 0, err
	}
	return DecodeSequenceHeader(v), n, nil
}

// ElementAllowed reports whether t may appear as a sequence element.
// Booleans carry no body so they can't compose into a homogeneous
// length-delimited run, and nested sequences are disallowed by the
// reference core to keep sequence framing unambiguous.
func ElementAllowed(t Type) bool {
	return t != False && t != True && t != Sequence
}

// CheckElementType validates t as a sequence element wire type, returning
// a Decode/ElementSequenceHeader error if it is disallowed.
func CheckElementType(t Type) error {
	if !ElementAllowed(t) {
		return verror.Decodef(verror.ElementSequenceHeader)
	}
	return nil
}
