package encoder

import (
	"github.com/veriform-go/veriform/vint64"
	"github.com/veriform-go/veriform/wire"
)

// FieldHeaderLen returns the encoded length of a field header for tag.
// Critical doesn't affect width (it lives in the header's low nibble
// alongside the wire type), so it isn't a parameter here.
func FieldHeaderLen(tag uint64) int {
	return wire.Header{Tag: tag}.EncodedLen()
}

// UInt64Len returns the total encoded length of a UInt64 field: header
// plus value.
func UInt64Len(tag uint64, v uint64) int {
	return FieldHeaderLen(tag) + vint64.EncodedLen(v)
}

// SInt64Len returns the total encoded length of an SInt64 field: header
// plus zigzag-mapped value.
func SInt64Len(tag uint64, v int64) int {
	return FieldHeaderLen(tag) + vint64.EncodedLen(vint64.ZigZagEncode(v))
}

// BoolLen returns the total encoded length of a boolean field: the header
// alone, since False/True carry no body.
func BoolLen(tag uint64) int {
	return FieldHeaderLen(tag)
}

// BytesLen returns the total encoded length of a Bytes or String field of
// bodyLen bytes: header, length prefix, and body.
func BytesLen(tag uint64, bodyLen int) int {
	return FieldHeaderLen(tag) + vint64.EncodedLen(uint64(bodyLen)) + bodyLen
}

// StringLen is an alias of BytesLen: String and Bytes share the same
// length-delimited framing on the wire.
func StringLen(tag uint64, bodyLen int) int {
	return BytesLen(tag, bodyLen)
}

// MessageLen returns the total encoded length of a Message field wrapping
// a nested body of bodyLen bytes.
func MessageLen(tag uint64, bodyLen int) int {
	return BytesLen(tag, bodyLen)
}

// SequenceLen returns the total encoded length of a Sequence field whose
// elements occupy elementBodyLen bytes: the field header, the sequence
// header vint64 (which itself carries the body length, so there is no
// further outer length prefix), and the element body.
func SequenceLen(tag uint64, elementBodyLen int) int {
	sh := wire.SequenceHeader{BodyLen: uint64(elementBodyLen)}
	return FieldHeaderLen(tag) + vint64.EncodedLen(sh.Encode()) + elementBodyLen
}
