// Package vint64 implements veriform's self-delimiting little-endian
// variable-length integer encoding: 1 to 9 bytes, with the length signaled
// by the trailing-zero count of the first byte (adapted from the varint
// handling in the teacher's codec.Buffer, generalized to veriform's
// stop-bit scheme instead of protobuf's continuation-bit scheme).
package vint64

import (
	"encoding/binary"
	"math/bits"

	"github.com/veriform-go/veriform/verror"
)

// MaxLen is the largest number of bytes a vint64 can occupy.
const MaxLen = 9

// EncodedLen returns the number of bytes Encode(v) will occupy: 1 to 9.
func EncodedLen(v uint64) int {
	requiredBits := 64 - bits.LeadingZeros64(v)
	if requiredBits > 56 {
		return 9
	}
	if requiredBits == 0 {
		return 1
	}
	return (requiredBits + 6) / 7
}

// DecodedLen returns the total encoded length (including the prefix byte
// itself) signaled by a vint64's first byte: the trailing-zero count plus
// one, or 9 if the byte is zero.
func DecodedLen(firstByte byte) int {
	if firstByte == 0 {
		return MaxLen
	}
	return bits.TrailingZeros8(firstByte) + 1
}

// AppendEncode appends the canonical vint64 encoding of v to dst and
// returns the extended slice, without any intermediate allocation beyond
// what append itself may need.
func AppendEncode(dst []byte, v uint64) []byte {
	length := EncodedLen(v)
	if length == MaxLen {
		var buf [9]byte
		buf[0] = 0
		binary.LittleEndian.PutUint64(buf[1:], v)
		return append(dst, buf[:]...)
	}

	k := length - 1
	raw := (v<<1 | 1) << uint(k)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], raw)
	return append(dst, buf[:length]...)
}

// Encode returns the canonical vint64 encoding of v as a freshly allocated
// slice of 1 to 9 bytes.
func Encode(v uint64) []byte {
	return AppendEncode(make([]byte, 0, MaxLen), v)
}

// Decode reads one canonical vint64 from the front of b, returning the
// decoded value and the number of bytes consumed. It rejects truncated
// input and over-long (non-canonical) encodings.
func Decode(b []byte) (value uint64, consumed int, err error) {
	if len(b) == 0 {
		return 0, 0, verror.VInt64Truncated(1)
	}

	length := DecodedLen(b[0])
	if len(b) < length {
		return 0, 0, verror.VInt64Truncated(length - len(b))
	}

	if length == MaxLen {
		value = binary.LittleEndian.Uint64(b[1:9])
		if value>>56 == 0 {
			return 0, 0, verror.VInt64NonCanonical()
		}
		return value, MaxLen, nil
	}

	var raw uint64
	for i := length - 1; i >= 0; i-- {
		raw = raw<<8 | uint64(b[i])
	}
	value = raw >> uint(length)

	if length > 1 && EncodedLen(value) < length {
		return 0, 0, verror.VInt64NonCanonical()
	}
	return value, length, nil
}

// ZigZagEncode maps a signed 64-bit integer to an unsigned 64-bit integer
// such that small-magnitude values (positive or negative) map to
// small-magnitude unsigned values.
func ZigZagEncode(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(z uint64) int64 {
	return int64(z>>1) ^ -int64(z&1)
}

// EncodeSigned returns the canonical vint64 encoding of the zigzag mapping
// of a signed integer.
func EncodeSigned(n int64) []byte {
	return Encode(ZigZagEncode(n))
}

// AppendEncodeSigned is the append-style counterpart to EncodeSigned.
func AppendEncodeSigned(dst []byte, n int64) []byte {
	return AppendEncode(dst, ZigZagEncode(n))
}

// DecodeSigned reads one canonical vint64 from the front of b and
// zigzag-decodes it into a signed integer.
func DecodeSigned(b []byte) (value int64, consumed int, err error) {
	z, n, err := Decode(b)
	if err != nil {
		return 0, 0, err
	}
	return ZigZagDecode(z), n, nil
}
