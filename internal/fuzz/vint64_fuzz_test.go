// Package fuzz holds native Go fuzz targets for the wire codec, adapted
// from the reference implementation's libFuzzer harnesses
// (rust/fuzz/fuzzers/*.rs). The vint64 targets decode arbitrary bytes and,
// whenever decode succeeds, check that re-encoding the decoded value
// reproduces what decode consumed (byte for byte for unsigned values, by
// length for signed ones). The message target only checks that decoding
// arbitrary bytes never panics and fails only with a *verror.Error.
package fuzz

import (
	"testing"

	"github.com/veriform-go/veriform/vint64"
)

func FuzzVint64Roundtrip(f *testing.F) {
	for _, seed := range [][]byte{
		{0x00},
		{0x01},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{0x02, 0x00}, // overlong encoding of 0, must be rejected
		{0xff},       // complete 1-byte form of 127 (no trailing zero bits)
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input []byte) {
		value, consumed, err := vint64.Decode(input)
		if err != nil {
			return
		}
		encoded := vint64.Encode(value)
		if consumed != len(encoded) {
			t.Fatalf("decode consumed %d bytes but canonical encoding of %d is %d bytes", consumed, value, len(encoded))
		}
		for i, b := range encoded {
			if input[i] != b {
				t.Fatalf("input and re-encoded value diverge at byte %d: input=%x encoded=%x", i, input[:consumed], encoded)
			}
		}
	})
}

func FuzzVint64SignedRoundtrip(f *testing.F) {
	for _, seed := range [][]byte{
		{0x00},
		{0x03}, // zigzag(-1) encoded minimally
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input []byte) {
		value, consumed, err := vint64.DecodeSigned(input)
		if err != nil {
			return
		}
		encoded := vint64.EncodeSigned(value)
		if consumed != len(encoded) {
			t.Fatalf("signed decode consumed %d bytes but canonical encoding of %d is %d bytes", consumed, value, len(encoded))
		}
	})
}
