package vint64_test

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriform-go/veriform/vint64"
	"github.com/veriform-go/veriform/verror"
)

func TestEncodedLenRanges(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{1, 1},
		{1<<7 - 1, 1},
		{1 << 7, 2},
		{1<<14 - 1, 2},
		{1 << 14, 3},
		{1<<49 - 1, 7},
		{1 << 49, 8},
		{1<<56 - 1, 8},
		{1 << 56, 9},
		{^uint64(0), 9},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, vint64.EncodedLen(tc.v), "v=%d", tc.v)
	}
}

func TestDecodedLenMatchesEncodedLen(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 1 << 20, 1 << 55, 1 << 56, ^uint64(0)} {
		enc := vint64.Encode(v)
		assert.Equal(t, vint64.EncodedLen(v), vint64.DecodedLen(enc[0]))
	}
}

func TestRoundtrip(t *testing.T) {
	f := func(v uint64) bool {
		enc := vint64.Encode(v)
		if len(enc) != vint64.EncodedLen(v) {
			return false
		}
		got, n, err := vint64.Decode(enc)
		return err == nil && got == v && n == len(enc)
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestZigZagRoundtrip(t *testing.T) {
	f := func(n int64) bool {
		return vint64.ZigZagDecode(vint64.ZigZagEncode(n)) == n
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestZigZagMonotonic(t *testing.T) {
	// zigzag interleaves: 0, -1, 1, -2, 2, -3, 3, ... -> 0, 1, 2, 3, 4, 5, 6
	want := []int64{0, -1, 1, -2, 2, -3, 3}
	for i, n := range want {
		assert.Equal(t, uint64(i), vint64.ZigZagEncode(n))
	}
}

func TestCanonicalityRejectsOverlongEncodings(t *testing.T) {
	// Encode 0 canonically (1 byte), then re-pack it as a 2-byte form by
	// hand: k=1, raw = (0<<1|1)<<1 = 2.
	overlong := []byte{2, 0}
	_, _, err := vint64.Decode(overlong)
	require.Error(t, err)
	var verr *verror.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, verror.VInt64, verr.Kind)
	assert.True(t, verr.NonCanonical)
}

func TestCanonicalityNineByteForm(t *testing.T) {
	// A 9-byte form whose value fits in 56 bits is non-canonical.
	overlong := []byte{0, 1, 0, 0, 0, 0, 0, 0, 0}
	_, _, err := vint64.Decode(overlong)
	require.Error(t, err)
	var verr *verror.Error
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.NonCanonical)
}

func TestDecodeTruncated(t *testing.T) {
	enc := vint64.Encode(1 << 20) // 3 bytes
	_, _, err := vint64.Decode(enc[:2])
	require.Error(t, err)
	var verr *verror.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, verror.VInt64, verr.Kind)
	assert.False(t, verr.NonCanonical)
}

func TestDecodeEmpty(t *testing.T) {
	_, _, err := vint64.Decode(nil)
	require.Error(t, err)
}

func TestSignedRoundtrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40)} {
		enc := vint64.EncodeSigned(n)
		got, consumed, err := vint64.DecodeSigned(enc)
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, len(enc), consumed)
	}
}

func TestAppendEncodeReusesBuffer(t *testing.T) {
	dst := make([]byte, 0, 32)
	dst = vint64.AppendEncode(dst, 1)
	dst = vint64.AppendEncode(dst, 300)
	got1, n1, err := vint64.Decode(dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got1)
	got2, _, err := vint64.Decode(dst[n1:])
	require.NoError(t, err)
	assert.Equal(t, uint64(300), got2)
}
