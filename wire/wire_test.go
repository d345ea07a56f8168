package wire_test

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/wire"
)

func TestHeaderRoundtrip(t *testing.T) {
	cases := []wire.Header{
		{Tag: 0, Critical: false, Type: wire.False},
		{Tag: 42, Critical: false, Type: wire.UInt64},
		{Tag: 43, Critical: true, Type: wire.SInt64},
		{Tag: 1 << 40, Critical: true, Type: wire.Message},
	}
	for _, h := range cases {
		got := wire.DecodeHeader(h.Encode())
		assert.Equal(t, h, got)
	}
}

func TestHeaderEncodeDecodeBytes(t *testing.T) {
	h := wire.Header{Tag: 42, Critical: false, Type: wire.UInt64}
	buf := h.AppendEncode(nil)
	assert.Equal(t, h.EncodedLen(), len(buf))

	got, n, err := wire.DecodeHeaderBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, h, got)
}

func TestHeaderFuzzRoundtrip(t *testing.T) {
	f := func(tag uint64, critical bool, wt uint8) bool {
		h := wire.Header{Tag: tag >> 4, Critical: critical, Type: wire.FromUnmasked(uint64(wt))}
		return wire.DecodeHeader(h.Encode()) == h
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestWireTypeFromUnmaskedCoversAllValues(t *testing.T) {
	for v := uint64(0); v < 8; v++ {
		wt := wire.FromUnmasked(v)
		assert.NotEqual(t, "invalid", wt.String())
	}
}

func TestDynamicallySized(t *testing.T) {
	for _, wt := range []wire.Type{wire.False, wire.True, wire.UInt64, wire.SInt64} {
		assert.False(t, wt.DynamicallySized(), wt.String())
	}
	for _, wt := range []wire.Type{wire.Bytes, wire.String, wire.Message, wire.Sequence} {
		assert.True(t, wt.DynamicallySized(), wt.String())
	}
}

func TestSequenceHeaderRoundtrip(t *testing.T) {
	h := wire.SequenceHeader{BodyLen: 12345, ElementType: wire.UInt64}
	got := wire.DecodeSequenceHeader(h.Encode())
	assert.Equal(t, h, got)

	buf := h.AppendEncode(nil)
	got2, n, err := wire.DecodeSequenceHeaderBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, h, got2)
}

func TestElementAllowed(t *testing.T) {
	assert.False(t, wire.ElementAllowed(wire.False))
	assert.False(t, wire.ElementAllowed(wire.True))
	assert.False(t, wire.ElementAllowed(wire.Sequence))
	assert.True(t, wire.ElementAllowed(wire.UInt64))
	assert.True(t, wire.ElementAllowed(wire.Message))
}

func TestCheckElementType(t *testing.T) {
	require.NoError(t, wire.CheckElementType(wire.Bytes))
	err := wire.CheckElementType(wire.True)
	require.Error(t, err)
	var verr *verror.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, verror.Decode, verr.Kind)
	assert.Equal(t, verror.ElementSequenceHeader, verr.Element)
}

func TestCheckCanonicalString(t *testing.T) {
	require.NoError(t, wire.CheckCanonicalString("hello world 123"))
	err := wire.CheckCanonicalString("café")
	require.Error(t, err)
	var verr *verror.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, verror.UnicodeNormalization, verr.Kind)
}
