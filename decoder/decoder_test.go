package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriform-go/veriform/decoder"
	"github.com/veriform-go/veriform/verihash"
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/vint64"
	"github.com/veriform-go/veriform/wire"
)

// scalar is a minimal two-field schema used to exercise the top-level
// Decoder without any code generation: tag 0 is a UInt64, tag 1 is a
// String.
type scalar struct {
	A uint64
	B string
}

func (s *scalar) Decode(_ *decoder.Decoder, md *decoder.MessageDecoder, input *[]byte) error {
	var err error
	s.A, err = md.DecodeUint64(input, 0)
	if err != nil {
		return err
	}
	s.B, err = md.DecodeString(input, 1)
	return err
}

func encodeHeader(tag uint64, wt wire.Type) []byte {
	return wire.Header{Tag: tag, Type: wt}.AppendEncode(nil)
}

func buildScalar(a uint64, b string) []byte {
	var out []byte
	out = append(out, encodeHeader(0, wire.UInt64)...)
	out = vint64.AppendEncode(out, a)
	out = append(out, encodeHeader(1, wire.String)...)
	out = vint64.AppendEncode(out, uint64(len(b)))
	out = append(out, b...)
	return out
}

func TestDecodeScalarMessage(t *testing.T) {
	input := buildScalar(7, "hi")
	var s scalar
	require.NoError(t, decoder.Decode(decoder.New(), input, &s))
	assert.Equal(t, uint64(7), s.A)
	assert.Equal(t, "hi", s.B)
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	input := append(buildScalar(7, "hi"), 0xff)
	var s scalar
	err := decoder.Decode(decoder.New(), input, &s)
	require.Error(t, err)
}

func TestDecodeRejectsOutOfOrderTags(t *testing.T) {
	var out []byte
	out = append(out, encodeHeader(1, wire.String)...)
	out = vint64.AppendEncode(out, 0)
	out = append(out, encodeHeader(0, wire.UInt64)...)
	out = vint64.AppendEncode(out, 1)

	var s scalar
	err := decoder.Decode(decoder.New(), out, &s)
	require.Error(t, err)
}

func TestDecodeRejectsWireTypeMismatch(t *testing.T) {
	var out []byte
	out = append(out, encodeHeader(0, wire.Bytes)...)
	out = vint64.AppendEncode(out, 1)
	out = append(out, 'x')

	var s scalar
	err := decoder.Decode(decoder.New(), out, &s)
	require.Error(t, err)
}

func TestDecodeTruncatedBody(t *testing.T) {
	var out []byte
	out = append(out, encodeHeader(0, wire.UInt64)...)
	out = vint64.AppendEncode(out, 0)
	out = append(out, encodeHeader(1, wire.String)...)
	out = vint64.AppendEncode(out, 5) // declares 5 bytes, supplies none

	var s scalar
	err := decoder.Decode(decoder.New(), out, &s)
	require.Error(t, err)
}

// nested wraps a scalar submessage at tag 0.
type nested struct {
	Inner scalar
}

func (n *nested) Decode(d *decoder.Decoder, md *decoder.MessageDecoder, input *[]byte) error {
	inner, err := decoder.DecodeMessage[scalar, *scalar](d, md, input, 0)
	if err != nil {
		return err
	}
	n.Inner = inner
	return nil
}

func TestDecodeNestedMessage(t *testing.T) {
	inner := buildScalar(3, "ok")
	var outer []byte
	outer = append(outer, encodeHeader(0, wire.Message)...)
	outer = vint64.AppendEncode(outer, uint64(len(inner)))
	outer = append(outer, inner...)

	d := decoder.New()
	n := &nested{}
	require.NoError(t, decoder.Decode(d, outer, n))
	assert.Equal(t, uint64(3), n.Inner.A)
	assert.Equal(t, "ok", n.Inner.B)
}

func TestDecodeNestedMessageDigestEquivalence(t *testing.T) {
	build := func(a uint64, b string) verihash.Digest {
		inner := buildScalar(a, b)
		var outer []byte
		outer = append(outer, encodeHeader(0, wire.Message)...)
		outer = vint64.AppendEncode(outer, uint64(len(inner)))
		outer = append(outer, inner...)

		d := decoder.New(decoder.WithDigest(verihash.SHA256, nil))
		n := &nested{}
		digest, err := decoder.DecodeWithDigest(d, outer, n)
		require.NoError(t, err)
		return digest
	}

	d1 := build(3, "ok")
	d2 := build(3, "ok")
	assert.True(t, d1.Equal(d2))

	d3 := build(4, "ok")
	assert.False(t, d1.Equal(d3))
}

func buildUint64Sequence(vals []uint64) []byte {
	var body []byte
	for _, v := range vals {
		body = vint64.AppendEncode(body, v)
	}
	sh := wire.SequenceHeader{BodyLen: uint64(len(body)), ElementType: wire.UInt64}

	var out []byte
	out = append(out, encodeHeader(0, wire.Sequence)...)
	out = sh.AppendEncode(out)
	out = append(out, body...)
	return out
}

type uintSeq struct {
	Values []uint64
}

func (u *uintSeq) Decode(d *decoder.Decoder, md *decoder.MessageDecoder, input *[]byte) error {
	vals, err := d.UInt64Sequence(md, input, 0)
	if err != nil {
		return err
	}
	u.Values = vals
	return nil
}

func TestDecodeUInt64Sequence(t *testing.T) {
	input := buildUint64Sequence([]uint64{1, 2, 3})
	d := decoder.New()
	u := &uintSeq{}
	require.NoError(t, decoder.Decode(d, input, u))
	assert.Equal(t, []uint64{1, 2, 3}, u.Values)
}

func TestDecodeUInt64SequenceWithDigest(t *testing.T) {
	input := buildUint64Sequence([]uint64{1, 2, 3})
	d := decoder.New(decoder.WithDigest(verihash.SHA256, nil))
	u := &uintSeq{}
	digest, err := decoder.DecodeWithDigest(d, input, u)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, u.Values)
	assert.NotEqual(t, verihash.Digest{}, digest)
}

func TestDecodeEmptyUInt64Sequence(t *testing.T) {
	input := buildUint64Sequence(nil)
	d := decoder.New()
	u := &uintSeq{}
	require.NoError(t, decoder.Decode(d, input, u))
	assert.Empty(t, u.Values)
}

// remainingProbeDepth is consumed by depthProbe.Decode across its
// recursive DecodeMessage calls; each fresh depthProbe instance that
// DecodeMessage constructs is otherwise zero-valued, so the countdown
// has to live outside the struct.
var remainingProbeDepth int

func TestNestingDepthBound(t *testing.T) {
	// Build MaxDepth+1 levels of nested single-field messages; the
	// innermost holds a single UInt64 field.
	body := func() []byte {
		var b []byte
		b = append(b, encodeHeader(0, wire.UInt64)...)
		b = vint64.AppendEncode(b, 1)
		return b
	}()
	for i := 0; i < decoder.MaxDepth+1; i++ {
		var wrapped []byte
		wrapped = append(wrapped, encodeHeader(0, wire.Message)...)
		wrapped = vint64.AppendEncode(wrapped, uint64(len(body)))
		wrapped = append(wrapped, body...)
		body = wrapped
	}

	remainingProbeDepth = decoder.MaxDepth + 1
	root := &depthProbe{}
	err := decoder.Decode(decoder.New(), body, root)
	require.Error(t, err)
	var verr *verror.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, verror.NestingDepth, verr.Kind)
}

// depthProbe recurses remainingProbeDepth additional Message levels
// before reading a terminal UInt64 field, used only to exercise the
// nesting bound.
type depthProbe struct{}

func (p *depthProbe) Decode(d *decoder.Decoder, md *decoder.MessageDecoder, input *[]byte) error {
	if remainingProbeDepth <= 0 {
		_, err := md.DecodeUint64(input, 0)
		return err
	}
	remainingProbeDepth--
	_, err := decoder.DecodeMessage[depthProbe, *depthProbe](d, md, input, 0)
	return err
}
