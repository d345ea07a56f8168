package veriform_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriform-go/veriform/decoder"
	"github.com/veriform-go/veriform/encoder"
	"github.com/veriform-go/veriform/veriform"
	"github.com/veriform-go/veriform/verihash"
	"github.com/veriform-go/veriform/wire"
)

// address is a leaf schema type with only scalar fields, the simplest
// shape a derive macro would produce: one method each for Decode and
// Encode, dispatching field-by-field in tag order.
type address struct {
	Street string
	City   string
}

func (a *address) Decode(_ *decoder.Decoder, md *decoder.MessageDecoder, input *[]byte) error {
	var err error
	a.Street, err = md.DecodeString(input, 0)
	if err != nil {
		return err
	}
	a.City, err = md.DecodeString(input, 1)
	return err
}

func (a *address) Encode(buf *encoder.Buffer) error {
	if err := buf.String(0, a.Street); err != nil {
		return err
	}
	return buf.String(1, a.City)
}

// invoice is the nested case: tag 0 is a scalar UInt64, tag 1 is a nested
// Message field (address), and tag 2 is a Sequence of UInt64 line-item
// amounts. This is the shape #[derive(Message)] would generate field
// dispatch for, written out by hand since codegen is out of scope here.
type invoice struct {
	ID        uint64
	BillTo    address
	LineItems []uint64
}

func (inv *invoice) Decode(d *decoder.Decoder, md *decoder.MessageDecoder, input *[]byte) error {
	var err error
	inv.ID, err = md.DecodeUint64(input, 0)
	if err != nil {
		return err
	}
	inv.BillTo, err = decoder.DecodeMessage[address, *address](d, md, input, 1)
	if err != nil {
		return err
	}
	inv.LineItems, err = d.UInt64Sequence(md, input, 2)
	return err
}

func (inv *invoice) Encode(buf *encoder.Buffer) error {
	if err := buf.UInt64(0, inv.ID); err != nil {
		return err
	}

	if err := buf.Message(1, inv.BillTo.Encode); err != nil {
		return err
	}

	return buf.Sequence(2, wire.UInt64, func(sb *encoder.SequenceBuilder) error {
		for _, v := range inv.LineItems {
			if err := sb.UInt64(v); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestInvoiceRoundTrip(t *testing.T) {
	inv := &invoice{
		ID:        1001,
		BillTo:    address{Street: "1 Infinite Loop", City: "Cupertino"},
		LineItems: []uint64{500, 1500, 2000},
	}

	encoded, err := veriform.Encode(inv)
	require.NoError(t, err)

	var decoded invoice
	require.NoError(t, veriform.Decode(encoded, &decoded))

	if diff := cmp.Diff(*inv, decoded); diff != "" {
		t.Errorf("decoded invoice mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoiceDigestEquivalence(t *testing.T) {
	build := func(id uint64) verihash.Digest {
		inv := &invoice{
			ID:        id,
			BillTo:    address{Street: "1 Infinite Loop", City: "Cupertino"},
			LineItems: []uint64{500, 1500},
		}
		_, digest, err := veriform.EncodeWithDigest(inv, encoder.WithDigest(verihash.SHA256, nil))
		require.NoError(t, err)
		return digest
	}

	d1 := build(1)
	d2 := build(1)
	assert.True(t, d1.Equal(d2))

	d3 := build(2)
	assert.False(t, d1.Equal(d3))
}
