package fuzz

import (
	"testing"

	"github.com/veriform-go/veriform/decoder"
	"github.com/veriform-go/veriform/verror"
)

// probe is a representative two-field schema (one scalar, one
// length-delimited) used purely to drive arbitrary bytes through the
// full MessageDecoder FSM; the fuzz target only asserts that decode
// never panics and only ever fails with a verror.Error, never some
// other unclassified error value.
type probe struct {
	A uint64
	B []byte
}

func (p *probe) Decode(_ *decoder.Decoder, md *decoder.MessageDecoder, input *[]byte) error {
	var err error
	p.A, err = md.DecodeUint64(input, 0)
	if err != nil {
		return err
	}
	p.B, err = md.DecodeBytes(input, 1)
	return err
}

func FuzzMessageDecode(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00, 0x01})

	f.Fuzz(func(t *testing.T, input []byte) {
		var p probe
		err := decoder.Decode(decoder.New(), input, &p)
		if err == nil {
			return
		}
		if _, ok := err.(*verror.Error); !ok {
			t.Fatalf("decode failed with non-verror.Error: %v (%T)", err, err)
		}
	})
}
