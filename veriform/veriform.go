// Package veriform is the front door to the codec: it re-exports the
// Message contract that schema types implement and the root-level
// Decode/Encode entry points, so a caller depending only on this package
// (not on decoder/encoder directly) can parse and serialize a top-level
// veriform message.
package veriform

import (
	"github.com/veriform-go/veriform/decoder"
	"github.com/veriform-go/veriform/encoder"
	"github.com/veriform-go/veriform/verihash"
)

// Version identifies the wire format revision this module implements,
// mirroring the teacher's internal/filetype version constants — useful
// for a caller embedding it in diagnostics, not interpreted by the codec
// itself.
const Version = "1.0.0"

// Message is implemented by every schema type this module can decode and
// encode. Decode consumes the message's own field stream (no leading
// length prefix — that belongs to whatever embeds this message, be it the
// root call or a nested Message/Sequence field). Encode appends the
// message's own field stream to buf's Buffer.
type Message interface {
	decoder.Message

	// Encode appends this message's fields to buf in strictly increasing
	// tag order.
	Encode(buf *encoder.Buffer) error
}

// Decode parses msg from input, treating the entire slice as the root
// message's field stream (spec's top-level entry point: the root carries
// no enclosing header or length prefix).
func Decode[M Message](input []byte, msg M, opts ...decoder.Option) error {
	return decoder.Decode(decoder.New(opts...), input, msg)
}

// DecodeWithDigest is Decode's counterpart for callers that want the root
// message's Verihash digest alongside the decoded value. Pass
// decoder.WithDigest among opts to select the algorithm.
func DecodeWithDigest[M Message](input []byte, msg M, opts ...decoder.Option) (verihash.Digest, error) {
	return decoder.DecodeWithDigest(decoder.New(opts...), input, msg)
}

// Encode serializes msg into a freshly allocated byte slice.
func Encode(msg Message, opts ...encoder.Option) ([]byte, error) {
	buf := encoder.NewBuffer(opts...)
	if err := msg.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeWithDigest is Encode's counterpart for callers that want the root
// message's Verihash digest alongside its encoded bytes. Pass
// encoder.WithDigest among opts to select the algorithm.
func EncodeWithDigest(msg Message, opts ...encoder.Option) ([]byte, verihash.Digest, error) {
	buf := encoder.NewBuffer(opts...)
	if err := msg.Encode(buf); err != nil {
		return nil, verihash.Digest{}, err
	}
	digest, _, err := buf.ComputeDigest()
	if err != nil {
		return nil, verihash.Digest{}, err
	}
	return buf.Bytes(), digest, nil
}
