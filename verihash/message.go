package verihash

import (
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/wire"
)

type msgHashState int

const (
	msgInitial msgHashState = iota
	msgHeader
	msgBody // Bytes or String: ValueChunk feeds Update directly
	msgNested // Message or Sequence: ValueChunk is accounted but not hashed; a digest call closes the field
)

// MessageHasher builds a Verihash transcript for one message, driven
// event-by-event by a decoder.MessageDecoder (spec §4.7). It mirrors the
// message decoder's own state machine (§4.4) so the two stay in lockstep:
// every structural event the decoder emits has exactly one legal hasher
// transition.
type MessageHasher struct {
	prims     *Primitives
	algorithm string

	state     msgHashState
	header    wire.Header
	remaining uint64
}

// NewMessageHasher constructs a MessageHasher using the named algorithm
// from reg.
func NewMessageHasher(reg *Registry, algorithm string) (*MessageHasher, error) {
	h, ok := reg.New(algorithm)
	if !ok {
		return nil, verror.New(verror.Hashing)
	}
	return &MessageHasher{prims: NewPrimitives(h), algorithm: algorithm}, nil
}

func (m *MessageHasher) hashingErr() error {
	return verror.New(verror.Hashing)
}

// HandleFieldHeader records a field header event. Legal only in the
// Initial state.
func (m *MessageHasher) HandleFieldHeader(h wire.Header) error {
	if m.state != msgInitial {
		return m.hashingErr()
	}
	m.header = h
	m.state = msgHeader
	return nil
}

// HandleLengthDelimiter records a length-delimiter event for a
// dynamically sized field (Bytes, String, or Message). Legal only in the
// Header state, and only if wt matches the pending header's wire type.
// Sequence fields don't go through this event: the decoder reads a
// sequence header vint64 directly in their place (see
// HandleSequenceHeader).
func (m *MessageHasher) HandleLengthDelimiter(wt wire.Type, length uint64) error {
	if m.state != msgHeader || wt != m.header.Type {
		return m.hashingErr()
	}
	m.prims.Tag(m.header.Tag)
	m.prims.DynamicallySizedValue(wt, length)
	m.remaining = length

	switch wt {
	case wire.Bytes, wire.String:
		m.state = msgBody
	case wire.Message:
		m.state = msgNested
	default:
		return m.hashingErr()
	}
	if m.remaining == 0 && m.state == msgBody {
		m.state = msgInitial
	}
	// A zero-length Message field still requires the explicit
	// HandleMessageDigest call below: even an empty submessage has a
	// digest.
	return nil
}

// HandleBool records a boolean scalar value event. Legal only in the
// Header state.
func (m *MessageHasher) HandleBool(b bool) error {
	if m.state != msgHeader {
		return m.hashingErr()
	}
	m.prims.Tag(m.header.Tag)
	m.prims.Boolean(b)
	m.state = msgInitial
	return nil
}

// HandleUInt64 records an unsigned scalar value event. Legal only in the
// Header state.
func (m *MessageHasher) HandleUInt64(v uint64) error {
	if m.state != msgHeader {
		return m.hashingErr()
	}
	m.prims.Tag(m.header.Tag)
	m.prims.UInt64(v)
	m.state = msgInitial
	return nil
}

// HandleSInt64 records a signed scalar value event. Legal only in the
// Header state.
func (m *MessageHasher) HandleSInt64(v int64) error {
	if m.state != msgHeader {
		return m.hashingErr()
	}
	m.prims.Tag(m.header.Tag)
	m.prims.SInt64(v)
	m.state = msgInitial
	return nil
}

// HandleSequenceHeader records a sequence header event: the decoder's
// direct counterpart to HandleLengthDelimiter for Sequence-typed fields,
// which carry a sequence header vint64 (element type + body length)
// instead of a plain length prefix. Legal only in the Header state, with
// the pending header's wire type equal to Sequence.
func (m *MessageHasher) HandleSequenceHeader(sh wire.SequenceHeader) error {
	if m.state != msgHeader || m.header.Type != wire.Sequence {
		return m.hashingErr()
	}
	m.prims.Tag(m.header.Tag)
	m.prims.DynamicallySizedValue(wire.Sequence, sh.BodyLen)
	m.remaining = sh.BodyLen
	m.state = msgNested
	return nil
}

// HandleValueChunk records len(chunk) raw body bytes. For Bytes/String
// fields the chunk is fed directly into the transcript. For Message/
// Sequence fields the chunk is accounted against remaining but not
// hashed — their bodies are replaced by a child digest via
// HandleMessageDigest/HandleSequenceDigest.
func (m *MessageHasher) HandleValueChunk(chunk []byte) error {
	if m.state != msgBody && m.state != msgNested {
		return m.hashingErr()
	}
	if uint64(len(chunk)) > m.remaining {
		return m.hashingErr()
	}
	if m.state == msgBody {
		m.prims.Update(chunk)
	}
	m.remaining -= uint64(len(chunk))
	if m.remaining == 0 && m.state == msgBody {
		m.state = msgInitial
	}
	return nil
}

// HandleMessageDigest closes a Message-typed field by re-feeding the
// field's tag and the child message's digest (wire-type-prefixed via
// FixedSizeValue) in place of its raw body bytes. Legal only once the
// field's declared length has been fully accounted for via
// HandleValueChunk (or immediately, for a zero-length submessage). The
// tag is re-fed here (rather than relying on the one HandleLengthDelimiter
// already fed) because the substitution replaces the field's entire
// tagged value, not just its body.
func (m *MessageHasher) HandleMessageDigest(child Digest) error {
	if m.state != msgNested || m.remaining != 0 {
		return m.hashingErr()
	}
	m.prims.Tag(m.header.Tag)
	m.prims.FixedSizeValue(m.header.Type, child.Slice())
	m.state = msgInitial
	return nil
}

// HandleSequenceDigest closes a Sequence-typed field the same way:
// re-feeding the tag and the sequence's digest, wire-type-prefixed, in
// place of its raw element bytes.
func (m *MessageHasher) HandleSequenceDigest(child Digest) error {
	if m.state != msgNested || m.remaining != 0 {
		return m.hashingErr()
	}
	m.prims.Tag(m.header.Tag)
	m.prims.FixedSizeValue(m.header.Type, child.Slice())
	m.state = msgInitial
	return nil
}

// Finish finalizes the transcript and returns its digest. Legal only in
// the Initial state (i.e. between fields, or before the first field).
func (m *MessageHasher) Finish() (Digest, error) {
	if m.state != msgInitial {
		return Digest{}, m.hashingErr()
	}
	return m.prims.Finalize(m.algorithm), nil
}
