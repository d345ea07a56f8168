// Package decoder implements veriform's streaming pull-parser: a message
// decoder state machine (spec §4.4), a sequence decoder state machine
// (§4.6), and a top-level decoder that owns a bounded nesting stack of
// the two (§4.5). Every subsystem is wired to an optional Verihash
// transcript hasher so a digest can be produced incrementally as a
// message is parsed, without a second pass over its bytes.
//
// This mirrors the teacher's codec.Buffer in spirit — a cursor over a
// caller-owned byte slice with typed Decode* methods — but replaces
// protobuf's implicit, un-policed tag stream with veriform's explicit
// per-message state machine, monotonic tag enforcement, and canonical
// encoding checks.
package decoder

import "github.com/veriform-go/veriform/wire"

// EventKind identifies which structural event MessageDecoder.Decode or
// SequenceDecoder.Decode most recently produced.
type EventKind int

const (
	EventFieldHeader EventKind = iota
	EventBool
	EventUInt64
	EventSInt64
	EventLengthDelimiter
	EventSequenceHeader
	EventValueChunk
)

// Event is the single return type of a decoder's per-step Decode method
// (spec §4.4: "decode(&mut input) -> Option<Event> — advances, emits at
// most one event"). Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	Header wire.Header // EventFieldHeader

	Bool   bool   // EventBool
	UInt64 uint64 // EventUInt64
	SInt64 int64  // EventSInt64

	WireType wire.Type // EventLengthDelimiter
	Length   uint64    // EventLengthDelimiter

	SequenceHeader wire.SequenceHeader // EventSequenceHeader

	Chunk     []byte // EventValueChunk: a zero-copy borrow into the caller's input
	Remaining uint64 // EventValueChunk: bytes still owed for the current body
}
