package verihash

import (
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/wire"
)

type seqHashState int

const (
	seqReady   seqHashState = iota // waiting for the next element's value/body
	seqElement                     // inside an element's length-delimited body
)

// SequenceHasher builds a Verihash transcript for one sequence. It is
// initialized with the element wire type as a one-byte domain separator,
// so a sequence of N bytes values hashes differently from a message
// containing the same raw bytes (spec §4.7, "Sequence hasher").
type SequenceHasher struct {
	prims       *Primitives
	algorithm   string
	elementType wire.Type

	state     seqHashState
	remaining uint64
}

// NewSequenceHasher constructs a SequenceHasher for a sequence of
// elementType values, using the named algorithm from reg.
func NewSequenceHasher(reg *Registry, algorithm string, elementType wire.Type) (*SequenceHasher, error) {
	h, ok := reg.New(algorithm)
	if !ok {
		return nil, verror.New(verror.Hashing)
	}
	s := &SequenceHasher{prims: NewPrimitives(h), algorithm: algorithm, elementType: elementType}
	s.prims.Update([]byte{byte(elementType)})
	return s, nil
}

func (s *SequenceHasher) hashingErr() error {
	return verror.New(verror.Hashing)
}

// HandleScalarUInt64 feeds one UInt64 element. Legal only in the Ready
// state and only for a UInt64-typed sequence.
func (s *SequenceHasher) HandleScalarUInt64(v uint64) error {
	if s.state != seqReady || s.elementType != wire.UInt64 {
		return s.hashingErr()
	}
	s.prims.UInt64(v)
	return nil
}

// HandleScalarSInt64 feeds one SInt64 element. Legal only in the Ready
// state and only for an SInt64-typed sequence.
func (s *SequenceHasher) HandleScalarSInt64(v int64) error {
	if s.state != seqReady || s.elementType != wire.SInt64 {
		return s.hashingErr()
	}
	s.prims.SInt64(v)
	return nil
}

// HandleElementLength opens a length-delimited element (Bytes, String,
// Message). Legal only in the Ready state.
func (s *SequenceHasher) HandleElementLength(length uint64) error {
	if s.state != seqReady || !s.elementType.DynamicallySized() {
		return s.hashingErr()
	}
	s.prims.DynamicallySizedValue(s.elementType, length)
	s.remaining = length
	if s.elementType != wire.Message && length > 0 {
		s.state = seqElement
	}
	return nil
}

// HandleValueChunk feeds len(chunk) raw element body bytes for Bytes/
// String elements. Message elements instead close via
// HandleMessageDigest, never raw chunks.
func (s *SequenceHasher) HandleValueChunk(chunk []byte) error {
	if s.state != seqElement || s.elementType == wire.Message {
		return s.hashingErr()
	}
	if uint64(len(chunk)) > s.remaining {
		return s.hashingErr()
	}
	s.prims.Update(chunk)
	s.remaining -= uint64(len(chunk))
	if s.remaining == 0 {
		s.state = seqReady
	}
	return nil
}

// HandleMessageDigest closes a Message element by feeding the child
// message's digest in place of its raw body bytes (spec §4.7: "nested
// messages contribute via hash_message_digest on closing; the body bytes
// are NOT hashed into the transcript — only the child digest is").
func (s *SequenceHasher) HandleMessageDigest(child Digest) error {
	if s.elementType != wire.Message {
		return s.hashingErr()
	}
	s.prims.Update(child.Slice())
	s.remaining = 0
	s.state = seqReady
	return nil
}

// Finish finalizes the transcript and returns its digest. Legal only
// between elements (the Ready state).
func (s *SequenceHasher) Finish() (Digest, error) {
	if s.state != seqReady {
		return Digest{}, s.hashingErr()
	}
	return s.prims.Finalize(s.algorithm), nil
}
