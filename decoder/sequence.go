package decoder

import (
	"github.com/veriform-go/veriform/verihash"
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/vint64"
	"github.com/veriform-go/veriform/wire"
)

type seqState int

const (
	seqReady   seqState = iota // positioned at the start of the next element
	seqElement                 // streaming a length-delimited element's body
	seqFailed
)

// SequenceDecoder is the per-sequence pull-parser state machine (spec
// §4.6): a homogeneous, length-delimited run of elements sharing one wire
// type, decoded without any per-element field header (sequences carry no
// tags, only values).
type SequenceDecoder struct {
	state       seqState
	elementType wire.Type
	remaining   uint64 // bytes remaining in the whole sequence body
	elemLeft    uint64 // bytes remaining in the current length-delimited element

	hasher *verihash.SequenceHasher
}

// NewSequenceDecoder constructs a SequenceDecoder for bodyLen bytes of
// elementType-typed elements. hasher may be nil to decode without
// computing a Verihash digest.
func NewSequenceDecoder(elementType wire.Type, bodyLen uint64, hasher *verihash.SequenceHasher) (*SequenceDecoder, error) {
	if err := wire.CheckElementType(elementType); err != nil {
		return nil, err
	}
	return &SequenceDecoder{elementType: elementType, remaining: bodyLen, hasher: hasher}, nil
}

// Remaining reports how many body bytes are left undecoded.
func (s *SequenceDecoder) Remaining() uint64 {
	return s.remaining
}

// Done reports whether every element has been consumed.
func (s *SequenceDecoder) Done() bool {
	return s.state != seqFailed && s.remaining == 0 && s.state == seqReady
}

func (s *SequenceDecoder) fail(err error) error {
	s.state = seqFailed
	return err
}

func (s *SequenceDecoder) checkAlive() error {
	if s.state == seqFailed {
		return verror.New(verror.Failed)
	}
	return nil
}

// next decodes one element into an Event, tracking elemLeft for
// length-delimited element types across repeated calls.
func (s *SequenceDecoder) next(input *[]byte) (*Event, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	if s.remaining == 0 {
		return nil, s.fail(verror.New(verror.Failed))
	}

	switch s.elementType {
	case wire.UInt64:
		v, n, err := vint64.Decode(*input)
		if err != nil {
			return nil, s.fail(err)
		}
		*input = (*input)[n:]
		s.remaining -= uint64(n)
		if s.hasher != nil {
			if err := s.hasher.HandleScalarUInt64(v); err != nil {
				return nil, s.fail(err)
			}
		}
		return &Event{Kind: EventUInt64, UInt64: v}, nil

	case wire.SInt64:
		v, n, err := vint64.DecodeSigned(*input)
		if err != nil {
			return nil, s.fail(err)
		}
		*input = (*input)[n:]
		s.remaining -= uint64(n)
		if s.hasher != nil {
			if err := s.hasher.HandleScalarSInt64(v); err != nil {
				return nil, s.fail(err)
			}
		}
		return &Event{Kind: EventSInt64, SInt64: v}, nil

	case wire.Bytes, wire.String, wire.Message:
		if s.state != seqElement {
			length, n, err := vint64.Decode(*input)
			if err != nil {
				return nil, s.fail(err)
			}
			*input = (*input)[n:]
			s.remaining -= uint64(n)
			if s.hasher != nil {
				if err := s.hasher.HandleElementLength(length); err != nil {
					return nil, s.fail(err)
				}
			}
			s.elemLeft = length
			if length > 0 {
				s.state = seqElement
			}
			return &Event{Kind: EventLengthDelimiter, WireType: s.elementType, Length: length}, nil
		}

		avail := uint64(len(*input))
		if avail == 0 && s.elemLeft > 0 {
			return nil, s.fail(verror.TruncatedAt(s.elementType.String(), int(s.elemLeft)))
		}
		n := s.elemLeft
		if avail < n {
			n = avail
		}
		chunk := (*input)[:n]
		*input = (*input)[n:]
		s.remaining -= n
		s.elemLeft -= n
		if s.elementType != wire.Message && s.hasher != nil {
			if err := s.hasher.HandleValueChunk(chunk); err != nil {
				return nil, s.fail(err)
			}
		}
		if s.elemLeft == 0 {
			s.state = seqReady
		}
		return &Event{Kind: EventValueChunk, Chunk: chunk, Remaining: s.elemLeft}, nil

	default:
		return nil, s.fail(verror.New(verror.InvalidWireType))
	}
}

// NextUInt64 decodes the next UInt64 element.
func (s *SequenceDecoder) NextUInt64(input *[]byte) (uint64, error) {
	ev, err := s.next(input)
	if err != nil {
		return 0, err
	}
	return ev.UInt64, nil
}

// NextSInt64 decodes the next SInt64 element.
func (s *SequenceDecoder) NextSInt64(input *[]byte) (int64, error) {
	ev, err := s.next(input)
	if err != nil {
		return 0, err
	}
	return ev.SInt64, nil
}

func (s *SequenceDecoder) nextLengthDelimited(input *[]byte) ([]byte, error) {
	lenEv, err := s.next(input)
	if err != nil {
		return nil, err
	}
	remaining := lenEv.Length
	var body []byte
	for remaining > 0 {
		ev, err := s.next(input)
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = ev.Chunk
		} else {
			body = append(body[:len(body):len(body)], ev.Chunk...)
		}
		remaining = ev.Remaining
	}
	return body, nil
}

// NextBytes decodes the next Bytes element, returning a zero-copy borrow
// of its body.
func (s *SequenceDecoder) NextBytes(input *[]byte) ([]byte, error) {
	if s.elementType != wire.Bytes {
		return nil, s.fail(verror.UnexpectedWireTypeAt(wire.Bytes.String(), s.elementType.String()))
	}
	return s.nextLengthDelimited(input)
}

// NextString decodes the next String element, validating its canonical
// form.
func (s *SequenceDecoder) NextString(input *[]byte) (string, error) {
	if s.elementType != wire.String {
		return "", s.fail(verror.UnexpectedWireTypeAt(wire.String.String(), s.elementType.String()))
	}
	body, err := s.nextLengthDelimited(input)
	if err != nil {
		return "", err
	}
	str := string(body)
	if err := wire.CheckCanonicalString(str); err != nil {
		return "", s.fail(err)
	}
	return str, nil
}

// NextMessageBody decodes the next Message element's length delimiter and
// returns a zero-copy borrow of its raw body, for the caller to recurse
// into with a fresh MessageDecoder frame.
func (s *SequenceDecoder) NextMessageBody(input *[]byte) ([]byte, error) {
	if s.elementType != wire.Message {
		return nil, s.fail(verror.UnexpectedWireTypeAt(wire.Message.String(), s.elementType.String()))
	}
	return s.nextLengthDelimited(input)
}

// FoldChildDigest feeds a nested message element's digest into this
// sequence's hasher in place of its raw body, closing out the element.
// No-op if this decoder has no hasher.
func (s *SequenceDecoder) FoldChildDigest(child verihash.Digest) error {
	if s.hasher == nil {
		return nil
	}
	if err := s.hasher.HandleMessageDigest(child); err != nil {
		return s.fail(err)
	}
	return nil
}

// ComputeDigest finalizes this decoder's hasher and returns the resulting
// digest. Legal only once every element has been consumed. Returns
// (Digest{}, false, nil) if no hasher is attached.
func (s *SequenceDecoder) ComputeDigest() (verihash.Digest, bool, error) {
	if s.hasher == nil {
		return verihash.Digest{}, false, nil
	}
	if s.remaining != 0 || s.state == seqElement {
		return verihash.Digest{}, false, verror.New(verror.Hashing)
	}
	digest, err := s.hasher.Finish()
	if err != nil {
		return verihash.Digest{}, false, err
	}
	return digest, true, nil
}

// SequenceIter is a type-directed iterator over a SequenceDecoder's
// scalar elements, generic over the element's Go type. It is built by the
// top-level Decoder's typed helpers (e.g. for a UInt64 sequence) rather
// than constructed directly.
type SequenceIter[T any] struct {
	seq     *SequenceDecoder
	input   *[]byte
	next    func(*SequenceDecoder, *[]byte) (T, error)
	onFinal func() error // folds this sequence's digest into its parent, once exhausted
	done    bool
}

// Next decodes and returns the next element, or reports ok=false once the
// sequence is exhausted. On the element that leaves the sequence with
// zero bytes remaining, Next also finalizes and folds this sequence's
// digest into its enclosing frame before returning — there is no
// destructor to hook in Go, so exhaustion is the natural point to do it
// (spec's "fold sequence digest into parent on drop", adapted).
func (it *SequenceIter[T]) Next() (value T, ok bool, err error) {
	if it.done {
		return value, false, nil
	}
	if it.seq.remaining == 0 {
		it.done = true
		if it.onFinal != nil {
			if err := it.onFinal(); err != nil {
				return value, false, err
			}
		}
		return value, false, nil
	}
	v, err := it.next(it.seq, it.input)
	if err != nil {
		return value, false, err
	}
	if it.seq.remaining == 0 {
		it.done = true
		if it.onFinal != nil {
			if err := it.onFinal(); err != nil {
				return v, true, err
			}
		}
	}
	return v, true, nil
}

// NewUInt64Iter builds a SequenceIter over a UInt64-typed sequence.
func NewUInt64Iter(seq *SequenceDecoder, input *[]byte, onFinal func() error) *SequenceIter[uint64] {
	return &SequenceIter[uint64]{seq: seq, input: input, onFinal: onFinal, next: (*SequenceDecoder).NextUInt64}
}

// NewSInt64Iter builds a SequenceIter over an SInt64-typed sequence.
func NewSInt64Iter(seq *SequenceDecoder, input *[]byte, onFinal func() error) *SequenceIter[int64] {
	return &SequenceIter[int64]{seq: seq, input: input, onFinal: onFinal, next: (*SequenceDecoder).NextSInt64}
}

// NewBytesIter builds a SequenceIter over a Bytes-typed sequence.
func NewBytesIter(seq *SequenceDecoder, input *[]byte, onFinal func() error) *SequenceIter[[]byte] {
	return &SequenceIter[[]byte]{seq: seq, input: input, onFinal: onFinal, next: (*SequenceDecoder).NextBytes}
}

// NewStringIter builds a SequenceIter over a String-typed sequence.
func NewStringIter(seq *SequenceDecoder, input *[]byte, onFinal func() error) *SequenceIter[string] {
	return &SequenceIter[string]{seq: seq, input: input, onFinal: onFinal, next: (*SequenceDecoder).NextString}
}
