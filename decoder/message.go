package decoder

import (
	"github.com/veriform-go/veriform/verihash"
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/vint64"
	"github.com/veriform-go/veriform/wire"
)

type msgState int

const (
	stateReadHeader msgState = iota
	stateReadValue
	stateReadBody
	stateFailed
)

// MessageDecoder is the per-message pull-parser state machine (spec
// §4.4). It tracks tag monotonicity and cumulative position for one
// message's field stream, optionally driving a verihash.MessageHasher in
// lockstep with the events it emits.
//
// A MessageDecoder is poisoned permanently on the first error: once any
// method returns a non-nil error, every subsequent call also fails with
// verror.Failed (spec §4.9).
type MessageDecoder struct {
	state msgState

	hasLastTag bool
	lastTag    uint64
	position   int

	pendingHeader wire.Header

	bodyWireType  wire.Type
	bodyRemaining uint64

	hasher *verihash.MessageHasher

	// skipUnknownFields is a forward-compat stub: the reference decoder
	// currently errors on every unrecognized tag regardless of the
	// critical bit, and this flag doesn't yet change that. It exists so
	// callers can opt in once skip semantics for non-critical unknown
	// fields land, without an API break.
	skipUnknownFields bool
}

// NewMessageDecoder constructs a MessageDecoder. hasher may be nil to
// decode without computing a Verihash digest.
func NewMessageDecoder(hasher *verihash.MessageHasher) *MessageDecoder {
	return &MessageDecoder{hasher: hasher}
}

// Position returns the cumulative number of input bytes consumed by this
// message so far.
func (d *MessageDecoder) Position() int {
	return d.position
}

// AtFieldBoundary reports whether the decoder is positioned to read the
// next field header (i.e. no field is partially decoded).
func (d *MessageDecoder) AtFieldBoundary() bool {
	return d.state == stateReadHeader
}

func (d *MessageDecoder) fail(err error) error {
	d.state = stateFailed
	return err
}

func (d *MessageDecoder) checkAlive() error {
	if d.state == stateFailed {
		return verror.New(verror.Failed)
	}
	return nil
}

// Decode advances the state machine by one step, consuming bytes from the
// front of *input as needed and returning the event produced. Decode
// always returns a non-nil event on success; for a boolean field the Bool
// event is produced without consuming any bytes beyond the header already
// read.
func (d *MessageDecoder) Decode(input *[]byte) (*Event, error) {
	if err := d.checkAlive(); err != nil {
		return nil, err
	}

	switch d.state {
	case stateReadHeader:
		return d.decodeHeader(input)
	case stateReadValue:
		return d.decodeValue(input)
	case stateReadBody:
		return d.decodeBodyChunk(input)
	default:
		return nil, d.fail(verror.New(verror.Failed))
	}
}

func (d *MessageDecoder) decodeHeader(input *[]byte) (*Event, error) {
	h, n, err := wire.DecodeHeaderBytes(*input)
	if err != nil {
		return nil, d.fail(verror.Decodef(verror.ElementTag))
	}
	if d.hasLastTag && h.Tag <= d.lastTag {
		return nil, d.fail(verror.OrderAt(h.Tag))
	}
	d.hasLastTag = true
	d.lastTag = h.Tag
	*input = (*input)[n:]
	d.position += n

	if d.hasher != nil {
		if err := d.hasher.HandleFieldHeader(h); err != nil {
			return nil, d.fail(err)
		}
	}

	d.pendingHeader = h
	d.state = stateReadValue
	return &Event{Kind: EventFieldHeader, Header: h}, nil
}

func (d *MessageDecoder) decodeValue(input *[]byte) (*Event, error) {
	wt := d.pendingHeader.Type
	switch wt {
	case wire.False, wire.True:
		b := wt == wire.True
		if d.hasher != nil {
			if err := d.hasher.HandleBool(b); err != nil {
				return nil, d.fail(err)
			}
		}
		d.state = stateReadHeader
		return &Event{Kind: EventBool, Bool: b}, nil

	case wire.UInt64:
		v, n, err := vint64.Decode(*input)
		if err != nil {
			return nil, d.fail(err)
		}
		*input = (*input)[n:]
		d.position += n
		if d.hasher != nil {
			if err := d.hasher.HandleUInt64(v); err != nil {
				return nil, d.fail(err)
			}
		}
		d.state = stateReadHeader
		return &Event{Kind: EventUInt64, UInt64: v}, nil

	case wire.SInt64:
		v, n, err := vint64.DecodeSigned(*input)
		if err != nil {
			return nil, d.fail(err)
		}
		*input = (*input)[n:]
		d.position += n
		if d.hasher != nil {
			if err := d.hasher.HandleSInt64(v); err != nil {
				return nil, d.fail(err)
			}
		}
		d.state = stateReadHeader
		return &Event{Kind: EventSInt64, SInt64: v}, nil

	case wire.Bytes, wire.String, wire.Message:
		length, n, err := vint64.Decode(*input)
		if err != nil {
			return nil, d.fail(err)
		}
		*input = (*input)[n:]
		d.position += n
		if d.hasher != nil {
			if err := d.hasher.HandleLengthDelimiter(wt, length); err != nil {
				return nil, d.fail(err)
			}
		}
		if length > 0 {
			d.bodyWireType = wt
			d.bodyRemaining = length
			d.state = stateReadBody
		} else {
			d.state = stateReadHeader
		}
		return &Event{Kind: EventLengthDelimiter, WireType: wt, Length: length}, nil

	case wire.Sequence:
		v, n, err := vint64.Decode(*input)
		if err != nil {
			return nil, d.fail(err)
		}
		sh := wire.DecodeSequenceHeader(v)
		if err := wire.CheckElementType(sh.ElementType); err != nil {
			return nil, d.fail(err)
		}
		*input = (*input)[n:]
		d.position += n
		if d.hasher != nil {
			if err := d.hasher.HandleSequenceHeader(sh); err != nil {
				return nil, d.fail(err)
			}
		}
		if sh.BodyLen > 0 {
			d.bodyWireType = wire.Sequence
			d.bodyRemaining = sh.BodyLen
			d.state = stateReadBody
		} else {
			d.state = stateReadHeader
		}
		return &Event{Kind: EventSequenceHeader, SequenceHeader: sh}, nil

	default:
		return nil, d.fail(verror.New(verror.InvalidWireType))
	}
}

func (d *MessageDecoder) decodeBodyChunk(input *[]byte) (*Event, error) {
	avail := uint64(len(*input))
	if avail == 0 && d.bodyRemaining > 0 {
		return nil, d.fail(verror.TruncatedAt(d.bodyWireType.String(), int(d.bodyRemaining)))
	}
	n := d.bodyRemaining
	if avail < n {
		n = avail
	}
	chunk := (*input)[:n]
	*input = (*input)[n:]
	d.position += int(n)
	d.bodyRemaining -= n

	if d.hasher != nil {
		if err := d.hasher.HandleValueChunk(chunk); err != nil {
			return nil, d.fail(err)
		}
	}

	if d.bodyRemaining == 0 {
		d.state = stateReadHeader
	}
	return &Event{Kind: EventValueChunk, Chunk: chunk, Remaining: d.bodyRemaining}, nil
}

// ExpectHeader reads the next field header and requires it to exactly
// match tag and wt, failing with verror.UnexpectedWireType (wire type
// mismatch) or verror.Order/verror.Decode (tag problems) otherwise.
func (d *MessageDecoder) ExpectHeader(input *[]byte, tag uint64, wt wire.Type) error {
	ev, err := d.Decode(input)
	if err != nil {
		return err
	}
	if ev.Header.Tag != tag {
		return d.fail(verror.Decodef(verror.ElementTag))
	}
	if ev.Header.Type != wt {
		return d.fail(verror.UnexpectedWireTypeAt(wt.String(), ev.Header.Type.String()))
	}
	return nil
}

// DecodeUint64 reads a field header for tag (expecting wire.UInt64) and
// its scalar value.
func (d *MessageDecoder) DecodeUint64(input *[]byte, tag uint64) (uint64, error) {
	if err := d.ExpectHeader(input, tag, wire.UInt64); err != nil {
		return 0, err
	}
	ev, err := d.Decode(input)
	if err != nil {
		return 0, err
	}
	return ev.UInt64, nil
}

// DecodeSInt64 reads a field header for tag (expecting wire.SInt64) and
// its scalar value.
func (d *MessageDecoder) DecodeSInt64(input *[]byte, tag uint64) (int64, error) {
	if err := d.ExpectHeader(input, tag, wire.SInt64); err != nil {
		return 0, err
	}
	ev, err := d.Decode(input)
	if err != nil {
		return 0, err
	}
	return ev.SInt64, nil
}

// DecodeBool reads a field header for tag (expecting wire.False/wire.True)
// and its implied boolean value.
func (d *MessageDecoder) DecodeBool(input *[]byte, tag uint64) (bool, error) {
	ev, err := d.Decode(input)
	if err != nil {
		return false, err
	}
	if ev.Header.Tag != tag {
		return false, d.fail(verror.Decodef(verror.ElementTag))
	}
	if ev.Header.Type != wire.False && ev.Header.Type != wire.True {
		return false, d.fail(verror.UnexpectedWireTypeAt("bool", ev.Header.Type.String()))
	}
	boolEv, err := d.Decode(input)
	if err != nil {
		return false, err
	}
	return boolEv.Bool, nil
}

func (d *MessageDecoder) decodeLengthDelimitedBody(input *[]byte, tag uint64, wt wire.Type) ([]byte, error) {
	if err := d.ExpectHeader(input, tag, wt); err != nil {
		return nil, err
	}
	lenEv, err := d.Decode(input)
	if err != nil {
		return nil, err
	}
	remaining := lenEv.Length
	var body []byte
	for remaining > 0 {
		ev, err := d.Decode(input)
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

// DecodeBytes reads a field header for tag (expecting wire.Bytes) and
// returns a zero-copy borrow of its body.
func (d *MessageDecoder) DecodeBytes(input *[]byte, tag uint64) ([]byte, error) {
	return d.decodeLengthDelimitedBody(input, tag, wire.Bytes)
}

// DecodeString reads a field header for tag (expecting wire.String),
// validates its canonical-subset form, and returns it as a string. The
// string is a copy of the body bytes, not a borrow of the input.
func (d *MessageDecoder) DecodeString(input *[]byte, tag uint64) (string, error) {
	body, err := d.decodeLengthDelimitedBody(input, tag, wire.String)
	if err != nil {
		return "", err
	}
	s := string(body)
	if err := wire.CheckCanonicalString(s); err != nil {
		return "", d.fail(err)
	}
	return s, nil
}

// DecodeMessageBody reads a field header for tag (expecting wire.Message)
// and returns a zero-copy borrow of the nested message's raw body, for
// the caller (the top-level Decoder) to recurse into with a fresh
// MessageDecoder frame.
func (d *MessageDecoder) DecodeMessageBody(input *[]byte, tag uint64) ([]byte, error) {
	return d.decodeLengthDelimitedBody(input, tag, wire.Message)
}

// DecodeSequenceBody reads a field header for tag (expecting
// wire.Sequence) and returns the sequence header plus a zero-copy borrow
// of its raw body, for the caller to drive with a SequenceDecoder.
func (d *MessageDecoder) DecodeSequenceBody(input *[]byte, tag uint64) (wire.SequenceHeader, []byte, error) {
	if err := d.ExpectHeader(input, tag, wire.Sequence); err != nil {
		return wire.SequenceHeader{}, nil, err
	}
	headerEv, err := d.Decode(input)
	if err != nil {
		return wire.SequenceHeader{}, nil, err
	}
	sh := headerEv.SequenceHeader
	remaining := sh.BodyLen
	var body []byte
	for remaining > 0 {
		ev, err := d.Decode(input)
		if err != nil {
			return wire.SequenceHeader{}, nil, err
		}
		if body == nil {
			body = ev.Chunk
		} else {
			body = append(body[:len(body):len(body)], ev.Chunk...)
		}
		remaining = ev.Remaining
	}
	return sh, body, nil
}

// FoldChildDigest feeds the child message/sequence's digest into this
// decoder's hasher in place of its raw body, closing out the field (spec
// §4.7: "nested digests can stand in for nested bodies"). The body's
// bytes were already accounted into the hasher chunk-by-chunk as they
// streamed through decodeLengthDelimitedBody; only the closing digest
// call remains. No-op if this decoder has no hasher.
func (d *MessageDecoder) FoldChildDigest(child verihash.Digest, isSequence bool) error {
	if d.hasher == nil {
		return nil
	}
	var err error
	if isSequence {
		err = d.hasher.HandleSequenceDigest(child)
	} else {
		err = d.hasher.HandleMessageDigest(child)
	}
	if err != nil {
		return d.fail(err)
	}
	return nil
}

// ComputeDigest finalizes this decoder's hasher and returns the resulting
// digest. Legal only at a field boundary (spec §4.4: "only legal at
// ReadHeader"). Returns (Digest{}, false, nil) if no hasher is attached.
func (d *MessageDecoder) ComputeDigest() (verihash.Digest, bool, error) {
	if err := d.checkAlive(); err != nil {
		return verihash.Digest{}, false, err
	}
	if d.hasher == nil {
		return verihash.Digest{}, false, nil
	}
	if d.state != stateReadHeader {
		return verihash.Digest{}, false, d.fail(verror.New(verror.Hashing))
	}
	digest, err := d.hasher.Finish()
	if err != nil {
		return verihash.Digest{}, false, d.fail(err)
	}
	return digest, true, nil
}

// RequireExhausted fails with verror.TrailingData if input still holds
// bytes after the caller believes it has read every field.
func RequireExhausted(input []byte) error {
	if len(input) != 0 {
		return verror.New(verror.TrailingData)
	}
	return nil
}
