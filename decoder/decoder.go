package decoder

import (
	"github.com/veriform-go/veriform/verihash"
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/wire"
)

// MaxDepth is the maximum nesting depth of messages and sequences a
// Decoder will follow before failing with verror.NestingDepth (spec
// §4.5, "a fixed recursion bound substitutes for the reference
// implementation's call-stack recursion").
const MaxDepth = 16

// Message is implemented by generated (or hand-written) veriform schema
// types. Decode is called with a fresh MessageDecoder scoped to exactly
// this message's body; it must consume input down to (but not past) the
// body's declared length, leaving any remaining bytes for the caller to
// reject as trailing data. The top-level Decoder is threaded through so a
// message with nested Message/Sequence fields can recurse via
// DecodeMessage or the Decoder.*Sequence helpers; a leaf message with
// only scalar fields simply ignores it.
type Message interface {
	Decode(d *Decoder, md *MessageDecoder, input *[]byte) error
}

// frame is one level of the nesting stack: the byte offset (within its
// own parent) at which this level's body began, used to fold a
// propagating error's position into the parent's coordinate space on
// pop. The decoder instance itself lives in the caller's local variable;
// the stack only needs to track depth and offset.
type frame struct {
	baseOffset int
}

// Decoder is the top-level entry point for decoding a veriform message
// from a byte slice: it owns a bounded stack of MessageDecoder/
// SequenceDecoder frames (spec §4.5) so that Options (hashing algorithm,
// whether to compute a digest at all) are configured once, at the root,
// and apply uniformly to every nested frame.
type Decoder struct {
	withDigest        bool
	algorithm         string
	registry          *verihash.Registry
	skipUnknownFields bool

	stack []frame
}

// Option configures a Decoder at construction time, in the teacher's
// functional-options idiom.
type Option func(*Decoder)

// WithDigest enables Verihash digest computation using algorithm (e.g.
// verihash.SHA256), looked up in reg (verihash.Default if reg is nil).
func WithDigest(algorithm string, reg *verihash.Registry) Option {
	return func(d *Decoder) {
		d.withDigest = true
		d.algorithm = algorithm
		if reg != nil {
			d.registry = reg
		}
	}
}

// WithSkipUnknownFields is a forward-compat stub (see
// MessageDecoder.skipUnknownFields): setting it true does not yet change
// decode behavior, since the reference decoder has no skip semantics for
// non-critical unknown fields today. Reserved so the option can be
// honored later without breaking callers who already set it.
func WithSkipUnknownFields(skip bool) Option {
	return func(d *Decoder) {
		d.skipUnknownFields = skip
	}
}

// New constructs a Decoder with the given options applied.
func New(opts ...Option) *Decoder {
	d := &Decoder{registry: verihash.Default}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) newMessageDecoder() (*MessageDecoder, error) {
	if !d.withDigest {
		md := NewMessageDecoder(nil)
		md.skipUnknownFields = d.skipUnknownFields
		return md, nil
	}
	h, err := verihash.NewMessageHasher(d.registry, d.algorithm)
	if err != nil {
		return nil, err
	}
	md := NewMessageDecoder(h)
	md.skipUnknownFields = d.skipUnknownFields
	return md, nil
}

func (d *Decoder) newSequenceDecoder(elementType wire.Type, bodyLen uint64) (*SequenceDecoder, error) {
	if !d.withDigest {
		return NewSequenceDecoder(elementType, bodyLen, nil)
	}
	h, err := verihash.NewSequenceHasher(d.registry, d.algorithm, elementType)
	if err != nil {
		return nil, err
	}
	return NewSequenceDecoder(elementType, bodyLen, h)
}

func (d *Decoder) push(baseOffset int) error {
	if len(d.stack) >= MaxDepth {
		return verror.New(verror.NestingDepth)
	}
	d.stack = append(d.stack, frame{baseOffset: baseOffset})
	return nil
}

func (d *Decoder) pop() frame {
	n := len(d.stack) - 1
	f := d.stack[n]
	d.stack = d.stack[:n]
	return f
}

// propagate annotates err with the current frame's baseOffset before
// popping, chaining cumulative position across nested frames as the
// stack unwinds (spec §7).
func (d *Decoder) propagate(err error) error {
	if verr, ok := err.(*verror.Error); ok && len(d.stack) > 0 {
		top := d.stack[len(d.stack)-1]
		return verr.WithPosition(top.baseOffset)
	}
	return err
}

// Decode parses the root message from input directly — unlike a nested
// message, the root has no enclosing field header or length prefix; the
// entire input is its body (spec's concrete scenario of a top-level
// Decode entry point).
func Decode[M Message](d *Decoder, input []byte, msg M) error {
	_, err := DecodeWithDigest(d, input, msg)
	return err
}

// DecodeWithDigest is Decode's counterpart for callers that configured d
// with WithDigest and want the root message's Verihash digest. The
// returned digest is the zero Digest if d was not configured to hash.
func DecodeWithDigest[M Message](d *Decoder, input []byte, msg M) (verihash.Digest, error) {
	md, err := d.newMessageDecoder()
	if err != nil {
		return verihash.Digest{}, err
	}
	if err := d.push(0); err != nil {
		return verihash.Digest{}, err
	}
	defer d.pop()

	body := input
	if err := msg.Decode(d, md, &body); err != nil {
		return verihash.Digest{}, d.propagate(err)
	}
	if err := RequireExhausted(body); err != nil {
		return verihash.Digest{}, d.propagate(err)
	}
	digest, _, err := md.ComputeDigest()
	if err != nil {
		return verihash.Digest{}, d.propagate(err)
	}
	return digest, nil
}

// DecodeMessage decodes a nested message field: it expects (and consumes)
// a field header for tag with wire type Message from the parent decoder,
// recurses into the nested body with a fresh MessageDecoder frame, and
// folds the child's digest (if any) back into the parent's transcript.
//
// M is the concrete schema type; PM is its pointer type, which must
// implement Message and is used to construct the returned value (the
// generic analogue of a derive macro's generated decode dispatch, since
// per-field code generation is out of scope here).
func DecodeMessage[M any, PM interface {
	*M
	Message
}](d *Decoder, parent *MessageDecoder, input *[]byte, tag uint64) (M, error) {
	var zero M
	body, err := parent.DecodeMessageBody(input, tag)
	if err != nil {
		return zero, err
	}

	md, err := d.newMessageDecoder()
	if err != nil {
		return zero, err
	}
	if err := d.push(parent.Position() - len(body)); err != nil {
		return zero, err
	}

	var out M
	rest := body
	decodeErr := PM(&out).Decode(d, md, &rest)
	if decodeErr == nil {
		decodeErr = RequireExhausted(rest)
	}
	var digest verihash.Digest
	var has bool
	if decodeErr == nil {
		digest, has, decodeErr = md.ComputeDigest()
	}
	if decodeErr != nil {
		err := d.propagate(decodeErr)
		d.pop()
		return zero, err
	}
	d.pop()

	if has {
		if err := parent.FoldChildDigest(digest, false); err != nil {
			return zero, err
		}
	}
	return out, nil
}

// UInt64Sequence decodes a homogeneous UInt64 sequence field from parent,
// returning every element as a slice (not a streaming iterator) for
// callers that want the whole run eagerly.
func (d *Decoder) UInt64Sequence(parent *MessageDecoder, input *[]byte, tag uint64) ([]uint64, error) {
	sh, body, err := parent.DecodeSequenceBody(input, tag)
	if err != nil {
		return nil, err
	}
	if sh.ElementType != wire.UInt64 {
		return nil, verror.UnexpectedWireTypeAt(wire.UInt64.String(), sh.ElementType.String())
	}
	seq, err := d.newSequenceDecoder(wire.UInt64, sh.BodyLen)
	if err != nil {
		return nil, err
	}
	if err := d.push(parent.Position()); err != nil {
		return nil, err
	}
	defer d.pop()

	rest := body
	var out []uint64
	it := NewUInt64Iter(seq, &rest, nil)
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, d.propagate(err)
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	digest, has, err := seq.ComputeDigest()
	if err != nil {
		return nil, d.propagate(err)
	}
	if has {
		if err := parent.FoldChildDigest(digest, true); err != nil {
			return nil, d.propagate(err)
		}
	}
	return out, nil
}

// SInt64Sequence decodes a homogeneous SInt64 sequence field eagerly.
func (d *Decoder) SInt64Sequence(parent *MessageDecoder, input *[]byte, tag uint64) ([]int64, error) {
	sh, body, err := parent.DecodeSequenceBody(input, tag)
	if err != nil {
		return nil, err
	}
	if sh.ElementType != wire.SInt64 {
		return nil, verror.UnexpectedWireTypeAt(wire.SInt64.String(), sh.ElementType.String())
	}
	seq, err := d.newSequenceDecoder(wire.SInt64, sh.BodyLen)
	if err != nil {
		return nil, err
	}
	if err := d.push(parent.Position()); err != nil {
		return nil, err
	}
	defer d.pop()

	rest := body
	var out []int64
	it := NewSInt64Iter(seq, &rest, nil)
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, d.propagate(err)
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	digest, has, err := seq.ComputeDigest()
	if err != nil {
		return nil, d.propagate(err)
	}
	if has {
		if err := parent.FoldChildDigest(digest, true); err != nil {
			return nil, d.propagate(err)
		}
	}
	return out, nil
}

// BytesSequence decodes a homogeneous Bytes sequence field eagerly, each
// element a zero-copy borrow into the original input.
func (d *Decoder) BytesSequence(parent *MessageDecoder, input *[]byte, tag uint64) ([][]byte, error) {
	sh, body, err := parent.DecodeSequenceBody(input, tag)
	if err != nil {
		return nil, err
	}
	if sh.ElementType != wire.Bytes {
		return nil, verror.UnexpectedWireTypeAt(wire.Bytes.String(), sh.ElementType.String())
	}
	seq, err := d.newSequenceDecoder(wire.Bytes, sh.BodyLen)
	if err != nil {
		return nil, err
	}
	if err := d.push(parent.Position()); err != nil {
		return nil, err
	}
	defer d.pop()

	rest := body
	var out [][]byte
	it := NewBytesIter(seq, &rest, nil)
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, d.propagate(err)
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	digest, has, err := seq.ComputeDigest()
	if err != nil {
		return nil, d.propagate(err)
	}
	if has {
		if err := parent.FoldChildDigest(digest, true); err != nil {
			return nil, d.propagate(err)
		}
	}
	return out, nil
}

// StringSequence decodes a homogeneous String sequence field eagerly.
func (d *Decoder) StringSequence(parent *MessageDecoder, input *[]byte, tag uint64) ([]string, error) {
	sh, body, err := parent.DecodeSequenceBody(input, tag)
	if err != nil {
		return nil, err
	}
	if sh.ElementType != wire.String {
		return nil, verror.UnexpectedWireTypeAt(wire.String.String(), sh.ElementType.String())
	}
	seq, err := d.newSequenceDecoder(wire.String, sh.BodyLen)
	if err != nil {
		return nil, err
	}
	if err := d.push(parent.Position()); err != nil {
		return nil, err
	}
	defer d.pop()

	rest := body
	var out []string
	it := NewStringIter(seq, &rest, nil)
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, d.propagate(err)
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	digest, has, err := seq.ComputeDigest()
	if err != nil {
		return nil, d.propagate(err)
	}
	if has {
		if err := parent.FoldChildDigest(digest, true); err != nil {
			return nil, d.propagate(err)
		}
	}
	return out, nil
}
