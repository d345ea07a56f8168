// Package encoder implements the write side of veriform: a cursor-style
// Buffer that appends field headers and values in strictly increasing
// tag order, mirroring the teacher's codec.Buffer write-side methods
// (EncodeVarint, EncodeTagAndWireType, EncodeRawBytes, EncodeFixed64,
// EncodeZigZag64) but generalized from protobuf's implicit wire stream to
// veriform's explicit field-header + canonical-vint64 scheme.
package encoder

import (
	"github.com/veriform-go/veriform/verihash"
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/vint64"
	"github.com/veriform-go/veriform/wire"
)

// Buffer accumulates an encoded veriform message body. Unlike the
// teacher's Buffer, which wraps a pre-allocated []byte and a read/write
// cursor, Buffer here is purely append-only: veriform's zero-copy
// decoding guarantee has no write-side analogue, so there is nothing to
// gain from a cursor over caller-owned memory on encode.
type Buffer struct {
	out []byte

	hasLastTag bool
	lastTag    uint64

	hasher    *verihash.MessageHasher
	algorithm string
	registry  *verihash.Registry
}

// Option configures a Buffer at construction time.
type Option func(*Buffer)

// WithDigest enables Verihash digest computation over this buffer's
// transcript using algorithm, looked up in reg (verihash.Default if reg
// is nil). The algorithm and registry are retained on the Buffer (not
// just its hasher) so that Message and Sequence can spawn children that
// hash with the same configuration, without the caller needing to thread
// WithDigest through every nested Encode call by hand.
func WithDigest(algorithm string, reg *verihash.Registry) Option {
	return func(b *Buffer) {
		if reg == nil {
			reg = verihash.Default
		}
		h, err := verihash.NewMessageHasher(reg, algorithm)
		if err == nil {
			b.hasher = h
			b.algorithm = algorithm
			b.registry = reg
		}
	}
}

// child constructs a Buffer that inherits this Buffer's hashing
// configuration, used internally by Message and Sequence so a nested
// schema type's Encode method never needs to know whether (or how) its
// parent is hashing.
func (b *Buffer) child() *Buffer {
	if b.hasher == nil {
		return NewBuffer()
	}
	return NewBuffer(WithDigest(b.algorithm, b.registry))
}

// NewBuffer constructs an empty Buffer with the given options applied.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bytes returns the accumulated encoded bytes.
func (b *Buffer) Bytes() []byte {
	return b.out
}

// Len returns the number of bytes accumulated so far.
func (b *Buffer) Len() int {
	return len(b.out)
}

func (b *Buffer) checkTag(tag uint64) error {
	if b.hasLastTag && tag <= b.lastTag {
		return verror.OrderAt(tag)
	}
	b.hasLastTag = true
	b.lastTag = tag
	return nil
}

func (b *Buffer) writeHeader(h wire.Header) error {
	if err := b.checkTag(h.Tag); err != nil {
		return err
	}
	b.out = h.AppendEncode(b.out)
	if b.hasher != nil {
		if err := b.hasher.HandleFieldHeader(h); err != nil {
			return err
		}
	}
	return nil
}

// Bool appends a boolean field.
func (b *Buffer) Bool(tag uint64, v bool) error {
	wt := wire.False
	if v {
		wt = wire.True
	}
	if err := b.writeHeader(wire.Header{Tag: tag, Type: wt}); err != nil {
		return err
	}
	if b.hasher != nil {
		if err := b.hasher.HandleBool(v); err != nil {
			return err
		}
	}
	return nil
}

// UInt64 appends an unsigned integer field.
func (b *Buffer) UInt64(tag uint64, v uint64) error {
	if err := b.writeHeader(wire.Header{Tag: tag, Type: wire.UInt64}); err != nil {
		return err
	}
	b.out = vint64.AppendEncode(b.out, v)
	if b.hasher != nil {
		if err := b.hasher.HandleUInt64(v); err != nil {
			return err
		}
	}
	return nil
}

// SInt64 appends a signed integer field, zigzag-mapped on the wire.
func (b *Buffer) SInt64(tag uint64, v int64) error {
	if err := b.writeHeader(wire.Header{Tag: tag, Type: wire.SInt64}); err != nil {
		return err
	}
	b.out = vint64.AppendEncodeSigned(b.out, v)
	if b.hasher != nil {
		if err := b.hasher.HandleSInt64(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) writeLengthDelimited(tag uint64, wt wire.Type, body []byte) error {
	if err := b.writeHeader(wire.Header{Tag: tag, Type: wt}); err != nil {
		return err
	}
	b.out = vint64.AppendEncode(b.out, uint64(len(body)))
	if b.hasher != nil {
		if err := b.hasher.HandleLengthDelimiter(wt, uint64(len(body))); err != nil {
			return err
		}
		if len(body) > 0 {
			if err := b.hasher.HandleValueChunk(body); err != nil {
				return err
			}
		}
	}
	b.out = append(b.out, body...)
	return nil
}

// BytesField appends a raw bytes field.
func (b *Buffer) BytesField(tag uint64, v []byte) error {
	return b.writeLengthDelimited(tag, wire.Bytes, v)
}

// String appends a string field. The caller is responsible for the value
// already being in veriform's canonical string subset; Buffer does not
// re-validate on encode.
func (b *Buffer) String(tag uint64, v string) error {
	return b.writeLengthDelimited(tag, wire.String, []byte(v))
}

// Message appends a nested message field at tag. encode builds the
// submessage's own field stream into a fresh child Buffer that inherits
// this Buffer's hashing configuration — the same relationship a nested
// schema type's Encode method has to its own fields, one level down —
// so a schema type can simply pass a sibling Message's Encode method
// here without knowing whether, or how, this Buffer is hashing. When
// hashing, the child's digest is computed internally and folded into
// this Buffer's own transcript in place of the raw body, the encode-side
// counterpart of the decoder's FoldChildDigest (spec §4.7's subtree-digest
// substitution applies symmetrically on encode).
func (b *Buffer) Message(tag uint64, encode func(*Buffer) error) error {
	child := b.child()
	if err := encode(child); err != nil {
		return err
	}
	body := child.Bytes()

	if err := b.writeHeader(wire.Header{Tag: tag, Type: wire.Message}); err != nil {
		return err
	}
	b.out = vint64.AppendEncode(b.out, uint64(len(body)))
	b.out = append(b.out, body...)
	if b.hasher != nil {
		if err := b.hasher.HandleLengthDelimiter(wire.Message, uint64(len(body))); err != nil {
			return err
		}
		if err := b.hasher.HandleValueChunk(body); err != nil {
			return err
		}
		digest, has, err := child.ComputeDigest()
		if err != nil {
			return err
		}
		if !has {
			return verror.New(verror.Hashing)
		}
		if err := b.hasher.HandleMessageDigest(digest); err != nil {
			return err
		}
	}
	return nil
}

// Sequence appends a homogeneous sequence field at tag. encode populates
// a SequenceBuilder one element at a time; the builder both accumulates
// the raw element body and, when this Buffer is hashing, drives its own
// SequenceHasher, mirroring how Message's child Buffer mirrors this
// Buffer's MessageHasher. Unlike Bytes/String/Message, a Sequence
// field's value is the sequence header vint64 (element type and body
// length) immediately followed by the element body — there is no
// further outer length prefix wrapping the two, since the sequence
// header already carries the body's length.
func (b *Buffer) Sequence(tag uint64, elementType wire.Type, encode func(*SequenceBuilder) error) error {
	sb := &SequenceBuilder{elementType: elementType}
	if b.hasher != nil {
		h, err := verihash.NewSequenceHasher(b.registry, b.algorithm, elementType)
		if err != nil {
			return err
		}
		sb.hasher = h
	}
	if err := encode(sb); err != nil {
		return err
	}

	if err := b.writeHeader(wire.Header{Tag: tag, Type: wire.Sequence}); err != nil {
		return err
	}
	sh := wire.SequenceHeader{BodyLen: uint64(len(sb.body)), ElementType: elementType}
	b.out = sh.AppendEncode(b.out)
	b.out = append(b.out, sb.body...)
	if b.hasher != nil {
		if err := b.hasher.HandleSequenceHeader(sh); err != nil {
			return err
		}
		if err := b.hasher.HandleValueChunk(sb.body); err != nil {
			return err
		}
		digest, err := sb.hasher.Finish()
		if err != nil {
			return err
		}
		if err := b.hasher.HandleSequenceDigest(digest); err != nil {
			return err
		}
	}
	return nil
}

// ComputeDigest finalizes this buffer's hasher and returns the resulting
// digest. Legal only between fields. Returns (Digest{}, false, nil) if no
// hasher is attached.
func (b *Buffer) ComputeDigest() (verihash.Digest, bool, error) {
	if b.hasher == nil {
		return verihash.Digest{}, false, nil
	}
	digest, err := b.hasher.Finish()
	if err != nil {
		return verihash.Digest{}, false, err
	}
	return digest, true, nil
}
