package encoder

import (
	"github.com/veriform-go/veriform/verihash"
	"github.com/veriform-go/veriform/verror"
	"github.com/veriform-go/veriform/vint64"
	"github.com/veriform-go/veriform/wire"
)

// SequenceBuilder accumulates the elements of one Sequence-typed field,
// passed to the callback given to Buffer.Sequence. It plays the same
// role for a sequence's elements that a child Buffer plays for a nested
// message's fields: it feeds each element into the raw body and, when
// the parent is hashing, into its own verihash.SequenceHasher, so the
// caller never touches the hasher directly.
type SequenceBuilder struct {
	elementType wire.Type
	body        []byte
	hasher      *verihash.SequenceHasher
}

func (sb *SequenceBuilder) checkElementType(wt wire.Type) error {
	if sb.elementType != wt {
		return verror.UnexpectedWireTypeAt(sb.elementType.String(), wt.String())
	}
	return nil
}

// UInt64 appends one unsigned scalar element. elementType must be UInt64.
func (sb *SequenceBuilder) UInt64(v uint64) error {
	if err := sb.checkElementType(wire.UInt64); err != nil {
		return err
	}
	sb.body = vint64.AppendEncode(sb.body, v)
	if sb.hasher != nil {
		return sb.hasher.HandleScalarUInt64(v)
	}
	return nil
}

// SInt64 appends one signed scalar element. elementType must be SInt64.
func (sb *SequenceBuilder) SInt64(v int64) error {
	if err := sb.checkElementType(wire.SInt64); err != nil {
		return err
	}
	sb.body = vint64.AppendEncodeSigned(sb.body, v)
	if sb.hasher != nil {
		return sb.hasher.HandleScalarSInt64(v)
	}
	return nil
}

func (sb *SequenceBuilder) lengthDelimited(wt wire.Type, v []byte) error {
	if err := sb.checkElementType(wt); err != nil {
		return err
	}
	sb.body = vint64.AppendEncode(sb.body, uint64(len(v)))
	sb.body = append(sb.body, v...)
	if sb.hasher != nil {
		if err := sb.hasher.HandleElementLength(uint64(len(v))); err != nil {
			return err
		}
		if len(v) > 0 {
			if err := sb.hasher.HandleValueChunk(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Bytes appends one raw-bytes element. elementType must be Bytes.
func (sb *SequenceBuilder) Bytes(v []byte) error {
	return sb.lengthDelimited(wire.Bytes, v)
}

// String appends one string element. elementType must be String; like
// Buffer.String, the caller is responsible for v already being in
// veriform's canonical string subset.
func (sb *SequenceBuilder) String(v string) error {
	return sb.lengthDelimited(wire.String, []byte(v))
}
