// Package verror defines the closed set of error kinds produced by the
// veriform codec. Every failure in vint64, wire, decoder, encoder, and
// verihash is represented as an *Error so callers can switch on Kind
// instead of matching sentinel values.
package verror

import "fmt"

// Kind identifies the category of a codec failure. The set is closed:
// new failure modes are not expected to be added casually, since every
// caller that inspects Kind needs to handle the full set.
type Kind int

const (
	// Builtin wraps a failure from a builtin message type's own decode
	// logic (outside the core, but plumbed through the same Error type).
	Builtin Kind = iota
	// Decode indicates a malformed structural element; see Element.
	Decode
	// Failed indicates the decoder has already failed and is permanently
	// poisoned (see §4.9 of the spec this implements).
	Failed
	// FieldHeader indicates a field header vint64 didn't decode to a
	// valid header (bad wire type, tag overflow, etc).
	FieldHeader
	// Hashing indicates the Verihash transcript FSM received an event
	// that doesn't match its current state.
	Hashing
	// InvalidWireType indicates an out-of-range wire type value.
	InvalidWireType
	// Length indicates the encoder's destination buffer is too small.
	Length
	// NestingDepth indicates the decoder's nesting stack would exceed
	// its fixed bound.
	NestingDepth
	// Order indicates a field tag did not strictly increase over the
	// previous field's tag within the same message.
	Order
	// TrailingData indicates bytes remained after a message or sequence
	// body was fully decoded.
	TrailingData
	// Truncated indicates a length-delimited value's declared length
	// did not fit within the remaining input.
	Truncated
	// UnexpectedWireType indicates a caller requested one wire type but
	// the header/sequence declared another.
	UnexpectedWireType
	// UnicodeNormalization indicates a string value failed the
	// canonical-subset check.
	UnicodeNormalization
	// Utf8 indicates a string value was not valid UTF-8 at all.
	Utf8
	// VInt64 indicates a non-canonical or truncated varint encoding.
	VInt64
)

// Element identifies which structural piece of a message a Decode error
// concerns.
type Element int

const (
	ElementTag Element = iota
	ElementLengthDelimiter
	ElementSequenceHeader
	ElementValue
)

func (e Element) String() string {
	switch e {
	case ElementTag:
		return "tag"
	case ElementLengthDelimiter:
		return "length delimiter"
	case ElementSequenceHeader:
		return "sequence header"
	case ElementValue:
		return "value"
	default:
		return "unknown element"
	}
}

func (k Kind) String() string {
	switch k {
	case Builtin:
		return "builtin"
	case Decode:
		return "decode"
	case Failed:
		return "failed"
	case FieldHeader:
		return "field header"
	case Hashing:
		return "hashing"
	case InvalidWireType:
		return "invalid wire type"
	case Length:
		return "length"
	case NestingDepth:
		return "nesting depth"
	case Order:
		return "order"
	case TrailingData:
		return "trailing data"
	case Truncated:
		return "truncated"
	case UnexpectedWireType:
		return "unexpected wire type"
	case UnicodeNormalization:
		return "unicode normalization"
	case Utf8:
		return "utf8"
	case VInt64:
		return "vint64"
	default:
		return "unknown error"
	}
}

// Error is the single error type produced throughout the codec. Only the
// fields relevant to Kind are populated; the rest remain zero values.
type Error struct {
	Kind Kind

	// Position is the cumulative byte offset within the enclosing
	// message at which the error occurred, when known.
	Position *int

	Tag       uint64
	WireType  string
	Element   Element
	Remaining int
	ValidUpTo int
	Wanted    string
	Actual    string

	// NonCanonical is set on VInt64 errors that are over-long encodings
	// rather than truncated input.
	NonCanonical bool

	// Wrapped holds an underlying cause, if any (e.g. a Builtin error
	// from a schema's own decode method).
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	switch e.Kind {
	case FieldHeader:
		if e.Tag != 0 {
			msg = fmt.Sprintf("%s: invalid field header for tag %d", msg, e.Tag)
		} else {
			msg = fmt.Sprintf("%s: could not decode field header", msg)
		}
	case Order:
		msg = fmt.Sprintf("%s: tag %d did not strictly increase", msg, e.Tag)
	case Decode:
		msg = fmt.Sprintf("%s: malformed %s", msg, e.Element)
	case Truncated:
		msg = fmt.Sprintf("%s: expected %d more byte(s) of %s", msg, e.Remaining, e.WireType)
	case UnexpectedWireType:
		msg = fmt.Sprintf("%s: wanted %s, got %s", msg, e.Wanted, e.Actual)
	case Utf8:
		msg = fmt.Sprintf("%s: invalid byte at offset %d", msg, e.ValidUpTo)
	case Builtin:
		if e.Wrapped != nil {
			msg = fmt.Sprintf("%s: %s", msg, e.Wrapped.Error())
		}
	case VInt64:
		if e.NonCanonical {
			msg = fmt.Sprintf("%s: over-long encoding (leading zeroes)", msg)
		} else {
			msg = fmt.Sprintf("%s: truncated, need %d more byte(s)", msg, e.Remaining)
		}
	}
	if e.Position != nil {
		msg = fmt.Sprintf("%s (position %d)", msg, *e.Position)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithPosition returns a shallow copy of e with Position set, used when a
// nested decoder's error propagates past a frame pop and needs the
// parent's cumulative offset folded in (spec §7: "nested errors extend
// the position on pop").
func (e *Error) WithPosition(parentOffset int) *Error {
	cp := *e
	pos := parentOffset
	if cp.Position != nil {
		pos += *cp.Position
	}
	cp.Position = &pos
	return &cp
}

func at(pos int) *int {
	return &pos
}

// New constructs a bare Error of the given kind with no metadata.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// NewAt constructs a bare Error of the given kind at a known position.
func NewAt(kind Kind, position int) *Error {
	return &Error{Kind: kind, Position: at(position)}
}

// Decodef builds a Decode error for a malformed structural element.
func Decodef(element Element) *Error {
	return &Error{Kind: Decode, Element: element}
}

// OrderAt builds an Order error reporting the offending tag.
func OrderAt(tag uint64) *Error {
	return &Error{Kind: Order, Tag: tag}
}

// TruncatedAt builds a Truncated error.
func TruncatedAt(wireType string, remaining int) *Error {
	return &Error{Kind: Truncated, WireType: wireType, Remaining: remaining}
}

// UnexpectedWireTypeAt builds an UnexpectedWireType error.
func UnexpectedWireTypeAt(wanted, actual string) *Error {
	return &Error{Kind: UnexpectedWireType, Wanted: wanted, Actual: actual}
}

// Utf8At builds a Utf8 error reporting the first invalid byte offset.
func Utf8At(validUpTo int) *Error {
	return &Error{Kind: Utf8, ValidUpTo: validUpTo}
}

// VInt64Truncated builds a VInt64 error for an incomplete varint.
func VInt64Truncated(remaining int) *Error {
	return &Error{Kind: VInt64, Remaining: remaining}
}

// VInt64NonCanonical builds a VInt64 error for an over-long encoding.
func VInt64NonCanonical() *Error {
	return &Error{Kind: VInt64, NonCanonical: true}
}
