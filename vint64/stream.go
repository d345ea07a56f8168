package vint64

// StreamDecoder buffers a single vint64 across successive chunks of input
// that may each be shorter than the value's full encoded length. It holds
// at most MaxLen bytes of carry state, so it never allocates.
//
// Once Feed returns a value (done == true) or an error, call Reset (or
// construct a new StreamDecoder) before feeding the next vint64.
type StreamDecoder struct {
	buf  [MaxLen]byte
	have int
	want int // 0 until the first byte has told us the total length
}

// Feed consumes bytes from the front of chunk, advancing past whatever it
// used. It returns done == true once a full vint64 has been buffered and
// decoded, in which case value holds the result. While the vint64 is still
// incomplete, Feed returns done == false and a nil error; the caller
// should supply more bytes in a subsequent call. Truncation at end of
// input is therefore never reported by Feed itself — only a canonicality
// violation can produce a non-nil error here.
func (d *StreamDecoder) Feed(chunk []byte) (value uint64, consumed int, done bool, err error) {
	for consumed < len(chunk) {
		b := chunk[consumed]
		if d.have == 0 {
			d.want = DecodedLen(b)
		}
		d.buf[d.have] = b
		d.have++
		consumed++

		if d.have == d.want {
			value, _, err = Decode(d.buf[:d.have])
			return value, consumed, true, err
		}
	}
	return 0, consumed, false, nil
}

// Reset clears any buffered state, allowing the StreamDecoder to be
// reused for another vint64.
func (d *StreamDecoder) Reset() {
	d.have = 0
	d.want = 0
}

// Pending reports how many bytes have been buffered so far for the
// in-progress vint64.
func (d *StreamDecoder) Pending() int {
	return d.have
}
