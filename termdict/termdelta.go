package termdict

// termDeltaEncoder incrementally encodes each inserted key as a
// (common_prefix_length, suffix) pair relative to the previously emitted
// key, so consecutive keys that share a long prefix cost almost nothing on
// the wire. It owns a growable buffer holding the last-emitted key; encode
// mutates that buffer in place to become the new key.
type termDeltaEncoder struct {
	last []byte
}

func newTermDeltaEncoder() *termDeltaEncoder {
	return &termDeltaEncoder{}
}

// reset clears the encoder's notion of the previous key. Called at the
// start of every block so each block can be decoded independently of the
// ones before it.
func (e *termDeltaEncoder) reset() {
	e.last = e.last[:0]
}

// encode returns the longest-common-prefix length between newKey and the
// previously encoded key, and the suffix of newKey past that prefix. The
// returned suffix aliases the encoder's internal buffer and is only valid
// until the next call to encode or reset.
func (e *termDeltaEncoder) encode(newKey []byte) (prefixLen int, suffix []byte) {
	prefixLen = commonPrefixLen(e.last, newKey)

	e.last = append(e.last[:prefixLen], newKey[prefixLen:]...)
	return prefixLen, e.last[prefixLen:]
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// termDeltaDecoder is the encoder's mirror image: it rebuilds each key by
// truncating its buffer to the given prefix length and appending the
// decoded suffix.
type termDeltaDecoder struct {
	buf []byte
}

func newTermDeltaDecoder() *termDeltaDecoder {
	return &termDeltaDecoder{}
}

// reset clears the decoder's buffer. Called on entry to a new block,
// mirroring termDeltaEncoder.reset.
func (d *termDeltaDecoder) reset() {
	d.buf = d.buf[:0]
}

// decode truncates the buffer to prefixLen and appends suffix; the full
// resulting buffer is the current key. The returned slice aliases the
// decoder's internal buffer and is only valid until the next call to decode
// or reset.
func (d *termDeltaDecoder) decode(prefixLen int, suffix []byte) []byte {
	d.buf = append(d.buf[:prefixLen], suffix...)
	return d.buf
}

// current returns the most recently decoded key without advancing anything.
func (d *termDeltaDecoder) current() []byte {
	return d.buf
}
