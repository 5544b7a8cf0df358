package termdict

// ReadOnlySource is an immutable byte range the dictionary reads from. It is
// deliberately the only IO abstraction this package depends on: callers are
// expected to hand in bytes already backed by a memory-mapped file or an
// owned in-memory buffer. Sub-slicing must be cheap (a view, not a copy) so
// a reader and its streamers can carve the footer, FST, checkpoint table and
// stream apart without ever copying the underlying bytes.
type ReadOnlySource interface {
	// Len reports the number of bytes in this source.
	Len() int

	// Bytes returns the full backing byte range as a slice. The returned
	// slice must not be mutated.
	Bytes() []byte

	// Slice returns the sub-range [from, to) as a new ReadOnlySource
	// sharing the same backing bytes.
	Slice(from, to int) ReadOnlySource

	// SliceFrom returns the sub-range [from, Len()).
	SliceFrom(from int) ReadOnlySource

	// Split divides the source into [0, at) and [at, Len()).
	Split(at int) (ReadOnlySource, ReadOnlySource)
}

// byteSliceSource is the simplest possible ReadOnlySource: a plain []byte.
// It is what a memory-mapped region degrades to in Go (mmap.Map returns a
// []byte), so it serves equally for anonymous in-memory buffers and for
// mmap'd files without any copying.
type byteSliceSource []byte

// NewByteSliceSource wraps data as a ReadOnlySource. data is never copied;
// the caller must not mutate it afterwards.
func NewByteSliceSource(data []byte) ReadOnlySource {
	return byteSliceSource(data)
}

func (s byteSliceSource) Len() int      { return len(s) }
func (s byteSliceSource) Bytes() []byte { return s }

func (s byteSliceSource) Slice(from, to int) ReadOnlySource {
	return s[from:to]
}

func (s byteSliceSource) SliceFrom(from int) ReadOnlySource {
	return s[from:]
}

func (s byteSliceSource) Split(at int) (ReadOnlySource, ReadOnlySource) {
	return s[:at], s[at:]
}
