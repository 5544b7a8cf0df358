package termdict

import (
	"fmt"

	"github.com/couchbase/vellum"
)

// footerSize is the fixed 16-byte trailer: two little-endian uint64
// addresses, fst_addr and checkpoints_addr.
const footerSize = 16

// TermDictionary is an immutable, opened term dictionary. It holds no
// independent copy of its data: every byte it touches is a view into the
// ReadOnlySource it was opened from. Once constructed it can be shared by
// any number of concurrent callers; each Range call produces its own
// independent TermStreamer.
type TermDictionary struct {
	hasPositions bool

	stream      ReadOnlySource
	fst         *vellum.FST
	checkpoints ReadOnlySource

	bloom *BloomFilter
}

// Open parses the footer of source and prepares a TermDictionary for
// queries. It does not decode any stream records eagerly.
func Open(source ReadOnlySource) (*TermDictionary, error) {
	if source.Len() < 1+footerSize {
		return nil, fmt.Errorf("%w: file too small (%d bytes)", ErrCorrupted, source.Len())
	}

	data := source.Bytes()

	var hasPositions bool
	switch data[0] {
	case 0x00:
		hasPositions = false
	case 0xFF:
		hasPositions = true
	default:
		return nil, fmt.Errorf("%w: bad discriminator byte 0x%02x", ErrCorrupted, data[0])
	}

	trailer := data[len(data)-footerSize:]
	fstAddr, err := readU64(trailer[0:8])
	if err != nil {
		return nil, fmt.Errorf("%w: footer fst_addr: %v", ErrCorrupted, err)
	}
	checkpointsAddr, err := readU64(trailer[8:16])
	if err != nil {
		return nil, fmt.Errorf("%w: footer checkpoints_addr: %v", ErrCorrupted, err)
	}

	streamEnd := 1 + int(fstAddr) - paddingSize
	fstEnd := 1 + int(checkpointsAddr)
	checkpointsEnd := len(data) - footerSize

	if streamEnd < 1 || fstEnd < streamEnd || checkpointsEnd < fstEnd {
		return nil, fmt.Errorf("%w: footer addresses out of range", ErrCorrupted)
	}

	stream := source.Slice(1, streamEnd)
	fstSource := source.Slice(1+int(fstAddr), fstEnd)
	checkpoints := source.Slice(1+int(checkpointsAddr), checkpointsEnd)

	fst, err := vellum.Load(fstSource.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: load FST: %v", ErrCorrupted, err)
	}

	return &TermDictionary{
		hasPositions: hasPositions,
		stream:       stream,
		fst:          fst,
		checkpoints:  checkpoints,
	}, nil
}

// HasPositions reports whether this field's records carry a positions
// delta, as recorded by the builder's discriminator byte.
func (d *TermDictionary) HasPositions() bool {
	return d.hasPositions
}

// AttachBloomFilter wires an optionally-loaded bloom filter sidecar into
// Get's fast path. It is not required: a TermDictionary without one simply
// always falls through to the FST-based lookup.
func (d *TermDictionary) AttachBloomFilter(bf *BloomFilter) {
	d.bloom = bf
}

// Get looks up key and returns its TermInfo. ok is false if key was not
// inserted into this dictionary.
func (d *TermDictionary) Get(key []byte) (info TermInfo, ok bool, err error) {
	if d.bloom != nil && !d.bloom.MayContain(key) {
		return TermInfo{}, false, nil
	}

	streamer, err := d.Range().Ge(key).IntoStream()
	if err != nil {
		return TermInfo{}, false, err
	}

	if !streamer.Advance() {
		return TermInfo{}, false, streamer.Err()
	}

	if !bytesEqual(streamer.Key(), key) {
		return TermInfo{}, false, nil
	}

	return streamer.Value(), true, nil
}

// Query is Get for callers that want absence reported as an error rather
// than a boolean, such as a command-line lookup where "not found" should
// produce a printed failure.
func (d *TermDictionary) Query(key []byte) (TermInfo, error) {
	info, ok, err := d.Get(key)
	if err != nil {
		return TermInfo{}, err
	}
	if !ok {
		return TermInfo{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return info, nil
}

// Range returns a builder for constructing a bounded streaming scan over
// this dictionary.
func (d *TermDictionary) Range() *TermStreamerBuilder {
	return &TermStreamerBuilder{dict: d}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
