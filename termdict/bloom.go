package termdict

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/bits-and-blooms/bloom/v3"
)

// defaultBloomEstimatedTerms sizes the bloom filter when a builder isn't
// told how many terms to expect. Oversizing costs memory during the build,
// not correctness: a bloom filter sized too small just degrades its false
// positive rate, it never produces a false negative.
const defaultBloomEstimatedTerms = 1 << 16

// defaultBloomFalsePositiveRate matches the teacher's own SST bloom filter
// tuning in sst/writer.go (bloom.NewWithEstimates(100000, 0.01)).
const defaultBloomFalsePositiveRate = 0.01

// BloomFilter is a negative-lookup accelerator over a dictionary's term
// set. It is not part of the dictionary file that TermDictionaryBuilder.Finish
// writes; it is an optional sidecar artifact a
// builder can additionally emit and a reader can additionally attach, so
// TermDictionary.Get can reject an absent key without touching the FST or
// the stream at all.
type BloomFilter struct {
	filter *bloom.BloomFilter
}

// MayContain reports whether key might be present. A false return is
// conclusive: key is definitely absent. A true return means the caller
// still has to check the dictionary itself.
func (b *BloomFilter) MayContain(key []byte) bool {
	if b == nil || b.filter == nil {
		return true
	}
	return b.filter.Test(key)
}

// writeBloomFilter serializes filter to w as [bit array via filter.WriteTo]
// [crc32 of those bytes], the same length-then-checksum idiom sst/writer.go
// uses for its own bloom filter region.
func writeBloomFilter(w io.Writer, filter *bloom.BloomFilter) error {
	var buf bytes.Buffer
	if _, err := filter.WriteTo(&buf); err != nil {
		return fmt.Errorf("termdict: encode bloom filter: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	checksum := crc32.ChecksumIEEE(buf.Bytes())
	return writeU32(w, checksum)
}

// OpenBloomFilter reads a bloom filter sidecar previously written by
// TermDictionaryBuilder.WriteBloomFilter.
func OpenBloomFilter(source ReadOnlySource) (*BloomFilter, error) {
	data := source.Bytes()
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: bloom sidecar too short", ErrCorrupted)
	}

	payload, trailer := data[:len(data)-4], data[len(data)-4:]
	want := binary.LittleEndian.Uint32(trailer)
	if got := crc32.ChecksumIEEE(payload); got != want {
		return nil, fmt.Errorf("%w: bloom sidecar checksum mismatch", ErrCorrupted)
	}

	filter := &bloom.BloomFilter{}
	if _, err := filter.ReadFrom(bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("%w: decode bloom filter: %v", ErrCorrupted, err)
	}

	return &BloomFilter{filter: filter}, nil
}
