package termdict

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/couchbase/vellum"
)

// indexInterval is the number of stream records per block. It is implicit
// on disk: readers never need to know it, since every block boundary has an
// explicit checkpoint and the FST enumerates them.
const indexInterval = 1024

// paddingSize is the zero-byte margin written between the stream and the
// FST, a safety margin for readers that may prefetch past the last record.
const paddingSize = 4

// TermDictionaryBuilder is a sequential, single-producer writer for one
// field's term dictionary. Keys must be inserted in strictly ascending
// order; the builder streams delta-encoded records straight to the
// underlying writer, accumulating a checkpoint table and a sparse FST
// block index as it goes, and emits the footer on Finish.
//
// A builder owns its writer exclusively until Finish returns it.
type TermDictionaryBuilder struct {
	opts FieldOptions

	raw io.Writer
	cw  *CountingWriter

	termEnc *termDeltaEncoder
	infoEnc *termInfoDeltaEncoder

	fstBuf     bytes.Buffer
	fstBuilder *vellum.Builder

	checkpoints bytes.Buffer

	lastKey []byte
	count   int

	bloom *bloom.BloomFilter

	finished bool
}

// BuilderOption configures a TermDictionaryBuilder at construction time.
type BuilderOption func(*builderConfig)

type builderConfig struct {
	bloomEstimatedTerms uint
	bloomFalsePositive  float64
}

// WithBloomEstimate sizes the optional in-memory bloom filter the builder
// accumulates alongside the dictionary. It has no effect on the on-disk
// dictionary format; it only changes the accuracy of the sidecar written by
// WriteBloomFilter.
func WithBloomEstimate(estimatedTerms uint, falsePositiveRate float64) BuilderOption {
	return func(c *builderConfig) {
		c.bloomEstimatedTerms = estimatedTerms
		c.bloomFalsePositive = falsePositiveRate
	}
}

// NewTermDictionaryBuilder creates a builder writing to w. opts.HasPositions
// must match the field's schema: it is baked into the discriminator byte and
// governs whether every subsequent record carries a positions delta.
func NewTermDictionaryBuilder(w io.Writer, opts FieldOptions, options ...BuilderOption) (*TermDictionaryBuilder, error) {
	cfg := builderConfig{
		bloomEstimatedTerms: defaultBloomEstimatedTerms,
		bloomFalsePositive:  defaultBloomFalsePositiveRate,
	}
	for _, o := range options {
		o(&cfg)
	}

	discriminator := byte(0x00)
	if opts.HasPositions {
		discriminator = 0xFF
	}
	if _, err := w.Write([]byte{discriminator}); err != nil {
		return nil, fmt.Errorf("termdict: write discriminator byte: %w", err)
	}

	b := &TermDictionaryBuilder{
		opts:    opts,
		raw:     w,
		cw:      NewCountingWriter(w),
		termEnc: newTermDeltaEncoder(),
		infoEnc: newTermInfoDeltaEncoder(opts.HasPositions),
		bloom:   bloom.NewWithEstimates(cfg.bloomEstimatedTerms, cfg.bloomFalsePositive),
	}

	fstBuilder, err := vellum.New(&b.fstBuf, nil)
	if err != nil {
		return nil, fmt.Errorf("termdict: create FST builder: %w", err)
	}
	b.fstBuilder = fstBuilder

	return b, nil
}

// currentCheckpoint captures the encoder's current absolute state as a
// CheckPoint: the stream offset the next record will start at, and the
// offsets the delta encoders are currently seeded with (the previous
// entry's absolute offsets, or zero before the first insert).
func (b *TermDictionaryBuilder) currentCheckpoint() CheckPoint {
	return CheckPoint{
		StreamOffset:    b.cw.Written(),
		PostingsOffset:  b.infoEnc.prevPostings,
		PositionsOffset: b.infoEnc.prevPositions,
	}
}

// emitCheckpoint appends a checkpoint record to the checkpoint table and,
// if key is non-nil, inserts (key -> checkpoint table offset) into the FST,
// where the offset is the byte position within the checkpoint table the
// record was written at.
func (b *TermDictionaryBuilder) emitCheckpoint(key []byte) error {
	offset := uint64(b.checkpoints.Len())
	cp := b.currentCheckpoint()
	if err := cp.WriteTo(&b.checkpoints); err != nil {
		return fmt.Errorf("termdict: write checkpoint: %w", err)
	}

	if key != nil {
		if err := b.fstBuilder.Insert(key, offset); err != nil {
			return fmt.Errorf("termdict: insert FST entry: %w", err)
		}
	}

	return nil
}

// Insert adds one (key, info) pair. key must sort strictly after every key
// inserted so far.
func (b *TermDictionaryBuilder) Insert(key []byte, info TermInfo) error {
	if b.finished {
		return fmt.Errorf("%w: insert after Finish", ErrInvalidArgument)
	}

	if b.count > 0 && bytes.Compare(key, b.lastKey) <= 0 {
		return fmt.Errorf("%w: key %q is not strictly greater than previous key %q",
			ErrInvalidArgument, key, b.lastKey)
	}

	if b.count%indexInterval == 0 {
		if err := b.emitCheckpoint(key); err != nil {
			return err
		}
		b.termEnc.reset()
		b.infoEnc.reset()
	}

	prefixLen, suffix := b.termEnc.encode(key)
	delta, err := b.infoEnc.encode(info)
	if err != nil {
		return err
	}

	if err := writeTermKV(b.cw, prefixLen, suffix, delta, b.opts.HasPositions); err != nil {
		return fmt.Errorf("termdict: write record: %w", err)
	}

	b.bloom.Add(key)

	b.lastKey = append(b.lastKey[:0], key...)
	b.count++

	return nil
}

// WriteBloomFilter writes the accumulated bloom-filter sidecar to w. It may
// be called any time after the last Insert (typically right after Finish);
// it has no effect on, and does not need to precede, Finish.
func (b *TermDictionaryBuilder) WriteBloomFilter(w io.Writer) error {
	return writeBloomFilter(w, b.bloom)
}

// Finish closes out the block currently in progress, writes the FST and
// checkpoint table, writes the footer, and returns the underlying writer to
// the caller. The builder must not be used again afterward.
func (b *TermDictionaryBuilder) Finish() (io.Writer, error) {
	if b.finished {
		return nil, fmt.Errorf("%w: Finish called twice", ErrInvalidArgument)
	}
	b.finished = true

	// Trailing sentinel checkpoint: covers the tail of the stream past the
	// last block boundary. It is not indexed by any key.
	if err := b.emitCheckpoint(nil); err != nil {
		return nil, err
	}

	if err := b.fstBuilder.Close(); err != nil {
		return nil, fmt.Errorf("termdict: close FST builder: %w", err)
	}

	if _, err := b.cw.Write(make([]byte, paddingSize)); err != nil {
		return nil, fmt.Errorf("termdict: write padding: %w", err)
	}

	fstAddr := b.cw.Written()
	if _, err := b.cw.Write(b.fstBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("termdict: write FST: %w", err)
	}

	checkpointsAddr := b.cw.Written()
	if _, err := b.cw.Write(b.checkpoints.Bytes()); err != nil {
		return nil, fmt.Errorf("termdict: write checkpoint table: %w", err)
	}

	if err := writeU64(b.cw, uint64(fstAddr)); err != nil {
		return nil, fmt.Errorf("termdict: write footer fst_addr: %w", err)
	}
	if err := writeU64(b.cw, uint64(checkpointsAddr)); err != nil {
		return nil, fmt.Errorf("termdict: write footer checkpoints_addr: %w", err)
	}

	if f, ok := b.raw.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return nil, fmt.Errorf("termdict: flush: %w", err)
		}
	}

	return b.raw, nil
}
