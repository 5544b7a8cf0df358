package termdict

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/couchbase/vellum"
)

// TermStreamerBuilder accumulates the optional lower/upper bounds for a
// scan before IntoStream resolves them into a positioned TermStreamer.
type TermStreamerBuilder struct {
	dict *TermDictionary

	hasLower       bool
	lowerKey       []byte
	lowerInclusive bool

	hasUpper       bool
	upperKey       []byte
	upperInclusive bool
}

// Ge bounds the scan to keys >= key.
func (b *TermStreamerBuilder) Ge(key []byte) *TermStreamerBuilder {
	b.hasLower, b.lowerKey, b.lowerInclusive = true, key, true
	return b
}

// Gt bounds the scan to keys > key.
func (b *TermStreamerBuilder) Gt(key []byte) *TermStreamerBuilder {
	b.hasLower, b.lowerKey, b.lowerInclusive = true, key, false
	return b
}

// Le bounds the scan to keys <= key.
func (b *TermStreamerBuilder) Le(key []byte) *TermStreamerBuilder {
	b.hasUpper, b.upperKey, b.upperInclusive = true, key, true
	return b
}

// Lt bounds the scan to keys < key.
func (b *TermStreamerBuilder) Lt(key []byte) *TermStreamerBuilder {
	b.hasUpper, b.upperKey, b.upperInclusive = true, key, false
	return b
}

// Prefix bounds the scan to keys starting with p: Ge(p) and, unless p is
// all 0xFF bytes, Lt(the smallest key not sharing p's prefix).
func (b *TermStreamerBuilder) Prefix(p []byte) *TermStreamerBuilder {
	b.Ge(p)
	if end, ok := prefixUpperBound(p); ok {
		b.Lt(end)
	} else {
		b.hasUpper = false
	}
	return b
}

// prefixUpperBound computes the exclusive upper bound matching every key
// with prefix p: p with its last non-0xFF byte incremented and everything
// after it dropped. If p is empty or entirely 0xFF bytes, every key is
// >= p and there is no finite upper bound.
func prefixUpperBound(p []byte) ([]byte, bool) {
	end := append([]byte(nil), p...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1], true
		}
	}
	return nil, false
}

// immediateSuccessor returns the lexicographically smallest byte string
// strictly greater than k: k with a single 0x00 byte appended. Every other
// string that has k as a proper prefix sorts after it, so the half-open
// range [nil, immediateSuccessor(k)) holds exactly the strings <= k.
func immediateSuccessor(k []byte) []byte {
	out := make([]byte, len(k)+1)
	copy(out, k)
	return out
}

// TermStreamer yields (term, TermInfo) pairs from a TermDictionary in
// ascending key order. It is single-pass and forward-only; Key and Value
// reference the streamer's own small decode buffers and are only valid
// until the next call to Advance.
type TermStreamer struct {
	dict *TermDictionary

	streamBytes []byte
	cursor      int

	termDec *termDeltaDecoder
	infoDec *termInfoDeltaDecoder

	entriesInBlock int // how many records decoded since the last reset

	seeking        bool
	lowerKey       []byte
	lowerInclusive bool

	hasUpper       bool
	upperKey       []byte
	upperInclusive bool

	curKey   []byte
	curValue TermInfo

	done bool
	err  error
}

// IntoStream resolves the configured bounds into a positioned streamer: it
// locates the checkpoint to resume from via the strictly-previous-key walk
// (when a lower bound is set) and positions the stream cursor at it.
func (b *TermStreamerBuilder) IntoStream() (*TermStreamer, error) {
	d := b.dict

	var checkpoint CheckPoint
	var seedKey []byte

	if b.hasLower {
		key, offset, found, err := strictlyPreviousKey(d.fst, b.lowerKey)
		if err != nil {
			return nil, fmt.Errorf("termdict: locate checkpoint: %w", err)
		}
		if found {
			cp, err := decodeCheckpointAt(d.checkpoints.Bytes(), offset)
			if err != nil {
				return nil, err
			}
			checkpoint = cp
			seedKey = key
		}
	}

	s := &TermStreamer{
		dict:           d,
		streamBytes:    d.stream.Bytes(),
		cursor:         int(checkpoint.StreamOffset),
		termDec:        newTermDeltaDecoder(),
		infoDec:        newTermInfoDeltaDecoder(d.hasPositions),
		entriesInBlock: 0,
		seeking:        b.hasLower,
		hasUpper:       b.hasUpper,
		upperKey:       b.upperKey,
		upperInclusive: b.upperInclusive,
	}

	if b.hasLower {
		s.lowerKey = b.lowerKey
		s.lowerInclusive = b.lowerInclusive
	}

	if seedKey != nil {
		s.termDec.buf = append(s.termDec.buf[:0], seedKey...)
	}
	// Every checkpoint the walk resolves to starts a block, and the builder
	// resets its TermInfo encoder right after recording it, so the block's
	// first delta is taken against zero: the decoder stays at zero rather
	// than taking the checkpoint's (pre-reset) offsets.

	return s, nil
}

// decodeCheckpointAt reads the 12-byte CheckPoint record at byte offset
// off within the checkpoint table.
func decodeCheckpointAt(checkpoints []byte, off uint64) (CheckPoint, error) {
	start := int(off)
	if start < 0 || start+checkPointSize > len(checkpoints) {
		return CheckPoint{}, fmt.Errorf("%w: checkpoint offset %d out of range", ErrCorrupted, off)
	}
	return decodeCheckPoint(checkpoints[start : start+checkPointSize])
}

// strictlyPreviousKey returns the lexicographically greatest key indexed by
// fst that is <= target, and the checkpoint-table offset it maps to. found
// is false if no such key exists (target is smaller than every indexed
// key), in which case the caller should resume from the very first block.
//
// couchbase/vellum's FST does not expose per-node outgoing-transition
// enumeration, so this does not perform the stack-descend-and-take-the-
// greatest-transition walk; it uses vellum's sorted range Iterator to scan
// every indexed key <= target and keep the last one. Because the FST only
// holds one entry per on-disk block (INDEX_INTERVAL terms), this costs at
// most one step per block up to target, not per term.
func strictlyPreviousKey(fst *vellum.FST, target []byte) (key []byte, checkpointOffset uint64, found bool, err error) {
	end := immediateSuccessor(target)

	it, err := fst.Iterator(nil, end)
	if errors.Is(err, vellum.ErrIteratorDone) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	for {
		k, v := it.Current()
		key = append(key[:0], k...)
		checkpointOffset = v
		found = true

		if err := it.Next(); err != nil {
			if errors.Is(err, vellum.ErrIteratorDone) {
				break
			}
			return nil, 0, false, err
		}
	}

	return key, checkpointOffset, found, nil
}

func (s *TermStreamer) meetsLowerBound(key []byte) bool {
	cmp := bytes.Compare(key, s.lowerKey)
	if s.lowerInclusive {
		return cmp >= 0
	}
	return cmp > 0
}

func (s *TermStreamer) withinUpperBound(key []byte) bool {
	if !s.hasUpper {
		return true
	}
	cmp := bytes.Compare(key, s.upperKey)
	if s.upperInclusive {
		return cmp <= 0
	}
	return cmp < 0
}

// Advance decodes the next entry. It returns false once the stream is
// exhausted, the upper bound is passed, or a decode error occurs (check Err
// to distinguish the two).
func (s *TermStreamer) Advance() bool {
	if s.done {
		return false
	}

	for s.cursor < len(s.streamBytes) {
		if s.entriesInBlock == indexInterval {
			s.termDec.reset()
			s.infoDec.reset()
			s.entriesInBlock = 0
		}

		rec, err := readTermKV(s.streamBytes[s.cursor:], s.dict.hasPositions)
		if err != nil {
			s.err = err
			s.done = true
			return false
		}

		key := s.termDec.decode(rec.prefixLen, rec.suffix)
		value := s.infoDec.decode(rec.delta)

		s.cursor += rec.n
		s.entriesInBlock++

		if s.seeking {
			if !s.meetsLowerBound(key) {
				continue
			}
			s.seeking = false
		}

		if !s.withinUpperBound(key) {
			s.done = true
			return false
		}

		s.curKey = append(s.curKey[:0], key...)
		s.curValue = value
		return true
	}

	s.done = true
	return false
}

// Key returns the current entry's term. Valid until the next Advance call.
func (s *TermStreamer) Key() []byte {
	return s.curKey
}

// Value returns the current entry's TermInfo.
func (s *TermStreamer) Value() TermInfo {
	return s.curValue
}

// Err returns the error that stopped iteration, if Advance returned false
// because of corruption rather than reaching the end or the upper bound.
func (s *TermStreamer) Err() error {
	return s.err
}
