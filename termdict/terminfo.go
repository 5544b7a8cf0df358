package termdict

import "fmt"

// FieldOptions is the minimal hook into the schema/field-type module, which
// is out of scope here: it tells the builder and reader whether this
// field's text-indexing options enable position lookups. Non-text fields
// always leave HasPositions false; the builder must agree with whatever the
// field's schema says, since the on-disk record layout differs in size
// depending on it.
type FieldOptions struct {
	HasPositions bool
}

// TermInfo is the dictionary's value record: everything downstream code
// needs to find a term's postings (and, if enabled, its positions).
type TermInfo struct {
	DocFreq              uint32
	PostingsOffset       uint32
	PositionsOffset      uint32
	PositionsInnerOffset uint8
}

// deltaTermInfo is TermInfo's on-disk encoded form, relative to the
// previous entry in the same block. DeltaPostingsOffset and
// DeltaPositionsOffset are always >= 0 because postings/positions offsets
// are monotone non-decreasing across sorted insertion order.
type deltaTermInfo struct {
	DocFreq              uint32
	DeltaPostingsOffset  uint32
	DeltaPositionsOffset uint32
	PositionsInnerOffset uint8
}

// termInfoDeltaEncoder tracks the previous entry's absolute offsets so it
// can emit each new entry as a delta against them.
type termInfoDeltaEncoder struct {
	hasPositions  bool
	prevPostings  uint32
	prevPositions uint32
}

func newTermInfoDeltaEncoder(hasPositions bool) *termInfoDeltaEncoder {
	return &termInfoDeltaEncoder{hasPositions: hasPositions}
}

// reset re-seeds the encoder's notion of "previous offsets" to absolute
// zero, as required at the start of every block.
func (e *termInfoDeltaEncoder) reset() {
	e.prevPostings = 0
	e.prevPositions = 0
}

// encode computes the delta form of info relative to the encoder's current
// state, then advances that state to info's absolute offsets. It fails if
// either offset would regress, since the format cannot represent a negative
// delta.
func (e *termInfoDeltaEncoder) encode(info TermInfo) (deltaTermInfo, error) {
	if info.PostingsOffset < e.prevPostings {
		return deltaTermInfo{}, fmt.Errorf("%w: postings offset %d regressed past %d",
			ErrInvalidArgument, info.PostingsOffset, e.prevPostings)
	}

	d := deltaTermInfo{
		DocFreq:             info.DocFreq,
		DeltaPostingsOffset: info.PostingsOffset - e.prevPostings,
	}

	if e.hasPositions {
		if info.PositionsOffset < e.prevPositions {
			return deltaTermInfo{}, fmt.Errorf("%w: positions offset %d regressed past %d",
				ErrInvalidArgument, info.PositionsOffset, e.prevPositions)
		}
		d.DeltaPositionsOffset = info.PositionsOffset - e.prevPositions
		d.PositionsInnerOffset = info.PositionsInnerOffset
	}

	e.prevPostings = info.PostingsOffset
	e.prevPositions = info.PositionsOffset

	return d, nil
}

// termInfoDeltaDecoder mirrors termInfoDeltaEncoder: it reconstructs
// absolute offsets by accumulating deltas on top of the running state.
type termInfoDeltaDecoder struct {
	hasPositions  bool
	prevPostings  uint32
	prevPositions uint32
}

func newTermInfoDeltaDecoder(hasPositions bool) *termInfoDeltaDecoder {
	return &termInfoDeltaDecoder{hasPositions: hasPositions}
}

// reset re-seeds the decoder to absolute zero, mirroring the encoder.
func (d *termInfoDeltaDecoder) reset() {
	d.prevPostings = 0
	d.prevPositions = 0
}

// seed positions the decoder's running state at arbitrary absolute
// offsets, so the next decoded delta is taken against them.
func (d *termInfoDeltaDecoder) seed(postingsOffset, positionsOffset uint32) {
	d.prevPostings = postingsOffset
	d.prevPositions = positionsOffset
}

// decode reconstructs the absolute TermInfo for delta, and advances the
// decoder's running state to match.
func (d *termInfoDeltaDecoder) decode(delta deltaTermInfo) TermInfo {
	postings := d.prevPostings + delta.DeltaPostingsOffset
	info := TermInfo{
		DocFreq:        delta.DocFreq,
		PostingsOffset: postings,
	}

	d.prevPostings = postings

	if d.hasPositions {
		positions := d.prevPositions + delta.DeltaPositionsOffset
		info.PositionsOffset = positions
		info.PositionsInnerOffset = delta.PositionsInnerOffset
		d.prevPositions = positions
	}

	return info
}
