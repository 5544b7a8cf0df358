package termdict

import (
	"fmt"
	"io"
)

// shortFormBit marks a record whose prefix_len and suffix_len both fit in a
// nibble, letting the header collapse to a single byte instead of two
// 4-byte fields.
const shortFormBit = 1 << 0

// shortFormLimit is one past the largest prefix_len/suffix_len a short-form
// record can represent (a nibble holds 0..15).
const shortFormLimit = 16

// writeTermKV appends one stream record: the (prefixLen, suffix) term delta
// followed by delta's bit-packed fields, in the §4.3 wire format. hasPositions
// must match the value the discriminator byte was written with.
func writeTermKV(w io.Writer, prefixLen int, suffix []byte, delta deltaTermInfo, hasPositions bool) error {
	suffixLen := len(suffix)
	short := prefixLen < shortFormLimit && suffixLen < shortFormLimit

	docFreqBytes := numBytesRequired(delta.DocFreq)
	postingsBytes := numBytesRequired(delta.DeltaPostingsOffset)
	positionsBytes := 1
	if hasPositions {
		positionsBytes = numBytesRequired(delta.DeltaPositionsOffset)
	}

	code := byte(0)
	if short {
		code |= shortFormBit
	}
	code |= byte(docFreqBytes-1) << 1
	code |= byte(postingsBytes-1) << 3
	code |= byte(positionsBytes-1) << 5

	if _, err := w.Write([]byte{code}); err != nil {
		return err
	}

	if short {
		header := byte(prefixLen) | byte(suffixLen)<<4
		if _, err := w.Write([]byte{header}); err != nil {
			return err
		}
	} else {
		if err := writeU32(w, uint32(prefixLen)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(suffixLen)); err != nil {
			return err
		}
	}

	if _, err := w.Write(suffix); err != nil {
		return err
	}

	var buf [4]byte
	putUintN(buf[:], delta.DocFreq, docFreqBytes)
	if _, err := w.Write(buf[:docFreqBytes]); err != nil {
		return err
	}

	putUintN(buf[:], delta.DeltaPostingsOffset, postingsBytes)
	if _, err := w.Write(buf[:postingsBytes]); err != nil {
		return err
	}

	if hasPositions {
		putUintN(buf[:], delta.DeltaPositionsOffset, positionsBytes)
		if _, err := w.Write(buf[:positionsBytes]); err != nil {
			return err
		}
		if _, err := w.Write([]byte{delta.PositionsInnerOffset}); err != nil {
			return err
		}
	}

	return nil
}

// decodedRecord is the raw result of parsing one stream record: the term
// delta plus the TermInfo delta, and how many bytes of the input it
// consumed.
type decodedRecord struct {
	prefixLen int
	suffix    []byte
	delta     deltaTermInfo
	n         int
}

// readTermKV parses a single stream record starting at b[0]. The returned
// suffix aliases b and is only valid as long as b is.
func readTermKV(b []byte, hasPositions bool) (decodedRecord, error) {
	if len(b) < 1 {
		return decodedRecord{}, fmt.Errorf("%w: empty record", ErrCorrupted)
	}

	code := b[0]
	off := 1

	short := code&shortFormBit != 0
	docFreqBytes := int((code>>1)&0x3) + 1
	postingsBytes := int((code>>3)&0x3) + 1
	positionsBytes := int((code>>5)&0x3) + 1

	var prefixLen, suffixLen int

	if short {
		if off >= len(b) {
			return decodedRecord{}, fmt.Errorf("%w: truncated short header", ErrCorrupted)
		}
		header := b[off]
		off++
		prefixLen = int(header & 0x0f)
		suffixLen = int(header >> 4)
	} else {
		if off+8 > len(b) {
			return decodedRecord{}, fmt.Errorf("%w: truncated long header", ErrCorrupted)
		}
		pl, err := readU32(b[off : off+4])
		if err != nil {
			return decodedRecord{}, err
		}
		sl, err := readU32(b[off+4 : off+8])
		if err != nil {
			return decodedRecord{}, err
		}
		prefixLen = int(pl)
		suffixLen = int(sl)
		off += 8
	}

	if off+suffixLen > len(b) {
		return decodedRecord{}, fmt.Errorf("%w: truncated suffix", ErrCorrupted)
	}
	suffix := b[off : off+suffixLen]
	off += suffixLen

	if off+docFreqBytes > len(b) {
		return decodedRecord{}, fmt.Errorf("%w: truncated doc_freq", ErrCorrupted)
	}
	docFreq := getUintN(b[off:off+docFreqBytes], docFreqBytes)
	off += docFreqBytes

	if off+postingsBytes > len(b) {
		return decodedRecord{}, fmt.Errorf("%w: truncated postings delta", ErrCorrupted)
	}
	deltaPostings := getUintN(b[off:off+postingsBytes], postingsBytes)
	off += postingsBytes

	delta := deltaTermInfo{
		DocFreq:             docFreq,
		DeltaPostingsOffset: deltaPostings,
	}

	if hasPositions {
		if off+positionsBytes > len(b) {
			return decodedRecord{}, fmt.Errorf("%w: truncated positions delta", ErrCorrupted)
		}
		delta.DeltaPositionsOffset = getUintN(b[off:off+positionsBytes], positionsBytes)
		off += positionsBytes

		if off >= len(b) {
			return decodedRecord{}, fmt.Errorf("%w: truncated positions inner offset", ErrCorrupted)
		}
		delta.PositionsInnerOffset = b[off]
		off++
	}

	return decodedRecord{
		prefixLen: prefixLen,
		suffix:    suffix,
		delta:     delta,
		n:         off,
	}, nil
}
