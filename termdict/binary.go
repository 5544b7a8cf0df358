package termdict

import (
	"encoding/binary"
	"fmt"
	"io"
)

// CheckPoint records the absolute stream/postings/positions offsets valid at
// a block boundary. It is the unit the strictly-previous-key walk resolves
// to: once the reader knows which checkpoint to resume from, it seeks the
// stream to stream_offset. The two other fields hold the absolute offsets
// of the last entry before the boundary (zero for the first block); the
// block's own deltas start from zero.
type CheckPoint struct {
	StreamOffset    uint32
	PostingsOffset  uint32
	PositionsOffset uint32
}

// checkPointSize is the fixed on-disk width of a CheckPoint: three
// little-endian uint32s, no padding.
const checkPointSize = 12

// writeU32 and writeU64 below write fixed-width little-endian integers
// directly, by explicit byte assembly, rather than through any
// unsafe/reinterpret-cast trick: the source this package is modeled on
// reinterprets a uint32 as four bytes via a raw pointer cast, which is only
// safe because the target happens to be little-endian; an explicit
// byte-by-byte split is the equivalent, portable replacement.

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes, have %d", ErrCorrupted, len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readU64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("%w: need 8 bytes, have %d", ErrCorrupted, len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// WriteTo serializes the checkpoint as 12 little-endian bytes:
// stream_offset, postings_offset, positions_offset.
func (c CheckPoint) WriteTo(w io.Writer) error {
	if err := writeU32(w, c.StreamOffset); err != nil {
		return err
	}
	if err := writeU32(w, c.PostingsOffset); err != nil {
		return err
	}
	return writeU32(w, c.PositionsOffset)
}

// decodeCheckPoint reads a single 12-byte CheckPoint record from b.
func decodeCheckPoint(b []byte) (CheckPoint, error) {
	if len(b) < checkPointSize {
		return CheckPoint{}, fmt.Errorf("%w: short checkpoint record", ErrCorrupted)
	}
	streamOffset, _ := readU32(b[0:4])
	postingsOffset, _ := readU32(b[4:8])
	positionsOffset, _ := readU32(b[8:12])
	return CheckPoint{
		StreamOffset:    streamOffset,
		PostingsOffset:  postingsOffset,
		PositionsOffset: positionsOffset,
	}, nil
}

// CountingWriter wraps an io.Writer and tracks the number of bytes written
// through it, so callers can record byte offsets (for checkpoints, the FST
// address, the checkpoint-table address) without ever seeking.
type CountingWriter struct {
	w       io.Writer
	written uint32
}

// NewCountingWriter wraps w.
func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{w: w}
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.written += uint32(n)
	return n, err
}

// Written reports the total number of bytes written so far.
func (c *CountingWriter) Written() uint32 {
	return c.written
}
