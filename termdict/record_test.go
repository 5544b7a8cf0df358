package termdict

import (
	"bytes"
	"testing"
)

// TestShortFormRecord covers S2: "cat" then "cats" share a 3-byte prefix
// with a 1-byte suffix, both well under the short-form limit of 16, so the
// record must be encoded with a single nibble-packed header byte and the
// short-form bit set in the code byte.
func TestShortFormRecord(t *testing.T) {
	termEnc := newTermDeltaEncoder()
	infoEnc := newTermInfoDeltaEncoder(false)

	prefixLen, suffix := termEnc.encode([]byte("cat"))
	delta, err := infoEnc.encode(TermInfo{DocFreq: 3, PostingsOffset: 0})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writeTermKV(&buf, prefixLen, suffix, delta, false); err != nil {
		t.Fatal(err)
	}

	prefixLen, suffix = termEnc.encode([]byte("cats"))
	if prefixLen != 3 || !bytes.Equal(suffix, []byte("s")) {
		t.Fatalf("expected prefix_len=3 suffix=%q, got prefix_len=%d suffix=%q", "s", prefixLen, suffix)
	}
	delta, err = infoEnc.encode(TermInfo{DocFreq: 1, PostingsOffset: 4})
	if err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	if err := writeTermKV(&buf, prefixLen, suffix, delta, false); err != nil {
		t.Fatal(err)
	}

	code := buf.Bytes()[0]
	if code&shortFormBit == 0 {
		t.Fatalf("expected short-form bit set in code byte 0x%02x", code)
	}

	rec, err := readTermKV(buf.Bytes(), false)
	if err != nil {
		t.Fatal(err)
	}
	if rec.prefixLen != 3 || !bytes.Equal(rec.suffix, []byte("s")) {
		t.Fatalf("decoded prefix_len=%d suffix=%q, want 3, \"s\"", rec.prefixLen, rec.suffix)
	}
}

// TestLongFormRecord covers S3: a 20-byte key sharing a 17-byte prefix with
// the previous key has prefix_len=17 >= 16, so the short form must not be
// used; the header must fall back to two 4-byte fields.
func TestLongFormRecord(t *testing.T) {
	termEnc := newTermDeltaEncoder()
	infoEnc := newTermInfoDeltaEncoder(false)

	prior := []byte("abcdefghijklmnopqrs") // 19 bytes
	termEnc.encode(prior)
	infoEnc.encode(TermInfo{DocFreq: 1, PostingsOffset: 0})

	next := append(append([]byte{}, prior[:17]...), []byte("XYZ")...) // 20 bytes
	prefixLen, suffix := termEnc.encode(next)
	if prefixLen != 17 || len(suffix) != 3 {
		t.Fatalf("expected prefix_len=17 len(suffix)=3, got prefix_len=%d len(suffix)=%d", prefixLen, len(suffix))
	}

	delta, err := infoEnc.encode(TermInfo{DocFreq: 1, PostingsOffset: 1})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeTermKV(&buf, prefixLen, suffix, delta, false); err != nil {
		t.Fatal(err)
	}

	code := buf.Bytes()[0]
	if code&shortFormBit != 0 {
		t.Fatalf("expected short-form bit clear in code byte 0x%02x", code)
	}
	if len(buf.Bytes()) < 1+8 {
		t.Fatalf("expected long-form two-u32 header, record too short: %d bytes", len(buf.Bytes()))
	}

	rec, err := readTermKV(buf.Bytes(), false)
	if err != nil {
		t.Fatal(err)
	}
	if rec.prefixLen != 17 || !bytes.Equal(rec.suffix, []byte("XYZ")) {
		t.Fatalf("decoded prefix_len=%d suffix=%q, want 17, \"XYZ\"", rec.prefixLen, rec.suffix)
	}
}

func TestReadTermKVRejectsTruncatedInput(t *testing.T) {
	termEnc := newTermDeltaEncoder()
	infoEnc := newTermInfoDeltaEncoder(true)

	prefixLen, suffix := termEnc.encode([]byte("hello"))
	delta, err := infoEnc.encode(TermInfo{DocFreq: 5, PostingsOffset: 10, PositionsOffset: 20, PositionsInnerOffset: 2})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeTermKV(&buf, prefixLen, suffix, delta, true); err != nil {
		t.Fatal(err)
	}

	full := buf.Bytes()
	for n := 0; n < len(full); n++ {
		if _, err := readTermKV(full[:n], true); err == nil {
			t.Fatalf("expected error decoding truncated record of %d/%d bytes", n, len(full))
		}
	}
}
