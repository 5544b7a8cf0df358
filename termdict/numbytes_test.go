package termdict

import "testing"

func TestNumBytesRequired(t *testing.T) {
	tests := []struct {
		n    uint32
		want int
	}{
		{0, 1},
		{1, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
		{16777215, 3},
		{16777216, 4},
		{4294967295, 4},
	}

	for _, test := range tests {
		if got := numBytesRequired(test.n); got != test.want {
			t.Fatalf("numBytesRequired(%d) = %d, want %d", test.n, got, test.want)
		}
	}
}

func TestPutGetUintNRoundTrip(t *testing.T) {
	tests := []struct {
		v        uint32
		numBytes int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{16777215, 3},
		{4294967295, 4},
	}

	for _, test := range tests {
		var buf [4]byte
		putUintN(buf[:], test.v, test.numBytes)
		if got := getUintN(buf[:test.numBytes], test.numBytes); got != test.v {
			t.Fatalf("round trip of %d through %d bytes gave %d", test.v, test.numBytes, got)
		}
	}
}
