package refstore

import "testing"

// deterministicRNG cycles through a fixed sequence so tower heights are
// reproducible across test runs.
func deterministicRNG() func() int32 {
	seq := []int32{1, 3, 5, 2, 7, 4, 1, 6}
	i := 0
	return func() int32 {
		v := seq[i%len(seq)]
		i++
		return v
	}
}

func TestOraclePutGet(t *testing.T) {
	o := New[string, int](deterministicRNG())

	o.Put("banana", 2)
	o.Put("apple", 1)
	o.Put("cherry", 3)
	o.Put("banana", 20) // overwrite

	if v, ok := o.Get("apple"); !ok || v != 1 {
		t.Fatalf("Get(apple) = %d, %v, want 1, true", v, ok)
	}
	if v, ok := o.Get("banana"); !ok || v != 20 {
		t.Fatalf("Get(banana) = %d, %v, want 20, true", v, ok)
	}
	if _, ok := o.Get("date"); ok {
		t.Fatal("Get(date) should report absent")
	}
	if o.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", o.Len())
	}
}

func TestOracleRangeInclusiveExclusive(t *testing.T) {
	o := New[string, int](deterministicRNG())
	for i, k := range []string{"ant", "bee", "cat", "dog", "eel"} {
		o.Put(k, i)
	}

	var inclusive []string
	for k := range o.Range("cat", true) {
		inclusive = append(inclusive, k)
	}
	wantInclusive := []string{"cat", "dog", "eel"}
	if !equalSlices(inclusive, wantInclusive) {
		t.Fatalf("Range(cat, inclusive) = %v, want %v", inclusive, wantInclusive)
	}

	var exclusive []string
	for k := range o.Range("cat", false) {
		exclusive = append(exclusive, k)
	}
	wantExclusive := []string{"dog", "eel"}
	if !equalSlices(exclusive, wantExclusive) {
		t.Fatalf("Range(cat, exclusive) = %v, want %v", exclusive, wantExclusive)
	}
}

func TestOracleRangeEarlyStop(t *testing.T) {
	o := New[string, int](deterministicRNG())
	for i, k := range []string{"a", "b", "c", "d"} {
		o.Put(k, i)
	}

	var seen []string
	for k := range o.Range("a", true) {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	if !equalSlices(seen, []string{"a", "b"}) {
		t.Fatalf("early-stopped Range yielded %v, want [a b]", seen)
	}
}

func equalSlices(a, b []string) bool {
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
