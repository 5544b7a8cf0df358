package fielddict

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Priyanshu23/flashdict/termdict"
)

func setupDirTest(t *testing.T) (dir *Dir, cleanup func()) {
	path := t.TempDir()

	d, err := Open(path)
	if err != nil {
		t.Fatal("failed to open field dictionary dir", err)
	}

	return d, func() {
		if err := os.RemoveAll(path); err != nil {
			t.Log("failed to clean up field dictionary dir")
		}
	}
}

func writeTrivialDictionary(t *testing.T, w io.WriteCloser) {
	b, err := termdict.NewTermDictionaryBuilder(w, termdict.FieldOptions{HasPositions: false})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Insert([]byte("alpha"), termdict.TermInfo{DocFreq: 1, PostingsOffset: 0}); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert([]byte("beta"), termdict.TermInfo{DocFreq: 2, PostingsOffset: 4}); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Finish(); err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateWritesExpectedFilename(t *testing.T) {
	d, cleanup := setupDirTest(t)
	defer cleanup()

	w, err := d.Create(7)
	if err != nil {
		t.Fatal(err)
	}
	writeTrivialDictionary(t, w)

	wantPath := filepath.Join(d.dir, "field-0000000007.termdict")
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatal("expected file at", wantPath, "got error", err)
	}
}

func TestCreateRejectsDuplicateField(t *testing.T) {
	d, cleanup := setupDirTest(t)
	defer cleanup()

	w, err := d.Create(1)
	if err != nil {
		t.Fatal(err)
	}
	writeTrivialDictionary(t, w)

	if _, err := d.Create(1); err == nil {
		t.Fatal("expected error creating field 1 twice")
	}
}

func TestOpenRoundTrip(t *testing.T) {
	d, cleanup := setupDirTest(t)
	defer cleanup()

	w, err := d.Create(3)
	if err != nil {
		t.Fatal(err)
	}
	writeTrivialDictionary(t, w)

	source, err := d.Open(3)
	if err != nil {
		t.Fatal(err)
	}
	if closer, ok := source.(io.Closer); ok {
		defer closer.Close()
	}

	dict, err := termdict.Open(source)
	if err != nil {
		t.Fatal(err)
	}

	info, ok, err := dict.Get([]byte("alpha"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected to find key alpha")
	}
	if info.DocFreq != 1 {
		t.Fatal("expected doc_freq 1, got", info.DocFreq)
	}
}

func TestFieldsListsSortedIDs(t *testing.T) {
	d, cleanup := setupDirTest(t)
	defer cleanup()

	for _, id := range []uint32{5, 1, 3} {
		w, err := d.Create(id)
		if err != nil {
			t.Fatal(err)
		}
		writeTrivialDictionary(t, w)
	}

	fields, err := d.Fields()
	if err != nil {
		t.Fatal(err)
	}

	want := []uint32{1, 3, 5}
	if len(fields) != len(want) {
		t.Fatal("expected", want, "got", fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatal("expected", want, "got", fields)
		}
	}
}

func TestOpenMissingFieldFails(t *testing.T) {
	d, cleanup := setupDirTest(t)
	defer cleanup()

	if _, err := d.Open(42); err == nil {
		t.Fatal("expected error opening a field that was never created")
	}
}
