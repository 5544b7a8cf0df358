// Package fielddict manages the on-disk layout of a "one dictionary per
// field" directory: a flat folder of immutable term-dictionary files, one
// per field ID, created once and never rotated or appended to again.
//
// It is the sibling of segmentmanager's rotating log segments, adapted from
// an append-only numbered-file idiom to a write-once-per-field one: the
// filename pattern, directory scan, and zero-padded naming are the same
// shape, but there is no active file, no rotation, and no size threshold.
package fielddict

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/edsrzf/mmap-go"

	"github.com/Priyanshu23/flashdict/termdict"
)

const fieldFileExt = ".termdict"

var fieldFileNamePattern = regexp.MustCompile(`^field-(\d+)\.termdict$`)

// Dir manages the field-dictionary files inside a single directory. It is
// safe for concurrent use: callers may Create distinct fields and Open
// existing ones from multiple goroutines at once, the way multiple index
// segments might be built in parallel.
type Dir struct {
	mu  sync.Mutex
	dir string
}

// Open opens (creating if necessary) the field-dictionary directory at dir.
func Open(dir string) (*Dir, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("path exists but is not a directory: %s", dir)
		}
		return &Dir{dir: dir}, nil
	}

	if !os.IsNotExist(err) {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Dir{dir: dir}, nil
}

func (d *Dir) pathFor(fieldID uint32) string {
	filename := fmt.Sprintf("field-%010d%s", fieldID, fieldFileExt)
	return filepath.Join(d.dir, filename)
}

// Create creates a new, empty file for fieldID and returns it for writing
// through a termdict.TermDictionaryBuilder. It fails if a dictionary for
// fieldID already exists: field dictionaries are immutable once built.
func (d *Dir) Create(fieldID uint32) (io.WriteCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.OpenFile(d.pathFor(fieldID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fielddict: create field %d: %w", fieldID, err)
	}
	return f, nil
}

// mmapSource wraps an mmap.MMap so its bytes can be handed to termdict as a
// ReadOnlySource, and so the mapping is released when the caller is done
// with the dictionary.
type mmapSource struct {
	termdict.ReadOnlySource
	m mmap.MMap
}

// Close unmaps the underlying file. Callers that opened a field dictionary
// via Open should call this once they are done querying it.
func (s *mmapSource) Close() error {
	return s.m.Unmap()
}

// Open memory-maps the on-disk file for fieldID read-only and returns it as
// a termdict.ReadOnlySource. The returned source's Close method (accessible
// via a type assertion to io.Closer) unmaps the file; callers that don't
// need to release the mapping promptly can ignore it, since process exit
// reclaims it regardless.
func (d *Dir) Open(fieldID uint32) (termdict.ReadOnlySource, error) {
	f, err := os.Open(d.pathFor(fieldID))
	if err != nil {
		return nil, fmt.Errorf("fielddict: open field %d: %w", fieldID, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("fielddict: mmap field %d: %w", fieldID, err)
	}

	return &mmapSource{
		ReadOnlySource: termdict.NewByteSliceSource([]byte(m)),
		m:              m,
	}, nil
}

// Fields lists the field IDs that currently have a dictionary file on disk,
// sorted ascending.
func (d *Dir) Fields() ([]uint32, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}

	var fields []uint32
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) != fieldFileExt {
			continue
		}

		matches := fieldFileNamePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}

		id, err := strconv.ParseUint(matches[1], 10, 32)
		if err != nil {
			continue
		}

		fields = append(fields, uint32(id))
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields, nil
}
