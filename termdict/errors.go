package termdict

import "errors"

// Error taxonomy. IO failures surface as whatever the underlying writer or
// source returned, wrapped with %w; the two sentinels below mark the other
// two categories so callers can distinguish them with errors.Is.
var (
	// ErrCorrupted means an on-disk invariant was violated while reading:
	// a malformed record code, a truncated record, an FST parse failure,
	// or a checkpoint that failed to deserialize. The reader never
	// attempts partial recovery from this.
	ErrCorrupted = errors.New("termdict: corrupted file")

	// ErrInvalidArgument means the builder was asked to do something the
	// format cannot represent: a key not strictly greater than the last
	// inserted key, or a TermInfo whose offsets regressed relative to the
	// previous entry.
	ErrInvalidArgument = errors.New("termdict: invalid argument")

	// ErrKeyNotFound is returned, wrapped, by Query when the requested key
	// is absent. Get reports absence with ok == false instead.
	ErrKeyNotFound = errors.New("termdict: key not found")
)
