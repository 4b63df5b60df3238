package bptree

import "errors"

// Sentinel errors returned by Tree operations. Callers should use
// errors.Is to test for a specific kind rather than comparing directly,
// since operations wrap these with additional context.
var (
	// ErrInvalidConfig is returned by New when order < 3 or compare is nil.
	ErrInvalidConfig = errors.New("bptree: invalid configuration")

	// ErrInvalidArg is returned when a nil key or value is passed to an
	// operation that requires one.
	ErrInvalidArg = errors.New("bptree: invalid argument")

	// ErrDuplicateKey is returned by Insert when the key is already present.
	// The caller retains ownership of the rejected value.
	ErrDuplicateKey = errors.New("bptree: duplicate key")

	// ErrNotFound is returned by Delete when the key is absent.
	ErrNotFound = errors.New("bptree: key not found")

	// ErrAllocationFailure is not returned by Tree operations. pkg/serialize's
	// Read wraps it when a stream fails its integrity checks (length,
	// trailer checksum, magic number, next-leaf chain), before any tree is
	// built.
	ErrAllocationFailure = errors.New("bptree: allocation failure")
)
