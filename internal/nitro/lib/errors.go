package lib

import (
	"errors"
	"fmt"
)

var (
	// ErrIO marks failures of the underlying byte source: short reads and
	// failed seeks.
	ErrIO = errors.New("i/o failure")

	// ErrMalformed marks data that does not follow the NitroROM or NARC
	// layout: wrong magic or chunk tags, an unsupported version, an unexpected
	// chunk count, file ids outside the allocation table or names that are not
	// valid UTF-8.
	ErrMalformed = errors.New("malformed data")

	// ErrNotFound is returned by callers that require a path to resolve.
	ErrNotFound = errors.New("no such file or directory")
)

// ioError wraps err with ErrIO while keeping err reachable through errors.Is.
func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

// malformed builds an ErrMalformed error with a formatted description.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

var errNoReaderAt = errors.New("source does not support random access")
