package pe

import (
	"golang.org/x/xerrors"
)

// Sentinel error kinds. Every failure produced while parsing an image
// wraps one of these, so callers can classify a failure with errors.Is
// without depending on the wording of the positional message.
var (
	// ErrUnexpectedEOF means a typed read would cross the buffer end or
	// overflow the pointer arithmetic used to reach it.
	ErrUnexpectedEOF = xerrors.New("peparse: unexpected end of image")

	// ErrParseFailed means a structural invariant was violated: a bad
	// magic number, an RVA not covered by any section, an out-of-range
	// index, an invalid base-64 section name, and so on.
	ErrParseFailed = xerrors.New("peparse: malformed image")

	// ErrUnimplemented marks an operation the parser intentionally
	// leaves unfinished (relocation address resolution, and skipping a
	// present metadata table whose row layout is not known).
	ErrUnimplemented = xerrors.New("peparse: operation not implemented for this image")
)

// eofAt wraps ErrUnexpectedEOF with the offset and length that failed to
// fit inside the image.
func eofAt(off, size, bufLen int) error {
	return xerrors.Errorf("read %d bytes at offset %#x (image is %d bytes): %w", size, off, bufLen, ErrUnexpectedEOF)
}

// failf wraps ErrParseFailed with a formatted, located message.
func failf(format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, ErrParseFailed)...)
}

// unimplf wraps ErrUnimplemented with a formatted, located message.
func unimplf(format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, ErrUnimplemented)...)
}
