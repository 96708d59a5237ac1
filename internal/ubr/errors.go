package ubr

import "github.com/pkg/errors"

// Error kinds reported by the decoder. Callers test them with errors.Is; every
// returned error wraps exactly one of these.
var (
	// ErrReadFailure means the file could not be opened or read.
	ErrReadFailure = errors.New("ubr: read failure")
	// ErrUnknownFileKind means the 4-byte type tag is not a known container kind.
	ErrUnknownFileKind = errors.New("ubr: unknown file kind")
	// ErrCorruptContainer means an offset or size pointed outside the buffer
	// while walking headers or tables.
	ErrCorruptContainer = errors.New("ubr: corrupt container")
	// ErrGeometryScanAbort means one mesh record could not be located. It is
	// counted per file and never aborts a decode.
	ErrGeometryScanAbort = errors.New("ubr: geometry scan abort")
)

func outOfRange(what string, off, n, size int) error {
	return errors.Wrapf(ErrCorruptContainer, "%s: %d bytes at %#x outside %#x-byte buffer", what, n, off, size)
}
