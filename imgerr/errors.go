// Package imgerr defines the failure kinds shared by every layer of the
// image wrapper: the pixel model, the codec adapters and the sessions.
//
// Each kind is a sentinel error. Failures are reported as *Error values that
// carry the operation, the format involved, the kind and the underlying cause,
// so callers can match either with errors.Is.
package imgerr

import (
	"errors"
	"strings"
)

// ============================================================================
// Failure kinds
// ============================================================================

var (
	// ErrUnknownFormat is returned when the sniffer recognizes no signature
	// or no adapter is registered for the requested format.
	ErrUnknownFormat = errors.New("unknown image format")

	// ErrNoSourceData is returned by read operations on an empty session.
	ErrNoSourceData = errors.New("no source data")

	// ErrCorruptData is returned when compressed bytes fail to parse.
	ErrCorruptData = errors.New("corrupt image data")

	// ErrCodecFailure is returned when a codec library fails for reasons
	// other than malformed input.
	ErrCodecFailure = errors.New("codec failure")

	// ErrUnsupportedFormat is returned when a bit depth, channel set,
	// compression mode or quality value cannot be represented.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsupportedConversion is returned when no channel mapping exists
	// between two pixel formats.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrInvalidDimension is returned for zero or negative width or height.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrBufferSizeMismatch is returned when payload length disagrees with
	// the declared geometry.
	ErrBufferSizeMismatch = errors.New("buffer size mismatch")

	// ErrAllocationFailure is returned when pixel storage cannot be obtained.
	ErrAllocationFailure = errors.New("allocation failure")
)

var kinds = []error{
	ErrUnknownFormat,
	ErrNoSourceData,
	ErrCorruptData,
	ErrCodecFailure,
	ErrUnsupportedFormat,
	ErrUnsupportedConversion,
	ErrInvalidDimension,
	ErrBufferSizeMismatch,
	ErrAllocationFailure,
}

// Kinds returns every failure kind.
func Kinds() []error {
	return append([]error(nil), kinds...)
}

// ============================================================================
// Error
// ============================================================================

// Error describes a failed operation.
type Error struct {
	Op     string // operation, e.g. "decode", "encode", "convert"
	Format string // image format involved, empty if none
	Kind   error  // one of the Err* sentinels
	Err    error  // underlying cause, may be nil
}

// New returns an *Error of the given kind.
func New(op, format string, kind, err error) *Error {
	return &Error{Op: op, Format: format, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("imagewrapper: ")
	sb.WriteString(e.Op)
	if e.Format != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Format)
	}
	if e.Kind != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the failure kind of err, or nil if err carries none.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
