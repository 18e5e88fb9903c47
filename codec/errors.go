package codec

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Corrupt reports input that failed to parse.
func Corrupt(f format.Format, op string, err error) error {
	return imgerr.New(op, f.String(), imgerr.ErrCorruptData, err)
}

// Failure reports a library error unrelated to the input bytes.
func Failure(f format.Format, op string, err error) error {
	return imgerr.New(op, f.String(), imgerr.ErrCodecFailure, err)
}

// Unsupported reports a valid request the format cannot represent.
func Unsupported(f format.Format, op string, err error) error {
	return imgerr.New(op, f.String(), imgerr.ErrUnsupportedFormat, err)
}

// Wrap attaches the adapter's format and operation to errors that already
// carry a kind and classifies the rest with fallback.
func Wrap(f format.Format, op string, err error, fallback error) error {
	if err == nil {
		return nil
	}
	if kind := imgerr.KindOf(err); kind != nil {
		var e *imgerr.Error
		if errors.As(err, &e) && e.Format == "" {
			return imgerr.New(op, f.String(), kind, e.Err)
		}
		return err
	}
	return imgerr.New(op, f.String(), fallback, err)
}

// Guard runs fn and turns a panic inside a codec library into an error:
// failed allocations become ErrAllocationFailure, anything else
// ErrCodecFailure.
func Guard(f format.Format, op string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if re, ok := r.(runtime.Error); ok && isAllocation(re) {
			err = imgerr.New(op, f.String(), imgerr.ErrAllocationFailure, re)
			return
		}
		err = imgerr.New(op, f.String(), imgerr.ErrCodecFailure, fmt.Errorf("panic: %v", r))
	}()
	return fn()
}

func isAllocation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "makeslice") || strings.Contains(msg, "out of memory")
}

// CheckQuality rejects quality values outside [lo, hi]. Zero always passes.
func CheckQuality(f format.Format, q, lo, hi int) error {
	if q == 0 || (q >= lo && q <= hi) {
		return nil
	}
	return Unsupported(f, "encode", fmt.Errorf("quality %d outside %d-%d", q, lo, hi))
}

// CheckSize validates dimensions read from a stream header. Zero or negative
// dimensions mean the stream is corrupt; a size that cannot be allocated is
// ErrAllocationFailure.
func CheckSize(f format.Format, op string, w, h int, pf pixel.Format) error {
	if w <= 0 || h <= 0 {
		return Corrupt(f, op, fmt.Errorf("invalid dimensions %dx%d", w, h))
	}
	if _, err := pixel.Size(w, h, pf); err != nil {
		return Wrap(f, op, err, imgerr.ErrAllocationFailure)
	}
	return nil
}
