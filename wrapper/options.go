package wrapper

import (
	"log/slog"

	"github.com/7blacky7/imagewrapper/pixel"
)

// ============================================================================
// Session options
// ============================================================================

// DefaultMaxPixels bounds the images a session decodes unless overridden.
const DefaultMaxPixels int64 = 1 << 28

// SessionOptions configures a Session.
type SessionOptions struct {
	MaxPixels   int64            // decode limit in pixels, 0 for none
	AssumeSpace pixel.ColorSpace // retag integer decodes, 0 keeps the codec's tag
	Logger      *slog.Logger
}

// Option is a functional option for SessionOptions.
type Option func(*SessionOptions)

// DefaultSessionOptions returns the options a session starts with.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		MaxPixels: DefaultMaxPixels,
		Logger:    slog.Default(),
	}
}

// WithMaxPixels limits the size of images a session decodes.
// Values <= 0 disable the limit.
func WithMaxPixels(n int64) Option {
	return func(o *SessionOptions) {
		if n < 0 {
			n = 0
		}
		o.MaxPixels = n
	}
}

// WithAssumedColorSpace tags 8 and 16 bit decodes with cs instead of the
// color space the codec reports. Float decodes are left alone.
func WithAssumedColorSpace(cs pixel.ColorSpace) Option {
	return func(o *SessionOptions) {
		if cs.Valid() {
			o.AssumeSpace = cs
		}
	}
}

// WithLogger sets the logger decode and encode events go to.
func WithLogger(l *slog.Logger) Option {
	return func(o *SessionOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Apply applies opts in order.
func (o *SessionOptions) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// ============================================================================
// Raw view options
// ============================================================================

// RawOption selects the pixel format Session.Raw returns. Fields left unset
// keep the decoded image's own value.
type RawOption func(*pixel.Format)

// WithLayout requests a channel layout.
func WithLayout(l pixel.Layout) RawOption {
	return func(f *pixel.Format) { f.Layout = l }
}

// WithDepth requests a bit depth.
func WithDepth(d pixel.Depth) RawOption {
	return func(f *pixel.Format) { f.Depth = d }
}

// WithColorSpace requests a transfer function.
func WithColorSpace(cs pixel.ColorSpace) RawOption {
	return func(f *pixel.Format) { f.Space = cs }
}

// WithFormat requests every field of f at once.
func WithFormat(want pixel.Format) RawOption {
	return func(f *pixel.Format) { *f = want }
}

func rawRequest(opts []RawOption) pixel.Format {
	var f pixel.Format
	for _, opt := range opts {
		opt(&f)
	}
	return f
}
