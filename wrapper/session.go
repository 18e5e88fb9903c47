package wrapper

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/logutil"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Stats counts the codec work a session has done.
type Stats struct {
	Decodes     int // adapter Decode calls
	Encodes     int // adapter Encode calls
	Probes      int // header-only metadata reads
	Conversions int // pixel format conversions
}

// Session holds one image as compressed bytes, raw pixels, or both.
//
// Whichever representation the caller sets last is the source. The other one
// is derived on demand and kept until a new source is set. A Session is not
// safe for concurrent use.
type Session struct {
	adapter codec.Adapter
	opts    SessionOptions
	log     *slog.Logger

	compressed      []byte
	compressedFresh bool
	encodedWith     *codec.Options // nil when compressed came from the caller

	raw      *pixel.Buffer
	rawFresh bool
	view     *pixel.Buffer // last converted view of raw

	info *codec.Info // header metadata of compressed

	stats Stats
}

func newSession(a codec.Adapter, opts ...Option) *Session {
	o := DefaultSessionOptions()
	o.Apply(opts...)
	return &Session{
		adapter: a,
		opts:    o,
		log:     o.Logger.With("format", a.Format()),
	}
}

// Format returns the compressed format the session is bound to.
func (s *Session) Format() format.Format { return s.adapter.Format() }

// Stats returns the session's codec counters.
func (s *Session) Stats() Stats { return s.stats }

// Empty reports whether neither representation is set.
func (s *Session) Empty() bool { return !s.compressedFresh && !s.rawFresh }

// HasCompressed reports whether compressed bytes are available without
// encoding.
func (s *Session) HasCompressed() bool { return s.compressedFresh }

// HasRaw reports whether raw pixels are available without decoding.
func (s *Session) HasRaw() bool { return s.rawFresh }

func (s *Session) err(op string, kind, err error) error {
	return imgerr.New(op, s.Format().String(), kind, err)
}

// ============================================================================
// Setters
// ============================================================================

// SetCompressed makes a copy of data the session's source and drops any raw
// pixels derived earlier. Nothing is decoded until pixels or metadata are
// requested.
//
// Data that carries another format's signature is rejected with
// ErrCorruptData and leaves the session unchanged.
func (s *Session) SetCompressed(data []byte) error {
	if len(data) == 0 {
		return s.err("set compressed", imgerr.ErrCorruptData, fmt.Errorf("empty input"))
	}
	if got := format.Detect(data); got != format.Unknown && got != s.Format() {
		return s.err("set compressed", imgerr.ErrCorruptData, fmt.Errorf("data is %s", got))
	}

	s.reset()
	s.compressed = bytes.Clone(data)
	s.compressedFresh = true
	logutil.TraceTo(s.log, "compressed source set", "bytes", len(data))
	return nil
}

// SetRaw makes buf the session's source and drops any compressed bytes
// derived earlier. Buffers are immutable so buf is kept as is.
func (s *Session) SetRaw(buf *pixel.Buffer) error {
	if buf == nil {
		return s.err("set raw", imgerr.ErrNoSourceData, fmt.Errorf("nil buffer"))
	}
	if err := buf.Format().Validate(); err != nil {
		return err
	}

	s.reset()
	s.raw = buf
	s.rawFresh = true
	logutil.TraceTo(s.log, "raw source set", "pixel", buf.Format(), "width", buf.Width(), "height", buf.Height())
	return nil
}

// Reset returns the session to the empty state. Counters are kept.
func (s *Session) Reset() { s.reset() }

func (s *Session) reset() {
	s.compressed = nil
	s.compressedFresh = false
	s.encodedWith = nil
	s.raw = nil
	s.rawFresh = false
	s.view = nil
	s.info = nil
}

// ============================================================================
// Raw pixels
// ============================================================================

// Raw returns the image's pixels, decoding the compressed source on first
// use. Options select a layout, depth or color space other than the decoded
// one; the conversion is cached until a different one is requested.
//
// Repeated calls without an intervening setter return the same buffer.
func (s *Session) Raw(opts ...RawOption) (*pixel.Buffer, error) {
	req := rawRequest(opts)
	if err := validRequest(req); err != nil {
		return nil, err
	}

	native, err := s.native()
	if err != nil {
		return nil, err
	}

	want := native.Format().With(req)
	if want == native.Format() {
		return native, nil
	}
	if s.view != nil && s.view.Format() == want {
		return s.view, nil
	}

	view, err := s.convert(native, want)
	if err != nil {
		return nil, err
	}
	s.view = view
	return view, nil
}

func validRequest(f pixel.Format) error {
	if (f.Layout != 0 && !f.Layout.Valid()) ||
		(f.Depth != 0 && !f.Depth.Valid()) ||
		(f.Space != 0 && !f.Space.Valid()) {
		return imgerr.New("raw", "", imgerr.ErrUnsupportedFormat, fmt.Errorf("pixel format %s", f))
	}
	return nil
}

// native returns the raw source or the decoded compressed source.
func (s *Session) native() (*pixel.Buffer, error) {
	if s.rawFresh {
		return s.raw, nil
	}
	if !s.compressedFresh {
		return nil, s.err("decode", imgerr.ErrNoSourceData, nil)
	}

	if s.opts.MaxPixels > 0 {
		if p, ok := s.adapter.(codec.Prober); ok {
			info, err := s.probe(p)
			if err != nil {
				return nil, err
			}
			if info.Pixels() > s.opts.MaxPixels {
				return nil, s.err("decode", imgerr.ErrAllocationFailure,
					fmt.Errorf("%dx%d exceeds limit of %d pixels", info.Width, info.Height, s.opts.MaxPixels))
			}
		}
	}

	start := time.Now()
	s.stats.Decodes++
	buf, err := s.adapter.Decode(s.compressed)
	if err != nil {
		s.log.Debug("decode failed", "bytes", len(s.compressed), "error", err)
		return nil, err
	}

	if s.assume(buf.Format()) != buf.Format() {
		if buf, err = buf.WithColorSpace(s.opts.AssumeSpace); err != nil {
			return nil, err
		}
	}

	s.log.Debug("decoded", "width", buf.Width(), "height", buf.Height(), "pixel", buf.Format(), "elapsed", time.Since(start))
	s.raw = buf
	s.rawFresh = true
	return buf, nil
}

// assume applies the assumed color space to integer formats.
func (s *Session) assume(f pixel.Format) pixel.Format {
	if s.opts.AssumeSpace.Valid() && !f.Depth.IsFloat() {
		f.Space = s.opts.AssumeSpace
	}
	return f
}

func (s *Session) convert(src *pixel.Buffer, want pixel.Format) (*pixel.Buffer, error) {
	s.stats.Conversions++
	logutil.TraceTo(s.log, "converting", "from", src.Format(), "to", want)
	return src.ConvertTo(want)
}

// ============================================================================
// Compressed bytes
// ============================================================================

// Compressed returns the image in the session's format. Without options the
// stored bytes are returned when present. With options the image is encoded
// again unless the stored bytes came from an encode with the same options.
//
// Pixels are converted to the closest format the encoder accepts first, e.g.
// gray to RGB for formats without a gray mode.
func (s *Session) Compressed(opts ...codec.Options) ([]byte, error) {
	var want *codec.Options
	if len(opts) > 0 {
		o := opts[0]
		want = &o
	}

	if s.compressedFresh {
		if want == nil || (s.encodedWith != nil && *s.encodedWith == *want) {
			return bytes.Clone(s.compressed), nil
		}
	}

	native, err := s.native()
	if err != nil {
		return nil, err
	}

	o := codec.DefaultOptions()
	if want != nil {
		o = *want
	}

	src := native
	if target := s.adapter.Target(native.Format()); target != native.Format() {
		if src, err = s.convert(native, target); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	s.stats.Encodes++
	data, err := s.adapter.Encode(src, o)
	if err != nil {
		s.log.Debug("encode failed", "pixel", src.Format(), "quality", o.Quality, "error", err)
		return nil, err
	}
	s.log.Debug("encoded", "bytes", len(data), "pixel", src.Format(), "quality", o.Quality, "elapsed", time.Since(start))

	s.compressed = data
	s.compressedFresh = true
	s.encodedWith = &o
	s.info = nil
	return bytes.Clone(data), nil
}

// ============================================================================
// Metadata
// ============================================================================

// Info returns the image's dimensions and the pixel format Raw returns
// without options. Compressed sources are read from their header when the
// adapter supports it and decoded otherwise.
func (s *Session) Info() (codec.Info, error) {
	if s.rawFresh {
		return codec.Info{Width: s.raw.Width(), Height: s.raw.Height(), Format: s.raw.Format()}, nil
	}
	if !s.compressedFresh {
		return codec.Info{}, s.err("info", imgerr.ErrNoSourceData, nil)
	}
	if p, ok := s.adapter.(codec.Prober); ok {
		return s.probe(p)
	}

	buf, err := s.native()
	if err != nil {
		return codec.Info{}, err
	}
	return codec.Info{Width: buf.Width(), Height: buf.Height(), Format: buf.Format()}, nil
}

func (s *Session) probe(p codec.Prober) (codec.Info, error) {
	if s.info != nil {
		return *s.info, nil
	}
	s.stats.Probes++
	info, err := p.Probe(s.compressed)
	if err != nil {
		return codec.Info{}, err
	}
	info.Format = s.assume(info.Format)
	s.info = &info
	return info, nil
}

// Width returns the image width in pixels.
func (s *Session) Width() (int, error) {
	info, err := s.Info()
	return info.Width, err
}

// Height returns the image height in pixels.
func (s *Session) Height() (int, error) {
	info, err := s.Info()
	return info.Height, err
}

// Layout returns the channel layout Raw returns without options.
func (s *Session) Layout() (pixel.Layout, error) {
	info, err := s.Info()
	return info.Format.Layout, err
}

// Depth returns the bit depth Raw returns without options.
func (s *Session) Depth() (pixel.Depth, error) {
	info, err := s.Info()
	return info.Format.Depth, err
}

// ColorSpace returns the color space tag Raw returns without options.
func (s *Session) ColorSpace() (pixel.ColorSpace, error) {
	info, err := s.Info()
	return info.Format.Space, err
}
