// Package exr adapts the go-openexr reader and writer to the codec.Adapter
// contract.
package exr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/x448/float16"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Adapter encodes and decodes single-part OpenEXR. Files with R, G or B
// channels decode to linear RGBA float32 with missing channels filled (color
// 0, alpha 1); luminance-only files decode to Gray or GrayAlpha float32.
type Adapter struct {
	Compression exr.Compression
	// Half writes 16-bit float channels.
	Half bool
}

// New returns an adapter writing ZIP compressed FLOAT channels.
func New() *Adapter { return &Adapter{Compression: exr.CompressionZIP} }

func (*Adapter) Format() format.Format { return format.EXR }

type unsupportedError string

func (e unsupportedError) Error() string { return "exr: unsupported " + string(e) }

func classify(op string, err error) error {
	var ue unsupportedError
	if errors.As(err, &ue) || errors.Is(err, exr.ErrUnsupportedVersion) || errors.Is(err, exr.ErrUnsupportedFormat) {
		return codec.Unsupported(format.EXR, op, err)
	}
	return codec.Corrupt(format.EXR, op, err)
}

// nativeFormat picks the buffer format for a channel set.
func nativeFormat(names []string) (pixel.Format, error) {
	has := map[string]bool{}
	for _, n := range names {
		has[n] = true
	}
	f := pixel.Format{Depth: pixel.Float32, Space: pixel.Linear}
	switch {
	case has["R"] || has["G"] || has["B"]:
		f.Layout = pixel.RGBA
	case has["Y"] && has["A"]:
		f.Layout = pixel.GrayAlpha
	case has["Y"]:
		f.Layout = pixel.Gray
	default:
		return f, unsupportedError(fmt.Sprintf("channel set %v", names))
	}
	return f, nil
}

var layoutChannels = map[pixel.Layout][]string{
	pixel.Gray:      {"Y"},
	pixel.GrayAlpha: {"Y", "A"},
	pixel.RGB:       {"R", "G", "B"},
	pixel.RGBA:      {"R", "G", "B", "A"},
}

// open parses the file structure and returns the first part's header along
// with its native format.
func open(data []byte) (*exr.File, *exr.Header, pixel.Format, error) {
	f, err := exr.OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, pixel.Format{}, err
	}
	if f.IsDeep() {
		return nil, nil, pixel.Format{}, unsupportedError("deep data")
	}
	if f.IsMultiPart() {
		return nil, nil, pixel.Format{}, unsupportedError("multi-part file")
	}
	h := f.Header(0)
	if h == nil || h.Channels() == nil {
		return nil, nil, pixel.Format{}, errors.New("exr: missing header")
	}
	dw := h.DataWindow()
	if dw.Width() <= 0 || dw.Height() <= 0 {
		return nil, nil, pixel.Format{}, fmt.Errorf("exr: empty data window %dx%d", dw.Width(), dw.Height())
	}
	cl := h.Channels()
	for i := range cl.Len() {
		if c := cl.At(i); c.XSampling != 1 || c.YSampling != 1 {
			return nil, nil, pixel.Format{}, unsupportedError("subsampled channel " + c.Name)
		}
	}
	pf, err := nativeFormat(cl.Names())
	if err != nil {
		return nil, nil, pixel.Format{}, err
	}
	return f, h, pf, nil
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	var info codec.Info
	err := codec.Guard(format.EXR, "probe", func() error {
		_, h, pf, err := open(data)
		if err != nil {
			return classify("probe", err)
		}
		dw := h.DataWindow()
		info = codec.Info{Width: int(dw.Width()), Height: int(dw.Height()), Format: pf}
		return nil
	})
	if err != nil {
		return codec.Info{}, codec.Wrap(format.EXR, "probe", err, imgerr.ErrCorruptData)
	}
	return info, nil
}

func (*Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	var buf *pixel.Buffer
	err := codec.Guard(format.EXR, "decode", func() error {
		f, h, pf, err := open(data)
		if err != nil {
			return classify("decode", err)
		}
		dw := h.DataWindow()
		w, ht := int(dw.Width()), int(dw.Height())
		if err := codec.CheckSize(format.EXR, "decode", w, ht, pf); err != nil {
			return err
		}

		names := layoutChannels[pf.Layout]
		planes := make([][]float32, len(names))
		fb := exr.NewFrameBuffer()
		for i, n := range names {
			planes[i] = make([]float32, w*ht)
			if n == "A" {
				for j := range planes[i] {
					planes[i][j] = 1
				}
			}
			if h.Channels().Get(n) == nil {
				continue
			}
			fb.Set(n, exr.NewSliceFromFloat32(planes[i], w, ht).WithOrigin(int(dw.Min.X), int(dw.Min.Y)))
		}

		if err := readPixels(f, h, fb, w, ht); err != nil {
			return classify("decode", err)
		}

		out := make([]float32, w*ht*len(names))
		for p := range w * ht {
			for c := range names {
				out[p*len(names)+c] = planes[c][p]
			}
		}
		buf, err = pixel.FromFloat32s(w, ht, pf, out)
		return err
	})
	if err != nil {
		return nil, codec.Wrap(format.EXR, "decode", err, imgerr.ErrCorruptData)
	}
	return buf, nil
}

func readPixels(f *exr.File, h *exr.Header, fb *exr.FrameBuffer, w, ht int) error {
	if h.IsTiled() {
		tr, err := exr.NewTiledReader(f)
		if err != nil {
			return err
		}
		tr.SetFrameBuffer(fb)
		td := h.TileDescription()
		if td == nil || td.XSize == 0 || td.YSize == 0 {
			return errors.New("exr: missing tile description")
		}
		tx := (w + int(td.XSize) - 1) / int(td.XSize)
		ty := (ht + int(td.YSize) - 1) / int(td.YSize)
		return tr.ReadTiles(0, 0, tx-1, ty-1)
	}
	sr, err := exr.NewScanlineReader(f)
	if err != nil {
		return err
	}
	sr.SetFrameBuffer(fb)
	dw := h.DataWindow()
	return sr.ReadPixels(int(dw.Min.Y), int(dw.Max.Y))
}

// Target is float32 linear in the source layout, with BGRA reordered to RGBA.
func (*Adapter) Target(src pixel.Format) pixel.Format {
	l := src.Layout
	if l == pixel.BGRA || !l.Valid() {
		l = pixel.RGBA
	}
	return pixel.Format{Layout: l, Depth: pixel.Float32, Space: pixel.Linear}
}

// Encode writes buf as a scanline EXR. Options are ignored.
func (a *Adapter) Encode(buf *pixel.Buffer, _ codec.Options) ([]byte, error) {
	var out seekBuffer
	err := codec.Guard(format.EXR, "encode", func() error {
		conv, err := buf.ConvertTo(a.Target(buf.Format()))
		if err != nil {
			return err
		}
		samples, err := conv.Float32s()
		if err != nil {
			return err
		}
		w, ht := conv.Width(), conv.Height()
		names := layoutChannels[conv.Layout()]

		typ := exr.PixelTypeFloat
		if a.Half {
			typ = exr.PixelTypeHalf
		}
		h := exr.NewScanlineHeader(w, ht)
		h.SetCompression(a.Compression)
		cl := exr.NewChannelList()
		for _, n := range names {
			cl.Add(exr.NewChannel(n, typ))
		}
		h.SetChannels(cl)

		fb := exr.NewFrameBuffer()
		for c, n := range names {
			fb.Set(n, exr.NewSlice(typ, plane(samples, c, len(names), a.Half), w, ht))
		}

		sw, err := exr.NewScanlineWriter(&out, h)
		if err != nil {
			return err
		}
		sw.SetFrameBuffer(fb)
		if err := sw.WritePixels(0, ht-1); err != nil {
			return err
		}
		return sw.Close()
	})
	if err != nil {
		return nil, codec.Wrap(format.EXR, "encode", err, imgerr.ErrCodecFailure)
	}
	return out.Bytes(), nil
}

// plane extracts channel c of interleaved samples as little-endian FLOAT or
// HALF values.
func plane(samples []float32, c, n int, half bool) []byte {
	size := 4
	if half {
		size = 2
	}
	b := make([]byte, 0, len(samples)/n*size)
	for i := c; i < len(samples); i += n {
		if half {
			b = binary.LittleEndian.AppendUint16(b, float16.Fromfloat32(samples[i]).Bits())
		} else {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(samples[i]))
		}
	}
	return b
}

// seekBuffer is an in-memory io.WriteSeeker; the EXR writer seeks back to
// fill in the chunk offset table.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, fmt.Errorf("exr: invalid whence %d", whence)
	}
	p := base + offset
	if p < 0 {
		return 0, errors.New("exr: negative seek position")
	}
	s.pos = int(p)
	return p, nil
}

func (s *seekBuffer) Bytes() []byte { return s.buf }
