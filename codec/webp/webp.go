// Package webp adapts libwebp, through github.com/chai2010/webp, to the
// codec.Adapter contract. Both directions use the same library so lossy
// round trips agree on the YUV range.
package webp

import (
	"image"
	"image/color"
	"io"

	cwebp "github.com/chai2010/webp"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

// DefaultQuality is used when Options.Quality is zero. Quality 100 selects
// lossless mode.
const DefaultQuality = 90

// Adapter encodes and decodes still WebP images. Every file decodes to RGBA8.
type Adapter struct{}

// New returns a WebP adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Format() format.Format { return format.WebP }

var classify = codec.CorruptUnlessUnsupported(nil)

// decode returns libwebp's output as NRGBA; the library fills an RGBA
// container with straight alpha.
func decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m, err := cwebp.DecodeRGBA(data)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{Pix: m.Pix, Stride: m.Stride, Rect: m.Rect}, nil
}

func decodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	w, h, _, err := cwebp.GetInfo(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: w, Height: h}, nil
}

func (*Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	return codec.DecodeImage(format.WebP, data, decode, classify, pixel.SRGB)
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	return codec.ProbeImage(format.WebP, data, decodeConfig, classify, pixel.SRGB)
}

// Target is always RGBA8.
func (*Adapter) Target(src pixel.Format) pixel.Format {
	t := codec.IntegerTarget(src, false)
	t.Layout = pixel.RGBA
	return t
}

// Encode writes buf as lossy WebP at Options.Quality (1-99) or lossless at 100.
func (a *Adapter) Encode(buf *pixel.Buffer, opts codec.Options) ([]byte, error) {
	if err := codec.CheckQuality(format.WebP, opts.Quality, 1, 100); err != nil {
		return nil, err
	}
	q := opts.Quality
	if q == 0 {
		q = DefaultQuality
	}
	o := &cwebp.Options{Lossless: q == 100, Quality: float32(q)}

	return codec.EncodeImage(format.WebP, buf, a.Target(buf.Format()), func(w io.Writer, m image.Image) error {
		// libwebp expects straight alpha in an RGBA container
		if n, ok := m.(*image.NRGBA); ok {
			m = &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
		}
		return cwebp.Encode(w, m, o)
	})
}
