// Package jpeg adapts image/jpeg to the codec.Adapter contract.
package jpeg

import (
	"errors"
	"image"
	"image/jpeg"
	"io"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

// DefaultQuality is used when Options.Quality is zero.
const DefaultQuality = 85

// Adapter encodes and decodes baseline and progressive JPEG. Grayscale files
// decode to Gray8 and color files to RGBA8 with opaque alpha.
type Adapter struct{}

// New returns a JPEG adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Format() format.Format { return format.JPEG }

var classify = codec.CorruptUnlessUnsupported(func(err error) bool {
	var ue jpeg.UnsupportedError
	return errors.As(err, &ue)
})

func (*Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	return codec.DecodeImage(format.JPEG, data, jpeg.Decode, classify, pixel.SRGB)
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	return codec.ProbeImage(format.JPEG, data, jpeg.DecodeConfig, classify, pixel.SRGB)
}

// Target returns sRGB Gray8 for gray layouts and sRGB RGB8 otherwise. Alpha
// is dropped.
func (*Adapter) Target(src pixel.Format) pixel.Format {
	if src.Layout.IsGray() {
		return pixel.Gray8
	}
	return pixel.RGB8
}

// Encode writes buf as baseline JPEG at Options.Quality (1-100).
func (a *Adapter) Encode(buf *pixel.Buffer, opts codec.Options) ([]byte, error) {
	if err := codec.CheckQuality(format.JPEG, opts.Quality, 1, 100); err != nil {
		return nil, err
	}
	q := opts.Quality
	if q == 0 {
		q = DefaultQuality
	}
	return codec.EncodeImage(format.JPEG, buf, a.Target(buf.Format()), func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, &jpeg.Options{Quality: q})
	})
}
