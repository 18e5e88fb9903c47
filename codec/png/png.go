// Package png adapts image/png to the codec.Adapter contract.
package png

import (
	"errors"
	"image/png"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Adapter encodes and decodes PNG. Gray images decode to Gray8 or Gray16,
// everything else to RGBA8 or RGBA16, tagged sRGB.
type Adapter struct{}

// New returns a PNG adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Format() format.Format { return format.PNG }

var classify = codec.CorruptUnlessUnsupported(func(err error) bool {
	var ue png.UnsupportedError
	return errors.As(err, &ue)
})

func (*Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	return codec.DecodeImage(format.PNG, data, png.Decode, classify, pixel.SRGB)
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	return codec.ProbeImage(format.PNG, data, png.DecodeConfig, classify, pixel.SRGB)
}

// Target keeps gray images gray and stores everything else as RGBA at the
// source depth. Float sources become 16-bit sRGB.
func (*Adapter) Target(src pixel.Format) pixel.Format {
	return codec.IntegerTarget(src, true)
}

// Encode writes buf as PNG. Quality selects deflate effort: 1-3 fastest,
// 4-6 default, 7-9 smallest.
func (a *Adapter) Encode(buf *pixel.Buffer, opts codec.Options) ([]byte, error) {
	if err := codec.CheckQuality(format.PNG, opts.Quality, 1, 9); err != nil {
		return nil, err
	}
	enc := png.Encoder{CompressionLevel: level(opts.Quality)}
	return codec.EncodeImage(format.PNG, buf, a.Target(buf.Format()), enc.Encode)
}

func level(q int) png.CompressionLevel {
	switch {
	case q == 0:
		return png.DefaultCompression
	case q <= 3:
		return png.BestSpeed
	case q <= 6:
		return png.DefaultCompression
	}
	return png.BestCompression
}
