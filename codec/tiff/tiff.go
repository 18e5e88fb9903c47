// Package tiff adapts golang.org/x/image/tiff to the codec.Adapter contract.
package tiff

import (
	"errors"
	"image"
	"io"

	"golang.org/x/image/tiff"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Adapter encodes and decodes baseline TIFF. Gray files keep their 8 or
// 16-bit depth, color files decode to RGBA8 or RGBA16.
type Adapter struct {
	// Compression applied on encode.
	Compression tiff.CompressionType
}

// New returns a TIFF adapter writing Deflate with a horizontal predictor.
func New() *Adapter { return &Adapter{Compression: tiff.Deflate} }

func (*Adapter) Format() format.Format { return format.TIFF }

var classify = codec.CorruptUnlessUnsupported(func(err error) bool {
	var ue tiff.UnsupportedError
	return errors.As(err, &ue)
})

// Decode checks that every referenced byte range is present before handing
// data to the decoder.
func (*Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	if err := checkLayout(data); err != nil {
		return nil, codec.Corrupt(format.TIFF, "decode", err)
	}
	return codec.DecodeImage(format.TIFF, data, tiff.Decode, classify, pixel.SRGB)
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	return codec.ProbeImage(format.TIFF, data, tiff.DecodeConfig, classify, pixel.SRGB)
}

func (*Adapter) Target(src pixel.Format) pixel.Format {
	return codec.IntegerTarget(src, true)
}

// Encode writes buf as a single-image TIFF. Options are ignored.
func (a *Adapter) Encode(buf *pixel.Buffer, _ codec.Options) ([]byte, error) {
	opts := &tiff.Options{Compression: a.Compression, Predictor: a.Compression != tiff.Uncompressed}
	return codec.EncodeImage(format.TIFF, buf, a.Target(buf.Format()), func(w io.Writer, m image.Image) error {
		return tiff.Encode(w, m, opts)
	})
}
