// Package bmp adapts golang.org/x/image/bmp to the codec.Adapter contract.
package bmp

import (
	"errors"

	"golang.org/x/image/bmp"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Adapter encodes and decodes uncompressed Windows bitmaps. Every file
// decodes to RGBA8, including palette based ones.
type Adapter struct{}

// New returns a BMP adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Format() format.Format { return format.BMP }

var classify = codec.CorruptUnlessUnsupported(func(err error) bool {
	return errors.Is(err, bmp.ErrUnsupported)
})

func (*Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	return codec.DecodeImage(format.BMP, data, bmp.Decode, classify, pixel.SRGB)
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	return codec.ProbeImage(format.BMP, data, bmp.DecodeConfig, classify, pixel.SRGB)
}

// Target is Gray8 for gray sources, written as an 8-bit gray palette, and
// RGBA8 otherwise. Opaque RGBA images are written as 24-bit, others as 32-bit
// with alpha.
func (*Adapter) Target(src pixel.Format) pixel.Format {
	return codec.IntegerTarget(src, false)
}

// Encode writes buf as BMP. Options are ignored.
func (a *Adapter) Encode(buf *pixel.Buffer, _ codec.Options) ([]byte, error) {
	return codec.EncodeImage(format.BMP, buf, a.Target(buf.Format()), bmp.Encode)
}
