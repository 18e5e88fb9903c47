package wrapper

import (
	"github.com/7blacky7/imagewrapper/codec"
	bmpcodec "github.com/7blacky7/imagewrapper/codec/bmp"
	exrcodec "github.com/7blacky7/imagewrapper/codec/exr"
	hdrcodec "github.com/7blacky7/imagewrapper/codec/hdr"
	jpegcodec "github.com/7blacky7/imagewrapper/codec/jpeg"
	pngcodec "github.com/7blacky7/imagewrapper/codec/png"
	qoicodec "github.com/7blacky7/imagewrapper/codec/qoi"
	tiffcodec "github.com/7blacky7/imagewrapper/codec/tiff"
	webpcodec "github.com/7blacky7/imagewrapper/codec/webp"
	"github.com/7blacky7/imagewrapper/format"
)

// builtin lists the adapter for every format in format.All.
var builtin = []struct {
	format  format.Format
	factory Factory
}{
	{format.PNG, func() codec.Adapter { return pngcodec.New() }},
	{format.JPEG, func() codec.Adapter { return jpegcodec.New() }},
	{format.BMP, func() codec.Adapter { return bmpcodec.New() }},
	{format.TIFF, func() codec.Adapter { return tiffcodec.New() }},
	{format.WebP, func() codec.Adapter { return webpcodec.New() }},
	{format.QOI, func() codec.Adapter { return qoicodec.New() }},
	{format.EXR, func() codec.Adapter { return exrcodec.New() }},
	{format.HDR, func() codec.Adapter { return hdrcodec.New() }},
}

// DefaultRegistry holds the built-in adapters. It is populated before main
// runs and only read afterwards.
var DefaultRegistry = NewRegistry()

func init() {
	for _, b := range builtin {
		if err := DefaultRegistry.Register(b.format, b.factory); err != nil {
			panic(err)
		}
	}
}

// New returns an empty session for f from DefaultRegistry.
func New(f format.Format, opts ...Option) (*Session, error) {
	return DefaultRegistry.New(f, opts...)
}

// NewFromBytes sniffs data and returns a session from DefaultRegistry.
func NewFromBytes(data []byte, opts ...Option) (*Session, error) {
	return DefaultRegistry.NewFromBytes(data, opts...)
}

// Formats lists the formats of DefaultRegistry.
func Formats() []format.Format {
	return DefaultRegistry.Formats()
}

// Transcode converts data with DefaultRegistry.
func Transcode(data []byte, req TranscodeRequest) (*TranscodeResult, error) {
	return DefaultRegistry.Transcode(data, req)
}
