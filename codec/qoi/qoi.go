// Package qoi adapts github.com/xfmoulet/qoi to the codec.Adapter contract.
package qoi

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/xfmoulet/qoi"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

const (
	headerLen = 14

	colorspaceSRGB   = 0
	colorspaceLinear = 1
)

var endMarker = []byte{0, 0, 0, 0, 0, 0, 0, 1}

// Adapter encodes and decodes QOI. Images decode to RGBA8; the header's
// colorspace byte selects the sRGB or linear tag.
type Adapter struct{}

// New returns a QOI adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Format() format.Format { return format.QOI }

type header struct {
	width, height int
	channels      byte
	space         pixel.ColorSpace
}

func parseHeader(data []byte) (header, error) {
	if len(data) < headerLen || !bytes.HasPrefix(data, []byte("qoif")) {
		return header{}, fmt.Errorf("short header")
	}
	h := header{
		width:    int(binary.BigEndian.Uint32(data[4:])),
		height:   int(binary.BigEndian.Uint32(data[8:])),
		channels: data[12],
		space:    pixel.SRGB,
	}
	if h.width == 0 || h.height == 0 {
		return header{}, fmt.Errorf("invalid dimensions %dx%d", h.width, h.height)
	}
	if h.channels != 3 && h.channels != 4 {
		return header{}, fmt.Errorf("invalid channel count %d", h.channels)
	}
	switch data[13] {
	case colorspaceSRGB:
	case colorspaceLinear:
		h.space = pixel.Linear
	default:
		return header{}, fmt.Errorf("invalid colorspace %d", data[13])
	}
	return h, nil
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	h, err := parseHeader(data)
	if err != nil {
		return codec.Info{}, codec.Corrupt(format.QOI, "probe", err)
	}
	return codec.Info{Width: h.width, Height: h.height, Format: pixel.Format{Layout: pixel.RGBA, Depth: pixel.Depth8, Space: h.space}}, nil
}

// Decode validates the header and the end marker before handing the stream to
// the decoder, which does not detect truncation on its own.
func (*Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, codec.Corrupt(format.QOI, "decode", err)
	}
	if len(data) < headerLen+len(endMarker) || !bytes.HasSuffix(data, endMarker) {
		return nil, codec.Corrupt(format.QOI, "decode", fmt.Errorf("missing end marker"))
	}
	if err := codec.CheckSize(format.QOI, "decode", h.width, h.height, pixel.RGBA8); err != nil {
		return nil, err
	}
	return codec.DecodeImage(format.QOI, data, qoi.Decode, codec.CorruptUnlessUnsupported(nil), h.space)
}

// Target is always RGBA8. Float sources become sRGB; integer sources keep
// their tag, which the header's colorspace byte records.
func (*Adapter) Target(src pixel.Format) pixel.Format {
	t := codec.IntegerTarget(src, false)
	t.Layout = pixel.RGBA
	if !src.Depth.IsFloat() && src.Space == pixel.Linear {
		t.Space = pixel.Linear
	}
	return t
}

// Encode writes buf as QOI. Linear buffers are marked linear in the header.
// Options are ignored.
func (a *Adapter) Encode(buf *pixel.Buffer, _ codec.Options) ([]byte, error) {
	target := a.Target(buf.Format())
	out, err := codec.EncodeImage(format.QOI, buf, target, qoi.Encode)
	if err != nil {
		return nil, err
	}
	if len(out) < headerLen {
		return nil, codec.Failure(format.QOI, "encode", fmt.Errorf("short output"))
	}
	if target.Space == pixel.Linear {
		out[13] = colorspaceLinear
	} else {
		out[13] = colorspaceSRGB
	}
	return out, nil
}
