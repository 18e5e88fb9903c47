// Package hdr adapts the Radiance RGBE reader and writer in internal/rgbe to
// the codec.Adapter contract.
package hdr

import (
	"bytes"
	"errors"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/internal/rgbe"
	"github.com/7blacky7/imagewrapper/pixel"
)

var native = pixel.Format{Layout: pixel.RGBA, Depth: pixel.Float32, Space: pixel.Linear}

// Adapter encodes and decodes Radiance HDR. Images decode to linear RGBA
// float32 with opaque alpha. Encoding drops alpha and is lossy: each pixel
// keeps 8 bits of mantissa per channel with a shared exponent.
type Adapter struct{}

// New returns a Radiance HDR adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Format() format.Format { return format.HDR }

func classify(op string, err error) error {
	var ue rgbe.UnsupportedError
	if errors.As(err, &ue) {
		return codec.Unsupported(format.HDR, op, err)
	}
	return codec.Corrupt(format.HDR, op, err)
}

func (*Adapter) Probe(data []byte) (codec.Info, error) {
	h, err := rgbe.Probe(data)
	if err != nil {
		return codec.Info{}, classify("probe", err)
	}
	return codec.Info{Width: h.Width, Height: h.Height, Format: native}, nil
}

func (a *Adapter) Decode(data []byte) (*pixel.Buffer, error) {
	info, err := a.Probe(data)
	if err != nil {
		return nil, err
	}
	if err := codec.CheckSize(format.HDR, "decode", info.Width, info.Height, native); err != nil {
		return nil, err
	}

	var buf *pixel.Buffer
	err = codec.Guard(format.HDR, "decode", func() error {
		m, err := rgbe.Decode(bytes.NewReader(data))
		if err != nil {
			return classify("decode", err)
		}
		out := make([]float32, m.Width*m.Height*4)
		for p := range m.Width * m.Height {
			copy(out[4*p:4*p+3], m.Pix[3*p:3*p+3])
			out[4*p+3] = 1
		}
		buf, err = pixel.FromFloat32s(m.Width, m.Height, native, out)
		return err
	})
	if err != nil {
		return nil, codec.Wrap(format.HDR, "decode", err, imgerr.ErrCorruptData)
	}
	return buf, nil
}

// Target is always linear RGB float32.
func (*Adapter) Target(pixel.Format) pixel.Format {
	return pixel.Format{Layout: pixel.RGB, Depth: pixel.Float32, Space: pixel.Linear}
}

// Encode writes buf as run length encoded RGBE. Options are ignored.
func (a *Adapter) Encode(buf *pixel.Buffer, _ codec.Options) ([]byte, error) {
	var out bytes.Buffer
	err := codec.Guard(format.HDR, "encode", func() error {
		conv, err := buf.ConvertTo(a.Target(buf.Format()))
		if err != nil {
			return err
		}
		samples, err := conv.Float32s()
		if err != nil {
			return err
		}
		return rgbe.Encode(&out, &rgbe.Image{Width: conv.Width(), Height: conv.Height(), Pix: samples})
	})
	if err != nil {
		return nil, codec.Wrap(format.HDR, "encode", err, imgerr.ErrCodecFailure)
	}
	return out.Bytes(), nil
}
