package codec

import (
	"bytes"
	"image"
	"io"

	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
)

// ============================================================================
// Helpers for adapters backed by image.Image codecs
// ============================================================================

// DecodeFunc matches image.Decode style functions such as png.Decode.
type DecodeFunc func(io.Reader) (image.Image, error)

// ConfigFunc matches image.DecodeConfig style functions.
type ConfigFunc func(io.Reader) (image.Config, error)

// EncodeFunc writes m in the adapter's format.
type EncodeFunc func(w io.Writer, m image.Image) error

// Classifier maps a library error to a failure kind.
type Classifier func(error) error

// CorruptUnlessUnsupported classifies errors matched by unsupported as
// ErrUnsupportedFormat and everything else as ErrCorruptData.
func CorruptUnlessUnsupported(unsupported func(error) bool) Classifier {
	return func(err error) error {
		if unsupported != nil && unsupported(err) {
			return imgerr.ErrUnsupportedFormat
		}
		return imgerr.ErrCorruptData
	}
}

// DecodeImage decodes data with fn and normalizes the image into a buffer
// tagged cs.
func DecodeImage(f format.Format, data []byte, fn DecodeFunc, classify Classifier, cs pixel.ColorSpace) (*pixel.Buffer, error) {
	var buf *pixel.Buffer
	err := Guard(f, "decode", func() error {
		img, err := fn(bytes.NewReader(data))
		if err != nil {
			return imgerr.New("decode", f.String(), classify(err), err)
		}
		b := img.Bounds()
		if err := CheckSize(f, "decode", b.Dx(), b.Dy(), pixel.FormatForModel(img.ColorModel(), cs)); err != nil {
			return err
		}
		buf, err = pixel.FromImage(img, cs)
		return err
	})
	if err != nil {
		return nil, Wrap(f, "decode", err, imgerr.ErrCorruptData)
	}
	return buf, nil
}

// ProbeImage reads the header with fn. The reported pixel format is the one
// DecodeImage would produce.
func ProbeImage(f format.Format, data []byte, fn ConfigFunc, classify Classifier, cs pixel.ColorSpace) (Info, error) {
	var info Info
	err := Guard(f, "probe", func() error {
		cfg, err := fn(bytes.NewReader(data))
		if err != nil {
			return imgerr.New("probe", f.String(), classify(err), err)
		}
		pf := pixel.FormatForModel(cfg.ColorModel, cs)
		if err := CheckSize(f, "probe", cfg.Width, cfg.Height, pf); err != nil {
			return err
		}
		info = Info{Width: cfg.Width, Height: cfg.Height, Format: pf}
		return nil
	})
	if err != nil {
		return Info{}, Wrap(f, "probe", err, imgerr.ErrCorruptData)
	}
	return info, nil
}

// EncodeImage converts buf to target and writes it with fn.
func EncodeImage(f format.Format, buf *pixel.Buffer, target pixel.Format, fn EncodeFunc) ([]byte, error) {
	var out bytes.Buffer
	err := Guard(f, "encode", func() error {
		conv, err := buf.ConvertTo(target)
		if err != nil {
			return err
		}
		img, err := conv.Image()
		if err != nil {
			return err
		}
		return fn(&out, img)
	})
	if err != nil {
		return nil, Wrap(f, "encode", err, imgerr.ErrCodecFailure)
	}
	return out.Bytes(), nil
}

// IntegerTarget returns the 8 or 16-bit Gray or RGBA format closest to src.
// The containers using it carry no color space tag, so the target is always
// sRGB and linear samples are encoded on the way out. Float sources map to
// 16-bit.
func IntegerTarget(src pixel.Format, allow16 bool) pixel.Format {
	t := pixel.Format{Layout: pixel.RGBA, Depth: src.Depth, Space: pixel.SRGB}
	if src.Layout == pixel.Gray {
		t.Layout = pixel.Gray
	}
	if src.Depth.IsFloat() {
		t.Depth = pixel.Depth16
	}
	if !allow16 {
		t.Depth = pixel.Depth8
	}
	return t
}
