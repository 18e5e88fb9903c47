package pixel

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/7blacky7/imagewrapper/imgerr"
)

// FormatForModel returns the Format FromImage produces for images of the given
// color model. Header readers use it so their metadata matches a full decode.
//
// Gray models keep their depth, as do palettes of opaque grays, which become
// Gray8. 16-bit color models become RGBA16 and every other model RGBA8.
func FormatForModel(m color.Model, cs ColorSpace) Format {
	if p, ok := m.(color.Palette); ok {
		if grayPalette(p) {
			return Format{Gray, Depth8, cs}
		}
		return Format{RGBA, Depth8, cs}
	}
	switch m {
	case color.GrayModel:
		return Format{Gray, Depth8, cs}
	case color.Gray16Model:
		return Format{Gray, Depth16, cs}
	case color.RGBA64Model, color.NRGBA64Model, color.Alpha16Model:
		return Format{RGBA, Depth16, cs}
	}
	return Format{RGBA, Depth8, cs}
}

func grayPalette(p color.Palette) bool {
	if len(p) == 0 {
		return false
	}
	for _, c := range p {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff || r%0x101 != 0 {
			return false
		}
	}
	return true
}

// FromImage copies img into a new Buffer tagged with cs. Premultiplied
// sources are converted to straight alpha.
func FromImage(img image.Image, cs ColorSpace) (*Buffer, error) {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	f := FormatForModel(img.ColorModel(), cs)

	n, err := size(w, h, f)
	if err != nil {
		return nil, err
	}
	data, err := alloc(n)
	if err != nil {
		return nil, err
	}
	stride := w * f.BytesPerPixel()

	switch src := img.(type) {
	case *image.Gray:
		for y := range h {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(data[y*stride:], src.Pix[i:i+w])
		}
	case *image.NRGBA:
		for y := range h {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(data[y*stride:], src.Pix[i:i+4*w])
		}
	case *image.Gray16:
		for y := range h {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			swap16(data[y*stride:(y+1)*stride], src.Pix[i:i+2*w])
		}
	case *image.NRGBA64:
		for y := range h {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			swap16(data[y*stride:(y+1)*stride], src.Pix[i:i+8*w])
		}
	case *image.RGBA:
		for y := range h {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			row := data[y*stride:]
			for x := range w {
				p := src.Pix[i+4*x : i+4*x+4]
				if p[3] == 0xff {
					copy(row[4*x:], p)
					continue
				}
				c := color.NRGBAModel.Convert(color.RGBA{p[0], p[1], p[2], p[3]}).(color.NRGBA)
				row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = c.R, c.G, c.B, c.A
			}
		}
	default:
		generic(data, img, f)
	}

	return &Buffer{width: w, height: h, format: f, data: data}, nil
}

func generic(data []byte, img image.Image, f Format) {
	r := img.Bounds()
	o := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.At(x, y)
			switch {
			case f.Layout == Gray && f.Depth == Depth8:
				data[o] = color.GrayModel.Convert(c).(color.Gray).Y
			case f.Layout == Gray:
				binary.LittleEndian.PutUint16(data[o:], color.Gray16Model.Convert(c).(color.Gray16).Y)
			case f.Depth == Depth16:
				n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
				binary.LittleEndian.PutUint16(data[o:], n.R)
				binary.LittleEndian.PutUint16(data[o+2:], n.G)
				binary.LittleEndian.PutUint16(data[o+4:], n.B)
				binary.LittleEndian.PutUint16(data[o+6:], n.A)
			default:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				data[o], data[o+1], data[o+2], data[o+3] = n.R, n.G, n.B, n.A
			}
			o += f.BytesPerPixel()
		}
	}
}

// Image returns a copy of the buffer as an image.Image: *image.Gray or
// *image.Gray16 for gray layouts, *image.NRGBA or *image.NRGBA64 otherwise.
// Float buffers must be converted to an integer depth first.
func (b *Buffer) Image() (image.Image, error) {
	if b.format.Depth.IsFloat() {
		return nil, imgerr.New("image", "", imgerr.ErrUnsupportedFormat, fmt.Errorf("%s has no image.Image equivalent", b.format))
	}

	rect := image.Rect(0, 0, b.width, b.height)
	if b.format.Layout == Gray {
		if b.format.Depth == Depth8 {
			return &image.Gray{Pix: b.Bytes(), Stride: b.width, Rect: rect}, nil
		}
		img := image.NewGray16(rect)
		swap16(img.Pix, b.data)
		return img, nil
	}

	rgba, err := b.ConvertTo(Format{RGBA, b.format.Depth, b.format.Space})
	if err != nil {
		return nil, err
	}
	if rgba.format.Depth == Depth8 {
		return &image.NRGBA{Pix: rgba.Bytes(), Stride: 4 * b.width, Rect: rect}, nil
	}
	img := image.NewNRGBA64(rect)
	swap16(img.Pix, rgba.data)
	return img, nil
}

// swap16 copies src into dst reversing the byte order of every 16-bit word.
func swap16(dst, src []byte) {
	for i := 0; i+1 < len(src); i += 2 {
		dst[i], dst[i+1] = src[i+1], src[i]
	}
}
