package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/imagewrapper/imgerr"
)

func TestFormatForModel(t *testing.T) {
	tests := []struct {
		name  string
		model color.Model
		want  Format
	}{
		{"gray", color.GrayModel, Gray8},
		{"gray16", color.Gray16Model, Gray16},
		{"rgba", color.RGBAModel, RGBA8},
		{"nrgba", color.NRGBAModel, RGBA8},
		{"rgba64", color.RGBA64Model, RGBA16},
		{"nrgba64", color.NRGBA64Model, RGBA16},
		{"ycbcr", color.YCbCrModel, RGBA8},
		{"gray palette", color.Palette{color.Black, color.White, color.Gray{0x80}}, Gray8},
		{"color palette", color.Palette{color.Black, color.NRGBA{1, 2, 3, 255}}, RGBA8},
		{"translucent gray palette", color.Palette{color.NRGBA{9, 9, 9, 10}}, RGBA8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatForModel(tt.model, SRGB))
		})
	}
}

func TestFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.Pix = []byte{10, 20}

	g16 := image.NewGray16(image.Rect(0, 0, 1, 1))
	g16.Pix = []byte{0x12, 0x34}

	premul := image.NewRGBA(image.Rect(0, 0, 2, 1))
	premul.Pix = []byte{10, 20, 30, 255, 64, 0, 0, 128}

	pal := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.NRGBA{1, 2, 3, 4}})

	grayPal := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{color.Gray{0}, color.Gray{200}})
	grayPal.Pix = []byte{1, 0}

	sub := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	sub.Pix = []byte{
		1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4,
	}

	tests := []struct {
		name   string
		img    image.Image
		format Format
		want   []byte
	}{
		{"gray", gray, Gray8, []byte{10, 20}},
		{"gray16 big endian", g16, Gray16, []byte{0x34, 0x12}},
		{"premultiplied", premul, RGBA8, []byte{10, 20, 30, 255, 127, 0, 0, 128}},
		{"paletted", pal, RGBA8, []byte{1, 2, 3, 4}},
		{"gray paletted", grayPal, Gray8, []byte{200, 0}},
		{"subimage", sub.SubImage(image.Rect(1, 1, 2, 2)), RGBA8, []byte{4, 4, 4, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := FromImage(tt.img, SRGB)
			require.NoError(t, err)
			assert.Equal(t, tt.format, b.Format())
			assert.Equal(t, tt.want, b.Bytes())
		})
	}
}

func TestImageRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   []byte
	}{
		{"gray8", Gray8, []byte{1, 2}},
		{"gray16", Gray16, []byte{1, 2, 3, 4}},
		{"rgba8", RGBA8, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"rgba16", RGBA16, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustNew(t, 2, 1, tt.format, tt.data)
			img, err := b.Image()
			require.NoError(t, err)

			back, err := FromImage(img, SRGB)
			require.NoError(t, err)
			assert.True(t, b.Equal(back), "got %v", back.Bytes())
		})
	}
}

func TestImageExpandsLayouts(t *testing.T) {
	b := mustNew(t, 1, 1, BGRA8, []byte{3, 2, 1, 4})
	img, err := b.Image()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, img.At(0, 0))

	b = mustNew(t, 1, 1, RGB8, []byte{1, 2, 3})
	img, err = b.Image()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, img.At(0, 0))
}

func TestImageRejectsFloat(t *testing.T) {
	b, err := Zeroed(1, 1, RGBAF32)
	require.NoError(t, err)
	_, err = b.Image()
	require.ErrorIs(t, err, imgerr.ErrUnsupportedFormat)
}
