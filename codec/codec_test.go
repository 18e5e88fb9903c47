package codec

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
)

func TestGuard(t *testing.T) {
	t.Run("passthrough", func(t *testing.T) {
		err := Guard(format.PNG, "decode", func() error { return io.EOF })
		assert.Equal(t, io.EOF, err)
	})

	t.Run("panic", func(t *testing.T) {
		err := Guard(format.PNG, "decode", func() error { panic("broken table") })
		require.ErrorIs(t, err, imgerr.ErrCodecFailure)
		assert.Contains(t, err.Error(), "broken table")
	})

	t.Run("allocation", func(t *testing.T) {
		n := -1
		err := Guard(format.TIFF, "decode", func() error {
			_ = make([]byte, n)
			return nil
		})
		require.ErrorIs(t, err, imgerr.ErrAllocationFailure)
	})

	t.Run("index out of range", func(t *testing.T) {
		var s []int
		i := 3
		err := Guard(format.BMP, "decode", func() error {
			_ = s[i]
			return nil
		})
		require.ErrorIs(t, err, imgerr.ErrCodecFailure)
	})
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(format.PNG, "decode", nil, imgerr.ErrCorruptData))

	err := Wrap(format.PNG, "decode", io.ErrUnexpectedEOF, imgerr.ErrCorruptData)
	require.ErrorIs(t, err, imgerr.ErrCorruptData)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// kinds from lower layers survive and pick up the format
	inner := imgerr.New("validate", "", imgerr.ErrInvalidDimension, errors.New("0x0"))
	err = Wrap(format.QOI, "decode", inner, imgerr.ErrCorruptData)
	require.ErrorIs(t, err, imgerr.ErrInvalidDimension)
	assert.NotErrorIs(t, err, imgerr.ErrCorruptData)

	var e *imgerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "qoi", e.Format)
}

func TestCheckQuality(t *testing.T) {
	assert.NoError(t, CheckQuality(format.JPEG, 0, 1, 100))
	assert.NoError(t, CheckQuality(format.JPEG, 100, 1, 100))
	assert.ErrorIs(t, CheckQuality(format.JPEG, 101, 1, 100), imgerr.ErrUnsupportedFormat)
	assert.ErrorIs(t, CheckQuality(format.PNG, -3, 1, 9), imgerr.ErrUnsupportedFormat)
}

func TestIntegerTarget(t *testing.T) {
	linear := func(l pixel.Layout, d pixel.Depth) pixel.Format {
		return pixel.Format{Layout: l, Depth: d, Space: pixel.Linear}
	}
	tests := []struct {
		src     pixel.Format
		allow16 bool
		want    pixel.Format
	}{
		{pixel.RGBA8, true, pixel.RGBA8},
		{pixel.RGB8, false, pixel.RGBA8},
		{pixel.Gray16, true, pixel.Gray16},
		{pixel.Gray16, false, pixel.Gray8},
		{linear(pixel.RGB, pixel.Depth8), true, pixel.RGBA8},
		{linear(pixel.Gray, pixel.Depth16), true, pixel.Gray16},
		{pixel.RGBAF32, true, pixel.RGBA16},
		{pixel.RGBAF32, false, pixel.RGBA8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntegerTarget(tt.src, tt.allow16), "%s allow16=%v", tt.src, tt.allow16)
	}
}

func TestCheckSize(t *testing.T) {
	require.NoError(t, CheckSize(format.QOI, "decode", 3, 2, pixel.RGBA8))

	err := CheckSize(format.QOI, "decode", 0, 2, pixel.RGBA8)
	require.ErrorIs(t, err, imgerr.ErrCorruptData)
	assert.NotErrorIs(t, err, imgerr.ErrInvalidDimension)

	err = CheckSize(format.EXR, "decode", 1<<30, 1<<30, pixel.RGBAF32)
	require.ErrorIs(t, err, imgerr.ErrAllocationFailure)
	var e *imgerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, format.EXR.String(), e.Format)
}
