package bmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/codec/codectest"
	"github.com/7blacky7/imagewrapper/pixel"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		format pixel.Format
		native pixel.Format
	}{
		{pixel.RGBA8, pixel.RGBA8},
		{pixel.RGB8, pixel.RGBA8},
		{pixel.BGRA8, pixel.RGBA8},
		{pixel.Gray8, pixel.Gray8},
		{pixel.Gray16, pixel.Gray8},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			src := codectest.Pattern(t, 9, 5, tt.format, true)
			got := codectest.RoundTrip(t, New(), src, codec.Options{}, 0)
			assert.Equal(t, tt.native, got.Format())
		})
	}
}

func TestCorrupt(t *testing.T) {
	a := New()
	data, err := a.Encode(codectest.Pattern(t, 16, 16, pixel.RGB8, true), codec.Options{})
	require.NoError(t, err)

	codectest.Truncated(t, a, data, 10)
	codectest.Garbage(t, a, data[:2])
}
