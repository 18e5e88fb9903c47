package tiff

import (
	"encoding/binary"
	"testing"

	exiftiff "github.com/rwcarlsen/goexif/tiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/codec/codectest"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		format pixel.Format
		native pixel.Format
	}{
		{pixel.RGBA8, pixel.RGBA8},
		{pixel.RGB8, pixel.RGBA8},
		{pixel.Gray8, pixel.Gray8},
		{pixel.Gray16, pixel.Gray16},
		{pixel.RGBA16, pixel.RGBA16},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			src := codectest.Pattern(t, 11, 6, tt.format, true)
			got := codectest.RoundTrip(t, New(), src, codec.Options{}, 0)
			assert.Equal(t, tt.native, got.Format())
		})
	}
}

func TestUncompressed(t *testing.T) {
	a := &Adapter{Compression: tiff.Uncompressed}
	src := codectest.Pattern(t, 8, 8, pixel.RGBA8, true)
	codectest.RoundTrip(t, a, src, codec.Options{}, 0)
}

func TestCorrupt(t *testing.T) {
	a := New()
	data, err := a.Encode(codectest.Pattern(t, 16, 16, pixel.RGBA8, true), codec.Options{})
	require.NoError(t, err)

	codectest.Truncated(t, a, data, 1)
	codectest.Truncated(t, a, data, 10)
	codectest.Garbage(t, a, data[:4])
}

func TestLayout(t *testing.T) {
	for _, a := range []*Adapter{New(), {Compression: tiff.Uncompressed}} {
		data, err := a.Encode(codectest.Pattern(t, 9, 7, pixel.RGBA8, true), codec.Options{})
		require.NoError(t, err)
		require.NoError(t, checkLayout(data))

		for n := range len(data) {
			require.Error(t, checkLayout(data[:n]), "prefix of %d bytes", n)
		}
	}
}

func TestLayoutSegmentPastEnd(t *testing.T) {
	// IFD holding only a strip that runs past the end
	le := binary.LittleEndian
	data := []byte("II*\x00")
	data = le.AppendUint32(data, 8)
	data = le.AppendUint16(data, 2)
	data = le.AppendUint16(data, tagStripOffsets)
	data = le.AppendUint16(data, uint16(exiftiff.DTLong))
	data = le.AppendUint32(data, 1)
	data = le.AppendUint32(data, 30)
	data = le.AppendUint16(data, tagStripByteCounts)
	data = le.AppendUint16(data, uint16(exiftiff.DTLong))
	data = le.AppendUint32(data, 1)
	data = le.AppendUint32(data, 100)
	data = le.AppendUint32(data, 0)

	assert.ErrorContains(t, checkLayout(data), "segment 0")

	b, err := New().Decode(data)
	require.ErrorIs(t, err, imgerr.ErrCorruptData)
	assert.Nil(t, b)
}
