package rgbe

import (
	"bufio"
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *Image {
	m := &Image{Width: w, Height: h, Pix: make([]float32, w*h*3)}
	for i := range w * h {
		// flat areas exercise runs, the ramp exercises literals
		v := float32(i%5) * 0.25
		if i%3 == 0 {
			v = float32(i) * 0.01
		}
		m.Pix[3*i], m.Pix[3*i+1], m.Pix[3*i+2] = v, v*2, 10
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	for _, w := range []int{1, 7, 8, 64, 300} {
		src := testImage(w, 5)
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, src))

		got, err := Decode(&buf)
		require.NoError(t, err)
		require.Equal(t, w, got.Width)
		require.Equal(t, 5, got.Height)

		for i := 0; i < len(src.Pix); i += 3 {
			peak := math.Max(float64(src.Pix[i]), math.Max(float64(src.Pix[i+1]), float64(src.Pix[i+2])))
			for c := range 3 {
				assert.InDelta(t, src.Pix[i+c], got.Pix[i+c], peak/128+1e-6, "width %d sample %d", w, i+c)
			}
		}
	}
}

func TestRunLengthShrinksFlatImage(t *testing.T) {
	m := &Image{Width: 256, Height: 4, Pix: make([]float32, 256*4*3)}
	for i := range m.Pix {
		m.Pix[i] = 1
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	assert.Less(t, buf.Len(), 256*4*4/10)
}

func TestDecodeOldStyleRepeat(t *testing.T) {
	var data bytes.Buffer
	data.WriteString("#?RGBE\n\n-Y 1 +X 4\n")
	data.Write([]byte{128, 64, 32, 129})
	data.Write([]byte{1, 1, 1, 3})

	got, err := Decode(&data)
	require.NoError(t, err)
	for x := range 4 {
		assert.Equal(t, []float32{1, 0.5, 0.25}, got.Pix[3*x:3*x+3])
	}
}

func TestOrientation(t *testing.T) {
	var data bytes.Buffer
	data.WriteString("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n+Y 2 -X 1\n")
	data.Write([]byte{128, 0, 0, 129})
	data.Write([]byte{0, 128, 0, 129})

	got, err := Decode(&data)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0, 1, 0, 0}, got.Pix)
}

func TestHeader(t *testing.T) {
	h, err := Probe([]byte("#?RADIANCE\n# made by hand\nEXPOSURE=2\nEXPOSURE=1.5\nFORMAT=32-bit_rle_rgbe\n\n-Y 480 +X 640\n"))
	require.NoError(t, err)
	assert.Equal(t, 640, h.Width)
	assert.Equal(t, 480, h.Height)
	assert.InDelta(t, 3.0, h.Exposure, 1e-9)
}

func TestDecodeErrors(t *testing.T) {
	var valid bytes.Buffer
	require.NoError(t, Encode(&valid, testImage(32, 8)))

	tests := []struct {
		name        string
		data        []byte
		unsupported bool
	}{
		{"empty", nil, false},
		{"no signature", []byte("RADIANCE\n\n-Y 1 +X 1\n"), false},
		{"no resolution", []byte("#?RADIANCE\n\n"), false},
		{"bad resolution", []byte("#?RADIANCE\n\n-Y x +X 1\n"), false},
		{"zero width", []byte("#?RADIANCE\n\n-Y 1 +X 0\n"), false},
		{"truncated", valid.Bytes()[:valid.Len()-10], false},
		{"xyze", []byte("#?RADIANCE\nFORMAT=32-bit_rle_xyze\n\n-Y 1 +X 1\n"), true},
		{"x major", []byte("#?RADIANCE\n\n+X 1 -Y 1\n"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bufio.NewReader(bytes.NewReader(tt.data)))
			require.Error(t, err)
			var ue UnsupportedError
			assert.Equal(t, tt.unsupported, errors.As(err, &ue), err.Error())
		})
	}
}

func TestFromFloat(t *testing.T) {
	assert.Equal(t, [4]byte{}, fromFloat(0, 0, 0))
	assert.Equal(t, [4]byte{}, fromFloat(-1, -2, 0))
	q := fromFloat(1, 0.5, 0.25)
	assert.Equal(t, [4]byte{128, 64, 32, 129}, q)
	r, g, b := toFloat(q[:])
	assert.Equal(t, []float32{1, 0.5, 0.25}, []float32{r, g, b})
}
