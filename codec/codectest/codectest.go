// Package codectest provides shared checks for codec.Adapter implementations.
package codectest

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Pattern returns a deterministic w×h image in format f. Smooth gradients
// keep lossy codecs within tight bounds; noise adds enough entropy that
// compressed streams are never trivially short.
func Pattern(t testing.TB, w, h int, f pixel.Format, noise bool) *pixel.Buffer {
	t.Helper()

	r := rand.New(rand.NewPCG(uint64(w), uint64(h)))
	n := f.Channels()
	samples := make([]float64, 0, w*h*n)
	for y := range h {
		for x := range w {
			for c := range n {
				v := (float64(x)/float64(w) + float64(y)/float64(h) + float64(c)*0.25) / 2.75
				if noise {
					v = r.Float64()
				}
				if f.Layout.HasAlpha() && c == n-1 {
					v = 1
				}
				samples = append(samples, v)
			}
		}
	}

	// build as float then convert to the requested depth
	ff := pixel.Format{Layout: f.Layout, Depth: pixel.Float32, Space: f.Space}
	fs := make([]float32, len(samples))
	for i, v := range samples {
		fs[i] = float32(v)
	}
	b, err := pixel.FromFloat32s(w, h, ff, fs)
	require.NoError(t, err)
	b, err = b.ConvertTo(f)
	require.NoError(t, err)
	return b
}

// RoundTrip encodes src with a, decodes the result and checks every sample
// against src within tol (normalized units, relative for float formats). It
// also checks that the stream sniffs as the adapter's format and that a
// header read agrees with the decode. The decoded buffer is returned.
func RoundTrip(t testing.TB, a codec.Adapter, src *pixel.Buffer, opts codec.Options, tol float64) *pixel.Buffer {
	t.Helper()

	data, err := a.Encode(src, opts)
	require.NoError(t, err)
	require.Equal(t, a.Format(), format.Detect(data), "encoded stream must sniff as %s", a.Format())

	got, err := a.Decode(data)
	require.NoError(t, err)
	require.Equal(t, src.Width(), got.Width())
	require.Equal(t, src.Height(), got.Height())

	if p, ok := a.(codec.Prober); ok {
		info, err := p.Probe(data)
		require.NoError(t, err)
		assert.Equal(t, codec.Info{Width: got.Width(), Height: got.Height(), Format: got.Format()}, info)
	}

	want, err := src.ConvertTo(a.Target(src.Format()))
	require.NoError(t, err)
	cmp, err := got.ConvertTo(want.Format())
	require.NoError(t, err)

	for y := range want.Height() {
		for x := range want.Width() {
			for c := range want.Format().Channels() {
				w, g := want.Sample(x, y, c), cmp.Sample(x, y, c)
				limit := tol
				if want.Depth().IsFloat() {
					limit = tol * math.Max(1, math.Abs(w))
				}
				if math.Abs(w-g) > limit {
					t.Fatalf("%s (%d,%d) channel %d: got %v want %v", a.Format(), x, y, c, g, w)
				}
			}
		}
	}
	return got
}

// Truncated checks that a stream missing its last n bytes fails with
// ErrCorruptData and yields no buffer.
func Truncated(t testing.TB, a codec.Adapter, data []byte, n int) {
	t.Helper()
	require.Greater(t, len(data), n)

	b, err := a.Decode(data[:len(data)-n])
	require.ErrorIs(t, err, imgerr.ErrCorruptData)
	assert.Nil(t, b)
}

// Garbage checks that bytes with a valid signature but nonsense content are
// rejected without panicking.
func Garbage(t testing.TB, a codec.Adapter, magic []byte) {
	t.Helper()

	r := rand.New(rand.NewPCG(1, 2))
	data := append([]byte(nil), magic...)
	for range 64 {
		data = append(data, byte(r.IntN(256)))
	}
	b, err := a.Decode(data)
	require.Error(t, err)
	assert.Nil(t, b)
	assert.NotNil(t, imgerr.KindOf(err), "error must carry a kind: %v", err)
}
