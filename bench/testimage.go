package bench

import (
	"math/rand/v2"

	"github.com/7blacky7/imagewrapper/pixel"
)

// TestImage returns an opaque RGBA8 gradient with mild noise. The same seed
// always yields the same image.
func TestImage(width, height int, seed uint64) (*pixel.Buffer, error) {
	f := pixel.RGBA8
	size, err := pixel.Size(width, height, f)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]byte, 0, size)
	for y := range height {
		for x := range width {
			noise := rng.IntN(16) - 8
			r := 255 * x / max(width-1, 1)
			g := 255 * y / max(height-1, 1)
			b := 255 * (x + y) / max(width+height-2, 1)
			data = append(data, clamp8(r+noise), clamp8(g+noise), clamp8(b+noise), 255)
		}
	}
	return pixel.Wrap(width, height, f, data)
}

func clamp8(v int) uint8 {
	return uint8(min(max(v, 0), 255))
}
