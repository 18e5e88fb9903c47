package pixel

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/7blacky7/imagewrapper/imgerr"
)

// Float32s returns a copy of the samples of a Float32 buffer.
func (b *Buffer) Float32s() ([]float32, error) {
	if b.format.Depth != Float32 {
		return nil, imgerr.New("samples", "", imgerr.ErrUnsupportedFormat, fmt.Errorf("%s is not a float format", b.format))
	}
	out := make([]float32, len(b.data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.data[4*i:]))
	}
	return out, nil
}

// FromFloat32s builds a Float32 buffer from interleaved samples.
func FromFloat32s(width, height int, f Format, samples []float32) (*Buffer, error) {
	if f.Depth != Float32 {
		return nil, imgerr.New("samples", "", imgerr.ErrUnsupportedFormat, fmt.Errorf("%s is not a float format", f))
	}
	n, err := size(width, height, f)
	if err != nil {
		return nil, err
	}
	if len(samples)*4 != n {
		return nil, mismatch(width, height, f, len(samples)*4, n)
	}
	data, err := alloc(n)
	if err != nil {
		return nil, err
	}
	for i, v := range samples {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return &Buffer{width: width, height: height, format: f, data: data}, nil
}
