package pixel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"

	"github.com/7blacky7/imagewrapper/imgerr"
)

// MaxBytes caps the payload of a single buffer.
const MaxBytes = 1 << 34

// Buffer is a decoded, uncompressed image. Samples are stored row-major, top
// to bottom, without row padding. Multi-byte samples are little-endian.
//
// A Buffer never changes after construction; accessors return copies.
type Buffer struct {
	width  int
	height int
	format Format
	data   []byte
}

// New validates the geometry and returns a Buffer holding a copy of data.
func New(width, height int, f Format, data []byte) (*Buffer, error) {
	n, err := size(width, height, f)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, mismatch(width, height, f, len(data), n)
	}
	dst, err := alloc(n)
	if err != nil {
		return nil, err
	}
	copy(dst, data)
	return &Buffer{width: width, height: height, format: f, data: dst}, nil
}

// Wrap is like New but adopts data without copying. The caller must not
// modify data afterwards.
func Wrap(width, height int, f Format, data []byte) (*Buffer, error) {
	n, err := size(width, height, f)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, mismatch(width, height, f, len(data), n)
	}
	return &Buffer{width: width, height: height, format: f, data: data}, nil
}

// Zeroed returns a Buffer with zero-filled samples.
func Zeroed(width, height int, f Format) (*Buffer, error) {
	n, err := size(width, height, f)
	if err != nil {
		return nil, err
	}
	data, err := alloc(n)
	if err != nil {
		return nil, err
	}
	return &Buffer{width: width, height: height, format: f, data: data}, nil
}

// Size returns the payload length for the given geometry.
func Size(width, height int, f Format) (int, error) {
	return size(width, height, f)
}

func size(width, height int, f Format) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, imgerr.New("validate", "", imgerr.ErrInvalidDimension, fmt.Errorf("%dx%d", width, height))
	}
	if err := f.Validate(); err != nil {
		return 0, err
	}

	bpp := uint64(f.BytesPerPixel())
	w, h := uint64(width), uint64(height)
	if w > MaxBytes/h || w*h > MaxBytes/bpp {
		return 0, imgerr.New("allocate", "", imgerr.ErrAllocationFailure, fmt.Errorf("%dx%d %s exceeds %d bytes", width, height, f, uint64(MaxBytes)))
	}
	n := w * h * bpp
	if n > math.MaxInt {
		return 0, imgerr.New("allocate", "", imgerr.ErrAllocationFailure, fmt.Errorf("%d bytes", n))
	}
	return int(n), nil
}

func mismatch(width, height int, f Format, got, want int) error {
	return imgerr.New("validate", "", imgerr.ErrBufferSizeMismatch,
		fmt.Errorf("%dx%d %s needs %d bytes, got %d", width, height, f, want, got))
}

// alloc turns a failed make into an AllocationFailure instead of a crash.
func alloc(n int) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); !ok {
				panic(r)
			}
			b, err = nil, imgerr.New("allocate", "", imgerr.ErrAllocationFailure, fmt.Errorf("%d bytes: %v", n, r))
		}
	}()
	return make([]byte, n), nil
}

// ============================================================================
// Accessors
// ============================================================================

func (b *Buffer) Width() int             { return b.width }
func (b *Buffer) Height() int            { return b.height }
func (b *Buffer) Format() Format         { return b.format }
func (b *Buffer) Layout() Layout         { return b.format.Layout }
func (b *Buffer) Depth() Depth           { return b.format.Depth }
func (b *Buffer) ColorSpace() ColorSpace { return b.format.Space }

// Stride returns the number of bytes in one row.
func (b *Buffer) Stride() int { return b.width * b.format.BytesPerPixel() }

// Len returns the payload length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Offset returns the byte offset of the pixel at (x, y).
func (b *Buffer) Offset(x, y int) int {
	return y*b.Stride() + x*b.format.BytesPerPixel()
}

// Bytes returns a copy of the payload.
func (b *Buffer) Bytes() []byte { return bytes.Clone(b.data) }

// Row returns a copy of row y.
func (b *Buffer) Row(y int) []byte {
	s := b.Stride()
	return bytes.Clone(b.data[y*s : (y+1)*s])
}

// Pixel returns a copy of the samples of the pixel at (x, y).
func (b *Buffer) Pixel(x, y int) []byte {
	o := b.Offset(x, y)
	return bytes.Clone(b.data[o : o+b.format.BytesPerPixel()])
}

// Sample returns channel c of the pixel at (x, y). Integer samples are
// normalized to [0, 1]; float samples are returned unchanged.
func (b *Buffer) Sample(x, y, c int) float64 {
	o := b.Offset(x, y) + c*b.format.Depth.Bytes()
	return readSample(b.data, o, b.format.Depth)
}

// WithColorSpace returns a buffer with the same samples tagged as cs.
func (b *Buffer) WithColorSpace(cs ColorSpace) (*Buffer, error) {
	if !cs.Valid() {
		return nil, imgerr.New("retag", "", imgerr.ErrUnsupportedFormat, fmt.Errorf("color space %d", cs))
	}
	if cs == b.format.Space {
		return b, nil
	}
	f := b.format
	f.Space = cs
	return &Buffer{width: b.width, height: b.height, format: f, data: b.data}, nil
}

// Equal reports whether both buffers have identical geometry, format and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.width == o.width && b.height == o.height && b.format == o.format && bytes.Equal(b.data, o.data)
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%dx%d %s", b.width, b.height, b.format)
}

// ============================================================================
// Sample codec
// ============================================================================

func readSample(data []byte, o int, d Depth) float64 {
	switch d {
	case Depth8:
		return float64(data[o]) / 255
	case Depth16:
		return float64(binary.LittleEndian.Uint16(data[o:])) / 65535
	default:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[o:])))
	}
}

func writeSample(data []byte, o int, d Depth, v float64) {
	switch d {
	case Depth8:
		data[o] = uint8(quantize(v, 255))
	case Depth16:
		binary.LittleEndian.PutUint16(data[o:], uint16(quantize(v, 65535)))
	default:
		binary.LittleEndian.PutUint32(data[o:], math.Float32bits(float32(v)))
	}
}

func quantize(v, max float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return max
	}
	return math.Round(v * max)
}
