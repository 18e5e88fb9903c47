package pixel

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/7blacky7/imagewrapper/imgerr"
)

// opaque marks a destination channel that has no source and is filled with
// full alpha.
const opaque = -1

// ConvertTo returns the image in the target format. The receiver is never
// modified; when target equals the current format the receiver is returned.
//
// Channels are matched by meaning: alpha is added as opaque or dropped, BGRA
// and RGB(A) are swizzled, and gray is replicated into color channels. Color
// to gray has no mapping and fails with ErrUnsupportedConversion. Depth
// changes go through a normalized intermediate and color space changes apply
// the sRGB transfer curve to color channels only.
func (b *Buffer) ConvertTo(target Format) (*Buffer, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if target == b.format {
		return b, nil
	}

	mapping, err := channelMap(b.format.Layout, target.Layout)
	if err != nil {
		return nil, err
	}

	n, err := size(b.width, b.height, target)
	if err != nil {
		return nil, err
	}
	dst, err := alloc(n)
	if err != nil {
		return nil, err
	}

	if b.format.Depth == target.Depth && b.format.Space == target.Space {
		remap(dst, b.data, mapping, b.format, target)
	} else {
		convert(dst, b.data, mapping, b.format, target)
	}

	return &Buffer{width: b.width, height: b.height, format: target, data: dst}, nil
}

// CanConvert reports whether a channel mapping exists from src to dst.
func CanConvert(src, dst Layout) bool {
	_, err := channelMap(src, dst)
	return err == nil
}

func channelMap(src, dst Layout) ([]int, error) {
	if !src.IsGray() && dst.IsGray() {
		return nil, imgerr.New("convert", "", imgerr.ErrUnsupportedConversion, fmt.Errorf("%s to %s", src, dst))
	}

	names := layoutChannels[dst]
	m := make([]int, len(names))
	for i := range len(names) {
		ch := names[i]
		j := src.index(ch)
		if j < 0 {
			switch {
			case ch == 'A':
				j = opaque
			case src.IsGray():
				j = src.index('Y')
			default:
				return nil, imgerr.New("convert", "", imgerr.ErrUnsupportedConversion, fmt.Errorf("%s to %s", src, dst))
			}
		}
		m[i] = j
	}
	return m, nil
}

// remap moves whole samples when only the channel arrangement changes.
func remap(dst, src []byte, mapping []int, from, to Format) {
	sb := from.Depth.Bytes()
	sbpp, dbpp := from.BytesPerPixel(), to.BytesPerPixel()
	one := opaqueSample(to.Depth)

	for s, d := 0, 0; s < len(src); s, d = s+sbpp, d+dbpp {
		for c, j := range mapping {
			o := d + c*sb
			if j == opaque {
				copy(dst[o:o+sb], one)
				continue
			}
			copy(dst[o:o+sb], src[s+j*sb:s+(j+1)*sb])
		}
	}
}

func convert(dst, src []byte, mapping []int, from, to Format) {
	sb, db := from.Depth.Bytes(), to.Depth.Bytes()
	sbpp, dbpp := from.BytesPerPixel(), to.BytesPerPixel()
	alpha := to.Layout.index('A')

	var transfer func(float64) float64
	switch {
	case from.Space == SRGB && to.Space == Linear:
		transfer = SRGBToLinear
	case from.Space == Linear && to.Space == SRGB:
		transfer = LinearToSRGB
	}

	for s, d := 0, 0; s < len(src); s, d = s+sbpp, d+dbpp {
		for c, j := range mapping {
			v := 1.0
			if j != opaque {
				v = readSample(src, s+j*sb, from.Depth)
			}
			if transfer != nil && c != alpha {
				v = transfer(v)
			}
			writeSample(dst, d+c*db, to.Depth, v)
		}
	}
}

func opaqueSample(d Depth) []byte {
	switch d {
	case Depth8:
		return []byte{0xff}
	case Depth16:
		return []byte{0xff, 0xff}
	}
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(1))
}
