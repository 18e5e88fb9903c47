// Package pixel implements the normalized raw image buffer shared by every
// codec adapter and session, together with conversions between pixel layouts,
// bit depths and color spaces.
package pixel

import (
	"fmt"
	"strings"

	"github.com/7blacky7/imagewrapper/imgerr"
)

// Layout is the channel arrangement of a pixel. The numeric values are stable.
type Layout int

const (
	LayoutInvalid Layout = iota
	Gray
	GrayAlpha
	RGB
	RGBA
	BGRA
)

// channel names in memory order
var layoutChannels = [...]string{
	LayoutInvalid: "",
	Gray:          "Y",
	GrayAlpha:     "YA",
	RGB:           "RGB",
	RGBA:          "RGBA",
	BGRA:          "BGRA",
}

var layoutNames = [...]string{
	LayoutInvalid: "invalid",
	Gray:          "gray",
	GrayAlpha:     "grayalpha",
	RGB:           "rgb",
	RGBA:          "rgba",
	BGRA:          "bgra",
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool { return l > LayoutInvalid && l <= BGRA }

// Channels returns the number of samples per pixel.
func (l Layout) Channels() int {
	if !l.Valid() {
		return 0
	}
	return len(layoutChannels[l])
}

// HasAlpha reports whether the layout carries an alpha channel.
func (l Layout) HasAlpha() bool { return l == GrayAlpha || l == RGBA || l == BGRA }

// IsGray reports whether the layout has a single luminance channel.
func (l Layout) IsGray() bool { return l == Gray || l == GrayAlpha }

// index returns the position of the named channel, or -1.
func (l Layout) index(ch byte) int {
	if !l.Valid() {
		return -1
	}
	return strings.IndexByte(layoutChannels[l], ch)
}

func (l Layout) String() string {
	if !l.Valid() {
		return layoutNames[LayoutInvalid]
	}
	return layoutNames[l]
}

// ParseLayout parses a layout name such as "rgba" or "gray".
func ParseLayout(s string) (Layout, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l := Gray; l <= BGRA; l++ {
		if layoutNames[l] == s {
			return l, nil
		}
	}
	return LayoutInvalid, fmt.Errorf("%w: layout %q", imgerr.ErrUnsupportedFormat, s)
}

// Depth is the storage type of a single sample. The numeric values are stable
// and equal the sample width in bits.
type Depth int

const (
	DepthInvalid Depth = 0
	Depth8       Depth = 8
	Depth16      Depth = 16
	Float32      Depth = 32
)

// Valid reports whether d is a known depth.
func (d Depth) Valid() bool { return d == Depth8 || d == Depth16 || d == Float32 }

// Bytes returns the size of one sample.
func (d Depth) Bytes() int {
	if !d.Valid() {
		return 0
	}
	return int(d) / 8
}

// IsFloat reports whether samples are floating point.
func (d Depth) IsFloat() bool { return d == Float32 }

func (d Depth) String() string {
	switch d {
	case Depth8:
		return "8"
	case Depth16:
		return "16"
	case Float32:
		return "32f"
	}
	return "invalid"
}

// ParseDepth parses "8", "16", "32f" or "float".
func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "8", "u8":
		return Depth8, nil
	case "16", "u16":
		return Depth16, nil
	case "32", "32f", "f32", "float", "float32":
		return Float32, nil
	}
	return DepthInvalid, fmt.Errorf("%w: depth %q", imgerr.ErrUnsupportedFormat, s)
}

// ColorSpace tags how sample values relate to light intensity.
type ColorSpace int

const (
	ColorSpaceInvalid ColorSpace = iota
	Linear
	SRGB
)

// Valid reports whether c is a known color space.
func (c ColorSpace) Valid() bool { return c == Linear || c == SRGB }

func (c ColorSpace) String() string {
	switch c {
	case Linear:
		return "linear"
	case SRGB:
		return "srgb"
	}
	return "invalid"
}

// ParseColorSpace parses "linear" or "srgb".
func ParseColorSpace(s string) (ColorSpace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return Linear, nil
	case "srgb":
		return SRGB, nil
	}
	return ColorSpaceInvalid, fmt.Errorf("%w: color space %q", imgerr.ErrUnsupportedFormat, s)
}

// Format fully describes the memory representation of a pixel.
type Format struct {
	Layout Layout
	Depth  Depth
	Space  ColorSpace
}

// Common formats.
var (
	Gray8   = Format{Gray, Depth8, SRGB}
	Gray16  = Format{Gray, Depth16, SRGB}
	RGB8    = Format{RGB, Depth8, SRGB}
	RGBA8   = Format{RGBA, Depth8, SRGB}
	RGBA16  = Format{RGBA, Depth16, SRGB}
	BGRA8   = Format{BGRA, Depth8, SRGB}
	RGBAF32 = Format{RGBA, Float32, Linear}
)

// Validate reports an UnsupportedFormat error for unknown enumerations.
func (f Format) Validate() error {
	if !f.Layout.Valid() || !f.Depth.Valid() || !f.Space.Valid() {
		return imgerr.New("validate", "", imgerr.ErrUnsupportedFormat, fmt.Errorf("pixel format %s", f))
	}
	return nil
}

// BytesPerPixel returns the size of one pixel.
func (f Format) BytesPerPixel() int { return f.Layout.Channels() * f.Depth.Bytes() }

// Channels returns the number of samples per pixel.
func (f Format) Channels() int { return f.Layout.Channels() }

// HasAlpha reports whether the format carries an alpha channel.
func (f Format) HasAlpha() bool { return f.Layout.HasAlpha() }

// With returns f with non-zero fields of o replacing its own.
func (f Format) With(o Format) Format {
	if o.Layout.Valid() {
		f.Layout = o.Layout
	}
	if o.Depth.Valid() {
		f.Depth = o.Depth
	}
	if o.Space.Valid() {
		f.Space = o.Space
	}
	return f
}

// String returns a compact description such as "rgba8/srgb".
func (f Format) String() string {
	return f.Layout.String() + f.Depth.String() + "/" + f.Space.String()
}
