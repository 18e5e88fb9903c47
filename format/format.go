// Package format names the compressed image formats and recognizes them from
// their leading bytes.
package format

import (
	"bytes"
	"fmt"
	"strings"
)

// Format identifies a compressed image format. The set is closed and the
// numeric values are stable.
type Format int

const (
	Unknown Format = iota
	PNG
	JPEG
	BMP
	TIFF
	WebP
	QOI
	EXR
	HDR
)

// SniffLen is the largest prefix Detect ever reads.
const SniffLen = 12

type info struct {
	name  string
	mime  string
	ext   string
	alias []string
	lossy bool
	hdr   bool
}

var infos = [...]info{
	Unknown: {name: "unknown", mime: "application/octet-stream", ext: ".bin"},
	PNG:     {name: "png", mime: "image/png", ext: ".png"},
	JPEG:    {name: "jpeg", mime: "image/jpeg", ext: ".jpg", alias: []string{"jpg", "jpe", "jfif"}, lossy: true},
	BMP:     {name: "bmp", mime: "image/bmp", ext: ".bmp", alias: []string{"dib"}},
	TIFF:    {name: "tiff", mime: "image/tiff", ext: ".tiff", alias: []string{"tif"}},
	WebP:    {name: "webp", mime: "image/webp", ext: ".webp", lossy: true},
	QOI:     {name: "qoi", mime: "image/qoi", ext: ".qoi"},
	EXR:     {name: "exr", mime: "image/x-exr", ext: ".exr", alias: []string{"openexr"}, hdr: true},
	HDR:     {name: "hdr", mime: "image/vnd.radiance", ext: ".hdr", alias: []string{"rgbe", "pic", "radiance"}, lossy: true, hdr: true},
}

// All returns every known format in a fixed order.
func All() []Format {
	return []Format{PNG, JPEG, BMP, TIFF, WebP, QOI, EXR, HDR}
}

func (f Format) info() info {
	if f <= Unknown || int(f) >= len(infos) {
		return infos[Unknown]
	}
	return infos[f]
}

// Valid reports whether f names a known format.
func (f Format) Valid() bool { return f > Unknown && int(f) < len(infos) }

func (f Format) String() string { return f.info().name }

// MimeType returns the media type of the format.
func (f Format) MimeType() string { return f.info().mime }

// Extension returns the preferred file extension including the dot.
func (f Format) Extension() string { return f.info().ext }

// IsLossy reports whether encoding discards information.
func (f Format) IsLossy() bool { return f.info().lossy }

// IsHDR reports whether the format stores floating point samples.
func (f Format) IsHDR() bool { return f.info().hdr }

// Parse returns the format for a name, alias or file extension. It is case
// insensitive and accepts a leading dot. Unrecognized input yields Unknown.
func Parse(s string) Format {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	for _, f := range All() {
		in := infos[f]
		if in.name == s || in.ext == "."+s {
			return f
		}
		for _, a := range in.alias {
			if a == s {
				return f
			}
		}
	}
	return Unknown
}

// Names returns the canonical name of every known format.
func Names() []string {
	names := make([]string, 0, len(infos))
	for _, f := range All() {
		names = append(names, f.String())
	}
	return names
}

// ============================================================================
// Signatures
// ============================================================================

var (
	magicPNG      = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	magicJPEG     = []byte{0xFF, 0xD8, 0xFF}
	magicBMP      = []byte("BM")
	magicTIFFLE   = []byte{'I', 'I', 0x2A, 0x00}
	magicTIFFBE   = []byte{'M', 'M', 0x00, 0x2A}
	magicRIFF     = []byte("RIFF")
	magicWebP     = []byte("WEBP")
	magicQOI      = []byte("qoif")
	magicEXR      = []byte{0x76, 0x2F, 0x31, 0x01}
	magicRadiance = []byte("#?RADIANCE")
	magicRGBE     = []byte("#?RGBE")
)

// Detect returns the format whose signature prefixes data, or Unknown.
// At most SniffLen bytes are examined. Detect never fails.
func Detect(data []byte) Format {
	if len(data) > SniffLen {
		data = data[:SniffLen]
	}

	switch {
	case bytes.HasPrefix(data, magicPNG):
		return PNG
	case bytes.HasPrefix(data, magicJPEG):
		return JPEG
	case bytes.HasPrefix(data, magicTIFFLE), bytes.HasPrefix(data, magicTIFFBE):
		return TIFF
	case isWebP(data):
		return WebP
	case bytes.HasPrefix(data, magicQOI):
		return QOI
	case bytes.HasPrefix(data, magicEXR):
		return EXR
	case bytes.HasPrefix(data, magicRadiance), bytes.HasPrefix(data, magicRGBE):
		return HDR
	case bytes.HasPrefix(data, magicBMP):
		return BMP
	}
	return Unknown
}

// isWebP checks for "RIFF" <size> "WEBP".
func isWebP(data []byte) bool {
	return len(data) >= 12 && bytes.HasPrefix(data, magicRIFF) && bytes.Equal(data[8:12], magicWebP)
}

// MarshalText encodes f as its name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText accepts anything Parse does.
func (f *Format) UnmarshalText(text []byte) error {
	p := Parse(string(text))
	if p == Unknown {
		return fmt.Errorf("unknown image format %q", text)
	}
	*f = p
	return nil
}
