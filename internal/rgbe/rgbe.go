// Package rgbe reads and writes Radiance HDR (.hdr, .pic) images.
//
// Pixels are stored as shared-exponent RGBE quadruples, optionally run-length
// encoded per scanline. Only the 32-bit_rle_rgbe format with Y-major
// orientation is handled; XYZE files are rejected.
package rgbe

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MaxPixels bounds the resolution accepted by Decode.
const MaxPixels = 1 << 30

// FormatError reports malformed input.
type FormatError string

func (e FormatError) Error() string { return "rgbe: invalid format: " + string(e) }

// UnsupportedError reports valid input using a feature this package lacks.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "rgbe: unsupported feature: " + string(e) }

// Header is the parsed text header.
type Header struct {
	Width    int
	Height   int
	Exposure float64 // product of EXPOSURE lines, 1 if none
	FlipX    bool    // resolution string uses -X
	FlipY    bool    // resolution string uses +Y (bottom to top)
}

// Image holds linear RGB samples, interleaved, top row first.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

// ReadHeader parses the header and resolution line, leaving r positioned at
// the first scanline.
func ReadHeader(r *bufio.Reader) (*Header, error) {
	first, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(first, "#?") {
		return nil, FormatError("missing #? signature")
	}

	h := &Header{Exposure: 1}
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok || strings.HasPrefix(line, "#") {
			continue
		}
		switch strings.TrimSpace(key) {
		case "FORMAT":
			if f := strings.TrimSpace(val); f != "32-bit_rle_rgbe" {
				return nil, UnsupportedError("format " + f)
			}
		case "EXPOSURE":
			if e, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && e > 0 {
				h.Exposure *= e
			}
		}
	}

	res, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if err := h.parseResolution(res); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) parseResolution(s string) error {
	f := strings.Fields(s)
	if len(f) != 4 {
		return FormatError("resolution line " + strconv.Quote(s))
	}
	if !strings.HasSuffix(f[0], "Y") || !strings.HasSuffix(f[2], "X") {
		return UnsupportedError("X-major orientation")
	}
	height, err1 := strconv.Atoi(f[1])
	width, err2 := strconv.Atoi(f[3])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return FormatError("resolution line " + strconv.Quote(s))
	}
	if int64(width)*int64(height) > MaxPixels {
		return UnsupportedError(fmt.Sprintf("resolution %dx%d", width, height))
	}
	h.Width, h.Height = width, height
	h.FlipY = f[0] == "+Y"
	h.FlipX = f[2] == "-X"
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", FormatError("truncated header")
	}
	if len(line) > 4096 {
		return "", FormatError("header line too long")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Decode reads a complete image.
func Decode(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	m := &Image{Width: h.Width, Height: h.Height, Pix: make([]float32, h.Width*h.Height*3)}
	line := make([]byte, 4*h.Width)
	for y := range h.Height {
		if err := readScanline(br, line, h.Width); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, FormatError(fmt.Sprintf("truncated at scanline %d", y))
			}
			return nil, err
		}

		row := y
		if h.FlipY {
			row = h.Height - 1 - y
		}
		for x := range h.Width {
			col := x
			if h.FlipX {
				col = h.Width - 1 - x
			}
			o := (row*h.Width + col) * 3
			m.Pix[o], m.Pix[o+1], m.Pix[o+2] = toFloat(line[4*x:])
		}
	}
	return m, nil
}

func toFloat(p []byte) (r, g, b float32) {
	if p[3] == 0 {
		return 0, 0, 0
	}
	f := math.Ldexp(1, int(p[3])-(128+8))
	return float32(float64(p[0]) * f), float32(float64(p[1]) * f), float32(float64(p[2]) * f)
}

func fromFloat(r, g, b float32) [4]byte {
	v := math.Max(float64(r), math.Max(float64(g), float64(b)))
	if !(v >= 1e-32) {
		return [4]byte{}
	}
	frac, exp := math.Frexp(v)
	if exp > 127 {
		return [4]byte{255, 255, 255, 255}
	}
	s := frac * 256 / v
	return [4]byte{clampByte(float64(r) * s), clampByte(float64(g) * s), clampByte(float64(b) * s), byte(exp + 128)}
}

func clampByte(v float64) byte {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}

// readScanline fills line with width RGBE quadruples in any of the three
// scanline encodings: flat, old-style run length, or new-style per-channel
// run length.
func readScanline(r *bufio.Reader, line []byte, width int) error {
	if width < 8 || width > 0x7fff {
		return readFlat(r, line, 0)
	}

	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return err
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		copy(line, head[:])
		return readFlat(r, line, 1)
	}
	if int(head[2])<<8|int(head[3]) != width {
		return FormatError("scanline width mismatch")
	}

	for c := range 4 {
		for x := 0; x < width; {
			n, err := r.ReadByte()
			if err != nil {
				return err
			}
			if n > 128 {
				run := int(n) - 128
				if x+run > width {
					return FormatError("run overflows scanline")
				}
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				for ; run > 0; run-- {
					line[4*x+c] = v
					x++
				}
				continue
			}
			if n == 0 || x+int(n) > width {
				return FormatError("bad literal count")
			}
			for range int(n) {
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				line[4*x+c] = v
				x++
			}
		}
	}
	return nil
}

// readFlat reads uncompressed pixels starting at pixel x, expanding
// old-style (1,1,1,n) repeat markers.
func readFlat(r *bufio.Reader, line []byte, x int) error {
	width := len(line) / 4
	shift := 0
	for x < width {
		var p [4]byte
		if _, err := io.ReadFull(r, p[:]); err != nil {
			return err
		}
		if p[0] == 1 && p[1] == 1 && p[2] == 1 {
			if x == 0 {
				return FormatError("repeat marker without previous pixel")
			}
			n := int(p[3]) << shift
			if x+n > width {
				return FormatError("repeat overflows scanline")
			}
			for range n {
				copy(line[4*x:4*x+4], line[4*x-4:4*x])
				x++
			}
			shift += 8
			continue
		}
		copy(line[4*x:], p[:])
		x++
		shift = 0
	}
	return nil
}

// ============================================================================
// Encoding
// ============================================================================

const minRun = 4

// Encode writes m with new-style run length encoding where the width allows
// it and flat scanlines otherwise.
func Encode(w io.Writer, m *Image) error {
	if m.Width <= 0 || m.Height <= 0 || len(m.Pix) != m.Width*m.Height*3 {
		return FormatError("image geometry does not match its samples")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", m.Height, m.Width)

	line := make([]byte, 4*m.Width)
	plane := make([]byte, m.Width)
	for y := range m.Height {
		for x := range m.Width {
			o := (y*m.Width + x) * 3
			q := fromFloat(m.Pix[o], m.Pix[o+1], m.Pix[o+2])
			copy(line[4*x:], q[:])
		}

		if m.Width < 8 || m.Width > 0x7fff {
			bw.Write(line)
			continue
		}

		bw.Write([]byte{2, 2, byte(m.Width >> 8), byte(m.Width)})
		for c := range 4 {
			for x := range m.Width {
				plane[x] = line[4*x+c]
			}
			writeRLE(bw, plane)
		}
	}
	return bw.Flush()
}

func writeRLE(w *bufio.Writer, data []byte) {
	n := len(data)
	for cur := 0; cur < n; {
		// find the next run of at least minRun equal bytes
		beg, run, prev := cur, 0, 0
		for run < minRun && beg < n {
			beg += run
			prev = run
			run = 1
			for beg+run < n && run < 127 && data[beg] == data[beg+run] {
				run++
			}
		}

		// a short run right before it is still worth encoding as a run
		if prev > 1 && prev == beg-cur {
			w.WriteByte(byte(128 + prev))
			w.WriteByte(data[cur])
			cur = beg
		}

		for cur < beg {
			k := min(128, beg-cur)
			w.WriteByte(byte(k))
			w.Write(data[cur : cur+k])
			cur += k
		}

		if run >= minRun {
			w.WriteByte(byte(128 + run))
			w.WriteByte(data[beg])
			cur += run
		}
	}
}

// Probe parses only the header of data.
func Probe(data []byte) (*Header, error) {
	return ReadHeader(bufio.NewReader(bytes.NewReader(data)))
}
