// Package codec defines the contract between the session layer and the
// per-format codec adapters found in its subpackages.
//
// An adapter turns compressed bytes of exactly one format into a normalized
// *pixel.Buffer and back. Library specific representations, channel orders
// and error types never leave the adapter.
package codec

import (
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

// Adapter decodes and encodes one image format.
type Adapter interface {
	// Format returns the format this adapter handles.
	Format() format.Format

	// Decode parses a complete compressed image. It returns either a fully
	// populated buffer or an error, never both.
	Decode(data []byte) (*pixel.Buffer, error)

	// Encode compresses buf. Buffers that are not already in Target's
	// format are converted first.
	Encode(buf *pixel.Buffer, opts Options) ([]byte, error)

	// Target returns the pixel format closest to src that the encoder
	// accepts without conversion.
	Target(src pixel.Format) pixel.Format
}

// Prober is implemented by adapters that can report metadata from the
// header alone.
type Prober interface {
	Probe(data []byte) (Info, error)
}

// Info is the metadata a full decode would produce.
type Info struct {
	Width  int
	Height int
	Format pixel.Format
}

// Pixels returns Width*Height.
func (i Info) Pixels() int64 { return int64(i.Width) * int64(i.Height) }

// Options controls encoding. The zero value selects format defaults.
type Options struct {
	// Quality is format specific: 1-100 for lossy formats, 1-9 compression
	// effort for PNG. Formats without a quality knob ignore it.
	Quality int
}

// DefaultOptions returns the zero Options.
func DefaultOptions() Options { return Options{} }
