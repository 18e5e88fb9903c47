package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/envconfig"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
	"github.com/7blacky7/imagewrapper/wrapper"
)

// parseFormat resolves a format name and suggests the closest known name
// when there is no match.
func parseFormat(name string) (format.Format, error) {
	if f := format.Parse(name); f != format.Unknown {
		return f, nil
	}

	err := imgerr.New("parse", "", imgerr.ErrUnknownFormat, fmt.Errorf("%q", name))
	if s := suggest(name, format.Names()); s != "" {
		return format.Unknown, fmt.Errorf("%w (did you mean %q?)", err, s)
	}
	return format.Unknown, err
}

// suggest returns the candidate closest to s, or "" if none is close.
func suggest(s string, candidates []string) string {
	s = strings.ToLower(s)
	best, score := "", math.MaxInt
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, c); d < score {
			best, score = c, d
		}
	}
	if score > 2 {
		return ""
	}
	return best
}

// rawOptions parses the --layout, --depth and --colorspace values.
func rawOptions(layout, depth, space string) ([]wrapper.RawOption, error) {
	var opts []wrapper.RawOption
	if layout != "" {
		l, err := pixel.ParseLayout(layout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wrapper.WithLayout(l))
	}
	if depth != "" {
		d, err := pixel.ParseDepth(depth)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wrapper.WithDepth(d))
	}
	if space != "" {
		cs, err := pixel.ParseColorSpace(space)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wrapper.WithColorSpace(cs))
	}
	return opts, nil
}

// encodeOptions fills in the configured default quality for lossy targets.
func encodeOptions(f format.Format, quality int) codec.Options {
	if quality == 0 {
		switch f {
		case format.JPEG:
			quality = int(envconfig.JPEGQuality())
		case format.WebP:
			quality = int(envconfig.WebPQuality())
		}
	}
	return codec.Options{Quality: quality}
}

// sessionOptions returns the options every session the CLI opens gets.
func sessionOptions() []wrapper.Option {
	return []wrapper.Option{wrapper.WithMaxPixels(int64(envconfig.MaxPixels()))}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable writes rows as an aligned table on terminals and as tab
// separated values otherwise.
func renderTable(w io.Writer, header []string, rows [][]string) {
	if !isTerminal(w) {
		fmt.Fprintln(w, strings.Join(header, "\t"))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()
}

// humanBytes formats a byte count with a binary unit.
func humanBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
