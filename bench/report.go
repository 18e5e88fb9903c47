package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/7blacky7/imagewrapper/format"
)

// Report bundles a run's results with its context.
type Report struct {
	Timestamp time.Time     `json:"timestamp"`
	System    SystemInfo    `json:"system"`
	Config    Config        `json:"config"`
	Results   []Result      `json:"results"`
	Summary   []SizeSummary `json:"summary"`
}

// SystemInfo describes the machine a run happened on.
type SystemInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUs      int    `json:"cpus"`
	GoVersion string `json:"go_version"`
}

// SizeSummary names the best format per criterion for one image size.
type SizeSummary struct {
	Size          string        `json:"size"`
	FastestEncode format.Format `json:"fastest_encode"`
	FastestDecode format.Format `json:"fastest_decode"`
	Smallest      format.Format `json:"smallest"`
}

// NewReport summarizes results.
func NewReport(results []Result, cfg Config) *Report {
	return &Report{
		Timestamp: time.Now(),
		System: SystemInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUs:      runtime.NumCPU(),
			GoVersion: runtime.Version(),
		},
		Config:  cfg,
		Results: results,
		Summary: summarize(results),
	}
}

func summarize(results []Result) []SizeSummary {
	var sizes []string
	best := make(map[string]*SizeSummary)
	encode := make(map[string]time.Duration)
	decode := make(map[string]time.Duration)
	smallest := make(map[string]int)

	for _, r := range results {
		s, ok := best[r.Size]
		if !ok {
			s = &SizeSummary{Size: r.Size}
			best[r.Size] = s
			sizes = append(sizes, r.Size)
		}

		switch r.Op {
		case OpEncode:
			if d, seen := encode[r.Size]; !seen || r.Avg < d {
				encode[r.Size] = r.Avg
				s.FastestEncode = r.Format
			}
			if n, seen := smallest[r.Size]; !seen || r.Compressed < n {
				smallest[r.Size] = r.Compressed
				s.Smallest = r.Format
			}
		case OpDecode:
			if d, seen := decode[r.Size]; !seen || r.Avg < d {
				decode[r.Size] = r.Avg
				s.FastestDecode = r.Format
			}
		}
	}

	summary := make([]SizeSummary, 0, len(sizes))
	for _, size := range sizes {
		summary = append(summary, *best[size])
	}
	return summary
}

// ============================================================================
// Output
// ============================================================================

var columns = []string{"FORMAT", "OP", "SIZE", "AVG", "P95", "MPIX/S", "BYTES", "ALLOC"}

func (r *Report) rows() [][]string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, []string{
			res.Format.String(),
			string(res.Op),
			res.Size,
			formatDuration(res.Avg),
			formatDuration(res.P95),
			strconv.FormatFloat(res.Throughput, 'f', 1, 64),
			strconv.Itoa(res.Compressed),
			formatBytes(res.Allocated),
		})
	}
	return rows
}

// WriteTable writes the results as an aligned table.
func (r *Report) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(r.rows())
	table.Render()

	for _, s := range r.Summary {
		fmt.Fprintf(w, "\n%s: fastest encode %s, fastest decode %s, smallest %s\n",
			s.Size, s.FastestEncode, s.FastestDecode, s.Smallest)
	}
}

// WriteMarkdown writes the results as a Markdown table.
func (r *Report) WriteMarkdown(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.AppendBulk(r.rows())
	table.Render()
}

// WriteJSON writes the whole report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one line per result.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{
		"format", "op", "size", "iterations",
		"avg_ms", "min_ms", "max_ms", "p95_ms",
		"megapixels_per_second", "compressed_bytes", "allocated_bytes",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, res := range r.Results {
		row := []string{
			res.Format.String(),
			string(res.Op),
			res.Size,
			strconv.Itoa(res.Iterations),
			millis(res.Avg),
			millis(res.Min),
			millis(res.Max),
			millis(res.P95),
			strconv.FormatFloat(res.Throughput, 'f', 2, 64),
			strconv.Itoa(res.Compressed),
			strconv.FormatUint(res.Allocated, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func millis(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 3, 64)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fus", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
