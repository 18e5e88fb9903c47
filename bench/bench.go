// Package bench measures encode and decode performance of the registered
// codec adapters on synthetic images.
package bench

import (
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
	"github.com/7blacky7/imagewrapper/wrapper"
)

// ============================================================================
// Configuration and results
// ============================================================================

// Config selects what a benchmark run measures.
type Config struct {
	Iterations int             `json:"iterations"` // measured runs per case
	Warmup     int             `json:"warmup"`     // unmeasured runs per case
	Sizes      []string        `json:"sizes"`      // image sizes, e.g. "256x256"
	Formats    []format.Format `json:"formats"`    // empty for every registered format
	Quality    int             `json:"quality"`    // encoder quality, 0 for defaults
}

// DefaultConfig returns a quick run over every format.
func DefaultConfig() Config {
	return Config{
		Iterations: 20,
		Warmup:     3,
		Sizes:      []string{"256x256", "1024x1024"},
	}
}

// Op is the measured operation.
type Op string

const (
	OpEncode Op = "encode"
	OpDecode Op = "decode"
)

// Result holds the measurements for one format, size and operation.
type Result struct {
	Format     format.Format `json:"format"`
	Op         Op            `json:"op"`
	Size       string        `json:"size"`
	Iterations int           `json:"iterations"`
	Total      time.Duration `json:"total_ns"`
	Avg        time.Duration `json:"avg_ns"`
	Min        time.Duration `json:"min_ns"`
	Max        time.Duration `json:"max_ns"`
	P95        time.Duration `json:"p95_ns"`
	Throughput float64       `json:"megapixels_per_second"`
	Compressed int           `json:"compressed_bytes"`
	Allocated  uint64        `json:"allocated_bytes"` // per iteration
}

// ============================================================================
// Run
// ============================================================================

// Run benchmarks every format of cfg registered in reg. Formats that cannot
// encode the test image are reported as errors after the others ran.
func Run(reg *wrapper.Registry, cfg Config) ([]Result, error) {
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive")
	}

	formats := cfg.Formats
	if len(formats) == 0 {
		formats = reg.Formats()
	}

	var results []Result
	for _, size := range cfg.Sizes {
		w, h, err := parseSize(size)
		if err != nil {
			return nil, err
		}
		img, err := TestImage(w, h, 42)
		if err != nil {
			return nil, err
		}

		for _, f := range formats {
			rs, err := runFormat(reg, f, img, size, cfg)
			if err != nil {
				return results, fmt.Errorf("%s %s: %w", f, size, err)
			}
			results = append(results, rs...)
		}
	}
	return results, nil
}

func runFormat(reg *wrapper.Registry, f format.Format, img *pixel.Buffer, size string, cfg Config) ([]Result, error) {
	opts := codec.Options{Quality: cfg.Quality}

	var data []byte
	encode := func() error {
		s, err := reg.New(f)
		if err != nil {
			return err
		}
		if err := s.SetRaw(img); err != nil {
			return err
		}
		data, err = s.Compressed(opts)
		return err
	}
	decode := func() error {
		s, err := reg.NewFromBytes(data)
		if err != nil {
			return err
		}
		_, err = s.Raw()
		return err
	}

	pixels := img.Width() * img.Height()
	enc, err := measure(encode, cfg)
	if err != nil {
		return nil, err
	}
	dec, err := measure(decode, cfg)
	if err != nil {
		return nil, err
	}

	results := []Result{
		buildResult(f, OpEncode, size, pixels, enc),
		buildResult(f, OpDecode, size, pixels, dec),
	}
	for i := range results {
		results[i].Compressed = len(data)
	}
	return results, nil
}

type measurement struct {
	latencies []time.Duration
	allocated uint64
}

// measure runs fn cfg.Warmup times unmeasured, then cfg.Iterations times.
func measure(fn func() error, cfg Config) (measurement, error) {
	for range cfg.Warmup {
		if err := fn(); err != nil {
			return measurement{}, err
		}
	}

	runtime.GC()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	m := measurement{latencies: make([]time.Duration, 0, cfg.Iterations)}
	for range cfg.Iterations {
		start := time.Now()
		if err := fn(); err != nil {
			return measurement{}, err
		}
		m.latencies = append(m.latencies, time.Since(start))
	}

	runtime.ReadMemStats(&after)
	m.allocated = (after.TotalAlloc - before.TotalAlloc) / uint64(cfg.Iterations)
	return m, nil
}

func buildResult(f format.Format, op Op, size string, pixels int, m measurement) Result {
	stats := calculateStats(m.latencies)
	r := Result{
		Format:     f,
		Op:         op,
		Size:       size,
		Iterations: len(m.latencies),
		Total:      stats.total,
		Avg:        stats.avg,
		Min:        stats.min,
		Max:        stats.max,
		P95:        stats.p95,
		Allocated:  m.allocated,
	}
	if stats.total > 0 {
		r.Throughput = float64(pixels) * float64(len(m.latencies)) / 1e6 / stats.total.Seconds()
	}
	return r
}

// ============================================================================
// Statistics
// ============================================================================

type latencyStats struct {
	total, avg, min, max, p95 time.Duration
}

func calculateStats(latencies []time.Duration) latencyStats {
	if len(latencies) == 0 {
		return latencyStats{}
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range latencies {
		total += d
	}

	p95 := min(int(float64(len(sorted))*0.95), len(sorted)-1)

	return latencyStats{
		total: total,
		avg:   total / time.Duration(len(latencies)),
		min:   sorted[0],
		max:   sorted[len(sorted)-1],
		p95:   sorted[p95],
	}
}

// parseSize parses "WxH".
func parseSize(size string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", size)
	}
	return w, h, nil
}
