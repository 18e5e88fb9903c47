package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/imagewrapper/bench"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/wrapper"
)

// BenchHandler measures encode and decode speed of the selected formats.
func BenchHandler(cmd *cobra.Command, _ []string) error {
	cfg := bench.DefaultConfig()

	names, _ := cmd.Flags().GetStringSlice("formats")
	for _, name := range names {
		f, err := parseFormat(name)
		if err != nil {
			return err
		}
		cfg.Formats = append(cfg.Formats, f)
	}
	if sizes, _ := cmd.Flags().GetStringSlice("sizes"); len(sizes) > 0 {
		cfg.Sizes = sizes
	}
	if n, _ := cmd.Flags().GetInt("iterations"); n > 0 {
		cfg.Iterations = n
	}
	cfg.Warmup, _ = cmd.Flags().GetInt("warmup")
	cfg.Quality, _ = cmd.Flags().GetInt("quality")

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "table", "json", "markdown", "csv":
	default:
		return fmt.Errorf("unknown output %q, want table, json, markdown or csv", output)
	}

	results, err := bench.Run(wrapper.DefaultRegistry, cfg)
	if err != nil {
		return err
	}

	report := bench.NewReport(results, cfg)
	w := cmd.OutOrStdout()
	switch output {
	case "json":
		return report.WriteJSON(w)
	case "csv":
		return report.WriteCSV(w)
	case "markdown":
		report.WriteMarkdown(w)
	default:
		report.WriteTable(w)
	}
	return nil
}

func newBenchCmd() *cobra.Command {
	defaults := bench.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark encoding and decoding",
		Long:  fmt.Sprintf("Benchmark encoding and decoding of synthetic images.\n\nFormats: %s", strings.Join(format.Names(), ", ")),
		Args:  cobra.NoArgs,
		RunE:  BenchHandler,
	}

	cmd.Flags().StringSlice("formats", nil, "Formats to measure (default all)")
	cmd.Flags().StringSlice("sizes", defaults.Sizes, "Image sizes as WIDTHxHEIGHT")
	cmd.Flags().IntP("iterations", "n", defaults.Iterations, "Measured runs per case")
	cmd.Flags().Int("warmup", defaults.Warmup, "Unmeasured runs per case")
	cmd.Flags().IntP("quality", "q", 0, "Encoder quality for lossy formats")
	cmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown or csv")

	return cmd
}
