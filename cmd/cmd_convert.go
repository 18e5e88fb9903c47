package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/7blacky7/imagewrapper/envconfig"
	"github.com/7blacky7/imagewrapper/wrapper"
)

type convertResult struct {
	in, out string
	size    int
	err     error
}

// ConvertHandler converts every file to the --to format, one session per
// file, on up to --workers goroutines.
func ConvertHandler(cmd *cobra.Command, args []string) error {
	to, _ := cmd.Flags().GetString("to")
	target, err := parseFormat(to)
	if err != nil {
		return err
	}

	quality, _ := cmd.Flags().GetInt("quality")
	layout, _ := cmd.Flags().GetString("layout")
	depth, _ := cmd.Flags().GetString("depth")
	space, _ := cmd.Flags().GetString("colorspace")
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = envconfig.OutputDir()
	}
	force, _ := cmd.Flags().GetBool("force")
	force = force || envconfig.Overwrite()

	raw, err := rawOptions(layout, depth, space)
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = envconfig.NumWorkers()
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
	}

	req := wrapper.TranscodeRequest{
		Target:  target,
		Encode:  encodeOptions(target, quality),
		Raw:     raw,
		Session: sessionOptions(),
	}

	results := make([]convertResult, len(args))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range args {
		g.Go(func() error {
			results[i] = convertFile(in, outputPath(in, outDir, target.Extension()), req, force)
			return nil
		})
	}
	_ = g.Wait()

	w := cmd.OutOrStdout()
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.in, r.err))
			continue
		}
		fmt.Fprintf(w, "%s -> %s (%s)\n", r.in, r.out, humanBytes(r.size))
	}
	return errors.Join(errs...)
}

func convertFile(in, out string, req wrapper.TranscodeRequest, force bool) convertResult {
	r := convertResult{in: in, out: out}
	if !force {
		if _, err := os.Stat(out); err == nil {
			r.err = fmt.Errorf("%s exists, use --force to overwrite", out)
			return r
		}
	}

	data, err := os.ReadFile(in)
	if err != nil {
		r.err = err
		return r
	}

	start := time.Now()
	res, err := wrapper.Transcode(data, req)
	if err != nil {
		r.err = err
		return r
	}
	slog.Debug("converted", "in", in, "out", out, "from", res.Source, "to", req.Target,
		"pixels", res.Pixels.Format(), "elapsed", time.Since(start))

	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		r.err = err
		return r
	}
	r.size = len(res.Data)
	return r
}

// outputPath replaces the extension of in with ext, placing the result in
// dir when it is set.
func outputPath(in, dir, ext string) string {
	name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ext
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, name)
}

func newConvertCmd() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert image files to another format",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ConvertHandler,
	}

	convertCmd.Flags().StringP("to", "t", "", "Target format (e.g. png, jpeg, exr)")
	convertCmd.Flags().IntP("quality", "q", 0, "Encoder quality: 1-100 for jpeg and webp, 1-9 for png (0 uses the default)")
	convertCmd.Flags().String("layout", "", "Convert pixels to this layout first (gray, grayalpha, rgb, rgba, bgra)")
	convertCmd.Flags().String("depth", "", "Convert pixels to this depth first (8, 16, 32f)")
	convertCmd.Flags().String("colorspace", "", "Convert pixels to this color space first (srgb, linear)")
	convertCmd.Flags().StringP("out", "o", "", "Output directory (default: next to the input)")
	convertCmd.Flags().IntP("workers", "j", 0, "Files converted in parallel (default: number of CPUs)")
	convertCmd.Flags().BoolP("force", "f", false, "Overwrite existing files")
	_ = convertCmd.MarkFlagRequired("to")

	return convertCmd
}
