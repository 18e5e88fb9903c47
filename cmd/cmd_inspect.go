package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/wrapper"
)

// DetectHandler prints the sniffed format of each file.
func DetectHandler(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	var unknown int
	for _, path := range args {
		data, err := readPrefix(path, format.SniffLen)
		if err != nil {
			return err
		}
		f := format.Detect(data)
		if f == format.Unknown {
			unknown++
		}
		fmt.Fprintf(w, "%s\t%s\n", path, f)
	}

	if unknown > 0 {
		return fmt.Errorf("%d of %d files: %w", unknown, len(args), imgerr.ErrUnknownFormat)
	}
	return nil
}

// readPrefix reads up to n bytes from the start of path.
func readPrefix(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	m, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:m], nil
}

// InfoHandler prints dimensions and pixel format of each file without
// decoding where the format allows it.
func InfoHandler(cmd *cobra.Command, args []string) error {
	rows := make([][]string, 0, len(args))
	var errs []error
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		s, err := wrapper.NewFromBytes(data, sessionOptions()...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		info, err := s.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}

		rows = append(rows, []string{
			path,
			s.Format().String(),
			strconv.Itoa(info.Width),
			strconv.Itoa(info.Height),
			info.Format.Layout.String(),
			info.Format.Depth.String(),
			info.Format.Space.String(),
			humanBytes(len(data)),
		})
	}

	renderTable(cmd.OutOrStdout(), []string{"FILE", "FORMAT", "WIDTH", "HEIGHT", "LAYOUT", "DEPTH", "COLORSPACE", "SIZE"}, rows)
	return errors.Join(errs...)
}

// FormatsHandler lists the registered formats.
func FormatsHandler(cmd *cobra.Command, _ []string) error {
	var rows [][]string
	for _, f := range wrapper.Formats() {
		rows = append(rows, []string{
			f.String(),
			f.Extension(),
			f.MimeType(),
			strconv.FormatBool(f.IsLossy()),
			strconv.FormatBool(f.IsHDR()),
		})
	}

	renderTable(cmd.OutOrStdout(), []string{"NAME", "EXTENSION", "MIME", "LOSSY", "HDR"}, rows)
	return nil
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect FILE...",
		Short: "Print the format of image files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  DetectHandler,
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Show dimensions and pixel format of image files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  InfoHandler,
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "formats",
		Aliases: []string{"ls"},
		Short:   "List supported formats",
		Args:    cobra.NoArgs,
		RunE:    FormatsHandler,
	}
}
