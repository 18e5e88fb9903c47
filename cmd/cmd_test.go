package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/codec/codectest"
	pngcodec "github.com/7blacky7/imagewrapper/codec/png"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
	"github.com/7blacky7/imagewrapper/version"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewCLI()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	data, err := pngcodec.New().Encode(codectest.Pattern(t, w, h, pixel.RGBA8, true), codec.Options{})
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersion(t *testing.T) {
	t.Setenv("IMAGEWRAPPER_HOST", "127.0.0.1:1")
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "imagewrapper version is "+version.Version+"\n", out)
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	img := writePNG(t, dir, "a.png", 2, 2)
	txt := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hi"), 0o644))

	out, err := run(t, "detect", img)
	require.NoError(t, err)
	assert.Equal(t, img+"\tpng\n", out)

	out, err = run(t, "detect", img, txt)
	assert.ErrorIs(t, err, imgerr.ErrUnknownFormat)
	assert.Contains(t, out, txt+"\tunknown\n")
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	img := writePNG(t, dir, "a.png", 7, 5)

	out, err := run(t, "info", img)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "FILE\tFORMAT\tWIDTH\tHEIGHT\tLAYOUT\tDEPTH\tCOLORSPACE\tSIZE", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], img+"\tpng\t7\t5\trgba\t"), lines[1])
}

func TestFormats(t *testing.T) {
	out, err := run(t, "formats")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(format.All())+1)
	assert.Equal(t, "png\t.png\timage/png\tfalse\tfalse", lines[1])
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	a := writePNG(t, dir, "a.png", 4, 4)
	b := writePNG(t, dir, "b.png", 3, 6)

	stdout, err := run(t, "convert", "--to", "qoi", "--out", out, "-j", "2", a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, a+" -> "+filepath.Join(out, "a.qoi"))

	for _, name := range []string{"a.qoi", "b.qoi"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Equal(t, format.QOI, format.Detect(data))
	}

	// existing outputs are kept unless forced
	_, err = run(t, "convert", "--to", "qoi", "--out", out, a)
	assert.ErrorContains(t, err, "exists")
	_, err = run(t, "convert", "--to", "qoi", "--out", out, "--force", a)
	assert.NoError(t, err)
}

func TestConvertEnvironmentDefaults(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	a := writePNG(t, dir, "a.png", 4, 4)
	t.Setenv("IMAGEWRAPPER_OUTPUT_DIR", out)

	_, err := run(t, "convert", "--to", "bmp", a)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "a.bmp"))

	_, err = run(t, "convert", "--to", "bmp", a)
	assert.ErrorContains(t, err, "exists")

	t.Setenv("IMAGEWRAPPER_OVERWRITE", "1")
	_, err = run(t, "convert", "--to", "bmp", a)
	assert.NoError(t, err)
}

func TestConvertPixelFormat(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 4, 4)

	_, err := run(t, "convert", "--to", "exr", "--depth", "32f", "--colorspace", "linear", a)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "a.exr"))
	require.NoError(t, err)
	assert.Equal(t, format.EXR, format.Detect(data))

	_, err = run(t, "convert", "--to", "png", "--layout", "cmyk", a)
	assert.ErrorIs(t, err, imgerr.ErrUnsupportedFormat)
}

func TestConvertSuggestsFormat(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 2, 2)

	_, err := run(t, "convert", "--to", "jpgg", a)
	assert.ErrorIs(t, err, imgerr.ErrUnknownFormat)
	assert.ErrorContains(t, err, `did you mean "jpeg"?`)
}

func TestSuggest(t *testing.T) {
	cases := map[string]string{
		"pgn":    "png",
		"WEBP":   "webp",
		"tif":    "tiff",
		"exrr":   "exr",
		"banana": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, suggest(in, format.Names()), in)
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("in", "photo.webp"), outputPath(filepath.Join("in", "photo.jpeg"), "", ".webp"))
	assert.Equal(t, filepath.Join("out", "photo.exr"), outputPath(filepath.Join("in", "photo.hdr"), "out", ".exr"))
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.5 KiB", humanBytes(1536))
	assert.Equal(t, "2.0 MiB", humanBytes(2<<20))
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "--formats", "png,qoi", "--sizes", "8x8", "-n", "1", "--warmup", "0", "-o", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "png,encode,8x8,1,"))
	assert.True(t, strings.HasPrefix(lines[4], "qoi,decode,8x8,1,"))

	_, err = run(t, "bench", "--formats", "pgn", "--sizes", "8x8")
	assert.ErrorIs(t, err, imgerr.ErrUnknownFormat)

	_, err = run(t, "bench", "--sizes", "8x8", "-o", "yaml")
	assert.ErrorContains(t, err, "unknown output")
}
