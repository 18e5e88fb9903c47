package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}, PNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, JPEG},
		{"bmp", []byte{'B', 'M', 0x36, 0, 0, 0}, BMP},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00, 8, 0, 0, 0}, TIFF},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A, 0, 0, 0, 8}, TIFF},
		{"webp", []byte{'R', 'I', 'F', 'F', 0x24, 0, 0, 0, 'W', 'E', 'B', 'P', 'V', 'P', '8'}, WebP},
		{"qoi", []byte{'q', 'o', 'i', 'f', 0, 0, 0, 1}, QOI},
		{"exr", []byte{0x76, 0x2F, 0x31, 0x01, 2, 0, 0, 0}, EXR},
		{"radiance", []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n"), HDR},
		{"rgbe", []byte("#?RGBE\n"), HDR},
		{"riff without webp", []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'A', 'V', 'E'}, Unknown},
		{"truncated png", []byte{0x89, 0x50, 0x4E, 0x47}, Unknown},
		{"truncated jpeg", []byte{0xFF, 0xD8}, Unknown},
		{"truncated radiance", []byte("#?RADIAN"), Unknown},
		{"zeros", []byte{0, 0, 0, 0, 0, 0}, Unknown},
		{"empty", []byte{}, Unknown},
		{"nil", nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.expected {
				t.Errorf("Detect() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDetectReadsOnlyPrefix(t *testing.T) {
	// a signature placed beyond the sniff window must not be found
	data := append(make([]byte, SniffLen), 0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A)
	assert.Equal(t, Unknown, Detect(data))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"png", PNG},
		{".PNG", PNG},
		{"jpg", JPEG},
		{"JPEG", JPEG},
		{".tif", TIFF},
		{"webp", WebP},
		{"openexr", EXR},
		{".hdr", HDR},
		{"rgbe", HDR},
		{"gif", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestFormatProperties(t *testing.T) {
	for _, f := range All() {
		assert.True(t, f.Valid(), f.String())
		assert.Equal(t, f, Parse(f.String()))
		assert.Equal(t, f, Parse(f.Extension()))
		assert.NotEqual(t, "application/octet-stream", f.MimeType())
	}

	assert.False(t, Unknown.Valid())
	assert.Equal(t, "unknown", Format(42).String())
	assert.True(t, EXR.IsHDR())
	assert.True(t, JPEG.IsLossy())
	assert.False(t, PNG.IsLossy())
	assert.Len(t, Names(), len(All()))
}

func TestText(t *testing.T) {
	b, err := json.Marshal([]Format{PNG, EXR})
	require.NoError(t, err)
	assert.JSONEq(t, `["png","exr"]`, string(b))

	var got []Format
	require.NoError(t, json.Unmarshal([]byte(`["jpg",".tif","radiance"]`), &got))
	assert.Equal(t, []Format{JPEG, TIFF, HDR}, got)

	assert.Error(t, json.Unmarshal([]byte(`["gif"]`), &got))
}
