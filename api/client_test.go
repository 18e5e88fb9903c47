package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/imagewrapper/api"
	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/codec/codectest"
	pngcodec "github.com/7blacky7/imagewrapper/codec/png"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
	"github.com/7blacky7/imagewrapper/server"
	"github.com/7blacky7/imagewrapper/version"
	"github.com/7blacky7/imagewrapper/wrapper"
)

func testClient(t *testing.T) *api.Client {
	t.Helper()
	h, err := server.NewServer(nil, wrapper.DefaultRegistry).GenerateRoutes()
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	base, err := url.Parse(ts.URL)
	require.NoError(t, err)
	return api.NewClient(base, ts.Client())
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	data, err := pngcodec.New().Encode(codectest.Pattern(t, w, h, pixel.RGBA8, true), codec.Options{})
	require.NoError(t, err)
	return data
}

func TestClientFromEnvironment(t *testing.T) {
	t.Setenv("IMAGEWRAPPER_HOST", "10.0.0.1:9000")
	c, err := api.ClientFromEnvironment()
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestHeartbeatAndVersion(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	require.NoError(t, c.Heartbeat(ctx))

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, version.Version, v)
}

func TestFormats(t *testing.T) {
	resp, err := testClient(t).Formats(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Formats, len(format.All()))
	assert.Equal(t, "png", resp.Formats[0].Name)
}

func TestDetectAndInfo(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	img := testPNG(t, 7, 3)

	det, err := c.Detect(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, &api.DetectResponse{Format: "png", MimeType: "image/png"}, det)

	info, err := c.Info(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, 7, info.Width)
	assert.Equal(t, 3, info.Height)
	assert.Equal(t, len(img), info.Size)
}

func TestConvert(t *testing.T) {
	resp, err := testClient(t).Convert(context.Background(), &api.ConvertRequest{
		Image:      testPNG(t, 4, 2),
		Format:     "exr",
		Depth:      "32f",
		ColorSpace: "linear",
	})
	require.NoError(t, err)
	assert.Equal(t, format.EXR, format.Detect(resp.Data))
	assert.Equal(t, format.EXR.MimeType(), resp.MimeType)
	assert.Equal(t, 4, resp.Width)
	assert.Equal(t, 2, resp.Height)
	assert.Equal(t, "rgba32f/linear", resp.PixelFormat)
}

func TestStatusError(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	_, err := c.Detect(ctx, []byte("not an image"))
	var se api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnsupportedMediaType, se.StatusCode)
	assert.Equal(t, "UNKNOWN_FORMAT", se.Code)
	assert.NotEmpty(t, se.RequestID)

	_, err = c.Convert(ctx, &api.ConvertRequest{Image: testPNG(t, 2, 2)})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "BAD_REQUEST", se.Code)
}

func TestStatusErrorMessage(t *testing.T) {
	cases := []struct {
		err  api.StatusError
		want string
	}{
		{api.StatusError{Status: "400 Bad Request", ErrorMessage: "missing format"}, "400 Bad Request: missing format"},
		{api.StatusError{Status: "500 Internal Server Error"}, "500 Internal Server Error"},
		{api.StatusError{ErrorMessage: "boom"}, "boom"},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}
