package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/imagewrapper/api"
	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/codec/codectest"
	pngcodec "github.com/7blacky7/imagewrapper/codec/png"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
	"github.com/7blacky7/imagewrapper/version"
	"github.com/7blacky7/imagewrapper/wrapper"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer() *Server {
	return &Server{
		registry:  wrapper.DefaultRegistry,
		maxUpload: 1 << 20,
		maxPixels: wrapper.DefaultMaxPixels,
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	data, err := pngcodec.New().Encode(codectest.Pattern(t, w, h, pixel.RGBA8, true), codec.Options{})
	require.NoError(t, err)
	return data
}

func serve(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	h, err := s.GenerateRoutes()
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, s, httptest.NewRequest(method, target, bytes.NewReader(body)))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestGeneral(t *testing.T) {
	s := testServer()

	w := do(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "imagewrapper is running", w.Body.String())

	w = do(t, s, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"`+version.Version+`"}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/detect", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestFormats(t *testing.T) {
	w := do(t, testServer(), http.MethodGet, "/api/formats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.FormatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Formats, len(format.All()))
	assert.Equal(t, api.FormatResponse{Name: "png", MimeType: "image/png", Extension: ".png"}, resp.Formats[0])
}

func TestRequestID(t *testing.T) {
	s := testServer()

	w := do(t, s, http.MethodGet, "/", nil)
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/detect", bytes.NewReader([]byte("nope")))
	req.Header.Set(requestIDHeader, id)
	w = serve(t, s, req)
	assert.Equal(t, id, w.Header().Get(requestIDHeader))
	assert.Equal(t, id, decodeError(t, w).RequestID)
}

func TestDetect(t *testing.T) {
	s := testServer()

	w := do(t, s, http.MethodPost, "/api/detect", testPNG(t, 4, 4))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"format":"png","mime_type":"image/png"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/detect", []byte("plain text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "UNKNOWN_FORMAT", decodeError(t, w).Code)
}

func TestInfo(t *testing.T) {
	data := testPNG(t, 5, 3)
	w := do(t, testServer(), http.MethodPost, "/api/info", data)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.InfoResponse{
		Format:     "png",
		MimeType:   "image/png",
		Width:      5,
		Height:     3,
		Layout:     "rgba",
		Depth:      pixel.Depth8.String(),
		ColorSpace: "srgb",
		Size:       len(data),
	}, resp)
}

func TestConvert(t *testing.T) {
	w := do(t, testServer(), http.MethodPost, "/api/convert?format=qoi", testPNG(t, 6, 2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/qoi", w.Header().Get("Content-Type"))
	assert.Equal(t, "6", w.Header().Get(widthHeader))
	assert.Equal(t, "2", w.Header().Get(heightHeader))
	assert.Equal(t, "rgba8/srgb", w.Header().Get(pixelHeader))
	assert.Equal(t, format.QOI, format.Detect(w.Body.Bytes()))
}

func TestConvertWithPixelFormat(t *testing.T) {
	w := do(t, testServer(), http.MethodPost, "/api/convert?format=exr&depth=32f&colorspace=linear", testPNG(t, 3, 3))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "rgba32f/linear", w.Header().Get(pixelHeader))
	assert.Equal(t, format.EXR, format.Detect(w.Body.Bytes()))
}

func TestConvertCompressed(t *testing.T) {
	cases := []struct {
		target  string
		gzipped bool
	}{
		{"bmp", true},
		{"png", false},
	}
	for _, tt := range cases {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/convert?format="+tt.target, bytes.NewReader(testPNG(t, 32, 32)))
			req.Header.Set("Accept-Encoding", "gzip")
			w := serve(t, testServer(), req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "32", w.Header().Get(widthHeader))

			body := w.Body.Bytes()
			if !tt.gzipped {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				assert.Equal(t, format.Parse(tt.target), format.Detect(body))
				return
			}
			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			zr, err := gzip.NewReader(bytes.NewReader(body))
			require.NoError(t, err)
			body, err = io.ReadAll(zr)
			require.NoError(t, err)
			assert.Equal(t, format.BMP, format.Detect(body))
		})
	}
}

func TestConvertErrors(t *testing.T) {
	png := testPNG(t, 8, 8)

	cases := []struct {
		name   string
		target string
		body   []byte
		server func(*Server)
		status int
		code   string
	}{
		{"missing format", "/api/convert", png, nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown format", "/api/convert?format=gif", png, nil, http.StatusUnsupportedMediaType, "UNKNOWN_FORMAT"},
		{"bad quality", "/api/convert?format=jpeg&quality=high", png, nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"quality out of range", "/api/convert?format=jpeg&quality=500", png, nil, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"bad layout", "/api/convert?format=png&layout=cmyk", png, nil, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"no gray mapping", "/api/convert?format=png&layout=gray", png, nil, http.StatusUnsupportedMediaType, "UNSUPPORTED_CONVERSION"},
		{"unknown input", "/api/convert?format=png", []byte("garbage bytes"), nil, http.StatusUnsupportedMediaType, "UNKNOWN_FORMAT"},
		{"truncated input", "/api/convert?format=qoi", png[:len(png)-10], nil, http.StatusUnprocessableEntity, "CORRUPT_DATA"},
		{"too many pixels", "/api/convert?format=qoi", png, func(s *Server) { s.maxPixels = 10 }, http.StatusRequestEntityTooLarge, "ALLOCATION_FAILURE"},
		{"upload too large", "/api/convert?format=qoi", png, func(s *Server) { s.maxUpload = 16 }, http.StatusRequestEntityTooLarge, "TOO_LARGE"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer()
			if tt.server != nil {
				tt.server(s)
			}
			w := do(t, s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestAllowedHosts(t *testing.T) {
	s := testServer()
	s.addr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 11500}

	cases := map[string]int{
		"localhost":       http.StatusOK,
		"127.0.0.1":       http.StatusOK,
		"example.local":   http.StatusOK,
		"evil.example":    http.StatusForbidden,
		"attacker.com:80": http.StatusForbidden,
	}
	for host, status := range cases {
		t.Run(host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = host
			w := serve(t, s, req)
			assert.Equal(t, status, w.Code)
		})
	}
}
