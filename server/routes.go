// Package server exposes detection, inspection and conversion of images over
// HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"github.com/7blacky7/imagewrapper/api"
	"github.com/7blacky7/imagewrapper/envconfig"
	"github.com/7blacky7/imagewrapper/logutil"
	"github.com/7blacky7/imagewrapper/version"
	"github.com/7blacky7/imagewrapper/wrapper"
)

var mode string = gin.ReleaseMode

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.ReleaseMode
	}

	gin.SetMode(mode)
}

// Server handles image requests.
type Server struct {
	addr      net.Addr
	registry  *wrapper.Registry
	maxUpload int64
	maxPixels int64
}

// NewServer returns a server using reg, limited by the IMAGEWRAPPER_*
// settings.
func NewServer(addr net.Addr, reg *wrapper.Registry) *Server {
	return &Server{
		addr:      addr,
		registry:  reg,
		maxUpload: int64(envconfig.MaxUpload()),
		maxPixels: int64(envconfig.MaxPixels()),
	}
}

// compressible reports whether a response of content type ct is gzipped.
// PNG and WebP bodies are already deflate or entropy coded.
func compressible(ct string) bool {
	switch strings.TrimSpace(strings.ToLower(ct)) {
	case "image/png", "image/webp":
		return false
	}
	return gzhttp.DefaultContentTypeFilter(ct)
}

// GenerateRoutes builds the router. Responses are gzipped for clients that
// accept it.
func (s *Server) GenerateRoutes() (http.Handler, error) {
	gz, err := gzhttp.NewWrapper(gzhttp.ContentTypeFilter(compressible))
	if err != nil {
		return nil, err
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
		requestIDHeader,
	}
	corsConfig.ExposeHeaders = []string{requestIDHeader, widthHeader, heightHeader, pixelHeader}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		logMiddleware(),
		cors.New(corsConfig),
		allowedHostsMiddleware(s.addr),
	)

	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "imagewrapper is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "imagewrapper is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version}) })

	r.GET("/api/formats", s.FormatsHandler)
	r.POST("/api/detect", s.DetectHandler)
	r.POST("/api/info", s.InfoHandler)
	r.POST("/api/convert", s.ConvertHandler)

	return gz(r), nil
}

// Serve runs the server on ln until SIGINT or SIGTERM.
func Serve(ln net.Listener) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	s := NewServer(ln.Addr(), wrapper.DefaultRegistry)
	h, err := s.GenerateRoutes()
	if err != nil {
		return err
	}
	srvr := &http.Server{Handler: h}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		srvr.Close()
	}()

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	err = srvr.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
