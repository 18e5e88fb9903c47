package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/imagewrapper/api"
	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/envconfig"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/imgerr"
	"github.com/7blacky7/imagewrapper/pixel"
	"github.com/7blacky7/imagewrapper/wrapper"
)

const (
	widthHeader  = "X-Image-Width"
	heightHeader = "X-Image-Height"
	pixelHeader  = "X-Image-Pixel-Format"
)

// readBody reads the request body up to the upload limit.
func (s *Server) readBody(c *gin.Context) ([]byte, error) {
	body := c.Request.Body
	if s.maxUpload > 0 {
		body = http.MaxBytesReader(c.Writer, body, s.maxUpload)
	}
	return io.ReadAll(body)
}

func (s *Server) sessionOptions(c *gin.Context) []wrapper.Option {
	return []wrapper.Option{
		wrapper.WithMaxPixels(s.maxPixels),
		wrapper.WithLogger(requestLogger(c)),
	}
}

// FormatsHandler lists the registered formats.
func (s *Server) FormatsHandler(c *gin.Context) {
	var resp api.FormatsResponse
	for _, f := range s.registry.Formats() {
		resp.Formats = append(resp.Formats, api.FormatResponse{
			Name:      f.String(),
			MimeType:  f.MimeType(),
			Extension: f.Extension(),
			Lossy:     f.IsLossy(),
			HDR:       f.IsHDR(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// DetectHandler sniffs the format of the request body.
func (s *Server) DetectHandler(c *gin.Context) {
	data, err := s.readBody(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	f := format.Detect(data)
	if f == format.Unknown {
		abortWithError(c, imgerr.New("detect", "", imgerr.ErrUnknownFormat, nil))
		return
	}
	c.JSON(http.StatusOK, api.DetectResponse{Format: f.String(), MimeType: f.MimeType()})
}

// InfoHandler reports dimensions and pixel format of the request body.
func (s *Server) InfoHandler(c *gin.Context) {
	data, err := s.readBody(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sess, err := s.registry.NewFromBytes(data, s.sessionOptions(c)...)
	if err != nil {
		abortWithError(c, err)
		return
	}
	info, err := sess.Info()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.InfoResponse{
		Format:     sess.Format().String(),
		MimeType:   sess.Format().MimeType(),
		Width:      info.Width,
		Height:     info.Height,
		Layout:     info.Format.Layout.String(),
		Depth:      info.Format.Depth.String(),
		ColorSpace: info.Format.Space.String(),
		Size:       len(data),
	})
}

type convertParams struct {
	target  format.Format
	encode  codec.Options
	rawOpts []wrapper.RawOption
}

func parseConvertParams(c *gin.Context) (convertParams, error) {
	var p convertParams

	name := c.Query("format")
	if name == "" {
		return p, fmt.Errorf("missing format parameter")
	}
	if p.target = format.Parse(name); p.target == format.Unknown {
		return p, imgerr.New("convert", name, imgerr.ErrUnknownFormat, nil)
	}

	if q := c.Query("quality"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return p, fmt.Errorf("invalid quality %q", q)
		}
		p.encode.Quality = n
	}
	if p.encode.Quality == 0 {
		switch p.target {
		case format.JPEG:
			p.encode.Quality = int(envconfig.JPEGQuality())
		case format.WebP:
			p.encode.Quality = int(envconfig.WebPQuality())
		}
	}

	if v := c.Query("layout"); v != "" {
		l, err := pixel.ParseLayout(v)
		if err != nil {
			return p, err
		}
		p.rawOpts = append(p.rawOpts, wrapper.WithLayout(l))
	}
	if v := c.Query("depth"); v != "" {
		d, err := pixel.ParseDepth(v)
		if err != nil {
			return p, err
		}
		p.rawOpts = append(p.rawOpts, wrapper.WithDepth(d))
	}
	if v := c.Query("colorspace"); v != "" {
		cs, err := pixel.ParseColorSpace(v)
		if err != nil {
			return p, err
		}
		p.rawOpts = append(p.rawOpts, wrapper.WithColorSpace(cs))
	}
	return p, nil
}

// ConvertHandler re-encodes the request body in the format named by the
// format query parameter.
func (s *Server) ConvertHandler(c *gin.Context) {
	p, err := parseConvertParams(c)
	if err != nil {
		if imgerr.KindOf(err) == nil {
			badRequest(c, err)
			return
		}
		abortWithError(c, err)
		return
	}

	data, err := s.readBody(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	start := time.Now()
	res, err := s.registry.Transcode(data, wrapper.TranscodeRequest{
		Target:  p.target,
		Encode:  p.encode,
		Raw:     p.rawOpts,
		Session: s.sessionOptions(c),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	requestLogger(c).Debug("converted", "from", res.Source, "to", p.target,
		"in", len(data), "out", len(res.Data), "elapsed", time.Since(start))

	c.Header(widthHeader, strconv.Itoa(res.Pixels.Width()))
	c.Header(heightHeader, strconv.Itoa(res.Pixels.Height()))
	c.Header(pixelHeader, res.Pixels.Format().String())
	c.Data(http.StatusOK, p.target.MimeType(), res.Data)
}
