package api

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Heartbeat checks if the server has started and is responsive; if yes, it
// returns nil, otherwise an error.
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, "/", nil, nil)
}

// Version returns the server's version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &v); err != nil {
		return "", err
	}
	return v.Version, nil
}

// Formats lists the formats the server can read and write.
func (c *Client) Formats(ctx context.Context) (*FormatsResponse, error) {
	var resp FormatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/formats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Detect identifies the format of image.
func (c *Client) Detect(ctx context.Context, image []byte) (*DetectResponse, error) {
	var resp DetectResponse
	if err := c.do(ctx, http.MethodPost, "/api/detect", image, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Info reports the dimensions and pixel format of image.
func (c *Client) Info(ctx context.Context, image []byte) (*InfoResponse, error) {
	var resp InfoResponse
	if err := c.do(ctx, http.MethodPost, "/api/info", image, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Convert re-encodes an image on the server.
func (c *Client) Convert(ctx context.Context, req *ConvertRequest) (*ConvertResponse, error) {
	query := url.Values{"format": {req.Format}}
	if req.Quality != 0 {
		query.Set("quality", strconv.Itoa(req.Quality))
	}
	for key, v := range map[string]string{"layout": req.Layout, "depth": req.Depth, "colorspace": req.ColorSpace} {
		if v != "" {
			query.Set(key, v)
		}
	}

	resp, body, err := c.send(ctx, http.MethodPost, "/api/convert", query, bytes.NewReader(req.Image), "application/octet-stream")
	if err != nil {
		return nil, err
	}

	width, _ := strconv.Atoi(resp.Header.Get("X-Image-Width"))
	height, _ := strconv.Atoi(resp.Header.Get("X-Image-Height"))
	return &ConvertResponse{
		Data:        body,
		MimeType:    resp.Header.Get("Content-Type"),
		Width:       width,
		Height:      height,
		PixelFormat: resp.Header.Get("X-Image-Pixel-Format"),
	}, nil
}
