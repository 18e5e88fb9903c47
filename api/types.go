package api

import "fmt"

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	Code         string `json:"code"`
	ErrorMessage string `json:"error"`
	RequestID    string `json:"request_id,omitempty"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the imagewrapper server logs for details"
	}
}

// VersionResponse is returned by GET /api/version.
type VersionResponse struct {
	Version string `json:"version"`
}

// DetectResponse is returned by POST /api/detect.
type DetectResponse struct {
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
}

// InfoResponse is returned by POST /api/info.
type InfoResponse struct {
	Format     string `json:"format"`
	MimeType   string `json:"mime_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Layout     string `json:"layout"`
	Depth      string `json:"depth"`
	ColorSpace string `json:"color_space"`
	Size       int    `json:"size"`
}

// FormatResponse describes one entry of GET /api/formats.
type FormatResponse struct {
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	Extension string `json:"extension"`
	Lossy     bool   `json:"lossy"`
	HDR       bool   `json:"hdr"`
}

// FormatsResponse is returned by GET /api/formats.
type FormatsResponse struct {
	Formats []FormatResponse `json:"formats"`
}

// ConvertRequest asks the server to re-encode Image as Format. The pixel
// fields are optional and select the intermediate pixel format.
type ConvertRequest struct {
	Image      []byte
	Format     string
	Quality    int
	Layout     string
	Depth      string
	ColorSpace string
}

// ConvertResponse holds the re-encoded image.
type ConvertResponse struct {
	Data        []byte
	MimeType    string
	Width       int
	Height      int
	PixelFormat string
}
