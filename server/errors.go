package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/imagewrapper/imgerr"
)

// ============================================================================
// Error responses
// ============================================================================

// APIError is the JSON body of every failed request.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (e APIError) Error() string { return e.Message }

type kindMapping struct {
	code   string
	status int
}

var kindMappings = map[error]kindMapping{
	imgerr.ErrUnknownFormat:         {"UNKNOWN_FORMAT", http.StatusUnsupportedMediaType},
	imgerr.ErrUnsupportedFormat:     {"UNSUPPORTED_FORMAT", http.StatusUnsupportedMediaType},
	imgerr.ErrUnsupportedConversion: {"UNSUPPORTED_CONVERSION", http.StatusUnsupportedMediaType},
	imgerr.ErrCorruptData:           {"CORRUPT_DATA", http.StatusUnprocessableEntity},
	imgerr.ErrInvalidDimension:      {"INVALID_DIMENSION", http.StatusUnprocessableEntity},
	imgerr.ErrBufferSizeMismatch:    {"BUFFER_SIZE_MISMATCH", http.StatusUnprocessableEntity},
	imgerr.ErrNoSourceData:          {"NO_SOURCE_DATA", http.StatusUnprocessableEntity},
	imgerr.ErrAllocationFailure:     {"ALLOCATION_FAILURE", http.StatusRequestEntityTooLarge},
	imgerr.ErrCodecFailure:          {"CODEC_FAILURE", http.StatusInternalServerError},
}

// mapError returns the API code and status for err.
func mapError(err error) (string, int) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return "TOO_LARGE", http.StatusRequestEntityTooLarge
	}
	if m, ok := kindMappings[imgerr.KindOf(err)]; ok {
		return m.code, m.status
	}
	return "INTERNAL_ERROR", http.StatusInternalServerError
}

// abortWithError writes err as an APIError and records it for the request
// log.
func abortWithError(c *gin.Context, err error) {
	code, status := mapError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, APIError{
		Code:      code,
		Message:   err.Error(),
		RequestID: c.GetString(requestIDKey),
	})
}

// badRequest rejects malformed parameters.
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, APIError{
		Code:      "BAD_REQUEST",
		Message:   err.Error(),
		RequestID: c.GetString(requestIDKey),
	})
}
