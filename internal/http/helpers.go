package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	logging.Error().Err(err).Str("context", context).Msg("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondContentError maps content API failures to a response. Unavailable
// content is reported as 503 so that clients can fall back to offline data.
func respondContentError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, quranapi.ErrNotFound):
		respondNotFound(c, resource)
	case errors.Is(err, quranapi.ErrCancelled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled", Code: "cancelled"})
	default:
		logging.Warn().Err(err).Str("resource", resource).Msg("Content unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: resource + " unavailable", Code: "content_unavailable"})
	}
}

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIntParam extracts an integer URL parameter within [lo, hi].
// Responds with a 400 error and returns 0, false when it is invalid.
func parseIntParam(c *gin.Context, name string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < lo || n > hi {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}

// parseOptionalIntQuery parses an optional integer query parameter.
// A missing parameter yields 0.
func parseOptionalIntQuery(c *gin.Context, name string, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}

// queryBool reports whether a query flag is set to a true value.
func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// splitList splits a comma separated query value, dropping empty items.
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
