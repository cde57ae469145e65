// Package response writes the JSON envelope shared by every HTTP endpoint.
package response

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page, Limit: limit, Total: total, TotalPages: pages},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, ErrorBody{Code: "BAD_REQUEST", Message: message})
}

// Error maps err onto a status code and writes it.
func Error(c *gin.Context, err error) {
	status, body := classify(err)
	abort(c, status, body)
}

func abort(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: &body})
}

func classify(err error) (int, ErrorBody) {
	var (
		te *navigation.TranslationError
		ve *navigation.ValidationError
		le *navigation.LifecycleError
		ee *navigation.EngineError
	)
	switch {
	case errors.As(err, &te):
		return http.StatusUnprocessableEntity, ErrorBody{Code: "TRANSLATION_FAILED", Message: err.Error(), Path: strings.Join(te.Path, ".")}
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorBody{Code: "VALIDATION_FAILED", Message: err.Error()}
	case errors.As(err, &le):
		return http.StatusServiceUnavailable, ErrorBody{Code: "SESSION_BUILD_FAILED", Message: err.Error()}
	case errors.As(err, &ee):
		if ee.Timeout() {
			return http.StatusBadGateway, ErrorBody{Code: "ENGINE_TIMEOUT", Message: err.Error()}
		}
		return http.StatusBadGateway, ErrorBody{Code: "ENGINE_FAILED", Message: err.Error()}
	case errors.Is(err, navigation.ErrUninitialized):
		return http.StatusConflict, ErrorBody{Code: "UNINITIALIZED", Message: err.Error()}
	case errors.Is(err, navigation.ErrStaleSession):
		return http.StatusConflict, ErrorBody{Code: "STALE_SESSION", Message: err.Error()}
	case errors.Is(err, navigation.ErrLocationInactive):
		return http.StatusConflict, ErrorBody{Code: "LOCATION_INACTIVE", Message: err.Error()}
	case errors.Is(err, navigation.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: "NOT_FOUND", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}
	}
}
