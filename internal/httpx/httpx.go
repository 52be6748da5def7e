// Package httpx provides helper functions for writing JSON HTTP responses.
package httpx

import (
	"errors"
	"net/http"

	"github.com/kylejryan/image-upload-service/internal/api"
	"github.com/kylejryan/image-upload-service/internal/images"

	"github.com/gin-gonic/gin"
)

// JSON writes v as a JSON response with the given status code.
func JSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

// Error writes a JSON error body {"error": msg, "detail": cause}.
func Error(c *gin.Context, status int, msg string, cause error) {
	resp := api.ErrorResponse{Error: msg}
	if cause != nil {
		resp.Detail = cause.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// Status maps a service error to its HTTP status code.
func Status(err error) int {
	switch images.KindOf(err) {
	case images.KindValidation, images.KindBadRequest:
		return http.StatusBadRequest
	case images.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case images.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError writes err using its mapped status. Only storage failures and
// validation problems carry a detail; not-found and bad-request bodies hold
// just the message.
func ServiceError(c *gin.Context, err error) {
	status := Status(err)
	var e *images.Error
	if !errors.As(err, &e) {
		Error(c, status, "internal error", err)
		return
	}
	var cause error
	switch e.Kind {
	case images.KindStorage, images.KindValidation:
		cause = e.Err
	}
	Error(c, status, e.Msg, cause)
}
