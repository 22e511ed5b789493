package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskhub/internal/domain"
)

var errBadTaskID = errors.New("invalid task id")

// statusFor maps a failure kind onto an HTTP status.
func statusFor(err error) int {
	switch domain.ErrorKind(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusBadRequest
	default:
		if errors.Is(err, domain.ErrNotInitialized) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. Storage failures are logged with the
// request ID and reported without internal detail.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", c.GetString(HeaderRequestID))
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"error":      msg,
		"request_id": c.GetString(HeaderRequestID),
	})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success":    false,
		"error":      err.Error(),
		"request_id": c.GetString(HeaderRequestID),
	})
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
