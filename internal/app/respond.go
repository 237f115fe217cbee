package app

import (
	"net/http"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/sentry"
	"github.com/gin-gonic/gin"
)

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case domerrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case domerrors.IsNotFound(err):
		return http.StatusNotFound
	case domerrors.IsAlreadyExists(err):
		return http.StatusConflict
	case domerrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case domerrors.IsRateLimitExceeded(err):
		return http.StatusTooManyRequests
	case domerrors.IsTimeout(err):
		return http.StatusGatewayTimeout
	case domerrors.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorType is the metrics label for a status.
func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "internal"
	}
}

// writeError answers with {"error": message}. Validation and wrapped
// errors carry their user message, anything else carries fallback.
// Server errors are logged and reported to Sentry.
func (a *Application) writeError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	a.metrics.RecordHTTPError(errorType(status), c.FullPath())

	message := fallback
	if status >= http.StatusInternalServerError {
		a.logger.WithError(err).WithField("route", c.FullPath()).
			ErrorContext(c.Request.Context(), "Request failed")
		sentry.CaptureHTTPError(c, status, err)
	} else if msg, ok := domerrors.UserMessage(err); ok {
		message = msg
	}

	c.JSON(status, gin.H{"error": message})
}

// bindJSON decodes the body into dst, answering 400 on malformed JSON.
func (a *Application) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		a.metrics.RecordHTTPError("invalid_input", c.FullPath())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be valid JSON."})
		return false
	}
	return true
}
