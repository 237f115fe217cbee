package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/garyellow/calmmate-go/internal/metrics"
	"github.com/gin-gonic/gin"
)

// metricsAuthMiddleware enforces Basic Auth on /metrics when enabled.
// Rejections are counted under the "metrics" auth kind.
func metricsAuthMiddleware(enabled bool, username, password string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		// Compare both fields in constant time, even when the first differs.
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if !ok || !userMatch || !passMatch {
			m.RecordAuth("metrics", "denied")
			c.Header("WWW-Authenticate", `Basic realm="calmmate-metrics"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
