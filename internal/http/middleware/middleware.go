// Package middleware holds HTTP middleware that depends on application
// wiring rather than on the platform layer alone.
package middleware

import (
	"strconv"
	"time"

	"broker_portal_backend/platform/metrics"

	"github.com/gin-gonic/gin"
)

// RequestTimer records request latency per matched route.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func RequestTimer() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
