package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"plumise.backend/internal/metrics"
)

// MetricsMiddleware records request counts and latency per route. The route
// template is used as the path label so parameterized routes do not explode
// cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestLatency.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
