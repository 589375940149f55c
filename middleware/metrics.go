package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/monitor"
)

// PrometheusMetrics records request counts and latency per route.
func PrometheusMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		monitor.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		monitor.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
