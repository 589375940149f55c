package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common/graceful"
)

// GracefulTracker counts requests in flight so shutdown can wait for open
// streams. Once draining starts new requests get 503.
func GracefulTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		if graceful.IsDraining() {
			c.Header("Connection", "close")
			c.String(http.StatusServiceUnavailable, "server is shutting down")
			c.Abort()
			return
		}

		done := graceful.BeginRequest()
		defer done()
		c.Next()
	}
}
