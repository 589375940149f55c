package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common"
	"github.com/VaDeloitte/test-project-sub002/common/logger"
)

// RelayPanicRecover logs panics with the request body and answers 500.
// http.ErrAbortHandler is re-raised so net/http drops the connection; that is
// how an aborted stream reaches the client.
func RelayPanicRecover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			body, _ := common.GetRequestBody(c)
			logger.Logger.Error("panic detected",
				zap.Any("panic", err),
				zap.String("stacktrace", string(debug.Stack())),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("request_body", body))

			if c.Writer.Written() {
				// response already started, drop the connection instead
				panic(http.ErrAbortHandler)
			}
			c.String(http.StatusInternalServerError, fmt.Sprintf("internal error: %v", err))
			c.Abort()
		}()
		c.Next()
	}
}
