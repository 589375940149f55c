package middleware

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common/helper"
)

// AbortWithError aborts the request with a plain text error carrying the request id.
func AbortWithError(c *gin.Context, statusCode int, err error) {
	logger := gmw.GetLogger(c)
	if ignoreServerError(err) {
		logger.Warn("server abort",
			zap.Int("status_code", statusCode),
			zap.Error(err))
	} else {
		logger.Error("server abort",
			zap.Int("status_code", statusCode),
			zap.Error(err))
	}

	c.String(statusCode, helper.MessageWithRequestId(err.Error(), c.GetString(helper.RequestIdKey)))
	c.Abort()
}

func ignoreServerError(err error) bool {
	switch {
	case errors.Is(err, context.Canceled):
		return true
	case strings.Contains(err.Error(), "too many requests"):
		return true
	default:
		return false
	}
}
