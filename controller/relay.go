package controller

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common/ctxkey"
	"github.com/VaDeloitte/test-project-sub002/common/helper"
	"github.com/VaDeloitte/test-project-sub002/monitor"
	rcontroller "github.com/VaDeloitte/test-project-sub002/relay/controller"
)

// Relay serves POST /api/chat. On success the body is the generated text,
// streamed as it arrives; on failure it is a plain text error message.
func Relay(pipeline *rcontroller.ChatPipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := gmw.GetLogger(c)
		startTime := time.Now()

		lg.Debug("incoming chat request",
			zap.String("path", c.Request.URL.Path),
			zap.Int64("content_length", c.Request.ContentLength),
			zap.String("request_id", c.GetString(helper.RequestIdKey)))

		bizErr := pipeline.RelayChatHelper(c)
		if bizErr == nil {
			return
		}

		status := rcontroller.ClientStatus(bizErr)
		fields := []zap.Field{
			zap.String("model", c.GetString(ctxkey.ModelID)),
			zap.String("profile", c.GetString(ctxkey.Profile)),
			zap.Int("upstream_status", bizErr.StatusCode),
			zap.String("type", bizErr.Type),
			zap.Any("code", bizErr.Code),
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Error(bizErr.RawError),
		}
		switch {
		case errors.Is(bizErr.RawError, context.Canceled):
			lg.Info("chat request cancelled by client", fields...)
		case monitor.ShouldAlert(&bizErr.Error, bizErr.StatusCode):
			lg.Error("chat relay failed, check provider configuration", fields...)
		default:
			lg.Warn("chat relay failed", fields...)
		}

		c.String(status, rcontroller.ClientMessage(bizErr))
		c.Abort()
	}
}
