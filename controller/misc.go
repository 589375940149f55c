package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common"
	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/graceful"
	"github.com/VaDeloitte/test-project-sub002/relay/channeltype"
)

// TokenizerStatus reports tokenizer readiness. *tokenizer.Tokenizer implements it.
type TokenizerStatus interface {
	Ready() bool
	Encoding() string
}

// GetStatus serves GET /api/status.
func GetStatus(tokenizer TokenizerStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ready := tokenizer.Ready() && !graceful.IsDraining()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"success": ready,
			"message": "",
			"data": gin.H{
				"version":         common.Version,
				"start_time":      config.StartTime,
				"tokenizer_ready": tokenizer.Ready(),
				"encoding":        tokenizer.Encoding(),
				"draining":        graceful.IsDraining(),
				"profiles":        channeltype.Profiles,
			},
		})
	}
}
