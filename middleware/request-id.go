package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common/helper"
)

func RequestId() func(c *gin.Context) {
	return func(c *gin.Context) {
		id := helper.GenRequestID()
		c.Set(helper.RequestIdKey, id)
		c.Request = c.Request.WithContext(helper.SetRequestID(c.Request.Context(), id))
		c.Header(helper.RequestIdKey, id)
		c.Next()
	}
}
