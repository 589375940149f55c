package router

import (
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/controller"
	"github.com/VaDeloitte/test-project-sub002/middleware"
)

func SetApiRouter(router *gin.Engine, deps Deps) {
	apiRouter := router.Group("/api")
	apiRouter.GET("/status", controller.GetStatus(deps.Tokenizer))

	tracked := apiRouter.Group("")
	tracked.Use(middleware.GracefulTracker())
	{
		tracked.POST("/chat", middleware.GlobalChatRateLimit(), controller.Relay(deps.Pipeline))
		tracked.POST("/image-to-base64", controller.ImageToBase64)
		tracked.POST("/transcribe", controller.Transcribe(deps.Transcriber))
	}
}
