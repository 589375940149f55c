package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/controller"
	rcontroller "github.com/VaDeloitte/test-project-sub002/relay/controller"
	"github.com/VaDeloitte/test-project-sub002/relay/media"
)

// Deps are the long-lived collaborators the handlers are bound to.
type Deps struct {
	Pipeline    *rcontroller.ChatPipeline
	Transcriber *media.Transcriber
	Tokenizer   controller.TokenizerStatus
}

func SetRouter(router *gin.Engine, deps Deps) {
	SetApiRouter(router, deps)
	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})
}
