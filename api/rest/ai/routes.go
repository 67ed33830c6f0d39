package ai

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/todoai/server/internal/llm"
)

func RegisterRoutes(router *gin.RouterGroup, client llm.ChatCompleter) {
	group := router.Group("/ai")
	group.POST("/cast", CastHandler(client))
	group.POST("/extract", ExtractHandler(client))
	group.POST("/classify", ClassifyHandler(client))
	group.POST("/generate", GenerateHandler(client))
}
