package functions

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/todoai/server/internal/aifn"
)

func RegisterRoutes(router *gin.RouterGroup, reg *aifn.Registry) {
	router.GET("/functions", ListHandler(reg))
	router.GET("/functions/:name", GetCallHandler(reg))
	router.POST("/functions/:name", PostCallHandler(reg))
	router.POST("/functions/:name/map", MapHandler(reg))
}
