package todo

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/todoai/server/todoai/todos"
)

func RegisterRoutes(router *gin.RouterGroup, service *todos.Service) {
	router.GET("/todo", GetTodoHandler(service))
	router.POST("/todo", PostTodoHandler(service))

	sessionsGroup := router.Group("/todo/sessions")
	{
		sessionsGroup.POST("", CreateSessionHandler(service))
		sessionsGroup.GET("/:id", GetSessionHandler(service))
		sessionsGroup.DELETE("/:id", DeleteSessionHandler(service))
	}
}
