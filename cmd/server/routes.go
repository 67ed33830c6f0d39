package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	"codeberg.org/todoai/server/api/rest/ai"
	"codeberg.org/todoai/server/api/rest/functions"
	"codeberg.org/todoai/server/api/rest/health"
	"codeberg.org/todoai/server/api/rest/todo"
	"codeberg.org/todoai/server/api/websocket"
	"codeberg.org/todoai/server/docs"
	"codeberg.org/todoai/server/internal/auth"
	"codeberg.org/todoai/server/internal/errors"
	"codeberg.org/todoai/server/internal/logger"
	"codeberg.org/todoai/server/internal/ratelimit"
	ws "codeberg.org/todoai/server/internal/websocket"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(CORSMiddleware(server.config.Environment, server.config.CORSOrigins))

	router.GET("/health", health.Handler(server.config.StateBackend, server.services.LLM.Model()))
	router.GET("/swagger/doc.json", SwaggerHandler)

	v1 := router.Group("/api/v1")
	v1.Use(auth.OptionalAuthMiddleware())
	v1.Use(ratelimit.Middleware(server.limiter))

	{
		v1.GET("/ping", health.PingHandler)

		todo.RegisterRoutes(v1, server.services.Todos)
		functions.RegisterRoutes(v1, server.services.Functions)
		ai.RegisterRoutes(v1, server.services.LLM)
		websocket.RegisterRoutes(v1, server.hub, server.services.Todos,
			ws.NewOriginChecker(server.config.Environment, server.config.CORSOrigins))
	}
}

// serves the registered swagger document
func SwaggerHandler(c *gin.Context) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		errors.InternalError(c, "failed to read api docs", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
