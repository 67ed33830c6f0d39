package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/ulule/limiter/v3"

	"codeberg.org/todoai/server/internal/aifn"
	"codeberg.org/todoai/server/internal/config"
	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/sessions"
	ws "codeberg.org/todoai/server/internal/websocket"
	"codeberg.org/todoai/server/todoai/todos"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	backend  kv.Backend
	redis    *redis.Client // nil unless the redis backend is in use
	sessions *sessions.Manager
	services *Services
	hub      *ws.Hub
	limiter  *limiter.Limiter
	sweeper  *cron.Cron
	router   *gin.Engine
}

// holds the model client and the services built on it
type Services struct {
	LLM       llm.ChatCompleter
	Functions *aifn.Registry
	Todos     *todos.Service
}
