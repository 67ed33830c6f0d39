package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/todoai/server/internal/config"
	"codeberg.org/todoai/server/internal/logger"
)

// @title ToDo AI API
// @version 1.0
// @description AI functions and a stateful to-do assistant served over HTTP
// @description
// @description Features:
// @description - Functions whose output is generated by a language model, callable by GET or POST
// @description - A to-do assistant that edits a list from natural language
// @description - Sessions that keep the list in memory, Redis, Postgres or SQLite
// @description - Real-time conversations via WebSockets

// @contact.name API Support
// @contact.url https://codeberg.org/todoai/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.Info("starting todoai server",
		"environment", cfg.Environment,
		"backend", cfg.StateBackend,
		"provider", cfg.LLMProvider,
	)

	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.ErrorErr(err, "server stopped with error")
		os.Exit(1)
	}

	logger.Info("server stopped")
}
