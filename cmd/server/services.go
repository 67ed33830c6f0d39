package main

import (
	"context"
	"fmt"

	"codeberg.org/todoai/server/internal/aifn"
	"codeberg.org/todoai/server/internal/config"
	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/sessions"
	"codeberg.org/todoai/server/todoai/functions"
	"codeberg.org/todoai/server/todoai/todos"
)

// creates and configures all services on top of the model client
func InitializeServices(llmClient llm.ChatCompleter, backend kv.Backend, manager *sessions.Manager) (*Services, error) {
	registry := aifn.NewRegistry()
	if err := functions.Register(registry, llmClient); err != nil {
		return nil, fmt.Errorf("failed to register functions: %w", err)
	}

	return &Services{
		LLM:       llmClient,
		Functions: registry,
		Todos:     todos.NewService(llmClient, backend, manager),
	}, nil
}

// opens the configured state backend
func OpenBackend(ctx context.Context, cfg *config.Config) (kv.Backend, error) {
	switch cfg.StateBackend {
	case config.BackendRedis:
		return kv.NewRedisBackendFromURL(cfg.RedisURL)
	case config.BackendPostgres:
		return kv.NewPostgresBackend(ctx, cfg.DatabaseURL)
	case config.BackendSQLite:
		return kv.NewSQLiteBackend(cfg.SQLitePath)
	default:
		return kv.NewMemoryBackend(), nil
	}
}
