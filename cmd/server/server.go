package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"codeberg.org/todoai/server/internal/config"
	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/logger"
	"codeberg.org/todoai/server/internal/ratelimit"
	"codeberg.org/todoai/server/internal/sessions"
	ws "codeberg.org/todoai/server/internal/websocket"
)

const (
	// how often expired sessions are swept
	sweepSchedule = "@every 1m"

	// time allowed to drop one expired session's state
	expireTimeout = 10 * time.Second

	// time allowed for in-flight requests once shutdown starts
	shutdownTimeout = 10 * time.Second
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s state backend: %w", cfg.StateBackend, err)
	}

	logger.Info("state backend ready", "backend", cfg.StateBackend)

	llmClient, err := llm.NewLLM(ctx)
	if err != nil {
		backend.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	server, err := assemble(ctx, cfg, backend, llmClient)
	if err != nil {
		backend.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, err
	}

	return server, nil
}

// wires services, middleware and routes around an open backend and model client
func assemble(ctx context.Context, cfg *config.Config, backend kv.Backend, llmClient llm.ChatCompleter) (*Server, error) {
	records, err := backend.Open(ctx, sessions.RecordsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open session records: %w", err)
	}

	// expired sessions take their stored state with them
	manager := sessions.NewManager(cfg.SessionTTL, func(ctx context.Context, sessionID string) error {
		ctx, cancel := context.WithTimeout(ctx, expireTimeout)
		defer cancel()

		return backend.Drop(ctx, sessionID)
	}, sessions.WithRecords(records))

	// sessions from before a restart stay usable; those that lapsed meanwhile are dropped now
	restored, err := manager.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("sessions restored", "count", restored, "expired", manager.Sweep(ctx))

	services, err := InitializeServices(llmClient, backend, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	server := &Server{
		config:   cfg,
		backend:  backend,
		sessions: manager,
		services: services,
		hub:      ws.NewHub(),
	}

	// share the state redis with the limiter so limits hold across replicas
	if rb, ok := backend.(*kv.RedisBackend); ok {
		server.redis = rb.Client()
	}

	server.limiter, err = ratelimit.New(cfg.RateLimit, server.redis)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	server.sweeper = cron.New()
	if _, err := server.sweeper.AddFunc(sweepSchedule, func() {
		manager.Sweep(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server.router = gin.New()
	RegisterRoutes(server.router, server)

	return server, nil
}

// serves HTTP and runs the session sweep until ctx is cancelled, then shuts down in order:
// websocket clients, in-flight requests, the sweep, the backend
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		// assistant runs make several model round trips
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", s.config.Port)
		serveErr <- httpServer.ListenAndServe()
	}()

	s.sweeper.Start()
	defer s.Close()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	s.hub.Shutdown("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

// stops background work and releases the backend
func (s *Server) Close() {
	stopped := s.sweeper.Stop()
	<-stopped.Done()

	if err := s.backend.Close(); err != nil {
		logger.ErrorErr(err, "failed to close state backend")
	}
}
