// Package economy_gateway exposes the read-only HTTP surface of the settlement
// engine: actor balances and history, account statements, the treasury, open
// delivery jobs and the subsidy rule set.
package economy_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/convoy-settlement-engine/internal/config"
	"github.com/convoy-settlement-engine/internal/economy_gateway/handler"
	"github.com/convoy-settlement-engine/internal/economy_gateway/service"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	actorService service.ActorService,
	ledgerService service.LedgerService,
	jobService service.JobService,
	subsidyService service.SubsidyService,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	actorHandler := handler.NewActorHandler(log, actorService)
	ledgerHandler := handler.NewLedgerHandler(log, ledgerService)
	jobHandler := handler.NewJobHandler(log, jobService)
	subsidyHandler := handler.NewSubsidyHandler(log, subsidyService)

	setupRouter(log, httpRouter, actorHandler, ledgerHandler, jobHandler, subsidyHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
