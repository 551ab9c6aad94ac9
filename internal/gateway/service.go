package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futa-medical/clinic-booking/pkg/config"
	"github.com/futa-medical/clinic-booking/pkg/logger"
)

// Service owns the HTTP server of the clinic API
type Service struct {
	server *http.Server
	logger *logger.Logger
}

// NewService creates a new HTTP service for handler using the server timeouts
func NewService(cfg config.ServerConfig, handler http.Handler, log *logger.Logger) *Service {
	return &Service{
		server: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		logger: log,
	}
}

// Addr returns the listen address
func (s *Service) Addr() string {
	return s.server.Addr
}

// Start serves until the server is shut down. A graceful shutdown is not
// reported as an error.
func (s *Service) Start() error {
	s.logger.WithComponent("gateway").WithField("addr", s.server.Addr).Info("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires
func (s *Service) Stop(ctx context.Context) error {
	s.logger.WithComponent("gateway").Info("Stopping HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
