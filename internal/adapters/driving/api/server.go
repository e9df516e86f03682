// Package api provides the HTTP API for netassist, built on gin.
//
// Routes:
//
//	POST /query        answer a question
//	GET  /health       liveness
//	GET  /collections  collection statistics
//	GET  /metrics      Prometheus exposition (when metrics are wired)
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
)

// Errors returned by NewServer.
var (
	ErrMissingAssistant   = errors.New("api: assistant is required")
	ErrMissingCollections = errors.New("api: collection service is required")
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Ports aggregates the services the API exposes.
type Ports struct {
	Assistant   driving.Assistant
	Collections driving.CollectionService

	// Metrics is optional; without it /metrics is not routed.
	Metrics *metrics.Metrics

	// Version is reported by /health.
	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	if p.Collections == nil {
		return ErrMissingCollections
	}
	return nil
}

// Server is the HTTP API server.
type Server struct {
	ports  *Ports
	engine *gin.Engine
}

// NewServer creates the router and registers all routes.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(ports.Metrics))

	s := &Server{ports: ports, engine: engine}
	s.registerRoutes()
	return s, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("api: shutdown: %v", err)
		}
	}()

	logger.Info("api: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
