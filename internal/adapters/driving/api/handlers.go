package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/logger"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query           string `json:"query" binding:"required"`
	IncludeTopology bool   `json:"include_topology,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// CollectionsResponse is the body of GET /collections.
type CollectionsResponse struct {
	Collections []domain.CollectionStats `json:"collections"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) registerRoutes() {
	s.engine.POST("/query", s.handleQuery)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/collections", s.handleCollections)

	if reg := s.ports.Metrics.Registry(); reg != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
}

// handleQuery answers a question. Answering never fails; failures surface
// as the apology response with degraded set.
func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, "request body must be JSON with a non-empty \"query\"")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.abort(c, http.StatusBadRequest, "query must not be blank")
		return
	}

	answer := s.ports.Assistant.Ask(c.Request.Context(), domain.AskRequest{
		Query:           req.Query,
		IncludeTopology: req.IncludeTopology,
	})
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: s.ports.Version})
}

func (s *Server) handleCollections(c *gin.Context) {
	stats, err := s.ports.Collections.Stats(c.Request.Context())
	if err != nil {
		logger.Error("api: collection stats: %v", err)
		s.abort(c, http.StatusInternalServerError, "collection statistics unavailable")
		return
	}
	if stats == nil {
		stats = []domain.CollectionStats{}
	}
	c.JSON(http.StatusOK, CollectionsResponse{Collections: stats})
}

func (s *Server) abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, RequestID: c.GetString(contextKeyRequestID)})
}
