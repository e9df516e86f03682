package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
)

// HeaderRequestID carries the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// contextKeyRequestID is the gin context key for the request ID.
const contextKeyRequestID = "request_id"

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger logs each request and records it in mt when set.
func RequestLogger(mt *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		mt.RecordHTTPRequest(c.FullPath(), c.Request.Method, status, elapsed)
		logger.Debug("api: %s %s %d %s request_id=%s",
			c.Request.Method, c.Request.URL.Path, status, elapsed, c.GetString(contextKeyRequestID))
	}
}
