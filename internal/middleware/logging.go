package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestMetrics holds in-memory request metrics
type RequestMetrics struct {
	mu                 sync.RWMutex
	TotalRequests      uint64
	FailedRequests     uint64
	TotalLatencyMs     int64
	RequestsByEndpoint map[string]uint64
	RequestsByStatus   map[int]uint64
}

var metrics = newRequestMetrics()

func newRequestMetrics() *RequestMetrics {
	return &RequestMetrics{
		RequestsByEndpoint: make(map[string]uint64),
		RequestsByStatus:   make(map[int]uint64),
	}
}

// GetMetrics returns the current request metrics
func GetMetrics() RequestMetrics {
	metrics.mu.RLock()
	defer metrics.mu.RUnlock()
	return RequestMetrics{
		TotalRequests:      metrics.TotalRequests,
		FailedRequests:     metrics.FailedRequests,
		TotalLatencyMs:     metrics.TotalLatencyMs,
		RequestsByEndpoint: copyMap(metrics.RequestsByEndpoint),
		RequestsByStatus:   copyMap(metrics.RequestsByStatus),
	}
}

// ResetMetrics clears every counter
func ResetMetrics() {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.TotalRequests = 0
	metrics.FailedRequests = 0
	metrics.TotalLatencyMs = 0
	metrics.RequestsByEndpoint = make(map[string]uint64)
	metrics.RequestsByStatus = make(map[int]uint64)
}

// copyMap creates a copy of the map
func copyMap[K comparable](src map[K]uint64) map[K]uint64 {
	dst := make(map[K]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func record(endpoint string, status int, latency time.Duration) {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.TotalRequests++
	if status >= 500 {
		metrics.FailedRequests++
	}
	metrics.TotalLatencyMs += latency.Milliseconds()
	metrics.RequestsByEndpoint[endpoint]++
	metrics.RequestsByStatus[status]++
}

// StructuredLoggingMiddleware provides structured logging with request latency and query parameters
func StructuredLoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		requestID := c.GetString(RequestIDKey)

		// Log request start with query parameters
		logger.Info("request started",
			"request_id", requestID,
			"method", method,
			"path", path,
			"query_params", c.Request.URL.Query().Encode(),
			"remote_addr", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		// Route patterns keep the endpoint set bounded
		route := c.FullPath()
		if route == "" {
			route = path
		}
		record(method+" "+route, statusCode, latency)

		level := slog.LevelInfo
		switch {
		case statusCode >= 500:
			level = slog.LevelError
		case statusCode >= 400:
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "request completed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status_code", statusCode,
			"latency_ms", latency.Milliseconds(),
			"latency", latency.String(),
			"bytes_written", c.Writer.Size(),
		)

		for _, err := range c.Errors {
			logger.Error("request error",
				"request_id", requestID,
				"method", method,
				"path", path,
				"error", err.Error(),
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}
