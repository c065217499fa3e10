package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MetricsHandler returns current request metrics
func MetricsHandler(c *gin.Context) {
	m := GetMetrics()

	var avgLatency float64
	if m.TotalRequests > 0 {
		avgLatency = float64(m.TotalLatencyMs) / float64(m.TotalRequests)
	}
	byStatus := make(map[string]uint64, len(m.RequestsByStatus))
	for status, n := range m.RequestsByStatus {
		byStatus[strconv.Itoa(status)] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"total_requests":       m.TotalRequests,
		"failed_requests":      m.FailedRequests,
		"average_latency_ms":   avgLatency,
		"requests_by_endpoint": m.RequestsByEndpoint,
		"requests_by_status":   byStatus,
	})
}
