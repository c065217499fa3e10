package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"agropredict/internal/external"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// IntegrationController passes requests through to the assistant and the
// companion microservice, and reports health
type IntegrationController struct {
	assistant    external.Assistant
	microservice external.Microservice
	db           Pinger
	logger       *slog.Logger
}

// NewIntegrationController creates a new integration controller. db may be
// nil, in which case health does not check storage.
func NewIntegrationController(assistant external.Assistant, microservice external.Microservice, db Pinger, logger *slog.Logger) *IntegrationController {
	return &IntegrationController{
		assistant:    assistant,
		microservice: microservice,
		db:           db,
		logger:       logger,
	}
}

// Ask handles GET /v1/assistant?q=
func (c *IntegrationController) Ask(ctx *gin.Context) {
	startTime := time.Now()
	question := strings.TrimSpace(ctx.Query("q"))
	if question == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required parameter",
			"message": "q is required",
		})
		return
	}

	answer, err := c.assistant.Ask(ctx.Request.Context(), question)
	if err != nil {
		respondError(ctx, c.logger, startTime, "ask assistant", err)
		return
	}

	c.logger.Info("assistant answered",
		"question_length", len(question),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	ctx.JSON(http.StatusOK, gin.H{"question": question, "answer": answer})
}

// Ping handles GET /v1/ms/ping
func (c *IntegrationController) Ping(ctx *gin.Context) {
	startTime := time.Now()
	body, err := c.microservice.Ping(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, startTime, "ping microservice", err)
		return
	}
	ctx.JSON(http.StatusOK, body)
}

// Echo handles GET /v1/ms/echo?msg=
func (c *IntegrationController) Echo(ctx *gin.Context) {
	startTime := time.Now()
	body, err := c.microservice.Echo(ctx.Request.Context(), ctx.DefaultQuery("msg", "hello"))
	if err != nil {
		respondError(ctx, c.logger, startTime, "echo microservice", err)
		return
	}
	ctx.JSON(http.StatusOK, body)
}

// Health handles GET /health
func (c *IntegrationController) Health(ctx *gin.Context) {
	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.PingContext(pingCtx); err != nil {
			c.logger.Error("health check failed", "error", err.Error())
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
