package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agropredict/internal/analytics"
	"agropredict/internal/estimator"
	"agropredict/internal/external"
	"agropredict/internal/repository"
	"agropredict/internal/service"
)

// respondError maps domain errors to HTTP responses and logs them. action
// completes the "Failed to ..." message of unexpected errors.
func respondError(ctx *gin.Context, logger *slog.Logger, startTime time.Time, action string, err error, attrs ...any) {
	latency := time.Since(startTime)
	attrs = append(attrs, "error", err.Error(), "latency_ms", latency.Milliseconds())

	var verr *estimator.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Warn("validation failed", attrs...)
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"message": verr.Error(),
			"fields":  verr.Fields,
		})
	case errors.Is(err, analytics.ErrComparisonSize):
		logger.Warn("invalid comparison size", attrs...)
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid comparison",
			"message": fmt.Sprintf("between %d and %d completed predictions are required", analytics.MinComparison, analytics.MaxComparison),
		})
	case errors.Is(err, repository.ErrNotFound):
		logger.Warn("resource not found", attrs...)
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrNotCompleted):
		logger.Warn("prediction not completed", attrs...)
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Prediction not completed",
			"message": err.Error(),
		})
	case errors.Is(err, external.ErrUpstream):
		logger.Error("upstream call failed", attrs...)
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Upstream unavailable",
			"message": err.Error(),
		})
	default:
		logger.Error("failed to "+action, attrs...)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to " + action,
		})
	}
}

// parseIDParam parses a positive path id, answering 400 when it is invalid
func parseIDParam(ctx *gin.Context, logger *slog.Logger, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		logger.Warn("invalid "+name, name, raw)
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid " + name,
			"message": name + " must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// parseUintQuery parses an optional unsigned query parameter; absent yields 0
func parseUintQuery(ctx *gin.Context, logger *slog.Logger, name string) (uint, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		logger.Warn("invalid "+name, name, raw, "error", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid " + name,
			"message": name + " must be a valid unsigned integer",
		})
		return 0, false
	}
	return uint(v), true
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(ctx *gin.Context, logger *slog.Logger, dst any) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		logger.Warn("invalid request body", "path", ctx.Request.URL.Path, "error", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return false
	}
	return true
}
