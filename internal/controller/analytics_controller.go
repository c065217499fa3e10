package controller

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"agropredict/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyticsController handles dashboard and comparison HTTP requests
type AnalyticsController struct {
	dashboardService  service.DashboardService
	comparisonService service.ComparisonService
	logger            *slog.Logger
}

// NewAnalyticsController creates a new analytics controller
func NewAnalyticsController(dashboardService service.DashboardService, comparisonService service.ComparisonService, logger *slog.Logger) *AnalyticsController {
	return &AnalyticsController{
		dashboardService:  dashboardService,
		comparisonService: comparisonService,
		logger:            logger,
	}
}

// GetDashboard handles GET /v1/dashboard
func (c *AnalyticsController) GetDashboard(ctx *gin.Context) {
	startTime := time.Now()

	dashboard, err := c.dashboardService.GetDashboard(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, startTime, "retrieve dashboard", err)
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("dashboard request completed",
		"total", dashboard.Totals.Total,
		"completion_rate", dashboard.Totals.CompletionRate,
		"latency_ms", latency.Milliseconds(),
	)
	ctx.JSON(http.StatusOK, dashboard)
}

// Compare handles GET /v1/comparison
// Query parameters:
//   - ids (optional): 2 to 5 prediction ids, comma separated or repeated.
//     Without ids the most recent completed predictions are compared.
func (c *AnalyticsController) Compare(ctx *gin.Context) {
	startTime := time.Now()
	ids, err := parseIDList(ctx.QueryArray("ids"))
	if err != nil {
		c.logger.Warn("invalid ids", "ids", ctx.QueryArray("ids"), "error", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid ids",
			"message": err.Error(),
		})
		return
	}

	items, err := c.comparisonService.Compare(ctx.Request.Context(), ids)
	if err != nil {
		respondError(ctx, c.logger, startTime, "compare predictions", err, "ids", ids)
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("comparison request completed",
		"ids", ids,
		"items", len(items),
		"latency_ms", latency.Milliseconds(),
	)
	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

// ExportComparison handles GET /v1/comparison/export and answers an xlsx workbook
func (c *AnalyticsController) ExportComparison(ctx *gin.Context) {
	startTime := time.Now()
	ids, err := parseIDList(ctx.QueryArray("ids"))
	if err != nil {
		c.logger.Warn("invalid ids", "ids", ctx.QueryArray("ids"), "error", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid ids",
			"message": err.Error(),
		})
		return
	}

	// Buffered so a failure can still answer JSON
	var buf bytes.Buffer
	if err := c.comparisonService.Export(ctx.Request.Context(), ids, &buf); err != nil {
		respondError(ctx, c.logger, startTime, "export comparison", err, "ids", ids)
		return
	}

	c.logger.Info("comparison exported",
		"ids", ids,
		"bytes", buf.Len(),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	ctx.Header("Content-Disposition", `attachment; filename="comparison.xlsx"`)
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// parseIDList accepts ids=1,2,3 as well as ids=1&ids=2
func parseIDList(values []string) ([]uint, error) {
	var ids []uint
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 32)
			if err != nil || id == 0 {
				return nil, fmt.Errorf("invalid prediction id %q", part)
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}
