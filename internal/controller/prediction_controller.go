package controller

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agropredict/internal/estimator"
	"agropredict/internal/model"
	"agropredict/internal/repository"
	"agropredict/internal/service"
)

// PredictionController handles prediction and analysis HTTP requests
type PredictionController struct {
	predictionService service.PredictionService
	analysisService   service.AnalysisService
	logger            *slog.Logger
}

// NewPredictionController creates a new prediction controller
func NewPredictionController(predictionService service.PredictionService, analysisService service.AnalysisService, logger *slog.Logger) *PredictionController {
	return &PredictionController{
		predictionService: predictionService,
		analysisService:   analysisService,
		logger:            logger,
	}
}

// CreatePrediction handles POST /v1/predictions
func (c *PredictionController) CreatePrediction(ctx *gin.Context) {
	startTime := time.Now()
	var req estimator.Request
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	prediction, err := c.predictionService.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, c.logger, startTime, "create prediction", err,
			"species_id", req.SpeciesID,
			"commune_id", req.CommuneID,
		)
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("prediction created",
		"prediction_id", prediction.ID,
		"species_id", prediction.SpeciesID,
		"status", prediction.Status,
		"latency_ms", latency.Milliseconds(),
	)
	ctx.JSON(http.StatusCreated, prediction)
}

// ListPredictions handles GET /v1/predictions
// Query parameters:
//   - species_id (optional): Filter by species
//   - region_id (optional): Filter by region of the commune
//   - status (optional): pending, processing, completed or error
//   - page (optional): 1-based page number, 10 predictions per page
func (c *PredictionController) ListPredictions(ctx *gin.Context) {
	startTime := time.Now()
	speciesID, ok := parseUintQuery(ctx, c.logger, "species_id")
	if !ok {
		return
	}
	regionID, ok := parseUintQuery(ctx, c.logger, "region_id")
	if !ok {
		return
	}
	page := 1
	if raw := ctx.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			c.logger.Warn("invalid page", "page", raw)
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid page",
				"message": "page must be a positive integer",
			})
			return
		}
		page = p
	}

	filter := repository.ListFilter{
		SpeciesID: speciesID,
		RegionID:  regionID,
		Status:    model.Status(ctx.Query("status")),
		Page:      page,
	}
	result, err := c.predictionService.List(ctx.Request.Context(), filter)
	if err != nil {
		respondError(ctx, c.logger, startTime, "list predictions", err, "page", page)
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("predictions listed",
		"page", result.Page,
		"total", result.Total,
		"latency_ms", latency.Milliseconds(),
	)
	ctx.JSON(http.StatusOK, result)
}

// GetPrediction handles GET /v1/predictions/:id
func (c *PredictionController) GetPrediction(ctx *gin.Context) {
	startTime := time.Now()
	id, ok := parseIDParam(ctx, c.logger, "id")
	if !ok {
		return
	}

	prediction, err := c.predictionService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.logger, startTime, "retrieve prediction", err, "prediction_id", id)
		return
	}
	ctx.JSON(http.StatusOK, prediction)
}

// RecomputePrediction handles POST /v1/predictions/:id/recompute
func (c *PredictionController) RecomputePrediction(ctx *gin.Context) {
	startTime := time.Now()
	id, ok := parseIDParam(ctx, c.logger, "id")
	if !ok {
		return
	}

	prediction, err := c.predictionService.Recompute(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.logger, startTime, "recompute prediction", err, "prediction_id", id)
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("prediction recomputed",
		"prediction_id", id,
		"status", prediction.Status,
		"latency_ms", latency.Milliseconds(),
	)
	ctx.JSON(http.StatusOK, prediction)
}

// DeletePrediction handles DELETE /v1/predictions/:id
func (c *PredictionController) DeletePrediction(ctx *gin.Context) {
	startTime := time.Now()
	id, ok := parseIDParam(ctx, c.logger, "id")
	if !ok {
		return
	}

	if err := c.predictionService.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, c.logger, startTime, "delete prediction", err, "prediction_id", id)
		return
	}

	c.logger.Info("prediction deleted",
		"prediction_id", id,
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	ctx.Status(http.StatusNoContent)
}

// GetAnalysis handles GET /v1/predictions/:id/analysis
func (c *PredictionController) GetAnalysis(ctx *gin.Context) {
	startTime := time.Now()
	id, ok := parseIDParam(ctx, c.logger, "id")
	if !ok {
		return
	}

	view, err := c.analysisService.Analysis(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.logger, startTime, "retrieve analysis", err, "prediction_id", id)
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("analysis request completed",
		"prediction_id", id,
		"cached", view.Cached,
		"peers", len(view.Peers),
		"latency_ms", latency.Milliseconds(),
	)
	ctx.JSON(http.StatusOK, view)
}

// GetRisk handles GET /v1/predictions/:id/risk
func (c *PredictionController) GetRisk(ctx *gin.Context) {
	startTime := time.Now()
	id, ok := parseIDParam(ctx, c.logger, "id")
	if !ok {
		return
	}

	view, err := c.analysisService.Risk(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.logger, startTime, "retrieve risk analysis", err, "prediction_id", id)
		return
	}

	latency := time.Since(startTime)
	c.logger.Info("risk request completed",
		"prediction_id", id,
		"risk_category", view.RiskCategory,
		"latency_ms", latency.Milliseconds(),
	)
	ctx.JSON(http.StatusOK, view)
}
