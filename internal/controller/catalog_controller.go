package controller

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agropredict/internal/service"
)

// CatalogController handles species and geography HTTP requests
type CatalogController struct {
	catalogService service.CatalogService
	logger         *slog.Logger
}

// NewCatalogController creates a new catalog controller
func NewCatalogController(catalogService service.CatalogService, logger *slog.Logger) *CatalogController {
	return &CatalogController{catalogService: catalogService, logger: logger}
}

// ListSpecies handles GET /v1/species
func (c *CatalogController) ListSpecies(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"items": c.catalogService.Species(ctx.Request.Context())})
}

// ListRegions handles GET /v1/regions
func (c *CatalogController) ListRegions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"items": c.catalogService.Regions(ctx.Request.Context())})
}

// ListCommunes handles GET /v1/regions/:id/communes
func (c *CatalogController) ListCommunes(ctx *gin.Context) {
	startTime := time.Now()
	id, ok := parseIDParam(ctx, c.logger, "id")
	if !ok {
		return
	}

	communes, err := c.catalogService.Communes(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.logger, startTime, "list communes", err, "region_id", id)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": communes})
}

// ProjectROI handles GET /v1/species/:id/roi
// Query parameters:
//   - hectares (optional): planted area, default 1
//   - years (optional): projection horizon, default 5
func (c *CatalogController) ProjectROI(ctx *gin.Context) {
	startTime := time.Now()
	id, ok := parseIDParam(ctx, c.logger, "id")
	if !ok {
		return
	}

	hectares, err := strconv.ParseFloat(ctx.DefaultQuery("hectares", "1"), 64)
	if err != nil {
		c.logger.Warn("invalid hectares", "hectares", ctx.Query("hectares"), "error", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid hectares",
			"message": "hectares must be a number",
		})
		return
	}
	years, err := strconv.Atoi(ctx.DefaultQuery("years", "0"))
	if err != nil {
		c.logger.Warn("invalid years", "years", ctx.Query("years"), "error", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid years",
			"message": "years must be an integer",
		})
		return
	}

	projection, err := c.catalogService.ProjectROI(ctx.Request.Context(), id, hectares, years)
	if err != nil {
		respondError(ctx, c.logger, startTime, "project ROI", err, "species_id", id)
		return
	}
	ctx.JSON(http.StatusOK, projection)
}
