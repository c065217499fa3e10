package controller

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"agropredict/internal/middleware"
)

// Controllers groups every HTTP handler set served by the router
type Controllers struct {
	Predictions  *PredictionController
	Analytics    *AnalyticsController
	Catalog      *CatalogController
	Calculators  *CalculatorController
	Integrations *IntegrationController
}

// NewRouter wires middleware and routes
func NewRouter(c Controllers, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLoggingMiddleware(logger))

	r.GET("/health", c.Integrations.Health)
	r.GET("/metrics", middleware.MetricsHandler)

	v1 := r.Group("/v1")
	{
		predictions := v1.Group("/predictions")
		{
			predictions.POST("", c.Predictions.CreatePrediction)
			predictions.GET("", c.Predictions.ListPredictions)
			predictions.GET("/:id", c.Predictions.GetPrediction)
			predictions.DELETE("/:id", c.Predictions.DeletePrediction)
			predictions.POST("/:id/recompute", c.Predictions.RecomputePrediction)
			predictions.GET("/:id/analysis", c.Predictions.GetAnalysis)
			predictions.GET("/:id/risk", c.Predictions.GetRisk)
		}

		v1.GET("/comparison", c.Analytics.Compare)
		v1.GET("/comparison/export", c.Analytics.ExportComparison)
		v1.GET("/dashboard", c.Analytics.GetDashboard)

		v1.GET("/species", c.Catalog.ListSpecies)
		v1.GET("/species/:id/roi", c.Catalog.ProjectROI)
		v1.GET("/regions", c.Catalog.ListRegions)
		v1.GET("/regions/:id/communes", c.Catalog.ListCommunes)

		calculators := v1.Group("/calculators")
		{
			calculators.POST("/fertilization", c.Calculators.Fertilization)
			calculators.POST("/irrigation", c.Calculators.Irrigation)
			calculators.POST("/roi", c.Calculators.ROI)
			calculators.POST("/seeding", c.Calculators.Seeding)
			calculators.POST("/water-balance", c.Calculators.WaterBalance)
		}

		v1.GET("/assistant", c.Integrations.Ask)
		ms := v1.Group("/ms")
		{
			ms.GET("/ping", c.Integrations.Ping)
			ms.GET("/echo", c.Integrations.Echo)
		}
	}
	return r
}
