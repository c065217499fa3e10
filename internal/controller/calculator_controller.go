package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agropredict/internal/calculator"
)

// CalculatorController exposes the agronomic calculators
type CalculatorController struct {
	logger *slog.Logger
}

// NewCalculatorController creates a new calculator controller
func NewCalculatorController(logger *slog.Logger) *CalculatorController {
	return &CalculatorController{logger: logger}
}

// calculate binds T, runs fn and answers its result
func calculate[T, R any](c *CalculatorController, ctx *gin.Context, name string, fn func(T) (R, error)) {
	startTime := time.Now()
	var in T
	if !bindJSON(ctx, c.logger, &in) {
		return
	}
	out, err := fn(in)
	if err != nil {
		respondError(ctx, c.logger, startTime, "run "+name+" calculator", err, "calculator", name)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Fertilization handles POST /v1/calculators/fertilization
func (c *CalculatorController) Fertilization(ctx *gin.Context) {
	calculate(c, ctx, "fertilization", calculator.Fertilization)
}

// Irrigation handles POST /v1/calculators/irrigation
func (c *CalculatorController) Irrigation(ctx *gin.Context) {
	calculate(c, ctx, "irrigation", calculator.Irrigation)
}

// ROI handles POST /v1/calculators/roi
func (c *CalculatorController) ROI(ctx *gin.Context) {
	calculate(c, ctx, "roi", calculator.SimpleROI)
}

// Seeding handles POST /v1/calculators/seeding
func (c *CalculatorController) Seeding(ctx *gin.Context) {
	calculate(c, ctx, "seeding", calculator.Seeding)
}

// WaterBalance handles POST /v1/calculators/water-balance
func (c *CalculatorController) WaterBalance(ctx *gin.Context) {
	calculate(c, ctx, "water balance", func(in calculator.WaterBalanceInput) (*calculator.WaterBalanceResult, error) {
		return calculator.WaterBalance(in), nil
	})
}
