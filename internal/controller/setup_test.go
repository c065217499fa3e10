package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"agropredict/internal/analytics"
	"agropredict/internal/estimator"
	"agropredict/internal/model"
	"agropredict/internal/repository"
	"agropredict/internal/service"
)

// mockPredictionService is a mock implementation of PredictionService for testing
type mockPredictionService struct {
	prediction *model.Prediction
	page       *service.PredictionPage
	estimate   *estimator.Estimate
	err        error

	lastRequest estimator.Request
	lastFilter  repository.ListFilter
	lastID      uint
}

func (m *mockPredictionService) Create(ctx context.Context, req estimator.Request) (*model.Prediction, error) {
	m.lastRequest = req
	return m.prediction, m.err
}

func (m *mockPredictionService) Get(ctx context.Context, id uint) (*model.Prediction, error) {
	m.lastID = id
	return m.prediction, m.err
}

func (m *mockPredictionService) List(ctx context.Context, filter repository.ListFilter) (*service.PredictionPage, error) {
	m.lastFilter = filter
	return m.page, m.err
}

func (m *mockPredictionService) Recompute(ctx context.Context, id uint) (*model.Prediction, error) {
	m.lastID = id
	return m.prediction, m.err
}

func (m *mockPredictionService) Delete(ctx context.Context, id uint) error {
	m.lastID = id
	return m.err
}

func (m *mockPredictionService) Estimate(ctx context.Context, req estimator.Request) (*estimator.Estimate, error) {
	m.lastRequest = req
	return m.estimate, m.err
}

// mockAnalysisService is a mock implementation of AnalysisService for testing
type mockAnalysisService struct {
	analysis *service.AnalysisView
	risk     *service.RiskView
	err      error
}

func (m *mockAnalysisService) Analysis(ctx context.Context, predictionID uint) (*service.AnalysisView, error) {
	return m.analysis, m.err
}

func (m *mockAnalysisService) Risk(ctx context.Context, predictionID uint) (*service.RiskView, error) {
	return m.risk, m.err
}

// mockDashboardService is a mock implementation of DashboardService for testing
type mockDashboardService struct {
	dashboard *service.Dashboard
	err       error
}

func (m *mockDashboardService) GetDashboard(ctx context.Context) (*service.Dashboard, error) {
	return m.dashboard, m.err
}

// mockComparisonService is a mock implementation of ComparisonService for testing
type mockComparisonService struct {
	items   []analytics.ComparisonItem
	content string
	err     error
	lastIDs []uint
}

func (m *mockComparisonService) Compare(ctx context.Context, ids []uint) ([]analytics.ComparisonItem, error) {
	m.lastIDs = ids
	return m.items, m.err
}

func (m *mockComparisonService) Export(ctx context.Context, ids []uint, w io.Writer) error {
	m.lastIDs = ids
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.content)
	return err
}

// mockCatalogService is a mock implementation of CatalogService for testing
type mockCatalogService struct {
	species    []model.Species
	regions    []model.Region
	communes   []model.Commune
	projection *service.ROIProjection
	err        error

	lastHectares float64
	lastYears    int
}

func (m *mockCatalogService) Species(ctx context.Context) []model.Species { return m.species }

func (m *mockCatalogService) Regions(ctx context.Context) []model.Region { return m.regions }

func (m *mockCatalogService) Communes(ctx context.Context, regionID uint) ([]model.Commune, error) {
	return m.communes, m.err
}

func (m *mockCatalogService) ProjectROI(ctx context.Context, speciesID uint, hectares float64, years int) (*service.ROIProjection, error) {
	m.lastHectares = hectares
	m.lastYears = years
	return m.projection, m.err
}

type mockAssistant struct {
	answer string
	err    error
}

func (m *mockAssistant) Ask(ctx context.Context, question string) (string, error) {
	return m.answer, m.err
}

type mockMicroservice struct {
	body    map[string]any
	err     error
	lastMsg string
}

func (m *mockMicroservice) Ping(ctx context.Context) (map[string]any, error) {
	return m.body, m.err
}

func (m *mockMicroservice) Echo(ctx context.Context, msg string) (map[string]any, error) {
	m.lastMsg = msg
	return m.body, m.err
}

type mockPinger struct {
	err error
}

func (m mockPinger) PingContext(ctx context.Context) error { return m.err }

// mocks holds every service double behind the router
type mocks struct {
	predictions  *mockPredictionService
	analysis     *mockAnalysisService
	dashboard    *mockDashboardService
	comparison   *mockComparisonService
	catalog      *mockCatalogService
	assistant    *mockAssistant
	microservice *mockMicroservice
	db           Pinger
}

func newMocks() *mocks {
	return &mocks{
		predictions:  &mockPredictionService{},
		analysis:     &mockAnalysisService{},
		dashboard:    &mockDashboardService{},
		comparison:   &mockComparisonService{},
		catalog:      &mockCatalogService{},
		assistant:    &mockAssistant{},
		microservice: &mockMicroservice{},
	}
}

func setupRouter(m *mocks) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Controllers{
		Predictions:  NewPredictionController(m.predictions, m.analysis, logger),
		Analytics:    NewAnalyticsController(m.dashboard, m.comparison, logger),
		Catalog:      NewCatalogController(m.catalog, logger),
		Calculators:  NewCalculatorController(logger),
		Integrations: NewIntegrationController(m.assistant, m.microservice, m.db, logger),
	}, logger)
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var errDatabase = errors.New("database is gone")
