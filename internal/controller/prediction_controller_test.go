package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agropredict/internal/estimator"
	"agropredict/internal/model"
	"agropredict/internal/repository"
	"agropredict/internal/service"
)

const validBody = `{"species_id":1,"commune_id":2,"hectares":2.5,"tree_age":8,"density":300,
"irrigation":"drip","soil":"loam","fertilization":"mixed"}`

func TestCreatePrediction(t *testing.T) {
	m := newMocks()
	roi := 42.0
	m.predictions.prediction = &model.Prediction{ID: 7, SpeciesID: 1, Status: model.StatusCompleted, ROI: &roi}
	router := setupRouter(m)

	w := perform(router, "POST", "/v1/predictions", validBody)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, estimator.Request{
		SpeciesID:     1,
		CommuneID:     2,
		Hectares:      2.5,
		TreeAge:       8,
		Density:       300,
		Irrigation:    model.IrrigationDrip,
		Soil:          model.SoilLoam,
		Fertilization: model.FertilizationMixed,
	}, m.predictions.lastRequest)

	var body model.Prediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint(7), body.ID)
	assert.Equal(t, model.StatusCompleted, body.Status)
}

func TestCreatePredictionRejectsMalformedBody(t *testing.T) {
	router := setupRouter(newMocks())
	w := perform(router, "POST", "/v1/predictions", `{"hectares": "two"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePredictionValidationError(t *testing.T) {
	m := newMocks()
	verr := &estimator.ValidationError{}
	verr.Add("hectares", "hectares out of range", 0.05, "> 0.1")
	verr.Add("species_id", "unknown species", 99, "catalog species id")
	m.predictions.err = verr
	router := setupRouter(m)

	w := perform(router, "POST", "/v1/predictions", validBody)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string                 `json:"error"`
		Fields []estimator.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Error)
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "hectares", body.Fields[0].Field)
	assert.Equal(t, "species_id", body.Fields[1].Field)
}

func TestListPredictionsPassesFilters(t *testing.T) {
	m := newMocks()
	m.predictions.page = &service.PredictionPage{Total: 11, Page: 2, PageSize: 10, Pages: 2}
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/predictions?species_id=2&region_id=3&status=completed&page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.ListFilter{
		SpeciesID: 2,
		RegionID:  3,
		Status:    model.StatusCompleted,
		Page:      2,
	}, m.predictions.lastFilter)

	var page service.PredictionPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(11), page.Total)
}

func TestListPredictionsRejectsBadQuery(t *testing.T) {
	router := setupRouter(newMocks())
	for _, query := range []string{"page=0", "page=x", "species_id=abc", "region_id=-1"} {
		w := perform(router, "GET", "/v1/predictions?"+query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestGetPrediction(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{name: "found", path: "/v1/predictions/3", wantStatus: http.StatusOK},
		{name: "invalid id", path: "/v1/predictions/abc", wantStatus: http.StatusBadRequest},
		{name: "zero id", path: "/v1/predictions/0", wantStatus: http.StatusBadRequest},
		{name: "missing", path: "/v1/predictions/3", err: repository.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "storage failure", path: "/v1/predictions/3", err: errDatabase, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.predictions.prediction = &model.Prediction{ID: 3}
			m.predictions.err = tt.err
			w := perform(setupRouter(m), "GET", tt.path, "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRecomputeAndDeletePrediction(t *testing.T) {
	m := newMocks()
	m.predictions.prediction = &model.Prediction{ID: 5, Status: model.StatusError, FailureMessage: "species has no base yield"}
	router := setupRouter(m)

	w := perform(router, "POST", "/v1/predictions/5/recompute", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(5), m.predictions.lastID)
	assert.Contains(t, w.Body.String(), "species has no base yield")

	w = perform(router, "DELETE", "/v1/predictions/5", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	m.predictions.err = fmt.Errorf("delete: %w", repository.ErrNotFound)
	w = perform(router, "DELETE", "/v1/predictions/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAnalysis(t *testing.T) {
	m := newMocks()
	m.analysis.analysis = &service.AnalysisView{
		PredictionID: 4,
		Analysis:     model.Analysis{PredictionID: 4, RiskCategory: estimator.RiskLow},
	}
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/predictions/4/analysis", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view service.AnalysisView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, estimator.RiskLow, view.Analysis.RiskCategory)

	m.analysis.err = fmt.Errorf("prediction 4 is pending: %w", service.ErrNotCompleted)
	w = perform(router, "GET", "/v1/predictions/4/analysis", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetRisk(t *testing.T) {
	m := newMocks()
	roi := 12.0
	m.analysis.risk = &service.RiskView{
		PredictionID: 4,
		ExpectedROI:  &roi,
		RiskCategory: estimator.RiskHigh,
		Payback:      estimator.Payback{State: estimator.PaybackRecovered, Years: 3.2},
		PaybackText:  "3.2 years",
	}
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/predictions/4/risk", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view service.RiskView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "3.2 years", view.PaybackText)
	assert.Equal(t, estimator.RiskHigh, view.RiskCategory)
}
