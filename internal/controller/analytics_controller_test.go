package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"agropredict/internal/analytics"
	"agropredict/internal/external"
	"agropredict/internal/repository"
	"agropredict/internal/service"
)

func TestGetDashboard_Success(t *testing.T) {
	m := newMocks()
	m.dashboard.dashboard = &service.Dashboard{
		Totals: service.Totals{Total: 4, Completed: 3, CompletionRate: 75.0},
		TopSpecies: []analytics.SpeciesStat{
			{SpeciesID: 1, SpeciesCode: "palto", Count: 3},
		},
		Climate: &external.Climate{Commune: "Santiago", Temperature: 18.5},
	}
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/dashboard", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	var response service.Dashboard
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Totals.CompletionRate != 75.0 {
		t.Errorf("Expected completion rate 75.0, got %v", response.Totals.CompletionRate)
	}

	if len(response.TopSpecies) != 1 || response.TopSpecies[0].SpeciesCode != "palto" {
		t.Errorf("Expected palto as top species, got %v", response.TopSpecies)
	}

	if response.Climate == nil || response.Climate.Commune != "Santiago" {
		t.Errorf("Expected Santiago climate, got %v", response.Climate)
	}
}

func TestGetDashboard_ServiceError(t *testing.T) {
	m := newMocks()
	m.dashboard.err = errDatabase
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/dashboard", "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var errorResponse map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &errorResponse); err != nil {
		t.Fatalf("Failed to unmarshal error response: %v", err)
	}

	if errorResponse["error"] != "Internal server error" {
		t.Errorf("Expected error 'Internal server error', got %v", errorResponse["error"])
	}
	if errorResponse["message"] != "Failed to retrieve dashboard" {
		t.Errorf("Expected message 'Failed to retrieve dashboard', got %v", errorResponse["message"])
	}
}

func TestCompare_ParsesIDs(t *testing.T) {
	m := newMocks()
	m.comparison.items = []analytics.ComparisonItem{
		{Record: analytics.Record{ID: 3}, ROIPerHa: 10},
		{Record: analytics.Record{ID: 1}, ROIPerHa: 5},
		{Record: analytics.Record{ID: 2}, ROIPerHa: 1},
	}
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/comparison?ids=3,1&ids=2", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	want := []uint{3, 1, 2}
	if fmt.Sprint(m.comparison.lastIDs) != fmt.Sprint(want) {
		t.Errorf("Expected ids %v, got %v", want, m.comparison.lastIDs)
	}

	var response struct {
		Items []analytics.ComparisonItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Items) != 3 {
		t.Errorf("Expected 3 items, got %d", len(response.Items))
	}
}

func TestCompare_WithoutIDs(t *testing.T) {
	m := newMocks()
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/comparison", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if len(m.comparison.lastIDs) != 0 {
		t.Errorf("Expected no ids, got %v", m.comparison.lastIDs)
	}
}

func TestCompare_InvalidIDs(t *testing.T) {
	m := newMocks()
	router := setupRouter(m)

	for _, query := range []string{"ids=a,b", "ids=1,-2", "ids=0,1"} {
		w := perform(router, "GET", "/v1/comparison?"+query, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status code %d, got %d", query, http.StatusBadRequest, w.Code)
		}
	}
}

func TestCompare_InvalidSize(t *testing.T) {
	m := newMocks()
	m.comparison.err = fmt.Errorf("compare 1 predictions: %w", analytics.ErrComparisonSize)
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/comparison?ids=1", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, w.Code)
	}

	var errorResponse map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &errorResponse); err != nil {
		t.Fatalf("Failed to unmarshal error response: %v", err)
	}
	if errorResponse["error"] != "Invalid comparison" {
		t.Errorf("Expected error 'Invalid comparison', got %v", errorResponse["error"])
	}
}

func TestExportComparison_Workbook(t *testing.T) {
	m := newMocks()
	m.comparison.content = "PK-workbook"
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/comparison/export?ids=1,2", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Expected content type %s, got %s", xlsxContentType, ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="comparison.xlsx"` {
		t.Errorf("Unexpected content disposition %s", cd)
	}
	if w.Body.String() != "PK-workbook" {
		t.Errorf("Unexpected body %q", w.Body.String())
	}
}

func TestExportComparison_MissingPrediction(t *testing.T) {
	m := newMocks()
	m.comparison.err = fmt.Errorf("prediction 9 is missing or not completed: %w", repository.ErrNotFound)
	router := setupRouter(m)

	w := perform(router, "GET", "/v1/comparison/export?ids=1,9", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, w.Code)
	}
}
