package uiapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/awaistahir/heatpumpiq/internal/catalog"
	"github.com/awaistahir/heatpumpiq/internal/climate"
	"github.com/awaistahir/heatpumpiq/internal/engine"
	"github.com/awaistahir/heatpumpiq/internal/rates"
	"github.com/awaistahir/heatpumpiq/internal/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	cl, err := climate.Load()
	if err != nil {
		t.Fatalf("loading climate tables: %v", err)
	}
	rp, err := rates.New("", nil)
	if err != nil {
		t.Fatalf("creating rate provider: %v", err)
	}

	return NewServer(st, cat, cl, rp).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field %v, want ok", body["status"])
	}
}

func TestSizeEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/size", map[string]any{
		"square_feet": 1800,
		"build_year":  1985,
		"zip_code":    "55401",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Location *climate.Location `json:"location"`
		Load     engine.LoadResult `json:"load"`
		Models   []json.RawMessage `json:"recommended_models"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Load.HeatingBTU <= 0 {
		t.Error("expected a positive heating load")
	}
	if body.Location == nil || body.Location.Station.ID != "minneapolis-mn" {
		t.Errorf("unexpected location: %+v", body.Location)
	}
	if len(body.Models) == 0 {
		t.Error("expected model recommendations")
	}
}

func TestSizeEndpointErrors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		code int
	}{
		{"missing location", map[string]any{"square_feet": 1500, "build_year": 2000}, http.StatusUnprocessableEntity},
		{"unknown zip", map[string]any{"square_feet": 1500, "build_year": 2000, "zip_code": "00000"}, http.StatusNotFound},
		{"bad square feet", map[string]any{"square_feet": 50, "build_year": 2000, "zip_code": "55401"}, http.StatusUnprocessableEntity},
		{"both zip and station", map[string]any{"square_feet": 1500, "build_year": 2000,
			"zip_code": "55401", "station_id": "chicago-il"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/size", tt.body)
			if rec.Code != tt.code {
				t.Errorf("status %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestZonesEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/zones", map[string]any{
		"station_id": "chicago-il",
		"zones": []map[string]any{
			{"name": "living", "area_sqft": 800, "exposure": "south", "window_fraction": 0.25,
				"occupancy": "high", "air_sealing": "average"},
			{"name": "bedroom", "area_sqft": 400, "exposure": "north", "window_fraction": 0.10,
				"occupancy": "low", "air_sealing": "tight"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result engine.AggregateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.PerZone) != 2 {
		t.Errorf("per-zone results %d, want 2", len(result.PerZone))
	}
	if result.DiversityFactor != 0.95 {
		t.Errorf("diversity %.2f, want 0.95 for two zones", result.DiversityFactor)
	}
}

func TestCoverageEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/coverage", map[string]any{
		"model_id":   "mitsubishi-mxz-4c36na",
		"load_btu":   50000,
		"station_id": "minneapolis-mn",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body coverageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Coverage.CoverageRatio >= 1 {
		t.Errorf("a 36k unit should not cover 50k BTU at -11°F, ratio %.2f", body.Coverage.CoverageRatio)
	}
	if body.Backup == nil {
		t.Error("expected a backup heat recommendation for the shortfall")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/coverage", map[string]any{
		"model_id": "no-such-model", "load_btu": 30000, "station_id": "chicago-il",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown model: status %d, want 404", rec.Code)
	}
}

func TestBillEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/bill", map[string]any{
		"model_id":    "mitsubishi-mxz-4c36na",
		"heating_btu": 40000,
		"zip_code":    "60601",
		"years":       5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body billResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Rate.Source != rates.SourceFallback {
		t.Errorf("rate source %s, want %s without an API key", body.Rate.Source, rates.SourceFallback)
	}
	if body.Rate.USDPerKWh != 0.143 {
		t.Errorf("IL rate %.3f, want 0.143", body.Rate.USDPerKWh)
	}
	if len(body.Costs.Years) != 5 {
		t.Errorf("projection years %d, want 5", len(body.Costs.Years))
	}
}

func TestProjectLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/projects", map[string]any{
		"name":     "Maple St retrofit",
		"zip_code": "55401",
		"building": map[string]any{
			"square_feet": 1800,
			"build_year":  1978,
			"climate":     map[string]any{"climate_zone": "6A", "design_temp_f": -11},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var created store.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an assigned project id")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/projects/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/projects/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/projects/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", rec.Code)
	}
}
