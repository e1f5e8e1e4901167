package uiapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/awaistahir/heatpumpiq/internal/catalog"
	"github.com/awaistahir/heatpumpiq/internal/climate"
	"github.com/awaistahir/heatpumpiq/internal/engine"
	"github.com/awaistahir/heatpumpiq/internal/rates"
	"github.com/awaistahir/heatpumpiq/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	store   *store.Store
	catalog *catalog.Catalog
	climate *climate.Provider
	rates   *rates.Provider
}

func NewServer(st *store.Store, cat *catalog.Catalog, cl *climate.Provider, rp *rates.Provider) *Server {
	return &Server{
		store:   st,
		catalog: cat,
		climate: cl,
		rates:   rp,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for local development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/stations", s.handleListStations)
		r.Get("/climate/{key}", s.handleClimate)
		r.Get("/models", s.handleListModels)
		r.Get("/models/{id}", s.handleGetModel)
		r.Get("/rates/{state}", s.handleRate)
		r.Post("/size", s.handleSize)
		r.Post("/zones", s.handleZones)
		r.Post("/coverage", s.handleCoverage)
		r.Post("/bill", s.handleBill)
		r.Get("/projects", s.handleListProjects)
		r.Post("/projects", s.handleSaveProject)
		r.Get("/projects/{id}", s.handleGetProject)
		r.Delete("/projects/{id}", s.handleDeleteProject)
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  "1.0.0",
		"stations": len(s.climate.Stations()),
		"models":   len(s.catalog.List(catalog.Filter{})),
	})
}

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.climate.Stations())
}

// handleClimate resolves {key} as a 5-digit ZIP code or a station id.
func (s *Server) handleClimate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if loc, err := s.climate.ByZip(key); err == nil {
		respondJSON(w, http.StatusOK, loc)
		return
	} else if _, notFound := asNotFound(err); notFound {
		respondEngineError(w, err)
		return
	}

	st, err := s.climate.Station(key)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	profile, _ := s.climate.ProfileFor(st.ID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"station": st,
		"climate": profile,
	})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{Brand: q.Get("brand")}
	if v, err := strconv.ParseFloat(q.Get("min_btu"), 64); err == nil {
		f.MinBTU = v
	}
	if v, err := strconv.ParseFloat(q.Get("max_btu"), 64); err == nil {
		f.MaxBTU = v
	}
	if v, err := strconv.ParseFloat(q.Get("min_hspf2"), 64); err == nil {
		f.MinHSPF2 = v
	}
	respondJSON(w, http.StatusOK, s.catalog.List(f))
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	info, err := s.rates.ByState(r.Context(), chi.URLParam(r, "state"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

type sizeRequest struct {
	SquareFeet         float64  `json:"square_feet"`
	BuildYear          int      `json:"build_year"`
	ZipCode            string   `json:"zip_code,omitempty"`
	StationID          string   `json:"station_id,omitempty"`
	HumidityAdjustment *float64 `json:"humidity_adjustment,omitempty"`
}

type sizeResponse struct {
	Location *climate.Location      `json:"location,omitempty"`
	Load     engine.LoadResult      `json:"load"`
	Models   []engine.HeatPumpModel `json:"recommended_models"`
}

func (s *Server) handleSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loc, profile, err := s.resolveLocation(req.ZipCode, req.StationID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	load, err := engine.Size(engine.BuildingProfile{
		SquareFeet:         req.SquareFeet,
		BuildYear:          req.BuildYear,
		Climate:            profile.ClimateProfile,
		HumidityAdjustment: req.HumidityAdjustment,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	models, err := s.catalog.Recommend(load.HeatingBTU)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sizeResponse{Location: loc, Load: load, Models: models})
}

type zonesRequest struct {
	Zones     []engine.Zone `json:"zones"`
	ZipCode   string        `json:"zip_code,omitempty"`
	StationID string        `json:"station_id,omitempty"`
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	var req zonesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, profile, err := s.resolveLocation(req.ZipCode, req.StationID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	result, err := engine.Aggregate(req.Zones, profile.ClimateProfile)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type coverageRequest struct {
	ModelID      string                `json:"model_id"`
	LoadBTU      float64               `json:"load_btu"`
	ZipCode      string                `json:"zip_code,omitempty"`
	StationID    string                `json:"station_id,omitempty"`
	DesignTempF  *float64              `json:"design_temp_f,omitempty"`
	ExistingHeat engine.BackupHeatType `json:"existing_heat,omitempty"`
}

type coverageResponse struct {
	Model    engine.HeatPumpModel             `json:"model"`
	Coverage engine.CoverageResult            `json:"coverage"`
	Backup   *engine.BackupHeatRecommendation `json:"backup_heat,omitempty"`
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	var req coverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	model, err := s.catalog.Get(req.ModelID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	designTemp, err := s.resolveDesignTemp(req.DesignTempF, req.ZipCode, req.StationID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	coverage, err := engine.Coverage(model, designTemp, req.LoadBTU)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, coverageResponse{
		Model:    model,
		Coverage: coverage,
		Backup:   engine.RecommendBackupHeat(coverage.BackupHeatBTU, req.ExistingHeat),
	})
}

type billRequest struct {
	ModelID          string   `json:"model_id"`
	HeatingBTU       float64  `json:"heating_btu"`
	ZipCode          string   `json:"zip_code,omitempty"`
	StationID        string   `json:"station_id,omitempty"`
	State            string   `json:"state,omitempty"`
	GasPricePerTherm *float64 `json:"gas_price_per_therm,omitempty"`
	Years            int      `json:"years,omitempty"`
}

type billResponse struct {
	Model    engine.HeatPumpModel  `json:"model"`
	Rate     engine.RateInfo       `json:"rate"`
	Costs    engine.CostProjection `json:"costs"`
	Location *climate.Location     `json:"location,omitempty"`
}

func (s *Server) handleBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Years <= 0 {
		req.Years = 10
	}

	model, err := s.catalog.Get(req.ModelID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	loc, profile, err := s.resolveLocation(req.ZipCode, req.StationID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	state := req.State
	if state == "" {
		if loc != nil {
			state = loc.State
		} else {
			respondError(w, http.StatusUnprocessableEntity, "state or location is required for rate lookup")
			return
		}
	}
	rate, err := s.rates.ByState(r.Context(), state)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	rate.GasPricePerTherm = req.GasPricePerTherm

	load := engine.LoadResult{HeatingBTU: req.HeatingBTU}
	costs, err := engine.Project(load, model, profile.ClimateProfile, rate, req.Years)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, billResponse{Model: model, Rate: rate, Costs: costs, Location: loc})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	var p store.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.store.SaveProject(&p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p.ID = id
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(chi.URLParam(r, "id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteProject(id); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

// resolveLocation turns a ZIP code or station id into a climate profile.
// Exactly one of the two must be set.
func (s *Server) resolveLocation(zip, stationID string) (*climate.Location, climate.ClimateResult, error) {
	switch {
	case zip != "" && stationID != "":
		return nil, climate.ClimateResult{}, &engine.ValidationError{Field: "location",
			Reason: "set zip_code or station_id, not both"}
	case zip != "":
		loc, err := s.climate.ByZip(zip)
		if err != nil {
			return nil, climate.ClimateResult{}, err
		}
		return &loc, loc.Profile, nil
	case stationID != "":
		profile, err := s.climate.ProfileFor(stationID)
		if err != nil {
			return nil, climate.ClimateResult{}, err
		}
		return nil, profile, nil
	default:
		return nil, climate.ClimateResult{}, &engine.ValidationError{Field: "location",
			Reason: "zip_code or station_id is required"}
	}
}

// resolveDesignTemp prefers an explicit design temperature over a location
// lookup.
func (s *Server) resolveDesignTemp(explicit *float64, zip, stationID string) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	_, profile, err := s.resolveLocation(zip, stationID)
	if err != nil {
		return 0, err
	}
	return profile.DesignTempF, nil
}

// respondEngineError maps the typed error taxonomy onto HTTP statuses:
// invalid input 422, unknown key 404, broken invariant 500.
func respondEngineError(w http.ResponseWriter, err error) {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}
	if _, ok := asNotFound(err); ok {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func asNotFound(err error) (*engine.NotFoundError, bool) {
	var nf *engine.NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
