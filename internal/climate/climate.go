// Package climate resolves a US location to its heating/cooling climate:
// design temperatures, degree days, and ASHRAE zone. Station and ZIP
// centroid tables ship with the binary; lookups never touch the network.
package climate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/awaistahir/heatpumpiq/internal/engine"
)

//go:embed stations.json
var stationsJSON []byte

//go:embed zips.json
var zipsJSON []byte

// approximateDistanceMiles is the station distance beyond which a result
// is flagged as approximate.
const approximateDistanceMiles = 30.0

// earthRadiusMiles for the great-circle distance between coordinates.
const earthRadiusMiles = 3959.0

// Station is one bundled weather station with its climate record.
type Station struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	State              string      `json:"state"`
	Latitude           float64     `json:"latitude"`
	Longitude          float64     `json:"longitude"`
	ClimateZone        string      `json:"climate_zone"`
	HeatingDesignTempF float64     `json:"heating_design_temp_f"`
	CoolingDesignTempF float64     `json:"cooling_design_temp_f"`
	MonthlyHDD         [12]float64 `json:"monthly_hdd"`
	MonthlyCDD         [12]float64 `json:"monthly_cdd"`
}

// zipCentroid is one bundled ZIP code centroid.
type zipCentroid struct {
	Zip       string  `json:"zip"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a resolved climate lookup. Approximate is set when the
// nearest station sits more than 30 miles from the query point.
type Location struct {
	Station       Station       `json:"station"`
	City          string        `json:"city,omitempty"`
	State         string        `json:"state"`
	DistanceMiles float64       `json:"distance_miles"`
	Approximate   bool          `json:"approximate"`
	Profile       ClimateResult `json:"climate"`
}

// ClimateResult is the engine-facing climate payload for a location.
type ClimateResult struct {
	engine.ClimateProfile
	CoolingDesignTempF float64 `json:"cooling_design_temp_f"`
	AnnualHDD          float64 `json:"annual_hdd"`
	AnnualCDD          float64 `json:"annual_cdd"`
}

// Provider answers climate lookups against the bundled tables.
type Provider struct {
	stations []Station
	byID     map[string]Station
	zips     map[string]zipCentroid
}

// Load parses and validates the embedded tables.
func Load() (*Provider, error) {
	return loadFrom(stationsJSON, zipsJSON)
}

func loadFrom(stationData, zipData []byte) (*Provider, error) {
	var stations []Station
	if err := json.Unmarshal(stationData, &stations); err != nil {
		return nil, fmt.Errorf("parsing station data: %w", err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("station data is empty")
	}

	byID := make(map[string]Station, len(stations))
	for _, s := range stations {
		if s.ID == "" {
			return nil, fmt.Errorf("station %q has no id", s.Name)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate station id %q", s.ID)
		}
		if s.HeatingDesignTempF >= s.CoolingDesignTempF {
			return nil, fmt.Errorf("station %q: heating design temp %.1f not below cooling design temp %.1f",
				s.ID, s.HeatingDesignTempF, s.CoolingDesignTempF)
		}
		byID[s.ID] = s
	}

	var centroids []zipCentroid
	if err := json.Unmarshal(zipData, &centroids); err != nil {
		return nil, fmt.Errorf("parsing ZIP data: %w", err)
	}
	zips := make(map[string]zipCentroid, len(centroids))
	for _, z := range centroids {
		zips[z.Zip] = z
	}

	return &Provider{stations: stations, byID: byID, zips: zips}, nil
}

// Stations returns the bundled station list.
func (p *Provider) Stations() []Station {
	return p.stations
}

// Station returns the station with the given id.
func (p *Provider) Station(id string) (Station, error) {
	s, ok := p.byID[id]
	if !ok {
		return Station{}, &engine.NotFoundError{Kind: "weather station", Key: id}
	}
	return s, nil
}

// ByZip resolves a 5-digit ZIP code to its nearest station.
func (p *Provider) ByZip(zip string) (Location, error) {
	if len(zip) != 5 || strings.TrimFunc(zip, isDigit) != "" {
		return Location{}, &engine.ValidationError{Field: "zip_code",
			Reason: fmt.Sprintf("%q is not a 5-digit ZIP code", zip)}
	}
	z, ok := p.zips[zip]
	if !ok {
		return Location{}, &engine.NotFoundError{Kind: "ZIP code", Key: zip}
	}
	loc := p.Nearest(z.Latitude, z.Longitude)
	loc.City = z.City
	loc.State = z.State
	return loc, nil
}

// Nearest returns the closest bundled station to a coordinate.
func (p *Provider) Nearest(lat, lon float64) Location {
	best := p.stations[0]
	bestDist := haversineMiles(lat, lon, best.Latitude, best.Longitude)
	for _, s := range p.stations[1:] {
		if d := haversineMiles(lat, lon, s.Latitude, s.Longitude); d < bestDist {
			best, bestDist = s, d
		}
	}
	return Location{
		Station:       best,
		State:         best.State,
		DistanceMiles: bestDist,
		Approximate:   bestDist > approximateDistanceMiles,
		Profile:       profileFor(best),
	}
}

// ProfileFor builds the engine climate profile for a station id.
func (p *Provider) ProfileFor(id string) (ClimateResult, error) {
	s, err := p.Station(id)
	if err != nil {
		return ClimateResult{}, err
	}
	return profileFor(s), nil
}

func profileFor(s Station) ClimateResult {
	var annualHDD, annualCDD float64
	for i := 0; i < 12; i++ {
		annualHDD += s.MonthlyHDD[i]
		annualCDD += s.MonthlyCDD[i]
	}
	return ClimateResult{
		ClimateProfile: engine.ClimateProfile{
			Zone:        engine.ClimateZone(s.ClimateZone),
			DesignTempF: s.HeatingDesignTempF,
			MonthlyHDD:  s.MonthlyHDD,
			MonthlyCDD:  s.MonthlyCDD,
		},
		CoolingDesignTempF: s.CoolingDesignTempF,
		AnnualHDD:          annualHDD,
		AnnualCDD:          annualCDD,
	}
}

// haversineMiles is the great-circle distance between two coordinates.
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
