// Package catalog holds the bundled heat-pump model list: rated capacity,
// HSPF2, price, and the capacity/COP performance curves used by the
// coverage and cost calculators. Data ships with the binary; no network
// access is involved.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/awaistahir/heatpumpiq/internal/engine"
)

//go:embed models.json
var modelsJSON []byte

// recommendTolerance brackets the sizing target for Recommend.
const recommendTolerance = 0.20

// maxRecommendations caps the Recommend result list.
const maxRecommendations = 3

// Filter narrows List results. Zero values mean no constraint.
type Filter struct {
	Brand    string
	MinBTU   float64
	MaxBTU   float64
	MinHSPF2 float64
}

// Catalog is the immutable, validated model list.
type Catalog struct {
	models []engine.HeatPumpModel
	byID   map[string]engine.HeatPumpModel
}

// Load parses and validates the embedded model list. Every model's curves
// must pass engine validation; a bad entry fails the whole load so a
// defective data file cannot half-ship.
func Load() (*Catalog, error) {
	return loadFrom(modelsJSON)
}

func loadFrom(data []byte) (*Catalog, error) {
	var models []engine.HeatPumpModel
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, fmt.Errorf("parsing model data: %w", err)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("model data is empty")
	}

	byID := make(map[string]engine.HeatPumpModel, len(models))
	for _, m := range models {
		if m.ID == "" {
			return nil, fmt.Errorf("model %q/%q has no id", m.Brand, m.Model)
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q", m.ID)
		}
		if err := engine.ValidateModel(m); err != nil {
			return nil, err
		}
		byID[m.ID] = m
	}

	return &Catalog{models: models, byID: byID}, nil
}

// Get returns the model with the given id.
func (c *Catalog) Get(id string) (engine.HeatPumpModel, error) {
	m, ok := c.byID[id]
	if !ok {
		return engine.HeatPumpModel{}, &engine.NotFoundError{Kind: "heat pump model", Key: id}
	}
	return m, nil
}

// List returns models matching the filter, in catalog order.
func (c *Catalog) List(f Filter) []engine.HeatPumpModel {
	out := make([]engine.HeatPumpModel, 0, len(c.models))
	for _, m := range c.models {
		if f.Brand != "" && !strings.EqualFold(m.Brand, f.Brand) {
			continue
		}
		if f.MinBTU > 0 && m.RatedCapacityBTU < f.MinBTU {
			continue
		}
		if f.MaxBTU > 0 && m.RatedCapacityBTU > f.MaxBTU {
			continue
		}
		if f.MinHSPF2 > 0 && m.RatedHSPF2 < f.MinHSPF2 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Brands returns the distinct brands in the catalog, sorted.
func (c *Catalog) Brands() []string {
	seen := map[string]bool{}
	var brands []string
	for _, m := range c.models {
		if !seen[m.Brand] {
			seen[m.Brand] = true
			brands = append(brands, m.Brand)
		}
	}
	sort.Strings(brands)
	return brands
}

// Recommend returns up to three models whose rated capacity falls within
// 20% of the sizing target, most efficient first.
func (c *Catalog) Recommend(targetBTU float64) ([]engine.HeatPumpModel, error) {
	if targetBTU <= 0 {
		return nil, &engine.ValidationError{Field: "target_btu",
			Reason: fmt.Sprintf("%.0f must be positive", targetBTU)}
	}

	lo := targetBTU * (1 - recommendTolerance)
	hi := targetBTU * (1 + recommendTolerance)

	var matches []engine.HeatPumpModel
	for _, m := range c.models {
		if m.RatedCapacityBTU >= lo && m.RatedCapacityBTU <= hi {
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RatedHSPF2 > matches[j].RatedHSPF2
	})
	if len(matches) > maxRecommendations {
		matches = matches[:maxRecommendations]
	}
	return matches, nil
}
