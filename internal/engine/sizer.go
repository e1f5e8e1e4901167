package engine

import "fmt"

// Supported input domain for single-zone sizing.
const (
	MinSquareFeet = 300.0
	MaxSquareFeet = 10000.0
	MinBuildYear  = 1900
	// ReferenceYear anchors the build-year-to-insulation mapping so results
	// are stable across calendar years.
	ReferenceYear = 2025
)

// InsulationCategory buckets a building by envelope quality inferred from
// build year.
type InsulationCategory string

const (
	InsulationOld    InsulationCategory = "old"    // built more than 40 years before ReferenceYear
	InsulationMedium InsulationCategory = "medium" // 20-40 years
	InsulationNew    InsulationCategory = "new"    // under 20 years
)

type coefficientSet struct {
	Old    float64
	Medium float64
	New    float64
}

func (c coefficientSet) forCategory(cat InsulationCategory) float64 {
	switch cat {
	case InsulationOld:
		return c.Old
	case InsulationMedium:
		return c.Medium
	default:
		return c.New
	}
}

// heatingCoefficients maps climate zone to base heating BTU/sqft by
// insulation category. Values are empirical sizing constants, calibrated
// so coefficients are non-decreasing along ZonesBySeverity and old >=
// medium >= new within a zone. Calibrate against manufacturer/ASHRAE
// references before trusting them past +/-15%.
var heatingCoefficients = map[ClimateZone]coefficientSet{
	Zone1A: {10, 9, 8},
	Zone1B: {10, 9, 8},
	Zone2A: {16, 15, 14},
	Zone2B: {16, 15, 14},
	Zone3A: {18, 16, 15},
	Zone3B: {18, 16, 15},
	Zone3C: {18, 16, 15},
	Zone4A: {20, 18, 16},
	Zone4B: {20, 18, 16},
	Zone4C: {20, 18, 16},
	Zone5A: {22, 20, 18},
	Zone5B: {22, 20, 18},
	Zone6A: {24, 22, 20},
	Zone6B: {24, 22, 20},
	Zone7:  {26, 24, 22},
	Zone8:  {28, 26, 24},
}

// coolingCoefficients maps climate zone to base cooling BTU/sqft. Hot
// zones dominate here, so this table peaks at the mild end of the
// severity order.
var coolingCoefficients = map[ClimateZone]coefficientSet{
	Zone1A: {35, 30, 25},
	Zone1B: {35, 30, 28},
	Zone2A: {33, 28, 24},
	Zone2B: {30, 25, 20},
	Zone3A: {28, 24, 20},
	Zone3B: {30, 26, 22},
	Zone3C: {22, 19, 16},
	Zone4A: {24, 20, 17},
	Zone4B: {26, 22, 18},
	Zone4C: {18, 16, 14},
	Zone5A: {20, 17, 14},
	Zone5B: {22, 18, 15},
	Zone6A: {16, 14, 12},
	Zone6B: {16, 14, 12},
	Zone7:  {12, 10, 9},
	Zone8:  {10, 9, 8},
}

// sizeFactorCurve is the surface-area-to-volume correction: small
// footprints carry proportionally more envelope per unit volume. The x
// axis is floor area in sqft, not temperature; evaluated with the shared
// curve interpolation so the factor varies smoothly and sized load stays
// strictly increasing in floor area.
var sizeFactorCurve = []CurvePoint{
	{TempF: 300, Value: 1.25},
	{TempF: 800, Value: 1.20},
	{TempF: 1200, Value: 1.10},
	{TempF: 2000, Value: 1.00},
	{TempF: 3500, Value: 0.95},
	{TempF: 10000, Value: 0.90},
}

// Humidity adjustment bounds for dehumidification latent load.
const (
	minHumidityAdjustment = 0.10
	maxHumidityAdjustment = 0.15
)

func init() {
	// Every valid zone x category pair must have an entry; a hole here is a
	// load-time defect, not a runtime surprise.
	for _, z := range ZonesBySeverity {
		if _, ok := heatingCoefficients[z]; !ok {
			panic(fmt.Sprintf("engine: missing heating coefficient for zone %s", z))
		}
		if _, ok := coolingCoefficients[z]; !ok {
			panic(fmt.Sprintf("engine: missing cooling coefficient for zone %s", z))
		}
	}
}

// insulationCategory maps a build year to its envelope-quality bucket.
func insulationCategory(buildYear int) InsulationCategory {
	age := ReferenceYear - buildYear
	switch {
	case age > 40:
		return InsulationOld
	case age > 20:
		return InsulationMedium
	default:
		return InsulationNew
	}
}

// sizeFactor returns the envelope correction for a floor area.
func sizeFactor(squareFeet float64) float64 {
	return interpolateCurve(sizeFactorCurve, squareFeet)
}

// Size converts building parameters and climate into a required
// heating/cooling load for one zone. It validates the full input domain
// before computing anything and never produces negative loads.
func Size(b BuildingProfile) (LoadResult, error) {
	if b.SquareFeet < MinSquareFeet || b.SquareFeet > MaxSquareFeet {
		return LoadResult{}, validationf("square_feet",
			"%.0f outside supported range [%.0f, %.0f]", b.SquareFeet, MinSquareFeet, MaxSquareFeet)
	}
	if b.BuildYear < MinBuildYear || b.BuildYear > ReferenceYear {
		return LoadResult{}, validationf("build_year",
			"%d outside supported range [%d, %d]", b.BuildYear, MinBuildYear, ReferenceYear)
	}
	heatSet, ok := heatingCoefficients[b.Climate.Zone]
	if !ok {
		return LoadResult{}, validationf("climate_zone",
			"no coefficient entry for zone %q", b.Climate.Zone)
	}
	coolSet := coolingCoefficients[b.Climate.Zone]

	cat := insulationCategory(b.BuildYear)
	factor := sizeFactor(b.SquareFeet)

	heatCoeff := heatSet.forCategory(cat) * factor
	coolCoeff := coolSet.forCategory(cat) * factor

	heating := b.SquareFeet * heatCoeff
	cooling := b.SquareFeet * coolCoeff

	notes := []string{
		fmt.Sprintf("%.0f sqft, built %d (%s construction), zone %s", b.SquareFeet, b.BuildYear, cat, b.Climate.Zone),
		fmt.Sprintf("heating coefficient %.2f BTU/sqft after %.2fx envelope factor", heatCoeff, factor),
	}

	if b.HumidityAdjustment != nil {
		adj := clamp(*b.HumidityAdjustment, minHumidityAdjustment, maxHumidityAdjustment)
		heating *= 1 + adj
		cooling *= 1 + adj
		notes = append(notes, fmt.Sprintf("humidity adjustment +%.0f%% for latent dehumidification load", adj*100))
	}

	notes = append(notes, oversizingWarnings(heating/b.SquareFeet, b.Climate.Zone, b.SquareFeet)...)

	return LoadResult{
		HeatingBTU:  heating,
		CoolingBTU:  cooling,
		RangeMinBTU: heating * 0.9,
		RangeMaxBTU: heating * 1.1,
		Notes:       notes,
	}, nil
}

// oversizingWarnings flags BTU/sqft ratios that usually mean the envelope
// should be fixed before the equipment is upsized.
func oversizingWarnings(btuPerSqft float64, zone ClimateZone, squareFeet float64) []string {
	set := heatingCoefficients[zone]
	typical := set.Medium
	ceiling := set.Old * 1.3

	var warnings []string
	switch {
	case btuPerSqft > ceiling:
		warnings = append(warnings, fmt.Sprintf(
			"high BTU/sqft ratio (%.1f); consider efficiency improvements before oversizing", btuPerSqft))
	case btuPerSqft > typical*1.3:
		warnings = append(warnings, fmt.Sprintf(
			"above-average BTU/sqft ratio (%.1f); verify insulation and air sealing", btuPerSqft))
	}
	if squareFeet < 800 && btuPerSqft > typical*1.2 {
		warnings = append(warnings, "small homes carry proportionally more envelope; mini-split systems often fit better")
	}
	if squareFeet > 4000 {
		warnings = append(warnings, "large homes benefit from zoned systems; consider a multi-zone configuration")
	}
	return warnings
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
