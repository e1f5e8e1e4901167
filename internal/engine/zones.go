package engine

import (
	"fmt"
	"math"
)

// Zone input domain.
const (
	MinZoneAreaSqft    = 50.0
	MaxZoneAreaSqft    = 5000.0
	MinCeilingHeightFt = 7.0
	MaxCeilingHeightFt = 20.0
	baseCeilingFt      = 8.0

	// windowBaseline is the window fraction at which the window factor is
	// neutral; each point above or below scales conduction/solar load
	// linearly.
	windowBaseline = 0.15
	windowSlope    = 2.0
)

// Head capacity band for multi-head configurations, and the largest load
// a single system is recommended for.
const (
	MinHeadCapacityBTU = 6000.0
	MaxHeadCapacityBTU = 24000.0
	SingleSystemMaxBTU = 36000.0
	// Head capacities come in half-ton increments.
	headCapacityStepBTU  = 6000.0
	diversityFactorFloor = 0.80
)

type splitFactor struct {
	Cooling float64
	Heating float64
}

// Zone adjustment multipliers. Empirical constants: south/west sun raises
// cooling load, internal gains offset heating, leaky envelopes bleed heat,
// ground contact tempers both seasons. Keep them configurable constants
// for calibration, not invariants.
var (
	exposureFactors = map[Exposure]splitFactor{
		ExposureSouth: {Cooling: 1.15, Heating: 0.95},
		ExposureWest:  {Cooling: 1.10, Heating: 1.00},
		ExposureEast:  {Cooling: 1.05, Heating: 1.00},
		ExposureNorth: {Cooling: 0.90, Heating: 1.05},
		ExposureMixed: {Cooling: 1.00, Heating: 1.00},
	}

	occupancyFactors = map[Occupancy]splitFactor{
		OccupancyHigh:   {Cooling: 1.15, Heating: 0.90},
		OccupancyMedium: {Cooling: 1.00, Heating: 1.00},
		OccupancyLow:    {Cooling: 0.85, Heating: 1.05},
	}

	airSealingFactors = map[AirSealing]splitFactor{
		SealingTight:   {Cooling: 0.90, Heating: 0.85},
		SealingAverage: {Cooling: 1.00, Heating: 1.00},
		SealingLeaky:   {Cooling: 1.15, Heating: 1.25},
	}

	belowGradeFactor = splitFactor{Cooling: 0.70, Heating: 0.85}
	heatSourceFactor = splitFactor{Cooling: 1.08, Heating: 0.95}
)

// diversityFactor discounts the summed zone loads for non-simultaneous
// peaks. Non-increasing in zone count, never below the floor.
func diversityFactor(zoneCount int) float64 {
	switch {
	case zoneCount <= 1:
		return 1.0
	case zoneCount == 2:
		return 0.95
	case zoneCount == 3:
		return 0.90
	case zoneCount == 4:
		return 0.85
	default:
		return diversityFactorFloor
	}
}

// Aggregate sizes every zone, sums the adjusted loads with a diversity
// discount, and recommends a system configuration. Per-zone coefficients
// use the medium-insulation baseline for the building's climate zone;
// envelope quality enters through each zone's air-sealing factor.
// Validation is fail-fast: any invalid zone aborts before aggregation.
func Aggregate(zones []Zone, climate ClimateProfile) (AggregateResult, error) {
	if len(zones) == 0 {
		return AggregateResult{}, validationf("zones", "at least one zone is required")
	}
	heatSet, ok := heatingCoefficients[climate.Zone]
	if !ok {
		return AggregateResult{}, validationf("climate_zone", "no coefficient entry for zone %q", climate.Zone)
	}
	coolSet := coolingCoefficients[climate.Zone]

	for i, z := range zones {
		if err := validateZone(i, z); err != nil {
			return AggregateResult{}, err
		}
	}

	heatBase := heatSet.forCategory(InsulationMedium)
	coolBase := coolSet.forCategory(InsulationMedium)

	perZone := make([]LoadResult, 0, len(zones))
	var sumHeating, sumCooling float64

	for _, z := range zones {
		heating, cooling := zoneLoad(z, heatBase, coolBase)
		perZone = append(perZone, LoadResult{
			HeatingBTU:  heating,
			CoolingBTU:  cooling,
			RangeMinBTU: heating * 0.9,
			RangeMaxBTU: heating * 1.1,
			Notes:       []string{fmt.Sprintf("zone %q: %.0f sqft, %s exposure", z.Name, z.AreaSqft, z.Exposure)},
		})
		sumHeating += heating
		sumCooling += cooling
	}

	div := diversityFactor(len(zones))
	totalHeating := sumHeating * div
	totalCooling := sumCooling * div

	total := LoadResult{
		HeatingBTU:  totalHeating,
		CoolingBTU:  totalCooling,
		RangeMinBTU: totalHeating * 0.9,
		RangeMaxBTU: totalHeating * 1.1,
		Notes: []string{
			fmt.Sprintf("%d zones, diversity factor %.2f applied to summed loads", len(zones), div),
		},
	}

	config := recommendConfig(zones, perZone, total)

	return AggregateResult{
		PerZone:         perZone,
		Total:           total,
		DiversityFactor: div,
		Config:          config,
	}, nil
}

func validateZone(i int, z Zone) error {
	name := z.Name
	if name == "" {
		name = fmt.Sprintf("#%d", i)
	}
	if z.AreaSqft <= 0 {
		return validationf("zones", "zone %s: area_sqft %.0f must be positive", name, z.AreaSqft)
	}
	if z.AreaSqft < MinZoneAreaSqft || z.AreaSqft > MaxZoneAreaSqft {
		return validationf("zones", "zone %s: area_sqft %.0f outside supported range [%.0f, %.0f]",
			name, z.AreaSqft, MinZoneAreaSqft, MaxZoneAreaSqft)
	}
	if z.WindowFraction < 0 || z.WindowFraction > 1 {
		return validationf("zones", "zone %s: window_fraction %.2f outside [0, 1]", name, z.WindowFraction)
	}
	if z.CeilingHeightFt != 0 && (z.CeilingHeightFt < MinCeilingHeightFt || z.CeilingHeightFt > MaxCeilingHeightFt) {
		return validationf("zones", "zone %s: ceiling_height_ft %.1f outside supported range [%.0f, %.0f]",
			name, z.CeilingHeightFt, MinCeilingHeightFt, MaxCeilingHeightFt)
	}
	if _, ok := exposureFactors[z.Exposure]; !ok {
		return validationf("zones", "zone %s: unknown exposure %q", name, z.Exposure)
	}
	if _, ok := occupancyFactors[z.Occupancy]; !ok {
		return validationf("zones", "zone %s: unknown occupancy %q", name, z.Occupancy)
	}
	if _, ok := airSealingFactors[z.AirSealing]; !ok {
		return validationf("zones", "zone %s: unknown air_sealing %q", name, z.AirSealing)
	}
	return nil
}

// zoneLoad computes the adjusted heating and cooling load for one zone.
func zoneLoad(z Zone, heatBase, coolBase float64) (heating, cooling float64) {
	heating = z.AreaSqft * heatBase
	cooling = z.AreaSqft * coolBase

	exp := exposureFactors[z.Exposure]
	occ := occupancyFactors[z.Occupancy]
	seal := airSealingFactors[z.AirSealing]

	windowFactor := 1.0 + (z.WindowFraction-windowBaseline)*windowSlope

	// Load scales with conditioned volume, not floor area, once ceilings
	// rise materially past 8 ft.
	heightFactor := 1.0
	if z.CeilingHeightFt > baseCeilingFt {
		heightFactor = z.CeilingHeightFt / baseCeilingFt
	}

	heating *= exp.Heating * occ.Heating * seal.Heating * windowFactor * heightFactor
	cooling *= exp.Cooling * occ.Cooling * seal.Cooling * windowFactor * heightFactor

	if z.BelowGrade {
		heating *= belowGradeFactor.Heating
		cooling *= belowGradeFactor.Cooling
	}
	if z.HeatSourcePresent {
		heating *= heatSourceFactor.Heating
		cooling *= heatSourceFactor.Cooling
	}

	return heating, cooling
}

// recommendConfig decides between one system and a multi-head layout,
// minimizing head count while keeping each head within the capacity band.
// A zone too large for any single head gets its own over-band head plus a
// warning note instead.
func recommendConfig(zones []Zone, perZone []LoadResult, total LoadResult) ConfigRecommendation {
	dominant := math.Max(total.HeatingBTU, total.CoolingBTU)

	if len(zones) <= 1 || dominant <= SingleSystemMaxBTU {
		return ConfigRecommendation{
			Mode: SystemSingle,
			Heads: []HeadAssignment{{
				Zones:       zoneNames(zones),
				LoadBTU:     dominant,
				CapacityBTU: roundUpCapacity(dominant),
			}},
			Notes: []string{fmt.Sprintf("total load %.0f BTU fits a single system", dominant)},
		}
	}

	heads := assignHeads(zones, perZone)
	notes := make([]string, 0, 1)
	for _, h := range heads {
		// An over-band head always carries exactly one zone; packing never
		// merges past the band limit.
		if h.LoadBTU > MaxHeadCapacityBTU {
			notes = append(notes, fmt.Sprintf("zone %q needs %.0f BTU, above the %.0f BTU head maximum; plan a ducted unit or a further split for it",
				h.Zones[0], h.LoadBTU, MaxHeadCapacityBTU))
		}
	}
	if len(notes) == 0 {
		notes = append(notes, fmt.Sprintf("%d heads keep each within the %.0f-%.0f BTU band", len(heads), MinHeadCapacityBTU, MaxHeadCapacityBTU))
	}
	return ConfigRecommendation{
		Mode:  SystemMultiHead,
		Heads: heads,
		Notes: notes,
	}
}

// assignHeads packs zones onto heads first-fit by descending load so the
// head count is minimal for the capacity band.
func assignHeads(zones []Zone, perZone []LoadResult) []HeadAssignment {
	type entry struct {
		name string
		load float64
	}
	entries := make([]entry, len(zones))
	for i, z := range zones {
		entries[i] = entry{name: z.Name, load: math.Max(perZone[i].HeatingBTU, perZone[i].CoolingBTU)}
	}
	// Insertion sort by descending load; zone counts are small.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].load > entries[j-1].load; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	var heads []HeadAssignment
	for _, e := range entries {
		placed := false
		for i := range heads {
			if heads[i].LoadBTU+e.load <= MaxHeadCapacityBTU {
				heads[i].Zones = append(heads[i].Zones, e.name)
				heads[i].LoadBTU += e.load
				placed = true
				break
			}
		}
		if !placed {
			heads = append(heads, HeadAssignment{Zones: []string{e.name}, LoadBTU: e.load})
		}
	}
	for i := range heads {
		heads[i].CapacityBTU = roundUpCapacity(heads[i].LoadBTU)
	}
	return heads
}

// roundUpCapacity rounds a load up to the next capacity step, never below
// the smallest head size.
func roundUpCapacity(load float64) float64 {
	c := math.Ceil(load/headCapacityStepBTU) * headCapacityStepBTU
	if c < MinHeadCapacityBTU {
		c = MinHeadCapacityBTU
	}
	return c
}

func zoneNames(zones []Zone) []string {
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = z.Name
	}
	return names
}
