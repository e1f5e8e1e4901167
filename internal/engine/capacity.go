package engine

import "fmt"

// Coverage ratings by percent of design load covered.
const (
	RatingExcellent  = "Excellent"
	RatingGood       = "Good"
	RatingMarginal   = "Marginal"
	RatingInadequate = "Inadequate"
)

// backupSafetyFactor pads backup-heat sizing above the raw shortfall.
const backupSafetyFactor = 1.10

// DeliveredCapacity returns the BTU a model delivers at an outdoor
// temperature: rated capacity times the interpolated capacity fraction.
// Temperatures outside the curve domain clamp to the nearest end knot.
func DeliveredCapacity(m HeatPumpModel, outdoorTempF float64) float64 {
	return m.RatedCapacityBTU * interpolateCurve(m.CapacityCurve, outdoorTempF)
}

// ValidateModel enforces the curve invariants a model must satisfy before
// any evaluation: positive rated capacity, strictly increasing curve
// temperatures, capacity fractions within [0, 1], non-negative COP.
func ValidateModel(m HeatPumpModel) error {
	if m.RatedCapacityBTU <= 0 {
		return computationf("model %s: rated capacity %.0f must be positive", m.ID, m.RatedCapacityBTU)
	}
	if err := validateCurve("capacity", m.CapacityCurve, 0, 1); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	if err := validateCurve("COP", m.COPCurve, 0, 10); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	return nil
}

// Coverage evaluates a model against a design load at the design
// temperature: delivered capacity, coverage ratio, backup-heat shortfall,
// and the balance point where delivered capacity equals the load.
func Coverage(m HeatPumpModel, designTempF, loadBTU float64) (CoverageResult, error) {
	if loadBTU <= 0 {
		return CoverageResult{}, validationf("load_btu", "%.0f must be positive", loadBTU)
	}
	if err := ValidateModel(m); err != nil {
		return CoverageResult{}, err
	}

	delivered := DeliveredCapacity(m, designTempF)
	ratio := delivered / loadBTU
	backup := loadBTU - delivered
	if backup < 0 {
		backup = 0
	}

	result := CoverageResult{
		DeliveredCapacityBTU: delivered,
		CoverageRatio:        ratio,
		BackupHeatBTU:        backup,
		Rating:               coverageRating(ratio),
	}

	// The balance point must agree exactly with DeliveredCapacity's linear
	// interpolation, so it is found on the same curve segments.
	if bp, ok := curveCrossing(m.CapacityCurve, m.RatedCapacityBTU, loadBTU); ok {
		result.BalancePointF = &bp
		result.Notes = append(result.Notes,
			fmt.Sprintf("balance point at %.1f°F; below it the unit cannot carry the full load alone", bp))
	} else if DeliveredCapacity(m, m.CapacityCurve[0].TempF) >= loadBTU {
		result.Notes = append(result.Notes, "full coverage across the curve range")
	} else {
		result.Notes = append(result.Notes, "no coverage within curve range")
	}

	result.Notes = append(result.Notes,
		fmt.Sprintf("delivers %.0f BTU against a %.0f BTU load at %.1f°F (%.0f%% coverage)",
			delivered, loadBTU, designTempF, ratio*100))

	return result, nil
}

func coverageRating(ratio float64) string {
	switch {
	case ratio >= 1.0:
		return RatingExcellent
	case ratio >= 0.90:
		return RatingGood
	case ratio >= 0.75:
		return RatingMarginal
	default:
		return RatingInadequate
	}
}

// RecommendBackupHeat sizes a supplemental system for a coverage
// shortfall, keeping an existing backup type when one is present.
func RecommendBackupHeat(backupBTU float64, existing BackupHeatType) *BackupHeatRecommendation {
	if backupBTU <= 0 {
		return nil
	}
	required := backupBTU * backupSafetyFactor

	rec := &BackupHeatRecommendation{
		Type:        BackupElectricStrip,
		RequiredBTU: required,
		Reasoning:   "electric resistance strips integrate well with heat pump air handlers",
	}
	if existing != "" && existing != BackupNone {
		rec.Type = existing
		rec.Reasoning = fmt.Sprintf("keep the existing %s system as supplemental heat", existing)
	}

	switch {
	case required < 10000:
		rec.EstimatedCostUSD = "$500-$1,500"
	case required < 20000:
		rec.EstimatedCostUSD = "$1,500-$3,000"
	default:
		rec.EstimatedCostUSD = "$3,000-$6,000"
	}
	return rec
}
