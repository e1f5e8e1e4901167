package engine

// ClimateZone is an ASHRAE climate zone designation (1A through 8).
type ClimateZone string

const (
	Zone1A ClimateZone = "1A"
	Zone1B ClimateZone = "1B"
	Zone2A ClimateZone = "2A"
	Zone2B ClimateZone = "2B"
	Zone3A ClimateZone = "3A"
	Zone3B ClimateZone = "3B"
	Zone3C ClimateZone = "3C"
	Zone4A ClimateZone = "4A"
	Zone4B ClimateZone = "4B"
	Zone4C ClimateZone = "4C"
	Zone5A ClimateZone = "5A"
	Zone5B ClimateZone = "5B"
	Zone6A ClimateZone = "6A"
	Zone6B ClimateZone = "6B"
	Zone7  ClimateZone = "7"
	Zone8  ClimateZone = "8"
)

// ZonesBySeverity lists all climate zones from mildest to most severe
// heating climate. Heating coefficients are non-decreasing along this order.
var ZonesBySeverity = []ClimateZone{
	Zone1A, Zone1B, Zone2A, Zone2B, Zone3A, Zone3B, Zone3C,
	Zone4A, Zone4B, Zone4C, Zone5A, Zone5B, Zone6A, Zone6B, Zone7, Zone8,
}

// ClimateProfile describes the heating/cooling climate at a location.
// DesignTempF is the 99% winter design temperature.
type ClimateProfile struct {
	Zone        ClimateZone `json:"climate_zone"`
	DesignTempF float64     `json:"design_temp_f"`
	MonthlyHDD  [12]float64 `json:"monthly_hdd"`
	MonthlyCDD  [12]float64 `json:"monthly_cdd"`
}

// BuildingProfile describes a whole-building sizing request.
// HumidityAdjustment, when set, is the extra latent-load fraction to
// carry for dehumidification (clamped to 0.10-0.15).
type BuildingProfile struct {
	SquareFeet         float64        `json:"square_feet"`
	BuildYear          int            `json:"build_year"`
	Climate            ClimateProfile `json:"climate"`
	HumidityAdjustment *float64       `json:"humidity_adjustment,omitempty"`
}

// Exposure is the dominant sun exposure of a zone.
type Exposure string

const (
	ExposureNorth Exposure = "north"
	ExposureSouth Exposure = "south"
	ExposureEast  Exposure = "east"
	ExposureWest  Exposure = "west"
	ExposureMixed Exposure = "mixed"
)

// Occupancy is the expected internal-gain level of a zone.
type Occupancy string

const (
	OccupancyLow    Occupancy = "low"
	OccupancyMedium Occupancy = "medium"
	OccupancyHigh   Occupancy = "high"
)

// AirSealing is the envelope tightness of a zone.
type AirSealing string

const (
	SealingLeaky   AirSealing = "leaky"
	SealingAverage AirSealing = "average"
	SealingTight   AirSealing = "tight"
)

// Zone is one conditioned area of a building. Order within a building
// matters only for reporting, never for the math.
type Zone struct {
	Name              string     `json:"name"`
	AreaSqft          float64    `json:"area_sqft"`
	Exposure          Exposure   `json:"exposure"`
	WindowFraction    float64    `json:"window_fraction"`
	Occupancy         Occupancy  `json:"occupancy"`
	AirSealing        AirSealing `json:"air_sealing"`
	CeilingHeightFt   float64    `json:"ceiling_height_ft"`
	HeatSourcePresent bool       `json:"heat_source_present"`
	BelowGrade        bool       `json:"below_grade"`
}

// CurvePoint is one knot of a performance curve: a value at an outdoor
// temperature.
type CurvePoint struct {
	TempF float64 `json:"temp_f"`
	Value float64 `json:"value"`
}

// HeatPumpModel is one catalog entry. CapacityCurve maps outdoor
// temperature to the fraction of rated capacity delivered; COPCurve maps
// outdoor temperature to instantaneous COP. Both are strictly increasing
// in temperature and immutable once loaded.
type HeatPumpModel struct {
	ID               string       `json:"id"`
	Brand            string       `json:"brand"`
	Model            string       `json:"model"`
	RatedCapacityBTU float64      `json:"rated_capacity_btu"`
	RatedHSPF2       float64      `json:"rated_hspf2"`
	PriceUSD         float64      `json:"price_usd"`
	CapacityCurve    []CurvePoint `json:"capacity_curve"`
	COPCurve         []CurvePoint `json:"cop_curve"`
}

// LoadResult is a sized heating/cooling load. Loads are always
// non-negative. RangeMinBTU and RangeMaxBTU bracket the heating load with
// a +/-10% sizing margin.
type LoadResult struct {
	HeatingBTU  float64  `json:"heating_btu"`
	CoolingBTU  float64  `json:"cooling_btu"`
	RangeMinBTU float64  `json:"range_min_btu"`
	RangeMaxBTU float64  `json:"range_max_btu"`
	Notes       []string `json:"notes"`
}

// SystemMode is the recommended system configuration kind.
type SystemMode string

const (
	SystemSingle    SystemMode = "single"
	SystemMultiHead SystemMode = "multi_head"
)

// HeadAssignment groups one or more zones onto a single indoor head.
type HeadAssignment struct {
	Zones       []string `json:"zones"`
	LoadBTU     float64  `json:"load_btu"`
	CapacityBTU float64  `json:"capacity_btu"`
}

// ConfigRecommendation is the discrete system-configuration decision for
// a multi-zone building.
type ConfigRecommendation struct {
	Mode  SystemMode       `json:"mode"`
	Heads []HeadAssignment `json:"heads,omitempty"`
	Notes []string         `json:"notes,omitempty"`
}

// AggregateResult is the output of multi-zone aggregation.
type AggregateResult struct {
	PerZone         []LoadResult         `json:"per_zone"`
	Total           LoadResult           `json:"total"`
	DiversityFactor float64              `json:"diversity_factor"`
	Config          ConfigRecommendation `json:"config"`
}

// CoverageResult describes how a model performs against a design load.
// BalancePointF is nil when delivered capacity never crosses the load
// within the curve domain.
type CoverageResult struct {
	DeliveredCapacityBTU float64  `json:"delivered_capacity_btu"`
	CoverageRatio        float64  `json:"coverage_ratio"`
	BackupHeatBTU        float64  `json:"backup_heat_btu"`
	BalancePointF        *float64 `json:"balance_point_f,omitempty"`
	Rating               string   `json:"rating"`
	Notes                []string `json:"notes"`
}

// BackupHeatType enumerates supplemental heating systems.
type BackupHeatType string

const (
	BackupElectricStrip BackupHeatType = "electric_strip"
	BackupGasFurnace    BackupHeatType = "gas_furnace"
	BackupOilBoiler     BackupHeatType = "oil_boiler"
	BackupNone          BackupHeatType = "none"
)

// BackupHeatRecommendation sizes a supplemental heat system for the
// capacity shortfall at design temperature.
type BackupHeatRecommendation struct {
	Type             BackupHeatType `json:"type"`
	RequiredBTU      float64        `json:"required_btu"`
	EstimatedCostUSD string         `json:"estimated_cost_usd"`
	Reasoning        string         `json:"reasoning"`
}

// RateInfo carries the electricity rate used for cost projection plus the
// baseline-fuel assumption. Source is "live" or "fallback-average".
// GasPricePerTherm, when nil, falls back to a national default.
type RateInfo struct {
	USDPerKWh        float64  `json:"usd_per_kwh"`
	Source           string   `json:"source"`
	GasPricePerTherm *float64 `json:"gas_price_per_therm,omitempty"`
}

// MonthlyCost is one month of the operating-cost comparison.
type MonthlyCost struct {
	Month            string  `json:"month"`
	AvgTempF         float64 `json:"avg_temp_f"`
	HeatingLoadBTU   float64 `json:"heating_load_btu"`
	HeatPumpKWh      float64 `json:"heat_pump_kwh"`
	HeatPumpCost     float64 `json:"heat_pump_cost"`
	BaselineFuelCost float64 `json:"baseline_fuel_cost"`
}

// YearProjection is one year of the multi-year outlook, with energy-price
// inflation applied.
type YearProjection struct {
	Year              int     `json:"year"`
	HeatPumpCost      float64 `json:"heat_pump_cost"`
	BaselineCost      float64 `json:"baseline_cost"`
	CumulativeSavings float64 `json:"cumulative_savings"`
}

// CostProjection is the full operating-cost and payback picture.
// PaybackYears is nil when annual savings are zero or negative.
type CostProjection struct {
	MonthlyBreakdown  [12]MonthlyCost  `json:"monthly_breakdown"`
	AnnualSavingsUSD  float64          `json:"annual_savings_usd"`
	PaybackYears      *float64         `json:"payback_years,omitempty"`
	Years             []YearProjection `json:"years"`
	CumulativeSavings float64          `json:"cumulative_savings"`
	BreakEvenYear     int              `json:"break_even_year"`
	Notes             []string         `json:"notes"`
}
