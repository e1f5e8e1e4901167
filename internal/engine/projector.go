package engine

import "fmt"

// Fixed modeling constants for the operating-cost comparison.
const (
	// btuPerKWh converts heat energy to electrical input through COP.
	btuPerKWh = 3412.0
	// Baseline fuel assumption: a gas furnace at 90% AFUE burning therms.
	btuPerTherm          = 100000.0
	baselineAFUE         = 0.90
	DefaultGasPriceTherm = 1.45
	// hddBaseTempF is the balance temperature degree days are computed
	// against.
	hddBaseTempF = 65.0
	// energyInflationRate compounds both fuels' prices per projection year.
	energyInflationRate = 0.03
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var daysPerMonth = [12]float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Project builds the month-by-month operating-cost comparison between a
// heat pump and the baseline fuel, plus payback and a multi-year outlook.
// Monthly heating energy is distributed by HDD share and scaled so the
// 12-month sum reproduces the seasonal load implied by the design-
// temperature sizing. COP is interpolated on the model's COP curve with
// the same clamp semantics as capacity evaluation.
func Project(load LoadResult, model HeatPumpModel, climate ClimateProfile, rates RateInfo, years int) (CostProjection, error) {
	if load.HeatingBTU <= 0 {
		return CostProjection{}, validationf("load", "heating load %.0f must be positive", load.HeatingBTU)
	}
	if rates.USDPerKWh <= 0 {
		return CostProjection{}, validationf("rates", "electricity rate %.3f must be positive", rates.USDPerKWh)
	}
	if years < 1 {
		return CostProjection{}, validationf("years", "%d must be at least 1", years)
	}
	if climate.DesignTempF >= hddBaseTempF {
		return CostProjection{}, validationf("climate",
			"design temperature %.1f°F must be below the %.0f°F degree-day base", climate.DesignTempF, hddBaseTempF)
	}
	if err := ValidateModel(model); err != nil {
		return CostProjection{}, err
	}

	var annualHDD float64
	for _, hdd := range climate.MonthlyHDD {
		if hdd < 0 {
			return CostProjection{}, validationf("climate", "monthly HDD must be non-negative")
		}
		annualHDD += hdd
	}
	if annualHDD <= 0 {
		return CostProjection{}, validationf("climate", "annual HDD must be positive for a heating projection")
	}

	gasPrice := DefaultGasPriceTherm
	gasNote := fmt.Sprintf("baseline gas price defaulted to $%.2f/therm", DefaultGasPriceTherm)
	if rates.GasPricePerTherm != nil {
		gasPrice = *rates.GasPricePerTherm
		gasNote = fmt.Sprintf("baseline gas price $%.2f/therm", gasPrice)
	}

	// Design load (BTU/hr at design temp) implies a daily loss rate per
	// degree day; seasonal energy is that rate times annual HDD.
	uaDaily := load.HeatingBTU * 24 / (hddBaseTempF - climate.DesignTempF)
	annualHeatBTU := uaDaily * annualHDD

	var (
		monthly       [12]MonthlyCost
		annualHPCost  float64
		annualBase    float64
		annualSavings float64
	)

	for i := 0; i < 12; i++ {
		hdd := climate.MonthlyHDD[i]
		avgTemp := hddBaseTempF - hdd/daysPerMonth[i]

		mc := MonthlyCost{Month: monthNames[i], AvgTempF: avgTemp}
		if hdd > 0 {
			monthBTU := annualHeatBTU * hdd / annualHDD
			cop := interpolateCurve(model.COPCurve, avgTemp)
			if cop <= 0 {
				return CostProjection{}, computationf("model %s: COP %.2f at %.1f°F is not usable", model.ID, cop, avgTemp)
			}
			kwh := monthBTU / (cop * btuPerKWh)
			mc.HeatingLoadBTU = monthBTU
			mc.HeatPumpKWh = kwh
			mc.HeatPumpCost = kwh * rates.USDPerKWh
			mc.BaselineFuelCost = monthBTU / (btuPerTherm * baselineAFUE) * gasPrice
		}
		monthly[i] = mc

		annualHPCost += mc.HeatPumpCost
		annualBase += mc.BaselineFuelCost
		annualSavings += mc.BaselineFuelCost - mc.HeatPumpCost
	}

	notes := []string{
		fmt.Sprintf("annual heating energy %.0f BTU distributed by monthly HDD share", annualHeatBTU),
		fmt.Sprintf("electricity at $%.3f/kWh (%s)", rates.USDPerKWh, rates.Source),
		gasNote,
	}

	proj := CostProjection{
		MonthlyBreakdown: monthly,
		AnnualSavingsUSD: annualSavings,
		Notes:            notes,
	}

	if annualSavings > 0 && model.PriceUSD > 0 {
		payback := model.PriceUSD / annualSavings
		proj.PaybackYears = &payback
	} else {
		proj.Notes = append(proj.Notes, "no payback within projection horizon: heat pump does not beat baseline fuel annually")
	}

	// Multi-year outlook with compounding energy-price inflation; break
	// even when cumulative savings recover the equipment price.
	cumulative := 0.0
	inflation := 1.0
	proj.Years = make([]YearProjection, 0, years)
	for y := 1; y <= years; y++ {
		inflation *= 1 + energyInflationRate
		hpCost := annualHPCost * inflation
		baseCost := annualBase * inflation
		cumulative += baseCost - hpCost
		proj.Years = append(proj.Years, YearProjection{
			Year:              y,
			HeatPumpCost:      hpCost,
			BaselineCost:      baseCost,
			CumulativeSavings: cumulative,
		})
		if proj.BreakEvenYear == 0 && model.PriceUSD > 0 && cumulative >= model.PriceUSD {
			proj.BreakEvenYear = y
		}
	}
	proj.CumulativeSavings = cumulative

	return proj, nil
}
