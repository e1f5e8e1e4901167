package engine

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func coldClimate() ClimateProfile {
	return ClimateProfile{
		Zone:        Zone5A,
		DesignTempF: 5,
		MonthlyHDD:  [12]float64{1200, 1000, 800, 450, 150, 0, 0, 0, 100, 400, 750, 1100},
	}
}

func projectorLoad() LoadResult {
	return LoadResult{HeatingBTU: 36000, CoolingBTU: 20000, RangeMinBTU: 32400, RangeMaxBTU: 39600}
}

func TestProjectMonthlyEnergyBalance(t *testing.T) {
	climate := coldClimate()
	rates := RateInfo{USDPerKWh: 0.16, Source: "fallback-average"}

	got, err := Project(projectorLoad(), testModel(48000), climate, rates, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var annualHDD, sumBTU float64
	for _, hdd := range climate.MonthlyHDD {
		annualHDD += hdd
	}
	for _, mc := range got.MonthlyBreakdown {
		sumBTU += mc.HeatingLoadBTU
	}

	// Daily loss rate from the design load, scaled by total degree days.
	wantAnnual := 36000.0 * 24 / (65 - 5) * annualHDD
	if !closeTo(sumBTU, wantAnnual, 1e-9) {
		t.Errorf("monthly heating energy sums to %.1f, want %.1f", sumBTU, wantAnnual)
	}

	var wantSavings float64
	for i, mc := range got.MonthlyBreakdown {
		if climate.MonthlyHDD[i] == 0 {
			if mc.HeatingLoadBTU != 0 || mc.HeatPumpCost != 0 {
				t.Errorf("%s: zero-HDD month carries load %.1f cost %.2f", mc.Month, mc.HeatingLoadBTU, mc.HeatPumpCost)
			}
			continue
		}
		if mc.HeatPumpKWh <= 0 || mc.BaselineFuelCost <= 0 {
			t.Errorf("%s: expected positive energy and baseline cost, got %.2f kWh / $%.2f", mc.Month, mc.HeatPumpKWh, mc.BaselineFuelCost)
		}
		if mc.AvgTempF >= 65 {
			t.Errorf("%s: average temperature %.1f°F not below the degree-day base", mc.Month, mc.AvgTempF)
		}
		wantSavings += mc.BaselineFuelCost - mc.HeatPumpCost
	}
	if !closeTo(got.AnnualSavingsUSD, wantSavings, 1e-9) {
		t.Errorf("annual savings %.4f not the exact monthly sum %.4f", got.AnnualSavingsUSD, wantSavings)
	}
}

func TestProjectPaybackRoundTrip(t *testing.T) {
	model := testModel(48000)
	got, err := Project(projectorLoad(), model, coldClimate(), RateInfo{USDPerKWh: 0.16, Source: "live"}, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PaybackYears == nil {
		t.Fatalf("expected a payback for positive savings %.2f", got.AnnualSavingsUSD)
	}
	if got.AnnualSavingsUSD <= 0 {
		t.Fatalf("expected positive annual savings, got %.2f", got.AnnualSavingsUSD)
	}
	want := model.PriceUSD / got.AnnualSavingsUSD
	if !closeTo(*got.PaybackYears, want, 1e-9) {
		t.Errorf("payback %.3f years, want %.3f", *got.PaybackYears, want)
	}

	if len(got.Years) != 15 {
		t.Fatalf("projection carries %d years, want 15", len(got.Years))
	}
	prevCumulative := math.Inf(-1)
	for i, yr := range got.Years {
		if yr.Year != i+1 {
			t.Errorf("year %d labeled %d", i+1, yr.Year)
		}
		if yr.CumulativeSavings <= prevCumulative {
			t.Errorf("cumulative savings not increasing at year %d", yr.Year)
		}
		prevCumulative = yr.CumulativeSavings
	}
	// Inflation compounds both sides equally, so the gap widens each year.
	if got.Years[1].BaselineCost <= got.Years[0].BaselineCost {
		t.Errorf("baseline cost should inflate year over year: %.2f then %.2f",
			got.Years[0].BaselineCost, got.Years[1].BaselineCost)
	}
	if got.BreakEvenYear > 0 && got.Years[got.BreakEvenYear-1].CumulativeSavings < model.PriceUSD {
		t.Errorf("break-even year %d cumulative %.2f below price %.2f",
			got.BreakEvenYear, got.Years[got.BreakEvenYear-1].CumulativeSavings, model.PriceUSD)
	}
}

func TestProjectNoPayback(t *testing.T) {
	// Pricey electricity against nearly free gas: the heat pump never wins.
	cheapGas := ptrFloat(0.10)
	rates := RateInfo{USDPerKWh: 0.45, Source: "live", GasPricePerTherm: cheapGas}

	got, err := Project(projectorLoad(), testModel(48000), coldClimate(), rates, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AnnualSavingsUSD >= 0 {
		t.Fatalf("expected negative savings, got %.2f", got.AnnualSavingsUSD)
	}
	if got.PaybackYears != nil {
		t.Errorf("payback %.2f reported despite negative savings", *got.PaybackYears)
	}
	if got.BreakEvenYear != 0 {
		t.Errorf("break-even year %d reported despite negative savings", got.BreakEvenYear)
	}
	found := false
	for _, n := range got.Notes {
		if strings.Contains(n, "no payback") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an explicit no-payback note, got %v", got.Notes)
	}
}

func TestProjectValidation(t *testing.T) {
	climate := coldClimate()
	rates := RateInfo{USDPerKWh: 0.16, Source: "live"}
	model := testModel(48000)

	tests := []struct {
		name string
		call func() error
	}{
		{"non-positive load", func() error {
			_, err := Project(LoadResult{}, model, climate, rates, 10)
			return err
		}},
		{"non-positive rate", func() error {
			_, err := Project(projectorLoad(), model, climate, RateInfo{}, 10)
			return err
		}},
		{"zero years", func() error {
			_, err := Project(projectorLoad(), model, climate, rates, 0)
			return err
		}},
		{"design temp above degree-day base", func() error {
			warm := climate
			warm.DesignTempF = 70
			_, err := Project(projectorLoad(), model, warm, rates, 10)
			return err
		}},
		{"no heating degree days", func() error {
			tropical := climate
			tropical.MonthlyHDD = [12]float64{}
			_, err := Project(projectorLoad(), model, tropical, rates, 10)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("want ValidationError, got %v", err)
			}
		})
	}
}
