package gdp

import (
	"math"
	"testing"
)

func fixed(m float64) func() float64 {
	return func() float64 { return m }
}

func TestEstimate_NoCurrencyCode_ZeroGDPNilRate(t *testing.T) {
	e := NewEstimatorWithMultiplier(fixed(1500))

	rate, gdp := e.Estimate(1_000_000, "", map[string]float64{"USD": 1.0})
	if rate != nil {
		t.Fatalf("expected nil rate, got %v", *rate)
	}
	if gdp == nil || *gdp != 0 {
		t.Fatalf("expected zero (non-nil) gdp, got %v", gdp)
	}
}

func TestEstimate_CodeWithoutRate_BothNil(t *testing.T) {
	e := NewEstimatorWithMultiplier(fixed(1500))

	rate, gdp := e.Estimate(1_000_000, "XOF", map[string]float64{"USD": 1.0})
	if rate != nil || gdp != nil {
		t.Fatalf("expected both nil, got rate=%v gdp=%v", rate, gdp)
	}
}

func TestEstimate_CodeWithRate_Formula(t *testing.T) {
	e := NewEstimatorWithMultiplier(fixed(1200))

	rate, gdp := e.Estimate(2_000_000, "EUR", map[string]float64{"EUR": 0.5})
	if rate == nil || *rate != 0.5 {
		t.Fatalf("expected rate 0.5, got %v", rate)
	}
	want := float64(2_000_000) * 1200 / 0.5
	if gdp == nil || math.Abs(*gdp-want) > 1e-6 {
		t.Fatalf("expected gdp %v, got %v", want, gdp)
	}
}

func TestEstimate_FixedMultiplierIsDeterministic(t *testing.T) {
	e := NewEstimatorWithMultiplier(fixed(1777.25))
	rates := map[string]float64{"JPY": 150.0}

	_, first := e.Estimate(123_456, "JPY", rates)
	for i := 0; i < 10; i++ {
		_, again := e.Estimate(123_456, "JPY", rates)
		if *again != *first {
			t.Fatalf("run %d: expected %v, got %v", i, *first, *again)
		}
	}
}

func TestEstimate_ZeroRateTreatedAsUnknown(t *testing.T) {
	e := NewEstimatorWithMultiplier(fixed(1500))

	rate, gdp := e.Estimate(1_000_000, "ZWL", map[string]float64{"ZWL": 0})
	if rate != nil || gdp != nil {
		t.Fatalf("zero rate must not produce an estimate, got rate=%v gdp=%v", rate, gdp)
	}
}

func TestNewEstimator_MultiplierWithinBounds(t *testing.T) {
	e := NewEstimator()
	rates := map[string]float64{"USD": 1.0}

	// population 1 makes the estimate equal the drawn multiplier.
	for i := 0; i < 1000; i++ {
		_, gdp := e.Estimate(1, "USD", rates)
		if gdp == nil {
			t.Fatal("expected an estimate")
		}
		if *gdp < MultiplierMin || *gdp >= MultiplierMax {
			t.Fatalf("draw %d out of [%v,%v): %v", i, MultiplierMin, MultiplierMax, *gdp)
		}
	}
}
