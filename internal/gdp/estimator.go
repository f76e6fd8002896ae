// Package gdp computes the estimated-GDP display metric for a country from
// its population and the fetched exchange-rate table. The multiplier draw is
// the only randomness in the whole system, so it sits behind an injectable
// source and everything else is a pure function of its inputs.
package gdp

import (
	"math/rand"
	"time"
)

// Multiplier bounds for the synthetic noise term: the draw is uniform in
// [MultiplierMin, MultiplierMax).
const (
	MultiplierMin = 1000.0
	MultiplierMax = 2000.0
)

// Estimator derives estimated GDP values. The zero value is not usable;
// construct via NewEstimator or NewEstimatorWithMultiplier.
type Estimator struct {
	multiplier func() float64
}

// NewEstimator returns an Estimator drawing multipliers uniformly from
// [MultiplierMin, MultiplierMax) with its own seeded source.
func NewEstimator() *Estimator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Estimator{
		multiplier: func() float64 {
			return MultiplierMin + rng.Float64()*(MultiplierMax-MultiplierMin)
		},
	}
}

// NewEstimatorWithMultiplier returns an Estimator using the given multiplier
// source. Tests inject a fixed function to make estimates reproducible.
func NewEstimatorWithMultiplier(fn func() float64) *Estimator {
	return &Estimator{multiplier: fn}
}

// Estimate maps (population, currency code, rate table) to an exchange rate
// and an estimated GDP:
//
//   - no currency code:            rate = nil, gdp = 0 (known to be zero)
//   - code present, rate found:    rate = table value,
//     gdp = population × m / rate with m drawn from the multiplier source
//   - code present, rate missing:  rate = nil, gdp = nil (explicitly unknown)
//
// The 0-vs-nil distinction is deliberate: a country without a currency has a
// defined zero estimate, while a country whose currency has no known rate has
// no estimate at all.
func (e *Estimator) Estimate(population int64, currencyCode string, rates map[string]float64) (exchangeRate, estimatedGDP *float64) {
	if currencyCode == "" {
		zero := 0.0
		return nil, &zero
	}

	rate, ok := rates[currencyCode]
	if !ok || rate == 0 {
		return nil, nil
	}

	m := e.multiplier()
	gdp := float64(population) * m / rate
	return &rate, &gdp
}
