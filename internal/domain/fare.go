package domain

import "math"

// FareSettings is the caller-supplied cost model for one calculation.
// Amounts are in the same currency unit; FuelConsumption is distance per
// unit of fuel (km/L).
type FareSettings struct {
	RoundTrip       bool
	FuelConsumption float64
	FuelUnitPrice   float64
	FixedCost       float64
	ManualTollCost  float64
	MarginPercent   float64
	Passengers      int
}

// FareDetails is the priced breakdown derived from one route and a
// FareSettings. It is recomputed whenever either input changes.
type FareDetails struct {
	TotalDistanceKm      float64
	TotalDurationSeconds float64
	FuelVolume           float64
	FuelCost             float64
	TollCost             float64
	Subtotal             float64
	MarginAmount         float64
	Total                float64
	PerDistanceUnit      float64
	PerPassenger         float64
}

// FareComparison holds one breakdown per available route variant.
type FareComparison struct {
	Toll     *FareDetails
	TollFree *FareDetails
}

// Get returns the breakdown for the given variant (nil if missing).
func (c FareComparison) Get(v RouteVariant) *FareDetails {
	if v == VariantTollFree {
		return c.TollFree
	}
	return c.Toll
}

// Finite reports whether every figure of the breakdown is a finite number.
// Very large inputs overflow to +Inf even though each one is finite.
func (f FareDetails) Finite() bool {
	for _, v := range []float64{
		f.TotalDistanceKm, f.TotalDurationSeconds, f.FuelVolume, f.FuelCost, f.TollCost,
		f.Subtotal, f.MarginAmount, f.Total, f.PerDistanceUnit, f.PerPassenger,
	} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
