package services

import "travel-fare-service/internal/domain"

// ComputeFare prices one route under the given cost model.
//
// Round trips double distance, duration and the manual toll. Fuel volume is
// distance / consumption, and the margin is a percentage of the subtotal
// (fuel + fixed cost + toll). Toll cost always comes from
// settings.ManualTollCost; a toll estimate reported by the routing provider
// is informational only.
//
// Every division treats a non-positive denominator as "not computable" and
// yields 0, so the result never contains NaN or Inf for finite inputs.
func ComputeFare(route domain.RouteMetrics, settings domain.FareSettings) domain.FareDetails {
	multiplier := 1.0
	if settings.RoundTrip {
		multiplier = 2
	}

	totalDistance := route.DistanceKm * multiplier
	totalDuration := route.DurationSeconds * multiplier

	fuelVolume := safeDiv(totalDistance, settings.FuelConsumption)
	fuelCost := fuelVolume * settings.FuelUnitPrice
	tollCost := settings.ManualTollCost * multiplier

	subtotal := fuelCost + settings.FixedCost + tollCost
	marginAmount := (settings.MarginPercent / 100) * subtotal
	total := subtotal + marginAmount

	return domain.FareDetails{
		TotalDistanceKm:      totalDistance,
		TotalDurationSeconds: totalDuration,
		FuelVolume:           fuelVolume,
		FuelCost:             fuelCost,
		TollCost:             tollCost,
		Subtotal:             subtotal,
		MarginAmount:         marginAmount,
		Total:                total,
		PerDistanceUnit:      safeDiv(total, totalDistance),
		PerPassenger:         safeDiv(total, float64(settings.Passengers)),
	}
}

// ComputeFares prices every available variant of pair.
func ComputeFares(pair domain.RoutePair, settings domain.FareSettings) domain.FareComparison {
	var out domain.FareComparison
	if pair.Toll != nil {
		f := ComputeFare(*pair.Toll, settings)
		out.Toll = &f
	}
	if pair.TollFree != nil {
		f := ComputeFare(*pair.TollFree, settings)
		out.TollFree = &f
	}
	return out
}

func safeDiv(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}
