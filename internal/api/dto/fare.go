package dto

import "travel-fare-service/internal/domain"

// FareSettingsRequest carries a partial cost model; nil fields take the
// server defaults.
type FareSettingsRequest struct {
	RoundTrip       *bool    `json:"round_trip"`
	FuelConsumption *float64 `json:"fuel_consumption"`
	FuelUnitPrice   *float64 `json:"fuel_unit_price"`
	FixedCost       *float64 `json:"fixed_cost"`
	ManualTollCost  *float64 `json:"manual_toll_cost"`
	MarginPercent   *float64 `json:"margin_percent"`
	Passengers      *int     `json:"passengers"`
}

// Merge returns defaults overridden by the fields set in s (s may be nil).
func (s *FareSettingsRequest) Merge(defaults domain.FareSettings) domain.FareSettings {
	out := defaults
	if s == nil {
		return out
	}
	if s.RoundTrip != nil {
		out.RoundTrip = *s.RoundTrip
	}
	if s.FuelConsumption != nil {
		out.FuelConsumption = *s.FuelConsumption
	}
	if s.FuelUnitPrice != nil {
		out.FuelUnitPrice = *s.FuelUnitPrice
	}
	if s.FixedCost != nil {
		out.FixedCost = *s.FixedCost
	}
	if s.ManualTollCost != nil {
		out.ManualTollCost = *s.ManualTollCost
	}
	if s.MarginPercent != nil {
		out.MarginPercent = *s.MarginPercent
	}
	if s.Passengers != nil {
		out.Passengers = *s.Passengers
	}
	return out
}

type FareSettingsResponse struct {
	RoundTrip       bool    `json:"round_trip"`
	FuelConsumption float64 `json:"fuel_consumption"`
	FuelUnitPrice   float64 `json:"fuel_unit_price"`
	FixedCost       float64 `json:"fixed_cost"`
	ManualTollCost  float64 `json:"manual_toll_cost"`
	MarginPercent   float64 `json:"margin_percent"`
	Passengers      int     `json:"passengers"`
}

func NewFareSettingsResponse(s domain.FareSettings) FareSettingsResponse {
	return FareSettingsResponse{
		RoundTrip:       s.RoundTrip,
		FuelConsumption: s.FuelConsumption,
		FuelUnitPrice:   s.FuelUnitPrice,
		FixedCost:       s.FixedCost,
		ManualTollCost:  s.ManualTollCost,
		MarginPercent:   s.MarginPercent,
		Passengers:      s.Passengers,
	}
}

type FareRouteRequest struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type FareRequest struct {
	Route    FareRouteRequest     `json:"route"`
	Settings *FareSettingsRequest `json:"settings"`
	PresetID string               `json:"preset_id"`
}

type FareResponse struct {
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	DurationText         string  `json:"duration_text"`
	FuelVolume           float64 `json:"fuel_volume"`
	FuelCost             float64 `json:"fuel_cost"`
	TollCost             float64 `json:"toll_cost"`
	Subtotal             float64 `json:"subtotal"`
	MarginAmount         float64 `json:"margin_amount"`
	Total                float64 `json:"total"`
	PerDistanceUnit      float64 `json:"per_distance_unit"`
	PerPassenger         float64 `json:"per_passenger"`
}

// NewFareResponse maps a breakdown; durationText is the formatted duration.
func NewFareResponse(f *domain.FareDetails, durationText string) *FareResponse {
	if f == nil {
		return nil
	}
	return &FareResponse{
		TotalDistanceKm:      f.TotalDistanceKm,
		TotalDurationSeconds: f.TotalDurationSeconds,
		DurationText:         durationText,
		FuelVolume:           f.FuelVolume,
		FuelCost:             f.FuelCost,
		TollCost:             f.TollCost,
		Subtotal:             f.Subtotal,
		MarginAmount:         f.MarginAmount,
		Total:                f.Total,
		PerDistanceUnit:      f.PerDistanceUnit,
		PerPassenger:         f.PerPassenger,
	}
}
