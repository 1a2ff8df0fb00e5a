package domain

import "strings"

// VehiclePreset stores the vehicle-specific part of a FareSettings so it can
// be reapplied across calculations.
type VehiclePreset struct {
	ID              string
	Name            string
	FuelConsumption float64
	Passengers      int
}

// Validate checks the fields every stored preset must carry.
func (p VehiclePreset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalidf("preset name cannot be empty")
	}
	if p.FuelConsumption < 0 {
		return invalidf("preset %q: fuel consumption must not be negative", p.Name)
	}
	if p.Passengers < 0 {
		return invalidf("preset %q: passengers must not be negative", p.Name)
	}
	return nil
}

// ApplyTo overwrites the vehicle fields of the settings with the preset's.
func (p VehiclePreset) ApplyTo(s FareSettings) FareSettings {
	s.FuelConsumption = p.FuelConsumption
	s.Passengers = p.Passengers
	return s
}
