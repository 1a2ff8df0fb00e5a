package dto

type PresetRequest struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FuelConsumption float64 `json:"fuel_consumption"`
	Passengers      int     `json:"passengers"`
}

type PresetResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FuelConsumption float64 `json:"fuel_consumption"`
	Passengers      int     `json:"passengers"`
}

type ListPresetsResponse struct {
	Presets []PresetResponse `json:"presets"`
}
