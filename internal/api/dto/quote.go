package dto

type WaypointRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type QuoteRequest struct {
	Waypoints    []WaypointRequest    `json:"waypoints"`
	OptimizeFor  string               `json:"optimize_for"`
	Settings     *FareSettingsRequest `json:"settings"`
	PresetID     string               `json:"preset_id"`
	RouteType    string               `json:"route_type"`
	SkipTollFree bool                 `json:"skip_toll_free"`
	IncludePath  bool                 `json:"include_path"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type WaypointResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type RouteStepResponse struct {
	Instruction     string  `json:"instruction"`
	Maneuver        string  `json:"maneuver,omitempty"`
	Modifier        string  `json:"modifier,omitempty"`
	Road            string  `json:"road,omitempty"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type RouteResponse struct {
	DistanceKm       float64               `json:"distance_km"`
	DurationSeconds  float64               `json:"duration_seconds"`
	DurationText     string                `json:"duration_text"`
	TollCost         *float64              `json:"toll_cost,omitempty"`
	Geometry         string                `json:"geometry,omitempty"`
	Path             []CoordinatesResponse `json:"path,omitempty"`
	Steps            []RouteStepResponse   `json:"steps"`
	SnappedWaypoints []CoordinatesResponse `json:"snapped_waypoints,omitempty"`
}

type RoutesResponse struct {
	Toll     *RouteResponse `json:"toll"`
	TollFree *RouteResponse `json:"toll_free"`
}

type FaresResponse struct {
	Toll     *FareResponse `json:"toll"`
	TollFree *FareResponse `json:"toll_free"`
}

type QuoteResponse struct {
	Generation    uint64               `json:"generation"`
	Waypoints     []WaypointResponse   `json:"waypoints"`
	Order         []int                `json:"order"`
	Reordered     bool                 `json:"reordered"`
	Routes        RoutesResponse       `json:"routes"`
	TollFreeError string               `json:"toll_free_error,omitempty"`
	Settings      FareSettingsResponse `json:"settings"`
	Fares         FaresResponse        `json:"fares"`
	Selected      string               `json:"selected"`
	Summary       string               `json:"summary"`
	CopyValue     int64                `json:"copy_value"`
}
