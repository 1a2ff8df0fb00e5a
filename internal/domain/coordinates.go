package domain

import "strconv"

// Immutable geographic coordinates (WGS84, decimal degrees).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// PathSegment formats the coordinates as "lon,lat", the form used in OSRM URL paths.
func (c Coordinates) PathSegment() string {
	return strconv.FormatFloat(c.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
}
