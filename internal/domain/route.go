package domain

// CostMatrix holds pairwise travel costs (seconds or kilometers) between the
// coordinates of a request, row/column aligned with their order. It is not
// assumed to be symmetric. Unreachable pairs are +Inf.
type CostMatrix [][]float64

// RouteStep is one turn-by-turn instruction of a route.
type RouteStep struct {
	Instruction     string
	ManeuverType    string
	Modifier        string
	RoadName        string
	DistanceMeters  float64
	DurationSeconds float64
}

// RouteMetrics are the aggregate figures of a single route returned by a
// routing provider. Geometry is an encoded polyline (precision 5).
type RouteMetrics struct {
	DistanceKm       float64
	DurationSeconds  float64
	Geometry         string
	Steps            []RouteStep
	TollCost         *float64
	SnappedWaypoints []Coordinates
}

// RoutePair carries the toll-permitting and toll-avoiding variants of the same
// trip. A fetch is only successful when at least one of them is set.
type RoutePair struct {
	Toll     *RouteMetrics
	TollFree *RouteMetrics
}

// Empty reports whether neither variant is available.
func (p RoutePair) Empty() bool { return p.Toll == nil && p.TollFree == nil }

// Get returns the route for the given variant (nil if missing).
func (p RoutePair) Get(v RouteVariant) *RouteMetrics {
	if v == VariantTollFree {
		return p.TollFree
	}
	return p.Toll
}

// RouteVariant distinguishes the two fetched routes.
type RouteVariant string

const (
	VariantToll     RouteVariant = "toll"
	VariantTollFree RouteVariant = "toll_free"
)

// ParseRouteVariant maps wire names to a variant. Empty means toll.
func ParseRouteVariant(s string) (RouteVariant, error) {
	switch s {
	case "", "toll":
		return VariantToll, nil
	case "toll_free", "tollFree":
		return VariantTollFree, nil
	default:
		return "", invalidf("unknown route type %q", s)
	}
}
