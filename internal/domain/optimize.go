package domain

// Metric selects which cost a matrix carries.
type Metric string

const (
	MetricDuration Metric = "duration"
	MetricDistance Metric = "distance"
)

// OptimizeMode controls whether intermediate stops get reordered.
type OptimizeMode string

const (
	KeepOrder        OptimizeMode = "order"
	MinimizeDuration OptimizeMode = "duration"
	MinimizeDistance OptimizeMode = "distance"
)

// ParseOptimizeMode accepts the wire names; empty keeps the current order.
func ParseOptimizeMode(s string) (OptimizeMode, error) {
	switch OptimizeMode(s) {
	case "", KeepOrder:
		return KeepOrder, nil
	case MinimizeDuration, MinimizeDistance:
		return OptimizeMode(s), nil
	default:
		return "", invalidf("unknown optimize mode %q", s)
	}
}

// Metric returns the matrix metric to optimize for. KeepOrder has none.
func (m OptimizeMode) Metric() (Metric, bool) {
	switch m {
	case MinimizeDuration:
		return MetricDuration, true
	case MinimizeDistance:
		return MetricDistance, true
	default:
		return "", false
	}
}
