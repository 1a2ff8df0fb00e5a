package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any collaborator is called.
	ErrInvalidInput = errors.New("invalid input")
	// ErrLocationNotFound means the geocoder had no match for a name.
	ErrLocationNotFound = errors.New("location not found")
	// ErrLookupFailed means the geocoder could not be reached or answered badly.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrMatrix means the cost matrix needed for reordering was unavailable.
	ErrMatrix = errors.New("cost matrix unavailable")
	// ErrPrimaryRoute means the toll-permitting route could not be fetched.
	ErrPrimaryRoute = errors.New("primary route failed")
	// ErrNoRoute means no route variant could be fetched.
	ErrNoRoute = errors.New("no route found")
	// ErrSuperseded means a newer calculation for the same session replaced this one.
	ErrSuperseded = errors.New("calculation superseded")
	// ErrPresetNotFound is returned for unknown preset ids.
	ErrPresetNotFound = errors.New("preset not found")
	// ErrFareOverflow means the inputs price to a fare beyond float64 range.
	ErrFareOverflow = errors.New("fare is not representable")
	// ErrProviderResponse means a provider answered with data that cannot be used.
	ErrProviderResponse = errors.New("invalid provider response")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// WaypointError ties a failure to the waypoint that caused it.
type WaypointError struct {
	Index int
	ID    string
	Name  string
	Err   error
}

func (e *WaypointError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("waypoint %d (%q): %v", e.Index+1, e.Name, e.Err)
	}
	return fmt.Sprintf("waypoint %d: %v", e.Index+1, e.Err)
}

func (e *WaypointError) Unwrap() error { return e.Err }

// RouteError ties a route fetch failure to its variant.
type RouteError struct {
	Variant RouteVariant
	Err     error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("%s route: %v", e.Variant, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }
