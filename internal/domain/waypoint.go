package domain

import (
	"fmt"
	"strings"
)

// Waypoint is a named stop of a trip. The first waypoint of a sequence is the
// start, the last one is the end; everything in between is an intermediate
// stop that may be reordered.
type Waypoint struct {
	ID   string
	Name string
}

// TrimmedName is the normalized lookup key for the waypoint.
func (w Waypoint) TrimmedName() string { return strings.TrimSpace(w.Name) }

// ValidateWaypoints checks the invariants every calculation relies on:
// at least a start and an end, and a non-empty name for each stop.
func ValidateWaypoints(waypoints []Waypoint) error {
	if len(waypoints) < 2 {
		return fmt.Errorf("%w: at least two waypoints are required, got %d", ErrInvalidInput, len(waypoints))
	}

	for i, wp := range waypoints {
		if wp.TrimmedName() == "" {
			return &WaypointError{
				Index: i,
				ID:    wp.ID,
				Err:   fmt.Errorf("%w: waypoint name cannot be empty", ErrInvalidInput),
			}
		}
	}

	return nil
}

// Reorder returns a new slice holding items in the given index order.
func Reorder[T any](items []T, order []int) []T {
	out := make([]T, 0, len(order))
	for _, i := range order {
		out = append(out, items[i])
	}
	return out
}
