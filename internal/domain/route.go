package domain

import "fmt"

// RouteCandidate is one drivable route returned by the routing service.
// The first candidate of a lookup is the service's default route.
type RouteCandidate struct {
	Geometry        []Coordinate
	DistanceMeters  float64
	DurationSeconds float64
}

// Summary returns the formatted distance and duration of the route.
func (r RouteCandidate) Summary() (distance, duration string) {
	return FormatDistance(r.DistanceMeters), FormatDuration(r.DurationSeconds)
}

// DropoffPopup is the text attached to the dropoff marker for the headline route.
func (r RouteCandidate) DropoffPopup() string {
	distance, duration := r.Summary()
	return fmt.Sprintf("Distance: %s<br>Duration: %s", distance, duration)
}

// RoutePopup is the text attached to the n-th (1-based) route overlay.
func (r RouteCandidate) RoutePopup(n int) string {
	distance, duration := r.Summary()
	return fmt.Sprintf("Route %d: %s<br>Distance: %s", n, duration, distance)
}
