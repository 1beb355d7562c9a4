package routing

import (
	"errors"
	"fmt"
)

// Fatal planning errors. Typed errors below unwrap to these so callers can use errors.Is.
var (
	ErrInvalidStrategy = errors.New("invalid connection strategy")
	ErrSegmentIndex    = errors.New("segment index out of range")
	ErrInvalidJog      = errors.New("invalid jogged extension")
	ErrInvalidPin      = errors.New("invalid pin")
	ErrPinNotFound     = errors.New("pin not found")
	ErrDegenerateRoute = errors.New("degenerate route")
)

// Non-fatal conditions surfaced on RoutePlan.Warnings.
var (
	ErrLengthUnsatisfied = errors.New("meander length unsatisfied")
	ErrSearchFallback    = errors.New("pathfinder fell back to a straight line")
)

// InvalidStrategyError reports an unknown connection tag for a segment.
type InvalidStrategyError struct {
	Segment int
	Tag     string
}

func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("segment %d: unknown connection tag %q (want S, PF or M)", e.Segment, e.Tag)
}

func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// DegenerateRouteError is returned when assembly leaves fewer than two distinct points.
type DegenerateRouteError struct {
	Distinct int
}

func (e *DegenerateRouteError) Error() string {
	return fmt.Sprintf("route has %d distinct point(s) after trimming, need at least 2", e.Distinct)
}

func (e *DegenerateRouteError) Unwrap() error { return ErrDegenerateRoute }

// LengthUnsatisfiedWarning is raised when a meander could not reach its target length
// without breaking spacing or short-edge constraints. The segment still carries the
// best feasible geometry.
type LengthUnsatisfiedWarning struct {
	Segment   int
	Requested float64
	Achieved  float64
	Reason    string
}

func (w *LengthUnsatisfiedWarning) Error() string {
	return fmt.Sprintf("segment %d: meander length %.4f requested, %.4f achieved: %s",
		w.Segment, w.Requested, w.Achieved, w.Reason)
}

func (w *LengthUnsatisfiedWarning) Unwrap() error { return ErrLengthUnsatisfied }

// SearchFallbackWarning is raised when the A* search gave up and the segment was drawn straight.
type SearchFallbackWarning struct {
	Segment  int
	Explored int
	Reason   string
}

func (w *SearchFallbackWarning) Error() string {
	return fmt.Sprintf("segment %d: pathfinder fell back to a straight line after %d nodes: %s",
		w.Segment, w.Explored, w.Reason)
}

func (w *SearchFallbackWarning) Unwrap() error { return ErrSearchFallback }
