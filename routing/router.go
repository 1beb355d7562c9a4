package routing

import (
	"log"
)

// DefaultLengthTolerance is how far a realized length may drift from its target.
const DefaultLengthTolerance = 1e-6

// RouteContext is the read-only input the router needs besides the endpoints.
type RouteContext struct {
	StepSize       float64 // A* lattice pitch
	AvoidCollision bool
	SearchBudget   int // max A* node expansions per segment
	Obstacles      *ObstacleIndex
	Meander        MeanderOptions
	Tolerance      float64
}

// DefaultRouteContext mirrors the usual qubit-bus defaults in millimetres.
func DefaultRouteContext() RouteContext {
	return RouteContext{
		StepSize:       0.25,
		AvoidCollision: true,
		SearchBudget:   DefaultSearchBudget,
		Meander: MeanderOptions{
			Spacing:           0.2,
			PreventShortEdges: true,
			MinEdgeLength:     0.18,
		},
		Tolerance: DefaultLengthTolerance,
	}
}

// RouteSegment is the resolved geometry between two consecutive control points.
// Points exclude From and end on the segment's end point.
type RouteSegment struct {
	Index    int
	Strategy Strategy
	From     Point
	Target   float64 // requested length, meanders only
	Warning  error   // non-fatal condition raised while routing, if any

	points []Point
}

// Points returns a copy of the segment geometry.
func (s RouteSegment) Points() []Point {
	return append([]Point(nil), s.points...)
}

// To is the end control point.
func (s RouteSegment) To() Point { return s.points[len(s.points)-1] }

// Length of the segment measured from From.
func (s RouteSegment) Length() float64 {
	return PathLength(append([]Point{s.From}, s.points...))
}

// SegmentRouter turns (strategy, from, to) into geometry.
type SegmentRouter struct {
	ctx RouteContext
}

func NewSegmentRouter(ctx RouteContext) *SegmentRouter {
	if ctx.Tolerance <= 0 {
		ctx.Tolerance = DefaultLengthTolerance
	}
	if ctx.SearchBudget <= 0 {
		ctx.SearchBudget = DefaultSearchBudget
	}
	return &SegmentRouter{ctx: ctx}
}

// Route draws segment index with strategy s. target is used by Meandered only.
func (r *SegmentRouter) Route(index int, s Strategy, from, to Point, target float64) (RouteSegment, error) {
	seg := RouteSegment{Index: index, Strategy: s, From: from}

	switch s {
	case Straight:
		seg.points = []Point{to}

	case AStarOrSimple:
		seg.points, seg.Warning = r.pathfind(index, from, to)

	case Meandered:
		seg.Target = target
		res := meander(from, to, target, r.ctx.Meander, r.ctx.Tolerance)
		seg.points = res.points
		if res.shortBy != "" {
			w := &LengthUnsatisfiedWarning{
				Segment:   index,
				Requested: target,
				Achieved:  res.achieved,
				Reason:    res.shortBy,
			}
			log.Printf("⚠️  %v", w)
			seg.Warning = w
		}

	default:
		return RouteSegment{}, &InvalidStrategyError{Segment: index, Tag: s.Tag()}
	}

	return seg, nil
}

// pathfind is the AStarOrSimple strategy: straight when nothing is in the way,
// A* otherwise, straight again (with a warning) when the search gives up.
func (r *SegmentRouter) pathfind(index int, from, to Point) ([]Point, error) {
	if !r.ctx.AvoidCollision || from.Near(to, PointTolerance) || r.ctx.Obstacles.SegmentClear(from, to) {
		return []Point{to}, nil
	}

	res := searchGrid(from, to, r.ctx.StepSize, r.ctx.Obstacles, r.ctx.SearchBudget)
	if res.found {
		return res.path, nil
	}

	w := &SearchFallbackWarning{Segment: index, Explored: res.explored, Reason: res.reason}
	log.Printf("⚠️  %v (straight-line estimate %d steps)", w, gridDistance(from, to, r.ctx.StepSize))
	return []Point{to}, w
}
