package routing

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy selects how one segment between control points is drawn.
type Strategy int

const (
	Straight Strategy = iota
	AStarOrSimple
	Meandered
)

// ParseStrategy maps a connection tag to a Strategy. Short tags are the ones route
// definitions use (S, PF, M); the long names are accepted case-insensitively.
func ParseStrategy(tag string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "s", "straight", "simple":
		return Straight, nil
	case "pf", "astar", "pathfinder":
		return AStarOrSimple, nil
	case "m", "meander", "meandered":
		return Meandered, nil
	}
	return Straight, &InvalidStrategyError{Segment: -1, Tag: tag}
}

// Tag is the short form used in route definitions.
func (s Strategy) Tag() string {
	switch s {
	case Straight:
		return "S"
	case AStarOrSimple:
		return "PF"
	case Meandered:
		return "M"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (s Strategy) String() string {
	switch s {
	case Straight:
		return "straight"
	case AStarOrSimple:
		return "astar"
	case Meandered:
		return "meander"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// AnchorGraph is the ordered list of intermediate anchors plus the strategy chosen
// for each segment. Segment 0 runs from the lead-in tip to the first anchor and
// segment N from the last anchor to the lead-out tip.
type AnchorGraph struct {
	anchors    []Point
	strategies []Strategy
}

// NewAnchorGraph validates every tag before any geometry is computed. Segments
// missing from between default to Straight.
func NewAnchorGraph(anchors []Point, between map[int]string) (*AnchorGraph, error) {
	g := &AnchorGraph{
		anchors:    append([]Point(nil), anchors...),
		strategies: make([]Strategy, len(anchors)+1),
	}

	keys := make([]int, 0, len(between))
	for k := range between {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		if k < 0 || k > len(anchors) {
			return nil, fmt.Errorf("between_anchors key %d with %d anchor(s): %w", k, len(anchors), ErrSegmentIndex)
		}
		s, err := ParseStrategy(between[k])
		if err != nil {
			return nil, &InvalidStrategyError{Segment: k, Tag: between[k]}
		}
		g.strategies[k] = s
	}

	return g, nil
}

// Anchors returns a copy of the intermediate anchors.
func (g *AnchorGraph) Anchors() []Point {
	return append([]Point(nil), g.anchors...)
}

// Segments is the number of segments, one more than the anchor count.
func (g *AnchorGraph) Segments() int { return len(g.strategies) }

func (g *AnchorGraph) Strategy(i int) Strategy { return g.strategies[i] }

// Endpoints returns the control points joined by segment i.
func (g *AnchorGraph) Endpoints(i int, startTip, endTip Point) (from, to Point) {
	from, to = startTip, endTip
	if i > 0 {
		from = g.anchors[i-1]
	}
	if i < len(g.anchors) {
		to = g.anchors[i]
	}
	return from, to
}

// MeanderCount is the number of Meandered segments.
func (g *AnchorGraph) MeanderCount() int {
	n := 0
	for _, s := range g.strategies {
		if s == Meandered {
			n++
		}
	}
	return n
}
