package routing

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minRectSide keeps rtreego from rejecting zero-width boxes (axis-aligned segments, slivers).
const minRectSide = 1e-9

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	obstacle Obstacle
	bbox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// ObstacleIndex answers keep-out queries for the pathfinder. A nil index has no obstacles.
type ObstacleIndex struct {
	tree      *rtreego.Rtree
	obstacles []Obstacle
	bound     orb.Bound
}

// NewObstacleIndex creates a new spatial index
func NewObstacleIndex(obstacles []Obstacle) *ObstacleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	idx := &ObstacleIndex{tree: tree}
	for _, o := range obstacles {
		if len(o.Ring) < 3 {
			continue
		}
		b := o.Bound()
		bbox, err := boundToRect(b)
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{obstacle: o, bbox: bbox})
		if len(idx.obstacles) == 0 {
			idx.bound = b
		} else {
			idx.bound = idx.bound.Union(b)
		}
		idx.obstacles = append(idx.obstacles, o)
	}

	return idx
}

// Len is the number of indexed obstacles.
func (idx *ObstacleIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.obstacles)
}

// Obstacles returns the indexed obstacles in insertion order.
func (idx *ObstacleIndex) Obstacles() []Obstacle {
	if idx == nil {
		return nil
	}
	out := make([]Obstacle, len(idx.obstacles))
	copy(out, idx.obstacles)
	return out
}

// QueryRegion returns obstacles whose bounding box intersects the given box
func (idx *ObstacleIndex) QueryRegion(minX, minY, maxX, maxY float64) []Obstacle {
	if idx.Len() == 0 {
		return nil
	}

	// Widened so boxes touching only at an edge still match.
	bbox, err := boundToRect(orb.Bound{
		Min: orb.Point{minX - minRectSide, minY - minRectSide},
		Max: orb.Point{maxX + minRectSide, maxY + minRectSide},
	})
	if err != nil {
		return nil
	}

	results := idx.tree.SearchIntersect(bbox)
	obstacles := make([]Obstacle, 0, len(results))
	for _, item := range results {
		obstacles = append(obstacles, item.(*obstacleEntry).obstacle)
	}
	return obstacles
}

// SegmentClear checks if a straight line between two points avoids every obstacle.
func (idx *ObstacleIndex) SegmentClear(a, b Point) bool {
	if idx.Len() == 0 {
		return true
	}
	minX, minY, maxX, maxY := segmentBox(a, b, 0)
	for _, o := range idx.QueryRegion(minX, minY, maxX, maxY) {
		if o.Blocks(a, b) {
			return false
		}
	}
	return true
}

// PointFree reports whether p lies outside every obstacle.
func (idx *ObstacleIndex) PointFree(p Point) bool {
	if idx.Len() == 0 {
		return true
	}
	for _, o := range idx.QueryRegion(p.X, p.Y, p.X, p.Y) {
		if o.Contains(p) {
			return false
		}
	}
	return true
}

// Bound is the union of all obstacle boxes; ok is false for an empty index.
func (idx *ObstacleIndex) Bound() (b orb.Bound, ok bool) {
	if idx.Len() == 0 {
		return orb.Bound{}, false
	}
	return idx.bound, true
}

func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{
			math.Max(b.Max[0]-b.Min[0], minRectSide),
			math.Max(b.Max[1]-b.Min[1], minRectSide),
		},
	)
}

// segmentBox calculates the bounding box for a segment with margin
func segmentBox(a, b Point, margin float64) (minX, minY, maxX, maxY float64) {
	minX = math.Min(a.X, b.X) - margin
	maxX = math.Max(a.X, b.X) + margin
	minY = math.Min(a.Y, b.Y) - margin
	maxY = math.Max(a.Y, b.Y) + margin
	return
}
