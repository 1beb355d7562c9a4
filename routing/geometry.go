package routing

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PointTolerance is the distance under which two points are treated as identical.
const PointTolerance = 1e-9

// Point is a 2D coordinate in millimetres.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(o Point) float64 { return p.X*o.X + p.Y*o.Y }
func (p Point) Cross(o Point) float64 { return p.X*o.Y - p.Y*o.X }
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Near(o Point, tol float64) bool { return p.Distance(o) <= tol }

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Unit returns p scaled to length 1. A zero vector is returned unchanged.
func (p Point) Unit() Point {
	n := p.Norm()
	if n == 0 {
		return p
	}
	return Point{p.X / n, p.Y / n}
}

// RotateLeft turns a direction vector by +90 degrees.
func (p Point) RotateLeft() Point { return Point{-p.Y, p.X} }

// RotateRight turns a direction vector by -90 degrees.
func (p Point) RotateRight() Point { return Point{p.Y, -p.X} }

func (p Point) Orb() orb.Point { return orb.Point{p.X, p.Y} }

func FromOrb(o orb.Point) Point { return Point{X: o[0], Y: o[1]} }

// LineString converts a point sequence into an orb geometry.
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.Orb()
	}
	return ls
}

// PathLength is the sum of consecutive Euclidean distances.
func PathLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	return planar.Length(LineString(points))
}

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

// DoSegmentsIntersect checks if two line segments intersect
func DoSegmentsIntersect(seg1, seg2 LineSegment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	if (p1 == p3 && p2 == p4) || (p1 == p4 && p2 == p3) {
		return false
	}
	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear touches count as intersections.
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment checks if point q lies within the bounding box of segment pr
func onSegment(p, r, q Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// Obstacle is a keep-out region traces must route around.
type Obstacle struct {
	Name string
	Ring orb.Ring
}

// Contains reports whether p lies inside the obstacle or on its boundary.
func (o Obstacle) Contains(p Point) bool {
	if len(o.Ring) < 3 {
		return false
	}
	return planar.RingContains(o.Ring, p.Orb())
}

// Blocks checks whether the straight segment ab touches the obstacle.
func (o Obstacle) Blocks(a, b Point) bool {
	n := len(o.Ring)
	if n < 3 {
		return false
	}

	seg := LineSegment{P1: a, P2: b}
	for i := 0; i < n; i++ {
		edge := LineSegment{
			P1: FromOrb(o.Ring[i]),
			P2: FromOrb(o.Ring[(i+1)%n]),
		}
		if DoSegmentsIntersect(seg, edge) {
			return true
		}
	}

	if o.Contains(a) || o.Contains(b) {
		return true
	}

	// Midpoint catches segments lying entirely inside.
	return o.Contains(Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2})
}

// Bound is the axis-aligned bounding box of the obstacle.
func (o Obstacle) Bound() orb.Bound {
	return o.Ring.Bound()
}
