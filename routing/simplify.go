package routing

import "math"

// collinearTolerance bounds |sin| of the angle between two direction vectors
// still treated as parallel.
const collinearTolerance = 1e-12

// RemoveCollinear drops consecutive duplicates and the middle point of every
// forward-parallel triple. Reversals are kept, so the polyline shape and length
// are unchanged. The result is a fixed point: RemoveCollinear(RemoveCollinear(p))
// equals RemoveCollinear(p).
func RemoveCollinear(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Near(p, PointTolerance) {
			continue
		}
		for len(out) >= 2 && forwardParallel(out[len(out)-2], out[len(out)-1], p) {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}
	return out
}

// forwardParallel reports whether b sits on the straight run from a to c.
func forwardParallel(a, b, c Point) bool {
	v1 := b.Sub(a)
	v2 := c.Sub(b)
	n1, n2 := v1.Norm(), v2.Norm()
	if n1 <= PointTolerance || n2 <= PointTolerance {
		return true
	}
	if v1.Dot(v2) <= 0 {
		return false
	}
	return math.Abs(v1.Cross(v2)) <= collinearTolerance*n1*n2
}
