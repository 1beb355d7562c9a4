package routing

// Assemble joins ordered point sequences into one polyline. A part that begins on
// the point the previous part ended on contributes that point once. Collinear and
// duplicate points are then removed; fewer than two distinct points left is an error.
func Assemble(parts ...[]Point) ([]Point, error) {
	total := 0
	for _, part := range parts {
		total += len(part)
	}

	joined := make([]Point, 0, total)
	for _, part := range parts {
		for i, p := range part {
			if i == 0 && len(joined) > 0 && joined[len(joined)-1].Near(p, PointTolerance) {
				continue
			}
			joined = append(joined, p)
		}
	}

	points := RemoveCollinear(joined)
	if len(points) < 2 {
		return nil, &DegenerateRouteError{Distinct: len(points)}
	}
	return points, nil
}

// reversed returns a reversed copy of points.
func reversed(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}
