package routing

import "math"

// DefaultMaxMeanderTurns bounds the turn count when MeanderOptions.MaxTurns is unset.
const DefaultMaxMeanderTurns = 500

// MeanderOptions shape the serpentine drawn for Meandered segments.
type MeanderOptions struct {
	Spacing           float64 // minimum distance between adjacent legs
	Asymmetry         float64 // centerline offset, positive to the left of travel
	PreventShortEdges bool
	MinEdgeLength     float64 // enforced only with PreventShortEdges
	MaxTurns          int     // 0 means DefaultMaxMeanderTurns
}

// meanderResult is the geometry for one meander plus why it missed its target, if it did.
type meanderResult struct {
	points   []Point // excludes from, ends with to
	achieved float64
	shortBy  string
}

// meanderShape is a solved serpentine in chord-local coordinates.
type meanderShape struct {
	turns     int     // number of connectors between legs
	amplitude float64 // leg half-height around the centerline
	pitch     float64 // distance between legs along the chord
}

// extraLength is what a shape adds over the straight chord. Legs alternate around
// centerline c; with an odd turn count the first and last legs both sit on the +c side.
func extraLength(turns int, amplitude, c float64) float64 {
	extra := 2 * amplitude * float64(turns)
	if turns%2 == 1 {
		extra += 2 * c
	}
	return extra
}

// meander draws a serpentine from `from` to `to` whose length equals target.
// Legs run perpendicular to the chord, one pitch apart, so no two legs come closer
// than the configured spacing. The densest shape meeting the short-edge limit wins.
func meander(from, to Point, target float64, opts MeanderOptions, tol float64) meanderResult {
	chord := from.Distance(to)
	straight := meanderResult{points: []Point{to}, achieved: chord}

	extra := target - chord
	switch {
	case chord <= PointTolerance:
		if target > tol {
			straight.shortBy = "meander endpoints coincide"
		}
		return straight
	case extra < -tol:
		straight.shortBy = "target is shorter than the straight-line distance"
		return straight
	case extra <= tol:
		return straight
	}

	minEdge := 0.0
	pitch := opts.Spacing
	if opts.PreventShortEdges {
		minEdge = math.Max(opts.MinEdgeLength, 0)
		pitch = math.Max(pitch, minEdge)
	}
	if pitch <= 0 {
		straight.shortBy = "meander spacing must be positive"
		return straight
	}

	gap := math.Max(pitch/2, minEdge)
	maxTurns := int(math.Floor((chord-2*gap)/pitch + 1e-9))
	if maxTurns < 1 {
		straight.shortBy = "straight-line distance too short for one meander turn"
		return straight
	}
	// Fewer turns only make the legs taller.
	limit := opts.MaxTurns
	if limit <= 0 {
		limit = DefaultMaxMeanderTurns
	}
	maxTurns = min(maxTurns, limit)

	c := opts.Asymmetry
	minAmplitude := math.Abs(c) + minEdge

	for turns := maxTurns; turns >= 1; turns-- {
		odd := 0.0
		if turns%2 == 1 {
			odd = 2 * c
		}
		amplitude := (extra - odd) / (2 * float64(turns))
		if amplitude >= minAmplitude-tol {
			shape := meanderShape{turns: turns, amplitude: math.Max(amplitude, minAmplitude), pitch: pitch}
			points := shape.trace(from, to, c)
			return meanderResult{points: points, achieved: PathLength(append([]Point{from}, points...))}
		}
	}

	// Too little extra length for even one legal turn. Keep whichever of the
	// straight chord and the smallest legal meander lands closer to the target.
	smallest := meanderShape{turns: 1, amplitude: minAmplitude, pitch: pitch}
	reason := "spacing and short-edge limits leave no meander with the requested length"
	if extraLength(1, minAmplitude, c)-extra < extra {
		points := smallest.trace(from, to, c)
		return meanderResult{
			points:   points,
			achieved: PathLength(append([]Point{from}, points...)),
			shortBy:  reason,
		}
	}
	straight.shortBy = reason
	return straight
}

// trace lays the shape out between from and to. The pattern is centred on the chord.
func (m meanderShape) trace(from, to Point, c float64) []Point {
	chord := from.Distance(to)
	u := to.Sub(from).Unit()
	n := u.RotateLeft()
	at := func(x, y float64) Point {
		return from.Add(u.Scale(x)).Add(n.Scale(y))
	}

	gap := (chord - float64(m.turns)*m.pitch) / 2
	points := make([]Point, 0, 2*m.turns+3)
	points = append(points, at(gap, 0))
	for i := 0; i < m.turns; i++ {
		y := c + m.amplitude
		if i%2 == 1 {
			y = c - m.amplitude
		}
		x := gap + float64(i)*m.pitch
		points = append(points, at(x, y), at(x+m.pitch, y))
	}
	points = append(points, at(gap+float64(m.turns)*m.pitch, 0), to)
	return points
}
