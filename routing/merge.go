package routing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MergeContained drops obstacles that lie completely inside another obstacle.
// Nested keep-out regions add pathfinder work without changing which cells are blocked.
func MergeContained(obstacles []Obstacle) []Obstacle {
	if len(obstacles) <= 1 {
		return obstacles
	}

	contained := make([]bool, len(obstacles))
	for i := 0; i < len(obstacles); i++ {
		if contained[i] {
			continue
		}

		for j := 0; j < len(obstacles); j++ {
			if i == j || contained[j] {
				continue
			}

			if isContainedIn(obstacles[i], obstacles[j]) {
				contained[i] = true
				break
			}

			if isContainedIn(obstacles[j], obstacles[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]Obstacle, 0, len(obstacles))
	for i, o := range obstacles {
		if !contained[i] {
			result = append(result, o)
		}
	}
	return result
}

// isContainedIn checks if obstacle a is fully inside obstacle b
func isContainedIn(a, b Obstacle) bool {
	if len(a.Ring) == 0 || len(b.Ring) < 3 {
		return false
	}

	if !boundContains(b.Bound(), a.Bound()) {
		return false
	}

	for _, v := range a.Ring {
		if !planar.RingContains(b.Ring, v) {
			return false
		}
	}
	return true
}

// boundContains checks if inner lies within outer
func boundContains(outer, inner orb.Bound) bool {
	return outer.Contains(inner.Min) && outer.Contains(inner.Max)
}
