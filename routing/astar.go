package routing

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb"
)

// DefaultSearchBudget caps the number of grid nodes one A* search may expand.
const DefaultSearchBudget = 20000

// gridCell addresses a lattice point origin + (I, J) * step.
type gridCell struct {
	I, J int
}

// searchNode represents a node in the A* search
type searchNode struct {
	cell   gridCell
	goal   bool    // the exact end point, reached by a final straight hop
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to end
	F      float64 // Total cost (G + H)
	Parent *searchNode
	Index  int // Index in the heap
}

// searchQueue implements heap.Interface for A* algorithm
type searchQueue []*searchNode

func (pq searchQueue) Len() int { return len(pq) }

func (pq searchQueue) Less(i, j int) bool {
	return pq[i].F < pq[j].F
}

func (pq searchQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *searchQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *searchQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

var gridMoves = []gridCell{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// gridSearch is one bounded A* query on a lattice anchored at the start point.
type gridSearch struct {
	start, end Point
	step       float64
	obstacles  *ObstacleIndex
	budget     int
	window     orb.Bound
}

func (s *gridSearch) point(c gridCell) Point {
	return Point{
		X: s.start.X + float64(c.I)*s.step,
		Y: s.start.Y + float64(c.J)*s.step,
	}
}

// searchResult reports the outcome of a grid search.
type searchResult struct {
	path     []Point // excludes the start, ends with the end point
	explored int
	found    bool
	reason   string
}

// searchGrid runs A* from start to end over a 4-connected lattice with pitch step.
// Every lattice node may hop straight to the end point when that hop is clear,
// so the returned path always finishes exactly on end.
func searchGrid(start, end Point, step float64, obstacles *ObstacleIndex, budget int) searchResult {
	if step <= 0 {
		return searchResult{reason: "step size must be positive"}
	}
	if budget <= 0 {
		budget = DefaultSearchBudget
	}

	s := &gridSearch{
		start:     start,
		end:       end,
		step:      step,
		obstacles: obstacles,
		budget:    budget,
		window:    searchWindow(start, end, step, obstacles),
	}
	return s.run()
}

// searchWindow grows the start/end box by every obstacle it touches, a few rounds deep,
// so detours around those obstacles stay inside the lattice.
func searchWindow(start, end Point, step float64, obstacles *ObstacleIndex) orb.Bound {
	window := orb.Bound{Min: start.Orb(), Max: start.Orb()}.Extend(end.Orb())
	for round := 0; round < 4; round++ {
		grown := window
		for _, o := range obstacles.QueryRegion(window.Min[0], window.Min[1], window.Max[0], window.Max[1]) {
			grown = grown.Union(o.Bound())
		}
		if grown == window {
			break
		}
		window = grown
	}
	return window.Pad(2 * step)
}

func (s *gridSearch) run() searchResult {
	origin := &searchNode{
		cell: gridCell{0, 0},
		H:    s.start.Distance(s.end),
	}
	origin.F = origin.H

	openSet := &searchQueue{}
	heap.Init(openSet)
	heap.Push(openSet, origin)

	closedSet := make(map[gridCell]bool)
	openSetMap := map[gridCell]*searchNode{origin.cell: origin}
	var goal *searchNode

	explored := 0
	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)
		if current.goal {
			return searchResult{path: s.reconstruct(current), explored: explored, found: true}
		}

		delete(openSetMap, current.cell)
		closedSet[current.cell] = true
		explored++
		if explored > s.budget {
			return searchResult{explored: explored, reason: "search budget exhausted"}
		}

		here := s.point(current.cell)

		// Final hop to the exact end point.
		if s.obstacles.SegmentClear(here, s.end) {
			g := current.G + here.Distance(s.end)
			if goal == nil {
				goal = &searchNode{goal: true, G: g, F: g, Parent: current}
				heap.Push(openSet, goal)
			} else if g < goal.G {
				goal.G, goal.F, goal.Parent = g, g, current
				heap.Fix(openSet, goal.Index)
			}
		}

		for _, move := range gridMoves {
			cell := gridCell{current.cell.I + move.I, current.cell.J + move.J}
			if closedSet[cell] {
				continue
			}

			next := s.point(cell)
			if !s.window.Contains(next.Orb()) {
				continue
			}
			if !s.obstacles.SegmentClear(here, next) {
				continue
			}

			tentativeG := current.G + s.step
			neighbor, exists := openSetMap[cell]
			if !exists {
				neighbor = &searchNode{
					cell:   cell,
					G:      tentativeG,
					H:      next.Distance(s.end),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				heap.Push(openSet, neighbor)
				openSetMap[cell] = neighbor
			} else if tentativeG < neighbor.G {
				neighbor.G = tentativeG
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return searchResult{explored: explored, reason: "no path inside the search window"}
}

// reconstruct walks parents back to the origin; the origin itself is left out.
func (s *gridSearch) reconstruct(goal *searchNode) []Point {
	path := []Point{s.end}
	for node := goal.Parent; node != nil && node.Parent != nil; node = node.Parent {
		path = append(path, s.point(node.cell))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// gridDistance is the lattice-step estimate used for logging search effort.
func gridDistance(a, b Point, step float64) int {
	if step <= 0 {
		return 0
	}
	return int(math.Ceil((math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)) / step))
}
