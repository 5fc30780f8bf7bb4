package route

import (
	"container/heap"
	"math"

	"github.com/dentflow/dentflow/pkg/flow"
)

// cell is a quantized grid coordinate.
type cell struct {
	col, row int
}

// search runs bounded A* over a 4-connected orthogonal grid quantized to
// GridCell pixels. Cells inside any obstacle are impassable. The search
// region is the bounding box of the two endpoints plus a working margin,
// so the grid stays small for nearby nodes. Returns false when the
// iteration cap is hit or no route exists inside the region.
func (r *Router) search(start, end flow.Point, obstacles []flow.Rect) ([]flow.Point, bool) {
	cellSize := r.cfg.GridCell
	margin := 12 * cellSize

	minX := math.Min(start.X, end.X) - margin
	maxX := math.Max(start.X, end.X) + margin
	minY := math.Min(start.Y, end.Y) - margin
	maxY := math.Max(start.Y, end.Y) + margin

	// Widen the region past any obstacle that intrudes on it, otherwise a
	// card sitting directly between the endpoints leaves no room to route
	// around. Bounded passes keep a chain of touching cards from growing
	// the grid unboundedly.
	for pass := 0; pass < 4; pass++ {
		grew := false
		for _, obs := range obstacles {
			if obs.X >= maxX || obs.X+obs.W <= minX || obs.Y >= maxY || obs.Y+obs.H <= minY {
				continue
			}
			if v := obs.X - cellSize; v < minX {
				minX, grew = v, true
			}
			if v := obs.X + obs.W + cellSize; v > maxX {
				maxX, grew = v, true
			}
			if v := obs.Y - cellSize; v < minY {
				minY, grew = v, true
			}
			if v := obs.Y + obs.H + cellSize; v > maxY {
				maxY, grew = v, true
			}
		}
		if !grew {
			break
		}
	}

	toCell := func(p flow.Point) cell {
		return cell{
			col: int(math.Round((p.X - minX) / cellSize)),
			row: int(math.Round((p.Y - minY) / cellSize)),
		}
	}
	toPoint := func(c cell) flow.Point {
		return flow.Point{X: minX + float64(c.col)*cellSize, Y: minY + float64(c.row)*cellSize}
	}
	maxCol := int(math.Ceil((maxX - minX) / cellSize))
	maxRow := int(math.Ceil((maxY - minY) / cellSize))

	blocked := func(c cell) bool {
		if c.col < 0 || c.row < 0 || c.col > maxCol || c.row > maxRow {
			return true
		}
		p := toPoint(c)
		for _, obs := range obstacles {
			if obsInterior(obs, p) {
				return true
			}
		}
		return false
	}

	startCell := toCell(start)
	endCell := toCell(end)
	if blocked(endCell) || blocked(startCell) {
		return nil, false
	}

	manhattan := func(c cell) int {
		return abs(c.col-endCell.col) + abs(c.row-endCell.row)
	}

	open := &cellHeap{}
	heap.Init(open)
	heap.Push(open, &cellNode{cell: startCell, h: manhattan(startCell)})

	gScore := map[cell]int{startCell: 0}
	cameFrom := map[cell]cell{}
	closed := map[cell]bool{}

	neighbours := [4]cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for iter := 0; open.Len() > 0; iter++ {
		if iter >= r.cfg.MaxIterations {
			return nil, false
		}
		curr := heap.Pop(open).(*cellNode)
		if curr.cell == endCell {
			return r.reconstruct(cameFrom, curr.cell, start, end, toPoint), true
		}
		if closed[curr.cell] {
			continue
		}
		closed[curr.cell] = true

		for _, d := range neighbours {
			next := cell{col: curr.cell.col + d.col, row: curr.cell.row + d.row}
			if closed[next] || blocked(next) {
				continue
			}
			tentative := gScore[curr.cell] + 1
			if best, seen := gScore[next]; seen && tentative >= best {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = curr.cell
			heap.Push(open, &cellNode{cell: next, g: tentative, h: manhattan(next)})
		}
	}
	return nil, false
}

// obsInterior reports whether p is strictly inside obs (border points are
// passable so paths can hug the padding boundary).
func obsInterior(obs flow.Rect, p flow.Point) bool {
	return p.X > obs.X && p.X < obs.X+obs.W && p.Y > obs.Y && p.Y < obs.Y+obs.H
}

// reconstruct walks the parent chain back to the start and converts it to
// pixel waypoints, splicing in the exact (unquantized) endpoints.
func (r *Router) reconstruct(cameFrom map[cell]cell, last cell, start, end flow.Point, toPoint func(cell) flow.Point) []flow.Point {
	cells := []cell{last}
	for {
		prev, ok := cameFrom[cells[len(cells)-1]]
		if !ok {
			break
		}
		cells = append(cells, prev)
	}

	points := make([]flow.Point, 0, len(cells)+2)
	points = append(points, start)
	for i := len(cells) - 1; i >= 0; i-- {
		points = append(points, toPoint(cells[i]))
	}
	points = append(points, end)
	return points
}

// cellNode is an A* frontier entry.
type cellNode struct {
	cell cell
	g    int // cost from start
	h    int // Manhattan heuristic to goal
}

func (n *cellNode) f() int { return n.g + n.h }

// cellHeap is a min-heap of frontier nodes ordered by f-score.
type cellHeap []*cellNode

func (h cellHeap) Len() int            { return len(h) }
func (h cellHeap) Less(i, j int) bool  { return h[i].f() < h[j].f() }
func (h cellHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x any)         { *h = append(*h, x.(*cellNode)) }
func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
