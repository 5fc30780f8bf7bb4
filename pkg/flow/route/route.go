// Package route computes visual paths for questionnaire flow edges.
//
// Every node card (expanded by a fixed padding) is treated as a
// rectangular obstacle. Routing tries the cheap options first: a straight
// drop, then a small set of one- and two-bend orthogonal candidates.
// When no candidate is clear, an A* search over a quantized orthogonal
// grid takes over, bounded by an iteration cap so a pathological layout
// can never stall the caller. If even the search exhausts its budget,
// a guaranteed two-bend path through the vertical midpoint is emitted:
// routing always produces a renderable path and never returns an error.
//
// Parallel edges sharing a target fan their source-side anchors across a
// symmetric horizontal range (and edges sharing a source fan their
// target-side anchors); the two offsets are independent and compose.
package route

import (
	"math"
	"slices"

	"github.com/dentflow/dentflow/pkg/flow"
)

// Config holds the routing constants.
type Config struct {
	ObstaclePadding float64 // padding around node boxes when treated as obstacles
	EndpointGap     float64 // gap between a card border and the path endpoint
	FanRange        float64 // half-width of the symmetric fan-out range
	GridCell        float64 // A* grid cell size
	MaxIterations   int     // A* iteration cap
	MarkerRadius    float64 // radius of the add-child midpoint marker
}

// DefaultConfig returns the routing constants used by the console.
func DefaultConfig() Config {
	return Config{
		ObstaclePadding: 12,
		EndpointGap:     5,
		FanRange:        30,
		GridCell:        5,
		MaxIterations:   5000,
		MarkerRadius:    10,
	}
}

// Path is the routed representation of one edge.
type Path struct {
	Edge       flow.Edge
	Waypoints  []flow.Point // orthogonal polyline, colinear points removed
	ArrowAngle float64      // radians, direction of the final segment
	Marker     flow.Point   // add-child marker anchor
}

// Router routes edges against a fixed set of node bounding boxes.
type Router struct {
	cfg Config
}

// New creates a Router with the given config.
func New(cfg Config) *Router { return &Router{cfg: cfg} }

// Route computes a path for every edge. Edges whose endpoints have no
// resolved bounding box (nodes dropped from layout) are skipped.
func (r *Router) Route(edges []flow.Edge, boxes map[string]flow.Rect) []Path {
	startOffsets := r.fanInOffsets(edges, boxes)
	endOffsets := r.fanOutOffsets(edges, boxes)

	paths := make([]Path, 0, len(edges))
	for _, e := range edges {
		src, okS := boxes[e.From]
		dst, okD := boxes[e.To]
		if !okS || !okD {
			continue
		}

		start := src.BottomCenter()
		start.X += startOffsets[e]
		start.Y += r.cfg.EndpointGap

		end := dst.TopCenter()
		end.X += endOffsets[e]
		end.Y -= r.cfg.EndpointGap

		obstacles := r.obstacles(boxes, e.From, e.To)
		waypoints := simplify(r.findPath(start, end, obstacles))

		paths = append(paths, Path{
			Edge:       e,
			Waypoints:  waypoints,
			ArrowAngle: arrowAngle(waypoints),
			Marker:     r.placeMarker(waypoints, obstacles, src, dst),
		})
	}
	return paths
}

// fanInOffsets assigns a source-side x offset to every edge whose target
// has two or more incoming edges. Offsets spread symmetrically across
// ±FanRange, ordered by the source card's x position so neighbouring
// parents fan outward instead of overlapping.
func (r *Router) fanInOffsets(edges []flow.Edge, boxes map[string]flow.Rect) map[flow.Edge]float64 {
	byTarget := make(map[string][]flow.Edge)
	for _, e := range edges {
		byTarget[e.To] = append(byTarget[e.To], e)
	}

	offsets := make(map[flow.Edge]float64, len(edges))
	for _, group := range byTarget {
		slices.SortStableFunc(group, func(a, b flow.Edge) int {
			return compareFloat(boxes[a.From].X, boxes[b.From].X)
		})
		r.spread(group, offsets)
	}
	return offsets
}

// fanOutOffsets is the symmetric treatment for edges sharing a source:
// their target-side x anchors spread across ±FanRange ordered by the
// target card's x position.
func (r *Router) fanOutOffsets(edges []flow.Edge, boxes map[string]flow.Rect) map[flow.Edge]float64 {
	bySource := make(map[string][]flow.Edge)
	for _, e := range edges {
		bySource[e.From] = append(bySource[e.From], e)
	}

	offsets := make(map[flow.Edge]float64, len(edges))
	for _, group := range bySource {
		slices.SortStableFunc(group, func(a, b flow.Edge) int {
			return compareFloat(boxes[a.To].X, boxes[b.To].X)
		})
		r.spread(group, offsets)
	}
	return offsets
}

// spread distributes len(group) offsets evenly across [-FanRange, +FanRange].
// A single edge keeps its centered anchor.
func (r *Router) spread(group []flow.Edge, offsets map[flow.Edge]float64) {
	n := len(group)
	if n < 2 {
		for _, e := range group {
			offsets[e] = 0
		}
		return
	}
	step := 2 * r.cfg.FanRange / float64(n-1)
	for i, e := range group {
		offsets[e] = -r.cfg.FanRange + float64(i)*step
	}
}

// obstacles returns every padded node box except the edge's own endpoints.
func (r *Router) obstacles(boxes map[string]flow.Rect, from, to string) []flow.Rect {
	obs := make([]flow.Rect, 0, len(boxes))
	for id, box := range boxes {
		if id == from || id == to {
			continue
		}
		obs = append(obs, box.Expand(r.cfg.ObstaclePadding))
	}
	return obs
}

// findPath produces an orthogonal polyline from start to end.
func (r *Router) findPath(start, end flow.Point, obstacles []flow.Rect) []flow.Point {
	// Straight drop when the anchors are vertically aligned.
	if start.X == end.X && segmentClear(start, end, obstacles) {
		return []flow.Point{start, end}
	}

	for _, candidate := range r.bendCandidates(start, end) {
		if polylineClear(candidate, obstacles) {
			return candidate
		}
	}

	if path, ok := r.search(start, end, obstacles); ok {
		return path
	}

	return fallbackPath(start, end)
}

// bendCandidates returns the cheap orthogonal candidates, cheapest first:
// two one-bend L shapes, then two-bend variants through the vertical and
// horizontal midpoints.
func (r *Router) bendCandidates(start, end flow.Point) [][]flow.Point {
	midY := (start.Y + end.Y) / 2
	midX := (start.X + end.X) / 2
	return [][]flow.Point{
		{start, {X: start.X, Y: end.Y}, end},
		{start, {X: end.X, Y: start.Y}, end},
		{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end},
		{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end},
	}
}

// fallbackPath is the guaranteed two-bend route through the vertical
// midpoint between the anchors. It may cross obstacles but is always a
// valid renderable polyline.
func fallbackPath(start, end flow.Point) []flow.Point {
	midY := (start.Y + end.Y) / 2
	return []flow.Point{
		start,
		{X: start.X, Y: midY},
		{X: end.X, Y: midY},
		end,
	}
}

// polylineClear reports whether every segment interior avoids all obstacles.
func polylineClear(points []flow.Point, obstacles []flow.Rect) bool {
	for i := 1; i < len(points); i++ {
		if !segmentClear(points[i-1], points[i], obstacles) {
			return false
		}
	}
	return true
}

// segmentClear reports whether an axis-aligned segment's interior stays
// outside every obstacle. Segments tangent to an obstacle border count
// as clear.
func segmentClear(a, b flow.Point, obstacles []flow.Rect) bool {
	for _, obs := range obstacles {
		if segmentCrossesRect(a, b, obs) {
			return false
		}
	}
	return true
}

func segmentCrossesRect(a, b flow.Point, r flow.Rect) bool {
	if a.X == b.X {
		// Vertical segment.
		if a.X <= r.X || a.X >= r.X+r.W {
			return false
		}
		lo, hi := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
		return lo < r.Y+r.H && hi > r.Y
	}
	if a.Y == b.Y {
		// Horizontal segment.
		if a.Y <= r.Y || a.Y >= r.Y+r.H {
			return false
		}
		lo, hi := math.Min(a.X, b.X), math.Max(a.X, b.X)
		return lo < r.X+r.W && hi > r.X
	}
	// Non-orthogonal segments only occur in the straight-drop case where
	// a.X == b.X, so this branch is unreachable; treat as blocked to be
	// conservative.
	return true
}

// simplify removes colinear interior points, keeping only direction
// changes (and the endpoints).
func simplify(points []flow.Point) []flow.Point {
	if len(points) <= 2 {
		return points
	}
	out := []flow.Point{points[0]}
	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := out[len(out)-1], points[i], points[i+1]
		if (prev.X == curr.X && curr.X == next.X) || (prev.Y == curr.Y && curr.Y == next.Y) {
			continue
		}
		if prev == curr {
			continue
		}
		out = append(out, curr)
	}
	out = append(out, points[len(points)-1])
	return out
}

// arrowAngle returns the direction of the final path segment, so the
// rendered arrowhead matches the last drawn stroke rather than the raw
// source-to-target direction.
func arrowAngle(points []flow.Point) float64 {
	if len(points) < 2 {
		return math.Pi / 2 // pointing down, the common case
	}
	last := points[len(points)-1]
	prev := points[len(points)-2]
	return math.Atan2(last.Y-prev.Y, last.X-prev.X)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
