package route

import (
	"math"

	"github.com/dentflow/dentflow/pkg/flow"
)

// placeMarker finds an anchor for the add-child marker on the routed
// path. The search starts at the path's arc-length midpoint and walks
// outward in both directions until it finds a point at least
// ObstaclePadding+MarkerRadius away from every obstacle. If the whole
// path is crowded, the marker sits just outside whichever endpoint card
// is nearer.
func (r *Router) placeMarker(points []flow.Point, obstacles []flow.Rect, src, dst flow.Rect) flow.Point {
	if len(points) == 0 {
		return src.BottomCenter()
	}
	if len(points) == 1 {
		return points[0]
	}

	// Obstacles are already padded, so clearing them by the marker
	// radius keeps the marker padding+radius away from the raw cards.
	total := pathLength(points)
	step := r.cfg.GridCell * 2

	// Walk outward from the midpoint: mid, mid+step, mid-step, ...
	for offset := 0.0; offset <= total/2; offset += step {
		for _, sign := range []float64{1, -1} {
			at := total/2 + sign*offset
			if at < 0 || at > total {
				continue
			}
			p := pointAt(points, at)
			if markerClear(p, obstacles, r.cfg.MarkerRadius) {
				return p
			}
		}
	}

	// Crowded path: hang the marker off the nearer endpoint card.
	mid := pointAt(points, total/2)
	outset := r.cfg.ObstaclePadding + r.cfg.MarkerRadius
	srcAnchor := flow.Point{X: src.Center().X, Y: src.Y + src.H + outset}
	dstAnchor := flow.Point{X: dst.Center().X, Y: dst.Y - outset}
	if dist(mid, srcAnchor) <= dist(mid, dstAnchor) {
		return srcAnchor
	}
	return dstAnchor
}

// markerClear reports whether p keeps at least clearance distance from
// every obstacle.
func markerClear(p flow.Point, obstacles []flow.Rect, clearance float64) bool {
	for _, obs := range obstacles {
		if distToRect(p, obs) < clearance {
			return false
		}
	}
	return true
}

// distToRect returns the distance from p to the rectangle (0 if inside).
func distToRect(p flow.Point, r flow.Rect) float64 {
	dx := math.Max(math.Max(r.X-p.X, 0), p.X-(r.X+r.W))
	dy := math.Max(math.Max(r.Y-p.Y, 0), p.Y-(r.Y+r.H))
	return math.Hypot(dx, dy)
}

// pathLength returns the polyline's total arc length.
func pathLength(points []flow.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += dist(points[i-1], points[i])
	}
	return total
}

// pointAt returns the point at arc length t along the polyline,
// clamped to the endpoints.
func pointAt(points []flow.Point, t float64) flow.Point {
	if t <= 0 {
		return points[0]
	}
	remaining := t
	for i := 1; i < len(points); i++ {
		seg := dist(points[i-1], points[i])
		if remaining <= seg && seg > 0 {
			f := remaining / seg
			return flow.Point{
				X: points[i-1].X + f*(points[i].X-points[i-1].X),
				Y: points[i-1].Y + f*(points[i].Y-points[i-1].Y),
			}
		}
		remaining -= seg
	}
	return points[len(points)-1]
}

func dist(a, b flow.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
