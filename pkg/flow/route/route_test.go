package route

import (
	"math"
	"testing"

	"github.com/dentflow/dentflow/pkg/flow"
)

func box(x, y float64) flow.Rect {
	return flow.Rect{X: x, Y: y, W: 224, H: 120}
}

func routeOne(t *testing.T, boxes map[string]flow.Rect, e flow.Edge) Path {
	t.Helper()
	paths := New(DefaultConfig()).Route([]flow.Edge{e}, boxes)
	if len(paths) != 1 {
		t.Fatalf("Route() returned %d paths, want 1", len(paths))
	}
	return paths[0]
}

func TestRoute_StraightDrop(t *testing.T) {
	boxes := map[string]flow.Rect{
		"a": box(100, 0),
		"b": box(100, 270),
	}
	p := routeOne(t, boxes, flow.Edge{From: "a", To: "b"})

	if len(p.Waypoints) != 2 {
		t.Fatalf("waypoints = %v, want a straight two-point drop", p.Waypoints)
	}
	start, end := p.Waypoints[0], p.Waypoints[1]
	if start.X != end.X {
		t.Errorf("straight drop is not vertical: %v -> %v", start, end)
	}
	// Endpoints sit just outside the card borders.
	if start.Y <= boxes["a"].Y+boxes["a"].H {
		t.Errorf("start %v should be below the source card", start)
	}
	if end.Y >= boxes["b"].Y {
		t.Errorf("end %v should be above the target card", end)
	}
}

func TestRoute_ArrowheadPointsDown(t *testing.T) {
	boxes := map[string]flow.Rect{
		"a": box(100, 0),
		"b": box(100, 270),
	}
	p := routeOne(t, boxes, flow.Edge{From: "a", To: "b"})

	if math.Abs(p.ArrowAngle-math.Pi/2) > 1e-9 {
		t.Errorf("ArrowAngle = %v, want pi/2 for a downward final segment", p.ArrowAngle)
	}
}

func TestRoute_ArrowheadFollowsFinalSegment(t *testing.T) {
	// Offset target: route ends on a vertical approach even though the
	// raw source-to-target direction is diagonal.
	boxes := map[string]flow.Rect{
		"a": box(0, 0),
		"b": box(600, 270),
	}
	p := routeOne(t, boxes, flow.Edge{From: "a", To: "b"})

	last := p.Waypoints[len(p.Waypoints)-1]
	prev := p.Waypoints[len(p.Waypoints)-2]
	want := math.Atan2(last.Y-prev.Y, last.X-prev.X)
	if p.ArrowAngle != want {
		t.Errorf("ArrowAngle = %v, want %v (final segment direction)", p.ArrowAngle, want)
	}
}

func TestRoute_AvoidsObstacleBetweenNodes(t *testing.T) {
	// "mid" sits directly between a and b; the path must bend around it.
	boxes := map[string]flow.Rect{
		"a":   box(100, 0),
		"mid": box(100, 270),
		"b":   box(100, 540),
	}
	cfg := DefaultConfig()
	p := routeOne(t, boxes, flow.Edge{From: "a", To: "b"})

	padded := boxes["mid"].Expand(cfg.ObstaclePadding)
	for i := 1; i < len(p.Waypoints); i++ {
		if segmentCrossesRect(p.Waypoints[i-1], p.Waypoints[i], padded) {
			t.Fatalf("segment %v -> %v crosses the obstacle %v",
				p.Waypoints[i-1], p.Waypoints[i], padded)
		}
	}
}

func TestRoute_NoWaypointInsideForeignNode(t *testing.T) {
	// Dense three-row layout; no routed point may fall inside the padded
	// box of a node that is not the edge's own endpoint.
	boxes := map[string]flow.Rect{
		"a": box(40, 40),
		"b": box(344, 40),
		"c": box(40, 310),
		"d": box(344, 310),
		"e": box(192, 580),
	}
	edges := []flow.Edge{
		{From: "a", To: "d"},
		{From: "b", To: "c"},
		{From: "c", To: "e"},
		{From: "d", To: "e"},
	}
	cfg := DefaultConfig()
	paths := New(cfg).Route(edges, boxes)

	for _, p := range paths {
		for id, b := range boxes {
			if id == p.Edge.From || id == p.Edge.To {
				continue
			}
			padded := b.Expand(cfg.ObstaclePadding)
			for _, w := range p.Waypoints {
				if obsInterior(padded, w) {
					t.Errorf("edge %s: waypoint %v inside padded box of %s", p.Edge.ID(), w, id)
				}
			}
		}
	}
}

func TestRoute_FanInDistinctSourceOffsets(t *testing.T) {
	boxes := map[string]flow.Rect{
		"A": box(40, 40),
		"B": box(344, 40),
		"C": box(192, 310),
	}
	edges := []flow.Edge{
		{From: "A", To: "C"},
		{From: "B", To: "C"},
	}
	cfg := DefaultConfig()
	paths := New(cfg).Route(edges, boxes)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}

	var offsets []float64
	for _, p := range paths {
		start := p.Waypoints[0]
		offsets = append(offsets, start.X-boxes[p.Edge.From].Center().X)
	}

	// Symmetric and pairwise distinct.
	if offsets[0]+offsets[1] != 0 {
		t.Errorf("offsets %v are not symmetric", offsets)
	}
	if math.Abs(offsets[0]-offsets[1]) < 2*cfg.FanRange {
		t.Errorf("offsets %v closer than the fan range", offsets)
	}
	// Ordered by source x: A (left) gets the negative offset.
	for _, p := range paths {
		start := p.Waypoints[0]
		off := start.X - boxes[p.Edge.From].Center().X
		if p.Edge.From == "A" && off >= 0 {
			t.Errorf("left source A got offset %v, want negative", off)
		}
		if p.Edge.From == "B" && off <= 0 {
			t.Errorf("right source B got offset %v, want positive", off)
		}
	}
}

func TestRoute_FanOutDistinctTargetOffsets(t *testing.T) {
	boxes := map[string]flow.Rect{
		"A": box(192, 40),
		"B": box(40, 310),
		"C": box(344, 310),
	}
	edges := []flow.Edge{
		{From: "A", To: "B"},
		{From: "A", To: "C"},
	}
	paths := New(DefaultConfig()).Route(edges, boxes)

	seen := map[string]float64{}
	for _, p := range paths {
		end := p.Waypoints[len(p.Waypoints)-1]
		seen[p.Edge.To] = end.X - boxes[p.Edge.To].Center().X
	}
	if seen["B"] == seen["C"] {
		t.Errorf("shared-source edges got identical target offsets: %v", seen)
	}
	if seen["B"]+seen["C"] != 0 {
		t.Errorf("target offsets %v are not symmetric", seen)
	}
}

func TestRoute_SingleEdgeNoFanOffset(t *testing.T) {
	boxes := map[string]flow.Rect{
		"a": box(100, 0),
		"b": box(100, 270),
	}
	p := routeOne(t, boxes, flow.Edge{From: "a", To: "b"})

	if got := p.Waypoints[0].X; got != boxes["a"].Center().X {
		t.Errorf("start x = %v, want centered %v", got, boxes["a"].Center().X)
	}
	if got := p.Waypoints[len(p.Waypoints)-1].X; got != boxes["b"].Center().X {
		t.Errorf("end x = %v, want centered %v", got, boxes["b"].Center().X)
	}
}

func TestRoute_SkipsEdgesWithoutBoxes(t *testing.T) {
	boxes := map[string]flow.Rect{"a": box(0, 0)}
	paths := New(DefaultConfig()).Route([]flow.Edge{{From: "a", To: "dropped"}}, boxes)
	if len(paths) != 0 {
		t.Errorf("got %d paths for an unboxed target, want 0", len(paths))
	}
}

func TestFallbackPath_AlwaysValid(t *testing.T) {
	start := flow.Point{X: 10, Y: 20}
	end := flow.Point{X: 200, Y: 320}
	p := fallbackPath(start, end)

	if len(p) != 4 {
		t.Fatalf("fallback has %d points, want 4", len(p))
	}
	if p[0] != start || p[3] != end {
		t.Errorf("fallback endpoints %v...%v, want %v...%v", p[0], p[3], start, end)
	}
	midY := (start.Y + end.Y) / 2
	if p[1].Y != midY || p[2].Y != midY {
		t.Errorf("fallback bends at %v/%v, want vertical midpoint %v", p[1].Y, p[2].Y, midY)
	}
}

func TestSearch_IterationCapTerminates(t *testing.T) {
	// Wall of obstacles sealing the target: the search must give up
	// within its budget rather than loop.
	cfg := DefaultConfig()
	cfg.MaxIterations = 50
	r := New(cfg)

	obstacles := []flow.Rect{
		{X: -500, Y: 98, W: 2000, H: 44},
	}
	_, ok := r.search(flow.Point{X: 0, Y: 0}, flow.Point{X: 0, Y: 240}, obstacles)
	if ok {
		t.Error("search should fail once the budget is exhausted")
	}
}

func TestSimplify(t *testing.T) {
	in := []flow.Point{
		{X: 0, Y: 0}, {X: 0, Y: 5}, {X: 0, Y: 10},
		{X: 5, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 20},
	}
	want := []flow.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 20}}

	got := simplify(in)
	if len(got) != len(want) {
		t.Fatalf("simplify() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("simplify()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPlaceMarker_ClearMidpoint(t *testing.T) {
	boxes := map[string]flow.Rect{
		"a": box(100, 0),
		"b": box(100, 270),
	}
	p := routeOne(t, boxes, flow.Edge{From: "a", To: "b"})

	// Only the two endpoint cards exist, so the path midpoint is clear.
	mid := pointAt(p.Waypoints, pathLength(p.Waypoints)/2)
	if p.Marker != mid {
		t.Errorf("Marker = %v, want clear midpoint %v", p.Marker, mid)
	}
}

func TestPlaceMarker_AvoidsObstacle(t *testing.T) {
	// A foreign card parked right on the midpoint pushes the marker away.
	boxes := map[string]flow.Rect{
		"a":     box(100, 0),
		"b":     box(100, 600),
		"noise": box(100, 300),
	}
	cfg := DefaultConfig()
	p := routeOne(t, boxes, flow.Edge{From: "a", To: "b"})

	padded := boxes["noise"].Expand(cfg.ObstaclePadding)
	if distToRect(p.Marker, padded) < cfg.MarkerRadius {
		t.Errorf("Marker %v is too close to the obstacle %v", p.Marker, padded)
	}
}

func TestDistToRect(t *testing.T) {
	r := flow.Rect{X: 0, Y: 0, W: 10, H: 10}
	tests := []struct {
		p    flow.Point
		want float64
	}{
		{flow.Point{X: 5, Y: 5}, 0},
		{flow.Point{X: 15, Y: 5}, 5},
		{flow.Point{X: 5, Y: -3}, 3},
		{flow.Point{X: 13, Y: 14}, 5},
	}
	for _, tt := range tests {
		if got := distToRect(tt.p, r); got != tt.want {
			t.Errorf("distToRect(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
