package flow

// Point is a 2-D pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// TopCenter returns the midpoint of the rectangle's top edge.
func (r Rect) TopCenter() Point { return Point{X: r.X + r.W/2, Y: r.Y} }

// BottomCenter returns the midpoint of the rectangle's bottom edge.
func (r Rect) BottomCenter() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H} }

// Contains reports whether p lies inside the rectangle (borders included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Expand returns the rectangle grown by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, W: r.W + 2*pad, H: r.H + 2*pad}
}

// LayoutConfig holds the fixed constants of the rank-based layout.
type LayoutConfig struct {
	NodeWidth  float64 // card width
	NodeHeight float64 // card height
	NodeSep    float64 // horizontal gap between cards in a row
	RankSep    float64 // vertical gap between rows
	Margin     float64 // outer margin around the whole scene
}

// DefaultLayoutConfig returns the card geometry used by the console.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		NodeWidth:  224,
		NodeHeight: 120,
		NodeSep:    80,
		RankSep:    150,
		Margin:     40,
	}
}

// Layout assigns a bounding box to every layered node.
//
// Rows are stacked top to bottom with RankSep between them; within a row,
// cards run left to right with NodeSep gaps and the row is centered on
// the widest row's axis. The result is a pure function of the layer
// structure and the config, so rebuilding from unchanged input yields
// identical positions.
func Layout(layers [][]string, cfg LayoutConfig) map[string]Rect {
	boxes := make(map[string]Rect)
	if len(layers) == 0 {
		return boxes
	}

	maxWidth := 0.0
	for _, layer := range layers {
		if w := rowWidth(len(layer), cfg); w > maxWidth {
			maxWidth = w
		}
	}

	for row, layer := range layers {
		y := cfg.Margin + float64(row)*(cfg.NodeHeight+cfg.RankSep)
		x := cfg.Margin + (maxWidth-rowWidth(len(layer), cfg))/2
		for _, id := range layer {
			boxes[id] = Rect{X: x, Y: y, W: cfg.NodeWidth, H: cfg.NodeHeight}
			x += cfg.NodeWidth + cfg.NodeSep
		}
	}
	return boxes
}

func rowWidth(n int, cfg LayoutConfig) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*cfg.NodeWidth + float64(n-1)*cfg.NodeSep
}
