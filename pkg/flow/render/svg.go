// Package render turns a computed scene into shareable artifacts.
//
// The primary output is a standalone SVG of the questionnaire canvas:
// question cards, orthogonal connections with arrowheads, add-child
// markers, and the tier emphasis of the current selection. A secondary
// Graphviz node-link export is available for quick structural views.
package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/dentflow/dentflow/pkg/flow"
	"github.com/dentflow/dentflow/pkg/flow/canvas"
)

const tierCSS = `
    .card { fill: #ffffff; stroke: #d1d5db; stroke-width: 1.5; }
    .card.active { stroke: #60a5fa; stroke-width: 2; }
    .card.selected { stroke: #2563eb; stroke-width: 2.5; }
    .edge { fill: none; stroke: #9ca3af; stroke-width: 1.5; }
    .edge.active { stroke: #60a5fa; stroke-width: 2; }
    .edge.selected { stroke: #2563eb; stroke-width: 2.5; }
    .arrow { fill: #9ca3af; }
    .arrow.active { fill: #60a5fa; }
    .arrow.selected { fill: #2563eb; }
    .type-label { font: 600 11px sans-serif; fill: #6b7280; }
    .title { font: 13px sans-serif; fill: #111827; }
    .badge { font: 11px sans-serif; fill: #6b7280; }
    .marker { fill: #ffffff; stroke: #9ca3af; stroke-width: 1.5; }
    .marker-plus { stroke: #6b7280; stroke-width: 1.5; }`

// SVGOption configures the scene renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	markers bool
	css     string
}

// WithMarkers draws the add-child plus marker on every connection.
func WithMarkers() SVGOption { return func(r *svgRenderer) { r.markers = true } }

// WithCSS replaces the embedded stylesheet.
func WithCSS(css string) SVGOption { return func(r *svgRenderer) { r.css = css } }

// RenderSVG renders the scene as a standalone SVG document.
func RenderSVG(scene canvas.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{css: tierCSS}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		scene.Width, scene.Height, scene.Width, scene.Height)
	fmt.Fprintf(&buf, "<style>%s\n</style>\n", r.css)

	for _, e := range scene.Edges {
		renderEdge(&buf, e)
	}
	if r.markers {
		for _, e := range scene.Edges {
			renderMarker(&buf, e.Marker)
		}
	}
	for _, n := range scene.Nodes {
		renderCard(&buf, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCard(buf *bytes.Buffer, n canvas.NodeView) {
	b := n.Box
	fmt.Fprintf(buf, `<g id="card-%s">`+"\n", escape(n.ID))
	fmt.Fprintf(buf, `  <rect class="card%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8"/>`+"\n",
		tierClass(n.Tier), b.X, b.Y, b.W, b.H)
	fmt.Fprintf(buf, `  <text class="type-label" x="%.1f" y="%.1f">%s</text>`+"\n",
		b.X+12, b.Y+22, escape(n.TypeLabel))
	fmt.Fprintf(buf, `  <text class="title" x="%.1f" y="%.1f">%s</text>`+"\n",
		b.X+12, b.Y+44, escape(n.Title))
	if n.Connections > 0 {
		fmt.Fprintf(buf, `  <text class="badge" x="%.1f" y="%.1f">%d connection%s</text>`+"\n",
			b.X+12, b.Y+b.H-12, n.Connections, plural(n.Connections))
	}
	buf.WriteString("</g>\n")
}

func renderEdge(buf *bytes.Buffer, e canvas.EdgeView) {
	if len(e.Waypoints) < 2 {
		return
	}
	var points []string
	for _, p := range e.Waypoints {
		points = append(points, fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
	}
	fmt.Fprintf(buf, `<polyline class="edge%s" points="%s"/>`+"\n",
		tierClass(e.Tier), strings.Join(points, " "))
	renderArrowhead(buf, e)
}

// renderArrowhead draws a small triangle at the edge tip, rotated to the
// direction of the final segment.
func renderArrowhead(buf *bytes.Buffer, e canvas.EdgeView) {
	tip := e.Waypoints[len(e.Waypoints)-1]
	deg := e.ArrowAngle * 180 / math.Pi
	fmt.Fprintf(buf, `<path class="arrow%s" d="M -8 -5 L 0 0 L -8 5 Z" transform="translate(%.1f %.1f) rotate(%.1f)"/>`+"\n",
		tierClass(e.Tier), tip.X, tip.Y, deg)
}

// renderMarker draws the add-child plus button on a connection.
func renderMarker(buf *bytes.Buffer, p flow.Point) {
	fmt.Fprintf(buf, `<circle class="marker" cx="%.1f" cy="%.1f" r="9"/>`+"\n", p.X, p.Y)
	fmt.Fprintf(buf, `<path class="marker-plus" d="M %.1f %.1f h 8 M %.1f %.1f v 8"/>`+"\n",
		p.X-4, p.Y, p.X, p.Y-4)
}

func tierClass(t canvas.Tier) string {
	switch t {
	case canvas.TierSelected:
		return " selected"
	case canvas.TierActive:
		return " active"
	default:
		return ""
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string { return escaper.Replace(s) }
