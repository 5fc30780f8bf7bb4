// Package canvas assembles the interactive questionnaire scene.
//
// A Canvas owns the full presentation pipeline for one questionnaire:
// graph construction, layering, coordinate layout, and edge routing,
// plus the selection state that drives visual emphasis. UI front ends
// (HTTP scene endpoint, terminal preview) hold a Canvas and read an
// immutable Scene snapshot from it after every change.
//
// # Pipeline
//
// SetQuestions triggers a full recompute:
//
//  1. Build the reachable graph from the configured root question
//  2. Partition it into layers, top row first
//  3. Assign pixel rectangles to every card
//  4. Route every connection around the placed cards
//
// Selection changes do not recompute geometry. They only re-tier the
// cached nodes and edges, so clicking around a large questionnaire
// stays cheap.
//
// # Selection
//
// The canvas is either idle or has exactly one selected card. Clicking
// a card selects it, clicking the background returns to idle. While a
// card is selected, its outgoing connections and their target cards are
// emphasized; everything else drops to the default tier.
//
// # Concurrency
//
// All exported methods are safe for concurrent use. Resize events are
// coalesced, so a burst of window-size changes produces a single
// recompute after the quiet period.
package canvas

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/log"

	"github.com/dentflow/dentflow/pkg/flow"
	"github.com/dentflow/dentflow/pkg/flow/route"
	"github.com/dentflow/dentflow/pkg/question"
)

// resizeQuiet is how long a burst of resize events must be quiet before
// the scene recomputes.
const resizeQuiet = 100 * time.Millisecond

// Tier is the visual emphasis level of a node or edge.
type Tier int

const (
	// TierDefault is the resting appearance.
	TierDefault Tier = iota
	// TierActive marks direct targets of the selected card and the
	// connections arriving at them.
	TierActive
	// TierSelected marks the selected card and its outgoing connections.
	TierSelected
)

// NodeView is one question card, fully resolved for drawing.
type NodeView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	FullText    string    `json:"fullText"`
	TypeLabel   string    `json:"typeLabel"`
	Connections int       `json:"connections"`
	Tier        Tier      `json:"tier"`
	Box         flow.Rect `json:"box"`
}

// EdgeView is one routed connection.
type EdgeView struct {
	Edge       flow.Edge    `json:"edge"`
	Waypoints  []flow.Point `json:"waypoints"`
	ArrowAngle float64      `json:"arrowAngle"`
	Marker     flow.Point   `json:"marker"`
	Tier       Tier         `json:"tier"`
}

// Scene is an immutable snapshot of everything a renderer needs.
type Scene struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Root   string     `json:"root"`
	Nodes  []NodeView `json:"nodes"`
	Edges  []EdgeView `json:"edges"`
}

// Canvas owns the scene pipeline and selection state for one
// questionnaire.
type Canvas struct {
	mu     sync.Mutex
	logger *log.Logger

	layoutCfg flow.LayoutConfig
	router    *route.Router

	questions []question.Question
	rootID    string

	graph  *flow.Graph
	boxes  map[string]flow.Rect
	paths  []route.Path
	extent flow.Point

	viewport flow.Point
	selected string

	debounced func(func())
	onUpdate  func()
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLayoutConfig overrides the card geometry and spacing.
func WithLayoutConfig(cfg flow.LayoutConfig) Option {
	return func(c *Canvas) { c.layoutCfg = cfg }
}

// WithRouteConfig overrides the edge routing parameters.
func WithRouteConfig(cfg route.Config) Option {
	return func(c *Canvas) { c.router = route.New(cfg) }
}

// WithUpdateFunc registers a callback invoked after every recompute.
// Used by front ends to schedule a redraw. The callback may run on a
// background goroutine when the recompute came from a coalesced resize.
func WithUpdateFunc(fn func()) Option {
	return func(c *Canvas) { c.onUpdate = fn }
}

// New creates an empty canvas with default geometry.
func New(logger *log.Logger, opts ...Option) *Canvas {
	c := &Canvas{
		logger:    logger,
		layoutCfg: flow.DefaultLayoutConfig(),
		router:    route.New(route.DefaultConfig()),
		debounced: debounce.New(resizeQuiet),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuestions replaces the questionnaire content and recomputes the
// scene. A selection pointing at a card that no longer exists is
// cleared.
func (c *Canvas) SetQuestions(questions []question.Question, rootID string) {
	c.mu.Lock()
	c.questions = questions
	c.rootID = rootID
	c.recompute()
	if c.selected != "" {
		if _, ok := c.graph.Node(c.selected); !ok {
			c.selected = ""
		}
	}
	c.mu.Unlock()
	c.notify()
}

// SelectNode handles a click on a card. Clicks on unknown ids are
// ignored so stale UI events cannot corrupt the selection.
func (c *Canvas) SelectNode(id string) {
	c.mu.Lock()
	if c.graph == nil {
		c.mu.Unlock()
		return
	}
	if _, ok := c.graph.Node(id); !ok {
		c.mu.Unlock()
		return
	}
	c.selected = id
	c.mu.Unlock()
	c.notify()
}

// ClearSelection handles a click on the background.
func (c *Canvas) ClearSelection() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
	c.notify()
}

// Selected returns the selected card id, if any.
func (c *Canvas) Selected() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.selected != ""
}

// Resize records a new viewport size. Recomputation is coalesced: only
// after resize events stop for the quiet period does the scene rebuild
// and the update callback fire.
func (c *Canvas) Resize(width, height float64) {
	c.mu.Lock()
	c.viewport = flow.Point{X: width, Y: height}
	c.mu.Unlock()

	c.debounced(func() {
		c.mu.Lock()
		c.recompute()
		c.mu.Unlock()
		c.notify()
	})
}

// Scene returns a snapshot of the current scene. Narrow content is
// centered inside a wider viewport.
func (c *Canvas) Scene() Scene {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.graph == nil || c.graph.Empty() {
		return Scene{Width: c.viewport.X, Height: c.viewport.Y}
	}

	width := c.extent.X
	height := c.extent.Y
	var shift float64
	if c.viewport.X > width {
		shift = (c.viewport.X - width) / 2
		width = c.viewport.X
	}
	if c.viewport.Y > height {
		height = c.viewport.Y
	}

	scene := Scene{
		Width:  width,
		Height: height,
		Root:   c.graph.Root(),
		Nodes:  make([]NodeView, 0, c.graph.NodeCount()),
		Edges:  make([]EdgeView, 0, len(c.paths)),
	}

	for _, id := range c.graph.IDs() {
		q, _ := c.graph.Node(id)
		box := c.boxes[id]
		box.X += shift
		scene.Nodes = append(scene.Nodes, NodeView{
			ID:          id,
			Title:       q.CardText(),
			FullText:    q.DisplayText(),
			TypeLabel:   q.Type.FriendlyLabel(),
			Connections: q.ConnectionCount(),
			Tier:        c.nodeTier(id),
			Box:         box,
		})
	}

	for _, p := range c.paths {
		scene.Edges = append(scene.Edges, EdgeView{
			Edge:       p.Edge,
			Waypoints:  shiftPoints(p.Waypoints, shift),
			ArrowAngle: p.ArrowAngle,
			Marker:     flow.Point{X: p.Marker.X + shift, Y: p.Marker.Y},
			Tier:       c.edgeTier(p.Edge),
		})
	}
	return scene
}

// recompute rebuilds graph, layout, and routes. Caller holds the lock.
func (c *Canvas) recompute() {
	c.graph = flow.Build(c.questions, c.rootID)
	layers := c.graph.Layers()
	c.boxes = flow.Layout(layers, c.layoutCfg)
	c.paths = c.router.Route(c.graph.Edges(), c.boxes)
	c.extent = contentExtent(c.boxes, c.layoutCfg.Margin)

	if c.logger != nil {
		c.logger.Debug("scene recomputed",
			"nodes", c.graph.NodeCount(),
			"edges", len(c.paths),
			"rows", len(layers))
	}
}

func (c *Canvas) notify() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

func (c *Canvas) nodeTier(id string) Tier {
	switch {
	case c.selected == "":
		return TierDefault
	case id == c.selected:
		return TierSelected
	case contains(c.graph.Adjacency(c.selected), id):
		return TierActive
	default:
		return TierDefault
	}
}

func (c *Canvas) edgeTier(e flow.Edge) Tier {
	switch {
	case c.selected == "":
		return TierDefault
	case e.From == c.selected:
		return TierSelected
	case contains(c.graph.Adjacency(c.selected), e.To):
		return TierActive
	default:
		return TierDefault
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func shiftPoints(points []flow.Point, dx float64) []flow.Point {
	out := make([]flow.Point, len(points))
	for i, p := range points {
		out[i] = flow.Point{X: p.X + dx, Y: p.Y}
	}
	return out
}

func contentExtent(boxes map[string]flow.Rect, margin float64) flow.Point {
	var maxX, maxY float64
	for _, b := range boxes {
		if r := b.X + b.W; r > maxX {
			maxX = r
		}
		if bt := b.Y + b.H; bt > maxY {
			maxY = bt
		}
	}
	if maxX == 0 && maxY == 0 {
		return flow.Point{}
	}
	return flow.Point{X: maxX + margin, Y: maxY + margin}
}
