// Package flow builds and lays out the questionnaire flow graph.
//
// The flow graph is derived data: it is rebuilt in full from the current
// question list whenever that list changes, and nothing in this package
// mutates a question in place. The pipeline runs in a fixed order
// (build the reachable graph, assign layers, position nodes) with edge
// routing layered on top in the route subpackage and scene assembly in
// the canvas subpackage.
package flow

import (
	"slices"

	"github.com/dentflow/dentflow/pkg/question"
)

// Edge is a directed routing edge between two questions.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ID returns the canonical edge identifier.
func (e Edge) ID() string { return e.From + "-" + e.To }

// Graph is the reachable questionnaire subgraph anchored at a root.
// Nodes is restricted to the root's forward-reachable set; adjacency is
// each node's deduplicated child list with holes removed and targets
// limited to nodes that actually exist.
//
// Graph is immutable after Build and safe for concurrent reads.
type Graph struct {
	root  string
	order []string
	nodes map[string]question.Question
	adj   map[string][]string
}

// Build constructs a Graph from a flat question list.
//
// The root is located by rootID. If absent, the first question that is
// not listed as any other question's child becomes the natural root. If
// no such question exists either (every record is somebody's child, i.e.
// the data is one big cycle), the whole input set is used unmodified as
// a degenerate fallback. Reachability is an explicit breadth-first
// traversal over children edges; input order does not matter beyond
// tie-breaking.
//
// Empty input yields an empty graph, never an error.
func Build(questions []question.Question, rootID string) *Graph {
	g := &Graph{
		nodes: make(map[string]question.Question, len(questions)),
		adj:   make(map[string][]string, len(questions)),
	}
	if len(questions) == 0 {
		return g
	}

	byID := make(map[string]question.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	root, ok := byID[rootID]
	if !ok {
		root, ok = naturalRoot(questions)
	}
	if !ok {
		// Degenerate fallback: no root and no parentless record.
		for _, q := range questions {
			g.include(q, byID)
		}
		return g
	}

	g.root = root.ID
	visited := map[string]bool{root.ID: true}
	queue := []string{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		q := byID[id]
		g.include(q, byID)
		for _, child := range q.Children {
			if _, exists := byID[child]; !exists || visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}
	return g
}

// include adds q and its resolved adjacency to the graph.
func (g *Graph) include(q question.Question, byID map[string]question.Question) {
	if _, dup := g.nodes[q.ID]; dup {
		return
	}
	g.order = append(g.order, q.ID)
	g.nodes[q.ID] = q

	var targets []string
	for _, child := range q.Children {
		if _, exists := byID[child]; !exists {
			continue
		}
		if slices.Contains(targets, child) {
			continue
		}
		targets = append(targets, child)
	}
	if targets != nil {
		g.adj[q.ID] = targets
	}
}

// naturalRoot returns the first question (in input order) that appears in
// no other question's child list.
func naturalRoot(questions []question.Question) (question.Question, bool) {
	children := make(map[string]bool)
	for _, q := range questions {
		for _, c := range q.Children {
			children[c] = true
		}
	}
	for _, q := range questions {
		if !children[q.ID] {
			return q, true
		}
	}
	return question.Question{}, false
}

// Root returns the anchoring root id, or "" for the degenerate fallback.
func (g *Graph) Root() string { return g.root }

// IDs returns all node ids in discovery order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Node returns the question for id and whether it exists.
func (g *Graph) Node(id string) (question.Question, bool) {
	q, ok := g.nodes[id]
	return q, ok
}

// Adjacency returns the ordered, deduplicated child ids of a node.
// The returned slice is a read-only view.
func (g *Graph) Adjacency(id string) []string { return g.adj[id] }

// Edges returns every edge in node discovery order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, id := range g.order {
		for _, target := range g.adj[id] {
			edges = append(edges, Edge{From: id, To: target})
		}
	}
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.adj {
		n += len(targets)
	}
	return n
}

// Empty reports whether the graph has no nodes. Callers render a benign
// "no data" state for empty graphs.
func (g *Graph) Empty() bool { return len(g.nodes) == 0 }
