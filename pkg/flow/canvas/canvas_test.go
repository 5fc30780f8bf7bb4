package canvas

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/dentflow/dentflow/pkg/question"
)

func q(id string, children ...string) question.Question {
	return question.Question{
		ID:       id,
		Type:     question.TypeBoolean,
		MainText: question.Text{EN: "Question " + id},
		Children: children,
	}
}

func newTestCanvas(questions []question.Question, rootID string) *Canvas {
	c := New(nil)
	c.SetQuestions(questions, rootID)
	return c
}

func TestCanvas_SceneFromQuestions(t *testing.T) {
	c := newTestCanvas([]question.Question{
		q("root", "a", "b"),
		q("a"),
		q("b"),
	}, "root")

	scene := c.Scene()
	if len(scene.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(scene.Nodes))
	}
	if len(scene.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(scene.Edges))
	}
	if scene.Root != "root" {
		t.Errorf("Root = %q, want %q", scene.Root, "root")
	}
	if scene.Width <= 0 || scene.Height <= 0 {
		t.Errorf("scene extent %vx%v, want positive", scene.Width, scene.Height)
	}
	for _, n := range scene.Nodes {
		if n.Box.W == 0 || n.Box.H == 0 {
			t.Errorf("node %s has no box", n.ID)
		}
		if n.TypeLabel != "Yes/No Question" {
			t.Errorf("node %s TypeLabel = %q", n.ID, n.TypeLabel)
		}
	}
	for _, e := range scene.Edges {
		if len(e.Waypoints) < 2 {
			t.Errorf("edge %s has no route", e.Edge.ID())
		}
	}
}

func TestCanvas_EmptyScene(t *testing.T) {
	c := New(nil)
	c.Resize(800, 600)

	scene := c.Scene()
	if len(scene.Nodes) != 0 || len(scene.Edges) != 0 {
		t.Fatalf("empty canvas produced %d nodes / %d edges", len(scene.Nodes), len(scene.Edges))
	}
	if scene.Width != 800 || scene.Height != 600 {
		t.Errorf("empty scene extent %vx%v, want viewport size", scene.Width, scene.Height)
	}
}

func TestCanvas_SelectionTiers(t *testing.T) {
	// root feeds a and b; c is a second parent of a; b feeds d.
	c := newTestCanvas([]question.Question{
		q("root", "a", "b", "c"),
		q("a"),
		q("b", "d"),
		q("c", "a"),
		q("d"),
	}, "root")

	c.SelectNode("root")
	scene := c.Scene()

	nodeTiers := map[string]Tier{}
	for _, n := range scene.Nodes {
		nodeTiers[n.ID] = n.Tier
	}
	if nodeTiers["root"] != TierSelected {
		t.Errorf("root tier = %v, want selected", nodeTiers["root"])
	}
	for _, id := range []string{"a", "b", "c"} {
		if nodeTiers[id] != TierActive {
			t.Errorf("node %s tier = %v, want active", id, nodeTiers[id])
		}
	}
	if nodeTiers["d"] != TierDefault {
		t.Errorf("node d tier = %v, want default", nodeTiers["d"])
	}

	edgeTiers := map[string]Tier{}
	for _, e := range scene.Edges {
		edgeTiers[e.Edge.ID()] = e.Tier
	}
	// Outgoing edges of the selection are selected.
	for _, id := range []string{"root-a", "root-b", "root-c"} {
		if edgeTiers[id] != TierSelected {
			t.Errorf("edge %s tier = %v, want selected", id, edgeTiers[id])
		}
	}
	// A second parent's edge into an emphasized child is active.
	if edgeTiers["c-a"] != TierActive {
		t.Errorf("edge c-a tier = %v, want active", edgeTiers["c-a"])
	}
	// Everything further out stays at rest.
	if edgeTiers["b-d"] != TierDefault {
		t.Errorf("edge b-d tier = %v, want default", edgeTiers["b-d"])
	}
}

func TestCanvas_BackgroundClickClears(t *testing.T) {
	c := newTestCanvas([]question.Question{q("root", "a"), q("a")}, "root")

	c.SelectNode("a")
	if id, ok := c.Selected(); !ok || id != "a" {
		t.Fatalf("Selected() = %q, %v after click", id, ok)
	}

	c.ClearSelection()
	if _, ok := c.Selected(); ok {
		t.Error("selection survived a background click")
	}
	for _, n := range c.Scene().Nodes {
		if n.Tier != TierDefault {
			t.Errorf("node %s tier = %v after clear, want default", n.ID, n.Tier)
		}
	}
}

func TestCanvas_UnknownClickIgnored(t *testing.T) {
	c := newTestCanvas([]question.Question{q("root", "a"), q("a")}, "root")

	c.SelectNode("a")
	c.SelectNode("ghost")
	if id, _ := c.Selected(); id != "a" {
		t.Errorf("Selected() = %q after stale click, want %q", id, "a")
	}
}

func TestCanvas_SelectionClearedWhenNodeRemoved(t *testing.T) {
	c := newTestCanvas([]question.Question{q("root", "a"), q("a")}, "root")
	c.SelectNode("a")

	c.SetQuestions([]question.Question{q("root")}, "root")
	if _, ok := c.Selected(); ok {
		t.Error("selection points at a removed card")
	}
}

func TestCanvas_ViewportCentersNarrowContent(t *testing.T) {
	questions := []question.Question{q("root")}

	plain := newTestCanvas(questions, "root")
	narrow := plain.Scene()

	wide := newTestCanvas(questions, "root")
	wide.Resize(2000, 600)
	centered := wide.Scene()

	if centered.Width != 2000 {
		t.Fatalf("scene width = %v, want viewport width", centered.Width)
	}
	shift := (2000 - narrow.Width) / 2
	want := narrow.Nodes[0].Box.X + shift
	if got := centered.Nodes[0].Box.X; got != want {
		t.Errorf("centered box x = %v, want %v", got, want)
	}
}

func TestCanvas_ResizeCoalesced(t *testing.T) {
	var updates atomic.Int64
	c := New(nil, WithUpdateFunc(func() { updates.Add(1) }))
	c.SetQuestions([]question.Question{q("root")}, "root")
	updates.Store(0)

	for i := 0; i < 5; i++ {
		c.Resize(float64(800+i), 600)
	}

	deadline := time.Now().Add(time.Second)
	for updates.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	// Give any stray extra callbacks time to land.
	time.Sleep(2 * resizeQuiet)

	if got := updates.Load(); got != 1 {
		t.Errorf("got %d recompute callbacks for a resize burst, want 1", got)
	}
}
