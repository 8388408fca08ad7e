package render

import (
	"strings"
	"testing"

	"github.com/san-kum/stepviz/internal/scene"
)

func TestCanvasDrawOrder(t *testing.T) {
	c := NewCanvas()
	node := c.CreateNode(scene.NodeSpec{Shape: scene.ShapeCircle, Layer: scene.LayerNodes, X: 10, Y: 10, R: 5, Label: "A"})
	label := c.CreateNode(scene.NodeSpec{Shape: scene.ShapeText, Layer: scene.LayerLabels, X: 10, Y: 30, Label: "∞"})
	edge := c.CreateEdge(scene.EdgeSpec{X1: 10, Y1: 10, X2: 50, Y2: 50, Behind: true})

	prims := c.Primitives()
	if len(prims) != 3 {
		t.Fatalf("expected 3 primitives, got %d", len(prims))
	}
	if prims[0].Element != edge || prims[1].Element != node || prims[2].Element != label {
		t.Errorf("unexpected draw order: %v %v %v", prims[0].Element, prims[1].Element, prims[2].Element)
	}

	c.AddClass(node, scene.MarkVisited)
	c.SetLabel(label, "4")
	p, ok := c.Get(node)
	if !ok || !p.Has(scene.MarkVisited) {
		t.Error("marker not recorded")
	}
	p.Markers[scene.MarkFound] = true
	if again, _ := c.Get(node); again.Has(scene.MarkFound) {
		t.Error("Get must return a copy")
	}

	c.Remove(label)
	if c.Len() != 2 {
		t.Errorf("expected 2 primitives after Remove, got %d", c.Len())
	}
	c.SetLabel(label, "x")
	c.AddClass(label, scene.MarkFound)

	b := c.Bounds()
	if b.X != 5 || b.Y != 5 || b.W != 45 || b.H != 45 {
		t.Errorf("unexpected bounds %+v", b)
	}

	c.RemoveAll()
	if c.Len() != 0 || !c.Bounds().Empty() {
		t.Error("RemoveAll left primitives behind")
	}
}

func TestTeeMirrorsTargets(t *testing.T) {
	a, b := NewCanvas(), NewCanvas()
	a.CreateNode(scene.NodeSpec{Label: "offset"})
	tee := NewTee(a, b)

	el := tee.CreateNode(scene.NodeSpec{Shape: scene.ShapeCell, Label: "1"})
	tee.SetLabel(el, "2")
	tee.AddClass(el, scene.MarkSorted)
	tee.SetMessage("hello")

	for name, c := range map[string]*Canvas{"a": a, "b": b} {
		var found bool
		for _, p := range c.Primitives() {
			if p.Label == "2" && p.Has(scene.MarkSorted) {
				found = true
			}
		}
		if !found {
			t.Errorf("canvas %s did not receive the update", name)
		}
		if c.Status() != "hello" {
			t.Errorf("canvas %s status = %q", name, c.Status())
		}
	}

	tee.Remove(el)
	if a.Len() != 1 || b.Len() != 0 {
		t.Errorf("Remove should only drop the mirrored element, got %d/%d", a.Len(), b.Len())
	}
	tee.SetLabel(el, "stale")
}

func TestSVG(t *testing.T) {
	c := NewCanvas()
	s := scene.New(c, scene.DefaultLayout())
	s.RenderInitial(scene.KindGraph, scene.Data{Graph: &scene.Graph{
		Nodes:     map[scene.ID]scene.Point{"A": {X: 0, Y: 0}, "B<": {X: 100, Y: 0}},
		Adjacency: map[scene.ID][]scene.Neighbor{"A": {{Node: "B<", Weight: 3}}},
		Directed:  true,
	}})
	el, _ := s.Node("A")
	s.Mark(el, scene.MarkVisited)
	c.SetMessage("Visiting A & B")

	out := SVG(c, GetTheme("classroom"))
	for _, want := range []string{
		"<svg",
		`class="node visited"`,
		`class="distance"`,
		`class="weight"`,
		`marker-end="url(#arrow)"`,
		"B&lt;",
		"Visiting A &amp; B",
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG output missing %q", want)
		}
	}
}

func TestTerminalRender(t *testing.T) {
	c := NewCanvas()
	s := scene.New(c, scene.DefaultLayout())
	s.RenderInitial(scene.KindArray, scene.Data{Array: []scene.ID{"5", "3", "8"}})
	c.SetMessage("Comparing 5 and 3.")

	term := NewTerminal(ThemeCyberpunk)
	term.Plot = true
	out := term.Render(c)
	for _, want := range []string{"Comparing 5 and 3.", "5", "3", "8", "displayed values"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}

	s.RenderInitial(scene.KindTable, scene.Data{})
	s.BuildTable(2, 3, []scene.ID{"2"}, []scene.ID{"9"})
	out = term.Render(c)
	for _, want := range []string{"Item", "W/V", "2/9", "i=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
}

func TestTerminalSpatial(t *testing.T) {
	c := NewCanvas()
	s := scene.New(c, scene.DefaultLayout())
	s.RenderInitial(scene.KindTree, scene.Data{})
	s.InsertNode("50", "", scene.DirRoot)
	s.InsertNode("30", "50", scene.DirLeft)

	term := NewTerminal(ThemeOcean)
	out := term.Render(c)
	if !strings.Contains(out, "(50)") || !strings.Contains(out, "(30)") {
		t.Errorf("tree nodes missing from terminal output:\n%s", out)
	}
}

func TestMarkerColors(t *testing.T) {
	th := ThemeClassroom
	if got := th.MarkerColor(scene.MarkFound); got != string(th.Success) {
		t.Errorf("found color = %s", got)
	}
	if got := th.MarkerColor(""); got != string(th.Text) {
		t.Errorf("unmarked color = %s", got)
	}
	faded := th.MarkerColor(scene.MarkFaded)
	if faded == string(th.Text) || !strings.HasPrefix(faded, "#") {
		t.Errorf("faded should blend toward the background, got %s", faded)
	}

	dom := Dominant(map[scene.Marker]bool{scene.MarkVisited: true, scene.MarkPathNode: true})
	if dom != scene.MarkPathNode {
		t.Errorf("expected path-node to dominate, got %s", dom)
	}
	if GetTheme("nope").Name != "cyberpunk" || HasTheme("nope") {
		t.Error("unknown themes must fall back to cyberpunk")
	}
}
